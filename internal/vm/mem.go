package vm

import (
	"encoding/binary"
	"fmt"
)

// OutOfBoundsError is the only checked runtime failure this core defines:
// a sized-address copy or delete asked for more bytes than the recorded
// region holds. Everything else raw pointers can do wrong is undefined
// behavior by design.
type OutOfBoundsError struct {
	Op        string
	Requested uint32
	Limit     uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: length %d exceeds recorded size %d", e.Op, e.Requested, e.Limit)
}

// Arena is the unmanaged byte-addressed heap the generated program runs
// against. Offset 0 is reserved so that address 0 stays meaningless.
//
// Release tracks freed regions for reuse but performs no validation:
// double release and use-after-release are undefined behavior, exactly as
// the language promises.
type Arena struct {
	data []byte
	free []region
}

type region struct {
	addr uint32
	size uint32
}

const arenaInitial = 4096

func NewArena() *Arena {
	return &Arena{data: make([]byte, 1, arenaInitial)}
}

// Alloc reserves n bytes and returns their address. Freed regions are
// reused first-fit; otherwise the arena grows.
func (a *Arena) Alloc(n uint32) uint32 {
	if n == 0 {
		n = 1
	}
	for i, r := range a.free {
		if r.size >= n {
			a.free[i].addr += n
			a.free[i].size -= n
			if a.free[i].size == 0 {
				a.free = append(a.free[:i], a.free[i+1:]...)
			}
			return r.addr
		}
	}
	addr := uint32(len(a.data))
	a.data = append(a.data, make([]byte, n)...)
	return addr
}

// Release returns n bytes at addr to the free list.
func (a *Arena) Release(addr, n uint32) {
	a.free = append(a.free, region{addr: addr, size: n})
}

// Bytes exposes n bytes at addr. Out-of-arena access panics; that is the
// Go rendering of undefined behavior, not a checked failure.
func (a *Arena) Bytes(addr, n uint32) []byte {
	return a.data[addr : addr+n]
}

// Copy moves n bytes from src to dst with no validation against any
// recorded size.
func (a *Arena) Copy(dst, src, n uint32) {
	copy(a.Bytes(dst, n), a.Bytes(src, n))
}

func (a *Arena) ReadU8(addr uint32) uint8 { return a.data[addr] }

func (a *Arena) WriteU8(addr uint32, v uint8) { a.data[addr] = v }

func (a *Arena) ReadU32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(a.Bytes(addr, 4))
}

func (a *Arena) WriteU32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(a.Bytes(addr, 4), v)
}

func (a *Arena) ReadU64(addr uint32) uint64 {
	return binary.LittleEndian.Uint64(a.Bytes(addr, 8))
}

func (a *Arena) WriteU64(addr uint32, v uint64) {
	binary.LittleEndian.PutUint64(a.Bytes(addr, 8), v)
}

// Used reports the high-water byte count, reserved byte included.
func (a *Arena) Used() int { return len(a.data) }
