package vm

import "testing"

func TestArenaReservesAddressZero(t *testing.T) {
	a := NewArena()
	if addr := a.Alloc(16); addr == 0 {
		t.Error("first allocation landed on the reserved address 0")
	}
}

func TestArenaAllocationsDoNotOverlap(t *testing.T) {
	a := NewArena()
	p := a.Alloc(8)
	q := a.Alloc(8)
	a.WriteU64(p, 0x1111111111111111)
	a.WriteU64(q, 0x2222222222222222)
	if a.ReadU64(p) != 0x1111111111111111 {
		t.Error("second allocation clobbered the first")
	}
}

func TestArenaReusesReleasedRegions(t *testing.T) {
	a := NewArena()
	p := a.Alloc(32)
	a.Release(p, 32)
	q := a.Alloc(16)
	if q != p {
		t.Errorf("allocation after release got %d, want reuse of %d", q, p)
	}
	// The remainder of the released region stays available.
	r := a.Alloc(16)
	if r != p+16 {
		t.Errorf("follow-up allocation got %d, want %d", r, p+16)
	}
}

func TestArenaZeroByteAllocStaysAddressable(t *testing.T) {
	a := NewArena()
	p := a.Alloc(0)
	q := a.Alloc(0)
	if p == q {
		t.Error("zero-byte allocations share an address")
	}
}

func TestArenaCopyAndScalarAccess(t *testing.T) {
	a := NewArena()
	src := a.Alloc(12)
	dst := a.Alloc(12)
	a.WriteU32(src, 0xdeadbeef)
	a.WriteU32(src+4, 7)
	a.WriteU8(src+8, 0xff)
	a.Copy(dst, src, 12)
	if a.ReadU32(dst) != 0xdeadbeef || a.ReadU32(dst+4) != 7 || a.ReadU8(dst+8) != 0xff {
		t.Error("copied region does not match source")
	}
}
