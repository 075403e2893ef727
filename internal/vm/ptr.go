package vm

// The three address primitives as the runtime sees them. These are the
// exact operations the compiler lowers pointer expressions to, and the Go
// surface the embedding host (and eventually the self-hosted standard
// library) programs against.
//
// RawAddr and TypedAddr validate nothing. SizedAddr validates copy and
// delete lengths against its recorded region, and only those.

// RawAddr is an address with no element type and no bookkeeping.
type RawAddr uint32

// Reinterpret views the same address bits as a typed address. No
// alignment, size or liveness validation is performed.
func (r RawAddr) Reinterpret(elemSize uint32) TypedAddr {
	return TypedAddr{Addr: uint32(r), Elem: elemSize}
}

// TypedAddr is a raw address plus a compile-time element size.
type TypedAddr struct {
	Addr uint32
	Elem uint32
}

// Offset advances the address by n elements. No bounds check.
func (t TypedAddr) Offset(n int32) TypedAddr {
	return TypedAddr{Addr: uint32(int64(t.Addr) + int64(n)*int64(t.Elem)), Elem: t.Elem}
}

// Address returns the raw numeric address.
func (t TypedAddr) Address() RawAddr { return RawAddr(t.Addr) }

// Reinterpret re-views the address with a different element size.
func (t TypedAddr) Reinterpret(elemSize uint32) TypedAddr {
	return TypedAddr{Addr: t.Addr, Elem: elemSize}
}

// Copy moves length bytes to dest. The caller-supplied length is not
// validated against any known size.
func (t TypedAddr) Copy(a *Arena, dest TypedAddr, length uint32) {
	a.Copy(dest.Addr, t.Addr, length)
}

// Delete releases length bytes at the address. Double release is undefined
// behavior, not detected.
func (t TypedAddr) Delete(a *Arena, length uint32) {
	a.Release(t.Addr, length)
}

// WithSize records a byte length over the address, producing the only
// bounds-checked address kind.
func (t TypedAddr) WithSize(length uint32) SizedAddr {
	return SizedAddr{TypedAddr: t, Size: length}
}

// SizedAddr is a typed address plus a recorded byte length.
type SizedAddr struct {
	TypedAddr
	Size uint32
}

// Copy moves length bytes to dest, failing instead of executing when
// length exceeds the recorded size.
func (s SizedAddr) Copy(a *Arena, dest TypedAddr, length uint32) error {
	if length > s.Size {
		return &OutOfBoundsError{Op: "copy", Requested: length, Limit: s.Size}
	}
	a.Copy(dest.Addr, s.Addr, length)
	return nil
}

// CopySized moves length bytes to dest, validating against both recorded
// sizes.
func (s SizedAddr) CopySized(a *Arena, dest SizedAddr, length uint32) error {
	if length > s.Size {
		return &OutOfBoundsError{Op: "copy_sized", Requested: length, Limit: s.Size}
	}
	if length > dest.Size {
		return &OutOfBoundsError{Op: "copy_sized", Requested: length, Limit: dest.Size}
	}
	a.Copy(dest.Addr, s.Addr, length)
	return nil
}

// Delete releases length bytes, scoped to the recorded region.
func (s SizedAddr) Delete(a *Arena, length uint32) error {
	if length > s.Size {
		return &OutOfBoundsError{Op: "delete", Requested: length, Limit: s.Size}
	}
	a.Release(s.Addr, length)
	return nil
}
