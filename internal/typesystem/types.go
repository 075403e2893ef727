// Package typesystem defines the canonical type model the compiler works
// with after name resolution: scalar primitives, registered structs and
// traits referenced by TypeId, the three address primitives, and function
// signature shapes.
package typesystem

import (
	"fmt"
	"strings"
)

// TypeId is a unique, stable identifier assigned once per struct and per
// trait at registration; never reused or mutated.
type TypeId int

// NoTypeId marks an unassigned identifier.
const NoTypeId TypeId = -1

// Storage footprints in the byte-addressed runtime arena.
const (
	// AddrSize is the stored size of a raw or typed address.
	AddrSize = 8
	// SizedAddrSize is the stored size of a sized address (address + byte length).
	SizedAddrSize = 16
	// FatPointerSize is the stored size of a trait-typed value
	// (data address + dispatch-table address).
	FatPointerSize = 16
)

// Type is the interface for all types in the system.
type Type interface {
	String() string

	// ByteSize is the storage footprint of one value of this type.
	ByteSize() int

	typeNode()
}

// Prim is a built-in scalar type.
type Prim struct {
	Name  string
	Bytes int
}

func (t Prim) String() string { return t.Name }
func (t Prim) ByteSize() int  { return t.Bytes }
func (t Prim) typeNode()      {}

var (
	I32  = Prim{Name: "i32", Bytes: 4}
	I64  = Prim{Name: "i64", Bytes: 8}
	U8   = Prim{Name: "u8", Bytes: 1}
	U32  = Prim{Name: "u32", Bytes: 4}
	U64  = Prim{Name: "u64", Bytes: 8}
	F32  = Prim{Name: "f32", Bytes: 4}
	F64  = Prim{Name: "f64", Bytes: 8}
	Bool = Prim{Name: "bool", Bytes: 1}
	Str  = Prim{Name: "str", Bytes: 8}
	Unit = Prim{Name: "unit", Bytes: 0}
)

// Struct references a registered struct declaration. Bytes is the summed
// field footprint, fixed at registration.
type Struct struct {
	Id    TypeId
	Name  string
	Bytes int
}

func (t Struct) String() string { return t.Name }
func (t Struct) ByteSize() int  { return t.Bytes }
func (t Struct) typeNode()      {}

// Trait references a registered trait declaration. A trait-typed value is
// stored as a fat pointer.
type Trait struct {
	Id   TypeId
	Name string
}

func (t Trait) String() string { return t.Name }
func (t Trait) ByteSize() int  { return FatPointerSize }
func (t Trait) typeNode()      {}

// Raw is an address with no compile-time element type and no bookkeeping.
type Raw struct{}

func (t Raw) String() string { return "RawAddress" }
func (t Raw) ByteSize() int  { return AddrSize }
func (t Raw) typeNode()      {}

// Ptr is a raw address plus a compile-time-only element type. Arithmetic is
// scaled by the element size; no runtime tag is carried.
type Ptr struct {
	Elem Type
}

func (t Ptr) String() string { return fmt.Sprintf("TypedAddress<%s>", t.Elem) }
func (t Ptr) ByteSize() int  { return AddrSize }
func (t Ptr) typeNode()      {}

// Sized is a typed address plus a byte length bounding copy/delete.
type Sized struct {
	Elem Type
}

func (t Sized) String() string { return fmt.Sprintf("SizedAddress<%s>", t.Elem) }
func (t Sized) ByteSize() int  { return SizedAddrSize }
func (t Sized) typeNode()      {}

// Func is a method or function signature shape. The receiver is not part of
// the shape: dispatch-table slots must be interchangeable across every
// implementer of a trait.
type Func struct {
	Params []Type
	Return Type
}

func (t Func) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Return)
}

func (t Func) ByteSize() int { return AddrSize }
func (t Func) typeNode()     {}

// Equal reports whether two types are the same canonical type.
// Struct and trait identity is TypeId identity.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case Prim:
		bt, ok := b.(Prim)
		return ok && at.Name == bt.Name
	case Struct:
		bt, ok := b.(Struct)
		return ok && at.Id == bt.Id
	case Trait:
		bt, ok := b.(Trait)
		return ok && at.Id == bt.Id
	case Raw:
		_, ok := b.(Raw)
		return ok
	case Ptr:
		bt, ok := b.(Ptr)
		return ok && Equal(at.Elem, bt.Elem)
	case Sized:
		bt, ok := b.(Sized)
		return ok && Equal(at.Elem, bt.Elem)
	case Func:
		bt, ok := b.(Func)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	}
	return false
}

// IsTrait reports whether t is a trait reference.
func IsTrait(t Type) bool {
	_, ok := t.(Trait)
	return ok
}

// IsStruct reports whether t is a struct reference.
func IsStruct(t Type) bool {
	_, ok := t.(Struct)
	return ok
}
