package ast

import "fmt"

// TypeExpr is a type as written in source, before name resolution.
type TypeExpr interface {
	Node
	typeExprNode()
	String() string
}

// NamedType references a type by name: a scalar primitive, a struct, or a
// trait.
//
//	x: i32
//	wing: Aircraft
type NamedType struct {
	P    Position
	Name string
}

func (t *NamedType) Pos() Position  { return t.P }
func (t *NamedType) typeExprNode()  {}
func (t *NamedType) String() string { return t.Name }

// PointerKind distinguishes the three address primitives.
type PointerKind int

const (
	RawPointer PointerKind = iota
	TypedPointer
	SizedPointer
)

// PointerType is a pointer primitive in type position. Elem is nil for raw
// addresses.
//
//	buf: TypedAddress<u8>
//	region: SizedAddress<u8>
type PointerType struct {
	P    Position
	Kind PointerKind
	Elem TypeExpr
}

func (t *PointerType) Pos() Position { return t.P }
func (t *PointerType) typeExprNode() {}

func (t *PointerType) String() string {
	switch t.Kind {
	case RawPointer:
		return "RawAddress"
	case TypedPointer:
		return fmt.Sprintf("TypedAddress<%s>", t.Elem)
	default:
		return fmt.Sprintf("SizedAddress<%s>", t.Elem)
	}
}
