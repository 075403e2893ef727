// Package ast is the declaration-level syntax tree the compiler consumes.
//
// It is the interface boundary with the borrowed front end: the parser
// produces this tree, the compiler never sees source text. Tests construct
// trees directly; the CLI decodes them from the front end's JSON output.
package ast

// Position locates a node in the original source for diagnostics.
// Line 0 means the front end supplied no position.
type Position struct {
	File string
	Line int
}

// Node is the base interface for all tree nodes.
type Node interface {
	Pos() Position
}

// Program is the root node: every declaration of one compilation unit, in
// declaration order. The compiler's determinism guarantees hold over these
// slices, never over file-processing order.
type Program struct {
	File    string
	Structs []*StructDecl
	Traits  []*TraitDecl
	Impls   []*ImplBlock
	Funcs   []*FunctionDecl
}

func (p *Program) Pos() Position { return Position{File: p.File} }

// StructDecl declares a struct.
//
//	struct Point:
//	    x: i32
//	    y: i32
type StructDecl struct {
	P      Position
	Name   string
	Fields []Field
}

func (d *StructDecl) Pos() Position { return d.P }

// Field is one struct field; exhaustively typed, never inferred.
type Field struct {
	Name string
	Type TypeExpr
}

// TraitDecl declares a trait: an ordered set of method signatures, with
// optional supertraits.
//
//	trait FighterJet: Aircraft:
//	    def lock_missile(target: Aircraft) -> bool
type TraitDecl struct {
	P       Position
	Name    string
	Supers  []string
	Methods []MethodSig
}

func (d *TraitDecl) Pos() Position { return d.P }

// MethodSig is a declared trait method signature. The self receiver is
// implicit; Params lists only the explicit parameters.
type MethodSig struct {
	Name   string
	Params []Param
	Return TypeExpr
}

// Param is one named parameter.
type Param struct {
	Name string
	Type TypeExpr
}

// ImplBlock is an implementation block. Trait is empty for a bare impl
// (inherent methods); otherwise the block targets the (Struct, Trait) pair.
//
//	impl Aircraft for Su27Flanker:
//	    def name() -> str: ...
type ImplBlock struct {
	P       Position
	Struct  string
	Trait   string
	Methods []*FunctionDecl
}

func (d *ImplBlock) Pos() Position { return d.P }

// IsTraitImpl reports whether the block is trait-qualified.
func (d *ImplBlock) IsTraitImpl() bool { return d.Trait != "" }

// FunctionDecl is a method body inside an impl block, or a free function.
// HasSelf marks a self receiver as first parameter; Params lists only the
// explicit parameters.
type FunctionDecl struct {
	P       Position
	Name    string
	HasSelf bool
	Params  []Param
	Return  TypeExpr
	Body    []Statement
}

func (d *FunctionDecl) Pos() Position { return d.P }
