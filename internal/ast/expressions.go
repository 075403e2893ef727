package ast

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Identifier references a binding: a local, a parameter, or self.
type Identifier struct {
	P    Position
	Name string
}

func (e *Identifier) Pos() Position   { return e.P }
func (e *Identifier) expressionNode() {}

// IntegerLiteral is an integer constant. The front end has already decided
// its type; Type names a scalar primitive and defaults to i32 when empty.
type IntegerLiteral struct {
	P     Position
	Value int64
	Type  string
}

func (e *IntegerLiteral) Pos() Position   { return e.P }
func (e *IntegerLiteral) expressionNode() {}

// FloatLiteral is a floating constant; Type defaults to f64 when empty.
type FloatLiteral struct {
	P     Position
	Value float64
	Type  string
}

func (e *FloatLiteral) Pos() Position   { return e.P }
func (e *FloatLiteral) expressionNode() {}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	P     Position
	Value bool
}

func (e *BooleanLiteral) Pos() Position   { return e.P }
func (e *BooleanLiteral) expressionNode() {}

// StructLiteral constructs a struct value in the arena.
//
//	Point { x: 1, y: 2 }
type StructLiteral struct {
	P      Position
	Name   string
	Fields []FieldInit
}

func (e *StructLiteral) Pos() Position   { return e.P }
func (e *StructLiteral) expressionNode() {}

// FieldInit is one field initializer in a struct literal.
type FieldInit struct {
	Name  string
	Value Expression
}

// FieldAccess reads a struct field.
//
//	p.x
type FieldAccess struct {
	P      Position
	Object Expression
	Field  string
}

func (e *FieldAccess) Pos() Position   { return e.P }
func (e *FieldAccess) expressionNode() {}

// CallExpression calls a free function or a compiler-known builtin
// (mem_alloc).
type CallExpression struct {
	P      Position
	Callee string
	Args   []Expression
}

func (e *CallExpression) Pos() Position   { return e.P }
func (e *CallExpression) expressionNode() {}

// MethodCall calls a method on a receiver. Whether the call resolves
// statically or through a dispatch table depends only on the receiver's
// static type.
//
//	jet.throttle_up()
type MethodCall struct {
	P        Position
	Receiver Expression
	Method   string
	Args     []Expression
}

func (e *MethodCall) Pos() Position   { return e.P }
func (e *MethodCall) expressionNode() {}

// IsExpression is the trait-membership test.
//
//	target is FighterJet
type IsExpression struct {
	P      Position
	Value  Expression
	Target string
}

func (e *IsExpression) Pos() Position   { return e.P }
func (e *IsExpression) expressionNode() {}

// CastExpression converts a value toward a target type. The concrete
// source syntax is undecided; narrowing from a trait to a struct is
// rejected at compile time.
type CastExpression struct {
	P      Position
	Value  Expression
	Target TypeExpr
}

func (e *CastExpression) Pos() Position   { return e.P }
func (e *CastExpression) expressionNode() {}

// SizeofExpression is the compile-time size query sizeof<T>.
type SizeofExpression struct {
	P      Position
	Target TypeExpr
}

func (e *SizeofExpression) Pos() Position   { return e.P }
func (e *SizeofExpression) expressionNode() {}

// BinaryExpression is an arithmetic or comparison operation.
type BinaryExpression struct {
	P        Position
	Operator string
	Left     Expression
	Right    Expression
}

func (e *BinaryExpression) Pos() Position   { return e.P }
func (e *BinaryExpression) expressionNode() {}

// PointerOp is a pointer-primitive method call in expression position:
// reinterpret, offset, get_address, copy, copy_sized, delete on an address
// receiver. The analyzer checks the receiver's address kind; the compiler
// lowers each operation to its dedicated opcode.
type PointerOp struct {
	P        Position
	Receiver Expression
	Op       string
	TypeArg  TypeExpr // element type for reinterpret<T>; nil otherwise
	Args     []Expression
}

func (e *PointerOp) Pos() Position   { return e.P }
func (e *PointerOp) expressionNode() {}
