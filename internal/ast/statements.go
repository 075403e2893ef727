package ast

// Statement is a Node that represents a statement in a function body.
type Statement interface {
	Node
	statementNode()
}

// VarStatement declares a local binding. Type may be nil, in which case it
// is taken from the initializer expression; a trait-typed annotation over a
// concrete initializer is a coercion site.
//
//	target: Aircraft = flanker
type VarStatement struct {
	P     Position
	Name  string
	Type  TypeExpr
	Value Expression
}

func (s *VarStatement) Pos() Position  { return s.P }
func (s *VarStatement) statementNode() {}

// AssignStatement assigns to an existing binding or a field.
//
//	self.fuel = self.fuel - 1
type AssignStatement struct {
	P      Position
	Target Expression
	Value  Expression
}

func (s *AssignStatement) Pos() Position  { return s.P }
func (s *AssignStatement) statementNode() {}

// ReturnStatement returns from the enclosing function. Value is nil for
// unit returns.
type ReturnStatement struct {
	P     Position
	Value Expression
}

func (s *ReturnStatement) Pos() Position  { return s.P }
func (s *ReturnStatement) statementNode() {}

// ExpressionStatement evaluates an expression for its effect.
type ExpressionStatement struct {
	P    Position
	Expr Expression
}

func (s *ExpressionStatement) Pos() Position  { return s.P }
func (s *ExpressionStatement) statementNode() {}

// IfStatement is a two-armed conditional. Else may be nil.
type IfStatement struct {
	P         Position
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (s *IfStatement) Pos() Position  { return s.P }
func (s *IfStatement) statementNode() {}
