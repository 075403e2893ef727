// Package analyzer performs semantic analysis on the declaration tree:
// type registration, impl resolution, and method-body checking.
//
// All detectable errors are collected in batch; later stages only run on a
// clean diagnostic list.
package analyzer

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// FuncRef symbolically identifies a compiled function body before layout
// assigns image indices. Struct is NoTypeId for free functions; Trait is
// NoTypeId for inherent methods and free functions.
type FuncRef struct {
	Struct typesystem.TypeId
	Trait  typesystem.TypeId
	Name   string
}

// CallTarget is the dispatch decision for one method call site.
// Static calls resolve to a FuncRef; dynamic calls resolve to a slot index
// into the dispatch table carried by the receiver at runtime.
type CallTarget struct {
	Dynamic bool

	Ref FuncRef // static target

	Trait typesystem.TypeId // dynamic: trait the receiver is typed as
	Slot  int               // dynamic: slot index in the trait's table
}

// Coercion marks an expression whose concrete struct value is used through
// a trait-typed interface; the compiler wraps it into a fat pointer there,
// and nowhere else.
type Coercion struct {
	Struct typesystem.TypeId
	Trait  typesystem.TypeId
}

// Result is everything later stages need from analysis.
type Result struct {
	Table *symbols.TypeTable

	// Types holds the static type of every checked expression.
	Types map[ast.Expression]typesystem.Type

	// Calls holds the dispatch decision per method call site.
	Calls map[*ast.MethodCall]CallTarget

	// Coercions holds the fat-pointer construction sites.
	Coercions map[ast.Expression]Coercion

	// FreeFuncs lists free functions in declaration order.
	FreeFuncs []*ast.FunctionDecl
	FreeSigs  map[string]typesystem.Func

	// MethodSigs holds the resolved signature of every impl method body.
	MethodSigs map[*ast.FunctionDecl]typesystem.Func
}

// Analyzer walks one Program and fills a Result, reporting every error to
// the diagnostics list.
type Analyzer struct {
	table *symbols.TypeTable
	diags *diagnostics.List
	res   *Result
}

func New(diags *diagnostics.List) *Analyzer {
	table := symbols.NewTypeTable()
	return &Analyzer{
		table: table,
		diags: diags,
		res: &Result{
			Table:     table,
			Types:      make(map[ast.Expression]typesystem.Type),
			Calls:      make(map[*ast.MethodCall]CallTarget),
			Coercions:  make(map[ast.Expression]Coercion),
			FreeSigs:   make(map[string]typesystem.Func),
			MethodSigs: make(map[*ast.FunctionDecl]typesystem.Func),
		},
	}
}

// Analyze runs every pass in order. Each pass runs to completion even when
// earlier passes reported errors, so one compilation surfaces everything it
// can; body checking is skipped only when registration itself failed, since
// the types it would check against do not exist.
func (a *Analyzer) Analyze(program *ast.Program) *Result {
	clean := a.registerDeclarations(program)
	a.resolveImpls(program)
	if clean {
		a.checkBodies(program)
	}
	return a.res
}

func (a *Analyzer) errorf(kind diagnostics.Kind, pos ast.Position, format string, args ...interface{}) {
	a.diags.Addf(kind, pos.File, pos.Line, format, args...)
}
