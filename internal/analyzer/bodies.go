package analyzer

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// checkBodies type-checks every method and function body that survived
// registration: inherent methods, trait impl methods (complete impls only),
// and free functions.
func (a *Analyzer) checkBodies(program *ast.Program) {
	for _, structId := range a.table.StructIds() {
		self := a.table.StructType(structId)
		for _, fn := range a.table.InherentMethods(structId) {
			a.checkFunction(fn, self, a.res.MethodSigs[fn])
		}
	}
	for _, rec := range a.table.Impls() {
		self := a.table.StructType(rec.Struct)
		for _, fn := range rec.Methods {
			if fn != nil {
				a.checkFunction(fn, self, a.res.MethodSigs[fn])
			}
		}
	}
	for _, fn := range a.res.FreeFuncs {
		a.checkFunction(fn, nil, a.res.FreeSigs[fn.Name])
	}
}

// env is the flat variable scope of one function body. Conditional arms get
// a copy, so their declarations stay local.
type env map[string]typesystem.Type

func (e env) clone() env {
	out := make(env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (a *Analyzer) checkFunction(fn *ast.FunctionDecl, self typesystem.Type, sig typesystem.Func) {
	vars := make(env)
	if fn.HasSelf && self != nil {
		vars[selfName] = self
	}
	for i, p := range fn.Params {
		if i < len(sig.Params) && sig.Params[i] != nil {
			vars[p.Name] = sig.Params[i]
		}
	}
	a.checkBlock(fn.Body, vars, sig.Return)
}

func (a *Analyzer) checkBlock(stmts []ast.Statement, vars env, ret typesystem.Type) {
	for _, stmt := range stmts {
		a.checkStatement(stmt, vars, ret)
	}
}

func (a *Analyzer) checkStatement(stmt ast.Statement, vars env, ret typesystem.Type) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		vt := a.checkExpression(s.Value, vars)
		declared := vt
		if s.Type != nil {
			dt, err := a.table.ResolveTypeExpr(s.Type)
			if err != nil {
				a.errorf(diagnostics.UnresolvedType, s.P, "variable %s: %s", s.Name, err.Error())
				return
			}
			declared = dt
			a.checkAssignable(dt, vt, s.Value, s.P, "variable "+s.Name)
		}
		if _, exists := vars[s.Name]; exists {
			a.errorf(diagnostics.TypeMismatch, s.P, "variable %s is already declared", s.Name)
			return
		}
		vars[s.Name] = declared

	case *ast.AssignStatement:
		vt := a.checkExpression(s.Value, vars)
		switch target := s.Target.(type) {
		case *ast.Identifier:
			dt, ok := vars[target.Name]
			if !ok {
				a.errorf(diagnostics.UndeclaredVariable, s.P, "variable %q is not declared", target.Name)
				return
			}
			a.res.Types[target] = dt
			a.checkAssignable(dt, vt, s.Value, s.P, "variable "+target.Name)
		case *ast.FieldAccess:
			dt := a.checkExpression(target, vars)
			a.checkAssignable(dt, vt, s.Value, s.P, "field "+target.Field)
		default:
			a.errorf(diagnostics.TypeMismatch, s.P, "expression is not assignable")
		}

	case *ast.ReturnStatement:
		if s.Value == nil {
			if ret != nil && !typesystem.Equal(ret, typesystem.Unit) {
				a.errorf(diagnostics.TypeMismatch, s.P, "missing return value; function returns %s", ret)
			}
			return
		}
		vt := a.checkExpression(s.Value, vars)
		if ret != nil {
			a.checkAssignable(ret, vt, s.Value, s.P, "return value")
		}

	case *ast.ExpressionStatement:
		a.checkExpression(s.Expr, vars)

	case *ast.IfStatement:
		ct := a.checkExpression(s.Condition, vars)
		if ct != nil && !typesystem.Equal(ct, typesystem.Bool) {
			a.errorf(diagnostics.TypeMismatch, s.P, "if condition must be bool, got %s", ct)
		}
		a.checkBlock(s.Then, vars.clone(), ret)
		a.checkBlock(s.Else, vars.clone(), ret)
	}
}

// checkAssignable verifies that a src value fits a dst position. A concrete
// struct in a trait-typed position is the one coercion in the language: it
// records a fat-pointer construction site on the value expression.
// Reports its own diagnostics; nil types were already reported upstream.
func (a *Analyzer) checkAssignable(dst, src typesystem.Type, value ast.Expression, pos ast.Position, context string) {
	if dst == nil || src == nil {
		return
	}
	if typesystem.Equal(dst, src) {
		return
	}
	if traitType, ok := dst.(typesystem.Trait); ok {
		if structType, ok := src.(typesystem.Struct); ok {
			if a.table.HasImpl(structType.Id, traitType.Id) {
				a.res.Coercions[value] = Coercion{Struct: structType.Id, Trait: traitType.Id}
				return
			}
			a.errorf(diagnostics.TraitNotImplemented, pos, "%s: struct %s does not implement trait %s",
				context, structType.Name, traitType.Name)
			return
		}
	}
	a.errorf(diagnostics.TypeMismatch, pos, "%s: expected %s but got %s", context, dst, src)
}
