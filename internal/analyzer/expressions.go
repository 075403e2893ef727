package analyzer

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/config"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

const selfName = config.SelfName

// checkExpression computes and records the static type of an expression.
// Returns nil when the expression could not be typed; the failure has
// already been reported.
func (a *Analyzer) checkExpression(expr ast.Expression, vars env) typesystem.Type {
	if expr == nil {
		return nil
	}
	t := a.typeExpression(expr, vars)
	if t != nil {
		a.res.Types[expr] = t
	}
	return t
}

func (a *Analyzer) typeExpression(expr ast.Expression, vars env) typesystem.Type {
	switch e := expr.(type) {
	case *ast.Identifier:
		t, ok := vars[e.Name]
		if !ok {
			a.errorf(diagnostics.UndeclaredVariable, e.P, "variable %q is not declared", e.Name)
			return nil
		}
		return t

	case *ast.IntegerLiteral:
		name := e.Type
		if name == "" {
			name = config.I32TypeName
		}
		p, ok := symbols.PrimByName(name)
		if !ok || !isInteger(p) {
			a.errorf(diagnostics.TypeMismatch, e.P, "%q is not an integer type", name)
			return nil
		}
		return p

	case *ast.FloatLiteral:
		name := e.Type
		if name == "" {
			name = config.F64TypeName
		}
		p, ok := symbols.PrimByName(name)
		if !ok || !isFloat(p) {
			a.errorf(diagnostics.TypeMismatch, e.P, "%q is not a float type", name)
			return nil
		}
		return p

	case *ast.BooleanLiteral:
		return typesystem.Bool

	case *ast.StructLiteral:
		return a.typeStructLiteral(e, vars)

	case *ast.FieldAccess:
		return a.typeFieldAccess(e, vars)

	case *ast.CallExpression:
		return a.typeCall(e, vars)

	case *ast.MethodCall:
		return a.typeMethodCall(e, vars)

	case *ast.IsExpression:
		return a.typeIsExpression(e, vars)

	case *ast.CastExpression:
		return a.typeCastExpression(e, vars)

	case *ast.SizeofExpression:
		if _, err := a.table.ResolveTypeExpr(e.Target); err != nil {
			a.errorf(diagnostics.UnresolvedType, e.P, "sizeof: %s", err.Error())
			return nil
		}
		return typesystem.U64

	case *ast.BinaryExpression:
		return a.typeBinary(e, vars)

	case *ast.PointerOp:
		return a.typePointerOp(e, vars)
	}
	return nil
}

func (a *Analyzer) typeStructLiteral(e *ast.StructLiteral, vars env) typesystem.Type {
	entry, ok := a.table.Lookup(e.Name)
	if !ok {
		a.errorf(diagnostics.UnresolvedType, e.P, "type %q is not defined", e.Name)
		return nil
	}
	if entry.Kind != symbols.StructEntry {
		a.errorf(diagnostics.TypeMismatch, e.P, "%s is a trait; traits cannot be constructed", e.Name)
		return nil
	}

	fields := a.table.StructFields(entry.Id)
	covered := make(map[string]bool)
	for _, init := range e.Fields {
		vt := a.checkExpression(init.Value, vars)
		field, ok := a.table.FieldOf(entry.Id, init.Name)
		if !ok {
			a.errorf(diagnostics.TypeMismatch, e.P, "struct %s has no field %s", e.Name, init.Name)
			continue
		}
		if covered[init.Name] {
			a.errorf(diagnostics.TypeMismatch, e.P, "field %s initialized more than once", init.Name)
			continue
		}
		covered[init.Name] = true
		a.checkAssignable(field.Type, vt, init.Value, e.P, "field "+init.Name)
	}
	for _, f := range fields {
		if !covered[f.Name] {
			a.errorf(diagnostics.TypeMismatch, e.P, "struct literal %s is missing field %s", e.Name, f.Name)
		}
	}
	return a.table.StructType(entry.Id)
}

func (a *Analyzer) typeFieldAccess(e *ast.FieldAccess, vars env) typesystem.Type {
	ot := a.checkExpression(e.Object, vars)
	if ot == nil {
		return nil
	}
	st, ok := ot.(typesystem.Struct)
	if !ok {
		if typesystem.IsTrait(ot) {
			a.errorf(diagnostics.TypeMismatch, e.P, "fields cannot be accessed through trait %s; traits expose methods only", ot)
		} else {
			a.errorf(diagnostics.TypeMismatch, e.P, "%s has no fields", ot)
		}
		return nil
	}
	field, ok := a.table.FieldOf(st.Id, e.Field)
	if !ok {
		a.errorf(diagnostics.TypeMismatch, e.P, "struct %s has no field %s", st.Name, e.Field)
		return nil
	}
	return field.Type
}

func (a *Analyzer) typeCall(e *ast.CallExpression, vars env) typesystem.Type {
	if e.Callee == config.MemAllocFuncName {
		if len(e.Args) != 1 {
			a.errorf(diagnostics.TypeMismatch, e.P, "%s expects 1 argument, got %d", config.MemAllocFuncName, len(e.Args))
			return typesystem.Raw{}
		}
		at := a.checkExpression(e.Args[0], vars)
		if at != nil && !isIntegerType(at) {
			a.errorf(diagnostics.TypeMismatch, e.P, "%s: size must be an integer, got %s", config.MemAllocFuncName, at)
		}
		return typesystem.Raw{}
	}

	sig, ok := a.res.FreeSigs[e.Callee]
	if !ok {
		a.errorf(diagnostics.UndeclaredVariable, e.P, "function %q is not defined", e.Callee)
		for _, arg := range e.Args {
			a.checkExpression(arg, vars)
		}
		return nil
	}
	a.checkArgs(e.Args, sig, vars, e.P, "function "+e.Callee)
	return sig.Return
}

// typeMethodCall classifies the call site by the receiver's static type:
// concrete struct receivers resolve statically (inherent first, then trait
// impls in impl-declaration order); trait-typed receivers resolve through
// the dispatch-table slot of the called method.
func (a *Analyzer) typeMethodCall(e *ast.MethodCall, vars env) typesystem.Type {
	rt := a.checkExpression(e.Receiver, vars)
	if rt == nil {
		return nil
	}

	switch recv := rt.(type) {
	case typesystem.Struct:
		if fn, ok := a.table.InherentMethod(recv.Id, e.Method); ok {
			sig := a.res.MethodSigs[fn]
			a.checkArgs(e.Args, sig, vars, e.P, "method "+recv.Name+"."+e.Method)
			a.res.Calls[e] = CallTarget{
				Ref: FuncRef{Struct: recv.Id, Trait: typesystem.NoTypeId, Name: e.Method},
			}
			return sig.Return
		}
		for _, traitId := range a.table.TraitsOf(recv.Id) {
			slot, ok := a.table.TraitMethodSlot(traitId, e.Method)
			if !ok {
				continue
			}
			sig := a.table.TraitMethods(traitId)[slot].Sig
			a.checkArgs(e.Args, sig, vars, e.P, "method "+recv.Name+"."+e.Method)
			a.res.Calls[e] = CallTarget{
				Ref: FuncRef{Struct: recv.Id, Trait: traitId, Name: e.Method},
			}
			return sig.Return
		}
		a.errorf(diagnostics.UnknownMethod, e.P, "struct %s has no method %s", recv.Name, e.Method)
		return nil

	case typesystem.Trait:
		slot, ok := a.table.TraitMethodSlot(recv.Id, e.Method)
		if !ok {
			a.errorf(diagnostics.UnknownMethod, e.P, "trait %s declares no method %s", recv.Name, e.Method)
			return nil
		}
		sig := a.table.TraitMethods(recv.Id)[slot].Sig
		a.checkArgs(e.Args, sig, vars, e.P, "method "+recv.Name+"."+e.Method)
		a.res.Calls[e] = CallTarget{Dynamic: true, Trait: recv.Id, Slot: slot}
		return sig.Return

	default:
		a.errorf(diagnostics.UnknownMethod, e.P, "%s has no methods", rt)
		return nil
	}
}

func (a *Analyzer) typeIsExpression(e *ast.IsExpression, vars env) typesystem.Type {
	vt := a.checkExpression(e.Value, vars)

	entry, ok := a.table.Lookup(e.Target)
	if !ok {
		a.errorf(diagnostics.UnresolvedType, e.P, "type %q is not defined", e.Target)
		return typesystem.Bool
	}
	if entry.Kind != symbols.TraitEntry {
		a.errorf(diagnostics.InvalidIsCheck, e.P,
			"is requires a trait; %s is a concrete struct type", e.Target)
		return typesystem.Bool
	}
	if vt != nil && !typesystem.IsStruct(vt) && !typesystem.IsTrait(vt) {
		a.errorf(diagnostics.TypeMismatch, e.P, "is cannot be applied to %s", vt)
	}
	return typesystem.Bool
}

// typeCastExpression implements the decided half of the planned cast
// operator: widening a concrete struct into a trait it implements, scalar
// conversions, and the hard rejection of every narrowing path out of a
// trait-typed value.
func (a *Analyzer) typeCastExpression(e *ast.CastExpression, vars env) typesystem.Type {
	vt := a.checkExpression(e.Value, vars)
	target, err := a.table.ResolveTypeExpr(e.Target)
	if err != nil {
		a.errorf(diagnostics.UnresolvedType, e.P, "cast: %s", err.Error())
		return nil
	}
	if vt == nil {
		return target
	}

	if typesystem.Equal(vt, target) {
		return target
	}

	if structTarget, ok := target.(typesystem.Struct); ok {
		if typesystem.IsTrait(vt) {
			a.errorf(diagnostics.InvalidDowncast, e.P,
				"cannot narrow trait %s to struct %s; no downcast path exists", vt, structTarget.Name)
			return nil
		}
	}

	if traitTarget, ok := target.(typesystem.Trait); ok {
		if structSrc, ok := vt.(typesystem.Struct); ok {
			if !a.table.HasImpl(structSrc.Id, traitTarget.Id) {
				a.errorf(diagnostics.TraitNotImplemented, e.P,
					"struct %s does not implement trait %s", structSrc.Name, traitTarget.Name)
				return nil
			}
			a.res.Coercions[e.Value] = Coercion{Struct: structSrc.Id, Trait: traitTarget.Id}
			return target
		}
		if typesystem.IsTrait(vt) {
			// The concrete type behind a fat pointer is unknowable, so a
			// sideways or upward trait conversion has no table to reach for.
			a.errorf(diagnostics.TypeMismatch, e.P,
				"cannot convert %s to %s: trait-typed values carry a single dispatch table", vt, target)
			return nil
		}
	}

	if isNumericType(vt) && isNumericType(target) {
		return target
	}

	a.errorf(diagnostics.TypeMismatch, e.P, "cannot cast %s to %s", vt, target)
	return nil
}

func (a *Analyzer) typeBinary(e *ast.BinaryExpression, vars env) typesystem.Type {
	lt := a.checkExpression(e.Left, vars)
	rt := a.checkExpression(e.Right, vars)
	if lt == nil || rt == nil {
		return nil
	}

	switch e.Operator {
	case "+", "-", "*", "/", "%":
		if isNumericType(lt) && typesystem.Equal(lt, rt) {
			if e.Operator == "%" && !isIntegerType(lt) {
				a.errorf(diagnostics.TypeMismatch, e.P, "operator %% requires integers, got %s", lt)
				return nil
			}
			return lt
		}
	case "==", "!=":
		if typesystem.Equal(lt, rt) && isScalarType(lt) {
			return typesystem.Bool
		}
	case "<", "<=", ">", ">=":
		if isNumericType(lt) && typesystem.Equal(lt, rt) {
			return typesystem.Bool
		}
	case "&&", "||":
		if typesystem.Equal(lt, typesystem.Bool) && typesystem.Equal(rt, typesystem.Bool) {
			return typesystem.Bool
		}
	}
	a.errorf(diagnostics.TypeMismatch, e.P, "operator %s is not defined for %s and %s", e.Operator, lt, rt)
	return nil
}

func (a *Analyzer) checkArgs(args []ast.Expression, sig typesystem.Func, vars env, pos ast.Position, context string) {
	if len(args) != len(sig.Params) {
		a.errorf(diagnostics.TypeMismatch, pos, "%s expects %d arguments, got %d", context, len(sig.Params), len(args))
		for _, arg := range args {
			a.checkExpression(arg, vars)
		}
		return
	}
	for i, arg := range args {
		at := a.checkExpression(arg, vars)
		a.checkAssignable(sig.Params[i], at, arg, pos, context)
	}
}

func isInteger(p typesystem.Prim) bool {
	switch p.Name {
	case "i32", "i64", "u8", "u32", "u64":
		return true
	}
	return false
}

func isFloat(p typesystem.Prim) bool {
	return p.Name == "f32" || p.Name == "f64"
}

func isIntegerType(t typesystem.Type) bool {
	p, ok := t.(typesystem.Prim)
	return ok && isInteger(p)
}

func isNumericType(t typesystem.Type) bool {
	p, ok := t.(typesystem.Prim)
	return ok && (isInteger(p) || isFloat(p))
}

func isScalarType(t typesystem.Type) bool {
	p, ok := t.(typesystem.Prim)
	return ok && p.Name != "unit"
}
