package analyzer

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// registerDeclarations fills the type table: names first so declarations
// can reference each other in any order, then field and signature
// resolution, then struct layouts. Reports true when the program's
// declarations are sound enough for body checking.
func (a *Analyzer) registerDeclarations(program *ast.Program) bool {
	before := a.diags.Len()

	for _, s := range program.Structs {
		if _, ok := a.table.RegisterStruct(s); !ok {
			a.errorf(diagnostics.DuplicateType, s.P, "type %s is already defined", s.Name)
		}
	}
	for _, t := range program.Traits {
		if _, ok := a.table.RegisterTrait(t); !ok {
			a.errorf(diagnostics.DuplicateType, t.P, "type %s is already defined", t.Name)
		}
	}

	for _, s := range program.Structs {
		a.resolveStructFields(s)
	}
	for _, t := range program.Traits {
		a.resolveTraitDecl(t)
	}
	a.registerFreeFunctions(program)

	if err := a.table.FinalizeLayouts(); err != nil {
		a.errorf(diagnostics.TypeMismatch, program.Pos(), "%s", err.Error())
	}

	return a.diags.Len() == before
}

func (a *Analyzer) resolveStructFields(s *ast.StructDecl) {
	entry, ok := a.table.Lookup(s.Name)
	if !ok || entry.Kind != symbols.StructEntry {
		return // duplicate registration already reported
	}
	fields := make([]symbols.FieldInfo, 0, len(s.Fields))
	for _, f := range s.Fields {
		ft, err := a.table.ResolveTypeExpr(f.Type)
		if err != nil {
			a.errorf(diagnostics.UnresolvedType, s.P, "struct %s, field %s: %s", s.Name, f.Name, err.Error())
			continue
		}
		fields = append(fields, symbols.FieldInfo{Name: f.Name, Type: ft})
	}
	a.table.SetStructFields(entry.Id, fields)
}

func (a *Analyzer) resolveTraitDecl(t *ast.TraitDecl) {
	entry, ok := a.table.Lookup(t.Name)
	if !ok || entry.Kind != symbols.TraitEntry {
		return
	}

	seen := make(map[string]bool)
	methods := make([]symbols.TraitMethod, 0, len(t.Methods))
	for _, m := range t.Methods {
		if seen[m.Name] {
			a.errorf(diagnostics.DuplicateMethod, t.P, "trait %s declares method %s more than once", t.Name, m.Name)
			continue
		}
		seen[m.Name] = true
		sig := a.resolveSig(m.Params, m.Return, t.P, "trait "+t.Name+", method "+m.Name)
		methods = append(methods, symbols.TraitMethod{Name: m.Name, Sig: sig})
	}
	a.table.SetTraitMethods(entry.Id, methods)

	var supers []typesystem.TypeId
	for _, name := range t.Supers {
		superEntry, ok := a.table.Lookup(name)
		if !ok {
			a.errorf(diagnostics.UnresolvedType, t.P, "trait %s: supertrait %q is not defined", t.Name, name)
			continue
		}
		if superEntry.Kind != symbols.TraitEntry {
			a.errorf(diagnostics.TypeMismatch, t.P, "trait %s: supertrait %s is a struct, not a trait", t.Name, name)
			continue
		}
		supers = append(supers, superEntry.Id)
	}
	a.table.SetTraitSupers(entry.Id, supers)
}

func (a *Analyzer) registerFreeFunctions(program *ast.Program) {
	for _, fn := range program.Funcs {
		if _, exists := a.res.FreeSigs[fn.Name]; exists {
			a.errorf(diagnostics.DuplicateMethod, fn.P, "function %s is already defined", fn.Name)
			continue
		}
		if fn.HasSelf {
			a.errorf(diagnostics.TypeMismatch, fn.P, "function %s: self receiver outside an impl block", fn.Name)
		}
		sig := a.resolveSig(fn.Params, fn.Return, fn.P, "function "+fn.Name)
		a.res.FreeFuncs = append(a.res.FreeFuncs, fn)
		a.res.FreeSigs[fn.Name] = sig
	}
}

// resolveSig resolves a signature piecewise so every unresolved name is
// reported, not just the first. Failed positions stay nil in the shape;
// signature comparisons skip nil entries.
func (a *Analyzer) resolveSig(params []ast.Param, ret ast.TypeExpr, pos ast.Position, context string) typesystem.Func {
	sig := typesystem.Func{}
	for _, p := range params {
		pt, err := a.table.ResolveTypeExpr(p.Type)
		if err != nil {
			a.errorf(diagnostics.UnresolvedType, pos, "%s, parameter %s: %s", context, p.Name, err.Error())
			pt = nil
		}
		sig.Params = append(sig.Params, pt)
	}
	rt, err := a.table.ResolveTypeExpr(ret)
	if err != nil {
		a.errorf(diagnostics.UnresolvedType, pos, "%s: return %s", context, err.Error())
		rt = nil
	}
	sig.Return = rt
	return sig
}
