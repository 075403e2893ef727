package analyzer

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// resolveImpls validates every impl block and registers capability records.
// All blocks are processed before supertrait requirements are checked, so
// impl ordering in source never matters.
func (a *Analyzer) resolveImpls(program *ast.Program) {
	for _, impl := range program.Impls {
		if impl.IsTraitImpl() {
			a.resolveTraitImpl(impl)
		} else {
			a.resolveBareImpl(impl)
		}
	}
	a.checkSupertraitCoverage()
}

func (a *Analyzer) implTarget(impl *ast.ImplBlock) (typesystem.TypeId, bool) {
	entry, ok := a.table.Lookup(impl.Struct)
	if !ok {
		a.errorf(diagnostics.UnresolvedType, impl.P, "impl target %q is not defined", impl.Struct)
		return typesystem.NoTypeId, false
	}
	if entry.Kind != symbols.StructEntry {
		a.errorf(diagnostics.TypeMismatch, impl.P, "impl target %s is a trait; implementations target structs", impl.Struct)
		return typesystem.NoTypeId, false
	}
	return entry.Id, true
}

// resolveBareImpl registers inherent methods. They are validated only for
// internal consistency and are always statically resolved.
func (a *Analyzer) resolveBareImpl(impl *ast.ImplBlock) {
	structId, ok := a.implTarget(impl)
	if !ok {
		return
	}
	seen := make(map[string]bool)
	for _, fn := range impl.Methods {
		if seen[fn.Name] {
			a.errorf(diagnostics.DuplicateMethod, fn.P, "impl %s defines method %s more than once", impl.Struct, fn.Name)
			continue
		}
		seen[fn.Name] = true
		if !a.table.AddInherent(structId, fn) {
			a.errorf(diagnostics.DuplicateMethod, fn.P, "struct %s already has an inherent method %s", impl.Struct, fn.Name)
			continue
		}
		a.res.MethodSigs[fn] = a.resolveSig(fn.Params, fn.Return, fn.P, "method "+impl.Struct+"."+fn.Name)
	}
}

func (a *Analyzer) resolveTraitImpl(impl *ast.ImplBlock) {
	structId, ok := a.implTarget(impl)
	if !ok {
		return
	}

	traitEntry, ok := a.table.Lookup(impl.Trait)
	if !ok {
		a.errorf(diagnostics.UnresolvedType, impl.P, "trait %q is not defined", impl.Trait)
		return
	}
	if traitEntry.Kind != symbols.TraitEntry {
		a.errorf(diagnostics.TypeMismatch, impl.P, "%s is a struct; only traits can be implemented for a type", impl.Trait)
		return
	}
	traitId := traitEntry.Id

	if a.table.HasImpl(structId, traitId) {
		a.errorf(diagnostics.DuplicateImpl, impl.P, "duplicate impl of trait %s for struct %s", impl.Trait, impl.Struct)
		return
	}

	byName := make(map[string]*ast.FunctionDecl)
	for _, fn := range impl.Methods {
		if _, dup := byName[fn.Name]; dup {
			a.errorf(diagnostics.DuplicateMethod, fn.P, "impl %s for %s defines method %s more than once", impl.Trait, impl.Struct, fn.Name)
			continue
		}
		byName[fn.Name] = fn
	}

	declared := a.table.TraitMethods(traitId)
	slots := make([]*ast.FunctionDecl, len(declared))
	complete := true
	for i, decl := range declared {
		fn, ok := byName[decl.Name]
		if !ok {
			a.errorf(diagnostics.IncompleteImpl, impl.P, "impl %s for %s is missing method %q", impl.Trait, impl.Struct, decl.Name)
			complete = false
			continue
		}
		delete(byName, decl.Name)
		a.checkImplMethod(impl, fn, decl)
		slots[i] = fn
	}

	// Whatever remains was never declared by the trait.
	for _, fn := range impl.Methods {
		if _, extra := byName[fn.Name]; extra {
			a.errorf(diagnostics.SignatureMismatch, fn.P, "method %s is not declared by trait %s", fn.Name, impl.Trait)
		}
	}

	if complete {
		a.table.AddImpl(&symbols.ImplRecord{
			Struct:  structId,
			Trait:   traitId,
			Block:   impl,
			Methods: slots,
		})
	}
}

// checkImplMethod verifies self receiver and signature shape against the
// trait's declared slot. Positions whose types failed to resolve earlier
// are skipped rather than double-reported.
func (a *Analyzer) checkImplMethod(impl *ast.ImplBlock, fn *ast.FunctionDecl, decl symbols.TraitMethod) {
	if !fn.HasSelf {
		a.errorf(diagnostics.SignatureMismatch, fn.P, "method %s must take self as its first parameter", fn.Name)
	}

	sig := a.resolveSig(fn.Params, fn.Return, fn.P, "impl "+impl.Trait+" for "+impl.Struct+", method "+fn.Name)
	a.res.MethodSigs[fn] = sig

	if len(sig.Params) != len(decl.Sig.Params) {
		a.errorf(diagnostics.SignatureMismatch, fn.P,
			"method %s takes %d parameters; trait %s declares %d",
			fn.Name, len(sig.Params), impl.Trait, len(decl.Sig.Params))
		return
	}
	for i := range sig.Params {
		if sig.Params[i] == nil || decl.Sig.Params[i] == nil {
			continue
		}
		if !typesystem.Equal(sig.Params[i], decl.Sig.Params[i]) {
			a.errorf(diagnostics.SignatureMismatch, fn.P,
				"method %s, parameter %d: trait %s declares %s but impl has %s",
				fn.Name, i+1, impl.Trait, decl.Sig.Params[i], sig.Params[i])
		}
	}
	if sig.Return != nil && decl.Sig.Return != nil && !typesystem.Equal(sig.Return, decl.Sig.Return) {
		a.errorf(diagnostics.SignatureMismatch, fn.P,
			"method %s returns %s but trait %s declares %s",
			fn.Name, sig.Return, impl.Trait, decl.Sig.Return)
	}
}

// checkSupertraitCoverage verifies that every impl of a trait with
// supertraits is accompanied by explicit impls of those supertraits.
// Capability records never satisfy each other implicitly.
func (a *Analyzer) checkSupertraitCoverage() {
	for _, rec := range a.table.Impls() {
		for _, super := range a.table.TraitSupers(rec.Trait) {
			if !a.table.HasImpl(rec.Struct, super) {
				a.errorf(diagnostics.IncompleteImpl, rec.Block.P,
					"impl %s for %s requires a separate impl of supertrait %s",
					a.table.Name(rec.Trait), a.table.Name(rec.Struct), a.table.Name(super))
			}
		}
	}
}
