package symbols

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// ImplKey identifies one (struct, trait) capability.
type ImplKey struct {
	Struct typesystem.TypeId
	Trait  typesystem.TypeId
}

// ImplRecord is one validated trait-qualified impl: an independent
// capability record for its (struct, trait) pair. Methods holds one body
// per trait method, stored at the trait's declared slot regardless of
// source order.
type ImplRecord struct {
	Struct  typesystem.TypeId
	Trait   typesystem.TypeId
	Block   *ast.ImplBlock
	Methods []*ast.FunctionDecl
}

// AddImpl registers a capability record. Returns false when the pair is
// already covered; a second impl for the same pair is rejected, not merged.
func (t *TypeTable) AddImpl(rec *ImplRecord) bool {
	key := ImplKey{Struct: rec.Struct, Trait: rec.Trait}
	if _, exists := t.impls[key]; exists {
		return false
	}
	t.impls[key] = rec
	t.implOrder = append(t.implOrder, key)
	return true
}

// ImplFor looks up the capability record for a (struct, trait) pair.
func (t *TypeTable) ImplFor(structId, traitId typesystem.TypeId) (*ImplRecord, bool) {
	rec, ok := t.impls[ImplKey{Struct: structId, Trait: traitId}]
	return rec, ok
}

// HasImpl reports whether the (struct, trait) capability exists. This is
// the whole trait-membership story: no inheritance, no structural fallback.
func (t *TypeTable) HasImpl(structId, traitId typesystem.TypeId) bool {
	_, ok := t.impls[ImplKey{Struct: structId, Trait: traitId}]
	return ok
}

// Impls returns all capability records in impl-declaration order.
func (t *TypeTable) Impls() []*ImplRecord {
	recs := make([]*ImplRecord, 0, len(t.implOrder))
	for _, key := range t.implOrder {
		recs = append(recs, t.impls[key])
	}
	return recs
}

// TraitsOf returns the traits a struct implements, in impl-declaration
// order.
func (t *TypeTable) TraitsOf(structId typesystem.TypeId) []typesystem.TypeId {
	var out []typesystem.TypeId
	for _, key := range t.implOrder {
		if key.Struct == structId {
			out = append(out, key.Trait)
		}
	}
	return out
}

// AddInherent registers a bare-impl method for a struct. Returns false on a
// duplicate name within the struct's inherent set.
func (t *TypeTable) AddInherent(structId typesystem.TypeId, fn *ast.FunctionDecl) bool {
	set := t.inherent[structId]
	if set == nil {
		set = make(map[string]*ast.FunctionDecl)
		t.inherent[structId] = set
	}
	if _, exists := set[fn.Name]; exists {
		return false
	}
	set[fn.Name] = fn
	t.inherentOrder[structId] = append(t.inherentOrder[structId], fn.Name)
	return true
}

// InherentMethod finds a struct's inherent method by name. Inherent methods
// are always statically resolved.
func (t *TypeTable) InherentMethod(structId typesystem.TypeId, name string) (*ast.FunctionDecl, bool) {
	fn, ok := t.inherent[structId][name]
	return fn, ok
}

// InherentMethods returns a struct's inherent methods in declaration order.
func (t *TypeTable) InherentMethods(structId typesystem.TypeId) []*ast.FunctionDecl {
	var out []*ast.FunctionDecl
	for _, name := range t.inherentOrder[structId] {
		out = append(out, t.inherent[structId][name])
	}
	return out
}
