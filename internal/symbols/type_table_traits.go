package symbols

import (
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// SetTraitMethods stores the resolved method signatures of a trait, in
// declaration order. Slot indices into this list are the dispatch-table
// layout for every implementer.
func (t *TypeTable) SetTraitMethods(id typesystem.TypeId, methods []TraitMethod) {
	t.traitMethods[id] = methods
}

// TraitMethods returns the declared method list of a trait in slot order.
func (t *TypeTable) TraitMethods(id typesystem.TypeId) []TraitMethod {
	return t.traitMethods[id]
}

// TraitMethodSlot finds a trait method's slot index by name.
func (t *TypeTable) TraitMethodSlot(id typesystem.TypeId, name string) (int, bool) {
	for i, m := range t.traitMethods[id] {
		if m.Name == name {
			return i, true
		}
	}
	return 0, false
}

// SetTraitSupers stores the resolved supertrait ids of a trait.
func (t *TypeTable) SetTraitSupers(id typesystem.TypeId, supers []typesystem.TypeId) {
	t.traitSupers[id] = supers
}

// TraitSupers returns the declared supertraits of a trait.
// Supertraits are independent capabilities: satisfying the subtrait never
// implies satisfying these.
func (t *TypeTable) TraitSupers(id typesystem.TypeId) []typesystem.TypeId {
	return t.traitSupers[id]
}
