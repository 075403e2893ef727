// Package dispatch builds the per-(struct, trait) dispatch tables.
//
// A table's slot order depends only on the trait's declaration order, so
// two tables for the same trait are structurally interchangeable: same slot
// count, same per-slot signature shape. Generated dispatch code is written
// once per trait, never once per implementer.
package dispatch

import (
	"fmt"

	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// Slot is one dispatch-table entry: the trait's i-th declared method,
// implemented for this table's struct.
type Slot struct {
	Method string
	Sig    typesystem.Func
	Fn     *ast.FunctionDecl
}

// Table is the immutable dispatch table of one (struct, trait) pair.
type Table struct {
	Struct     typesystem.TypeId
	Trait      typesystem.TypeId
	StructName string
	TraitName  string

	slots []Slot
}

func (t *Table) SlotCount() int { return len(t.slots) }

func (t *Table) Slot(i int) Slot { return t.slots[i] }

// Slots returns a copy of the slot list; the table itself never changes
// after Build.
func (t *Table) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("DispatchTable(%s, %s)", t.StructName, t.TraitName)
}

// Key identifies a table by its (struct, trait) pair.
type Key struct {
	Struct typesystem.TypeId
	Trait  typesystem.TypeId
}

// Set is the complete table collection of one compilation. Built exactly
// once; afterwards only lookup is possible.
type Set struct {
	tables map[Key]*Table
	order  []Key
}

// Build generates every dispatch table from the validated capability
// records: one per (struct, trait) pair, structs in registration order,
// traits in impl-declaration order within a struct. It must only run after
// every impl block is visible and the diagnostic list is clean.
func Build(tt *symbols.TypeTable) *Set {
	set := &Set{tables: make(map[Key]*Table)}
	for _, structId := range tt.StructIds() {
		for _, traitId := range tt.TraitsOf(structId) {
			rec, ok := tt.ImplFor(structId, traitId)
			if !ok {
				continue
			}
			declared := tt.TraitMethods(traitId)
			slots := make([]Slot, len(declared))
			for i, m := range declared {
				slots[i] = Slot{Method: m.Name, Sig: m.Sig, Fn: rec.Methods[i]}
			}
			key := Key{Struct: structId, Trait: traitId}
			set.tables[key] = &Table{
				Struct:     structId,
				Trait:      traitId,
				StructName: tt.Name(structId),
				TraitName:  tt.Name(traitId),
				slots:      slots,
			}
			set.order = append(set.order, key)
		}
	}
	return set
}

// Lookup returns the table for a (struct, trait) pair.
func (s *Set) Lookup(structId, traitId typesystem.TypeId) (*Table, bool) {
	t, ok := s.tables[Key{Struct: structId, Trait: traitId}]
	return t, ok
}

// Tables returns every table in build order.
func (s *Set) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.tables[key])
	}
	return out
}

// Len returns the number of tables.
func (s *Set) Len() int { return len(s.order) }
