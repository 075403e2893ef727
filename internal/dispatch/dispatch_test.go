package dispatch

import (
	"testing"

	"github.com/ricardopieper/pony-lang/internal/analyzer"
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
)

func named(n string) *ast.NamedType { return &ast.NamedType{Name: n} }

func method(name string) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: name, HasSelf: true}
}

func implBlock(structName, traitName string, methods ...string) *ast.ImplBlock {
	b := &ast.ImplBlock{Struct: structName, Trait: traitName}
	for _, m := range methods {
		b.Methods = append(b.Methods, method(m))
	}
	return b
}

func build(t *testing.T, prog *ast.Program) (*Set, *analyzer.Result) {
	t.Helper()
	diags := diagnostics.NewList()
	res := analyzer.New(diags).Analyze(prog)
	if diags.HasErrors() {
		t.Fatalf("analysis errors: %v", diags.Items())
	}
	return Build(res.Table), res
}

func flankerProgram() *ast.Program {
	return &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "Su27Flanker", Fields: []ast.Field{{Name: "fuel", Type: named("f64")}}},
			{Name: "B2Spirit", Fields: []ast.Field{{Name: "fuel", Type: named("f64")}}},
		},
		Traits: []*ast.TraitDecl{
			{Name: "Aircraft", Methods: []ast.MethodSig{
				{Name: "lift_off"}, {Name: "fly"}, {Name: "land"},
			}},
			{Name: "FighterJet", Methods: []ast.MethodSig{{Name: "engage"}}},
		},
		Impls: []*ast.ImplBlock{
			implBlock("Su27Flanker", "Aircraft", "lift_off", "fly", "land"),
			implBlock("Su27Flanker", "FighterJet", "engage"),
			implBlock("B2Spirit", "Aircraft", "land", "fly", "lift_off"), // source order differs
		},
	}
}

func TestOneTablePerStructTraitPair(t *testing.T) {
	set, res := build(t, flankerProgram())
	if set.Len() != 3 {
		t.Fatalf("%d tables, want 3", set.Len())
	}

	tt := res.Table
	su27, _ := tt.Lookup("Su27Flanker")
	aircraft, _ := tt.Lookup("Aircraft")
	fighter, _ := tt.Lookup("FighterJet")

	at, ok := set.Lookup(su27.Id, aircraft.Id)
	if !ok {
		t.Fatal("no table for (Su27Flanker, Aircraft)")
	}
	if at.SlotCount() != 3 {
		t.Errorf("Aircraft table has %d slots, want 3", at.SlotCount())
	}

	ft, ok := set.Lookup(su27.Id, fighter.Id)
	if !ok {
		t.Fatal("no table for (Su27Flanker, FighterJet)")
	}
	if ft.SlotCount() != 1 {
		t.Errorf("FighterJet table has %d slots, want 1", ft.SlotCount())
	}
}

func TestSlotOrderFollowsTraitDeclaration(t *testing.T) {
	set, res := build(t, flankerProgram())
	tt := res.Table
	aircraft, _ := tt.Lookup("Aircraft")
	want := []string{"lift_off", "fly", "land"}

	// Both implementers expose the same slot layout, even though B2Spirit
	// listed its methods in a different source order.
	for _, structName := range []string{"Su27Flanker", "B2Spirit"} {
		entry, _ := tt.Lookup(structName)
		table, ok := set.Lookup(entry.Id, aircraft.Id)
		if !ok {
			t.Fatalf("no Aircraft table for %s", structName)
		}
		for i, name := range want {
			slot := table.Slot(i)
			if slot.Method != name {
				t.Errorf("%s slot %d holds %s, want %s", structName, i, slot.Method, name)
			}
			if slot.Fn == nil || slot.Fn.Name != name {
				t.Errorf("%s slot %d bound to wrong body", structName, i)
			}
		}
	}
}

func TestTablesAreStructurallyInterchangeable(t *testing.T) {
	set, res := build(t, flankerProgram())
	tt := res.Table
	aircraft, _ := tt.Lookup("Aircraft")
	su27, _ := tt.Lookup("Su27Flanker")
	b2, _ := tt.Lookup("B2Spirit")

	a, _ := set.Lookup(su27.Id, aircraft.Id)
	b, _ := set.Lookup(b2.Id, aircraft.Id)
	if a.SlotCount() != b.SlotCount() {
		t.Fatalf("slot counts differ: %d vs %d", a.SlotCount(), b.SlotCount())
	}
	for i := 0; i < a.SlotCount(); i++ {
		if a.Slot(i).Method != b.Slot(i).Method {
			t.Errorf("slot %d names differ: %s vs %s", i, a.Slot(i).Method, b.Slot(i).Method)
		}
	}
}

func TestBuildOrderIsDeterministic(t *testing.T) {
	var first []string
	for run := 0; run < 5; run++ {
		set, _ := build(t, flankerProgram())
		var order []string
		for _, table := range set.Tables() {
			order = append(order, table.String())
		}
		if first == nil {
			first = order
			continue
		}
		for i := range first {
			if order[i] != first[i] {
				t.Fatalf("run %d: order %v differs from %v", run, order, first)
			}
		}
	}
}

func TestSlotsReturnsACopy(t *testing.T) {
	set, res := build(t, flankerProgram())
	tt := res.Table
	su27, _ := tt.Lookup("Su27Flanker")
	aircraft, _ := tt.Lookup("Aircraft")
	table, _ := set.Lookup(su27.Id, aircraft.Id)

	slots := table.Slots()
	slots[0].Method = "clobbered"
	if table.Slot(0).Method != "lift_off" {
		t.Error("mutating the returned slice changed the table")
	}
}
