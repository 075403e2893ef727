package symbols

import (
	"testing"

	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

func structDecl(name string, fields ...ast.Field) *ast.StructDecl {
	return &ast.StructDecl{Name: name, Fields: fields}
}

func named(name string) *ast.NamedType {
	return &ast.NamedType{Name: name}
}

func TestRegisterAssignsSequentialIds(t *testing.T) {
	tt := NewTypeTable()
	a, ok := tt.RegisterStruct(structDecl("A"))
	if !ok {
		t.Fatal("first registration rejected")
	}
	b, _ := tt.RegisterTrait(&ast.TraitDecl{Name: "B"})
	c, _ := tt.RegisterStruct(structDecl("C"))
	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("expected ids 0,1,2, got %d,%d,%d", a, b, c)
	}
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	tt := NewTypeTable()
	tt.RegisterStruct(structDecl("Point"))
	if _, ok := tt.RegisterStruct(structDecl("Point")); ok {
		t.Error("duplicate struct name accepted")
	}
	if _, ok := tt.RegisterTrait(&ast.TraitDecl{Name: "Point"}); ok {
		t.Error("trait reusing a struct name accepted")
	}
}

func TestFinalizeLayoutsAssignsOffsets(t *testing.T) {
	tt := NewTypeTable()
	id, _ := tt.RegisterStruct(structDecl("Jet"))
	f64, _ := PrimByName("f64")
	i32, _ := PrimByName("i32")
	u8, _ := PrimByName("u8")
	tt.SetStructFields(id, []FieldInfo{
		{Name: "fuel", Type: f64},
		{Name: "alt", Type: i32},
		{Name: "flag", Type: u8},
	})
	if err := tt.FinalizeLayouts(); err != nil {
		t.Fatal(err)
	}

	fields := tt.StructFields(id)
	wantOffsets := []int{0, 8, 12}
	for i, want := range wantOffsets {
		if fields[i].Offset != want {
			t.Errorf("field %s: offset %d, want %d", fields[i].Name, fields[i].Offset, want)
		}
	}
	if got := tt.StructType(id).Bytes; got != 13 {
		t.Errorf("struct size %d, want 13 (no padding)", got)
	}
}

func TestFinalizeLayoutsInlineStructDependency(t *testing.T) {
	// Outer is registered first but depends on Inner's size.
	tt := NewTypeTable()
	outer, _ := tt.RegisterStruct(structDecl("Outer"))
	inner, _ := tt.RegisterStruct(structDecl("Inner"))
	i64, _ := PrimByName("i64")
	tt.SetStructFields(outer, []FieldInfo{
		{Name: "a", Type: tt.StructType(inner)},
		{Name: "b", Type: i64},
	})
	tt.SetStructFields(inner, []FieldInfo{
		{Name: "x", Type: i64},
		{Name: "y", Type: i64},
	})
	if err := tt.FinalizeLayouts(); err != nil {
		t.Fatal(err)
	}
	if got := tt.StructType(outer).Bytes; got != 24 {
		t.Errorf("outer size %d, want 24", got)
	}
	if off := tt.StructFields(outer)[1].Offset; off != 16 {
		t.Errorf("field b offset %d, want 16", off)
	}
}

func TestFinalizeLayoutsRejectsCycle(t *testing.T) {
	tt := NewTypeTable()
	a, _ := tt.RegisterStruct(structDecl("A"))
	b, _ := tt.RegisterStruct(structDecl("B"))
	tt.SetStructFields(a, []FieldInfo{{Name: "b", Type: tt.StructType(b)}})
	tt.SetStructFields(b, []FieldInfo{{Name: "a", Type: tt.StructType(a)}})
	if err := tt.FinalizeLayouts(); err == nil {
		t.Fatal("cyclic struct layout accepted")
	}
}

func TestTraitMethodSlots(t *testing.T) {
	tt := NewTypeTable()
	id, _ := tt.RegisterTrait(&ast.TraitDecl{Name: "Aircraft"})
	tt.SetTraitMethods(id, []TraitMethod{
		{Name: "lift_off"}, {Name: "fly"}, {Name: "land"},
	})
	for i, name := range []string{"lift_off", "fly", "land"} {
		slot, ok := tt.TraitMethodSlot(id, name)
		if !ok || slot != i {
			t.Errorf("method %s: slot %d ok=%t, want %d", name, slot, ok, i)
		}
	}
	if _, ok := tt.TraitMethodSlot(id, "eject"); ok {
		t.Error("undeclared method got a slot")
	}
}

func TestAddImplRejectsDuplicatePair(t *testing.T) {
	tt := NewTypeTable()
	s, _ := tt.RegisterStruct(structDecl("Su27"))
	tr, _ := tt.RegisterTrait(&ast.TraitDecl{Name: "Aircraft"})
	if !tt.AddImpl(&ImplRecord{Struct: s, Trait: tr}) {
		t.Fatal("first impl rejected")
	}
	if tt.AddImpl(&ImplRecord{Struct: s, Trait: tr}) {
		t.Error("second impl for the same pair accepted")
	}
	if !tt.HasImpl(s, tr) {
		t.Error("registered impl not found")
	}
}

func TestTraitsOfPreservesImplOrder(t *testing.T) {
	tt := NewTypeTable()
	s, _ := tt.RegisterStruct(structDecl("Su27"))
	a, _ := tt.RegisterTrait(&ast.TraitDecl{Name: "Aircraft"})
	f, _ := tt.RegisterTrait(&ast.TraitDecl{Name: "FighterJet"})
	tt.AddImpl(&ImplRecord{Struct: s, Trait: f})
	tt.AddImpl(&ImplRecord{Struct: s, Trait: a})
	got := tt.TraitsOf(s)
	if len(got) != 2 || got[0] != f || got[1] != a {
		t.Errorf("TraitsOf = %v, want [%d %d]", got, f, a)
	}
}

func TestResolveTypeExprPointerKinds(t *testing.T) {
	tt := NewTypeTable()
	raw, err := tt.ResolveTypeExpr(&ast.PointerType{Kind: ast.RawPointer})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := raw.(typesystem.Raw); !ok {
		t.Errorf("raw pointer resolved to %T", raw)
	}

	typed, err := tt.ResolveTypeExpr(&ast.PointerType{Kind: ast.TypedPointer, Elem: named("u32")})
	if err != nil {
		t.Fatal(err)
	}
	p, ok := typed.(typesystem.Ptr)
	if !ok || p.Elem.String() != "u32" {
		t.Errorf("typed pointer resolved to %v", typed)
	}

	if _, err := tt.ResolveTypeExpr(named("Missing")); err == nil {
		t.Error("unknown name resolved")
	}
}

func TestResolveTypeExprNilIsUnit(t *testing.T) {
	tt := NewTypeTable()
	got, err := tt.ResolveTypeExpr(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !typesystem.Equal(got, typesystem.Unit) {
		t.Errorf("nil type expr resolved to %v, want unit", got)
	}
}
