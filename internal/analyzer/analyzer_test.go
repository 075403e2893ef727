package analyzer

import (
	"strings"
	"testing"

	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

func named(n string) *ast.NamedType { return &ast.NamedType{Name: n} }

func param(name, typeName string) ast.Param {
	return ast.Param{Name: name, Type: named(typeName)}
}

func method(name string, ret ast.TypeExpr, body ...ast.Statement) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: name, HasSelf: true, Return: ret, Body: body}
}

func analyze(t *testing.T, p *ast.Program) (*Result, *diagnostics.List) {
	t.Helper()
	diags := diagnostics.NewList()
	res := New(diags).Analyze(p)
	return res, diags
}

func wantDiag(t *testing.T, diags *diagnostics.List, kind diagnostics.Kind, substr string) {
	t.Helper()
	for _, d := range diags.Items() {
		if d.Kind == kind && strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("no %s diagnostic containing %q; got %v", kind, substr, diags.Items())
}

func wantClean(t *testing.T, diags *diagnostics.List) {
	t.Helper()
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.Items())
	}
}

// aircraftProgram is the running example: one struct implementing two
// independent traits, plus a free function that exercises both dispatch
// modes and a coercion site.
func aircraftProgram() *ast.Program {
	flyBody := func(delta float64) []ast.Statement {
		return []ast.Statement{
			&ast.AssignStatement{
				Target: &ast.FieldAccess{Object: &ast.Identifier{Name: "self"}, Field: "fuel"},
				Value: &ast.BinaryExpression{
					Operator: "-",
					Left:     &ast.FieldAccess{Object: &ast.Identifier{Name: "self"}, Field: "fuel"},
					Right:    &ast.FloatLiteral{Value: delta},
				},
			},
		}
	}
	return &ast.Program{
		File: "aircraft.pony",
		Structs: []*ast.StructDecl{
			{Name: "Su27Flanker", Fields: []ast.Field{{Name: "fuel", Type: named("f64")}}},
		},
		Traits: []*ast.TraitDecl{
			{Name: "Aircraft", Methods: []ast.MethodSig{
				{Name: "lift_off"}, {Name: "fly"}, {Name: "land"},
			}},
			{Name: "FighterJet", Methods: []ast.MethodSig{{Name: "engage"}}},
		},
		Impls: []*ast.ImplBlock{
			{Struct: "Su27Flanker", Trait: "Aircraft", Methods: []*ast.FunctionDecl{
				method("lift_off", nil, flyBody(10)...),
				method("fly", nil, flyBody(1)...),
				method("land", nil, flyBody(5)...),
			}},
			{Struct: "Su27Flanker", Trait: "FighterJet", Methods: []*ast.FunctionDecl{
				method("engage", nil),
			}},
		},
		Funcs: []*ast.FunctionDecl{
			{Name: "main", Body: []ast.Statement{
				&ast.VarStatement{Name: "jet", Value: &ast.StructLiteral{
					Name:   "Su27Flanker",
					Fields: []ast.FieldInit{{Name: "fuel", Value: &ast.FloatLiteral{Value: 100}}},
				}},
				// Static dispatch: concrete receiver.
				&ast.ExpressionStatement{Expr: &ast.MethodCall{
					Receiver: &ast.Identifier{Name: "jet"}, Method: "lift_off"}},
				// Coercion site: trait-typed binding over a concrete value.
				&ast.VarStatement{Name: "target", Type: named("Aircraft"),
					Value: &ast.Identifier{Name: "jet"}},
				// Dynamic dispatch: trait-typed receiver.
				&ast.ExpressionStatement{Expr: &ast.MethodCall{
					Receiver: &ast.Identifier{Name: "target"}, Method: "fly"}},
			}},
		},
	}
}

func TestAircraftProgramIsClean(t *testing.T) {
	_, diags := analyze(t, aircraftProgram())
	wantClean(t, diags)
}

func TestDispatchDecisionsFollowStaticReceiverType(t *testing.T) {
	prog := aircraftProgram()
	res, diags := analyze(t, prog)
	wantClean(t, diags)

	body := prog.Funcs[0].Body
	staticCall := body[1].(*ast.ExpressionStatement).Expr.(*ast.MethodCall)
	dynCall := body[3].(*ast.ExpressionStatement).Expr.(*ast.MethodCall)

	st, ok := res.Calls[staticCall]
	if !ok || st.Dynamic {
		t.Errorf("concrete receiver call resolved dynamically: %+v", st)
	}
	if st.Ref.Name != "lift_off" {
		t.Errorf("static target %q, want lift_off", st.Ref.Name)
	}

	dy, ok := res.Calls[dynCall]
	if !ok || !dy.Dynamic {
		t.Errorf("trait receiver call resolved statically: %+v", dy)
	}
	if dy.Slot != 1 {
		t.Errorf("fly resolved to slot %d, want 1 (trait declaration order)", dy.Slot)
	}
}

func TestCoercionRecordedOnlyAtBindingSite(t *testing.T) {
	prog := aircraftProgram()
	res, diags := analyze(t, prog)
	wantClean(t, diags)

	body := prog.Funcs[0].Body
	coerced := body[2].(*ast.VarStatement).Value
	if _, ok := res.Coercions[coerced]; !ok {
		t.Error("trait-typed binding did not record a coercion")
	}

	staticRecv := body[1].(*ast.ExpressionStatement).Expr.(*ast.MethodCall).Receiver
	if _, ok := res.Coercions[staticRecv]; ok {
		t.Error("static call receiver recorded a coercion")
	}
	if len(res.Coercions) != 1 {
		t.Errorf("%d coercion sites recorded, want exactly 1", len(res.Coercions))
	}
}

func TestIncompleteImplNamesMissingMethod(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "Point", Fields: []ast.Field{
				{Name: "x", Type: named("i32")},
				{Name: "y", Type: named("i32")},
			}},
		},
		Traits: []*ast.TraitDecl{
			{Name: "Shape", Methods: []ast.MethodSig{{Name: "area", Return: named("f64")}}},
		},
		Impls: []*ast.ImplBlock{
			{Struct: "Point", Trait: "Shape"},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.IncompleteImpl, `"area"`)
}

func TestDuplicateImplRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Impls = append(prog.Impls, &ast.ImplBlock{
		Struct: "Su27Flanker", Trait: "FighterJet",
		Methods: []*ast.FunctionDecl{method("engage", nil)},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.DuplicateImpl, "FighterJet")
}

func TestSignatureMismatchParamAndReturn(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{{Name: "Counter"}},
		Traits: []*ast.TraitDecl{
			{Name: "Step", Methods: []ast.MethodSig{
				{Name: "step", Params: []ast.Param{param("by", "i32")}, Return: named("i32")},
			}},
		},
		Impls: []*ast.ImplBlock{
			{Struct: "Counter", Trait: "Step", Methods: []*ast.FunctionDecl{
				{Name: "step", HasSelf: true,
					Params: []ast.Param{param("by", "i64")},
					Return: named("f64")},
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.SignatureMismatch, "parameter 1")
	wantDiag(t, diags, diagnostics.SignatureMismatch, "returns")
}

func TestExtraMethodNotDeclaredByTrait(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{{Name: "Counter"}},
		Traits: []*ast.TraitDecl{
			{Name: "Step", Methods: []ast.MethodSig{{Name: "step"}}},
		},
		Impls: []*ast.ImplBlock{
			{Struct: "Counter", Trait: "Step", Methods: []*ast.FunctionDecl{
				method("step", nil),
				method("sprint", nil),
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.SignatureMismatch, "sprint")
}

func TestImplMethodRequiresSelf(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{{Name: "Counter"}},
		Traits: []*ast.TraitDecl{
			{Name: "Step", Methods: []ast.MethodSig{{Name: "step"}}},
		},
		Impls: []*ast.ImplBlock{
			{Struct: "Counter", Trait: "Step", Methods: []*ast.FunctionDecl{
				{Name: "step"},
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.SignatureMismatch, "self")
}

func TestUnresolvedTypesAreAllReported(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "Broken", Fields: []ast.Field{
				{Name: "a", Type: named("Ghost")},
				{Name: "b", Type: named("Phantom")},
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.UnresolvedType, "Ghost")
	wantDiag(t, diags, diagnostics.UnresolvedType, "Phantom")
	if diags.Len() != 2 {
		t.Errorf("%d diagnostics, want 2 (batch collection)", diags.Len())
	}
}

func TestSupertraitRequiresSeparateImpl(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{{Name: "Su27Flanker"}},
		Traits: []*ast.TraitDecl{
			{Name: "Aircraft", Methods: []ast.MethodSig{{Name: "fly"}}},
			{Name: "FighterJet", Supers: []string{"Aircraft"},
				Methods: []ast.MethodSig{{Name: "engage"}}},
		},
		Impls: []*ast.ImplBlock{
			{Struct: "Su27Flanker", Trait: "FighterJet", Methods: []*ast.FunctionDecl{
				method("engage", nil),
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.IncompleteImpl, "supertrait Aircraft")

	// Adding the supertrait impl makes the same program clean; no implicit
	// satisfaction in either direction.
	prog.Impls = append(prog.Impls, &ast.ImplBlock{
		Struct: "Su27Flanker", Trait: "Aircraft",
		Methods: []*ast.FunctionDecl{method("fly", nil)},
	})
	_, diags = analyze(t, prog)
	wantClean(t, diags)
}

func TestIsCheckAgainstStructRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.ExpressionStatement{
		Expr: &ast.IsExpression{Value: &ast.Identifier{Name: "target"}, Target: "Su27Flanker"},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.InvalidIsCheck, "Su27Flanker")
}

func TestDowncastFromTraitRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.VarStatement{
		Name: "back",
		Value: &ast.CastExpression{
			Value:  &ast.Identifier{Name: "target"},
			Target: named("Su27Flanker"),
		},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.InvalidDowncast, "no downcast path")
}

func TestTraitToTraitCastRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.VarStatement{
		Name: "jet2",
		Value: &ast.CastExpression{
			Value:  &ast.Identifier{Name: "target"},
			Target: named("FighterJet"),
		},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.TypeMismatch, "single dispatch table")
}

func TestCastToUnimplementedTraitRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Traits = append(prog.Traits, &ast.TraitDecl{
		Name: "Submarine", Methods: []ast.MethodSig{{Name: "dive"}},
	})
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.VarStatement{
		Name: "sub",
		Value: &ast.CastExpression{
			Value:  &ast.Identifier{Name: "jet"},
			Target: named("Submarine"),
		},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.TraitNotImplemented, "Submarine")
}

func TestAssignmentToUnimplementedTraitRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Traits = append(prog.Traits, &ast.TraitDecl{
		Name: "Submarine", Methods: []ast.MethodSig{{Name: "dive"}},
	})
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.VarStatement{
		Name: "sub", Type: named("Submarine"),
		Value: &ast.Identifier{Name: "jet"},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.TraitNotImplemented, "Submarine")
}

func TestDuplicateTypeNames(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{{Name: "Point"}, {Name: "Point"}},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.DuplicateType, "Point")
}

func TestUnknownMethodOnStruct(t *testing.T) {
	prog := aircraftProgram()
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.ExpressionStatement{
		Expr: &ast.MethodCall{Receiver: &ast.Identifier{Name: "jet"}, Method: "teleport"},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.UnknownMethod, "teleport")
}

func TestUndeclaredVariable(t *testing.T) {
	prog := &ast.Program{
		Funcs: []*ast.FunctionDecl{
			{Name: "main", Body: []ast.Statement{
				&ast.ExpressionStatement{Expr: &ast.Identifier{Name: "ghost"}},
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.UndeclaredVariable, "ghost")
}

func TestFieldAccessThroughTraitRejected(t *testing.T) {
	prog := aircraftProgram()
	prog.Funcs[0].Body = append(prog.Funcs[0].Body, &ast.ExpressionStatement{
		Expr: &ast.FieldAccess{Object: &ast.Identifier{Name: "target"}, Field: "fuel"},
	})
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.TypeMismatch, "methods only")
}

func TestPointerOpTyping(t *testing.T) {
	prog := &ast.Program{
		Funcs: []*ast.FunctionDecl{
			{Name: "main", Body: []ast.Statement{
				&ast.VarStatement{Name: "raw", Value: &ast.CallExpression{
					Callee: "mem_alloc",
					Args:   []ast.Expression{&ast.IntegerLiteral{Value: 64}},
				}},
				&ast.VarStatement{Name: "typed", Value: &ast.PointerOp{
					Receiver: &ast.Identifier{Name: "raw"},
					Op:       "reinterpret",
					TypeArg:  named("u32"),
				}},
				&ast.VarStatement{Name: "sized", Value: &ast.PointerOp{
					Receiver: &ast.Identifier{Name: "typed"},
					Op:       "with_size",
					Args:     []ast.Expression{&ast.IntegerLiteral{Value: 64}},
				}},
				// offset drops the recorded bound.
				&ast.VarStatement{Name: "moved", Type: &ast.PointerType{Kind: ast.TypedPointer, Elem: named("u32")},
					Value: &ast.PointerOp{
						Receiver: &ast.Identifier{Name: "sized"},
						Op:       "offset",
						Args:     []ast.Expression{&ast.IntegerLiteral{Value: 2}},
					}},
			}},
		},
	}
	res, diags := analyze(t, prog)
	wantClean(t, diags)

	body := prog.Funcs[0].Body
	rawT := res.Types[body[0].(*ast.VarStatement).Value]
	if _, ok := rawT.(typesystem.Raw); !ok {
		t.Errorf("mem_alloc typed as %v, want RawAddress", rawT)
	}
	sizedT := res.Types[body[2].(*ast.VarStatement).Value]
	if _, ok := sizedT.(typesystem.Sized); !ok {
		t.Errorf("with_size typed as %v, want SizedAddress", sizedT)
	}
}

func TestWithSizeOnSizedRejected(t *testing.T) {
	prog := &ast.Program{
		Funcs: []*ast.FunctionDecl{
			{Name: "main", Body: []ast.Statement{
				&ast.VarStatement{Name: "sized", Value: &ast.PointerOp{
					Receiver: &ast.PointerOp{
						Receiver: &ast.CallExpression{Callee: "mem_alloc",
							Args: []ast.Expression{&ast.IntegerLiteral{Value: 8}}},
						Op:      "reinterpret",
						TypeArg: named("u8"),
					},
					Op:   "with_size",
					Args: []ast.Expression{&ast.IntegerLiteral{Value: 8}},
				}},
				&ast.ExpressionStatement{Expr: &ast.PointerOp{
					Receiver: &ast.Identifier{Name: "sized"},
					Op:       "with_size",
					Args:     []ast.Expression{&ast.IntegerLiteral{Value: 4}},
				}},
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.UnknownMethod, "with_size")
}

func TestCopySizedRequiresSizedDestination(t *testing.T) {
	prog := &ast.Program{
		Funcs: []*ast.FunctionDecl{
			{Name: "main", Body: []ast.Statement{
				&ast.VarStatement{Name: "src", Value: &ast.PointerOp{
					Receiver: &ast.PointerOp{
						Receiver: &ast.CallExpression{Callee: "mem_alloc",
							Args: []ast.Expression{&ast.IntegerLiteral{Value: 8}}},
						Op:      "reinterpret",
						TypeArg: named("u8"),
					},
					Op:   "with_size",
					Args: []ast.Expression{&ast.IntegerLiteral{Value: 8}},
				}},
				&ast.VarStatement{Name: "dest", Value: &ast.PointerOp{
					Receiver: &ast.CallExpression{Callee: "mem_alloc",
						Args: []ast.Expression{&ast.IntegerLiteral{Value: 8}}},
					Op:      "reinterpret",
					TypeArg: named("u8"),
				}},
				&ast.ExpressionStatement{Expr: &ast.PointerOp{
					Receiver: &ast.Identifier{Name: "src"},
					Op:       "copy_sized",
					Args: []ast.Expression{
						&ast.Identifier{Name: "dest"},
						&ast.IntegerLiteral{Value: 4},
					},
				}},
			}},
		},
	}
	_, diags := analyze(t, prog)
	wantDiag(t, diags, diagnostics.TypeMismatch, "destination must be a sized address")
}
