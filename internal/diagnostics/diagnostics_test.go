package diagnostics

import (
	"strings"
	"testing"
)

func TestListAccumulatesInRaiseOrder(t *testing.T) {
	l := NewList()
	if l.HasErrors() {
		t.Error("fresh list reports errors")
	}
	l.Addf(UnresolvedType, "a.pony", 3, "type %q is not defined", "Wing")
	l.Addf(IncompleteImpl, "a.pony", 9, "missing method %q", "area")

	if !l.HasErrors() || l.Len() != 2 {
		t.Fatalf("len %d, want 2", l.Len())
	}
	items := l.Items()
	if items[0].Kind != UnresolvedType || items[1].Kind != IncompleteImpl {
		t.Error("diagnostics not in raise order")
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Kind: TypeMismatch, Message: "expected i32", File: "m.pony", Line: 7}
	if got := d.Error(); got != "m.pony:7: TypeMismatchError: expected i32" {
		t.Errorf("Error() = %q", got)
	}
	bare := Diagnostic{Kind: TypeMismatch, Message: "expected i32"}
	if got := bare.Error(); got != "TypeMismatchError: expected i32" {
		t.Errorf("Error() without position = %q", got)
	}
}

func TestRenderPlain(t *testing.T) {
	l := NewList()
	l.Addf(DuplicateImpl, "a.pony", 12, "Shape is already implemented for Point")

	var b strings.Builder
	l.Render(&b)
	out := b.String()
	if !strings.Contains(out, "a.pony:12: DuplicateImplError: Shape is already implemented for Point") {
		t.Errorf("render output %q", out)
	}
	if !strings.Contains(out, "compilation failed: 1 error\n") {
		t.Errorf("missing summary in %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal writer got ANSI codes")
	}
}

func TestRenderPluralSummary(t *testing.T) {
	l := NewList()
	l.Addf(UnknownMethod, "", 0, "no method fly")
	l.Addf(UnknownMethod, "", 0, "no method land")

	var b strings.Builder
	l.Render(&b)
	if !strings.Contains(b.String(), "compilation failed: 2 errors\n") {
		t.Errorf("render output %q", b.String())
	}
}
