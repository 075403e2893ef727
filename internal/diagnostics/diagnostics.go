// Package diagnostics collects compile-time errors in batch.
//
// Compilation gathers every detectable error across registration, impl
// resolution and table building before halting; code generation never runs
// while the list is non-empty.
package diagnostics

import "fmt"

// Kind identifies the class of a diagnostic.
type Kind string

const (
	UnresolvedType      Kind = "UnresolvedTypeError"
	IncompleteImpl      Kind = "IncompleteImplError"
	SignatureMismatch   Kind = "SignatureMismatchError"
	DuplicateImpl       Kind = "DuplicateImplError"
	InvalidIsCheck      Kind = "InvalidIsCheckError"
	InvalidDowncast     Kind = "InvalidDowncastError"
	DuplicateType       Kind = "DuplicateTypeError"
	DuplicateMethod     Kind = "DuplicateMethodError"
	UnknownMethod       Kind = "UnknownMethodError"
	TraitNotImplemented Kind = "TraitNotImplementedError"
	TypeMismatch        Kind = "TypeMismatchError"
	UndeclaredVariable  Kind = "UndeclaredVariableError"
)

// Diagnostic is a single compile-time error.
type Diagnostic struct {
	Kind    Kind
	Message string

	// File/Line locate the offending declaration when the front end
	// provided positions; Line is 0 when unknown.
	File string
	Line int
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// List accumulates diagnostics in the order they were raised.
// Stages append; nothing removes. Order is deterministic because every
// stage walks declarations in declaration order.
type List struct {
	items []Diagnostic
}

func NewList() *List {
	return &List{}
}

func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

func (l *List) Addf(kind Kind, file string, line int, format string, args ...interface{}) {
	l.Add(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), File: file, Line: line})
}

func (l *List) HasErrors() bool {
	return len(l.items) > 0
}

func (l *List) Len() int {
	return len(l.items)
}

// Items returns the collected diagnostics in raise order.
func (l *List) Items() []Diagnostic {
	return l.items
}
