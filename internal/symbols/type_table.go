// Package symbols implements the type registry: the catalog of struct and
// trait declarations, their stable TypeIds, and the impl records built over
// them.
package symbols

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// EntryKind distinguishes what a name is registered as.
type EntryKind int

const (
	StructEntry EntryKind = iota
	TraitEntry
)

// Entry is the registration record for a name.
type Entry struct {
	Id   typesystem.TypeId
	Kind EntryKind
}

// FieldInfo is a resolved struct field: canonical type plus its byte offset
// inside the struct, in declaration order.
type FieldInfo struct {
	Name   string
	Type   typesystem.Type
	Offset int
}

// TraitMethod is a resolved trait method signature at its declared slot.
type TraitMethod struct {
	Name string
	Sig  typesystem.Func
}

// TypeTable assigns TypeIds and catalogs declarations. Ids are sequential,
// assigned once, never reused; iteration helpers follow registration order
// so every downstream stage is deterministic.
type TypeTable struct {
	nextId typesystem.TypeId

	names map[string]Entry
	order []typesystem.TypeId

	structDecls  map[typesystem.TypeId]*ast.StructDecl
	structFields map[typesystem.TypeId][]FieldInfo
	structSizes  map[typesystem.TypeId]int

	traitDecls   map[typesystem.TypeId]*ast.TraitDecl
	traitMethods map[typesystem.TypeId][]TraitMethod
	traitSupers  map[typesystem.TypeId][]typesystem.TypeId

	impls     map[ImplKey]*ImplRecord
	implOrder []ImplKey

	inherent      map[typesystem.TypeId]map[string]*ast.FunctionDecl
	inherentOrder map[typesystem.TypeId][]string
}

func NewTypeTable() *TypeTable {
	return &TypeTable{
		names:         make(map[string]Entry),
		structDecls:   make(map[typesystem.TypeId]*ast.StructDecl),
		structFields:  make(map[typesystem.TypeId][]FieldInfo),
		structSizes:   make(map[typesystem.TypeId]int),
		traitDecls:    make(map[typesystem.TypeId]*ast.TraitDecl),
		traitMethods:  make(map[typesystem.TypeId][]TraitMethod),
		traitSupers:   make(map[typesystem.TypeId][]typesystem.TypeId),
		impls:         make(map[ImplKey]*ImplRecord),
		inherent:      make(map[typesystem.TypeId]map[string]*ast.FunctionDecl),
		inherentOrder: make(map[typesystem.TypeId][]string),
	}
}

// RegisterStruct assigns a fresh TypeId to a struct declaration.
// Returns false if the name is already taken; the existing registration is
// left untouched.
func (t *TypeTable) RegisterStruct(decl *ast.StructDecl) (typesystem.TypeId, bool) {
	if _, exists := t.names[decl.Name]; exists {
		return typesystem.NoTypeId, false
	}
	id := t.nextId
	t.nextId++
	t.names[decl.Name] = Entry{Id: id, Kind: StructEntry}
	t.order = append(t.order, id)
	t.structDecls[id] = decl
	return id, true
}

// RegisterTrait assigns a fresh TypeId to a trait declaration.
func (t *TypeTable) RegisterTrait(decl *ast.TraitDecl) (typesystem.TypeId, bool) {
	if _, exists := t.names[decl.Name]; exists {
		return typesystem.NoTypeId, false
	}
	id := t.nextId
	t.nextId++
	t.names[decl.Name] = Entry{Id: id, Kind: TraitEntry}
	t.order = append(t.order, id)
	t.traitDecls[id] = decl
	return id, true
}

// Lookup resolves a name to its registration entry.
func (t *TypeTable) Lookup(name string) (Entry, bool) {
	e, ok := t.names[name]
	return e, ok
}

// Name returns the declared name for an id.
func (t *TypeTable) Name(id typesystem.TypeId) string {
	if d, ok := t.structDecls[id]; ok {
		return d.Name
	}
	if d, ok := t.traitDecls[id]; ok {
		return d.Name
	}
	return ""
}

// StructDecl returns the declaration registered under id.
func (t *TypeTable) StructDecl(id typesystem.TypeId) (*ast.StructDecl, bool) {
	d, ok := t.structDecls[id]
	return d, ok
}

// TraitDecl returns the declaration registered under id.
func (t *TypeTable) TraitDecl(id typesystem.TypeId) (*ast.TraitDecl, bool) {
	d, ok := t.traitDecls[id]
	return d, ok
}

// SetStructFields stores the resolved field list. Offsets and the struct
// size are assigned later by FinalizeLayouts, once every struct's fields
// are known.
func (t *TypeTable) SetStructFields(id typesystem.TypeId, fields []FieldInfo) {
	t.structFields[id] = fields
}

// StructFields returns the resolved fields of a struct.
func (t *TypeTable) StructFields(id typesystem.TypeId) []FieldInfo {
	return t.structFields[id]
}

// FieldOf finds a resolved field by name.
func (t *TypeTable) FieldOf(id typesystem.TypeId, name string) (FieldInfo, bool) {
	for _, f := range t.structFields[id] {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// StructType returns the canonical type for a registered struct.
func (t *TypeTable) StructType(id typesystem.TypeId) typesystem.Struct {
	return typesystem.Struct{Id: id, Name: t.Name(id), Bytes: t.structSizes[id]}
}

// TraitType returns the canonical type for a registered trait.
func (t *TypeTable) TraitType(id typesystem.TypeId) typesystem.Trait {
	return typesystem.Trait{Id: id, Name: t.Name(id)}
}

// StructIds returns all struct ids in registration order.
func (t *TypeTable) StructIds() []typesystem.TypeId {
	var ids []typesystem.TypeId
	for _, id := range t.order {
		if _, ok := t.structDecls[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// TraitIds returns all trait ids in registration order.
func (t *TypeTable) TraitIds() []typesystem.TypeId {
	var ids []typesystem.TypeId
	for _, id := range t.order {
		if _, ok := t.traitDecls[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
