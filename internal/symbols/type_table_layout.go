package symbols

import (
	"fmt"

	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// SizeOf returns the storage footprint of a type, consulting the table for
// struct sizes so that values resolved before layout finalization are still
// sized correctly.
func (t *TypeTable) SizeOf(ty typesystem.Type) int {
	if st, ok := ty.(typesystem.Struct); ok {
		return t.structSizes[st.Id]
	}
	return ty.ByteSize()
}

// FinalizeLayouts computes every struct's byte size and field offsets once
// all field types are resolved. Struct-typed fields are stored inline, so
// sizes are computed in dependency order; a struct that contains itself
// (directly or transitively) has no finite layout and is an error.
func (t *TypeTable) FinalizeLayouts() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[typesystem.TypeId]int)

	var visit func(id typesystem.TypeId) error
	visit = func(id typesystem.TypeId) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("struct %s contains itself; inline layout would be infinite", t.Name(id))
		}
		state[id] = visiting
		size := 0
		for _, f := range t.structFields[id] {
			if inner, ok := f.Type.(typesystem.Struct); ok {
				if err := visit(inner.Id); err != nil {
					return err
				}
			}
			size += t.SizeOf(f.Type)
		}
		t.structSizes[id] = size
		state[id] = done
		return nil
	}

	for _, id := range t.StructIds() {
		if err := visit(id); err != nil {
			return err
		}
	}

	// Sizes are fixed; assign field offsets in declaration order.
	for _, id := range t.StructIds() {
		offset := 0
		fields := t.structFields[id]
		for i := range fields {
			fields[i].Offset = offset
			offset += t.SizeOf(fields[i].Type)
		}
	}
	return nil
}
