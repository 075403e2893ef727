package vm

import (
	"fmt"

	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/dispatch"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// assignTableIndices fixes the image position of every dispatch table before
// any body is compiled, so coercion sites can embed table indices directly.
func assignTableIndices(img *Image, set *dispatch.Set) {
	img.TableIdx = make(map[TableKey]int, set.Len())
	img.Tables = make([]CompiledTable, set.Len())
	for i, t := range set.Tables() {
		img.TableIdx[TableKey{Struct: t.Struct, Trait: t.Trait}] = i
	}
}

// planLayout assigns code addresses to every compiled function and lowers the
// dispatch set into CompiledTables. Methods of the same struct were emitted
// consecutively, so each struct owns a contiguous address range; the planner
// verifies that before committing addresses.
func planLayout(img *Image, set *dispatch.Set, fnIdx map[*ast.FunctionDecl]int, tt *symbols.TypeTable) error {
	addr := 0
	seen := map[typesystem.TypeId]bool{}
	var current typesystem.TypeId = typesystem.NoTypeId
	for _, fn := range img.Functions {
		if fn.OwnerSt != current {
			if fn.OwnerSt != typesystem.NoTypeId && seen[fn.OwnerSt] {
				return fmt.Errorf("layout: methods of %s are not contiguous", img.StructNames[fn.OwnerSt])
			}
			seen[fn.OwnerSt] = true
			current = fn.OwnerSt
		}
		fn.Addr = addr
		addr += len(fn.Chunk.Code)
	}

	for _, t := range set.Tables() {
		ct := CompiledTable{
			Struct:     t.Struct,
			Trait:      t.Trait,
			StructName: t.StructName,
			TraitName:  t.TraitName,
			FuncIdx:    make([]int, t.SlotCount()),
			Addrs:      make([]int, t.SlotCount()),
		}
		for i := 0; i < t.SlotCount(); i++ {
			slot := t.Slot(i)
			idx, ok := fnIdx[slot.Fn]
			if !ok {
				return fmt.Errorf("layout: %s slot %d (%s) was never compiled", t, i, slot.Method)
			}
			ct.FuncIdx[i] = idx
			ct.Addrs[i] = img.Functions[idx].Addr
		}
		img.Tables[img.TableIdx[TableKey{Struct: t.Struct, Trait: t.Trait}]] = ct
	}
	return nil
}
