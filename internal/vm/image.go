package vm

import (
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// Function is one compiled function body. OwnerStruct/OwnerTrait identify
// methods; free functions leave both at NoTypeId.
type Function struct {
	Name       string
	OwnerSt    typesystem.TypeId
	OwnerTr    typesystem.TypeId
	Arity      int // explicit params, not counting self
	HasSelf    bool
	LocalCount int
	Chunk      *Chunk

	// Addr is the function's position in the flat code segment view of the
	// image. Functions of the same struct occupy a contiguous address range.
	Addr int
}

// CompiledTable is the runtime form of a dispatch table: one function index
// and one code address per trait slot, in trait declaration order.
type CompiledTable struct {
	Struct     typesystem.TypeId
	Trait      typesystem.TypeId
	StructName string
	TraitName  string
	FuncIdx    []int
	Addrs      []int
}

// Image is a fully compiled program ready to execute or serialize.
type Image struct {
	Functions []*Function
	Tables    []CompiledTable

	// TableIdx maps (struct, trait) to a Tables index for coercion sites.
	TableIdx map[TableKey]int

	// StructSizes and StructNames are keyed by TypeId for runtime struct
	// allocation and diagnostics.
	StructSizes map[typesystem.TypeId]int
	StructNames map[typesystem.TypeId]string
	TraitNames  map[typesystem.TypeId]string

	GlobalNames []string
	EntryFunc   int
}

type TableKey struct {
	Struct typesystem.TypeId
	Trait  typesystem.TypeId
}

func (img *Image) FunctionByName(name string) (*Function, int) {
	for i, fn := range img.Functions {
		if fn.OwnerSt == typesystem.NoTypeId && fn.Name == name {
			return fn, i
		}
	}
	return nil, -1
}

func (img *Image) TableFor(st, tr typesystem.TypeId) (CompiledTable, bool) {
	idx, ok := img.TableIdx[TableKey{Struct: st, Trait: tr}]
	if !ok {
		return CompiledTable{}, false
	}
	return img.Tables[idx], true
}
