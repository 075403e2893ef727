// Package vm contains the bytecode backend: the compiler that lowers an
// analyzed program, the image layout planner, and the interpreter that
// executes compiled images.
package vm

import (
	"fmt"

	"github.com/ricardopieper/pony-lang/internal/analyzer"
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/config"
	"github.com/ricardopieper/pony-lang/internal/dispatch"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// Compiler lowers a checked program into an Image. It runs only on a clean
// analysis result; anything it cannot lower is an internal error, not a user
// diagnostic.
type Compiler struct {
	res *analyzer.Result
	tt  *symbols.TypeTable
	set *dispatch.Set
	img *Image

	fnIdx   map[*ast.FunctionDecl]int
	freeIdx map[string]int
	globals *Globals
}

// Compile lowers the analyzed program and its dispatch set into an image.
func Compile(res *analyzer.Result, set *dispatch.Set) (*Image, error) {
	c := &Compiler{
		res:     res,
		tt:      res.Table,
		set:     set,
		img:     &Image{EntryFunc: -1},
		fnIdx:   make(map[*ast.FunctionDecl]int),
		freeIdx: make(map[string]int),
		globals: NewGlobals(),
	}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c.img, nil
}

func (c *Compiler) compile() error {
	c.img.StructSizes = make(map[typesystem.TypeId]int)
	c.img.StructNames = make(map[typesystem.TypeId]string)
	c.img.TraitNames = make(map[typesystem.TypeId]string)
	for _, id := range c.tt.StructIds() {
		c.img.StructSizes[id] = c.tt.StructType(id).Bytes
		c.img.StructNames[id] = c.tt.Name(id)
	}
	for _, id := range c.tt.TraitIds() {
		c.img.TraitNames[id] = c.tt.Name(id)
	}

	// Enumerate every function body up front so call sites can reference
	// forward targets. Free functions first, then each struct's methods as
	// one block, which is what gives the layout its contiguity guarantee.
	type pending struct {
		decl *ast.FunctionDecl
		fn   *Function
	}
	var work []pending
	add := func(decl *ast.FunctionDecl, st, tr typesystem.TypeId) {
		fn := &Function{
			Name:    decl.Name,
			OwnerSt: st,
			OwnerTr: tr,
			Arity:   len(decl.Params),
			HasSelf: decl.HasSelf,
			Chunk:   NewChunk(),
		}
		c.fnIdx[decl] = len(c.img.Functions)
		c.img.Functions = append(c.img.Functions, fn)
		work = append(work, pending{decl: decl, fn: fn})
	}

	for _, decl := range c.res.FreeFuncs {
		c.freeIdx[decl.Name] = len(c.img.Functions)
		add(decl, typesystem.NoTypeId, typesystem.NoTypeId)
	}
	for _, structId := range c.tt.StructIds() {
		for _, decl := range c.tt.InherentMethods(structId) {
			add(decl, structId, typesystem.NoTypeId)
		}
		for _, traitId := range c.tt.TraitsOf(structId) {
			rec, _ := c.tt.ImplFor(structId, traitId)
			for _, decl := range rec.Methods {
				add(decl, structId, traitId)
			}
		}
	}

	assignTableIndices(c.img, c.set)
	for _, p := range work {
		if err := c.compileFunction(p.decl, p.fn); err != nil {
			return err
		}
	}

	if idx, ok := c.freeIdx[config.MainFuncName]; ok {
		c.img.EntryFunc = idx
	}
	c.img.GlobalNames = c.globals.Names()
	return planLayout(c.img, c.set, c.fnIdx, c.tt)
}

func (c *Compiler) compileFunction(decl *ast.FunctionDecl, fn *Function) error {
	f := &funcCompiler{c: c, fn: fn, chunk: fn.Chunk}
	if decl.HasSelf {
		f.declareLocal(config.SelfName)
	}
	for _, p := range decl.Params {
		f.declareLocal(p.Name)
	}
	for _, stmt := range decl.Body {
		f.stmt(stmt)
	}
	// Implicit unit return for bodies that fall off the end.
	f.emit(OpReturn, lastLine(decl))
	fn.LocalCount = f.maxLocals
	if f.err != nil {
		return fmt.Errorf("compile %s: %w", decl.Name, f.err)
	}
	return nil
}

// resolveStatic maps a symbolic function reference to its image index.
func (c *Compiler) resolveStatic(ref analyzer.FuncRef) (int, error) {
	if ref.Struct == typesystem.NoTypeId {
		idx, ok := c.freeIdx[ref.Name]
		if !ok {
			return 0, fmt.Errorf("unknown function %s", ref.Name)
		}
		return idx, nil
	}
	var decl *ast.FunctionDecl
	if ref.Trait == typesystem.NoTypeId {
		decl, _ = c.tt.InherentMethod(ref.Struct, ref.Name)
	} else if rec, ok := c.tt.ImplFor(ref.Struct, ref.Trait); ok {
		if slot, ok := c.tt.TraitMethodSlot(ref.Trait, ref.Name); ok {
			decl = rec.Methods[slot]
		}
	}
	if decl == nil {
		return 0, fmt.Errorf("unresolved method %s.%s", c.tt.Name(ref.Struct), ref.Name)
	}
	idx, ok := c.fnIdx[decl]
	if !ok {
		return 0, fmt.Errorf("method %s.%s was never enumerated", c.tt.Name(ref.Struct), ref.Name)
	}
	return idx, nil
}

// fieldKind encodes a field's canonical type as a load/store operand pair.
// extra carries the element size for address kinds and the byte size for
// inline structs.
func (c *Compiler) fieldKind(t typesystem.Type) (byte, uint16) {
	switch ty := t.(type) {
	case typesystem.Prim:
		switch ty.Name {
		case config.U8TypeName:
			return FieldU8, 0
		case config.U32TypeName:
			return FieldU32, 0
		case config.U64TypeName:
			return FieldU64, 0
		case config.I32TypeName:
			return FieldI32, 0
		case config.I64TypeName:
			return FieldI64, 0
		case config.F32TypeName:
			return FieldF32, 0
		case config.F64TypeName:
			return FieldF64, 0
		case config.BoolTypeName:
			return FieldBool, 0
		case config.StrTypeName:
			return FieldStr, 0
		default:
			return FieldUnit, 0
		}
	case typesystem.Raw:
		return FieldRawAddr, 0
	case typesystem.Ptr:
		return FieldTypedAddr, uint16(c.tt.SizeOf(ty.Elem))
	case typesystem.Sized:
		return FieldSizedAddr, uint16(c.tt.SizeOf(ty.Elem))
	case typesystem.Trait:
		return FieldFat, 0
	case typesystem.Struct:
		return FieldStruct, uint16(c.tt.SizeOf(ty))
	}
	return FieldUnit, 0
}

func lastLine(decl *ast.FunctionDecl) int {
	if n := len(decl.Body); n > 0 {
		return decl.Body[n-1].Pos().Line
	}
	return decl.P.Line
}
