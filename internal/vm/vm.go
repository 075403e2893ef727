package vm

import (
	"fmt"
	"math"

	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// VM executes a compiled image. One VM owns one arena and one global
// registry; nothing is shared between instances.
type VM struct {
	img     *Image
	arena   *Arena
	globals *Globals

	stack  []Value
	frames []*frame

	// String field storage is interned; the arena holds indices only.
	strings []string
	strIdx  map[string]uint64
}

type frame struct {
	fn     *Function
	ip     int
	locals []Value
}

func NewVM(img *Image) *VM {
	vm := &VM{
		img:     img,
		arena:   NewArena(),
		globals: NewGlobals(),
		strIdx:  make(map[string]uint64),
	}
	for _, name := range img.GlobalNames {
		vm.globals.Define(name)
	}
	return vm
}

// Arena exposes the VM's heap, mostly for tests and the embedding host.
func (vm *VM) Arena() *Arena { return vm.arena }

// SetGlobal installs a value in the global registry, defining the name if
// the image did not.
func (vm *VM) SetGlobal(name string, v Value) {
	vm.globals.Set(vm.globals.Define(name), v)
}

func (vm *VM) Global(name string) (Value, bool) {
	idx, ok := vm.globals.Index(name)
	if !ok {
		return UnitVal(), false
	}
	return vm.globals.Get(idx), true
}

// Run executes the image's entry function.
func (vm *VM) Run() (Value, error) {
	if vm.img.EntryFunc < 0 {
		return UnitVal(), fmt.Errorf("image has no entry function")
	}
	return vm.Call(vm.img.EntryFunc)
}

// Call invokes a function by image index with already-built values. The
// receiver, when the function has one, is args[0] as a typed address.
func (vm *VM) Call(idx int, args ...Value) (Value, error) {
	fn := vm.img.Functions[idx]
	vm.pushFrame(fn, args)
	return vm.run(len(vm.frames) - 1)
}

func (vm *VM) pushFrame(fn *Function, args []Value) {
	count := fn.LocalCount
	if len(args) > count {
		count = len(args)
	}
	locals := make([]Value, count)
	copy(locals, args)
	vm.frames = append(vm.frames, &frame{fn: fn, locals: locals})
}

func (vm *VM) push(v Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) popN(n int) []Value {
	vals := make([]Value, n)
	copy(vals, vm.stack[len(vm.stack)-n:])
	vm.stack = vm.stack[:len(vm.stack)-n]
	return vals
}

func (fr *frame) readByte() byte {
	b := fr.fn.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (fr *frame) readU16() uint16 {
	v := fr.fn.Chunk.ReadU16(fr.ip)
	fr.ip += 2
	return v
}

func (vm *VM) errAt(fr *frame, err error) error {
	return fmt.Errorf("%s:%d: %w", fr.fn.Name, fr.fn.Chunk.Line(fr.ip-1), err)
}

// run drives the dispatch loop until the frame stack returns to base.
func (vm *VM) run(base int) (Value, error) {
	for len(vm.frames) > base {
		fr := vm.frames[len(vm.frames)-1]
		op := Opcode(fr.readByte())

		switch op {
		case OpConstant:
			vm.push(fr.fn.Chunk.Constants[fr.readU16()])
		case OpPop:
			vm.pop()
		case OpDup:
			vm.push(vm.stack[len(vm.stack)-1])

		case OpGetLocal:
			vm.push(fr.locals[fr.readU16()])
		case OpSetLocal:
			fr.locals[fr.readU16()] = vm.pop()
		case OpGetGlobal:
			vm.push(vm.globals.Get(int(fr.readU16())))
		case OpSetGlobal:
			vm.globals.Set(int(fr.readU16()), vm.pop())

		case OpAdd, OpSub, OpMul, OpDiv, OpMod,
			OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
			if err := vm.binaryOp(op); err != nil {
				return UnitVal(), vm.errAt(fr, err)
			}

		case OpConvert:
			mode := fr.readByte()
			v := vm.pop()
			if mode == 0 {
				vm.push(IntVal(int64(v.AsFloat())))
			} else {
				vm.push(FloatVal(float64(v.AsInt())))
			}

		case OpJump:
			fr.ip = int(fr.readU16())
		case OpJumpIfFalse:
			target := fr.readU16()
			if !vm.pop().AsBool() {
				fr.ip = int(target)
			}

		case OpReturn:
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.push(UnitVal())
		case OpReturnValue:
			v := vm.pop()
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.push(v)

		case OpCallStatic:
			fn := vm.img.Functions[fr.readU16()]
			total := fn.Arity
			if fn.HasSelf {
				total++
			}
			vm.pushFrame(fn, vm.popN(total))

		case OpCallVirtual:
			slot := fr.readU16()
			argc := int(fr.readByte())
			args := vm.popN(argc)
			recv := vm.pop()
			table := vm.img.Tables[recv.TableIdx()]
			fn := vm.img.Functions[table.FuncIdx[slot]]
			self := TypedAddrVal(recv.AsAddr(), uint32(vm.img.StructSizes[table.Struct]))
			vm.pushFrame(fn, append([]Value{self}, args...))

		case OpNewStruct:
			size := fr.readU16()
			vm.push(TypedAddrVal(vm.arena.Alloc(uint32(size)), uint32(size)))

		case OpLoadField:
			offset := fr.readU16()
			kind := fr.readByte()
			extra := fr.readU16()
			base := vm.pop()
			vm.push(vm.loadField(base.AsAddr()+uint32(offset), kind, extra))
		case OpStoreField:
			offset := fr.readU16()
			kind := fr.readByte()
			extra := fr.readU16()
			v := vm.pop()
			base := vm.pop()
			vm.storeField(base.AsAddr()+uint32(offset), kind, extra, v)

		case OpMakeFat:
			idx := fr.readU16()
			v := vm.pop()
			vm.push(FatVal(v.AsAddr(), int(idx)))

		case OpIsTrait:
			traitId := typesystem.TypeId(fr.readU16())
			v := vm.pop()
			carried := vm.img.Tables[v.TableIdx()]
			_, ok := vm.img.TableIdx[TableKey{Struct: carried.Struct, Trait: traitId}]
			vm.push(BoolVal(ok))

		case OpAlloc:
			n := vm.pop()
			vm.push(RawAddrVal(vm.arena.Alloc(uint32(n.AsInt()))))

		case OpReinterpret:
			elem := fr.readU16()
			v := vm.pop()
			vm.push(TypedAddrVal(v.AsAddr(), uint32(elem)))

		case OpPtrOffset:
			n := vm.pop()
			p := vm.pop()
			t := TypedAddr{Addr: p.AsAddr(), Elem: p.ElemSize()}.Offset(int32(n.AsInt()))
			vm.push(TypedAddrVal(t.Addr, t.Elem))

		case OpPtrAddr:
			vm.push(RawAddrVal(vm.pop().AsAddr()))

		case OpPtrCopy:
			length := vm.pop()
			dest := vm.pop()
			src := vm.pop()
			t := TypedAddr{Addr: src.AsAddr(), Elem: src.ElemSize()}
			t.Copy(vm.arena, TypedAddr{Addr: dest.AsAddr(), Elem: dest.ElemSize()}, uint32(length.AsInt()))
			vm.push(UnitVal())

		case OpPtrDelete:
			length := vm.pop()
			p := vm.pop()
			TypedAddr{Addr: p.AsAddr(), Elem: p.ElemSize()}.Delete(vm.arena, uint32(length.AsInt()))
			vm.push(UnitVal())

		case OpWithSize:
			length := vm.pop()
			p := vm.pop()
			vm.push(SizedAddrVal(p.AsAddr(), uint32(length.AsInt()), p.ElemSize()))

		case OpSizedCopy:
			length := vm.pop()
			dest := vm.pop()
			src := asSized(vm.pop())
			err := src.Copy(vm.arena, TypedAddr{Addr: dest.AsAddr(), Elem: dest.ElemSize()}, uint32(length.AsInt()))
			if err != nil {
				return UnitVal(), vm.errAt(fr, err)
			}
			vm.push(UnitVal())

		case OpSizedCopy2:
			length := vm.pop()
			dest := asSized(vm.pop())
			src := asSized(vm.pop())
			if err := src.CopySized(vm.arena, dest, uint32(length.AsInt())); err != nil {
				return UnitVal(), vm.errAt(fr, err)
			}
			vm.push(UnitVal())

		case OpSizedDelete:
			length := vm.pop()
			src := asSized(vm.pop())
			if err := src.Delete(vm.arena, uint32(length.AsInt())); err != nil {
				return UnitVal(), vm.errAt(fr, err)
			}
			vm.push(UnitVal())

		default:
			return UnitVal(), vm.errAt(fr, fmt.Errorf("unknown opcode %d", op))
		}
	}
	return vm.pop(), nil
}

func asSized(v Value) SizedAddr {
	return SizedAddr{
		TypedAddr: TypedAddr{Addr: v.AsAddr(), Elem: v.ElemSize()},
		Size:      v.Size(),
	}
}

func (vm *VM) binaryOp(op Opcode) error {
	right := vm.pop()
	left := vm.pop()

	if left.Type == ValFloat || right.Type == ValFloat {
		l, r := left.AsFloat(), right.AsFloat()
		switch op {
		case OpAdd:
			vm.push(FloatVal(l + r))
		case OpSub:
			vm.push(FloatVal(l - r))
		case OpMul:
			vm.push(FloatVal(l * r))
		case OpDiv:
			vm.push(FloatVal(l / r))
		case OpEqual:
			vm.push(BoolVal(l == r))
		case OpNotEqual:
			vm.push(BoolVal(l != r))
		case OpLess:
			vm.push(BoolVal(l < r))
		case OpLessEqual:
			vm.push(BoolVal(l <= r))
		case OpGreater:
			vm.push(BoolVal(l > r))
		case OpGreaterEqual:
			vm.push(BoolVal(l >= r))
		default:
			return fmt.Errorf("operator %s is not defined for floats", op)
		}
		return nil
	}

	if left.Type == ValBool || left.Type == ValStr {
		switch op {
		case OpEqual:
			vm.push(BoolVal(left.Data == right.Data && left.Str == right.Str))
		case OpNotEqual:
			vm.push(BoolVal(left.Data != right.Data || left.Str != right.Str))
		default:
			return fmt.Errorf("operator %s is not defined for %s", op, left)
		}
		return nil
	}

	l, r := left.AsInt(), right.AsInt()
	switch op {
	case OpAdd:
		vm.push(IntVal(l + r))
	case OpSub:
		vm.push(IntVal(l - r))
	case OpMul:
		vm.push(IntVal(l * r))
	case OpDiv:
		if r == 0 {
			return fmt.Errorf("division by zero")
		}
		vm.push(IntVal(l / r))
	case OpMod:
		if r == 0 {
			return fmt.Errorf("division by zero")
		}
		vm.push(IntVal(l % r))
	case OpEqual:
		vm.push(BoolVal(l == r))
	case OpNotEqual:
		vm.push(BoolVal(l != r))
	case OpLess:
		vm.push(BoolVal(l < r))
	case OpLessEqual:
		vm.push(BoolVal(l <= r))
	case OpGreater:
		vm.push(BoolVal(l > r))
	case OpGreaterEqual:
		vm.push(BoolVal(l >= r))
	}
	return nil
}

func (vm *VM) internString(s string) uint64 {
	if idx, ok := vm.strIdx[s]; ok {
		return idx
	}
	idx := uint64(len(vm.strings))
	vm.strings = append(vm.strings, s)
	vm.strIdx[s] = idx
	return idx
}

func (vm *VM) loadField(addr uint32, kind byte, extra uint16) Value {
	a := vm.arena
	switch kind {
	case FieldU8:
		return IntVal(int64(a.ReadU8(addr)))
	case FieldU32:
		return IntVal(int64(a.ReadU32(addr)))
	case FieldU64:
		return IntVal(int64(a.ReadU64(addr)))
	case FieldI32:
		return IntVal(int64(int32(a.ReadU32(addr))))
	case FieldI64:
		return IntVal(int64(a.ReadU64(addr)))
	case FieldF32:
		return FloatVal(float64(math.Float32frombits(a.ReadU32(addr))))
	case FieldF64:
		return FloatVal(math.Float64frombits(a.ReadU64(addr)))
	case FieldBool:
		return BoolVal(a.ReadU8(addr) != 0)
	case FieldStr:
		return StrVal(vm.strings[a.ReadU64(addr)])
	case FieldRawAddr:
		return RawAddrVal(uint32(a.ReadU64(addr)))
	case FieldTypedAddr:
		return TypedAddrVal(uint32(a.ReadU64(addr)), uint32(extra))
	case FieldSizedAddr:
		return Value{Type: ValSizedAddr, Data: a.ReadU64(addr), Aux: uint64(extra)}
	case FieldFat:
		return Value{Type: ValFat, Data: a.ReadU64(addr), Aux: a.ReadU64(addr + 8)}
	case FieldStruct:
		return TypedAddrVal(addr, uint32(extra))
	}
	return UnitVal()
}

func (vm *VM) storeField(addr uint32, kind byte, extra uint16, v Value) {
	a := vm.arena
	switch kind {
	case FieldU8, FieldBool:
		a.WriteU8(addr, uint8(v.Data))
	case FieldU32, FieldI32:
		a.WriteU32(addr, uint32(v.AsInt()))
	case FieldU64, FieldI64:
		a.WriteU64(addr, uint64(v.AsInt()))
	case FieldF32:
		a.WriteU32(addr, math.Float32bits(float32(v.AsFloat())))
	case FieldF64:
		a.WriteU64(addr, math.Float64bits(v.AsFloat()))
	case FieldStr:
		a.WriteU64(addr, vm.internString(v.Str))
	case FieldRawAddr, FieldTypedAddr:
		a.WriteU64(addr, uint64(v.AsAddr()))
	case FieldSizedAddr:
		a.WriteU64(addr, v.Data)
	case FieldFat:
		a.WriteU64(addr, v.Data)
		a.WriteU64(addr+8, v.Aux)
	case FieldStruct:
		a.Copy(addr, v.AsAddr(), uint32(extra))
	}
}
