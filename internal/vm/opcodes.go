package vm

// Opcode is one bytecode instruction.
type Opcode byte

const (
	// Stack and constants
	OpConstant Opcode = iota // u16 constant index
	OpPop
	OpDup

	// Locals and globals
	OpGetLocal  // u16 slot
	OpSetLocal  // u16 slot
	OpGetGlobal // u16 global index
	OpSetGlobal // u16 global index

	// Arithmetic and comparison; operand types were checked at compile time
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpConvert // u8: 0 = to int, 1 = to float

	// Control flow
	OpJump        // u16 absolute target
	OpJumpIfFalse // u16 absolute target
	OpReturn
	OpReturnValue

	// Calls. Static calls name their target at compile time; virtual calls
	// index into the dispatch table carried by the fat-pointer receiver.
	OpCallStatic  // u16 function index
	OpCallVirtual // u16 slot index, u8 explicit arg count

	// Structs
	OpNewStruct  // u16 byte size
	OpLoadField  // u16 offset, u8 field kind, u16 extra
	OpStoreField // u16 offset, u8 field kind, u16 extra

	// Trait values
	OpMakeFat // u16 table index
	OpIsTrait // u16 trait TypeId

	// Memory and address primitives
	OpAlloc       // pops size, pushes raw address
	OpReinterpret // u16 element size
	OpPtrOffset   // pops n, address
	OpPtrAddr     // pops typed address, pushes raw
	OpPtrCopy     // pops length, dest, src; unchecked
	OpPtrDelete   // pops length, address; unchecked
	OpWithSize    // pops length, typed address; pushes sized
	OpSizedCopy   // pops length, dest, src; checked against src size
	OpSizedCopy2  // pops length, dest, src; checked against both sizes
	OpSizedDelete // pops length, sized address; checked
)

// Field kinds for OpLoadField/OpStoreField. The extra operand carries the
// element size for address kinds and the byte size for inline structs.
const (
	FieldU8 byte = iota
	FieldU32
	FieldU64
	FieldI32
	FieldI64
	FieldF32
	FieldF64
	FieldBool
	FieldStr
	FieldRawAddr
	FieldTypedAddr
	FieldSizedAddr
	FieldFat
	FieldStruct
	FieldUnit // zero bytes; loads push unit, stores only pop
)

var opcodeNames = map[Opcode]string{
	OpConstant:     "CONSTANT",
	OpPop:          "POP",
	OpDup:          "DUP",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetGlobal:    "GET_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpAdd:          "ADD",
	OpSub:          "SUB",
	OpMul:          "MUL",
	OpDiv:          "DIV",
	OpMod:          "MOD",
	OpEqual:        "EQUAL",
	OpNotEqual:     "NOT_EQUAL",
	OpLess:         "LESS",
	OpLessEqual:    "LESS_EQUAL",
	OpGreater:      "GREATER",
	OpGreaterEqual: "GREATER_EQUAL",
	OpConvert:      "CONVERT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpReturn:       "RETURN",
	OpReturnValue:  "RETURN_VALUE",
	OpCallStatic:   "CALL_STATIC",
	OpCallVirtual:  "CALL_VIRTUAL",
	OpNewStruct:    "NEW_STRUCT",
	OpLoadField:    "LOAD_FIELD",
	OpStoreField:   "STORE_FIELD",
	OpMakeFat:      "MAKE_FAT",
	OpIsTrait:      "IS_TRAIT",
	OpAlloc:        "ALLOC",
	OpReinterpret:  "REINTERPRET",
	OpPtrOffset:    "PTR_OFFSET",
	OpPtrAddr:      "PTR_ADDR",
	OpPtrCopy:      "PTR_COPY",
	OpPtrDelete:    "PTR_DELETE",
	OpWithSize:     "WITH_SIZE",
	OpSizedCopy:    "SIZED_COPY",
	OpSizedCopy2:   "SIZED_COPY_SIZED",
	OpSizedDelete:  "SIZED_DELETE",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
