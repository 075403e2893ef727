package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders the whole image as text: every dispatch table with its
// slot addresses, then every function's bytecode.
func Disassemble(img *Image) string {
	var b strings.Builder
	for i, t := range img.Tables {
		fmt.Fprintf(&b, "table %d: %s for %s\n", i, img.TraitNames[t.Trait], img.StructNames[t.Struct])
		for slot, idx := range t.FuncIdx {
			fn := img.Functions[idx]
			fmt.Fprintf(&b, "  slot %d -> %s @%04d\n", slot, fn.Name, t.Addrs[slot])
		}
	}
	for i, fn := range img.Functions {
		owner := ""
		if name, ok := img.StructNames[fn.OwnerSt]; ok {
			owner = name + "."
		}
		fmt.Fprintf(&b, "fn %d %s%s (arity %d, locals %d) @%04d\n",
			i, owner, fn.Name, fn.Arity, fn.LocalCount, fn.Addr)
		DisassembleChunk(&b, fn.Chunk)
	}
	return b.String()
}

// DisassembleChunk writes one instruction per line with its chunk offset.
func DisassembleChunk(b *strings.Builder, c *Chunk) {
	for offset := 0; offset < len(c.Code); {
		offset = disassembleInstruction(b, c, offset)
	}
}

func disassembleInstruction(b *strings.Builder, c *Chunk, offset int) int {
	op := Opcode(c.Code[offset])
	fmt.Fprintf(b, "  %04d %-18s", offset, op)

	switch op {
	case OpConstant:
		idx := c.ReadU16(offset + 1)
		fmt.Fprintf(b, " %d (%s)\n", idx, c.Constants[idx])
		return offset + 3
	case OpGetLocal, OpSetLocal, OpGetGlobal, OpSetGlobal,
		OpJump, OpJumpIfFalse, OpCallStatic, OpNewStruct,
		OpMakeFat, OpIsTrait, OpReinterpret:
		fmt.Fprintf(b, " %d\n", c.ReadU16(offset+1))
		return offset + 3
	case OpConvert:
		fmt.Fprintf(b, " %d\n", c.Code[offset+1])
		return offset + 2
	case OpCallVirtual:
		fmt.Fprintf(b, " slot %d argc %d\n", c.ReadU16(offset+1), c.Code[offset+3])
		return offset + 4
	case OpLoadField, OpStoreField:
		fmt.Fprintf(b, " off %d kind %d extra %d\n",
			c.ReadU16(offset+1), c.Code[offset+3], c.ReadU16(offset+4))
		return offset + 6
	default:
		b.WriteString("\n")
		return offset + 1
	}
}
