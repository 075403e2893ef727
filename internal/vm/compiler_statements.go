package vm

import (
	"fmt"

	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

type localVar struct {
	name  string
	depth int
}

// funcCompiler emits bytecode for one function body. Local slots are never
// reused; LocalCount is the high-water mark.
type funcCompiler struct {
	c     *Compiler
	fn    *Function
	chunk *Chunk

	locals    []localVar
	visible   int // locals in scope; slots above stay allocated
	depth     int
	maxLocals int

	err error
}

func (f *funcCompiler) fail(format string, args ...interface{}) {
	if f.err == nil {
		f.err = fmt.Errorf(format, args...)
	}
}

func (f *funcCompiler) emit(op Opcode, line int) {
	f.chunk.WriteOp(op, line)
}

func (f *funcCompiler) emitU16(op Opcode, operand uint16, line int) {
	f.chunk.WriteOp(op, line)
	f.chunk.WriteU16(operand, line)
}

// emitJump writes a jump with a placeholder target and returns the operand
// offset for patching.
func (f *funcCompiler) emitJump(op Opcode, line int) int {
	f.chunk.WriteOp(op, line)
	operand := len(f.chunk.Code)
	f.chunk.WriteU16(0xffff, line)
	return operand
}

func (f *funcCompiler) patchJump(operand int) {
	f.chunk.PatchU16(operand, uint16(len(f.chunk.Code)))
}

func (f *funcCompiler) emitConstant(v Value, line int) {
	idx := f.chunk.AddConstant(v)
	f.emitU16(OpConstant, uint16(idx), line)
}

func (f *funcCompiler) declareLocal(name string) int {
	slot := len(f.locals)
	f.locals = append(f.locals, localVar{name: name, depth: f.depth})
	f.visible = len(f.locals)
	if f.visible > f.maxLocals {
		f.maxLocals = f.visible
	}
	return slot
}

func (f *funcCompiler) resolveLocal(name string) (int, bool) {
	for i := f.visible - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

func (f *funcCompiler) beginScope() { f.depth++ }

func (f *funcCompiler) endScope() {
	f.depth--
	for f.visible > 0 && f.locals[f.visible-1].depth > f.depth {
		f.visible--
	}
	f.locals = f.locals[:f.visible]
}

func (f *funcCompiler) block(stmts []ast.Statement) {
	f.beginScope()
	for _, s := range stmts {
		f.stmt(s)
	}
	f.endScope()
}

func (f *funcCompiler) stmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		f.expr(s.Value)
		slot := f.declareLocal(s.Name)
		f.emitU16(OpSetLocal, uint16(slot), s.P.Line)

	case *ast.AssignStatement:
		f.assign(s)

	case *ast.ReturnStatement:
		if s.Value == nil {
			f.emit(OpReturn, s.P.Line)
			return
		}
		f.expr(s.Value)
		f.emit(OpReturnValue, s.P.Line)

	case *ast.ExpressionStatement:
		f.expr(s.Expr)
		f.emit(OpPop, s.P.Line)

	case *ast.IfStatement:
		f.expr(s.Condition)
		elseJump := f.emitJump(OpJumpIfFalse, s.P.Line)
		f.block(s.Then)
		if len(s.Else) == 0 {
			f.patchJump(elseJump)
			return
		}
		endJump := f.emitJump(OpJump, s.P.Line)
		f.patchJump(elseJump)
		f.block(s.Else)
		f.patchJump(endJump)

	default:
		f.fail("unsupported statement %T", stmt)
	}
}

func (f *funcCompiler) assign(s *ast.AssignStatement) {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		f.expr(s.Value)
		if slot, ok := f.resolveLocal(target.Name); ok {
			f.emitU16(OpSetLocal, uint16(slot), s.P.Line)
			return
		}
		if idx, ok := f.c.globals.Index(target.Name); ok {
			f.emitU16(OpSetGlobal, uint16(idx), s.P.Line)
			return
		}
		f.fail("assignment to undeclared %s", target.Name)

	case *ast.FieldAccess:
		objType, ok := f.c.res.Types[target.Object].(typesystem.Struct)
		if !ok {
			f.fail("field assignment through non-struct value")
			return
		}
		field, ok := f.c.tt.FieldOf(objType.Id, target.Field)
		if !ok {
			f.fail("struct %s has no field %s", objType.Name, target.Field)
			return
		}
		f.expr(target.Object)
		f.expr(s.Value)
		kind, extra := f.c.fieldKind(field.Type)
		f.emitU16(OpStoreField, uint16(field.Offset), s.P.Line)
		f.chunk.Write(kind, s.P.Line)
		f.chunk.WriteU16(extra, s.P.Line)

	default:
		f.fail("unsupported assignment target %T", s.Target)
	}
}
