package vm

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/config"
	"github.com/ricardopieper/pony-lang/internal/symbols"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// expr compiles an expression and, when the analyzer marked this exact
// expression as a coercion site, wraps the resulting struct address into a
// fat pointer. This is the only place OpMakeFat is ever emitted.
func (f *funcCompiler) expr(e ast.Expression) {
	f.exprRaw(e)
	if co, ok := f.c.res.Coercions[e]; ok {
		idx, ok := f.c.img.TableIdx[TableKey{Struct: co.Struct, Trait: co.Trait}]
		if !ok {
			f.fail("no dispatch table for %s as %s", f.c.tt.Name(co.Struct), f.c.tt.Name(co.Trait))
			return
		}
		f.emitU16(OpMakeFat, uint16(idx), e.Pos().Line)
	}
}

func (f *funcCompiler) exprRaw(e ast.Expression) {
	line := e.Pos().Line
	switch ex := e.(type) {
	case *ast.Identifier:
		if slot, ok := f.resolveLocal(ex.Name); ok {
			f.emitU16(OpGetLocal, uint16(slot), line)
			return
		}
		if idx, ok := f.c.globals.Index(ex.Name); ok {
			f.emitU16(OpGetGlobal, uint16(idx), line)
			return
		}
		f.fail("unresolved identifier %s", ex.Name)

	case *ast.IntegerLiteral:
		f.emitConstant(IntVal(ex.Value), line)

	case *ast.FloatLiteral:
		f.emitConstant(FloatVal(ex.Value), line)

	case *ast.BooleanLiteral:
		f.emitConstant(BoolVal(ex.Value), line)

	case *ast.StructLiteral:
		f.structLiteral(ex)

	case *ast.FieldAccess:
		f.fieldAccess(ex)

	case *ast.CallExpression:
		f.call(ex)

	case *ast.MethodCall:
		f.methodCall(ex)

	case *ast.IsExpression:
		f.isExpression(ex)

	case *ast.CastExpression:
		f.castExpression(ex)

	case *ast.SizeofExpression:
		target, err := f.c.tt.ResolveTypeExpr(ex.Target)
		if err != nil {
			f.fail("sizeof: %v", err)
			return
		}
		f.emitConstant(IntVal(int64(f.c.tt.SizeOf(target))), line)

	case *ast.BinaryExpression:
		f.binary(ex)

	case *ast.PointerOp:
		f.pointerOp(ex)

	default:
		f.fail("unsupported expression %T", e)
	}
}

func (f *funcCompiler) structLiteral(e *ast.StructLiteral) {
	line := e.P.Line
	st, ok := f.c.res.Types[e].(typesystem.Struct)
	if !ok {
		f.fail("untyped struct literal %s", e.Name)
		return
	}
	f.emitU16(OpNewStruct, uint16(f.c.tt.SizeOf(st)), line)
	for _, init := range e.Fields {
		field, ok := f.c.tt.FieldOf(st.Id, init.Name)
		if !ok {
			f.fail("struct %s has no field %s", st.Name, init.Name)
			return
		}
		f.emit(OpDup, line)
		f.expr(init.Value)
		kind, extra := f.c.fieldKind(field.Type)
		f.emitU16(OpStoreField, uint16(field.Offset), line)
		f.chunk.Write(kind, line)
		f.chunk.WriteU16(extra, line)
	}
}

func (f *funcCompiler) fieldAccess(e *ast.FieldAccess) {
	st, ok := f.c.res.Types[e.Object].(typesystem.Struct)
	if !ok {
		f.fail("field access through non-struct value")
		return
	}
	field, ok := f.c.tt.FieldOf(st.Id, e.Field)
	if !ok {
		f.fail("struct %s has no field %s", st.Name, e.Field)
		return
	}
	f.expr(e.Object)
	kind, extra := f.c.fieldKind(field.Type)
	f.emitU16(OpLoadField, uint16(field.Offset), e.P.Line)
	f.chunk.Write(kind, e.P.Line)
	f.chunk.WriteU16(extra, e.P.Line)
}

func (f *funcCompiler) call(e *ast.CallExpression) {
	line := e.P.Line
	if e.Callee == config.MemAllocFuncName {
		f.expr(e.Args[0])
		f.emit(OpAlloc, line)
		return
	}
	idx, ok := f.c.freeIdx[e.Callee]
	if !ok {
		f.fail("unknown function %s", e.Callee)
		return
	}
	for _, arg := range e.Args {
		f.expr(arg)
	}
	f.emitU16(OpCallStatic, uint16(idx), line)
}

// methodCall reads the analyzer's dispatch decision for this site. Static
// targets compile to a direct index; dynamic targets compile to a slot
// lookup through the receiver's table at run time.
func (f *funcCompiler) methodCall(e *ast.MethodCall) {
	line := e.P.Line
	target, ok := f.c.res.Calls[e]
	if !ok {
		f.fail("call site %s was never resolved", e.Method)
		return
	}

	f.expr(e.Receiver)
	for _, arg := range e.Args {
		f.expr(arg)
	}

	if !target.Dynamic {
		idx, err := f.c.resolveStatic(target.Ref)
		if err != nil {
			f.fail("%v", err)
			return
		}
		f.emitU16(OpCallStatic, uint16(idx), line)
		return
	}
	f.emitU16(OpCallVirtual, uint16(target.Slot), line)
	f.chunk.Write(byte(len(e.Args)), line)
}

// isExpression folds membership to a constant when the value's concrete type
// is statically known; only trait-typed values need the run-time check.
func (f *funcCompiler) isExpression(e *ast.IsExpression) {
	line := e.P.Line
	entry, ok := f.c.tt.Lookup(e.Target)
	if !ok || entry.Kind != symbols.TraitEntry {
		f.fail("is target %s is not a trait", e.Target)
		return
	}

	switch vt := f.c.res.Types[e.Value].(type) {
	case typesystem.Struct:
		f.expr(e.Value)
		f.emit(OpPop, line)
		f.emitConstant(BoolVal(f.c.tt.HasImpl(vt.Id, entry.Id)), line)
	case typesystem.Trait:
		f.expr(e.Value)
		f.emitU16(OpIsTrait, uint16(entry.Id), line)
	default:
		f.fail("is applied to non-dispatchable value")
	}
}

func (f *funcCompiler) castExpression(e *ast.CastExpression) {
	target, err := f.c.tt.ResolveTypeExpr(e.Target)
	if err != nil {
		f.fail("cast: %v", err)
		return
	}

	// Struct-to-trait casts were recorded as coercions on the inner value;
	// expr handles them. Everything left is scalar conversion or identity.
	f.expr(e.Value)
	src := f.c.res.Types[e.Value]
	if isFloatPrim(src) && isIntPrim(target) {
		f.emitWithByte(OpConvert, 0, e.P.Line)
	} else if isIntPrim(src) && isFloatPrim(target) {
		f.emitWithByte(OpConvert, 1, e.P.Line)
	}
}

func (f *funcCompiler) binary(e *ast.BinaryExpression) {
	line := e.P.Line

	// Logical operators short-circuit; everything else is a strict opcode.
	switch e.Operator {
	case "&&":
		f.expr(e.Left)
		f.emit(OpDup, line)
		end := f.emitJump(OpJumpIfFalse, line)
		f.emit(OpPop, line)
		f.expr(e.Right)
		f.patchJump(end)
		return
	case "||":
		f.expr(e.Left)
		f.emit(OpDup, line)
		skip := f.emitJump(OpJumpIfFalse, line)
		end := f.emitJump(OpJump, line)
		f.patchJump(skip)
		f.emit(OpPop, line)
		f.expr(e.Right)
		f.patchJump(end)
		return
	}

	f.expr(e.Left)
	f.expr(e.Right)
	ops := map[string]Opcode{
		"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
		"==": OpEqual, "!=": OpNotEqual,
		"<": OpLess, "<=": OpLessEqual, ">": OpGreater, ">=": OpGreaterEqual,
	}
	op, ok := ops[e.Operator]
	if !ok {
		f.fail("unsupported operator %s", e.Operator)
		return
	}
	f.emit(op, line)
}

func (f *funcCompiler) pointerOp(e *ast.PointerOp) {
	line := e.P.Line
	_, sized := f.c.res.Types[e.Receiver].(typesystem.Sized)

	f.expr(e.Receiver)
	switch e.Op {
	case "reinterpret":
		elem, err := f.c.tt.ResolveTypeExpr(e.TypeArg)
		if err != nil {
			f.fail("reinterpret: %v", err)
			return
		}
		f.emitU16(OpReinterpret, uint16(f.c.tt.SizeOf(elem)), line)

	case "offset":
		f.expr(e.Args[0])
		f.emit(OpPtrOffset, line)

	case "get_address":
		f.emit(OpPtrAddr, line)

	case "copy":
		f.expr(e.Args[0])
		f.expr(e.Args[1])
		if sized {
			f.emit(OpSizedCopy, line)
		} else {
			f.emit(OpPtrCopy, line)
		}

	case "copy_sized":
		f.expr(e.Args[0])
		f.expr(e.Args[1])
		f.emit(OpSizedCopy2, line)

	case "delete":
		f.expr(e.Args[0])
		if sized {
			f.emit(OpSizedDelete, line)
		} else {
			f.emit(OpPtrDelete, line)
		}

	case "with_size":
		f.expr(e.Args[0])
		f.emit(OpWithSize, line)

	default:
		f.fail("unsupported pointer operation %s", e.Op)
	}
}

// emitWithByte writes an opcode with a single byte operand.
func (f *funcCompiler) emitWithByte(op Opcode, operand byte, line int) {
	f.chunk.WriteOp(op, line)
	f.chunk.Write(operand, line)
}

func isIntPrim(t typesystem.Type) bool {
	p, ok := t.(typesystem.Prim)
	if !ok {
		return false
	}
	switch p.Name {
	case config.I32TypeName, config.I64TypeName, config.U8TypeName,
		config.U32TypeName, config.U64TypeName:
		return true
	}
	return false
}

func isFloatPrim(t typesystem.Type) bool {
	p, ok := t.(typesystem.Prim)
	return ok && (p.Name == config.F32TypeName || p.Name == config.F64TypeName)
}
