package analyzer

import (
	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/diagnostics"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// Pointer operation names as the front end spells them.
const (
	opReinterpret = "reinterpret"
	opOffset      = "offset"
	opGetAddress  = "get_address"
	opCopy        = "copy"
	opCopySized   = "copy_sized"
	opDelete      = "delete"
	opWithSize    = "with_size"
)

// typePointerOp checks the address-primitive operations. None of them are
// dispatched: the receiver's address kind is static and each operation
// lowers to a dedicated opcode.
func (a *Analyzer) typePointerOp(e *ast.PointerOp, vars env) typesystem.Type {
	rt := a.checkExpression(e.Receiver, vars)
	if rt == nil {
		return nil
	}

	_, isRaw := rt.(typesystem.Raw)
	ptr, isPtr := rt.(typesystem.Ptr)
	sized, isSized := rt.(typesystem.Sized)
	if !isRaw && !isPtr && !isSized {
		a.errorf(diagnostics.TypeMismatch, e.P, "%s is not an address type", rt)
		return nil
	}
	// A sized address supports every typed-address operation.
	if isSized {
		ptr = typesystem.Ptr{Elem: sized.Elem}
		isPtr = true
	}

	wrongReceiver := func() typesystem.Type {
		a.errorf(diagnostics.UnknownMethod, e.P, "operation %s is not defined for %s", e.Op, rt)
		return nil
	}

	switch e.Op {
	case opReinterpret:
		if e.TypeArg == nil {
			a.errorf(diagnostics.TypeMismatch, e.P, "reinterpret requires an element type argument")
			return nil
		}
		elem, err := a.table.ResolveTypeExpr(e.TypeArg)
		if err != nil {
			a.errorf(diagnostics.UnresolvedType, e.P, "reinterpret: %s", err.Error())
			return nil
		}
		a.requireArgCount(e, 0, vars)
		return typesystem.Ptr{Elem: elem}

	case opOffset:
		if !isPtr {
			return wrongReceiver()
		}
		a.requireIntArgs(e, 1, vars)
		// Arbitrary arithmetic escapes the recorded bound, so the result
		// is an unsized typed address even on a sized receiver.
		return typesystem.Ptr{Elem: ptr.Elem}

	case opGetAddress:
		if !isPtr {
			return wrongReceiver()
		}
		a.requireArgCount(e, 0, vars)
		return typesystem.Raw{}

	case opCopy:
		if !isPtr {
			return wrongReceiver()
		}
		a.checkCopyArgs(e, vars, false)
		return typesystem.Unit

	case opCopySized:
		if !isSized {
			return wrongReceiver()
		}
		a.checkCopyArgs(e, vars, true)
		return typesystem.Unit

	case opDelete:
		if !isPtr {
			return wrongReceiver()
		}
		a.requireIntArgs(e, 1, vars)
		return typesystem.Unit

	case opWithSize:
		if !isPtr || isSized {
			return wrongReceiver()
		}
		a.requireIntArgs(e, 1, vars)
		return typesystem.Sized{Elem: ptr.Elem}

	default:
		a.errorf(diagnostics.UnknownMethod, e.P, "unknown pointer operation %q", e.Op)
		return nil
	}
}

func (a *Analyzer) requireArgCount(e *ast.PointerOp, n int, vars env) {
	if len(e.Args) != n {
		a.errorf(diagnostics.TypeMismatch, e.P, "%s expects %d arguments, got %d", e.Op, n, len(e.Args))
	}
	for _, arg := range e.Args {
		a.checkExpression(arg, vars)
	}
}

func (a *Analyzer) requireIntArgs(e *ast.PointerOp, n int, vars env) {
	if len(e.Args) != n {
		a.errorf(diagnostics.TypeMismatch, e.P, "%s expects %d arguments, got %d", e.Op, n, len(e.Args))
		for _, arg := range e.Args {
			a.checkExpression(arg, vars)
		}
		return
	}
	for _, arg := range e.Args {
		at := a.checkExpression(arg, vars)
		if at != nil && !isIntegerType(at) {
			a.errorf(diagnostics.TypeMismatch, e.P, "%s: expected an integer, got %s", e.Op, at)
		}
	}
}

// checkCopyArgs validates (dest, length). The destination must itself be an
// address; copy_sized additionally demands a sized destination so both
// bounds are known.
func (a *Analyzer) checkCopyArgs(e *ast.PointerOp, vars env, destSized bool) {
	if len(e.Args) != 2 {
		a.errorf(diagnostics.TypeMismatch, e.P, "%s expects 2 arguments, got %d", e.Op, len(e.Args))
		for _, arg := range e.Args {
			a.checkExpression(arg, vars)
		}
		return
	}
	dt := a.checkExpression(e.Args[0], vars)
	if dt != nil {
		_, isPtr := dt.(typesystem.Ptr)
		_, isSized := dt.(typesystem.Sized)
		if destSized && !isSized {
			a.errorf(diagnostics.TypeMismatch, e.P, "%s: destination must be a sized address, got %s", e.Op, dt)
		} else if !destSized && !isPtr && !isSized {
			a.errorf(diagnostics.TypeMismatch, e.P, "%s: destination must be an address, got %s", e.Op, dt)
		}
	}
	lt := a.checkExpression(e.Args[1], vars)
	if lt != nil && !isIntegerType(lt) {
		a.errorf(diagnostics.TypeMismatch, e.P, "%s: length must be an integer, got %s", e.Op, lt)
	}
}
