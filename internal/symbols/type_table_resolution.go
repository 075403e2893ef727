package symbols

import (
	"fmt"

	"github.com/ricardopieper/pony-lang/internal/ast"
	"github.com/ricardopieper/pony-lang/internal/config"
	"github.com/ricardopieper/pony-lang/internal/typesystem"
)

// UnresolvedError indicates a type name that is neither a registered type
// nor a recognized pointer primitive.
type UnresolvedError struct {
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("type %q is not defined", e.Name)
}

var primitives = map[string]typesystem.Prim{
	config.I32TypeName:  typesystem.I32,
	config.I64TypeName:  typesystem.I64,
	config.U8TypeName:   typesystem.U8,
	config.U32TypeName:  typesystem.U32,
	config.U64TypeName:  typesystem.U64,
	config.F32TypeName:  typesystem.F32,
	config.F64TypeName:  typesystem.F64,
	config.BoolTypeName: typesystem.Bool,
	config.StrTypeName:  typesystem.Str,
	config.UnitTypeName: typesystem.Unit,
}

// PrimByName resolves a scalar primitive name.
func PrimByName(name string) (typesystem.Prim, bool) {
	p, ok := primitives[name]
	return p, ok
}

// ResolveTypeExpr resolves a written type to its canonical form. Unresolved
// names are a hard error, never defaulted. A nil expr is the unit type
// (omitted return annotation).
func (t *TypeTable) ResolveTypeExpr(expr ast.TypeExpr) (typesystem.Type, error) {
	switch te := expr.(type) {
	case nil:
		return typesystem.Unit, nil
	case *ast.NamedType:
		if p, ok := primitives[te.Name]; ok {
			return p, nil
		}
		entry, ok := t.names[te.Name]
		if !ok {
			return nil, &UnresolvedError{Name: te.Name}
		}
		if entry.Kind == TraitEntry {
			return t.TraitType(entry.Id), nil
		}
		return t.StructType(entry.Id), nil
	case *ast.PointerType:
		if te.Kind == ast.RawPointer {
			return typesystem.Raw{}, nil
		}
		elem, err := t.ResolveTypeExpr(te.Elem)
		if err != nil {
			return nil, err
		}
		if te.Kind == ast.TypedPointer {
			return typesystem.Ptr{Elem: elem}, nil
		}
		return typesystem.Sized{Elem: elem}, nil
	default:
		return nil, fmt.Errorf("unsupported type expression %T", expr)
	}
}

// ResolveSig resolves a method signature to its canonical shape. The self
// receiver is excluded: the shape must be identical across implementers.
func (t *TypeTable) ResolveSig(params []ast.Param, ret ast.TypeExpr) (typesystem.Func, error) {
	fn := typesystem.Func{}
	for _, p := range params {
		pt, err := t.ResolveTypeExpr(p.Type)
		if err != nil {
			return fn, err
		}
		fn.Params = append(fn.Params, pt)
	}
	rt, err := t.ResolveTypeExpr(ret)
	if err != nil {
		return fn, err
	}
	fn.Return = rt
	return fn, nil
}
