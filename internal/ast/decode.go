package ast

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeProgram reads the JSON declaration tree emitted by the front end.
// Every node carries a "kind" discriminator; unknown kinds are an error so
// that front-end/compiler version skew fails loudly instead of silently
// dropping nodes.
func DecodeProgram(r io.Reader) (*Program, error) {
	var raw rawProgram
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return raw.build()
}

type rawProgram struct {
	File    string     `json:"file"`
	Structs []rawDecl  `json:"structs"`
	Traits  []rawTrait `json:"traits"`
	Impls   []rawImpl  `json:"impls"`
	Funcs   []rawFunc  `json:"funcs"`
}

type rawDecl struct {
	Name   string     `json:"name"`
	Line   int        `json:"line"`
	Fields []rawField `json:"fields"`
}

type rawField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type rawTrait struct {
	Name    string   `json:"name"`
	Line    int      `json:"line"`
	Supers  []string `json:"supers"`
	Methods []rawSig `json:"methods"`
}

type rawSig struct {
	Name   string          `json:"name"`
	Params []rawField      `json:"params"`
	Return json.RawMessage `json:"return"`
}

type rawImpl struct {
	Struct  string    `json:"struct"`
	Trait   string    `json:"trait"`
	Line    int       `json:"line"`
	Methods []rawFunc `json:"methods"`
}

type rawFunc struct {
	Name    string            `json:"name"`
	Line    int               `json:"line"`
	Self    bool              `json:"self"`
	Params  []rawField        `json:"params"`
	Return  json.RawMessage   `json:"return"`
	Body    []json.RawMessage `json:"body"`
}

func (rp *rawProgram) build() (*Program, error) {
	p := &Program{File: rp.File}
	pos := func(line int) Position { return Position{File: rp.File, Line: line} }

	for _, rs := range rp.Structs {
		d := &StructDecl{P: pos(rs.Line), Name: rs.Name}
		for _, f := range rs.Fields {
			t, err := decodeType(f.Type, rp.File)
			if err != nil {
				return nil, fmt.Errorf("struct %s, field %s: %w", rs.Name, f.Name, err)
			}
			d.Fields = append(d.Fields, Field{Name: f.Name, Type: t})
		}
		p.Structs = append(p.Structs, d)
	}

	for _, rt := range rp.Traits {
		d := &TraitDecl{P: pos(rt.Line), Name: rt.Name, Supers: rt.Supers}
		for _, m := range rt.Methods {
			sig, err := decodeSig(m, rp.File)
			if err != nil {
				return nil, fmt.Errorf("trait %s, method %s: %w", rt.Name, m.Name, err)
			}
			d.Methods = append(d.Methods, sig)
		}
		p.Traits = append(p.Traits, d)
	}

	for _, ri := range rp.Impls {
		d := &ImplBlock{P: pos(ri.Line), Struct: ri.Struct, Trait: ri.Trait}
		for i := range ri.Methods {
			fn, err := decodeFunc(&ri.Methods[i], rp.File)
			if err != nil {
				return nil, fmt.Errorf("impl %s for %s: %w", ri.Trait, ri.Struct, err)
			}
			d.Methods = append(d.Methods, fn)
		}
		p.Impls = append(p.Impls, d)
	}

	for i := range rp.Funcs {
		fn, err := decodeFunc(&rp.Funcs[i], rp.File)
		if err != nil {
			return nil, err
		}
		p.Funcs = append(p.Funcs, fn)
	}

	return p, nil
}

func decodeSig(m rawSig, file string) (MethodSig, error) {
	sig := MethodSig{Name: m.Name}
	for _, pr := range m.Params {
		t, err := decodeType(pr.Type, file)
		if err != nil {
			return sig, err
		}
		sig.Params = append(sig.Params, Param{Name: pr.Name, Type: t})
	}
	ret, err := decodeType(m.Return, file)
	if err != nil {
		return sig, err
	}
	sig.Return = ret
	return sig, nil
}

func decodeFunc(rf *rawFunc, file string) (*FunctionDecl, error) {
	fn := &FunctionDecl{
		P:       Position{File: file, Line: rf.Line},
		Name:    rf.Name,
		HasSelf: rf.Self,
	}
	for _, pr := range rf.Params {
		t, err := decodeType(pr.Type, file)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", rf.Name, err)
		}
		fn.Params = append(fn.Params, Param{Name: pr.Name, Type: t})
	}
	ret, err := decodeType(rf.Return, file)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", rf.Name, err)
	}
	fn.Return = ret
	for _, rs := range rf.Body {
		st, err := decodeStmt(rs, file)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", rf.Name, err)
		}
		fn.Body = append(fn.Body, st)
	}
	return fn, nil
}

func decodeType(raw json.RawMessage, file string) (TypeExpr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var node struct {
		Kind string          `json:"kind"`
		Name string          `json:"name"`
		Line int             `json:"line"`
		Elem json.RawMessage `json:"elem"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	pos := Position{File: file, Line: node.Line}
	switch node.Kind {
	case "named":
		return &NamedType{P: pos, Name: node.Name}, nil
	case "raw":
		return &PointerType{P: pos, Kind: RawPointer}, nil
	case "typed", "sized":
		elem, err := decodeType(node.Elem, file)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			return nil, fmt.Errorf("%s address without element type", node.Kind)
		}
		k := TypedPointer
		if node.Kind == "sized" {
			k = SizedPointer
		}
		return &PointerType{P: pos, Kind: k, Elem: elem}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", node.Kind)
	}
}

type rawStmt struct {
	Kind      string            `json:"kind"`
	Line      int               `json:"line"`
	Name      string            `json:"name"`
	Type      json.RawMessage   `json:"type"`
	Target    json.RawMessage   `json:"target"`
	Value     json.RawMessage   `json:"value"`
	Expr      json.RawMessage   `json:"expr"`
	Condition json.RawMessage   `json:"condition"`
	Then      []json.RawMessage `json:"then"`
	Else      []json.RawMessage `json:"else"`
}

func decodeStmt(raw json.RawMessage, file string) (Statement, error) {
	var node rawStmt
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	pos := Position{File: file, Line: node.Line}
	switch node.Kind {
	case "var":
		t, err := decodeType(node.Type, file)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(node.Value, file)
		if err != nil {
			return nil, err
		}
		return &VarStatement{P: pos, Name: node.Name, Type: t, Value: v}, nil
	case "assign":
		target, err := decodeExpr(node.Target, file)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(node.Value, file)
		if err != nil {
			return nil, err
		}
		return &AssignStatement{P: pos, Target: target, Value: v}, nil
	case "return":
		var v Expression
		if len(node.Value) > 0 && string(node.Value) != "null" {
			var err error
			v, err = decodeExpr(node.Value, file)
			if err != nil {
				return nil, err
			}
		}
		return &ReturnStatement{P: pos, Value: v}, nil
	case "expr":
		e, err := decodeExpr(node.Expr, file)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{P: pos, Expr: e}, nil
	case "if":
		cond, err := decodeExpr(node.Condition, file)
		if err != nil {
			return nil, err
		}
		st := &IfStatement{P: pos, Condition: cond}
		for _, t := range node.Then {
			s, err := decodeStmt(t, file)
			if err != nil {
				return nil, err
			}
			st.Then = append(st.Then, s)
		}
		for _, e := range node.Else {
			s, err := decodeStmt(e, file)
			if err != nil {
				return nil, err
			}
			st.Else = append(st.Else, s)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown statement kind %q", node.Kind)
	}
}

type rawExpr struct {
	Kind     string            `json:"kind"`
	Line     int               `json:"line"`
	Name     string            `json:"name"`
	Int      int64             `json:"int"`
	Float    float64           `json:"float"`
	Bool     bool              `json:"bool"`
	Type     string            `json:"type"`
	Fields   []rawFieldInit    `json:"fields"`
	Object   json.RawMessage   `json:"object"`
	Field    string            `json:"field"`
	Callee   string            `json:"callee"`
	Receiver json.RawMessage   `json:"receiver"`
	Method   string            `json:"method"`
	Args     []json.RawMessage `json:"args"`
	Value    json.RawMessage   `json:"value"`
	Target   json.RawMessage   `json:"target"`
	Trait    string            `json:"trait"`
	Op       string            `json:"op"`
	Left     json.RawMessage   `json:"left"`
	Right    json.RawMessage   `json:"right"`
	TypeArg  json.RawMessage   `json:"type_arg"`
}

type rawFieldInit struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func decodeExpr(raw json.RawMessage, file string) (Expression, error) {
	var node rawExpr
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	pos := Position{File: file, Line: node.Line}
	decodeArgs := func() ([]Expression, error) {
		var args []Expression
		for _, a := range node.Args {
			e, err := decodeExpr(a, file)
			if err != nil {
				return nil, err
			}
			args = append(args, e)
		}
		return args, nil
	}

	switch node.Kind {
	case "ident":
		return &Identifier{P: pos, Name: node.Name}, nil
	case "int":
		return &IntegerLiteral{P: pos, Value: node.Int, Type: node.Type}, nil
	case "float":
		return &FloatLiteral{P: pos, Value: node.Float, Type: node.Type}, nil
	case "bool":
		return &BooleanLiteral{P: pos, Value: node.Bool}, nil
	case "struct_lit":
		lit := &StructLiteral{P: pos, Name: node.Name}
		for _, f := range node.Fields {
			v, err := decodeExpr(f.Value, file)
			if err != nil {
				return nil, err
			}
			lit.Fields = append(lit.Fields, FieldInit{Name: f.Name, Value: v})
		}
		return lit, nil
	case "field":
		obj, err := decodeExpr(node.Object, file)
		if err != nil {
			return nil, err
		}
		return &FieldAccess{P: pos, Object: obj, Field: node.Field}, nil
	case "call":
		args, err := decodeArgs()
		if err != nil {
			return nil, err
		}
		return &CallExpression{P: pos, Callee: node.Callee, Args: args}, nil
	case "method_call":
		recv, err := decodeExpr(node.Receiver, file)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs()
		if err != nil {
			return nil, err
		}
		return &MethodCall{P: pos, Receiver: recv, Method: node.Method, Args: args}, nil
	case "is":
		v, err := decodeExpr(node.Value, file)
		if err != nil {
			return nil, err
		}
		return &IsExpression{P: pos, Value: v, Target: node.Trait}, nil
	case "cast":
		v, err := decodeExpr(node.Value, file)
		if err != nil {
			return nil, err
		}
		t, err := decodeType(node.Target, file)
		if err != nil {
			return nil, err
		}
		return &CastExpression{P: pos, Value: v, Target: t}, nil
	case "sizeof":
		t, err := decodeType(node.Target, file)
		if err != nil {
			return nil, err
		}
		return &SizeofExpression{P: pos, Target: t}, nil
	case "binary":
		left, err := decodeExpr(node.Left, file)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(node.Right, file)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{P: pos, Operator: node.Op, Left: left, Right: right}, nil
	case "ptr_op":
		recv, err := decodeExpr(node.Receiver, file)
		if err != nil {
			return nil, err
		}
		args, err := decodeArgs()
		if err != nil {
			return nil, err
		}
		var typeArg TypeExpr
		if len(node.TypeArg) > 0 && string(node.TypeArg) != "null" {
			typeArg, err = decodeType(node.TypeArg, file)
			if err != nil {
				return nil, err
			}
		}
		return &PointerOp{P: pos, Receiver: recv, Op: node.Op, TypeArg: typeArg, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", node.Kind)
	}
}
