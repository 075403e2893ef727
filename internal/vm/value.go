package vm

import (
	"fmt"
	"math"
)

// ValueType identifies what a Value holds.
type ValueType uint8

const (
	ValUnit ValueType = iota
	ValInt
	ValFloat
	ValBool
	ValStr
	ValRawAddr
	ValTypedAddr
	ValSizedAddr
	ValFat
)

// Value is a stack-allocated tagged union. Small primitives live in Data;
// address values pack the arena offset into the low half of Data and any
// recorded byte length into the high half, with the element size in Aux.
// Fat pointers keep the data address in Data and the image table index in
// Aux; no other type information exists at runtime.
type Value struct {
	Type ValueType
	Data uint64
	Aux  uint64
	Str  string
}

func UnitVal() Value { return Value{Type: ValUnit} }

func IntVal(v int64) Value { return Value{Type: ValInt, Data: uint64(v)} }

func FloatVal(v float64) Value { return Value{Type: ValFloat, Data: math.Float64bits(v)} }

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func StrVal(s string) Value { return Value{Type: ValStr, Str: s} }

func RawAddrVal(addr uint32) Value { return Value{Type: ValRawAddr, Data: uint64(addr)} }

func TypedAddrVal(addr uint32, elemSize uint32) Value {
	return Value{Type: ValTypedAddr, Data: uint64(addr), Aux: uint64(elemSize)}
}

func SizedAddrVal(addr, size, elemSize uint32) Value {
	return Value{Type: ValSizedAddr, Data: uint64(addr) | uint64(size)<<32, Aux: uint64(elemSize)}
}

// FatVal pairs a data address with a dispatch-table index in the image.
func FatVal(addr uint32, tableIdx int) Value {
	return Value{Type: ValFat, Data: uint64(addr), Aux: uint64(tableIdx)}
}

func (v Value) AsInt() int64 { return int64(v.Data) }

func (v Value) AsFloat() float64 { return math.Float64frombits(v.Data) }

func (v Value) AsBool() bool { return v.Data == 1 }

// AsAddr returns the arena offset of an address-carrying value, including
// the data address of a fat pointer.
func (v Value) AsAddr() uint32 { return uint32(v.Data) }

// Size returns the recorded byte length of a sized address.
func (v Value) Size() uint32 { return uint32(v.Data >> 32) }

// ElemSize returns the compile-time element size carried by a typed or
// sized address.
func (v Value) ElemSize() uint32 { return uint32(v.Aux) }

// TableIdx returns the dispatch-table index of a fat pointer.
func (v Value) TableIdx() int { return int(v.Aux) }

func (v Value) String() string {
	switch v.Type {
	case ValUnit:
		return "unit"
	case ValInt:
		return fmt.Sprintf("%d", v.AsInt())
	case ValFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case ValBool:
		return fmt.Sprintf("%t", v.AsBool())
	case ValStr:
		return v.Str
	case ValRawAddr:
		return fmt.Sprintf("raw@%d", v.AsAddr())
	case ValTypedAddr:
		return fmt.Sprintf("typed@%d/%d", v.AsAddr(), v.ElemSize())
	case ValSizedAddr:
		return fmt.Sprintf("sized@%d+%d/%d", v.AsAddr(), v.Size(), v.ElemSize())
	case ValFat:
		return fmt.Sprintf("fat@%d#%d", v.AsAddr(), v.TableIdx())
	}
	return "?"
}
