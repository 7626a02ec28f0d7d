package story

import (
	"fmt"
	"strconv"
)

// VarType is the declared type of a global variable or linked-list field.
type VarType string

const (
	VarString VarType = "string"
	VarInt    VarType = "int"
	VarBool   VarType = "bool"
	VarFloat  VarType = "float"
)

// ParseVarType maps the textual type name used in documents to a VarType.
func ParseVarType(s string) (VarType, bool) {
	switch VarType(s) {
	case VarString, VarInt, VarBool, VarFloat:
		return VarType(s), true
	}
	return "", false
}

// Value is a typed literal. Variants correspond to the four declared
// variable types.
type Value interface {
	isValue()
	String() string
}

type StringValue string

type IntValue int64

type BoolValue bool

type FloatValue float64

func (StringValue) isValue() {}
func (IntValue) isValue()    {}
func (BoolValue) isValue()   {}
func (FloatValue) isValue()  {}

func (v StringValue) String() string { return string(v) }
func (v IntValue) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v BoolValue) String() string   { return strconv.FormatBool(bool(v)) }
func (v FloatValue) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// TypeOf returns the VarType a literal value belongs to.
func TypeOf(v Value) VarType {
	switch v.(type) {
	case StringValue:
		return VarString
	case IntValue:
		return VarInt
	case BoolValue:
		return VarBool
	case FloatValue:
		return VarFloat
	}
	panic(fmt.Sprintf("unknown value %T", v))
}
