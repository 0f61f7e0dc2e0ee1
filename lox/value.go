// Package lox implements the compiler, heap, garbage collector and virtual
// machine for the Lox scripting language.
package lox

import (
	"fmt"
	"strconv"
)

// valueType tags the scalar/heap discriminated union held by Value.
type valueType uint8

const (
	valNil valueType = iota
	valBool
	valNumber
	valObj
)

// Value is the tagged union every expression evaluates to. It intentionally
// stays a small value type (not an interface) so that copying it onto and
// off of the VM stack never allocates.
type Value struct {
	typ     valueType
	boolean bool
	number  float64
	obj     object
}

// NilValue returns the singleton-shaped nil value.
func NilValue() Value { return Value{typ: valNil} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{typ: valBool, boolean: b} }

// NumberValue wraps a float64.
func NumberValue(n float64) Value { return Value{typ: valNumber, number: n} }

// ObjValue wraps a heap object.
func ObjValue(o object) Value { return Value{typ: valObj, obj: o} }

func (v Value) IsNil() bool    { return v.typ == valNil }
func (v Value) IsBool() bool   { return v.typ == valBool }
func (v Value) IsNumber() bool { return v.typ == valNumber }
func (v Value) IsObj() bool    { return v.typ == valObj }

// AsBool returns the boolean payload. Callers must have checked IsBool.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the float64 payload. Callers must have checked IsNumber.
func (v Value) AsNumber() float64 { return v.number }

// AsObj returns the heap object payload. Callers must have checked IsObj.
func (v Value) AsObj() object { return v.obj }

// IsFalsey implements Lox truthiness: only nil and false are falsey.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

func (v Value) isObjType(t objType) bool {
	return v.IsObj() && v.obj.objType() == t
}

func (v Value) IsString() bool      { return v.isObjType(objTypeString) }
func (v Value) IsFunction() bool    { return v.isObjType(objTypeFunction) }
func (v Value) IsNative() bool      { return v.isObjType(objTypeNative) }
func (v Value) IsClosure() bool     { return v.isObjType(objTypeClosure) }
func (v Value) IsClass() bool       { return v.isObjType(objTypeClass) }
func (v Value) IsInstance() bool    { return v.isObjType(objTypeInstance) }
func (v Value) IsBoundMethod() bool { return v.isObjType(objTypeBoundMethod) }

func (v Value) AsString() *ObjString           { return v.obj.(*ObjString) }
func (v Value) AsFunction() *ObjFunction       { return v.obj.(*ObjFunction) }
func (v Value) AsNative() *ObjNative           { return v.obj.(*ObjNative) }
func (v Value) AsClosure() *ObjClosure         { return v.obj.(*ObjClosure) }
func (v Value) AsClass() *ObjClass             { return v.obj.(*ObjClass) }
func (v Value) AsInstance() *ObjInstance       { return v.obj.(*ObjInstance) }
func (v Value) AsBoundMethod() *ObjBoundMethod { return v.obj.(*ObjBoundMethod) }

// valuesEqual implements == for Lox values. Distinct tags are always
// unequal; Obj equality is heap identity, which interning makes equivalent
// to content equality for strings.
func valuesEqual(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case valNil:
		return true
	case valBool:
		return a.boolean == b.boolean
	case valNumber:
		return a.number == b.number
	case valObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// FormatValue renders v the way `print` and string conversion do.
func FormatValue(v Value) string {
	switch v.typ {
	case valNil:
		return "nil"
	case valBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case valNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case valObj:
		return formatObject(v.obj)
	default:
		return "<unknown value>"
	}
}

func formatObject(o object) string {
	switch ov := o.(type) {
	case *ObjString:
		return ov.chars
	case *ObjFunction:
		if ov.name == nil {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", ov.name.chars)
	case *ObjNative:
		return "<native fn>"
	case *ObjClosure:
		if ov.function.name == nil {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", ov.function.name.chars)
	case *ObjUpvalue:
		return "upvalue"
	case *ObjClass:
		return ov.name.chars
	case *ObjInstance:
		return fmt.Sprintf("%s instance", ov.class.name.chars)
	case *ObjBoundMethod:
		return formatObject(ov.method)
	default:
		return "<obj>"
	}
}
