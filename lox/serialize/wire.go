package serialize

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers, assigned once and never reused, for the VMData types
// declared in schema.go.
const (
	fieldVMDataBuildID  = 1
	fieldVMDataContexts = 2
	fieldVMDataStrings  = 3

	fieldContextFunctionAddress = 1
	fieldContextName            = 2
	fieldContextArity           = 3
	fieldContextUpvalueCount    = 4
	fieldContextFirstInstrAddr  = 5
	fieldContextInstructionVals = 6
	fieldContextConstantVals    = 7
	fieldContextUpvalues        = 8

	fieldInstructionValAddress = 1
	fieldInstructionValEntry   = 2

	fieldEntryOpcode            = 1
	fieldEntryAddressOrConstant = 2

	fieldConstantValIndex = 1
	fieldConstantValValue = 2

	fieldValueBool            = 1
	fieldValueNum             = 2
	fieldValueStringAddress   = 3
	fieldValueFunctionAddress = 4

	fieldUpvalueIndex   = 1
	fieldUpvalueIsLocal = 2

	fieldAddrHashKey     = 1
	fieldAddrHashAddress = 2
	fieldAddrHashHash    = 3
)

// Encode serializes d into the wire format, deterministically: fields are
// always appended in ascending number order and zero-valued scalar fields
// are omitted, exactly as proto3 would, so encoding the same VMData twice
// produces byte-identical output. As with a proto3 oneof, the chosen member
// of an InstructionEntry operand or a ValueType number is written even when
// it is zero, so it decodes back to the same kind.
func Encode(d *VMData) []byte {
	return appendVMData(nil, d)
}

func appendVMData(b []byte, d *VMData) []byte {
	b = appendStringField(b, fieldVMDataBuildID, d.BuildID)
	for _, ctx := range d.Contexts {
		b = appendBytesField(b, fieldVMDataContexts, appendContext(nil, &ctx))
	}
	for _, a := range d.StringsAtAddresses {
		b = appendBytesField(b, fieldVMDataStrings, appendAddressAndHash(nil, &a))
	}
	return b
}

func appendContext(b []byte, c *Context) []byte {
	b = appendUint64Field(b, fieldContextFunctionAddress, c.FunctionAddress)
	b = appendStringField(b, fieldContextName, c.ContextName)
	b = appendUint32Field(b, fieldContextArity, c.Arity)
	b = appendUint32Field(b, fieldContextUpvalueCount, c.UpvalueCount)
	b = appendUint64Field(b, fieldContextFirstInstrAddr, c.FirstInstructionAddress)
	for _, iv := range c.InstructionVals {
		b = appendBytesField(b, fieldContextInstructionVals, appendInstructionVal(nil, &iv))
	}
	for _, cv := range c.ConstantVals {
		b = appendBytesField(b, fieldContextConstantVals, appendConstantVal(nil, &cv))
	}
	for _, uv := range c.Upvalues {
		b = appendBytesField(b, fieldContextUpvalues, appendUpvalueDesc(nil, &uv))
	}
	return b
}

func appendInstructionVal(b []byte, iv *InstructionVal) []byte {
	b = appendUint64Field(b, fieldInstructionValAddress, iv.Address)
	b = appendBytesField(b, fieldInstructionValEntry, appendInstructionEntry(nil, &iv.Entry))
	return b
}

func appendInstructionEntry(b []byte, e *InstructionEntry) []byte {
	if e.IsOpcode {
		return appendUint32Field(b, fieldEntryOpcode, e.Opcode)
	}
	// Written even for a zero operand: an empty entry decodes as an opcode.
	b = protowire.AppendTag(b, fieldEntryAddressOrConstant, protowire.VarintType)
	return protowire.AppendVarint(b, e.AddressOrConstant)
}

func appendConstantVal(b []byte, cv *ConstantVal) []byte {
	b = appendInt32Field(b, fieldConstantValIndex, cv.Index)
	b = appendBytesField(b, fieldConstantValValue, appendValueType(nil, &cv.Value))
	return b
}

func appendValueType(b []byte, v *ValueType) []byte {
	switch v.Kind {
	case KindBool:
		return appendBoolField(b, fieldValueBool, v.BoolVal)
	case KindNumber:
		// Written even for 0: an empty ValueType decodes as a bool.
		b = protowire.AppendTag(b, fieldValueNum, protowire.Fixed64Type)
		return protowire.AppendFixed64(b, math.Float64bits(v.NumVal))
	case KindStringAddress:
		return appendUint64Field(b, fieldValueStringAddress, v.StringAddress)
	case KindFunctionAddress:
		return appendUint64Field(b, fieldValueFunctionAddress, v.FunctionAddress)
	default:
		return b
	}
}

func appendUpvalueDesc(b []byte, u *UpvalueDesc) []byte {
	b = appendUint32Field(b, fieldUpvalueIndex, u.Index)
	b = appendBoolField(b, fieldUpvalueIsLocal, u.IsLocal)
	return b
}

func appendAddressAndHash(b []byte, a *AddressAndHash) []byte {
	b = appendStringField(b, fieldAddrHashKey, a.Key)
	b = appendUint64Field(b, fieldAddrHashAddress, a.Address)
	b = appendUint32Field(b, fieldAddrHashHash, a.Hash)
	return b
}

// ---- field helpers: each scalar helper omits the default value,
// proto3-style; appendBytesField always writes, so an empty submessage
// still decodes as present ----

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint64Field(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendUint32Field(b []byte, num protowire.Number, v uint32) []byte {
	return appendUint64Field(b, num, uint64(v))
}

func appendInt32Field(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(uint32(v)))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

// ---- decode ----

// Decode parses the wire format produced by Encode back into a VMData.
func Decode(b []byte) (*VMData, error) {
	d := &VMData{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldVMDataBuildID:
			d.BuildID = string(bytesVal)
		case fieldVMDataContexts:
			ctx, err := decodeContext(bytesVal)
			if err != nil {
				return err
			}
			d.Contexts = append(d.Contexts, *ctx)
		case fieldVMDataStrings:
			a, err := decodeAddressAndHash(bytesVal)
			if err != nil {
				return err
			}
			d.StringsAtAddresses = append(d.StringsAtAddresses, *a)
		}
		return nil
	})
	return d, err
}

func decodeContext(b []byte) (*Context, error) {
	c := &Context{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldContextFunctionAddress:
			c.FunctionAddress = intVal
		case fieldContextName:
			c.ContextName = string(bytesVal)
		case fieldContextArity:
			c.Arity = uint32(intVal)
		case fieldContextUpvalueCount:
			c.UpvalueCount = uint32(intVal)
		case fieldContextFirstInstrAddr:
			c.FirstInstructionAddress = intVal
		case fieldContextInstructionVals:
			iv, err := decodeInstructionVal(bytesVal)
			if err != nil {
				return err
			}
			c.InstructionVals = append(c.InstructionVals, *iv)
		case fieldContextConstantVals:
			cv, err := decodeConstantVal(bytesVal)
			if err != nil {
				return err
			}
			c.ConstantVals = append(c.ConstantVals, *cv)
		case fieldContextUpvalues:
			uv, err := decodeUpvalueDesc(bytesVal)
			if err != nil {
				return err
			}
			c.Upvalues = append(c.Upvalues, *uv)
		}
		return nil
	})
	return c, err
}

func decodeInstructionVal(b []byte) (*InstructionVal, error) {
	iv := &InstructionVal{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldInstructionValAddress:
			iv.Address = intVal
		case fieldInstructionValEntry:
			entry, err := decodeInstructionEntry(bytesVal)
			if err != nil {
				return err
			}
			iv.Entry = *entry
		}
		return nil
	})
	return iv, err
}

func decodeInstructionEntry(b []byte) (*InstructionEntry, error) {
	e := &InstructionEntry{IsOpcode: true}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldEntryOpcode:
			e.IsOpcode = true
			e.Opcode = uint32(intVal)
		case fieldEntryAddressOrConstant:
			e.IsOpcode = false
			e.AddressOrConstant = intVal
		}
		return nil
	})
	return e, err
}

func decodeConstantVal(b []byte) (*ConstantVal, error) {
	cv := &ConstantVal{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldConstantValIndex:
			cv.Index = int32(intVal)
		case fieldConstantValValue:
			v, err := decodeValueType(bytesVal)
			if err != nil {
				return err
			}
			cv.Value = *v
		}
		return nil
	})
	return cv, err
}

func decodeValueType(b []byte) (*ValueType, error) {
	v := &ValueType{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldValueBool:
			v.Kind = KindBool
			v.BoolVal = intVal != 0
		case fieldValueNum:
			v.Kind = KindNumber
			v.NumVal = math.Float64frombits(intVal)
		case fieldValueStringAddress:
			v.Kind = KindStringAddress
			v.StringAddress = intVal
		case fieldValueFunctionAddress:
			v.Kind = KindFunctionAddress
			v.FunctionAddress = intVal
		}
		return nil
	})
	return v, err
}

func decodeUpvalueDesc(b []byte) (*UpvalueDesc, error) {
	u := &UpvalueDesc{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldUpvalueIndex:
			u.Index = uint32(intVal)
		case fieldUpvalueIsLocal:
			u.IsLocal = intVal != 0
		}
		return nil
	})
	return u, err
}

func decodeAddressAndHash(b []byte) (*AddressAndHash, error) {
	a := &AddressAndHash{}
	err := consumeMessage(b, func(num protowire.Number, bytesVal []byte, intVal uint64) error {
		switch num {
		case fieldAddrHashKey:
			a.Key = string(bytesVal)
		case fieldAddrHashAddress:
			a.Address = intVal
		case fieldAddrHashHash:
			a.Hash = uint32(intVal)
		}
		return nil
	})
	return a, err
}

// consumeMessage walks every field of a length-delimited submessage,
// calling fn with whichever of bytesVal/intVal is meaningful for the
// field's wire type. Fixed64 values arrive as intVal's raw bits (the
// double fields decode them with math.Float64frombits).
func consumeMessage(b []byte, fn func(num protowire.Number, bytesVal []byte, intVal uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("serialize: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("serialize: bad varint: %w", protowire.ParseError(n))
			}
			b = b[n:]
			if err := fn(num, nil, v); err != nil {
				return err
			}
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("serialize: bad fixed64: %w", protowire.ParseError(n))
			}
			b = b[n:]
			if err := fn(num, nil, v); err != nil {
				return err
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("serialize: bad bytes: %w", protowire.ParseError(n))
			}
			b = b[n:]
			if err := fn(num, v, 0); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("serialize: bad field: %w", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
