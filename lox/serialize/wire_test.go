package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := &VMData{
		BuildID: "fixed-for-test",
		Contexts: []Context{
			{
				FunctionAddress:         1,
				ContextName:             "",
				Arity:                   0,
				UpvalueCount:            1,
				FirstInstructionAddress: 0,
				InstructionVals: []InstructionVal{
					{Address: 0, Entry: InstructionEntry{IsOpcode: true, Opcode: 1}},
					{Address: 1, Entry: InstructionEntry{IsOpcode: false, AddressOrConstant: 42}},
				},
				ConstantVals: []ConstantVal{
					{Index: 0, Value: ValueType{Kind: KindNumber, NumVal: 3.5}},
					{Index: 1, Value: ValueType{Kind: KindBool, BoolVal: true}},
					{Index: 2, Value: ValueType{Kind: KindStringAddress, StringAddress: 7}},
				},
				Upvalues: []UpvalueDesc{{Index: 0, IsLocal: true}},
			},
		},
		StringsAtAddresses: []AddressAndHash{
			{Key: "hello", Address: 7, Hash: 12345},
		},
	}

	encoded := Encode(d)
	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, d, decoded)
}

func TestEncodeIsDeterministic(t *testing.T) {
	d := &VMData{
		BuildID: "x",
		Contexts: []Context{
			{FunctionAddress: 1, ContextName: "f", Arity: 2},
		},
	}
	a := Encode(d)
	b := Encode(d)
	assert.Equal(t, a, b)
}

func TestDecodeEmptyContextDefaultsMatchOmittedFields(t *testing.T) {
	d := &VMData{Contexts: []Context{{}}}
	decoded, err := Decode(Encode(d))
	require.NoError(t, err)
	require.Len(t, decoded.Contexts, 1)
	assert.Equal(t, uint64(0), decoded.Contexts[0].FunctionAddress)
	assert.Equal(t, "", decoded.Contexts[0].ContextName)
}
