package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWrite(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpReturn, 1)

	require.Len(t, c.Code, 2)
	assert.Equal(t, byte(OpNil), c.Code[0])
	assert.Equal(t, byte(OpReturn), c.Code[1])
	assert.Equal(t, []int32{1, 1}, c.Lines)
}

func TestChunkAddConstant(t *testing.T) {
	vm := NewVM(DefaultConfig(), nil, nil)
	c := NewChunk()

	idx := c.AddConstant(vm, NumberValue(1))
	assert.Equal(t, 0, idx)
	idx = c.AddConstant(vm, NumberValue(2))
	assert.Equal(t, 1, idx)

	assert.Equal(t, float64(1), c.Constants[0].AsNumber())
	assert.Equal(t, float64(2), c.Constants[1].AsNumber())
}

func TestOpCodeString(t *testing.T) {
	assert.Equal(t, "OP_RETURN", OpReturn.String())
	assert.Equal(t, "OP_UNKNOWN", OpCode(255).String())
}
