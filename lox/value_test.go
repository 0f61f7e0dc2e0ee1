package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEquality(t *testing.T) {
	t.Run("distinct types are never equal", func(t *testing.T) {
		assert.False(t, valuesEqual(NilValue(), BoolValue(false)))
		assert.False(t, valuesEqual(NumberValue(0), BoolValue(false)))
	})

	t.Run("numbers compare by value", func(t *testing.T) {
		assert.True(t, valuesEqual(NumberValue(1.5), NumberValue(1.5)))
		assert.False(t, valuesEqual(NumberValue(1.5), NumberValue(2.5)))
	})

	t.Run("strings compare by identity, which interning makes content equality", func(t *testing.T) {
		a := &ObjString{chars: "hi", hash: fnvHash32("hi")}
		b := &ObjString{chars: "hi", hash: fnvHash32("hi")}
		assert.False(t, valuesEqual(ObjValue(a), ObjValue(b)))
		assert.True(t, valuesEqual(ObjValue(a), ObjValue(a)))
	})
}

func TestValueFalsiness(t *testing.T) {
	t.Run("nil and false are falsey", func(t *testing.T) {
		assert.True(t, NilValue().IsFalsey())
		assert.True(t, BoolValue(false).IsFalsey())
	})

	t.Run("zero and empty string are truthy", func(t *testing.T) {
		assert.False(t, NumberValue(0).IsFalsey())
		s := &ObjString{chars: "", hash: fnvHash32("")}
		assert.False(t, ObjValue(s).IsFalsey())
	})
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "nil", FormatValue(NilValue()))
	assert.Equal(t, "true", FormatValue(BoolValue(true)))
	assert.Equal(t, "3.5", FormatValue(NumberValue(3.5)))
	assert.Equal(t, "<script>", FormatValue(ObjValue(newFunctionObj())))
}
