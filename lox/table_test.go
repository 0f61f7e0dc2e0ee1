package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	t.Run("set and get round-trips a value", func(t *testing.T) {
		tab := NewTable()
		key := &ObjString{chars: "answer", hash: fnvHash32("answer")}

		isNew := tab.Set(nil, key, NumberValue(42))
		assert.True(t, isNew)

		v, ok := tab.Get(key)
		require.True(t, ok)
		assert.Equal(t, float64(42), v.AsNumber())
	})

	t.Run("get on an empty table never probes", func(t *testing.T) {
		tab := NewTable()
		key := &ObjString{chars: "missing", hash: fnvHash32("missing")}
		_, ok := tab.Get(key)
		assert.False(t, ok)
	})

	t.Run("delete leaves a tombstone that doesn't break later probes", func(t *testing.T) {
		tab := NewTable()
		a := &ObjString{chars: "a", hash: fnvHash32("a")}
		b := &ObjString{chars: "b", hash: fnvHash32("b")}
		tab.Set(nil, a, NumberValue(1))
		tab.Set(nil, b, NumberValue(2))

		assert.True(t, tab.Delete(a))
		v, ok := tab.Get(b)
		require.True(t, ok)
		assert.Equal(t, float64(2), v.AsNumber())
	})

	t.Run("find string matches by content not identity", func(t *testing.T) {
		tab := NewTable()
		key := &ObjString{chars: "hello", hash: fnvHash32("hello")}
		tab.Set(nil, key, NilValue())

		found := tab.FindString("hello", fnvHash32("hello"))
		assert.Same(t, key, found)
	})

	t.Run("add all copies every live entry", func(t *testing.T) {
		src := NewTable()
		dst := NewTable()
		k := &ObjString{chars: "x", hash: fnvHash32("x")}
		src.Set(nil, k, NumberValue(7))

		src.AddAll(nil, dst)

		v, ok := dst.Get(k)
		require.True(t, ok)
		assert.Equal(t, float64(7), v.AsNumber())
	})

	t.Run("remove white evicts unmarked keys", func(t *testing.T) {
		tab := NewTable()
		marked := &ObjString{chars: "kept", hash: fnvHash32("kept")}
		marked.marked = true
		unmarked := &ObjString{chars: "gone", hash: fnvHash32("gone")}
		tab.Set(nil, marked, NilValue())
		tab.Set(nil, unmarked, NilValue())

		tab.RemoveWhite()

		_, ok := tab.Get(marked)
		assert.True(t, ok)
		_, ok = tab.Get(unmarked)
		assert.False(t, ok)
	})

	t.Run("grows past the load factor", func(t *testing.T) {
		tab := NewTable()
		for i := 0; i < 20; i++ {
			s := string(rune('a' + i))
			tab.Set(nil, &ObjString{chars: s, hash: fnvHash32(s)}, NumberValue(float64(i)))
		}
		assert.Equal(t, 20, tab.Count())
	})
}
