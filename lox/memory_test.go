package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyStringInterns(t *testing.T) {
	vm := NewVM(DefaultConfig(), nil, nil)
	a := vm.copyString("hello")
	b := vm.copyString("hello")
	assert.Same(t, a, b)
}

func TestCollectGarbageFreesUnreachableStrings(t *testing.T) {
	vm := NewVM(DefaultConfig(), nil, nil)

	reachable := vm.copyString("kept")
	vm.push(ObjValue(reachable))

	unreachable := vm.copyString("discarded")
	_ = unreachable

	vm.collectGarbage()

	_, ok := vm.strings.Get(reachable)
	require.True(t, ok)

	found := vm.strings.FindString("discarded", fnvHash32("discarded"))
	assert.Nil(t, found)
}

func TestGCStressDoesNotCorruptLiveValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GCStress = true
	vm := NewVM(cfg, nil, nil)

	result := vm.Interpret(`
		var a = "one";
		var b = "two";
		print a;
	`)
	assert.Equal(t, InterpretOK, result)
}
