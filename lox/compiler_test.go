package lox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileProducesArtifactsForEveryFunction(t *testing.T) {
	var errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), nil, &errOut)

	source := `
		fun outer() {
			fun inner() {
				return 1;
			}
			return inner;
		}
	`
	fn, artifacts, ok := Compile(vm, source, &errOut)
	require.True(t, ok, "unexpected compile error: %s", errOut.String())
	require.NotNil(t, fn)

	// inner, outer, script: a function is recorded when its body finishes
	// compiling, so each nested function comes before its enclosing one.
	require.Len(t, artifacts.Functions, 3)
	names := make([]string, len(artifacts.Functions))
	for i, f := range artifacts.Functions {
		if f.name == nil {
			names[i] = ""
		} else {
			names[i] = f.name.chars
		}
	}
	assert.Equal(t, []string{"inner", "outer", ""}, names)

	for _, f := range artifacts.Functions {
		addrs := artifacts.OperandAddrs[f]
		for addr := range addrs {
			assert.Less(t, addr, len(f.chunk.Code))
		}
	}
}

func TestCompileReportsSyntaxErrorWithLine(t *testing.T) {
	var errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), nil, &errOut)

	_, _, ok := Compile(vm, "var;", &errOut)
	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "[line 1] Error")
}

func TestCompileRecoversAfterErrorAndKeepsParsing(t *testing.T) {
	var errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), nil, &errOut)

	_, _, ok := Compile(vm, "var; var good = 1;", &errOut)
	assert.False(t, ok)
	// synchronize() should have resumed parsing rather than aborting, so
	// only one diagnostic is emitted for the one bad statement.
	assert.Equal(t, 1, bytes.Count(errOut.Bytes(), []byte("Error")))
}

func TestClassWithSuperclassCompiles(t *testing.T) {
	var errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), nil, &errOut)

	_, _, ok := Compile(vm, `
		class A { m() { return 1; } }
		class B < A { m() { return super.m(); } }
	`, &errOut)
	require.True(t, ok, errOut.String())
}

func TestSelfInheritanceIsACompileError(t *testing.T) {
	var errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), nil, &errOut)

	_, _, ok := Compile(vm, `class A < A {}`, &errOut)
	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "can't inherit from itself")
}
