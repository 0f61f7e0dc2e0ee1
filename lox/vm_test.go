package lox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackOverflowIsARuntimeError(t *testing.T) {
	var out, errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), &out, &errOut)

	result := vm.Interpret(`
		fun recurse() {
			return recurse();
		}
		recurse();
	`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut.String(), "Stack overflow")
}

func TestRuntimeErrorTraceIncludesCallChain(t *testing.T) {
	var out, errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), &out, &errOut)

	result := vm.Interpret(`
		fun inner() { return "x" - 1; }
		fun outer() { return inner(); }
		outer();
	`)
	require.Equal(t, InterpretRuntimeError, result)
	trace := errOut.String()
	assert.Contains(t, trace, "Operands must be numbers")
	assert.Contains(t, trace, "in inner()")
	assert.Contains(t, trace, "in outer()")
	assert.Contains(t, trace, "in script")
}

func TestSharedUpvalueIsMutatedByBothClosures(t *testing.T) {
	out, _, result := interpret(t, `
		fun pair() {
			var shared = 0;
			fun inc() { shared = shared + 1; return shared; }
			fun read() { return shared; }
			print inc();
			print read();
			print inc();
			print read();
			return 0;
		}
		pair();
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "1\n1\n2\n2\n", out)
}

func TestUpvalueCapturesParameterOfEachCall(t *testing.T) {
	out, _, result := interpret(t, `
		var closures = "";
		fun makeAdder(n) {
			fun add() { return n; }
			return add;
		}
		var fns = makeAdder(1);
		print fns();
		fns = makeAdder(2);
		print fns();
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "1\n2\n", out)
}

func TestCallValueRejectsWrongArityBeforeRunningBody(t *testing.T) {
	_, errOut, result := interpret(t, `
		fun f(a) { print "ran"; return a; }
		f();
	`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut, "Expected 1 arguments but got 0")
	assert.NotContains(t, errOut, "ran")
}

func TestBoundMethodRetainsReceiverAfterUnbind(t *testing.T) {
	out, _, result := interpret(t, `
		class Box {
			init(v) { this.v = v; }
			get() { return this.v; }
		}
		var b = Box(42);
		var m = b.get;
		print m();
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "42\n", out)
}
