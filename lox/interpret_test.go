package lox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interpret(t *testing.T, source string) (stdout, stderr string, result InterpretResult) {
	t.Helper()
	var out, errOut bytes.Buffer
	vm := NewVM(DefaultConfig(), &out, &errOut)
	result = vm.Interpret(source)
	return out.String(), errOut.String(), result
}

func TestInterpretArithmeticAndPrint(t *testing.T) {
	out, _, result := interpret(t, `print 1 + 2 * 3;`)
	assert.Equal(t, InterpretOK, result)
	assert.Equal(t, "7\n", out)
}

func TestInterpretStringConcatenation(t *testing.T) {
	out, _, result := interpret(t, `print "foo" + "bar";`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "foobar\n", out)
}

func TestInterpretGlobalsAndLocals(t *testing.T) {
	out, _, result := interpret(t, `
		var a = 1;
		{
			var a = 2;
			print a;
		}
		print a;
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "2\n1\n", out)
}

func TestInterpretControlFlow(t *testing.T) {
	out, _, result := interpret(t, `
		var total = 0;
		for (var i = 0; i < 5; i = i + 1) {
			if (i == 2) {
				total = total + 10;
			} else {
				total = total + 1;
			}
		}
		print total;
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "14\n", out)
}

func TestInterpretWhileLoop(t *testing.T) {
	out, _, result := interpret(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "10\n", out)
}

func TestInterpretFunctionsAndClosures(t *testing.T) {
	out, _, result := interpret(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestInterpretClassesAndMethods(t *testing.T) {
	out, _, result := interpret(t, `
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				return "hello " + this.name;
			}
		}
		var g = Greeter("world");
		print g.greet();
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "hello world\n", out)
}

func TestInterpretInheritanceAndSuper(t *testing.T) {
	out, _, result := interpret(t, `
		class Animal {
			speak() {
				return "...";
			}
		}
		class Dog < Animal {
			speak() {
				return super.speak() + " woof";
			}
		}
		print Dog().speak();
	`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "... woof\n", out)
}

func TestInterpretUndefinedVariableIsRuntimeError(t *testing.T) {
	_, errOut, result := interpret(t, `print undefined_name;`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut, "Undefined variable")
}

func TestInterpretTypeErrorOnOperands(t *testing.T) {
	_, errOut, result := interpret(t, `print "a" - 1;`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut, "Operands must be numbers")
}

func TestInterpretCompileErrorDoesNotRun(t *testing.T) {
	out, errOut, result := interpret(t, `print ;`)
	assert.Equal(t, InterpretCompileError, result)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Error")
}

func TestInterpretUncallableCallee(t *testing.T) {
	_, errOut, result := interpret(t, `var x = 1; x();`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut, "Can only call functions and classes")
}

func TestInterpretWrongArity(t *testing.T) {
	_, errOut, result := interpret(t, `
		fun f(a, b) { return a + b; }
		f(1);
	`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut, "Expected 2 arguments but got 1")
}

func TestInterpretNonInstancePropertyAccess(t *testing.T) {
	_, errOut, result := interpret(t, `var x = 1; print x.foo;`)
	assert.Equal(t, InterpretRuntimeError, result)
	assert.Contains(t, errOut, "Only instances have properties")
}

func TestInterpretClockNativeReturnsNumber(t *testing.T) {
	out, _, result := interpret(t, `print clock() > 0;`)
	require.Equal(t, InterpretOK, result)
	assert.Equal(t, "true\n", out)
}
