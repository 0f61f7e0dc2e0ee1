package lox

// InterpretResult is the three-valued outcome of Interpret.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// CompileError is a typed error carrying a compile diagnostic in Message.
// Compile does not return it: Compile reports failure through its ok
// result and writes each diagnostic to its error writer as it occurs.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return e.Message }

// RuntimeError is raised by the VM for a failure during execution: arity
// mismatches, stack overflow, type errors on operands, undefined globals
// or properties, a non-class superclass, a non-instance receiver, or an
// uncallable callee.
type RuntimeError struct {
	Message string
	Line    int
	Trace   []string // one "[line N] in <name>()" entry per active frame
}

func (e *RuntimeError) Error() string { return e.Message }
