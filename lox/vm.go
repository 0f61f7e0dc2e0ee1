package lox

import (
	"fmt"
	"io"
)

const framesMax = 64
const stackMax = framesMax * 256

// CallFrame is one activation record on the VM's call stack: a Closure, its
// instruction pointer, and the base slot of its locals in the value stack.
type CallFrame struct {
	closure *ObjClosure
	ip      int
	slots   int
}

// VM is the stack-based bytecode interpreter: one value stack, a bounded
// call-frame stack, the object heap and its collector, globals, and the
// interned-string table.
type VM struct {
	stack      [stackMax]Value
	stackTop   int
	frames     [framesMax]CallFrame
	frameCount int

	openUpvalues *ObjUpvalue

	globals *Table
	strings *Table
	objects object
	gc      *gcState

	initString *ObjString

	// compilerRootsFn lets an in-flight Compile register its active
	// function chain as a GC root; nil whenever no compile is running.
	compilerRootsFn func(*VM)

	cfg    Config
	out    io.Writer
	errOut io.Writer

	lastErr *RuntimeError
}

// NewVM returns a ready-to-use VM: empty stack, fresh heap, clock native
// registered, writing program output to out and diagnostics to errOut.
func NewVM(cfg Config, out, errOut io.Writer) *VM {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	vm := &VM{cfg: cfg, out: out, errOut: errOut}
	vm.globals = NewTable()
	vm.strings = NewTable()
	vm.gc = newGCState(cfg)
	vm.initString = vm.copyString("init")
	registerNatives(vm)
	return vm
}

// Strings exposes the intern table for the serializer's string dump.
func (vm *VM) Strings() *Table { return vm.strings }

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) traceLog(format string, args ...any) {
	fmt.Fprintf(vm.errOut, format, args...)
}

// ---- heap constructors: every *Obj value in the VM is born through one
// of these, so allocateObject's accounting and linkage stay a single
// chokepoint. ----

func (vm *VM) newFunction() *ObjFunction {
	return allocateObject(vm, newFunctionObj())
}

func (vm *VM) newNative(name string, fn NativeFn) *ObjNative {
	return allocateObject(vm, &ObjNative{fn: fn, name: name})
}

func (vm *VM) newClosure(function *ObjFunction) *ObjClosure {
	return allocateObject(vm, newClosure(function))
}

func (vm *VM) newClass(name *ObjString) *ObjClass {
	return allocateObject(vm, newClass(name))
}

func (vm *VM) newInstance(class *ObjClass) *ObjInstance {
	return allocateObject(vm, newInstance(class))
}

func (vm *VM) newBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	return allocateObject(vm, &ObjBoundMethod{receiver: receiver, method: method})
}

func (vm *VM) newUpvalueAt(slot int) *ObjUpvalue {
	uv := allocateObject(vm, &ObjUpvalue{location: &vm.stack[slot], slot: slot})
	return uv
}

// copyString interns s, allocating a new ObjString only if an equal one
// isn't already interned.
func (vm *VM) copyString(s string) *ObjString {
	hash := fnvHash32(s)
	if interned := vm.strings.FindString(s, hash); interned != nil {
		return interned
	}
	obj := allocateObject(vm, &ObjString{chars: s, hash: hash})
	vm.push(ObjValue(obj))
	vm.strings.Set(vm, obj, NilValue())
	vm.pop()
	return obj
}

func (vm *VM) defineNative(name string, fn NativeFn) {
	vm.push(ObjValue(vm.copyString(name)))
	vm.push(ObjValue(vm.newNative(name, fn)))
	vm.globals.Set(vm, vm.peek(1).AsString(), vm.peek(0))
	vm.pop()
	vm.pop()
}

// ---- upvalue capture/close ----

func (vm *VM) captureUpvalue(slot int) *ObjUpvalue {
	var prev *ObjUpvalue
	uv := vm.openUpvalues
	for uv != nil && uv.slot > slot {
		prev = uv
		uv = uv.nextOpen
	}
	if uv != nil && uv.slot == slot {
		return uv
	}
	created := vm.newUpvalueAt(slot)
	created.nextOpen = uv
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.nextOpen = created
	}
	return created
}

func (vm *VM) closeUpvalues(lastSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.slot >= lastSlot {
		uv := vm.openUpvalues
		uv.closed = *uv.location
		uv.location = &uv.closed
		vm.openUpvalues = uv.nextOpen
	}
}

// ---- call protocol ----

func (vm *VM) call(closure *ObjClosure, argCount int) bool {
	if argCount != int(closure.function.arity) {
		vm.runtimeError("Expected %d arguments but got %d.", closure.function.arity, argCount)
		return false
	}
	if vm.frameCount == framesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return true
}

func (vm *VM) callValue(callee Value, argCount int) bool {
	if !callee.IsObj() {
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
	switch o := callee.AsObj().(type) {
	case *ObjBoundMethod:
		vm.stack[vm.stackTop-argCount-1] = o.receiver
		return vm.call(o.method, argCount)
	case *ObjClass:
		vm.stack[vm.stackTop-argCount-1] = ObjValue(vm.newInstance(o))
		if initializer, ok := o.methods.Get(vm.initString); ok {
			return vm.call(initializer.AsClosure(), argCount)
		}
		if argCount != 0 {
			vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			return false
		}
		return true
	case *ObjClosure:
		return vm.call(o, argCount)
	case *ObjNative:
		result := o.fn(argCount, vm.stack[vm.stackTop-argCount:vm.stackTop])
		vm.stackTop -= argCount + 1
		vm.push(result)
		return true
	default:
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) bool {
	method, ok := class.methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.chars)
		return false
	}
	return vm.call(method.AsClosure(), argCount)
}

func (vm *VM) invoke(name *ObjString, argCount int) bool {
	receiver := vm.peek(argCount)
	if !receiver.IsInstance() {
		vm.runtimeError("Only instances have methods.")
		return false
	}
	instance := receiver.AsInstance()
	if value, ok := instance.fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = value
		return vm.callValue(value, argCount)
	}
	return vm.invokeFromClass(instance.class, name, argCount)
}

func (vm *VM) bindMethod(class *ObjClass, name *ObjString) bool {
	method, ok := class.methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.chars)
		return false
	}
	bound := vm.newBoundMethod(vm.peek(0), method.AsClosure())
	vm.pop()
	vm.push(ObjValue(bound))
	return true
}

func (vm *VM) defineMethod(name *ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).AsClass()
	class.methods.Set(vm, name, method)
	vm.pop()
}

// ---- diagnostics ----

func (vm *VM) runtimeError(format string, args ...any) InterpretResult {
	message := fmt.Sprintf(format, args...)

	line := 0
	trace := make([]string, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		function := fr.closure.function
		instrIdx := fr.ip - 1
		frameLine := 0
		if instrIdx >= 0 && instrIdx < len(function.chunk.Lines) {
			frameLine = int(function.chunk.Lines[instrIdx])
		}
		if i == vm.frameCount-1 {
			line = frameLine
		}
		name := "script"
		if function.name != nil {
			name = function.name.chars + "()"
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", frameLine, name))
	}

	vm.lastErr = &RuntimeError{Message: message, Line: line, Trace: trace}

	fmt.Fprintf(vm.errOut, "%s\n", message)
	for _, t := range trace {
		fmt.Fprintf(vm.errOut, "%s\n", t)
	}

	vm.resetStack()
	return InterpretRuntimeError
}

// ---- top-level entry points ----

// Interpret compiles and runs source in one step; this is what the REPL
// and `cloxgo run` use.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, _, ok := Compile(vm, source, vm.errOut)
	if !ok {
		return InterpretCompileError
	}
	return vm.Run(fn)
}

// Run executes a compiled top-level Function, such as the one Compile
// returns.
func (vm *VM) Run(fn *ObjFunction) InterpretResult {
	vm.push(ObjValue(fn))
	closure := vm.newClosure(fn)
	vm.pop()
	vm.push(ObjValue(closure))
	vm.callValue(ObjValue(closure), 0)

	return vm.run()
}

func (vm *VM) run() InterpretResult {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.function.chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() Value {
		return frame.closure.function.chunk.Constants[readByte()]
	}
	readString := func() *ObjString {
		return readConstant().AsString()
	}

	for {
		if vm.cfg.TraceExecution {
			vm.printStack()
			DisassembleInstruction(vm.errOut, frame.closure.function.chunk, frame.ip)
		}

		instruction := OpCode(readByte())
		switch instruction {
		case OpConstant:
			vm.push(readConstant())
		case OpNil:
			vm.push(NilValue())
		case OpTrue:
			vm.push(BoolValue(true))
		case OpFalse:
			vm.push(BoolValue(false))
		case OpPop:
			vm.pop()

		case OpGetLocal:
			slot := readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case OpSetLocal:
			slot := readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case OpGetGlobal:
			name := readString()
			value, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.chars)
			}
			vm.push(value)
		case OpDefineGlobal:
			name := readString()
			vm.globals.Set(vm, name, vm.peek(0))
			vm.pop()
		case OpSetGlobal:
			name := readString()
			if vm.globals.Set(vm, name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.chars)
			}

		case OpGetUpvalue:
			slot := readByte()
			vm.push(*frame.closure.upvalues[slot].location)
		case OpSetUpvalue:
			slot := readByte()
			*frame.closure.upvalues[slot].location = vm.peek(0)

		case OpGetProperty:
			if !vm.peek(0).IsInstance() {
				return vm.runtimeError("Only instances have properties.")
			}
			instance := vm.peek(0).AsInstance()
			name := readString()
			if value, ok := instance.fields.Get(name); ok {
				vm.pop()
				vm.push(value)
			} else if !vm.bindMethod(instance.class, name) {
				return InterpretRuntimeError
			}
		case OpSetProperty:
			if !vm.peek(1).IsInstance() {
				return vm.runtimeError("Only instances have fields.")
			}
			instance := vm.peek(1).AsInstance()
			name := readString()
			instance.fields.Set(vm, name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)
		case OpGetSuper:
			name := readString()
			superclass := vm.pop().AsClass()
			if !vm.bindMethod(superclass, name) {
				return InterpretRuntimeError
			}

		case OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolValue(valuesEqual(a, b)))
		case OpGreater, OpLess:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			if instruction == OpGreater {
				vm.push(BoolValue(a > b))
			} else {
				vm.push(BoolValue(a < b))
			}
		case OpAdd:
			switch {
			case vm.peek(0).IsString() && vm.peek(1).IsString():
				// Keep both operands on the stack (rooted) across the
				// allocation inside copyString, then discard them.
				b := vm.peek(0).AsString()
				a := vm.peek(1).AsString()
				result := vm.copyString(a.chars + b.chars)
				vm.pop()
				vm.pop()
				vm.push(ObjValue(result))
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(NumberValue(a + b))
			default:
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}
		case OpSubtract, OpMultiply, OpDivide:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			switch instruction {
			case OpSubtract:
				vm.push(NumberValue(a - b))
			case OpMultiply:
				vm.push(NumberValue(a * b))
			case OpDivide:
				vm.push(NumberValue(a / b))
			}
		case OpNot:
			vm.push(BoolValue(vm.pop().IsFalsey()))
		case OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(NumberValue(-vm.pop().AsNumber()))

		case OpPrint:
			fmt.Fprintln(vm.out, FormatValue(vm.pop()))

		case OpJump:
			offset := readShort()
			frame.ip += offset
		case OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case OpLoop:
			offset := readShort()
			frame.ip -= offset

		case OpCall:
			argCount := int(readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]
		case OpInvoke:
			method := readString()
			argCount := int(readByte())
			if !vm.invoke(method, argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]
		case OpSuperInvoke:
			method := readString()
			argCount := int(readByte())
			superclass := vm.pop().AsClass()
			if !vm.invokeFromClass(superclass, method, argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case OpClosure:
			function := readConstant().AsFunction()
			closure := vm.newClosure(function)
			vm.push(ObjValue(closure))
			for i := range closure.upvalues {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.upvalues[i] = frame.closure.upvalues[index]
				}
			}
		case OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return InterpretOK
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case OpClass:
			vm.push(ObjValue(vm.newClass(readString())))
		case OpInherit:
			superclassVal := vm.peek(1)
			if !superclassVal.IsClass() {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).AsClass()
			superclassVal.AsClass().methods.AddAll(vm, subclass.methods)
			vm.pop()
		case OpMethod:
			vm.defineMethod(readString())

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(instruction))
		}
	}
}

func (vm *VM) printStack() {
	fmt.Fprint(vm.errOut, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.errOut, "[ %s ]", FormatValue(vm.stack[i]))
	}
	fmt.Fprintln(vm.errOut)
}
