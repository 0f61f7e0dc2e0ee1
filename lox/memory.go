package lox

// gcState holds every piece of the tracing collector's mutable state.
type gcState struct {
	bytesAllocated int64
	nextGC         int64
	grayStack      []object // append-growable; growth never counts toward
	// bytesAllocated — if it did, resizing the worklist mid-collection
	// could recursively trigger another collection.

	stressGC       bool
	logGC          bool
	heapGrowFactor int
}

func newGCState(cfg Config) *gcState {
	factor := cfg.GCHeapGrowFactor
	if factor <= 0 {
		factor = 2
	}
	return &gcState{
		nextGC:         1024 * 1024,
		stressGC:       cfg.GCStress,
		logGC:          cfg.GCLog,
		heapGrowFactor: factor,
	}
}

// objSizeEstimate approximates the heap footprint of o for GC accounting.
// It doesn't need to be exact, only large enough that bytesAllocated grows
// monotonically with real allocation.
func objSizeEstimate(o object) int {
	switch ov := o.(type) {
	case *ObjString:
		return 32 + len(ov.chars)
	case *ObjFunction:
		return 64
	case *ObjNative:
		return 32
	case *ObjClosure:
		return 32 + 8*len(ov.upvalues)
	case *ObjUpvalue:
		return 32
	case *ObjClass:
		return 32
	case *ObjInstance:
		return 32
	case *ObjBoundMethod:
		return 32
	default:
		return 16
	}
}

// trackAlloc is the single chokepoint every heap-object allocation and
// Table growth routes through, mirroring clox's reallocate(). Chunk arrays
// and the gray worklist grow without it. A positive delta may
// trigger a collection, synchronously, before returning.
func (vm *VM) trackAlloc(delta int) {
	vm.gc.bytesAllocated += int64(delta)
	if delta > 0 {
		if vm.gc.stressGC {
			vm.collectGarbage()
			return
		}
		if vm.gc.bytesAllocated > vm.gc.nextGC {
			vm.collectGarbage()
		}
	}
}

// allocateObject links a freshly constructed object into the heap list and
// accounts for its size. The GC-triggering accounting happens before the
// link so a collection provoked by this very allocation can't yet observe
// (and free) the object it's in the middle of creating.
func allocateObject[T object](vm *VM, o T) T {
	size := objSizeEstimate(o)
	vm.trackAlloc(size)
	o.header().next = vm.objects
	vm.objects = o
	return o
}

// markValue marks v's heap payload, if it has one.
func (vm *VM) markValue(v Value) {
	if v.IsObj() {
		vm.markObject(v.obj)
	}
}

// markObject marks o and pushes it onto the gray worklist for later
// tracing. Marking an already-marked object, or nil, is a no-op.
func (vm *VM) markObject(o object) {
	if o == nil {
		return
	}
	h := o.header()
	if h.marked {
		return
	}
	h.marked = true
	if vm.gc.logGC {
		vm.traceLog("%p mark %s\n", o, FormatValue(ObjValue(o)))
	}
	vm.gc.grayStack = append(vm.gc.grayStack, o)
}

func (vm *VM) markArray(values []Value) {
	for _, v := range values {
		vm.markValue(v)
	}
}

// markRoots marks every GC root: the value stack, every active call
// frame's closure, every open upvalue, globals, the compiler's in-flight
// Function chain and the interned "init" string.
func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.nextOpen {
		vm.markObject(uv)
	}
	vm.globals.Mark(vm)
	if vm.compilerRootsFn != nil {
		vm.compilerRootsFn(vm)
	}
	vm.markObject(vm.initString)
}

// blackenObject marks every reference o holds, fully scanning it (gray ->
// black). Each case is a terminating branch — no fallthrough.
func (vm *VM) blackenObject(o object) {
	if vm.gc.logGC {
		vm.traceLog("%p blacken %s\n", o, FormatValue(ObjValue(o)))
	}
	switch ov := o.(type) {
	case *ObjClosure:
		vm.markObject(ov.function)
		for _, uv := range ov.upvalues {
			vm.markObject(uv)
		}
	case *ObjFunction:
		vm.markObject(ov.name)
		vm.markArray(ov.chunk.Constants)
	case *ObjUpvalue:
		vm.markValue(ov.closed)
	case *ObjClass:
		vm.markObject(ov.name)
		ov.methods.Mark(vm)
	case *ObjInstance:
		vm.markObject(ov.class)
		ov.fields.Mark(vm)
	case *ObjBoundMethod:
		vm.markValue(ov.receiver)
		vm.markObject(ov.method)
	case *ObjString, *ObjNative:
		// leaves: no outgoing references
	}
}

func (vm *VM) traceReferences() {
	for len(vm.gc.grayStack) > 0 {
		n := len(vm.gc.grayStack) - 1
		o := vm.gc.grayStack[n]
		vm.gc.grayStack = vm.gc.grayStack[:n]
		vm.blackenObject(o)
	}
}

// sweep walks the heap list, freeing every object whose mark bit is still
// clear and clearing the mark bit of every survivor.
func (vm *VM) sweep() {
	var previous object
	o := vm.objects
	for o != nil {
		h := o.header()
		if h.marked {
			h.marked = false
			previous = o
			o = h.next
			continue
		}
		unreached := o
		o = h.next
		if previous != nil {
			previous.header().next = o
		} else {
			vm.objects = o
		}
		vm.gc.bytesAllocated -= int64(objSizeEstimate(unreached))
	}
}

// collectGarbage runs one full mark-and-sweep cycle.
func (vm *VM) collectGarbage() {
	if vm.gc.logGC {
		vm.traceLog("-- gc begin\n")
	}
	before := vm.gc.bytesAllocated

	vm.markRoots()
	vm.traceReferences()
	vm.strings.RemoveWhite()
	vm.sweep()

	vm.gc.nextGC = vm.gc.bytesAllocated * int64(vm.gc.heapGrowFactor)

	if vm.gc.logGC {
		vm.traceLog("-- gc end\n")
		vm.traceLog("   collected %d bytes (from %d to %d) next at %d\n",
			before-vm.gc.bytesAllocated, before, vm.gc.bytesAllocated, vm.gc.nextGC)
	}
}
