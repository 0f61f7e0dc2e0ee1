package lox

// objType discriminates the heap object variants. Dispatch on these is
// always a type switch over the concrete *Obj* pointer types below, never
// virtual methods per variant — the variants are a closed sum type.
type objType uint8

const (
	objTypeString objType = iota
	objTypeFunction
	objTypeNative
	objTypeClosure
	objTypeUpvalue
	objTypeClass
	objTypeInstance
	objTypeBoundMethod
)

// object is the common interface every heap value satisfies. header()
// exposes the mark-and-sweep bookkeeping every variant carries.
type object interface {
	objType() objType
	header() *objHeader
}

// objHeader is embedded in every heap object. next threads every live
// object through a singly linked list rooted at vm.objects so sweep can
// walk the whole heap without a separate object table.
type objHeader struct {
	marked bool
	next   object
}

func (h *objHeader) header() *objHeader { return h }

// ObjString is an immutable, interned sequence of bytes.
type ObjString struct {
	objHeader
	chars string
	hash  uint32
}

func (*ObjString) objType() objType { return objTypeString }

// Chars returns the string's raw bytes, for consumers outside the package
// (the serializer, native functions) that need the content without a
// Value wrapper.
func (s *ObjString) Chars() string { return s.chars }

// Hash returns the interning hash, used by the serializer's string table
// dump.
func (s *ObjString) Hash() uint32 { return s.hash }

// fnvHash32 is the FNV-1a hash used to key the intern table, matching the
// hash clox computes over ObjString bytes.
func fnvHash32(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// ObjFunction is a compiled unit: a chunk of bytecode plus arity and
// upvalue-count metadata the VM needs to build a Closure around it.
type ObjFunction struct {
	objHeader
	arity        uint16
	upvalueCount uint16
	chunk        *Chunk
	name         *ObjString
}

func (*ObjFunction) objType() objType { return objTypeFunction }

func newFunctionObj() *ObjFunction {
	return &ObjFunction{chunk: NewChunk()}
}

// Chunk, Arity, UpvalueCount and Name expose an ObjFunction's shape to the
// serializer, which runs in its own package and must classify every byte
// of the compiled chunk without reaching into unexported fields.
func (f *ObjFunction) Chunk() *Chunk          { return f.chunk }
func (f *ObjFunction) Arity() uint16          { return f.arity }
func (f *ObjFunction) UpvalueCount() uint16   { return f.upvalueCount }
func (f *ObjFunction) Name() *ObjString       { return f.name }

// NativeFn is a host-provided callable registered into the globals table.
type NativeFn func(argCount int, args []Value) Value

// ObjNative wraps a host function so it can flow through Value like any
// other callable.
type ObjNative struct {
	objHeader
	fn   NativeFn
	name string
}

func (*ObjNative) objType() objType { return objTypeNative }

// ObjUpvalue is the indirection a Closure uses to reach a variable captured
// from an enclosing frame. It is "open" while location points into the VM
// stack and "closed" once location points at the embedded closed field.
type ObjUpvalue struct {
	objHeader
	location *Value
	closed   Value
	slot     int         // stack index location points at while open; orders the open list
	nextOpen *ObjUpvalue // secondary linkage: the sorted open-upvalue list
}

func (*ObjUpvalue) objType() objType { return objTypeUpvalue }

// ObjClosure pairs a compiled Function with the upvalues it captured at
// creation time. upvalueCount always equals function.upvalueCount.
type ObjClosure struct {
	objHeader
	function *ObjFunction
	upvalues []*ObjUpvalue
}

func (*ObjClosure) objType() objType { return objTypeClosure }

func newClosure(function *ObjFunction) *ObjClosure {
	return &ObjClosure{
		function: function,
		upvalues: make([]*ObjUpvalue, function.upvalueCount),
	}
}

// ObjClass is a single-inheritance class: a name and a flat method table
// (inherited methods are copied in at INHERIT time, so lookup is always a
// single table hit with no dynamic MRO walk).
type ObjClass struct {
	objHeader
	name    *ObjString
	methods *Table
}

func (*ObjClass) objType() objType { return objTypeClass }

func newClass(name *ObjString) *ObjClass {
	return &ObjClass{name: name, methods: NewTable()}
}

// ObjInstance is a live instance of a class with its own field table.
type ObjInstance struct {
	objHeader
	class  *ObjClass
	fields *Table
}

func (*ObjInstance) objType() objType { return objTypeInstance }

func newInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{class: class, fields: NewTable()}
}

// ObjBoundMethod pairs a receiver with one of its class's methods so it can
// be called on its own, detached from property lookup.
type ObjBoundMethod struct {
	objHeader
	receiver Value
	method   *ObjClosure
}

func (*ObjBoundMethod) objType() objType { return objTypeBoundMethod }
