// Package serialize captures a compiled cloxgo program as a VMData record
// and encodes/decodes it in a hand-rolled protobuf wire format, so the
// artifact can be inspected by tooling that never links against the VM.
package serialize

// ValueKind discriminates the payload a ValueType carries.
type ValueKind uint8

const (
	KindBool ValueKind = iota
	KindNumber
	KindStringAddress
	KindFunctionAddress
)

// ValueType is the wire form of a Lox Value: exactly one field is
// meaningful, selected by Kind.
type ValueType struct {
	Kind            ValueKind
	BoolVal         bool
	NumVal          float64
	StringAddress   uint64
	FunctionAddress uint64
}

// InstructionEntry is one classified byte of a chunk: either an opcode or
// an operand byte (an "address or constant" in the original's terms).
type InstructionEntry struct {
	IsOpcode          bool
	Opcode            uint32
	AddressOrConstant uint64
}

// InstructionVal pairs a byte offset within a Context's chunk with its
// classification.
type InstructionVal struct {
	Address uint64
	Entry   InstructionEntry
}

// ConstantVal pairs a constant pool index with its serialized value.
type ConstantVal struct {
	Index int32
	Value ValueType
}

// UpvalueDesc is the wire form of a compiler upvalue descriptor.
type UpvalueDesc struct {
	Index   uint32
	IsLocal bool
}

// Context is one compiled Function: its bytecode (as classified bytes),
// its constant pool, and its upvalue descriptors.
type Context struct {
	FunctionAddress         uint64
	ContextName             string
	Arity                   uint32
	UpvalueCount            uint32
	FirstInstructionAddress uint64
	InstructionVals         []InstructionVal
	ConstantVals            []ConstantVal
	Upvalues                []UpvalueDesc
}

// AddressAndHash is one entry of the interned-string dump.
type AddressAndHash struct {
	Key     string
	Address uint64
	Hash    uint32
}

// VMData is the full serialized artifact: every compiled Function plus the
// string intern table, snapshotted once after compile and before run.
type VMData struct {
	BuildID            string
	Contexts           []Context
	StringsAtAddresses []AddressAndHash
}
