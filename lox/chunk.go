package lox

// OpCode identifies a bytecode instruction. Operands, when present, follow
// the opcode byte in the code stream as described next to each constant.
type OpCode byte

const (
	OpConstant      OpCode = iota // idx:u8
	OpNil                         //
	OpTrue                        //
	OpFalse                       //
	OpPop                         //
	OpGetLocal                    // slot:u8
	OpSetLocal                    // slot:u8
	OpGetGlobal                   // name_idx:u8
	OpSetGlobal                   // name_idx:u8
	OpDefineGlobal                // name_idx:u8
	OpGetUpvalue                  // idx:u8
	OpSetUpvalue                  // idx:u8
	OpGetProperty                 // name_idx:u8
	OpSetProperty                 // name_idx:u8
	OpGetSuper                    // name_idx:u8
	OpEqual                       //
	OpGreater                     //
	OpLess                        //
	OpAdd                         //
	OpSubtract                    //
	OpMultiply                    //
	OpDivide                      //
	OpNot                         //
	OpNegate                      //
	OpPrint                       //
	OpJump                        // offset:u16 (forward, big-endian)
	OpJumpIfFalse                 // offset:u16 (forward, big-endian)
	OpLoop                        // offset:u16 (backward, big-endian)
	OpCall                        // argc:u8
	OpInvoke                      // name_idx:u8, argc:u8
	OpSuperInvoke                 // name_idx:u8, argc:u8
	OpClosure                     // fn_idx:u8, (is_local:u8, index:u8) * upvalueCount
	OpCloseUpvalue                //
	OpReturn                      //
	OpClass                       // name_idx:u8
	OpInherit                     //
	OpMethod                      // name_idx:u8
)

var opcodeNames = map[OpCode]string{
	OpConstant:      "OP_CONSTANT",
	OpNil:           "OP_NIL",
	OpTrue:          "OP_TRUE",
	OpFalse:         "OP_FALSE",
	OpPop:           "OP_POP",
	OpGetLocal:      "OP_GET_LOCAL",
	OpSetLocal:      "OP_SET_LOCAL",
	OpGetGlobal:     "OP_GET_GLOBAL",
	OpSetGlobal:     "OP_SET_GLOBAL",
	OpDefineGlobal:  "OP_DEFINE_GLOBAL",
	OpGetUpvalue:    "OP_GET_UPVALUE",
	OpSetUpvalue:    "OP_SET_UPVALUE",
	OpGetProperty:   "OP_GET_PROPERTY",
	OpSetProperty:   "OP_SET_PROPERTY",
	OpGetSuper:      "OP_GET_SUPER",
	OpEqual:         "OP_EQUAL",
	OpGreater:       "OP_GREATER",
	OpLess:          "OP_LESS",
	OpAdd:           "OP_ADD",
	OpSubtract:      "OP_SUBTRACT",
	OpMultiply:      "OP_MULTIPLY",
	OpDivide:        "OP_DIVIDE",
	OpNot:           "OP_NOT",
	OpNegate:        "OP_NEGATE",
	OpPrint:         "OP_PRINT",
	OpJump:          "OP_JUMP",
	OpJumpIfFalse:   "OP_JUMP_IF_FALSE",
	OpLoop:          "OP_LOOP",
	OpCall:          "OP_CALL",
	OpInvoke:        "OP_INVOKE",
	OpSuperInvoke:   "OP_SUPER_INVOKE",
	OpClosure:       "OP_CLOSURE",
	OpCloseUpvalue:  "OP_CLOSE_UPVALUE",
	OpReturn:        "OP_RETURN",
	OpClass:         "OP_CLASS",
	OpInherit:       "OP_INHERIT",
	OpMethod:        "OP_METHOD",
}

func (op OpCode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "OP_UNKNOWN"
}

// Chunk is the bytecode, source line table and constant pool for a single
// compiled Function. lines[i] is the source line of code[i]; no run-length
// compression is performed.
type Chunk struct {
	Code      []byte
	Lines     []int32
	Constants []Value
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one raw byte (an opcode or an operand byte) to the chunk,
// recording line as its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, int32(line))
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index. v is
// pushed onto the VM stack before the backing array grows and popped
// immediately after, so it stays rooted across the append. The append
// itself is not counted by trackAlloc and does not start a collection.
func (c *Chunk) AddConstant(vm *VM, v Value) int {
	vm.push(v)
	c.Constants = append(c.Constants, v)
	vm.pop()
	return len(c.Constants) - 1
}
