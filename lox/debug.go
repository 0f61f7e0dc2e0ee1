package lox

import (
	"fmt"
	"io"

	"github.com/cloxgo/cloxgo/internal/ascii"
)

// DisassembleChunk prints every instruction in chunk to w, labelled name.
// This backs the `cloxgo build --disassemble` path; `--trace` calls
// DisassembleInstruction directly for each executed instruction.
func DisassembleChunk(w io.Writer, chunk *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction prints the single instruction at offset and
// returns the offset of the next one.
func DisassembleInstruction(w io.Writer, chunk *Chunk, offset int) int {
	theme := ascii.DefaultDisasmTheme

	fmt.Fprint(w, ascii.Sprintf(theme.Address, fmt.Sprintf("%04d ", offset)))
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprint(w, ascii.Sprintf(theme.LineNo, fmt.Sprintf("%4d ", chunk.Lines[offset])))
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case OpConstant:
		return constantInstruction(w, theme, op, chunk, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(w, theme, op, chunk, offset)
	case OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpGetProperty, OpSetProperty,
		OpGetSuper, OpClass, OpMethod:
		return constantInstruction(w, theme, op, chunk, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(w, theme, op, chunk, offset, 1)
	case OpLoop:
		return jumpInstruction(w, theme, op, chunk, offset, -1)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(w, theme, op, chunk, offset)
	case OpClosure:
		return closureInstruction(w, theme, chunk, offset)
	default:
		return simpleInstruction(w, theme, op, offset)
	}
}

func mnemonic(theme ascii.DisasmTheme, op OpCode) string {
	return ascii.Sprintf(theme.Mnemonic, "%-16s", op.String())
}

func simpleInstruction(w io.Writer, theme ascii.DisasmTheme, op OpCode, offset int) int {
	fmt.Fprintf(w, "%s\n", mnemonic(theme, op))
	return offset + 1
}

func byteInstruction(w io.Writer, theme ascii.DisasmTheme, op OpCode, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%s %s\n", mnemonic(theme, op), ascii.Sprintf(theme.Operand, "%4d", slot))
	return offset + 2
}

func jumpInstruction(w io.Writer, theme ascii.DisasmTheme, op OpCode, chunk *Chunk, offset, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%s %s -> %s\n",
		mnemonic(theme, op),
		ascii.Sprintf(theme.Operand, "%4d", offset),
		ascii.Sprintf(theme.Operand, "%d", target))
	return offset + 3
}

func constantInstruction(w io.Writer, theme ascii.DisasmTheme, op OpCode, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	value := chunk.Constants[idx]
	fmt.Fprintf(w, "%s %s '%s'\n",
		mnemonic(theme, op),
		ascii.Sprintf(theme.Operand, "%4d", idx),
		ascii.Sprintf(theme.Constant, "%s", FormatValue(value)))
	return offset + 2
}

func invokeInstruction(w io.Writer, theme ascii.DisasmTheme, op OpCode, chunk *Chunk, offset int) int {
	nameIdx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	name := chunk.Constants[nameIdx]
	fmt.Fprintf(w, "%s (%s args) %s '%s'\n",
		mnemonic(theme, op),
		ascii.Sprintf(theme.Operand, "%d", argCount),
		ascii.Sprintf(theme.Operand, "%4d", nameIdx),
		ascii.Sprintf(theme.Constant, "%s", FormatValue(name)))
	return offset + 3
}

func closureInstruction(w io.Writer, theme ascii.DisasmTheme, chunk *Chunk, offset int) int {
	offset++
	constIdx := chunk.Code[offset]
	offset++
	fn := chunk.Constants[constIdx].AsFunction()
	fmt.Fprintf(w, "%s %s '%s'\n",
		mnemonic(theme, OpClosure),
		ascii.Sprintf(theme.Operand, "%4d", constIdx),
		ascii.Sprintf(theme.Constant, "%s", FormatValue(ObjValue(fn))))

	for i := 0; i < int(fn.upvalueCount); i++ {
		isLocal := chunk.Code[offset]
		offset++
		index := chunk.Code[offset]
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
