package serialize

import (
	"github.com/google/uuid"

	"github.com/cloxgo/cloxgo/lox"
)

// idTable assigns each distinct Function/String object a stable, dense id
// in first-seen order. The original C++ serializer used raw heap
// addresses as handles; Go gives no comparable stable address (the
// runtime may move objects), so synthetic sequential ids stand in. Given
// the same source and the same single-pass compile order, the ids are
// reproducible run to run. The encoded bytes are not: Build stamps every
// VMData with a fresh random BuildID.
type idTable struct {
	ids  map[any]uint64
	next uint64
}

func newIDTable() *idTable {
	return &idTable{ids: map[any]uint64{}, next: 1}
}

func (t *idTable) id(o any) uint64 {
	if id, ok := t.ids[o]; ok {
		return id
	}
	id := t.next
	t.next++
	t.ids[o] = id
	return id
}

// Build converts the result of a single Compile call into a VMData
// snapshot: one Context per Function in creation order, plus the VM's
// string intern table. It must run after compile and before the program
// executes, since later mutation of globals or GC doesn't affect this
// snapshot either way but the original's contract ties it to that point.
func Build(vm *lox.VM, artifacts *lox.CompileArtifacts) *VMData {
	ids := newIDTable()
	data := &VMData{BuildID: uuid.NewString()}

	for _, fn := range artifacts.Functions {
		data.Contexts = append(data.Contexts, buildContext(ids, artifacts, fn))
	}

	vm.Strings().Each(func(key *lox.ObjString, _ lox.Value) {
		data.StringsAtAddresses = append(data.StringsAtAddresses, AddressAndHash{
			Key:     key.Chars(),
			Address: ids.id(key),
			Hash:    key.Hash(),
		})
	})

	return data
}

func buildContext(ids *idTable, artifacts *lox.CompileArtifacts, fn *lox.ObjFunction) Context {
	operandAddrs := artifacts.OperandAddrs[fn]
	chunk := fn.Chunk()

	ctx := Context{
		FunctionAddress: ids.id(fn),
		ContextName:     functionName(fn),
		Arity:           uint32(fn.Arity()),
		UpvalueCount:    uint32(fn.UpvalueCount()),
	}

	for i, b := range chunk.Code {
		addr := uint64(i)
		if i == 0 {
			ctx.FirstInstructionAddress = addr
		}
		entry := InstructionEntry{IsOpcode: true, Opcode: uint32(b)}
		if operandAddrs[i] {
			entry = InstructionEntry{IsOpcode: false, AddressOrConstant: uint64(b)}
		}
		ctx.InstructionVals = append(ctx.InstructionVals, InstructionVal{Address: addr, Entry: entry})
	}

	for i, v := range chunk.Constants {
		ctx.ConstantVals = append(ctx.ConstantVals, ConstantVal{
			Index: int32(i),
			Value: buildValueType(ids, v),
		})
	}

	for _, uv := range artifacts.Upvalues[fn] {
		ctx.Upvalues = append(ctx.Upvalues, UpvalueDesc{Index: uint32(uv.Index), IsLocal: uv.IsLocal})
	}

	return ctx
}

func buildValueType(ids *idTable, v lox.Value) ValueType {
	switch {
	case v.IsBool():
		return ValueType{Kind: KindBool, BoolVal: v.AsBool()}
	case v.IsNumber():
		return ValueType{Kind: KindNumber, NumVal: v.AsNumber()}
	case v.IsString():
		return ValueType{Kind: KindStringAddress, StringAddress: ids.id(v.AsString())}
	case v.IsFunction():
		return ValueType{Kind: KindFunctionAddress, FunctionAddress: ids.id(v.AsFunction())}
	default:
		return ValueType{}
	}
}

func functionName(fn *lox.ObjFunction) string {
	if fn.Name() == nil {
		return ""
	}
	return fn.Name().Chars()
}
