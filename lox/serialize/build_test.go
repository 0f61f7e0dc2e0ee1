package serialize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloxgo/cloxgo/lox"
)

func TestBuildFromCompiledProgram(t *testing.T) {
	var errOut bytes.Buffer
	vm := lox.NewVM(lox.DefaultConfig(), nil, &errOut)

	fn, artifacts, ok := lox.Compile(vm, `
		fun add(a, b) {
			return a + b;
		}
		print add(1, 2);
	`, &errOut)
	require.True(t, ok, errOut.String())
	_ = fn

	data := Build(vm, artifacts)
	require.Len(t, data.Contexts, 2)

	names := map[string]bool{}
	for _, ctx := range data.Contexts {
		names[ctx.ContextName] = true
		assert.NotEmpty(t, ctx.InstructionVals)
	}
	assert.True(t, names["add"])
	assert.True(t, names[""])

	encoded := Encode(data)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(data.Contexts), len(decoded.Contexts))
}
