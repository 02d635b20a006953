package tm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tiny "go.tinylang.dev/pkg"
)

func assemble(t *testing.T, text string) (map[int]Instruction, *tiny.Sink) {
	t.Helper()
	sink := tiny.NewSink()
	toks := NewLexer(text, sink).Run()
	instrs := NewAssembler(toks, sink).Assemble()
	return instrs, sink
}

func TestAssemblerParsesParenthesizedForm(t *testing.T) {
	instrs, sink := assemble(t, "1:   LD 6,0(0)\n2:   ST 0,0(0)\n3:   HALT 0,0,0\n")
	require.False(t, sink.VMError())

	require.Contains(t, instrs, 1)
	ld := instrs[1]
	assert.Equal(t, ValueLd, ld.Opcode)
	assert.Equal(t, 6, ld.P1)
	assert.Equal(t, 0, ld.P2)
	assert.Equal(t, 0, ld.P3)
}

func TestAssemblerParsesCommaForm(t *testing.T) {
	instrs, sink := assemble(t, "1:   LD 6,0,0\n")
	require.False(t, sink.VMError())

	ld := instrs[1]
	assert.Equal(t, ValueLd, ld.Opcode)
	assert.Equal(t, 0, ld.P3)
}

func TestAssemblerParsesSignedOffset(t *testing.T) {
	instrs, sink := assemble(t, "3:   JEQ 0,-2(7)\n")
	require.False(t, sink.VMError())

	jeq := instrs[3]
	assert.Equal(t, -2, jeq.P2)
}

func TestAssemblerMalformedLineIsVMSyntaxError(t *testing.T) {
	_, sink := assemble(t, "1:   LD 6 0(0)\n")
	assert.True(t, sink.VMError())
}

func TestAssemblerIgnoresComments(t *testing.T) {
	instrs, sink := assemble(t, "* prelude\n1:   HALT 0,0,0\n* trailer\n")
	require.False(t, sink.VMError())
	require.Contains(t, instrs, 1)
	assert.Equal(t, ValueHalt, instrs[1].Opcode)
}
