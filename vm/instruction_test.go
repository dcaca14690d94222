package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction_String(t *testing.T) {
	testData := []struct {
		ins      Instruction
		expected string
	}{
		{Push(ConstantSegment, 7), "push constant 7"},
		{Pop(TempSegment, 0), "pop temp 0"},
		{Push(PointerSegment, 1), "push pointer 1"},
		{Arithmetic(AddCommand), "add"},
		{Arithmetic(NotCommand), "not"},
		{Label("WHILE_EXP0"), "label WHILE_EXP0"},
		{Goto("IF_END2"), "goto IF_END2"},
		{IfGoto("IF_TRUE0"), "if-goto IF_TRUE0"},
		{Function("Main.main", 3), "function Main.main 3"},
		{Call("Math.multiply", 2), "call Math.multiply 2"},
		{Return(), "return"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, data.ins.String())
	}
}

func TestCommand_IsArithmetic(t *testing.T) {
	for c := AddCommand; c <= NotCommand; c++ {
		assert.True(t, c.IsArithmetic(), c.String())
	}
	assert.False(t, PushCommand.IsArithmetic())
	assert.False(t, LabelCommand.IsArithmetic())
	assert.False(t, ReturnCommand.IsArithmetic())
}

func TestProgram_String(t *testing.T) {
	p := Program{Function("Main.main", 0), Push(ConstantSegment, 0), Return()}
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", p.String())
	assert.Equal(t, "", Program(nil).String())

	buf := &bytes.Buffer{}
	n, err := p.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, p.String(), buf.String())
}

func TestProgram_Functions(t *testing.T) {
	p := Program{
		Function("A.new", 0), Return(),
		Function("A.get", 1), Return(),
	}
	assert.Equal(t, []string{"A.new", "A.get"}, p.Functions())
}
