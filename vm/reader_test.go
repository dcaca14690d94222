package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testData := []struct {
		line     string
		expected Instruction
	}{
		{"push argument 1", Push(ArgumentSegment, 1)},
		{"PUSH LOCAL 2", Push(LocalSegment, 2)},
		{"  pop static 3  ", Pop(StaticSegment, 3)},
		{"pop that 0 // store", Pop(ThatSegment, 0)},
		{"add", Arithmetic(AddCommand)},
		{"neg//negate", Arithmetic(NegCommand)},
		{"label LOOP_START", Label("LOOP_START")},
		{"if-goto Main.loop$1", IfGoto("Main.loop$1")},
		{"goto END", Goto("END")},
		{"function Sys.init 0", Function("Sys.init", 0)},
		{"call Output.printInt 1", Call("Output.printInt", 1)},
		{"return", Return()},
	}
	for _, data := range testData {
		ins, ok, err := ParseLine(data.line)
		require.NoError(t, err, data.line)
		assert.True(t, ok, data.line)
		assert.Equal(t, data.expected, ins, data.line)
	}
}

func TestParseLine_SkipsBlankAndComment(t *testing.T) {
	for _, line := range []string{"", "   ", "// just a comment", "\t//x"} {
		_, ok, err := ParseLine(line)
		assert.NoError(t, err)
		assert.False(t, ok, line)
	}
}

func TestParseLine_Errors(t *testing.T) {
	lines := []string{
		"jump here",
		"push",
		"push heap 1",
		"push local",
		"push local -1",
		"push local x",
		"pop constant 1",
		"label 1abc",
		"call f",
		"add 1",
		"local 1",
	}
	for _, line := range lines {
		_, _, err := ParseLine(line)
		var syntaxErr *SyntaxError
		assert.True(t, errors.As(err, &syntaxErr), line)
	}
}

func TestReadProgram(t *testing.T) {
	src := `// Main.vm
function Main.main 1
push constant 5

pop local 0
push constant 0
return`
	program, err := ReadProgram(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, Program{
		Function("Main.main", 1),
		Push(ConstantSegment, 5),
		Pop(LocalSegment, 0),
		Push(ConstantSegment, 0),
		Return(),
	}, program)
}

func TestReadProgram_ReportsLine(t *testing.T) {
	_, err := ReadProgram(strings.NewReader("push constant 1\npush constant 2\nfoo\n"))
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 3, syntaxErr.Line)
	assert.Equal(t, "foo", syntaxErr.Near)
}

func TestReadProgram_RoundTripsFormattedText(t *testing.T) {
	p := Program{
		Function("Point.new", 0),
		Push(ConstantSegment, 2),
		Call("Memory.alloc", 1),
		Pop(PointerSegment, 0),
		Push(PointerSegment, 0),
		Return(),
	}
	parsed, err := ReadProgram(strings.NewReader(p.String()))
	require.NoError(t, err)
	assert.Nil(t, Compare(parsed, p))
}
