package internal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileListing(t *testing.T, src string) string {
	result, err := CompileUnit([]byte(src), Options{})
	require.NoError(t, err)
	return result.Program.String()
}

// listing joins instruction lines into the text form of a program.
func listing(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestCompileUnit_VoidReturn(t *testing.T) {
	got := compileListing(t, "class Main { function void f() { return; } }")
	assert.Equal(t, listing("function Main.f 0", "push constant 0", "return"), got)
}

func TestCompileUnit_FirstIf(t *testing.T) {
	got := compileListing(t, "class Main { function void f() { if (true) { return; } return; } }")
	assert.Equal(t, listing(
		"function Main.f 0",
		"push constant 0",
		"not",
		"if-goto IF_TRUE0",
		"goto IF_FALSE0",
		"label IF_TRUE0",
		"push constant 0",
		"return",
		"goto IF_END0",
		"label IF_FALSE0",
		"label IF_END0",
		"push constant 0",
		"return",
	), got)
}

func TestCompileUnit_FirstWhile(t *testing.T) {
	src := `class Main {
    function void f() {
        var int i;
        while (i < 10) { let i = i + 1; }
        return;
    }
}`
	assert.Equal(t, listing(
		"function Main.f 1",
		"label WHILE_EXP0",
		"push local 0",
		"push constant 10",
		"lt",
		"not",
		"if-goto WHILE_END0",
		"push local 0",
		"push constant 1",
		"add",
		"pop local 0",
		"goto WHILE_EXP0",
		"label WHILE_END0",
		"push constant 0",
		"return",
	), compileListing(t, src))
}

func TestCompileUnit_Calls(t *testing.T) {
	testData := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:    "class qualified",
			content: "class Main { function void f() { do Foo.bar(5); return; } }",
			expected: listing("function Main.f 0",
				"push constant 5", "call Foo.bar 1", "pop temp 0",
				"push constant 0", "return"),
		},
		{
			name:    "variable qualified",
			content: "class Main { function void f() { var Point p; do p.m(); return; } }",
			expected: listing("function Main.f 1",
				"push local 0", "call Point.m 1", "pop temp 0",
				"push constant 0", "return"),
		},
		{
			name:    "bare call in function",
			content: "class Main { function void f() { do g(1); return; } }",
			expected: listing("function Main.f 0",
				"push constant 1", "call Main.g 1", "pop temp 0",
				"push constant 0", "return"),
		},
		{
			name:    "bare call in method",
			content: "class Main { method void f() { do g(1); return; } }",
			expected: listing("function Main.f 0",
				"push argument 0", "pop pointer 0",
				"push pointer 0", "push constant 1", "call Main.g 2", "pop temp 0",
				"push constant 0", "return"),
		},
		{
			name:    "nested calls",
			content: "class Main { function int f(Point p) { return Math.max(p.x(), 3); } }",
			expected: listing("function Main.f 0",
				"push argument 0", "call Point.x 1", "push constant 3", "call Math.max 2",
				"return"),
		},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, compileListing(t, data.content), data.name)
	}
}

func TestCompileUnit_Seven(t *testing.T) {
	src := `// Computes 1 + (2 * 3) and prints the result.
class Main {
   function void main() {
      do Output.printInt(1 + (2 * 3));
      return;
   }
}
`
	assert.Equal(t, listing(
		"function Main.main 0",
		"push constant 1",
		"push constant 2",
		"push constant 3",
		"call Math.multiply 2",
		"add",
		"call Output.printInt 1",
		"pop temp 0",
		"push constant 0",
		"return",
	), compileListing(t, src))
}

func TestCompileUnit_Point(t *testing.T) {
	src := `class Point {
    field int x, y;
    static int count;

    constructor Point new(int ax, int ay) {
        let x = ax;
        let y = ay;
        let count = count + 1;
        return this;
    }

    method int getX() { return x; }

    method void setX(int v) { let x = v; return; }

    method int sum() { return getX() + y; }

    function Point origin() { return Point.new(0, 0); }
}`
	result, err := CompileUnit([]byte(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Point", result.ClassName)
	assert.Equal(t, []string{"x", "y"}, result.Fields)
	assert.Equal(t, []string{"count"}, result.Statics)
	assert.Equal(t, []string{"Point.new", "Point.getX", "Point.setX", "Point.sum", "Point.origin"},
		result.Program.Functions())
	assert.Equal(t, listing(
		"function Point.new 0",
		"push constant 2",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push argument 0",
		"pop this 0",
		"push argument 1",
		"pop this 1",
		"push static 0",
		"push constant 1",
		"add",
		"pop static 0",
		"push pointer 0",
		"return",
		"function Point.getX 0",
		"push argument 0",
		"pop pointer 0",
		"push this 0",
		"return",
		"function Point.setX 0",
		"push argument 0",
		"pop pointer 0",
		"push argument 1",
		"pop this 0",
		"push constant 0",
		"return",
		"function Point.sum 0",
		"push argument 0",
		"pop pointer 0",
		"push pointer 0",
		"call Point.getX 1",
		"push this 1",
		"add",
		"return",
		"function Point.origin 0",
		"push constant 0",
		"push constant 0",
		"call Point.new 2",
		"return",
	), result.Program.String())
}

func TestCompileUnit_Arrays(t *testing.T) {
	src := "class Main { function void f() { var Array a; var int i; let a[i] = a[1]; return; } }"
	assert.Equal(t, listing(
		"function Main.f 2",
		"push local 0",
		"push local 1",
		"add",
		"push local 0",
		"push constant 1",
		"add",
		"pop pointer 1",
		"push that 0",
		"pop temp 0",
		"pop pointer 1",
		"push temp 0",
		"pop that 0",
		"push constant 0",
		"return",
	), compileListing(t, src))
}

func TestCompileUnit_String(t *testing.T) {
	src := `class Main { function void f() { do Output.printString("Hi"); return; } }`
	assert.Equal(t, listing(
		"function Main.f 0",
		"push constant 2",
		"call String.new 1",
		"push constant 72",
		"call String.appendChar 2",
		"push constant 105",
		"call String.appendChar 2",
		"call Output.printString 1",
		"pop temp 0",
		"push constant 0",
		"return",
	), compileListing(t, src))
}

func TestCompileUnit_Operators(t *testing.T) {
	testData := []struct {
		expr     string
		expected []string
	}{
		{expr: "-x + ~true", expected: []string{
			"push argument 0", "neg", "push constant 0", "not", "not", "add"}},
		{expr: "8 / 2 - 1 = 3", expected: []string{
			"push constant 8", "push constant 2", "call Math.divide 2",
			"push constant 1", "sub", "push constant 3", "eq"}},
		{expr: "(x > 1) & (x < 5) | false", expected: []string{
			"push argument 0", "push constant 1", "gt",
			"push argument 0", "push constant 5", "lt", "and",
			"push constant 0", "or"}},
		{expr: "null", expected: []string{"push constant 0"}},
	}
	for _, data := range testData {
		src := "class Main { function int f(int x) { return " + data.expr + "; } }"
		lines := append([]string{"function Main.f 0"}, data.expected...)
		lines = append(lines, "return")
		assert.Equal(t, listing(lines...), compileListing(t, src), data.expr)
	}
}

func TestCompileUnit_LabelCounters(t *testing.T) {
	src := `class Main {
    function void f(boolean a, boolean b) {
        if (a) { if (b) { } }
        return;
    }
    function void g() {
        if (false) { } else { }
        return;
    }
}`
	assert.Equal(t, listing(
		"function Main.f 0",
		"push argument 0",
		"if-goto IF_TRUE0",
		"goto IF_FALSE0",
		"label IF_TRUE0",
		"push argument 1",
		"if-goto IF_TRUE1",
		"goto IF_FALSE1",
		"label IF_TRUE1",
		"goto IF_END1",
		"label IF_FALSE1",
		"label IF_END1",
		"goto IF_END0",
		"label IF_FALSE0",
		"label IF_END0",
		"push constant 0",
		"return",
		"function Main.g 0",
		"push constant 0",
		"if-goto IF_TRUE0",
		"goto IF_FALSE0",
		"label IF_TRUE0",
		"goto IF_END0",
		"label IF_FALSE0",
		"label IF_END0",
		"push constant 0",
		"return",
	), compileListing(t, src))
}

func TestCompileUnit_SemanticErrors(t *testing.T) {
	testData := []struct {
		content string
		message string
		near    string
	}{
		{
			content: "class A { function void f() { let y = 1; return; } }",
			message: "undefined variable: y",
			near:    "y",
		},
		{
			content: "class A { field int x; function int f() { return x; } }",
			message: "field x cannot be used in function A.f",
			near:    "x",
		},
		{
			content: "class A { function A f() { return this; } }",
			message: "this cannot be used in function A.f",
			near:    "this",
		},
		{
			content: "class A { function void f(int a) { var int a; return; } }",
			message: "duplicate local name: a",
			near:    "a",
		},
		{
			content: "class A { field int x; static int x; }",
			message: "duplicate static name: x",
			near:    "x",
		},
		{
			content: "class A { field Point p; function void f() { do p.m(); return; } }",
			message: "field p cannot be used in function A.f",
			near:    "p",
		},
	}
	for _, data := range testData {
		result, err := CompileUnit([]byte(data.content), Options{})
		assert.Nil(t, result, data.content)
		var semErr *SemanticError
		require.True(t, errors.As(err, &semErr), "%q: %v", data.content, err)
		assert.Contains(t, semErr.Msg, data.message, data.content)
		assert.Equal(t, data.near, semErr.Near, data.content)
		assert.Equal(t, 1, semErr.Pos.Line, data.content)
	}
}

func TestCompileUnit_FailureReturnsNoProgram(t *testing.T) {
	result, err := CompileUnit([]byte("class A { function void f() { return 99999; } }"), Options{})
	assert.Nil(t, result)
	var lexErr *LexicalError
	assert.ErrorAs(t, err, &lexErr)

	src := "class A { function void f() { do Output.printString(\"\U0001F600\"); return; } }"
	result, err = CompileUnit([]byte(src), Options{})
	assert.Nil(t, result)
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Msg, "character not allowed in string constant")
}

func TestCompileUnit_SingleOperator(t *testing.T) {
	src := "class A { function int f() { return 1 + 2 * 3; } }"
	_, err := CompileUnit([]byte(src), Options{SingleOperator: true})
	var syntaxErr *SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)

	got := compileListing(t, src)
	assert.Equal(t, listing(
		"function A.f 0",
		"push constant 1",
		"push constant 2",
		"add",
		"push constant 3",
		"call Math.multiply 2",
		"return",
	), got)
}

func TestCompileUnit_Trace(t *testing.T) {
	result, err := CompileUnit([]byte("class A { }"), Options{})
	require.NoError(t, err)
	assert.Nil(t, result.Trace)
	assert.Empty(t, result.Program)

	src := "class A { function boolean f() { return 1 < 2; } }"
	result, err = CompileUnit([]byte(src), Options{Trace: true})
	require.NoError(t, err)
	expected := `<class>
  <keyword> class </keyword>
  <identifier> A </identifier>
  <symbol> { </symbol>
  <subroutineDec>
    <keyword> function </keyword>
    <keyword> boolean </keyword>
    <identifier> f </identifier>
    <symbol> ( </symbol>
    <parameterList>
    </parameterList>
    <symbol> ) </symbol>
    <subroutineBody>
      <symbol> { </symbol>
      <statements>
        <returnStatement>
          <keyword> return </keyword>
          <expression>
            <term>
              <integerConstant> 1 </integerConstant>
            </term>
            <symbol> &lt; </symbol>
            <term>
              <integerConstant> 2 </integerConstant>
            </term>
          </expression>
          <symbol> ; </symbol>
        </returnStatement>
      </statements>
      <symbol> } </symbol>
    </subroutineBody>
  </subroutineDec>
  <symbol> } </symbol>
</class>
`
	assert.Equal(t, expected, string(result.Trace))
}

func TestCompileUnit_TraceAnnotatesVariables(t *testing.T) {
	src := `class A {
    field int x;
    method void set(int v) {
        var int t;
        let t = v;
        let x = t;
        return;
    }
}`
	result, err := CompileUnit([]byte(src), Options{Trace: true})
	require.NoError(t, err)
	trace := string(result.Trace)
	for _, line := range []string{
		`<identifier> A </identifier>`,
		`<identifier> set </identifier>`,
		`<identifier category="field" index="0" usage="declared"> x </identifier>`,
		`<identifier category="argument" index="1" usage="declared"> v </identifier>`,
		`<identifier category="local" index="0" usage="declared"> t </identifier>`,
		`<identifier category="local" index="0" usage="used"> t </identifier>`,
		`<identifier category="argument" index="1" usage="used"> v </identifier>`,
		`<identifier category="field" index="0" usage="used"> x </identifier>`,
	} {
		assert.Contains(t, trace, line)
	}
	assert.True(t, strings.HasPrefix(string(result.Tokens), "<tokens>\n<keyword> class </keyword>\n<identifier> A </identifier>\n"))
	assert.True(t, strings.HasSuffix(string(result.Tokens), "<symbol> } </symbol>\n</tokens>\n"))
}
