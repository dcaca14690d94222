package internal

import "strconv"

// Jack source is made of five token classes:
// * Keyword: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Integer constant: 0..32767, at most five digits.
// * String constant: "xxx", no line breaks inside.
// * Identifier: letters, digits, underscore, not starting with a digit.

type TokenType int

const (
	KeywordToken TokenType = iota
	SymbolToken
	IntegerConstantToken
	StringConstantToken
	IdentifierToken
)

// String returns the element name the parse-tree trace uses for the class.
func (tp TokenType) String() string {
	switch tp {
	case KeywordToken:
		return "keyword"
	case SymbolToken:
		return "symbol"
	case IntegerConstantToken:
		return "integerConstant"
	case StringConstantToken:
		return "stringConstant"
	case IdentifierToken:
		return "identifier"
	}
	return "token(" + strconv.Itoa(int(tp)) + ")"
}

type Keyword int

const (
	ClassKW       Keyword = iota // class
	ConstructorKW                // constructor
	FunctionKW                   // function
	MethodKW                     // method
	FieldKW                      // field
	StaticKW                     // static
	VarKW                        // var
	IntKW                        // int
	CharKW                       // char
	BooleanKW                    // boolean
	VoidKW                       // void
	TrueKW                       // true
	FalseKW                      // false
	NullKW                       // null
	ThisKW                       // this
	LetKW                        // let
	DoKW                         // do
	IfKW                         // if
	ElseKW                       // else
	WhileKW                      // while
	ReturnKW                     // return
)

// keyWordMap is the mapping from reserved word to the corresponding Keyword.
var keyWordMap = map[string]Keyword{
	"class":       ClassKW,
	"constructor": ConstructorKW,
	"function":    FunctionKW,
	"method":      MethodKW,
	"field":       FieldKW,
	"static":      StaticKW,
	"var":         VarKW,
	"int":         IntKW,
	"char":        CharKW,
	"boolean":     BooleanKW,
	"void":        VoidKW,
	"true":        TrueKW,
	"false":       FalseKW,
	"null":        NullKW,
	"this":        ThisKW,
	"let":         LetKW,
	"do":          DoKW,
	"if":          IfKW,
	"else":        ElseKW,
	"while":       WhileKW,
	"return":      ReturnKW,
}

var keyWordNames = func() map[Keyword]string {
	names := make(map[Keyword]string, len(keyWordMap))
	for name, kw := range keyWordMap {
		names[kw] = name
	}
	return names
}()

func (k Keyword) String() string {
	if name, ok := keyWordNames[k]; ok {
		return name
	}
	return "keyword(" + strconv.Itoa(int(k)) + ")"
}

func isSymbolChar(b byte) bool {
	switch b {
	case '{', '}', '(', ')', '[', ']', '.', ',', ';', '+', '-', '*', '/', '&', '|', '<', '>', '=', '~':
		return true
	}
	return false
}

// MaxIntConstant is the largest integer literal; push constant only addresses 15 bits.
const MaxIntConstant = 32767

const maxIntConstantDigits = 5

type Position struct {
	Line   int
	Column int
}

type Token struct {
	tp      TokenType
	content string // literal text; string constants are stored without quotes
	keyword Keyword
	intVal  int
	pos     Position
}

func (t Token) Type() TokenType {
	return t.tp
}

func (t Token) Text() string {
	return t.content
}

func (t Token) Pos() Position {
	return t.pos
}
