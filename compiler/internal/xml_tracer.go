package internal

import (
	"bytes"
	"strconv"
	"strings"
)

// Usage tells whether an identifier occurrence declares a variable or refers to one.
type Usage int

const (
	DeclaredUsage Usage = iota
	UsedUsage
)

func (u Usage) String() string {
	if u == DeclaredUsage {
		return "declared"
	}
	return "used"
}

// Tracer observes the parse as it happens: Open and Close bracket every non-terminal,
// Terminal is called for each consumed token. Identifier replaces Terminal for a name the
// symbol table resolves to a variable.
type Tracer interface {
	Open(tag string)
	Close(tag string)
	Terminal(tok Token)
	Identifier(tok Token, symbol Symbol, usage Usage)
}

type nopTracer struct{}

func (nopTracer) Open(string)                     {}
func (nopTracer) Close(string)                    {}
func (nopTracer) Terminal(Token)                  {}
func (nopTracer) Identifier(Token, Symbol, Usage) {}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")

func writeTerminal(buf *bytes.Buffer, tok Token) {
	tag := tok.tp.String()
	buf.WriteString("<" + tag + "> " + xmlEscaper.Replace(tok.content) + " </" + tag + ">\n")
}

// XMLTracer renders the parse tree in the nand2tetris XML layout:
//
//	<class>
//	  <keyword> class </keyword>
//	  <identifier> Main </identifier>
//	  ...
//	</class>
//
// Variables carry their symbol: <identifier category="local" index="0" usage="used"> i </identifier>.
type XMLTracer struct {
	buf   bytes.Buffer
	depth int
}

func NewXMLTracer() *XMLTracer {
	return &XMLTracer{}
}

func (t *XMLTracer) indent() {
	for i := 0; i < t.depth; i++ {
		t.buf.WriteString("  ")
	}
}

func (t *XMLTracer) Open(tag string) {
	t.indent()
	t.buf.WriteString("<" + tag + ">\n")
	t.depth++
}

func (t *XMLTracer) Close(tag string) {
	t.depth--
	t.indent()
	t.buf.WriteString("</" + tag + ">\n")
}

func (t *XMLTracer) Terminal(tok Token) {
	t.indent()
	writeTerminal(&t.buf, tok)
}

func (t *XMLTracer) Identifier(tok Token, symbol Symbol, usage Usage) {
	t.indent()
	t.buf.WriteString(`<identifier category="` + symbol.Kind.String() +
		`" index="` + strconv.Itoa(symbol.Index) +
		`" usage="` + usage.String() + `"> ` + xmlEscaper.Replace(tok.content) + " </identifier>\n")
}

func (t *XMLTracer) Bytes() []byte {
	return t.buf.Bytes()
}

func (t *XMLTracer) String() string {
	return t.buf.String()
}

// TokenXML lists every token of src as one flat element inside <tokens>.
func TokenXML(src []byte) ([]byte, error) {
	tokenizer := NewTokenizer(src)
	buf := bytes.Buffer{}
	buf.WriteString("<tokens>\n")
	for tokenizer.HasMoreTokens() {
		if err := tokenizer.Advance(); err != nil {
			return nil, err
		}
		writeTerminal(&buf, tokenizer.Token())
	}
	buf.WriteString("</tokens>\n")
	return buf.Bytes(), nil
}
