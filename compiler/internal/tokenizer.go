package internal

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xiaobogaga/jackvm/util"
)

// A lazy tokenizer for Jack. Only the current token is kept; the engine pulls the next one
// with Advance after checking HasMoreTokens.

type Tokenizer struct {
	src       []byte
	pos       int
	line      int
	lineStart int
	current   Token
}

func NewTokenizer(src []byte) *Tokenizer {
	return &Tokenizer{src: src, line: 1}
}

// HasMoreTokens reports whether any input other than whitespace and comments remains.
// An unterminated block comment counts as remaining input so that Advance can report it.
func (tokenizer *Tokenizer) HasMoreTokens() bool {
	if err := tokenizer.skipSpaceAndComments(); err != nil {
		return true
	}
	return tokenizer.pos < len(tokenizer.src)
}

// Advance consumes and classifies the next token. Classification order is keyword, symbol,
// integer constant, string constant, identifier.
func (tokenizer *Tokenizer) Advance() error {
	if err := tokenizer.skipSpaceAndComments(); err != nil {
		return err
	}
	if tokenizer.pos >= len(tokenizer.src) {
		return tokenizer.makeError("", "unexpected end of input")
	}
	c := tokenizer.src[tokenizer.pos]
	switch {
	case util.IsIdentifierStart(c):
		tokenizer.tokenKeywordOrIdentifier()
		return nil
	case isSymbolChar(c):
		tokenizer.current = Token{tp: SymbolToken, content: string(c), pos: tokenizer.position()}
		tokenizer.consume(1)
		return nil
	case util.IsNumber(c):
		return tokenizer.tokenNumber()
	case c == '"':
		return tokenizer.tokenString()
	default:
		return tokenizer.makeError(string(c), "unexpected character")
	}
}

func (tokenizer *Tokenizer) Token() Token {
	return tokenizer.current
}

func (tokenizer *Tokenizer) TokenType() TokenType {
	return tokenizer.current.tp
}

func (tokenizer *Tokenizer) Keyword() Keyword {
	return tokenizer.current.keyword
}

func (tokenizer *Tokenizer) Symbol() byte {
	return tokenizer.current.content[0]
}

func (tokenizer *Tokenizer) IntVal() int {
	return tokenizer.current.intVal
}

func (tokenizer *Tokenizer) StringVal() string {
	return tokenizer.current.content
}

func (tokenizer *Tokenizer) Identifier() string {
	return tokenizer.current.content
}

// SourceLine returns the text of the 1-based line, without its line break.
func (tokenizer *Tokenizer) SourceLine(line int) string {
	start := 0
	for n := 1; n < line; n++ {
		i := bytes.IndexByte(tokenizer.src[start:], '\n')
		if i < 0 {
			return ""
		}
		start += i + 1
	}
	end := bytes.IndexByte(tokenizer.src[start:], '\n')
	if end < 0 {
		end = len(tokenizer.src) - start
	}
	return string(bytes.TrimRight(tokenizer.src[start:start+end], "\r"))
}

func (tokenizer *Tokenizer) position() Position {
	return Position{Line: tokenizer.line, Column: tokenizer.pos - tokenizer.lineStart + 1}
}

// consume moves forward n bytes, keeping the line counters current.
func (tokenizer *Tokenizer) consume(n int) {
	end := tokenizer.pos + n
	for ; tokenizer.pos < end; tokenizer.pos++ {
		if tokenizer.src[tokenizer.pos] == '\n' {
			tokenizer.line++
			tokenizer.lineStart = tokenizer.pos + 1
		}
	}
}

func (tokenizer *Tokenizer) skipSpaceAndComments() error {
	for tokenizer.pos < len(tokenizer.src) {
		rest := tokenizer.src[tokenizer.pos:]
		switch {
		case util.IsSpace(rest[0]):
			tokenizer.consume(1)
		case bytes.HasPrefix(rest, []byte("//")):
			end := bytes.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			tokenizer.consume(end)
		case bytes.HasPrefix(rest, []byte("/*")):
			end := bytes.Index(rest[2:], []byte("*/"))
			if end < 0 {
				return tokenizer.makeError("/*", "unterminated comment")
			}
			tokenizer.consume(end + 4)
		default:
			return nil
		}
	}
	return nil
}

func (tokenizer *Tokenizer) tokenKeywordOrIdentifier() {
	start, pos := tokenizer.pos, tokenizer.position()
	end := start
	for end < len(tokenizer.src) && util.IsIdentifierPart(tokenizer.src[end]) {
		end++
	}
	word := string(tokenizer.src[start:end])
	tokenizer.consume(end - start)
	// A keyword only matches a whole word: "done" is an identifier, not "do" + "ne".
	if kw, isKeyWord := keyWordMap[word]; isKeyWord {
		tokenizer.current = Token{tp: KeywordToken, content: word, keyword: kw, pos: pos}
		return
	}
	tokenizer.current = Token{tp: IdentifierToken, content: word, pos: pos}
}

func (tokenizer *Tokenizer) tokenNumber() error {
	start := tokenizer.pos
	end := start
	for end < len(tokenizer.src) && util.IsNumber(tokenizer.src[end]) {
		end++
	}
	literal := string(tokenizer.src[start:end])
	if len(literal) > maxIntConstantDigits {
		return tokenizer.makeError(literal, "integer constant has more than 5 digits")
	}
	value, err := strconv.Atoi(literal)
	if err != nil || value > MaxIntConstant {
		return tokenizer.makeError(literal, "integer constant out of range 0.."+strconv.Itoa(MaxIntConstant))
	}
	tokenizer.current = Token{tp: IntegerConstantToken, content: literal, intVal: value, pos: tokenizer.position()}
	tokenizer.consume(end - start)
	return nil
}

func (tokenizer *Tokenizer) tokenString() error {
	// Looking forward through the current line to find a closing quote.
	start := tokenizer.pos
	end := start + 1
	for end < len(tokenizer.src) && tokenizer.src[end] != '"' {
		if tokenizer.src[end] == '\n' || tokenizer.src[end] == '\r' {
			break
		}
		end++
	}
	if end >= len(tokenizer.src) || tokenizer.src[end] != '"' {
		return tokenizer.makeError(string(tokenizer.src[start:end]), "unterminated string constant")
	}
	for i := start + 1; i < end; i++ {
		if c := tokenizer.src[i]; !isStringChar(c) {
			return tokenizer.makeError(invalidCharText(tokenizer.src[i:end]), "character not allowed in string constant")
		}
	}
	tokenizer.current = Token{
		tp:      StringConstantToken,
		content: string(tokenizer.src[start+1 : end]),
		pos:     tokenizer.position(),
	}
	tokenizer.consume(end + 1 - start)
	return nil
}

func (tokenizer *Tokenizer) makeError(near string, msg string) error {
	pos := tokenizer.position()
	return &LexicalError{compileError{
		Pos:    pos,
		Near:   near,
		Msg:    msg,
		Source: tokenizer.SourceLine(pos.Line),
	}}
}

// isStringChar reports whether c belongs to the Jack character set, printable ASCII.
func isStringChar(c byte) bool {
	return c >= ' ' && c <= '~'
}

// invalidCharText renders the character at the start of b for an error message. A byte
// that does not start valid UTF-8 is shown as a \x escape.
func invalidCharText(b []byte) string {
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return fmt.Sprintf("\\x%02x", b[0])
	}
	return string(r)
}
