package internal

import (
	"fmt"
	"strings"
)

// Every failure aborts the compilation unit. Errors carry the offending token and the
// source line so the caller can show where compilation stopped.

type compileError struct {
	Pos    Position
	Near   string
	Msg    string
	Source string
}

func (e *compileError) format(kind string) string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("%s: %s", kind, e.Msg))
	if e.Pos.Line > 0 {
		b.WriteString(fmt.Sprintf(" near '%s' at line %d:%d", e.Near, e.Pos.Line, e.Pos.Column))
	}
	if e.Source != "" {
		b.WriteString("\n\t")
		b.WriteString(e.Source)
	}
	return b.String()
}

// LexicalError is returned when no token class matches at the current position.
type LexicalError struct {
	compileError
}

func (e *LexicalError) Error() string {
	return e.format("LexicalError")
}

// SyntaxError is returned when the current token is not one the grammar expects.
type SyntaxError struct {
	compileError
}

func (e *SyntaxError) Error() string {
	return e.format("SyntaxError")
}

// SemanticError is returned for duplicate definitions and for names that cannot be
// mapped to a storage segment.
type SemanticError struct {
	compileError
}

func (e *SemanticError) Error() string {
	return e.format("SemanticError")
}

func makeSemanticError(format string, args ...interface{}) *SemanticError {
	return &SemanticError{compileError{Msg: fmt.Sprintf(format, args...)}}
}
