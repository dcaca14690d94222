package internal

import (
	"errors"
	"fmt"
	"strings"
)

// Engine is a recursive-descent parser for one Jack class. Each compileXxx method consumes
// exactly the tokens of its grammar rule, tells the Generator about declarations and code
// as soon as they are seen, and stops at the first mismatch. There is no syntax tree.
type Engine struct {
	tokenizer *Tokenizer
	gen       Generator
	tracer    Tracer
	opts      Options
	eof       bool
}

func NewEngine(tokenizer *Tokenizer, gen Generator, tracer Tracer, opts Options) *Engine {
	if tracer == nil {
		tracer = nopTracer{}
	}
	return &Engine{tokenizer: tokenizer, gen: gen, tracer: tracer, opts: opts}
}

// Compile parses the whole compilation unit: exactly one class and nothing after it.
func (engine *Engine) Compile() error {
	if !engine.tokenizer.HasMoreTokens() {
		engine.eof = true
		return engine.syntaxError("empty compilation unit, expected class")
	}
	if err := engine.tokenizer.Advance(); err != nil {
		return err
	}
	if err := engine.compileClass(); err != nil {
		return err
	}
	if !engine.eof {
		return engine.syntaxError("unexpected token after class body")
	}
	return nil
}

// advance steps to the next token, or marks the end of input.
func (engine *Engine) advance() error {
	if engine.tokenizer.HasMoreTokens() {
		return engine.tokenizer.Advance()
	}
	engine.eof = true
	return nil
}

func (engine *Engine) current() Token {
	return engine.tokenizer.Token()
}

func (engine *Engine) isSymbol(c byte) bool {
	return !engine.eof && engine.tokenizer.TokenType() == SymbolToken && engine.tokenizer.Symbol() == c
}

func (engine *Engine) isKeyword(kws ...Keyword) bool {
	if engine.eof || engine.tokenizer.TokenType() != KeywordToken {
		return false
	}
	for _, kw := range kws {
		if engine.tokenizer.Keyword() == kw {
			return true
		}
	}
	return false
}

func (engine *Engine) isIdentifier() bool {
	return !engine.eof && engine.tokenizer.TokenType() == IdentifierToken
}

// accept records the current token in the trace and moves past it.
func (engine *Engine) accept() error {
	engine.tracer.Terminal(engine.current())
	return engine.advance()
}

func (engine *Engine) eatSymbol(c byte) error {
	if !engine.isSymbol(c) {
		return engine.syntaxError(fmt.Sprintf("expected '%c'", c))
	}
	return engine.accept()
}

func (engine *Engine) eatKeyword(kws ...Keyword) (Keyword, error) {
	if !engine.isKeyword(kws...) {
		names := make([]string, 0, len(kws))
		for _, kw := range kws {
			names = append(names, kw.String())
		}
		return 0, engine.syntaxError("expected one of " + strings.Join(names, ", "))
	}
	kw := engine.tokenizer.Keyword()
	return kw, engine.accept()
}

func (engine *Engine) eatIdentifier(what string) (Token, error) {
	if !engine.isIdentifier() {
		return Token{}, engine.syntaxError("expected " + what)
	}
	tok := engine.current()
	return tok, engine.accept()
}

// eatName consumes an identifier without tracing it. The caller traces it with traceName
// once the symbol table knows whether it names a variable.
func (engine *Engine) eatName(what string) (Token, error) {
	if !engine.isIdentifier() {
		return Token{}, engine.syntaxError("expected " + what)
	}
	tok := engine.current()
	return tok, engine.advance()
}

func (engine *Engine) traceName(tok Token, usage Usage) {
	if symbol, res := engine.gen.Lookup(tok.content); res != Unresolved {
		engine.tracer.Identifier(tok, symbol, usage)
		return
	}
	engine.tracer.Terminal(tok)
}

// eatType consumes int, char, boolean, a class name, or void when allowVoid is set.
func (engine *Engine) eatType(allowVoid bool) (string, error) {
	if engine.isKeyword(IntKW, CharKW, BooleanKW) || (allowVoid && engine.isKeyword(VoidKW)) {
		typ := engine.current().content
		return typ, engine.accept()
	}
	if engine.isIdentifier() {
		typ := engine.current().content
		return typ, engine.accept()
	}
	if allowVoid {
		return "", engine.syntaxError("expected return type")
	}
	return "", engine.syntaxError("expected type")
}

func (engine *Engine) syntaxError(msg string) error {
	if engine.eof {
		return &SyntaxError{compileError{Msg: msg + ", got end of input"}}
	}
	tok := engine.current()
	return &SyntaxError{compileError{
		Pos:    tok.pos,
		Near:   tok.content,
		Msg:    msg,
		Source: engine.tokenizer.SourceLine(tok.pos.Line),
	}}
}

// locate attaches the position of tok to a semantic error raised by the generator.
func (engine *Engine) locate(tok Token, err error) error {
	if err == nil {
		return nil
	}
	var semanticErr *SemanticError
	if !errors.As(err, &semanticErr) {
		semanticErr = makeSemanticError("%s", err.Error())
	}
	if semanticErr.Pos.Line == 0 {
		semanticErr.Pos = tok.pos
		semanticErr.Near = tok.content
		semanticErr.Source = engine.tokenizer.SourceLine(tok.pos.Line)
	}
	return semanticErr
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (engine *Engine) compileClass() error {
	engine.tracer.Open("class")
	if _, err := engine.eatKeyword(ClassKW); err != nil {
		return err
	}
	name, err := engine.eatIdentifier("class name")
	if err != nil {
		return err
	}
	engine.gen.BeginClass(name.content)
	if err := engine.eatSymbol('{'); err != nil {
		return err
	}
	for engine.isKeyword(StaticKW, FieldKW) {
		if err := engine.compileClassVarDec(); err != nil {
			return err
		}
	}
	for engine.isKeyword(ConstructorKW, FunctionKW, MethodKW) {
		if err := engine.compileSubroutine(); err != nil {
			return err
		}
	}
	if err := engine.eatSymbol('}'); err != nil {
		return err
	}
	engine.tracer.Close("class")
	engine.gen.EndClass()
	return nil
}

// classVarDec: ('static' | 'field') type varName (',' varName)* ';'
func (engine *Engine) compileClassVarDec() error {
	engine.tracer.Open("classVarDec")
	kw, err := engine.eatKeyword(StaticKW, FieldKW)
	if err != nil {
		return err
	}
	kind := StaticKind
	if kw == FieldKW {
		kind = FieldKind
	}
	typ, err := engine.eatType(false)
	if err != nil {
		return err
	}
	for {
		name, err := engine.eatName("variable name")
		if err != nil {
			return err
		}
		if err := engine.locate(name, engine.gen.ClassVar(kind, typ, name.content)); err != nil {
			return err
		}
		engine.traceName(name, DeclaredUsage)
		if !engine.isSymbol(',') {
			break
		}
		if err := engine.accept(); err != nil {
			return err
		}
	}
	if err := engine.eatSymbol(';'); err != nil {
		return err
	}
	engine.tracer.Close("classVarDec")
	return nil
}

// subroutineDec: ('constructor' | 'function' | 'method') ('void' | type) subroutineName
// '(' parameterList ')' subroutineBody
func (engine *Engine) compileSubroutine() error {
	engine.tracer.Open("subroutineDec")
	kw, err := engine.eatKeyword(ConstructorKW, FunctionKW, MethodKW)
	if err != nil {
		return err
	}
	kind := FunctionSubroutine
	switch kw {
	case ConstructorKW:
		kind = ConstructorSubroutine
	case MethodKW:
		kind = MethodSubroutine
	}
	returnType, err := engine.eatType(true)
	if err != nil {
		return err
	}
	name, err := engine.eatIdentifier("subroutine name")
	if err != nil {
		return err
	}
	if err := engine.locate(name, engine.gen.BeginSubroutine(kind, returnType, name.content)); err != nil {
		return err
	}
	if err := engine.eatSymbol('('); err != nil {
		return err
	}
	if err := engine.compileParameterList(); err != nil {
		return err
	}
	if err := engine.eatSymbol(')'); err != nil {
		return err
	}
	if err := engine.compileSubroutineBody(); err != nil {
		return err
	}
	engine.gen.EndSubroutine()
	engine.tracer.Close("subroutineDec")
	return nil
}

// parameterList: ((type varName) (',' type varName)*)?
func (engine *Engine) compileParameterList() error {
	engine.tracer.Open("parameterList")
	if !engine.isSymbol(')') {
		for {
			typ, err := engine.eatType(false)
			if err != nil {
				return err
			}
			name, err := engine.eatName("parameter name")
			if err != nil {
				return err
			}
			if err := engine.locate(name, engine.gen.Parameter(typ, name.content)); err != nil {
				return err
			}
			engine.traceName(name, DeclaredUsage)
			if !engine.isSymbol(',') {
				break
			}
			if err := engine.accept(); err != nil {
				return err
			}
		}
	}
	engine.tracer.Close("parameterList")
	return nil
}

// subroutineBody: '{' varDec* statements '}'
func (engine *Engine) compileSubroutineBody() error {
	engine.tracer.Open("subroutineBody")
	if err := engine.eatSymbol('{'); err != nil {
		return err
	}
	for engine.isKeyword(VarKW) {
		if err := engine.compileVarDec(); err != nil {
			return err
		}
	}
	engine.gen.BeginBody()
	if err := engine.compileStatements(); err != nil {
		return err
	}
	if err := engine.eatSymbol('}'); err != nil {
		return err
	}
	engine.tracer.Close("subroutineBody")
	return nil
}

// varDec: 'var' type varName (',' varName)* ';'
func (engine *Engine) compileVarDec() error {
	engine.tracer.Open("varDec")
	if _, err := engine.eatKeyword(VarKW); err != nil {
		return err
	}
	typ, err := engine.eatType(false)
	if err != nil {
		return err
	}
	for {
		name, err := engine.eatName("variable name")
		if err != nil {
			return err
		}
		if err := engine.locate(name, engine.gen.Local(typ, name.content)); err != nil {
			return err
		}
		engine.traceName(name, DeclaredUsage)
		if !engine.isSymbol(',') {
			break
		}
		if err := engine.accept(); err != nil {
			return err
		}
	}
	if err := engine.eatSymbol(';'); err != nil {
		return err
	}
	engine.tracer.Close("varDec")
	return nil
}
