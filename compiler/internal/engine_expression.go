package internal

import "fmt"

func isOp(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '&', '|', '<', '>', '=':
		return true
	}
	return false
}

func (engine *Engine) matchOp() bool {
	if engine.eof || engine.tokenizer.TokenType() != SymbolToken {
		return false
	}
	return isOp(engine.tokenizer.Symbol())
}

// expression: term (op term)*
// Operators apply left to right with no precedence. With Options.SingleOperator the
// expression is limited to term (op term)?.
func (engine *Engine) compileExpression() error {
	engine.tracer.Open("expression")
	if err := engine.compileTerm(); err != nil {
		return err
	}
	for ops := 0; engine.matchOp(); ops++ {
		if engine.opts.SingleOperator && ops == 1 {
			return engine.syntaxError("only one operator is allowed in an expression")
		}
		op := engine.tokenizer.Symbol()
		if err := engine.accept(); err != nil {
			return err
		}
		if err := engine.compileTerm(); err != nil {
			return err
		}
		engine.gen.Binary(op)
	}
	engine.tracer.Close("expression")
	return nil
}

// term: integerConstant | stringConstant | keywordConstant | varName | varName '[' expression ']' |
// subroutineCall | '(' expression ')' | unaryOp term
func (engine *Engine) compileTerm() error {
	if engine.eof {
		return engine.syntaxError("expected term")
	}
	engine.tracer.Open("term")
	tok := engine.current()
	switch tok.tp {
	case IntegerConstantToken:
		engine.gen.IntConst(tok.intVal)
		if err := engine.accept(); err != nil {
			return err
		}
	case StringConstantToken:
		engine.gen.StringConst(tok.content)
		if err := engine.accept(); err != nil {
			return err
		}
	case KeywordToken:
		if !engine.isKeyword(TrueKW, FalseKW, NullKW, ThisKW) {
			return engine.syntaxError("expected term")
		}
		if err := engine.locate(tok, engine.gen.KeywordConst(tok.keyword)); err != nil {
			return err
		}
		if err := engine.accept(); err != nil {
			return err
		}
	case SymbolToken:
		if err := engine.compileSymbolTerm(); err != nil {
			return err
		}
	case IdentifierToken:
		if err := engine.advance(); err != nil {
			return err
		}
		engine.traceName(tok, UsedUsage)
		if err := engine.compileIdentifierTerm(tok); err != nil {
			return err
		}
	default:
		return engine.syntaxError("expected term")
	}
	engine.tracer.Close("term")
	return nil
}

// compileSymbolTerm handles '(' expression ')' and unaryOp term.
func (engine *Engine) compileSymbolTerm() error {
	switch op := engine.tokenizer.Symbol(); op {
	case '(':
		if err := engine.accept(); err != nil {
			return err
		}
		if err := engine.compileExpression(); err != nil {
			return err
		}
		return engine.eatSymbol(')')
	case '-', '~':
		if err := engine.accept(); err != nil {
			return err
		}
		if err := engine.compileTerm(); err != nil {
			return err
		}
		engine.gen.Unary(op)
		return nil
	default:
		return engine.syntaxError(fmt.Sprintf("unexpected '%c' in expression", op))
	}
}

// compileIdentifierTerm continues a term after its leading identifier: an array element,
// a subroutine call or a plain variable.
func (engine *Engine) compileIdentifierTerm(name Token) error {
	switch {
	case engine.isSymbol('['):
		if err := engine.locate(name, engine.gen.ArrayBase(name.content)); err != nil {
			return err
		}
		if err := engine.compileIndex(); err != nil {
			return err
		}
		engine.gen.LoadElement()
		return nil
	case engine.isSymbol('('), engine.isSymbol('.'):
		return engine.compileSubroutineCall(name)
	default:
		return engine.locate(name, engine.gen.Variable(name.content))
	}
}

// subroutineCall: subroutineName '(' expressionList ')' |
// (className | varName) '.' subroutineName '(' expressionList ')'
// The first identifier has already been consumed.
func (engine *Engine) compileSubroutineCall(first Token) error {
	qualifier, name := "", first
	if engine.isSymbol('.') {
		if err := engine.accept(); err != nil {
			return err
		}
		var err error
		qualifier = first.content
		if name, err = engine.eatIdentifier("subroutine name"); err != nil {
			return err
		}
	}
	if err := engine.locate(first, engine.gen.BeginCall(qualifier, name.content)); err != nil {
		return err
	}
	if err := engine.eatSymbol('('); err != nil {
		return err
	}
	nArgs, err := engine.compileExpressionList()
	if err != nil {
		return err
	}
	if err := engine.eatSymbol(')'); err != nil {
		return err
	}
	engine.gen.EndCall(nArgs)
	return nil
}

// expressionList: (expression (',' expression)*)?
func (engine *Engine) compileExpressionList() (int, error) {
	engine.tracer.Open("expressionList")
	n := 0
	if !engine.isSymbol(')') {
		for {
			if err := engine.compileExpression(); err != nil {
				return 0, err
			}
			n++
			if !engine.isSymbol(',') {
				break
			}
			if err := engine.accept(); err != nil {
				return 0, err
			}
		}
	}
	engine.tracer.Close("expressionList")
	return n, nil
}
