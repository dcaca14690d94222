package internal

// statements: statement*
// statement: letStatement | ifStatement | whileStatement | doStatement | returnStatement
func (engine *Engine) compileStatements() error {
	engine.tracer.Open("statements")
	for !engine.isSymbol('}') {
		var err error
		switch {
		case engine.isKeyword(LetKW):
			err = engine.compileLet()
		case engine.isKeyword(IfKW):
			err = engine.compileIf()
		case engine.isKeyword(WhileKW):
			err = engine.compileWhile()
		case engine.isKeyword(DoKW):
			err = engine.compileDo()
		case engine.isKeyword(ReturnKW):
			err = engine.compileReturn()
		default:
			err = engine.syntaxError("expected statement")
		}
		if err != nil {
			return err
		}
	}
	engine.tracer.Close("statements")
	return nil
}

// letStatement: 'let' varName ('[' expression ']')? '=' expression ';'
func (engine *Engine) compileLet() error {
	engine.tracer.Open("letStatement")
	if _, err := engine.eatKeyword(LetKW); err != nil {
		return err
	}
	name, err := engine.eatName("variable name")
	if err != nil {
		return err
	}
	engine.traceName(name, UsedUsage)
	indexed := engine.isSymbol('[')
	if indexed {
		if err := engine.locate(name, engine.gen.ArrayBase(name.content)); err != nil {
			return err
		}
		if err := engine.compileIndex(); err != nil {
			return err
		}
	}
	if err := engine.eatSymbol('='); err != nil {
		return err
	}
	if err := engine.compileExpression(); err != nil {
		return err
	}
	if err := engine.eatSymbol(';'); err != nil {
		return err
	}
	if indexed {
		engine.gen.StoreElement()
	} else if err := engine.locate(name, engine.gen.Store(name.content)); err != nil {
		return err
	}
	engine.tracer.Close("letStatement")
	return nil
}

// compileIndex consumes '[' expression ']' after an array variable and leaves the element
// address on the stack.
func (engine *Engine) compileIndex() error {
	if err := engine.eatSymbol('['); err != nil {
		return err
	}
	if err := engine.compileExpression(); err != nil {
		return err
	}
	if err := engine.eatSymbol(']'); err != nil {
		return err
	}
	engine.gen.ArrayElement()
	return nil
}

// ifStatement: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (engine *Engine) compileIf() error {
	engine.tracer.Open("ifStatement")
	if _, err := engine.eatKeyword(IfKW); err != nil {
		return err
	}
	engine.gen.BeginIf()
	if err := engine.compileCondition(); err != nil {
		return err
	}
	engine.gen.IfThen()
	if err := engine.compileBlock(); err != nil {
		return err
	}
	engine.gen.IfElse()
	if engine.isKeyword(ElseKW) {
		if err := engine.accept(); err != nil {
			return err
		}
		if err := engine.compileBlock(); err != nil {
			return err
		}
	}
	engine.gen.EndIf()
	engine.tracer.Close("ifStatement")
	return nil
}

// whileStatement: 'while' '(' expression ')' '{' statements '}'
func (engine *Engine) compileWhile() error {
	engine.tracer.Open("whileStatement")
	if _, err := engine.eatKeyword(WhileKW); err != nil {
		return err
	}
	engine.gen.BeginWhile()
	if err := engine.compileCondition(); err != nil {
		return err
	}
	engine.gen.WhileBody()
	if err := engine.compileBlock(); err != nil {
		return err
	}
	engine.gen.EndWhile()
	engine.tracer.Close("whileStatement")
	return nil
}

func (engine *Engine) compileCondition() error {
	if err := engine.eatSymbol('('); err != nil {
		return err
	}
	if err := engine.compileExpression(); err != nil {
		return err
	}
	return engine.eatSymbol(')')
}

func (engine *Engine) compileBlock() error {
	if err := engine.eatSymbol('{'); err != nil {
		return err
	}
	if err := engine.compileStatements(); err != nil {
		return err
	}
	return engine.eatSymbol('}')
}

// doStatement: 'do' subroutineCall ';'
func (engine *Engine) compileDo() error {
	engine.tracer.Open("doStatement")
	if _, err := engine.eatKeyword(DoKW); err != nil {
		return err
	}
	first, err := engine.eatName("subroutine, class or variable name")
	if err != nil {
		return err
	}
	engine.traceName(first, UsedUsage)
	if err := engine.compileSubroutineCall(first); err != nil {
		return err
	}
	if err := engine.eatSymbol(';'); err != nil {
		return err
	}
	engine.gen.Discard()
	engine.tracer.Close("doStatement")
	return nil
}

// returnStatement: 'return' expression? ';'
func (engine *Engine) compileReturn() error {
	engine.tracer.Open("returnStatement")
	if _, err := engine.eatKeyword(ReturnKW); err != nil {
		return err
	}
	hasValue := !engine.isSymbol(';')
	if hasValue {
		if err := engine.compileExpression(); err != nil {
			return err
		}
	}
	if err := engine.eatSymbol(';'); err != nil {
		return err
	}
	engine.gen.Return(hasValue)
	engine.tracer.Close("returnStatement")
	return nil
}
