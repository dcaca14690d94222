package internal

import "github.com/xiaobogaga/jackvm/vm"

type Options struct {
	// SingleOperator limits an expression to term (op term)? and rejects longer chains.
	SingleOperator bool
	// Trace records the parse tree as XML in Result.Trace and the token stream in
	// Result.Tokens.
	Trace bool
}

// Result is the output of one compilation unit.
type Result struct {
	ClassName string
	Program   vm.Program
	Trace     []byte
	Tokens    []byte
	Statics   []string
	Fields    []string
}

// CompileUnit compiles the source of exactly one class. Any error aborts the unit and no
// program is returned.
func CompileUnit(src []byte, opts Options) (*Result, error) {
	gen := newVMGenerator()
	var tracer Tracer
	var xmlTracer *XMLTracer
	if opts.Trace {
		xmlTracer = NewXMLTracer()
		tracer = xmlTracer
	}
	engine := NewEngine(NewTokenizer(src), gen, tracer, opts)
	if err := engine.Compile(); err != nil {
		return nil, err
	}
	result := &Result{
		ClassName: gen.unit.className,
		Program:   gen.writer.Program(),
		Statics:   gen.symbols.Names(StaticKind),
		Fields:    gen.symbols.Names(FieldKind),
	}
	if xmlTracer != nil {
		result.Trace = xmlTracer.Bytes()
		tokens, err := TokenXML(src)
		if err != nil {
			return nil, err
		}
		result.Tokens = tokens
	}
	return result, nil
}
