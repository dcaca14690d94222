package internal

import (
	"fmt"

	"github.com/xiaobogaga/jackvm/vm"
)

type SubroutineKind int

const (
	ConstructorSubroutine SubroutineKind = iota
	FunctionSubroutine
	MethodSubroutine
)

func (k SubroutineKind) String() string {
	switch k {
	case ConstructorSubroutine:
		return "constructor"
	case FunctionSubroutine:
		return "function"
	case MethodSubroutine:
		return "method"
	}
	return fmt.Sprintf("subroutine(%d)", int(k))
}

// Generator receives the semantic events of one compilation unit in source order. The engine
// only matches the grammar; everything that declares names or produces code goes through here,
// so grammar and code generation can be tested on their own.
type Generator interface {
	BeginClass(name string)
	EndClass()
	// Lookup resolves a name against the variables declared so far.
	Lookup(name string) (Symbol, Resolution)
	ClassVar(kind Kind, typ, name string) error

	BeginSubroutine(kind SubroutineKind, returnType, name string) error
	Parameter(typ, name string) error
	Local(typ, name string) error
	// BeginBody is called once all local declarations are known.
	BeginBody()
	EndSubroutine()

	// Store pops the value on top of the stack into a variable.
	Store(name string) error
	// ArrayBase pushes the base address held by the variable name.
	ArrayBase(name string) error
	// ArrayElement turns base and offset on the stack into an element address.
	ArrayElement()
	LoadElement()
	// StoreElement pops a value and stores it at the element address below it.
	StoreElement()

	BeginIf()
	IfThen()
	// IfElse is called after the then branch whether or not an else branch follows.
	IfElse()
	EndIf()
	BeginWhile()
	WhileBody()
	EndWhile()

	// BeginCall is called before the arguments; qualifier is empty for a bare call.
	BeginCall(qualifier, name string) error
	EndCall(nArgs int)
	// Discard drops the value left by a call made for its side effects.
	Discard()
	Return(hasValue bool)

	IntConst(value int)
	StringConst(value string)
	KeywordConst(kw Keyword) error
	Variable(name string) error
	Unary(op byte)
	Binary(op byte)
}

// unitContext is the state that lives as long as the compilation unit.
type unitContext struct {
	className string
	fields    int
}

// subroutineContext is created by BeginSubroutine and dropped by EndSubroutine, so label
// numbering starts from zero in every subroutine.
type subroutineContext struct {
	kind       SubroutineKind
	name       string
	ifCount    int
	whileCount int
	ifs        []int
	whiles     []int
	calls      []pendingCall
}

type pendingCall struct {
	target   string
	receiver bool
}

// vmGenerator lowers the events to VM code using a symbol table and a VMWriter.
type vmGenerator struct {
	symbols *SymbolTable
	writer  *VMWriter
	unit    unitContext
	sub     *subroutineContext
}

func newVMGenerator() *vmGenerator {
	return &vmGenerator{symbols: NewSymbolTable(), writer: NewVMWriter()}
}

func (g *vmGenerator) BeginClass(name string) {
	g.unit = unitContext{className: name}
}

func (g *vmGenerator) EndClass() {}

func (g *vmGenerator) Lookup(name string) (Symbol, Resolution) {
	return g.symbols.Lookup(name)
}

func (g *vmGenerator) ClassVar(kind Kind, typ, name string) error {
	if _, err := g.symbols.Define(name, typ, kind); err != nil {
		return err
	}
	if kind == FieldKind {
		g.unit.fields++
	}
	return nil
}

func (g *vmGenerator) BeginSubroutine(kind SubroutineKind, returnType, name string) error {
	g.symbols.StartSubroutine()
	g.sub = &subroutineContext{kind: kind, name: name}
	if kind == MethodSubroutine {
		// The receiver is passed as argument 0.
		if _, err := g.symbols.Define("this", g.unit.className, ArgumentKind); err != nil {
			return err
		}
	}
	return nil
}

func (g *vmGenerator) Parameter(typ, name string) error {
	_, err := g.symbols.Define(name, typ, ArgumentKind)
	return err
}

func (g *vmGenerator) Local(typ, name string) error {
	_, err := g.symbols.Define(name, typ, LocalKind)
	return err
}

// BeginBody writes the function header and the prologue.
// Constructor:
// push constant nFields
// call Memory.alloc 1
// pop pointer 0
// Method:
// push argument 0
// pop pointer 0
func (g *vmGenerator) BeginBody() {
	g.writer.WriteFunction(g.unit.className+"."+g.sub.name, g.symbols.VarCount(LocalKind))
	switch g.sub.kind {
	case ConstructorSubroutine:
		g.writer.WritePush(vm.ConstantSegment, g.unit.fields)
		g.writer.WriteCall("Memory.alloc", 1)
		g.writer.WritePop(vm.PointerSegment, 0)
	case MethodSubroutine:
		g.writer.WritePush(vm.ArgumentSegment, 0)
		g.writer.WritePop(vm.PointerSegment, 0)
	}
}

func (g *vmGenerator) EndSubroutine() {
	g.sub = nil
}

// resolve finds the variable behind name. A field cannot be reached from a function since
// there is no object to address it through.
func (g *vmGenerator) resolve(name string) (Symbol, error) {
	symbol, res := g.symbols.Lookup(name)
	if res == Unresolved {
		return Symbol{}, makeSemanticError("undefined variable: %s", name)
	}
	if symbol.Kind == FieldKind && g.sub != nil && g.sub.kind == FunctionSubroutine {
		return Symbol{}, makeSemanticError("field %s cannot be used in function %s.%s",
			name, g.unit.className, g.sub.name)
	}
	return symbol, nil
}

func (g *vmGenerator) Store(name string) error {
	symbol, err := g.resolve(name)
	if err != nil {
		return err
	}
	g.writer.WritePop(symbol.Kind.Segment(), symbol.Index)
	return nil
}

func (g *vmGenerator) Variable(name string) error {
	symbol, err := g.resolve(name)
	if err != nil {
		return err
	}
	g.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
	return nil
}

func (g *vmGenerator) ArrayBase(name string) error {
	return g.Variable(name)
}

func (g *vmGenerator) ArrayElement() {
	g.writer.WriteArithmetic(vm.AddCommand)
}

func (g *vmGenerator) LoadElement() {
	g.writer.WritePop(vm.PointerSegment, 1)
	g.writer.WritePush(vm.ThatSegment, 0)
}

// StoreElement keeps the value in temp 0 while that is pointed at the element.
func (g *vmGenerator) StoreElement() {
	g.writer.WritePop(vm.TempSegment, 0)
	g.writer.WritePop(vm.PointerSegment, 1)
	g.writer.WritePush(vm.TempSegment, 0)
	g.writer.WritePop(vm.ThatSegment, 0)
}

// If statement vm code:
// <condition>
// if-goto IF_TRUEn
// goto IF_FALSEn
// label IF_TRUEn
// <then statements>
// goto IF_ENDn
// label IF_FALSEn
// <else statements>
// label IF_ENDn
func (g *vmGenerator) BeginIf() {
	g.sub.ifs = append(g.sub.ifs, g.sub.ifCount)
	g.sub.ifCount++
}

func (g *vmGenerator) currentIf() int {
	return g.sub.ifs[len(g.sub.ifs)-1]
}

func (g *vmGenerator) IfThen() {
	n := g.currentIf()
	g.writer.WriteIf(fmt.Sprintf("IF_TRUE%d", n))
	g.writer.WriteGoto(fmt.Sprintf("IF_FALSE%d", n))
	g.writer.WriteLabel(fmt.Sprintf("IF_TRUE%d", n))
}

func (g *vmGenerator) IfElse() {
	n := g.currentIf()
	g.writer.WriteGoto(fmt.Sprintf("IF_END%d", n))
	g.writer.WriteLabel(fmt.Sprintf("IF_FALSE%d", n))
}

func (g *vmGenerator) EndIf() {
	g.writer.WriteLabel(fmt.Sprintf("IF_END%d", g.currentIf()))
	g.sub.ifs = g.sub.ifs[:len(g.sub.ifs)-1]
}

// While statement vm code:
// label WHILE_EXPn
// <condition>
// not
// if-goto WHILE_ENDn
// <statements>
// goto WHILE_EXPn
// label WHILE_ENDn
func (g *vmGenerator) BeginWhile() {
	n := g.sub.whileCount
	g.sub.whiles = append(g.sub.whiles, n)
	g.sub.whileCount++
	g.writer.WriteLabel(fmt.Sprintf("WHILE_EXP%d", n))
}

func (g *vmGenerator) currentWhile() int {
	return g.sub.whiles[len(g.sub.whiles)-1]
}

func (g *vmGenerator) WhileBody() {
	g.writer.WriteArithmetic(vm.NotCommand)
	g.writer.WriteIf(fmt.Sprintf("WHILE_END%d", g.currentWhile()))
}

func (g *vmGenerator) EndWhile() {
	n := g.currentWhile()
	g.writer.WriteGoto(fmt.Sprintf("WHILE_EXP%d", n))
	g.writer.WriteLabel(fmt.Sprintf("WHILE_END%d", n))
	g.sub.whiles = g.sub.whiles[:len(g.sub.whiles)-1]
}

// BeginCall decides the call target and pushes the receiver, if any, before the arguments.
// a.b(): a variable of type T calls T.b with a as receiver, otherwise a is a class name.
// b(): calls a subroutine of the current class, with this as receiver unless we are
// compiling a function.
func (g *vmGenerator) BeginCall(qualifier, name string) error {
	call := pendingCall{}
	switch {
	case qualifier == "":
		call.target = g.unit.className + "." + name
		if g.sub.kind != FunctionSubroutine {
			g.writer.WritePush(vm.PointerSegment, 0)
			call.receiver = true
		}
	default:
		symbol, res := g.symbols.Lookup(qualifier)
		if res == Unresolved {
			call.target = qualifier + "." + name
			break
		}
		if err := g.Variable(qualifier); err != nil {
			return err
		}
		call.target = symbol.Type + "." + name
		call.receiver = true
	}
	g.sub.calls = append(g.sub.calls, call)
	return nil
}

func (g *vmGenerator) EndCall(nArgs int) {
	call := g.sub.calls[len(g.sub.calls)-1]
	g.sub.calls = g.sub.calls[:len(g.sub.calls)-1]
	if call.receiver {
		nArgs++
	}
	g.writer.WriteCall(call.target, nArgs)
}

func (g *vmGenerator) Discard() {
	g.writer.WritePop(vm.TempSegment, 0)
}

// Every subroutine leaves exactly one value, void ones return 0.
func (g *vmGenerator) Return(hasValue bool) {
	if !hasValue {
		g.writer.WritePush(vm.ConstantSegment, 0)
	}
	g.writer.WriteReturn()
}

func (g *vmGenerator) IntConst(value int) {
	g.writer.WritePush(vm.ConstantSegment, value)
}

// StringConst builds a String object one character at a time; appendChar returns the
// string so it stays on the stack for the next call. The tokenizer only lets printable
// ASCII through, so every byte is one character.
func (g *vmGenerator) StringConst(value string) {
	g.writer.WritePush(vm.ConstantSegment, len(value))
	g.writer.WriteCall("String.new", 1)
	for i := 0; i < len(value); i++ {
		g.writer.WritePush(vm.ConstantSegment, int(value[i]))
		g.writer.WriteCall("String.appendChar", 2)
	}
}

// true is -1 (not 0), false and null are 0.
func (g *vmGenerator) KeywordConst(kw Keyword) error {
	switch kw {
	case TrueKW:
		g.writer.WritePush(vm.ConstantSegment, 0)
		g.writer.WriteArithmetic(vm.NotCommand)
	case FalseKW, NullKW:
		g.writer.WritePush(vm.ConstantSegment, 0)
	case ThisKW:
		if g.sub != nil && g.sub.kind == FunctionSubroutine {
			return makeSemanticError("this cannot be used in function %s.%s", g.unit.className, g.sub.name)
		}
		g.writer.WritePush(vm.PointerSegment, 0)
	default:
		return makeSemanticError("%s is not a keyword constant", kw)
	}
	return nil
}

func (g *vmGenerator) Unary(op byte) {
	switch op {
	case '-':
		g.writer.WriteArithmetic(vm.NegCommand)
	case '~':
		g.writer.WriteArithmetic(vm.NotCommand)
	}
}

// Binary lowers an operator; * and / have no VM primitive and call the Math library.
func (g *vmGenerator) Binary(op byte) {
	switch op {
	case '+':
		g.writer.WriteArithmetic(vm.AddCommand)
	case '-':
		g.writer.WriteArithmetic(vm.SubCommand)
	case '*':
		g.writer.WriteCall("Math.multiply", 2)
	case '/':
		g.writer.WriteCall("Math.divide", 2)
	case '&':
		g.writer.WriteArithmetic(vm.AndCommand)
	case '|':
		g.writer.WriteArithmetic(vm.OrCommand)
	case '<':
		g.writer.WriteArithmetic(vm.LtCommand)
	case '>':
		g.writer.WriteArithmetic(vm.GtCommand)
	case '=':
		g.writer.WriteArithmetic(vm.EqCommand)
	}
}
