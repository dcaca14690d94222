package internal

import "github.com/xiaobogaga/jackvm/vm"

// VMWriter appends instructions in call order. It performs no validation: callers only pass
// segments and indexes that come from the symbol table or from constants.
type VMWriter struct {
	program vm.Program
}

func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (w *VMWriter) WritePush(segment vm.Segment, index int) {
	w.program = append(w.program, vm.Push(segment, index))
}

func (w *VMWriter) WritePop(segment vm.Segment, index int) {
	w.program = append(w.program, vm.Pop(segment, index))
}

// WriteArithmetic writes one of add, sub, neg, eq, gt, lt, and, or, not.
func (w *VMWriter) WriteArithmetic(op vm.Command) {
	w.program = append(w.program, vm.Arithmetic(op))
}

func (w *VMWriter) WriteLabel(label string) {
	w.program = append(w.program, vm.Label(label))
}

func (w *VMWriter) WriteGoto(label string) {
	w.program = append(w.program, vm.Goto(label))
}

func (w *VMWriter) WriteIf(label string) {
	w.program = append(w.program, vm.IfGoto(label))
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.program = append(w.program, vm.Call(name, nArgs))
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.program = append(w.program, vm.Function(name, nLocals))
}

func (w *VMWriter) WriteReturn() {
	w.program = append(w.program, vm.Return())
}

func (w *VMWriter) Program() vm.Program {
	return w.program
}
