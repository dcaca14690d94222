package vm

import (
	"bytes"
	"io"
	"strconv"
)

// The stack machine understands four kinds of commands:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function name nLocals, call name nArgs, return.

type Segment int

const (
	ConstantSegment Segment = iota
	ArgumentSegment
	LocalSegment
	StaticSegment
	ThisSegment
	ThatSegment
	PointerSegment
	TempSegment
)

var segmentNames = [...]string{
	ConstantSegment: "constant",
	ArgumentSegment: "argument",
	LocalSegment:    "local",
	StaticSegment:   "static",
	ThisSegment:     "this",
	ThatSegment:     "that",
	PointerSegment:  "pointer",
	TempSegment:     "temp",
}

func (s Segment) String() string {
	if s < 0 || int(s) >= len(segmentNames) {
		return "segment(" + strconv.Itoa(int(s)) + ")"
	}
	return segmentNames[s]
}

type Command int

const (
	PushCommand Command = iota
	PopCommand
	AddCommand
	SubCommand
	NegCommand
	EqCommand
	GtCommand
	LtCommand
	AndCommand
	OrCommand
	NotCommand
	LabelCommand
	GotoCommand
	IfGotoCommand
	FunctionCommand
	CallCommand
	ReturnCommand
)

var commandNames = [...]string{
	PushCommand:     "push",
	PopCommand:      "pop",
	AddCommand:      "add",
	SubCommand:      "sub",
	NegCommand:      "neg",
	EqCommand:       "eq",
	GtCommand:       "gt",
	LtCommand:       "lt",
	AndCommand:      "and",
	OrCommand:       "or",
	NotCommand:      "not",
	LabelCommand:    "label",
	GotoCommand:     "goto",
	IfGotoCommand:   "if-goto",
	FunctionCommand: "function",
	CallCommand:     "call",
	ReturnCommand:   "return",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "command(" + strconv.Itoa(int(c)) + ")"
	}
	return commandNames[c]
}

// IsArithmetic reports whether c is one of the nine operand-less stack operations.
func (c Command) IsArithmetic() bool {
	return c >= AddCommand && c <= NotCommand
}

// Instruction is one line of VM code. Which operands are meaningful depends on Command:
// push/pop use Segment and Index, label/goto/if-goto use Name, function uses Name and
// Index as the local count, call uses Name and Index as the argument count.
type Instruction struct {
	Command Command
	Segment Segment
	Name    string
	Index   int
}

func Push(segment Segment, index int) Instruction {
	return Instruction{Command: PushCommand, Segment: segment, Index: index}
}

func Pop(segment Segment, index int) Instruction {
	return Instruction{Command: PopCommand, Segment: segment, Index: index}
}

func Arithmetic(op Command) Instruction {
	return Instruction{Command: op}
}

func Label(name string) Instruction {
	return Instruction{Command: LabelCommand, Name: name}
}

func Goto(name string) Instruction {
	return Instruction{Command: GotoCommand, Name: name}
}

func IfGoto(name string) Instruction {
	return Instruction{Command: IfGotoCommand, Name: name}
}

func Function(name string, nLocals int) Instruction {
	return Instruction{Command: FunctionCommand, Name: name, Index: nLocals}
}

func Call(name string, nArgs int) Instruction {
	return Instruction{Command: CallCommand, Name: name, Index: nArgs}
}

func Return() Instruction {
	return Instruction{Command: ReturnCommand}
}

func (i Instruction) String() string {
	switch c := i.Command; {
	case c.IsArithmetic(), c == ReturnCommand:
		return c.String()
	case c == PushCommand, c == PopCommand:
		return c.String() + " " + i.Segment.String() + " " + strconv.Itoa(i.Index)
	case c == LabelCommand, c == GotoCommand, c == IfGotoCommand:
		return c.String() + " " + i.Name
	case c == FunctionCommand, c == CallCommand:
		return c.String() + " " + i.Name + " " + strconv.Itoa(i.Index)
	default:
		return c.String()
	}
}

// Program is an ordered instruction sequence; order is significant.
type Program []Instruction

// String renders one instruction per line, every line terminated by '\n'.
func (p Program) String() string {
	buf := bytes.Buffer{}
	for _, ins := range p {
		buf.WriteString(ins.String())
		buf.WriteByte('\n')
	}
	return buf.String()
}

func (p Program) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.String())
	return int64(n), err
}

// Functions returns the names declared by function commands, in order.
func (p Program) Functions() []string {
	var names []string
	for _, ins := range p {
		if ins.Command == FunctionCommand {
			names = append(names, ins.Name)
		}
	}
	return names
}
