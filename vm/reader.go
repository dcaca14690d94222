package vm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaobogaga/jackvm/util"
)

// A reader for the textual VM language, used to load reference programs that compiler
// output is compared against. Keywords are matched case-insensitively, blank lines and
// `//` comments are ignored.

type keyWordTP int

const (
	commandKeyWordTP keyWordTP = iota
	segmentKeyWordTP
)

type keyWord struct {
	tp      keyWordTP
	command Command
	segment Segment
}

var keyWordsMap = map[string]keyWord{
	"PUSH":     {tp: commandKeyWordTP, command: PushCommand},
	"POP":      {tp: commandKeyWordTP, command: PopCommand},
	"ADD":      {tp: commandKeyWordTP, command: AddCommand},
	"SUB":      {tp: commandKeyWordTP, command: SubCommand},
	"NEG":      {tp: commandKeyWordTP, command: NegCommand},
	"EQ":       {tp: commandKeyWordTP, command: EqCommand},
	"GT":       {tp: commandKeyWordTP, command: GtCommand},
	"LT":       {tp: commandKeyWordTP, command: LtCommand},
	"AND":      {tp: commandKeyWordTP, command: AndCommand},
	"OR":       {tp: commandKeyWordTP, command: OrCommand},
	"NOT":      {tp: commandKeyWordTP, command: NotCommand},
	"LABEL":    {tp: commandKeyWordTP, command: LabelCommand},
	"IF-GOTO":  {tp: commandKeyWordTP, command: IfGotoCommand},
	"GOTO":     {tp: commandKeyWordTP, command: GotoCommand},
	"FUNCTION": {tp: commandKeyWordTP, command: FunctionCommand},
	"CALL":     {tp: commandKeyWordTP, command: CallCommand},
	"RETURN":   {tp: commandKeyWordTP, command: ReturnCommand},
	"ARGUMENT": {tp: segmentKeyWordTP, segment: ArgumentSegment},
	"LOCAL":    {tp: segmentKeyWordTP, segment: LocalSegment},
	"STATIC":   {tp: segmentKeyWordTP, segment: StaticSegment},
	"CONSTANT": {tp: segmentKeyWordTP, segment: ConstantSegment},
	"THIS":     {tp: segmentKeyWordTP, segment: ThisSegment},
	"THAT":     {tp: segmentKeyWordTP, segment: ThatSegment},
	"POINTER":  {tp: segmentKeyWordTP, segment: PointerSegment},
	"TEMP":     {tp: segmentKeyWordTP, segment: TempSegment},
}

// SyntaxError reports a malformed VM line.
type SyntaxError struct {
	Line int
	Near string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: syntax error near '%s' at line %d", e.Near, e.Line)
}

type lineParser struct {
	lineCounter int
}

// ReadProgram parses every instruction in rd.
func ReadProgram(rd io.Reader) (Program, error) {
	reader := bufio.NewReader(rd)
	var program Program
	for lineNo := 1; ; lineNo++ {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		ins, ok, parseErr := ParseLine(line)
		if parseErr != nil {
			var syntaxErr *SyntaxError
			if errors.As(parseErr, &syntaxErr) {
				syntaxErr.Line = lineNo
			}
			return nil, parseErr
		}
		if ok {
			program = append(program, ins)
		}
		if err == io.EOF {
			return program, nil
		}
	}
}

// ParseLine parses a single line. ok is false for blank and comment-only lines. Errors
// report line 1; ReadProgram replaces it with the line number in its input.
func ParseLine(line string) (ins Instruction, ok bool, err error) {
	parser := &lineParser{lineCounter: 1}
	return parser.parseLine([]byte(line))
}

// getNextToken returns the next whitespace separated token and the rest of the line.
func (parser *lineParser) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		if util.IsSpace(line[i]) {
			return string(line[:i]), line[i:]
		}
		// A comment may follow a token without a separating space.
		if i > 0 && line[i] == '/' && i+1 < len(line) && line[i+1] == '/' {
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

func (parser *lineParser) parseLine(line []byte) (ins Instruction, ok bool, err error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 {
		return ins, false, nil
	}
	if strings.HasPrefix(token, "//") {
		return ins, false, nil
	}
	kw, exist := keyWordsMap[strings.ToUpper(token)]
	if !exist || kw.tp != commandKeyWordTP {
		return ins, false, parser.makeError(token)
	}
	ins.Command = kw.command
	switch kw.command {
	case PushCommand, PopCommand:
		line, err = parser.parseSegmentIndex(&ins, line)
	case LabelCommand, GotoCommand, IfGotoCommand:
		ins.Name, line, err = parser.parseLabelName(line)
	case FunctionCommand, CallCommand:
		ins.Name, line, err = parser.parseLabelName(line)
		if err == nil {
			ins.Index, line, err = parser.getIntegerValue(line)
		}
	}
	if err != nil {
		return ins, false, err
	}
	if err = parser.parseRemainContent(line); err != nil {
		return ins, false, err
	}
	return ins, true, nil
}

func (parser *lineParser) parseSegmentIndex(ins *Instruction, line []byte) ([]byte, error) {
	token, line := parser.getNextToken(line)
	kw, exist := keyWordsMap[strings.ToUpper(token)]
	if !exist || kw.tp != segmentKeyWordTP {
		return nil, parser.makeError(token)
	}
	// Nothing can be stored into a constant.
	if ins.Command == PopCommand && kw.segment == ConstantSegment {
		return nil, parser.makeError(token)
	}
	ins.Segment = kw.segment
	var err error
	ins.Index, line, err = parser.getIntegerValue(line)
	return line, err
}

func (parser *lineParser) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 {
		return -1, nil, parser.makeError(token)
	}
	ret, err := strconv.Atoi(token)
	if err != nil || ret < 0 {
		return -1, nil, parser.makeError(token)
	}
	return ret, line, nil
}

func (parser *lineParser) parseLabelName(line []byte) (string, []byte, error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 || !util.IsLabelStart(token[0]) {
		return "", nil, parser.makeError(token)
	}
	for i := 1; i < len(token); i++ {
		if !util.IsLabelPart(token[i]) {
			return "", nil, parser.makeError(token)
		}
	}
	return token, line, nil
}

func (parser *lineParser) parseRemainContent(line []byte) error {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 {
		return nil
	}
	// Ignore comment
	if len(remain) >= 2 && remain[0] == '/' && remain[1] == '/' {
		return nil
	}
	return parser.makeError(string(remain))
}

func (parser *lineParser) makeError(near string) error {
	return &SyntaxError{Line: parser.lineCounter, Near: near}
}
