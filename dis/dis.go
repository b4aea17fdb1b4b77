// Package dis renders compiled MEPA code as text and reads it back.
//
// The text form has one instruction per line: the mnemonic followed by its
// operands separated by ", ". Label markers are written "L<id>: NOOP" and
// label operands "L<id>":
//
//	INPP
//	AMEM 1
//	DSVS L0
//	L0: NOOP
//	CHPR L1, 0
package dis

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/internal/table"
	"github.com/rascal-lang/rascalc/op"
)

// Print writes code in the text form.
func Print(w io.Writer, code *bytecode.Code) error {
	bw := bufio.NewWriter(w)
	for _, instr := range code.Instructions() {
		if _, err := bw.WriteString(instr.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseError reports a line of text that is not a valid instruction.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: line %d: %s: %q", e.Line, e.Message, e.Text)
}

// Parse reads the text form into code. Blank lines and lines starting with
// '#' are ignored. The result has no source locations.
func Parse(r io.Reader) (*bytecode.Code, error) {
	var instructions []bytecode.Instruction
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		instr, err := parseInstruction(text)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: text, Message: err.Error()}
		}
		instructions = append(instructions, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: instructions})
	if err := code.Validate(); err != nil {
		return nil, err
	}
	return code, nil
}

// ParseString is like Parse but reads from a string.
func ParseString(text string) (*bytecode.Code, error) {
	return Parse(strings.NewReader(text))
}

func parseInstruction(text string) (bytecode.Instruction, error) {
	// Label marker: "L3: NOOP"
	if name, rest, ok := strings.Cut(text, ":"); ok {
		label, err := parseLabel(strings.TrimSpace(name))
		if err != nil {
			return bytecode.Instruction{}, err
		}
		if mnemonic := strings.TrimSpace(rest); mnemonic != op.Label.String() {
			return bytecode.Instruction{}, fmt.Errorf("expected %s after label, got %q", op.Label, mnemonic)
		}
		return bytecode.NewInstruction(op.Label, int(label)), nil
	}

	mnemonic, rest, _ := strings.Cut(text, " ")
	opcode, ok := op.Lookup(mnemonic)
	if !ok || opcode == op.Label {
		return bytecode.Instruction{}, fmt.Errorf("unknown instruction %q", mnemonic)
	}
	info := op.GetInfo(opcode)
	var fields []string
	if rest = strings.TrimSpace(rest); rest != "" {
		fields = strings.Split(rest, ",")
	}
	if len(fields) != info.OperandCount {
		return bytecode.Instruction{}, fmt.Errorf("%s takes %d operand(s), got %d", mnemonic, info.OperandCount, len(fields))
	}
	operands := make([]int, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if info.Operands[i] == op.LabelRef {
			label, err := parseLabel(field)
			if err != nil {
				return bytecode.Instruction{}, err
			}
			operands[i] = int(label)
			continue
		}
		value, err := strconv.Atoi(field)
		if err != nil {
			return bytecode.Instruction{}, fmt.Errorf("invalid operand %q", field)
		}
		operands[i] = value
	}
	return bytecode.NewInstruction(opcode, operands...), nil
}

func parseLabel(text string) (bytecode.Label, error) {
	if !strings.HasPrefix(text, "L") {
		return 0, fmt.Errorf("invalid label %q", text)
	}
	id, err := strconv.Atoi(text[1:])
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid label %q", text)
	}
	return bytecode.Label(id), nil
}

var (
	colorOpcode = color.New(color.FgCyan)
	colorLabel  = color.New(color.FgYellow)
)

// PrintListing writes code as a table with the position, opcode, operands
// and source location of each instruction. Opcodes and labels are coloured
// when useColor is set.
func PrintListing(w io.Writer, code *bytecode.Code, useColor bool) error {
	paint := func(c *color.Color, s string) string {
		if !useColor {
			return s
		}
		return c.Sprint(s)
	}
	t := table.NewTable(w).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "SOURCE"}).
		WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignLeft}).
		WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter})
	for i, instr := range code.Instructions() {
		var opcode, operands string
		if instr.IsLabel() {
			opcode = paint(colorLabel, bytecode.Label(instr.Operands[0]).String()+":")
			operands = op.Label.String()
		} else {
			text := instr.String()
			mnemonic, rest, _ := strings.Cut(text, " ")
			opcode = paint(colorOpcode, mnemonic)
			operands = rest
		}
		source := ""
		if loc := code.LocationAt(i); !loc.IsZero() {
			source = loc.String()
		}
		t.Append([]string{strconv.Itoa(i), opcode, operands, source})
	}
	return t.Render()
}
