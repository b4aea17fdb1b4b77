package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rascal-lang/rascalc/op"
)

// Label is a symbolic instruction position. Labels are numbered from 0 in
// allocation order and rendered as "L<id>".
type Label int

// String returns the label's text form, e.g. "L3".
func (l Label) String() string {
	return "L" + strconv.Itoa(int(l))
}

// Instruction is a single MEPA instruction. Operands whose kind is
// op.LabelRef hold label ids.
type Instruction struct {
	Opcode   op.Code
	Operands []int
}

// NewInstruction creates an instruction, copying the operands.
func NewInstruction(opcode op.Code, operands ...int) Instruction {
	return Instruction{Opcode: opcode, Operands: append([]int(nil), operands...)}
}

// IsLabel returns true if the instruction is a label marker.
func (i Instruction) IsLabel() bool {
	return i.Opcode == op.Label
}

// String renders the instruction in the text artifact format.
func (i Instruction) String() string {
	info := op.GetInfo(i.Opcode)
	if i.IsLabel() && len(i.Operands) == 1 {
		return Label(i.Operands[0]).String() + ": " + info.Name
	}
	if len(i.Operands) == 0 {
		return info.Name
	}
	parts := make([]string, len(i.Operands))
	for n, operand := range i.Operands {
		if n < len(info.Operands) && info.Operands[n] == op.LabelRef {
			parts[n] = Label(operand).String()
		} else {
			parts[n] = strconv.Itoa(operand)
		}
	}
	return info.Name + " " + strings.Join(parts, ", ")
}

// Equal reports whether two instructions have the same opcode and operands.
func (i Instruction) Equal(other Instruction) bool {
	if i.Opcode != other.Opcode || len(i.Operands) != len(other.Operands) {
		return false
	}
	for n := range i.Operands {
		if i.Operands[n] != other.Operands[n] {
			return false
		}
	}
	return true
}

// Code represents a compiled program. It is immutable after creation and
// safe for concurrent use.
type Code struct {
	name         string
	filename     string
	source       string
	instructions []Instruction

	// Source map: one location per instruction for error reporting. May be
	// empty for code that was not produced from source, e.g. parsed text.
	locations []SourceLocation

	// Position of each label marker, keyed by label id
	labels map[Label]int
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name         string
	Filename     string
	Source       string
	Instructions []Instruction
	Locations    []SourceLocation
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied to ensure immutability.
func NewCode(params CodeParams) *Code {
	instructions := make([]Instruction, len(params.Instructions))
	labels := map[Label]int{}
	for i, instr := range params.Instructions {
		instructions[i] = NewInstruction(instr.Opcode, instr.Operands...)
		if instr.IsLabel() && len(instr.Operands) == 1 {
			if _, exists := labels[Label(instr.Operands[0])]; !exists {
				labels[Label(instr.Operands[0])] = i
			}
		}
	}
	var locations []SourceLocation
	if len(params.Locations) > 0 {
		locations = make([]SourceLocation, len(params.Locations))
		copy(locations, params.Locations)
	}
	return &Code{
		name:         params.Name,
		filename:     params.Filename,
		source:       params.Source,
		instructions: instructions,
		locations:    locations,
		labels:       labels,
	}
}

// Name returns the program name.
func (c *Code) Name() string {
	return c.name
}

// Filename returns the name of the source file, if known.
func (c *Code) Filename() string {
	return c.filename
}

// Source returns the source text the code was compiled from, if known.
func (c *Code) Source() string {
	return c.source
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given position.
func (c *Code) InstructionAt(index int) Instruction {
	instr := c.instructions[index]
	return NewInstruction(instr.Opcode, instr.Operands...)
}

// Instructions returns a copy of all instructions in order.
func (c *Code) Instructions() []Instruction {
	out := make([]Instruction, len(c.instructions))
	for i := range c.instructions {
		out[i] = c.InstructionAt(i)
	}
	return out
}

// LocationAt returns the source location of the instruction at ip, or the
// zero location when none was recorded.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[ip]
}

// LabelPosition returns the instruction position of the marker for label.
func (c *Code) LabelPosition(label Label) (int, bool) {
	pos, ok := c.labels[label]
	return pos, ok
}

// LabelCount returns the number of distinct placed labels.
func (c *Code) LabelCount() int {
	return len(c.labels)
}

// GetSourceLine returns the 1-indexed line of source text, or "" if the
// source is unknown or the line is out of range.
func (c *Code) GetSourceLine(lineNum int) string {
	if c.source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[lineNum-1], "\r")
}

// Validate checks that every instruction is known and has the right number
// of operands, that each label is placed exactly once, and that every label
// operand refers to a placed label.
func (c *Code) Validate() error {
	placed := map[Label]int{}
	for i, instr := range c.instructions {
		info := op.GetInfo(instr.Opcode)
		if info.Name == "" {
			return fmt.Errorf("instruction %d: invalid opcode %d", i, instr.Opcode)
		}
		if len(instr.Operands) != info.OperandCount {
			return fmt.Errorf("instruction %d: %s expects %d operands (got %d)",
				i, info.Name, info.OperandCount, len(instr.Operands))
		}
		if instr.IsLabel() {
			label := Label(instr.Operands[0])
			if prev, dup := placed[label]; dup {
				return fmt.Errorf("instruction %d: label %s already placed at instruction %d", i, label, prev)
			}
			placed[label] = i
		}
	}
	for i, instr := range c.instructions {
		if instr.IsLabel() {
			continue
		}
		info := op.GetInfo(instr.Opcode)
		for n, kind := range info.Operands {
			if kind != op.LabelRef {
				continue
			}
			if _, ok := placed[Label(instr.Operands[n])]; !ok {
				return fmt.Errorf("instruction %d: %s refers to unplaced label %s",
					i, info.Name, Label(instr.Operands[n]))
			}
		}
	}
	return nil
}

// String renders the whole program, one instruction per line.
func (c *Code) String() string {
	var b strings.Builder
	for _, instr := range c.instructions {
		b.WriteString(instr.String())
		b.WriteString("\n")
	}
	return b.String()
}
