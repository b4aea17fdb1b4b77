package compiler

import (
	"fmt"

	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/op"
)

// Code is the append-only instruction buffer of one compilation. Each
// instruction is recorded with the source location that was current when
// it was emitted.
type Code struct {
	name         string
	filename     string
	source       string
	instructions []bytecode.Instruction
	locations    []bytecode.SourceLocation

	// location attached to instructions emitted from now on
	loc bytecode.SourceLocation
}

func newCode(filename, source string) *Code {
	return &Code{filename: filename, source: source}
}

// Emit appends an instruction and returns its position.
func (c *Code) Emit(opcode op.Code, operands ...int) int {
	info := op.GetInfo(opcode)
	if info.Name == "" || len(operands) != info.OperandCount {
		panic(fmt.Sprintf("compile error: wrong operand count for %s (got %d)", opcode, len(operands)))
	}
	pos := len(c.instructions)
	c.instructions = append(c.instructions, bytecode.NewInstruction(opcode, operands...))
	c.locations = append(c.locations, c.loc)
	return pos
}

// Len returns the number of instructions emitted so far.
func (c *Code) Len() int {
	return len(c.instructions)
}

// Instructions returns the instructions emitted so far.
func (c *Code) Instructions() []bytecode.Instruction {
	return c.instructions
}

func (c *Code) setLocation(loc bytecode.SourceLocation) {
	c.loc = loc
}

// ToBytecode freezes the buffer into immutable bytecode.
func (c *Code) ToBytecode() *bytecode.Code {
	return bytecode.NewCode(bytecode.CodeParams{
		Name:         c.name,
		Filename:     c.filename,
		Source:       c.source,
		Instructions: c.instructions,
		Locations:    c.locations,
	})
}
