package bytecode

import "github.com/rascal-lang/rascalc/op"

// Stats contains statistics about compiled code.
type Stats struct {
	// InstructionCount is the total number of instructions, label markers
	// included.
	InstructionCount int

	// LabelCount is the number of label markers.
	LabelCount int

	// SubroutineCount is the number of procedures and functions.
	SubroutineCount int

	// GlobalCount is the number of cells reserved by the main program.
	GlobalCount int

	// SourceBytes is the size of the original source code in bytes.
	SourceBytes int
}

// Stats returns statistics about the compiled code.
func (c *Code) Stats() Stats {
	stats := Stats{
		InstructionCount: len(c.instructions),
		LabelCount:       len(c.labels),
		SourceBytes:      len(c.source),
	}
	for i, instr := range c.instructions {
		switch instr.Opcode {
		case op.EnterProcedure:
			stats.SubroutineCount++
		case op.Alloc:
			if i == 1 {
				stats.GlobalCount = instr.Operands[0]
			}
		}
	}
	return stats
}
