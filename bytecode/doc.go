// Package bytecode provides the immutable representation of compiled Rascal
// programs.
//
// The compiler produces a [Code]: a flat, ordered list of MEPA instructions
// together with the positions of every label marker and a source location
// per instruction. A Code is created once and may be shared safely across
// goroutines and VM instances.
//
// # Key Types
//
//   - [Code]: an immutable compiled program
//   - [Instruction]: one opcode with its integer operands (value type)
//   - [Label]: a symbolic branch or call target (value type)
//   - [SourceLocation]: maps an instruction back to source (value type)
//
// # Immutability Guarantees
//
// No mutation methods exist on Code. Its constructor copies the input slices
// and its accessors return copies, so callers cannot alter compiled code.
//
// # Text Form
//
// Instruction.String renders the external artifact format: mnemonic then
// operands separated by ", "; label markers render as "L<id>: NOOP" and
// label operands as "L<id>".
//
//	INPP
//	AMEM 1
//	CRCT 1
//	ARMZ 0, 0
//	DMEM 1
//	PARA
package bytecode
