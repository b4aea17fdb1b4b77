// Package op defines the instruction set of the MEPA stack machine targeted
// by the Rascal compiler.
//
// Each opcode has a fixed mnemonic, used when rendering compiled code as
// text, and a fixed list of operands. Operands are either plain integers
// (values, sizes, lexical levels, slot offsets) or label ids.
package op

import "sort"

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Program and subroutine frames
	EnterProgram   Code = 1 // INPP
	Halt           Code = 2 // PARA
	EnterProcedure Code = 3 // ENPR level
	Return         Code = 4 // RTPR level, paramCount
	Call           Code = 5 // CHPR label, callerLevel

	// Memory
	Alloc   Code = 10 // AMEM n
	Dealloc Code = 11 // DMEM n

	// Load and store
	LoadConst     Code = 20 // CRCT value
	LoadValue     Code = 21 // CRVL level, index
	StoreValue    Code = 22 // ARMZ level, index
	LoadAddress   Code = 23 // CREN level, index
	LoadIndirect  Code = 24 // CRVI level, index
	StoreIndirect Code = 25 // ARMI level, index

	// Arithmetic
	Add    Code = 30 // SOMA
	Sub    Code = 31 // SUBT
	Mul    Code = 32 // MULT
	Div    Code = 33 // DIVI
	Negate Code = 34 // INVR

	// Logic
	Not Code = 40 // NEGA
	And Code = 41 // CONJ
	Or  Code = 42 // DISJ

	// Comparison
	Equal        Code = 50 // CMIG
	NotEqual     Code = 51 // CMDG
	Less         Code = 52 // CMME
	LessEqual    Code = 53 // CMEG
	Greater      Code = 54 // CMMA
	GreaterEqual Code = 55 // CMAG

	// Input and output
	Read  Code = 60 // LEIT
	Print Code = 61 // IMPR

	// Control flow
	Jump        Code = 70 // DSVS label
	JumpIfFalse Code = 71 // DSVF label
	Label       Code = 72 // L<id>: NOOP
)

// OperandKind describes how an operand is interpreted.
type OperandKind uint8

const (
	// Int is a plain integer operand.
	Int OperandKind = iota
	// LabelRef is a label id, resolved to a position when the code runs.
	LabelRef
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Operands     []OperandKind
}

// HasLabel returns true if any operand of the opcode refers to a label.
func (i Info) HasLabel() bool {
	for _, k := range i.Operands {
		if k == LabelRef {
			return true
		}
	}
	return false
}

var (
	infos  = make([]Info, 256)
	byName = map[string]Code{}
)

func init() {
	type opInfo struct {
		op       Code
		name     string
		operands []OperandKind
	}
	ops := []opInfo{
		{EnterProgram, "INPP", nil},
		{Halt, "PARA", nil},
		{EnterProcedure, "ENPR", []OperandKind{Int}},
		{Return, "RTPR", []OperandKind{Int, Int}},
		{Call, "CHPR", []OperandKind{LabelRef, Int}},
		{Alloc, "AMEM", []OperandKind{Int}},
		{Dealloc, "DMEM", []OperandKind{Int}},
		{LoadConst, "CRCT", []OperandKind{Int}},
		{LoadValue, "CRVL", []OperandKind{Int, Int}},
		{StoreValue, "ARMZ", []OperandKind{Int, Int}},
		{LoadAddress, "CREN", []OperandKind{Int, Int}},
		{LoadIndirect, "CRVI", []OperandKind{Int, Int}},
		{StoreIndirect, "ARMI", []OperandKind{Int, Int}},
		{Add, "SOMA", nil},
		{Sub, "SUBT", nil},
		{Mul, "MULT", nil},
		{Div, "DIVI", nil},
		{Negate, "INVR", nil},
		{Not, "NEGA", nil},
		{And, "CONJ", nil},
		{Or, "DISJ", nil},
		{Equal, "CMIG", nil},
		{NotEqual, "CMDG", nil},
		{Less, "CMME", nil},
		{LessEqual, "CMEG", nil},
		{Greater, "CMMA", nil},
		{GreaterEqual, "CMAG", nil},
		{Read, "LEIT", nil},
		{Print, "IMPR", nil},
		{Jump, "DSVS", []OperandKind{LabelRef}},
		{JumpIfFalse, "DSVF", []OperandKind{LabelRef}},
		{Label, "NOOP", []OperandKind{LabelRef}},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: len(o.operands),
			Operands:     o.operands,
		}
		byName[o.name] = o.op
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// Lookup returns the opcode with the given mnemonic.
func Lookup(mnemonic string) (Code, bool) {
	code, ok := byName[mnemonic]
	return code, ok
}

// Mnemonics returns every mnemonic in sorted order.
func Mnemonics() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the mnemonic of the opcode.
func (c Code) String() string {
	if int(c) < len(infos) && infos[c].Name != "" {
		return infos[c].Name
	}
	return "INVALID"
}
