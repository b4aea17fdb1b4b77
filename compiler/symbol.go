package compiler

import (
	"slices"

	"github.com/rascal-lang/rascalc/bytecode"
	"github.com/rascal-lang/rascalc/types"
)

// SymbolKind indicates what a name was declared as.
type SymbolKind uint8

const (
	Variable SymbolKind = iota
	Procedure
	Function
	ProgramName
)

func (k SymbolKind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Procedure:
		return "procedure"
	case Function:
		return "function"
	case ProgramName:
		return "program"
	default:
		return "unknown"
	}
}

// ParamDescriptor describes one formal parameter of a callable, in
// declaration order.
type ParamDescriptor struct {
	Type  types.Type
	ByRef bool
	Level int
	Index int
}

// Symbol is a declared name. Variables (including parameters) use Type,
// Level and Index to address their slot. Callables use Label and Params;
// a function's Type is its result type.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    types.Type
	Level   int
	Index   int
	IsParam bool
	ByRef   bool
	Label   bytecode.Label
	Params  []ParamDescriptor
}

// IsCallable returns true for procedures and functions.
func (s *Symbol) IsCallable() bool {
	return s.Kind == Procedure || s.Kind == Function
}

// ReturnIndex is the slot a function's result is written to, relative to
// its body frame. It is the cell reserved by the caller's AMEM 1, directly
// below the first parameter.
func (s *Symbol) ReturnIndex() int {
	return -(len(s.Params) + 4)
}

// Equal reports whether two symbols describe the same declaration.
func (s *Symbol) Equal(other *Symbol) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name &&
		s.Kind == other.Kind &&
		s.Type == other.Type &&
		s.Level == other.Level &&
		s.Index == other.Index &&
		s.IsParam == other.IsParam &&
		s.ByRef == other.ByRef &&
		s.Label == other.Label &&
		slices.Equal(s.Params, other.Params)
}

// paramIndex returns the frame offset of parameter position (0-based) of a
// callable with count parameters. The frame built by CHPR and ENPR reads,
// from the base downward: saved display (-1), caller level (-2), return
// address (-3), then the parameters with the last one at -4.
func paramIndex(position, count int) int {
	return -3 - (count - position)
}
