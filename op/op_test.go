package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(Call)
	require.Equal(t, "CHPR", info.Name)
	require.Equal(t, 2, info.OperandCount)
	require.Equal(t, Call, info.Code)
	require.Equal(t, []OperandKind{LabelRef, Int}, info.Operands)
	require.True(t, info.HasLabel())
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
		label    bool
	}{
		{EnterProgram, "INPP", 0, false},
		{Halt, "PARA", 0, false},
		{EnterProcedure, "ENPR", 1, false},
		{Return, "RTPR", 2, false},
		{Call, "CHPR", 2, true},
		{Alloc, "AMEM", 1, false},
		{Dealloc, "DMEM", 1, false},
		{LoadConst, "CRCT", 1, false},
		{LoadValue, "CRVL", 2, false},
		{StoreValue, "ARMZ", 2, false},
		{LoadAddress, "CREN", 2, false},
		{LoadIndirect, "CRVI", 2, false},
		{StoreIndirect, "ARMI", 2, false},
		{Add, "SOMA", 0, false},
		{Sub, "SUBT", 0, false},
		{Mul, "MULT", 0, false},
		{Div, "DIVI", 0, false},
		{Negate, "INVR", 0, false},
		{Not, "NEGA", 0, false},
		{And, "CONJ", 0, false},
		{Or, "DISJ", 0, false},
		{Equal, "CMIG", 0, false},
		{NotEqual, "CMDG", 0, false},
		{Less, "CMME", 0, false},
		{LessEqual, "CMEG", 0, false},
		{Greater, "CMMA", 0, false},
		{GreaterEqual, "CMAG", 0, false},
		{Read, "LEIT", 0, false},
		{Print, "IMPR", 0, false},
		{Jump, "DSVS", 1, true},
		{JumpIfFalse, "DSVF", 1, true},
		{Label, "NOOP", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.operands, info.OperandCount)
			require.Equal(t, tt.label, info.HasLabel())
			require.Equal(t, tt.name, tt.code.String())

			code, ok := Lookup(tt.name)
			require.True(t, ok)
			require.Equal(t, tt.code, code)
		})
	}
	require.Len(t, Mnemonics(), len(tests))
}

func TestInvalid(t *testing.T) {
	require.Equal(t, "INVALID", Invalid.String())
	require.Equal(t, "INVALID", Code(999).String())
	require.Equal(t, "", GetInfo(Invalid).Name)
	_, ok := Lookup("NADA")
	require.False(t, ok)
}
