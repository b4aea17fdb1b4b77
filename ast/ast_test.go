package ast

import (
	"testing"

	"github.com/rascal-lang/rascalc/internal/token"
	"github.com/stretchr/testify/require"
)

func ident(name string, line, col int) *Ident {
	return &Ident{NamePos: token.Position{Line: line, Column: col}, Name: name}
}

// program p; var x: integer; begin x := 1 + 2; write(x) end.
func sampleProgram() *Program {
	return &Program{
		ProgramPos: token.Position{},
		Name:       ident("p", 0, 8),
		Block: &Block{
			Vars: []*VarDecl{{
				Names: []*Ident{ident("x", 1, 4)},
				Type:  ident("integer", 1, 7),
			}},
			Body: &Compound{
				Begin: token.Position{Line: 2},
				Stmts: []Stmt{
					&Assign{
						Name: ident("x", 3, 2),
						Value: &Infix{
							X:  &Int{ValuePos: token.Position{Line: 3, Column: 7}, Literal: "1", Value: 1},
							Op: "+",
							Y:  &Int{ValuePos: token.Position{Line: 3, Column: 11}, Literal: "2", Value: 2},
						},
					},
					&Write{
						WritePos: token.Position{Line: 4, Column: 2},
						Args:     []Expr{ident("x", 4, 8)},
						Rparen:   token.Position{Line: 4, Column: 9},
					},
				},
				EndPos: token.Position{Line: 5},
			},
		},
		Period: token.Position{Line: 5, Column: 3},
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "program p;\nvar x: integer; \nbegin x := (1 + 2); write(x) end.", sampleProgram().String())
}

func TestDeclarationStrings(t *testing.T) {
	fn := &Function{
		Name: ident("f", 0, 9),
		Params: []*ParamGroup{
			{ByRef: true, Names: []*Ident{ident("a", 0, 15), ident("b", 0, 18)}, Type: ident("integer", 0, 21)},
			{Names: []*Ident{ident("c", 0, 30)}, Type: ident("boolean", 0, 33)},
		},
		Result: ident("integer", 0, 43),
		Block:  &Block{Body: &Compound{Stmts: []Stmt{&Assign{Name: ident("f", 1, 0), Value: ident("a", 1, 5)}}}},
	}
	require.Equal(t, "function f(var a, b: integer; c: boolean): integer;\nbegin f := a end", fn.String())
	require.Equal(t, 3, ParamCount(fn.Params))
	require.Equal(t, "f", fn.Ident().Name)
	require.Len(t, fn.ParamGroups(), 2)
	require.Same(t, fn.Block, fn.Body())

	proc := &Procedure{Name: ident("p", 0, 10), Block: &Block{Body: &Compound{}}}
	require.Equal(t, "procedure p;\nbegin  end", proc.String())
	require.Equal(t, 0, ParamCount(proc.Params))
}

func TestStatementStrings(t *testing.T) {
	cond := &Infix{X: ident("i", 0, 0), Op: "<", Y: &Int{Literal: "10", Value: 10}}
	tests := []struct {
		stmt     Stmt
		expected string
	}{
		{&If{Cond: &Bool{Literal: "true", Value: true}, Consequence: &CallStmt{Call: &Call{Fn: ident("p", 0, 0)}}}, "if true then p()"},
		{&If{Cond: cond, Consequence: &Compound{}, Alternative: &Read{Names: []*Ident{ident("a", 0, 0), ident("b", 0, 0)}}}, "if (i < 10) then begin  end else read(a, b)"},
		{&While{Cond: &Prefix{Op: "not", X: ident("done", 0, 0)}, Body: &Write{Args: []Expr{&Prefix{Op: "-", X: ident("i", 0, 0)}}}}, "while (not done) do write((-i))"},
		{&CallStmt{Call: &Call{Fn: ident("q", 0, 0), Args: []Expr{&Paren{X: ident("x", 0, 0)}, &Int{Literal: "3"}}}}, "q((x), 3)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.stmt.String())
	}
}

func TestPositions(t *testing.T) {
	prog := sampleProgram()
	require.Equal(t, token.Position{}, prog.Pos())
	require.Equal(t, 4, prog.End().Column)

	assign := prog.Block.Body.Stmts[0].(*Assign)
	require.Equal(t, 2, assign.Pos().Column)
	require.Equal(t, 12, assign.End().Column)

	write := prog.Block.Body.Stmts[1].(*Write)
	require.Equal(t, 10, write.End().Column)

	require.Equal(t, 3, prog.Block.Body.End().Column)
	require.Equal(t, prog.Block.Vars[0].Pos(), prog.Block.Pos())

	byRef := &ParamGroup{VarPos: token.Position{Column: 2}, ByRef: true, Names: []*Ident{ident("a", 0, 6)}, Type: ident("integer", 0, 9)}
	require.Equal(t, 2, byRef.Pos().Column)
	byVal := &ParamGroup{Names: []*Ident{ident("a", 0, 6)}, Type: ident("integer", 0, 9)}
	require.Equal(t, 6, byVal.Pos().Column)

	bare := &Call{Fn: ident("p", 0, 4)}
	require.Equal(t, 5, bare.End().Column)
	withParens := &Call{Fn: ident("p", 0, 4), Lparen: token.Position{Column: 5}, Rparen: token.Position{Column: 6}}
	require.Equal(t, 7, withParens.End().Column)
}

func TestUnparen(t *testing.T) {
	x := ident("x", 0, 0)
	require.Same(t, x, Unparen(&Paren{X: &Paren{X: x}}))
	require.Same(t, x, Unparen(x))
	inner := &Infix{X: x, Op: "+", Y: x}
	require.Same(t, inner, Unparen(&Paren{X: inner}))
}
