package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rascal-lang/rascalc/ast"
	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/stretchr/testify/require"
)

func parseErrors(t *testing.T, input string, opts ...Option) *Errors {
	t.Helper()
	program, err := Parse(context.Background(), input, opts...)
	require.Nil(t, program)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok, "expected *Errors, got %T", err)
	return errs
}

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	program, err := Parse(context.Background(), "program p; begin x := "+input+" end.")
	require.Nil(t, err)
	stmts := program.Block.Body.Stmts
	require.Len(t, stmts, 1)
	assign, ok := stmts[0].(*ast.Assign)
	require.True(t, ok)
	return assign.Value
}

func TestParseProgram(t *testing.T) {
	input := `program demo;
var a, b: integer;
    ok: boolean;
procedure swap(var x, y: integer);
var t: integer;
begin
  t := x; x := y; y := t
end;
function double(n: integer): integer;
begin
  double := n * 2
end;
begin
  read(a, b);
  swap(a, b);
  ok := double(a) > b;
  if ok then write(a) else write(b, 0)
end.`
	program, err := Parse(context.Background(), input)
	require.Nil(t, err)
	require.Equal(t, "demo", program.Name.Name)

	block := program.Block
	require.Len(t, block.Vars, 2)
	require.Len(t, block.Vars[0].Names, 2)
	require.Equal(t, "integer", block.Vars[0].Type.Name)
	require.Equal(t, "ok", block.Vars[1].Names[0].Name)

	require.Len(t, block.Subroutines, 2)
	swap, ok := block.Subroutines[0].(*ast.Procedure)
	require.True(t, ok)
	require.Equal(t, "swap", swap.Name.Name)
	require.Len(t, swap.Params, 1)
	require.True(t, swap.Params[0].ByRef)
	require.Equal(t, 2, ast.ParamCount(swap.Params))
	require.Len(t, swap.Block.Vars, 1)
	require.Len(t, swap.Block.Body.Stmts, 3)

	double, ok := block.Subroutines[1].(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "integer", double.Result.Name)
	require.False(t, double.Params[0].ByRef)

	stmts := block.Body.Stmts
	require.Len(t, stmts, 4)
	require.IsType(t, &ast.Read{}, stmts[0])
	require.IsType(t, &ast.CallStmt{}, stmts[1])
	require.Equal(t, "ok := (double(a) > b)", stmts[2].String())
	ifStmt, ok := stmts[3].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Alternative)
	require.Equal(t, "write(b, 0)", ifStmt.Alternative.String())

	// Positions are 0-indexed internally
	require.Equal(t, 13, stmts[0].Pos().Line)
	require.Equal(t, 2, stmts[0].Pos().Column)
	require.Equal(t, 17, program.Period.Line)
	require.Equal(t, 3, program.Period.Column)
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 div 2 div 2", "((8 div 2) div 2)"},
		{"a or b and c", "(a or (b and c))"},
		{"a < b + 1", "(a < (b + 1))"},
		{"a + 1 = b", "((a + 1) = b)"},
		{"-a * b", "((-a) * b)"},
		{"not a and b", "((not a) and b)"},
		{"not not a", "(not (not a))"},
		{"(1 + 2) * 3", "(((1 + 2)) * 3)"},
		{"f(1, x) div 2", "(f(1, x) div 2)"},
		{"a <> b", "(a <> b)"},
		{"a >= b", "(a >= b)"},
		{"true", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, parseExpr(t, tt.input).String())
		})
	}
}

func TestIntegerLiteral(t *testing.T) {
	expr := parseExpr(t, "42")
	lit, ok := expr.(*ast.Int)
	require.True(t, ok)
	require.Equal(t, int64(42), lit.Value)
	require.Equal(t, "42", lit.Literal)
}

func TestCallStatementForms(t *testing.T) {
	program, err := Parse(context.Background(), "program p; begin q; q(); q(1, x + 1) end.")
	require.Nil(t, err)
	stmts := program.Block.Body.Stmts
	require.Len(t, stmts, 3)
	for i, expectedArgs := range []int{0, 0, 2} {
		call, ok := stmts[i].(*ast.CallStmt)
		require.True(t, ok)
		require.Equal(t, "q", call.Call.Fn.Name)
		require.Len(t, call.Call.Args, expectedArgs)
	}
	bare := stmts[0].(*ast.CallStmt).Call
	require.False(t, bare.Rparen.IsValid())
	require.Equal(t, bare.Fn.End(), bare.End())
}

func TestParamGroups(t *testing.T) {
	input := "program p; procedure q(var a, b: integer; c: boolean; var d: boolean); begin end; begin end."
	program, err := Parse(context.Background(), input)
	require.Nil(t, err)
	proc := program.Block.Subroutines[0].(*ast.Procedure)
	require.Len(t, proc.Params, 3)
	require.True(t, proc.Params[0].ByRef)
	require.False(t, proc.Params[1].ByRef)
	require.True(t, proc.Params[2].ByRef)
	require.Equal(t, "procedure q(var a, b: integer; c: boolean; var d: boolean);\nbegin  end", proc.String())
	require.Equal(t, 4, ast.ParamCount(proc.Params))
}

func TestEmptyParamList(t *testing.T) {
	program, err := Parse(context.Background(), "program p; procedure q(); begin end; begin q() end.")
	require.Nil(t, err)
	proc := program.Block.Subroutines[0].(*ast.Procedure)
	require.Len(t, proc.Params, 0)
}

func TestCompoundForms(t *testing.T) {
	program, err := Parse(context.Background(), "program p; begin x := 1; end.")
	require.Nil(t, err)
	require.Len(t, program.Block.Body.Stmts, 1)

	program, err = Parse(context.Background(), "program p; begin end.")
	require.Nil(t, err)
	require.Len(t, program.Block.Body.Stmts, 0)

	program, err = Parse(context.Background(), "program p; begin begin x := 1 end; while x < 3 do x := x + 1 end.")
	require.Nil(t, err)
	require.IsType(t, &ast.Compound{}, program.Block.Body.Stmts[0])
	require.IsType(t, &ast.While{}, program.Block.Body.Stmts[1])
}

func TestDanglingElse(t *testing.T) {
	program, err := Parse(context.Background(), "program p; begin if a then if b then x := 1 else x := 2 end.")
	require.Nil(t, err)
	outer := program.Block.Body.Stmts[0].(*ast.If)
	require.Nil(t, outer.Alternative)
	inner := outer.Consequence.(*ast.If)
	require.NotNil(t, inner.Alternative)
}

func TestComments(t *testing.T) {
	input := "program p; { a { nested } comment }\n// line comment\nbegin write(1) end."
	program, err := Parse(context.Background(), input)
	require.Nil(t, err)
	require.Len(t, program.Block.Body.Stmts, 1)
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  rerrors.ErrorCode
		msg   string
	}{
		{
			"missing then",
			"program p; begin if true x := 1 end.",
			rerrors.E1001,
			"unexpected identifier 'x' while parsing if statement (expected 'then')",
		},
		{
			"missing do",
			"program p; begin while true x := 1 end.",
			rerrors.E1001,
			"unexpected identifier 'x' while parsing while statement (expected 'do')",
		},
		{
			"missing expression",
			"program p; begin x := ; end.",
			rerrors.E1004,
			"missing expression (found ';')",
		},
		{
			"chained comparison",
			"program p; begin x := a < b < c end.",
			rerrors.E1001,
			"comparison operators cannot be chained (use parentheses)",
		},
		{
			"equals instead of assign",
			"program p; begin x = 1 end.",
			rerrors.E1001,
			"unexpected '=' following identifier 'x' (did you mean ':='?)",
		},
		{
			"missing program name",
			"program ; begin end.",
			rerrors.E1006,
			"unexpected ';' while parsing program header (expected identifier)",
		},
		{
			"missing period",
			"program p; begin end",
			rerrors.E1001,
			"unexpected end of file while parsing program (expected '.')",
		},
		{
			"text after program",
			"program p; begin end. x",
			rerrors.E1001,
			"unexpected identifier 'x' after the end of the program",
		},
		{
			"missing semicolon between statements",
			"program p; begin x := 1 y := 2 end.",
			rerrors.E1001,
			"unexpected identifier 'y' following statement (expected ';' or 'end')",
		},
		{
			"missing end",
			"program p; begin x := 1;",
			rerrors.E1001,
			"unexpected end of file while parsing compound statement (expected 'end')",
		},
		{
			"function without result type",
			"program p; function f; begin end; begin end.",
			rerrors.E1001,
			"unexpected ';' while parsing function declaration (expected ':')",
		},
		{
			"empty write",
			"program p; begin write() end.",
			rerrors.E1004,
			"missing expression (found ')')",
		},
		{
			"read of expression",
			"program p; begin read(1) end.",
			rerrors.E1006,
			"unexpected integer 1 while parsing read statement (expected identifier)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseErrors(t, tt.input)
			first := errs.First()
			require.Equal(t, tt.code, first.Code())
			require.Equal(t, tt.msg, first.Message())
		})
	}
}

func TestLexerErrors(t *testing.T) {
	errs := parseErrors(t, "program p; begin x := 1 @ end.")
	require.Equal(t, 1, errs.Count())
	require.Equal(t, rerrors.E1003, errs.First().Code())
	require.Equal(t, "syntax error: invalid character '@' (1:25)", errs.First().Error())

	errs = parseErrors(t, "program p; begin { never closed\nend.")
	require.Equal(t, rerrors.E1011, errs.First().Code())
	require.Contains(t, errs.First().Error(), "unterminated block comment (opened at line 1)")
}

func TestMultipleErrors(t *testing.T) {
	input := `program p;
begin
  x := ;
  if 1 x := 2;
  y = 3
end.`
	errs := parseErrors(t, input)
	require.Equal(t, 3, errs.Count())
	lines := make([]int, 0, errs.Count())
	for _, err := range errs.Errors() {
		lines = append(lines, err.StartPosition().LineNumber())
	}
	require.Equal(t, []int{3, 4, 5}, lines)
	require.Equal(t, errs.Errors()[0].Error()+" (and 2 more errors)", errs.Error())
	require.Len(t, errs.Unwrap(), 3)
}

func TestErrorsAcrossDeclarations(t *testing.T) {
	input := `program p;
var a integer;
procedure q;
begin
  a :=
end;
begin
  write(a
end.`
	errs := parseErrors(t, input)
	require.Equal(t, 3, errs.Count())
	require.Equal(t, 2, errs.Errors()[0].StartPosition().LineNumber())
	require.Equal(t, 6, errs.Errors()[1].StartPosition().LineNumber())
	require.Equal(t, 9, errs.Errors()[2].StartPosition().LineNumber())
}

func TestMaxErrors(t *testing.T) {
	var b strings.Builder
	b.WriteString("program p;\nbegin\n")
	for i := 0; i < 15; i++ {
		b.WriteString("  x := ;\n")
	}
	b.WriteString("end.")
	errs := parseErrors(t, b.String())
	require.Equal(t, MaxErrors, errs.Count())
}

func TestMaxDepth(t *testing.T) {
	expr := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
	errs := parseErrors(t, "program p; begin x := "+expr+" end.", WithMaxDepth(10))
	require.Equal(t, 1, errs.Count())
	require.Equal(t, rerrors.E1009, errs.First().Code())
	require.Equal(t, "maximum nesting depth exceeded", errs.First().Message())

	_, err := Parse(context.Background(), "program p; begin x := "+expr+" end.")
	require.Nil(t, err)
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	program, err := Parse(ctx, "program p; begin end.")
	require.Nil(t, program)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFriendlyErrorMessage(t *testing.T) {
	input := "program p;\nbegin\n  if true x := 1\nend."
	errs := parseErrors(t, input, WithFilename("test.ras"))
	require.Equal(t, 1, errs.Count())
	first := errs.First()
	require.Equal(t, "test.ras", first.File())
	require.Equal(t, "  if true x := 1", first.SourceCode())
	require.Equal(t,
		"syntax error: unexpected identifier 'x' while parsing if statement (expected 'then') (test.ras:3:11)",
		first.Error())

	expected := strings.Join([]string{
		"syntax error[E1001]: unexpected identifier 'x' while parsing if statement (expected 'then')",
		"  --> test.ras:3:11",
		"   |",
		" 3 |   if true x := 1",
		"   |           ^",
		"",
	}, "\n")
	require.Equal(t, expected, errs.FriendlyErrorMessage())
	require.Equal(t, expected, rerrors.Render(errs, false))
}

func TestFriendlyErrorMessageMultiple(t *testing.T) {
	errs := parseErrors(t, "program p;\nbegin\n  x := ;\n  y := ;\nend.")
	msg := errs.FriendlyErrorMessage()
	require.Contains(t, msg, "syntax error[E1004]: missing expression (found ';')")
	require.True(t, strings.HasSuffix(msg, "found 2 errors\n"), msg)
	formatted := errs.ToFormattedMultiple()
	require.Len(t, formatted, 2)
	require.Equal(t, 4, formatted[1].Line)
}

func ExampleParse() {
	program, err := Parse(context.Background(), "program hello; begin write(1 + 2) end.")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(program.Block.Body.Stmts[0])
	// Output: write((1 + 2))
}
