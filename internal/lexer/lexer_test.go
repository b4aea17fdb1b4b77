package lexer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"

	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func requireTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		require.Nil(t, err)
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - tokentype wrong", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - literal wrong", i)
	}
}

func TestOperators(t *testing.T) {
	input := "( ) . , : ; + - * = <> < <= > >= :="
	requireTokens(t, input, []expectedToken{
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.PERIOD, "."},
		{token.COMMA, ","},
		{token.COLON, ":"},
		{token.SEMICOLON, ";"},
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.EQ, "="},
		{token.NOT_EQ, "<>"},
		{token.LT, "<"},
		{token.LT_EQUALS, "<="},
		{token.GT, ">"},
		{token.GT_EQUALS, ">="},
		{token.ASSIGN, ":="},
		{token.EOF, ""},
	})
}

func TestOperatorsWithoutSpaces(t *testing.T) {
	requireTokens(t, "x:=y<>1;", []expectedToken{
		{token.IDENT, "x"},
		{token.ASSIGN, ":="},
		{token.IDENT, "y"},
		{token.NOT_EQ, "<>"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	})
}

func TestProgram(t *testing.T) {
	input := `program p;
var x: integer;
begin
  x := 1 + 2;
  write(x)
end.`
	requireTokens(t, input, []expectedToken{
		{token.PROGRAM, "program"},
		{token.IDENT, "p"},
		{token.SEMICOLON, ";"},
		{token.VAR, "var"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.IDENT, "integer"},
		{token.SEMICOLON, ";"},
		{token.BEGIN, "begin"},
		{token.IDENT, "x"},
		{token.ASSIGN, ":="},
		{token.INT, "1"},
		{token.PLUS, "+"},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
		{token.WRITE, "write"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.END, "end"},
		{token.PERIOD, "."},
		{token.EOF, ""},
	})
}

func TestKeywords(t *testing.T) {
	input := "if then else while do read and or not div true false procedure function"
	requireTokens(t, input, []expectedToken{
		{token.IF, "if"},
		{token.THEN, "then"},
		{token.ELSE, "else"},
		{token.WHILE, "while"},
		{token.DO, "do"},
		{token.READ, "read"},
		{token.AND, "and"},
		{token.OR, "or"},
		{token.NOT, "not"},
		{token.DIV, "div"},
		{token.TRUE, "true"},
		{token.FALSE, "false"},
		{token.PROCEDURE, "procedure"},
		{token.FUNCTION, "function"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := `a // trailing comment
{ block { nested } still comment } b
{}c`
	requireTokens(t, input, []expectedToken{
		{token.IDENT, "a"},
		{token.IDENT, "b"},
		{token.IDENT, "c"},
		{token.EOF, ""},
	})
}

func TestPositions(t *testing.T) {
	l := New("begin\n  x := 10\nend")
	l.SetFilename("pos.ras")

	tok, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, token.Position{Char: 0, LineStart: 0, Line: 0, Column: 0, File: "pos.ras"}, tok.StartPosition)
	require.Equal(t, 4, tok.EndPosition.Column)

	tok, err = l.Next()
	require.Nil(t, err)
	require.Equal(t, "x", tok.Literal)
	require.Equal(t, 2, tok.StartPosition.LineNumber())
	require.Equal(t, 3, tok.StartPosition.ColumnNumber())
	require.Equal(t, "  x := 10", l.GetLineText(tok))

	tok, err = l.Next()
	require.Nil(t, err)
	require.Equal(t, token.ASSIGN, tok.Type)
	require.Equal(t, 4, tok.StartPosition.Column)
	require.Equal(t, 5, tok.EndPosition.Column)

	tok, err = l.Next()
	require.Nil(t, err)
	require.Equal(t, "10", tok.Literal)
	require.Equal(t, 8, tok.EndPosition.Column)

	tok, err = l.Next()
	require.Nil(t, err)
	require.Equal(t, token.END, tok.Type)
	require.Equal(t, 3, tok.StartPosition.LineNumber())
	require.Equal(t, "end", l.GetLineText(tok))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  rerrors.ErrorCode
		msg   string
	}{
		{"invalid character", "x # y", rerrors.E1003, `invalid character '#'`},
		{"single slash", "a / b", rerrors.E1003, `invalid character '/'`},
		{"unterminated comment", "x { never { closed }", rerrors.E1011, "unterminated block comment (opened at line 1)"},
		{"letters after digits", "12ab", rerrors.E1008, `invalid number literal "12ab"`},
		{"out of range", "99999999999999999999", rerrors.E1008, `invalid number literal "99999999999999999999" (out of range)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			var err error
			for i := 0; i < 5 && err == nil; i++ {
				_, err = l.Next()
			}
			require.NotNil(t, err)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			require.Equal(t, tt.code, syntaxErr.Code)
			require.Equal(t, tt.msg, syntaxErr.Error())
		})
	}
}

func TestIntegerRange(t *testing.T) {
	largest := strconv.Itoa(math.MaxInt)
	tok, err := New(largest).Next()
	require.Nil(t, err)
	require.Equal(t, token.INT, tok.Type)
	require.Equal(t, largest, tok.Literal)

	tooLarge := fmt.Sprint(uint64(math.MaxInt) + 1)
	_, err = New(tooLarge).Next()
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	require.Equal(t, rerrors.E1008, syntaxErr.Code)
}

func TestEOFRepeats(t *testing.T) {
	l := New("")
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		require.Nil(t, err)
		require.Equal(t, token.EOF, tok.Type)
	}
}
