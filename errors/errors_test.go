package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rascal-lang/rascalc/types"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"with filename", SourceLocation{Filename: "main.ras", Line: 10, Column: 5}, "main.ras:10:5"},
		{"without filename", SourceLocation{Line: 10, Column: 5}, "10:5"},
		{"zero location", SourceLocation{}, "0:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.loc.String())
		})
	}
}

func TestSourceLocation_IsZero(t *testing.T) {
	require.True(t, SourceLocation{}.IsZero())
	require.True(t, SourceLocation{Filename: "test.ras"}.IsZero())
	require.False(t, SourceLocation{Line: 1}.IsZero())
	require.False(t, SourceLocation{Column: 1}.IsZero())
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, "duplicate symbol", E2002.Description())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())
	require.Equal(t, "E2007", E2007.String())
	require.Equal(t, "parse", E1001.Category())
	require.Equal(t, "semantic", E2009.Category())
	require.Equal(t, "runtime", E3001.Category())
	require.Equal(t, "unknown", ErrorCode("X").Category())
}

func TestCompileError_Error(t *testing.T) {
	err := &CompileError{
		Code:     E2003,
		Message:  "'y' is not defined",
		Filename: "main.ras",
		Line:     3,
		Column:   7,
	}
	require.Equal(t, "compile error: 'y' is not defined\n\nlocation: main.ras:3:7 (line 3, column 7)", err.Error())

	bare := &CompileError{Message: "oops"}
	require.Equal(t, "compile error: oops", bare.Error())
}

func TestSemanticErrorKinds(t *testing.T) {
	loc := SourceLocation{Filename: "k.ras", Line: 2, Column: 4, Source: "  x := y"}
	tests := []struct {
		err  SemanticError
		code ErrorCode
		msg  string
	}{
		{NewScopeDepthExceededError(loc, 2), E2001, "scope depth exceeded: at most 2 nested scopes are allowed"},
		{NewDuplicateSymbolError(loc, "x"), E2002, "'x' is already declared"},
		{NewUndefinedSymbolError(loc, "y", nil), E2003, "'y' is not defined"},
		{NewTypeNotDefinedError(loc, "real"), E2004, "'real' is not a valid rascal type"},
		{NewArityMismatchError(loc, "p", 2, 3), E2005, "the number of parameters (2) differs from the number of arguments (3) in the call to 'p'"},
		{NewNotCallableError(loc, "x", "procedure", "variable"), E2006, "'x' is not a procedure"},
		{NewMismatchedTypesError(loc, types.Integer, types.Boolean), E2007, "'integer' and 'boolean' are not compatible"},
		{NewConditionalNotBooleanError(loc, "while", types.Integer), E2008, "the while conditional does not resolve to a boolean"},
		{NewExpectedReferenceError(loc, 1), E2009, "expected argument on index 1 to be a reference"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			require.Equal(t, tt.code, tt.err.Code())
			require.Equal(t, loc, tt.err.Location())
			require.True(t, strings.HasPrefix(tt.err.Error(), "compile error: "+tt.msg))
			require.Contains(t, tt.err.Error(), "location: k.ras:2:4")
			formatted := tt.err.ToFormatted()
			require.Equal(t, tt.code, formatted.Code)
			require.Equal(t, tt.msg, formatted.Message)
			require.Len(t, formatted.SourceLines, 1)
		})
	}
}

func TestSemanticErrorAs(t *testing.T) {
	var err error = fmt.Errorf("wrapped: %w", NewArityMismatchError(SourceLocation{}, "f", 1, 0))

	var arity *ArityMismatchError
	require.True(t, errors.As(err, &arity))
	require.Equal(t, 1, arity.Expected)
	require.Equal(t, 0, arity.Actual)

	var dup *DuplicateSymbolError
	require.False(t, errors.As(err, &dup))

	var semantic SemanticError
	require.True(t, errors.As(err, &semantic))
	require.Equal(t, E2005, semantic.Code())
}

func TestUndefinedSymbolSuggestions(t *testing.T) {
	err := NewUndefinedSymbolError(SourceLocation{Line: 1, Column: 1}, "coutn", []string{"count", "x", "counter"})
	require.Equal(t, []Suggestion{{Value: "count", Distance: 2}}, err.Suggestions())
	require.Equal(t, "Did you mean 'count'?", err.ToFormatted().Hint)

	typeErr := NewTypeNotDefinedError(SourceLocation{}, "interger")
	require.Equal(t, "Did you mean 'integer'?", typeErr.ToFormatted().Hint)
}

func TestSuggestSimilar(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		candidates []string
		expected   []string
	}{
		{"typo", "lenght", []string{"length", "width"}, []string{"length"}},
		{"case insensitive", "COUNT", []string{"count"}, nil},
		{"short names are strict", "ab", []string{"ax", "xy"}, []string{"ax"}},
		{"no candidates", "x", nil, nil},
		{"empty target", "", []string{"x"}, nil},
		{"duplicates collapse", "sum", []string{"sun", "sun"}, []string{"sun"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var values []string
			for _, s := range SuggestSimilar(tt.target, tt.candidates) {
				values = append(values, s.Value)
			}
			require.Equal(t, tt.expected, values)
		})
	}
}

func TestSuggestSimilar_MaxSuggestions(t *testing.T) {
	got := SuggestSimilar("abcd", []string{"abce", "abcf", "abcg", "abch", "abci"})
	require.Len(t, got, MaxSuggestions)
	require.Equal(t, "abce", got[0].Value)
}

func TestFormatSuggestions(t *testing.T) {
	require.Equal(t, "", FormatSuggestions(nil))
	require.Equal(t, "Did you mean 'x'?", FormatSuggestions([]Suggestion{{Value: "x"}}))
	require.Equal(t, "Did you mean one of: 'a', 'b'?", FormatSuggestions([]Suggestion{{Value: "a"}, {Value: "b"}}))
}

func TestEditDistance(t *testing.T) {
	require.Equal(t, 0, editDistance("same", "same"))
	require.Equal(t, 3, editDistance("", "abc"))
	require.Equal(t, 3, editDistance("kitten", "sitting"))
	require.Equal(t, 1, editDistance("flaw", "flew"))
}

func TestFormatter_Format(t *testing.T) {
	err := &FormattedError{
		Code:        E2002,
		Kind:        "error",
		Message:     "'x' is already declared",
		Filename:    "main.ras",
		Line:        3,
		Column:      5,
		EndColumn:   5,
		SourceLines: []SourceLineEntry{{Number: 3, Text: "var x: boolean;", IsMain: true}},
		Hint:        "rename one of the declarations",
		Note:        "first declared on line 2",
	}
	expected := `error[E2002]: 'x' is already declared
  --> main.ras:3:5
   |
 3 | var x: boolean;
   |     ^
   |
   = hint: rename one of the declarations
   = note: first declared on line 2
`
	require.Equal(t, expected, NewFormatter(false).Format(err))
}

func TestFormatter_MultiCharUnderline(t *testing.T) {
	err := &FormattedError{
		Kind:        "syntax error",
		Message:     "unexpected identifier",
		Line:        1,
		Column:      9,
		EndColumn:   13,
		SourceLines: []SourceLineEntry{{Number: 1, Text: "program thing", IsMain: true}},
	}
	out := NewFormatter(false).Format(err)
	require.Contains(t, out, "syntax error: unexpected identifier")
	require.Contains(t, out, "  --> 1:9\n")
	require.Contains(t, out, "   |         ^^^^^\n")
}

func TestFormatter_FormatNoLocation(t *testing.T) {
	out := NewFormatter(false).Format(&FormattedError{Message: "something failed"})
	require.Equal(t, "error: something failed\n", out)
}

func TestFormatter_LargeLineNumber(t *testing.T) {
	err := &FormattedError{
		Message:     "bad",
		Line:        1234,
		Column:      1,
		SourceLines: []SourceLineEntry{{Number: 1234, Text: "x", IsMain: true}},
	}
	out := NewFormatter(false).Format(err)
	require.Contains(t, out, "1234 | x\n")
	require.Contains(t, out, "    --> 1234:1\n")
}

func TestFormatter_FormatMultiple(t *testing.T) {
	errs := []*FormattedError{
		{Kind: "syntax error", Message: "first", Line: 1, Column: 1},
		{Kind: "syntax error", Message: "second", Line: 2, Column: 1},
	}
	out := NewFormatter(false).FormatMultiple(errs)
	require.Contains(t, out, "syntax error[1/2]: first")
	require.Contains(t, out, "syntax error[2/2]: second")
	require.True(t, strings.HasSuffix(out, "found 2 errors\n"))

	require.Equal(t, "", NewFormatter(false).FormatMultiple(nil))
	require.Equal(t, NewFormatter(false).Format(errs[0]), NewFormatter(false).FormatMultiple(errs[:1]))
}

func TestFormatter_FormatWithColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	err := &FormattedError{Code: E2003, Message: "'y' is not defined", Line: 1, Column: 1}
	colored := NewFormatter(true).Format(err)
	plain := NewFormatter(false).Format(err)
	require.Contains(t, colored, "\x1b[")
	require.NotContains(t, plain, "\x1b[")
	require.Contains(t, colored, "'y' is not defined")
}

func TestRender(t *testing.T) {
	semantic := NewDuplicateSymbolError(SourceLocation{Line: 1, Column: 5, Source: "var x: integer;"}, "x")
	out := Render(fmt.Errorf("compiling: %w", semantic), false)
	require.True(t, strings.HasPrefix(out, "error[E2002]: 'x' is already declared\n"))

	out = Render(errors.New("plain failure"), false)
	require.Equal(t, "error: plain failure\n", out)
}
