// Package token defines language keywords and tokens used when lexing Rascal
// source code.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes on the same line.
func (p Position) Advance(n int) Position {
	p.Char += n
	p.Column += n
	return p
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// String renders the position as "file:line:column" using 1-indexed numbers.
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"
	IDENT   Type = "IDENT"
	INT     Type = "INT"

	ASSIGN    Type = ":="
	COLON     Type = ":"
	COMMA     Type = ","
	SEMICOLON Type = ";"
	PERIOD    Type = "."
	LPAREN    Type = "("
	RPAREN    Type = ")"
	PLUS      Type = "+"
	MINUS     Type = "-"
	ASTERISK  Type = "*"
	EQ        Type = "="
	NOT_EQ    Type = "<>"
	LT        Type = "<"
	LT_EQUALS Type = "<="
	GT        Type = ">"
	GT_EQUALS Type = ">="

	AND       Type = "AND"
	BEGIN     Type = "BEGIN"
	DIV       Type = "DIV"
	DO        Type = "DO"
	ELSE      Type = "ELSE"
	END       Type = "END"
	FALSE     Type = "FALSE"
	FUNCTION  Type = "FUNCTION"
	IF        Type = "IF"
	NOT       Type = "NOT"
	OR        Type = "OR"
	PROCEDURE Type = "PROCEDURE"
	PROGRAM   Type = "PROGRAM"
	READ      Type = "READ"
	THEN      Type = "THEN"
	TRUE      Type = "TRUE"
	VAR       Type = "VAR"
	WHILE     Type = "WHILE"
	WRITE     Type = "WRITE"
)

// Reserved keywords. The type names "integer" and "boolean" are not listed:
// they are ordinary identifiers resolved by the type table.
var keywords = map[string]Type{
	"and":       AND,
	"begin":     BEGIN,
	"div":       DIV,
	"do":        DO,
	"else":      ELSE,
	"end":       END,
	"false":     FALSE,
	"function":  FUNCTION,
	"if":        IF,
	"not":       NOT,
	"or":        OR,
	"procedure": PROCEDURE,
	"program":   PROGRAM,
	"read":      READ,
	"then":      THEN,
	"true":      TRUE,
	"var":       VAR,
	"while":     WHILE,
	"write":     WRITE,
}

// LookupIdentifier reports the keyword type for identifier, or IDENT when it
// is not reserved.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a reserved word.
func IsKeyword(t Type) bool {
	for _, kw := range keywords {
		if kw == t {
			return true
		}
	}
	return false
}
