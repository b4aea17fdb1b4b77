// Package lexer converts Rascal source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/token"
)

// Lexer holds the scanning state for a single source input.
type Lexer struct {
	input string

	// byte offset of the character under examination
	position int

	// byte offset of the next character to read
	readPosition int

	// character under examination, 0 at the end of input
	ch byte

	// 0-indexed line and column of ch
	line   int
	column int

	// byte offset where the current line starts
	lineStart int

	filename string
}

// SyntaxError is returned by Next when the input cannot be tokenized.
type SyntaxError struct {
	Code     errors.ErrorCode
	Message  string
	Position token.Position
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// New returns a Lexer reading from input.
func New(input string) *Lexer {
	l := &Lexer{input: input, column: -1}
	l.readChar()
	return l
}

// SetFilename records the name used in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the name used in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

// Next returns the next token. At the end of input it returns EOF tokens
// indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return l.newToken(token.ILLEGAL, ""), err
	}
	start := l.pos()
	var tok token.Token
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	case '(':
		tok = l.single(token.LPAREN)
	case ')':
		tok = l.single(token.RPAREN)
	case '.':
		tok = l.single(token.PERIOD)
	case ',':
		tok = l.single(token.COMMA)
	case ';':
		tok = l.single(token.SEMICOLON)
	case '+':
		tok = l.single(token.PLUS)
	case '-':
		tok = l.single(token.MINUS)
	case '*':
		tok = l.single(token.ASTERISK)
	case '=':
		tok = l.single(token.EQ)
	case '<':
		switch l.peekChar() {
		case '=':
			tok = l.double(token.LT_EQUALS)
		case '>':
			tok = l.double(token.NOT_EQ)
		default:
			tok = l.single(token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.double(token.GT_EQUALS)
		} else {
			tok = l.single(token.GT)
		}
	case ':':
		if l.peekChar() == '=' {
			tok = l.double(token.ASSIGN)
		} else {
			tok = l.single(token.COLON)
		}
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{
				Type:          token.LookupIdentifier(literal),
				Literal:       literal,
				StartPosition: start,
				EndPosition:   start.Advance(len(literal) - 1),
			}, nil
		}
		ch := l.ch
		tok = l.single(token.ILLEGAL)
		return tok, &SyntaxError{
			Code:     errors.E1003,
			Message:  fmt.Sprintf("invalid character %q", ch),
			Position: start,
		}
	}
	return tok, nil
}

// GetLineText returns the full source line containing tok.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return strings.TrimRight(l.input[start:], "\r")
	}
	return strings.TrimRight(l.input[start:start+end], "\r")
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = -1
		l.lineStart = l.readPosition
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.column,
		File:      l.filename,
	}
}

func (l *Lexer) newToken(t token.Type, literal string) token.Token {
	p := l.pos()
	return token.Token{Type: t, Literal: literal, StartPosition: p, EndPosition: p}
}

func (l *Lexer) single(t token.Type) token.Token {
	tok := l.newToken(t, string(l.ch))
	l.readChar()
	return tok
}

func (l *Lexer) double(t token.Type) token.Token {
	start := l.pos()
	literal := l.input[l.position : l.position+2]
	l.readChar()
	end := l.pos()
	l.readChar()
	return token.Token{Type: t, Literal: literal, StartPosition: start, EndPosition: end}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.atEnd() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for !l.atEnd() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '{':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// skipBlockComment consumes a brace comment, which may contain nested brace
// comments. The opening brace must be the current character.
func (l *Lexer) skipBlockComment() error {
	start := l.pos()
	depth := 0
	for !l.atEnd() {
		switch l.ch {
		case '{':
			depth++
		case '}':
			depth--
		}
		l.readChar()
		if depth == 0 {
			return nil
		}
	}
	return &SyntaxError{
		Code:     errors.E1011,
		Message:  fmt.Sprintf("unterminated block comment (opened at line %d)", start.LineNumber()),
		Position: start,
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (token.Token, error) {
	start := l.pos()
	begin := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[begin:l.position]
	tok := token.Token{
		Type:          token.INT,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal) - 1),
	}
	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		tok.Type = token.ILLEGAL
		tok.Literal = l.input[begin:l.position]
		return tok, &SyntaxError{
			Code:     errors.E1008,
			Message:  fmt.Sprintf("invalid number literal %q", tok.Literal),
			Position: start,
		}
	}
	if _, err := strconv.ParseInt(literal, 10, strconv.IntSize); err != nil {
		tok.Type = token.ILLEGAL
		return tok, &SyntaxError{
			Code:     errors.E1008,
			Message:  fmt.Sprintf("invalid number literal %q (out of range)", literal),
			Position: start,
		}
	}
	return tok, nil
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
