// Package parser is used to generate the abstract syntax tree (AST) for a
// Rascal program.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST.
//
// The parser is a recursive descent parser with one token of lookahead. When
// a statement or declaration fails to parse, the parser skips ahead to the
// next boundary and keeps going, so that a single run reports as many
// independent syntax errors as possible (up to MaxErrors).
package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/rascal-lang/rascalc/ast"
	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/lexer"
	"github.com/rascal-lang/rascalc/internal/token"
)

// Parse the provided input as Rascal source code and return the AST. This is
// shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	// Extract filename from options before creating the parser, so that lexer
	// errors in the first tokens have proper location context.
	var filename string
	for _, opt := range options {
		var scratch Parser
		opt(&scratch)
		if scratch.filename != "" {
			filename = scratch.filename
			break
		}
	}

	l := lexer.New(input)
	if filename != "" {
		l.SetFilename(filename)
	}

	p := New(l, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// prevToken holds the last consumed token.
	prevToken token.Token

	// curToken holds the token under examination. It has not been consumed.
	curToken token.Token

	// peekToken holds the token after curToken.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []ParserError

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:        l,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" && l.Filename() == "" {
		l.SetFilename(p.filename)
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]
	return p
}

// advanceToken moves to the next token from the lexer without error checking.
// Used internally by synchronize() during error recovery.
func (p *Parser) advanceToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, _ = p.l.Next()
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken.
func (p *Parser) nextToken() error {
	var err error
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, err = p.l.Next()
	if err == nil {
		return nil
	}
	// The lexer encountered an error. We consider all lexer errors
	// "syntax errors" and the offending token becomes ILLEGAL.
	opts := ErrorOpts{
		Cause:         err,
		File:          p.l.Filename(),
		StartPosition: p.peekToken.StartPosition,
		EndPosition:   p.peekToken.EndPosition,
		SourceCode:    p.l.GetLineText(p.peekToken),
	}
	var lexErr *lexer.SyntaxError
	if errors.As(err, &lexErr) {
		opts.Code = lexErr.Code
		if lexErr.Position.IsValid() {
			opts.StartPosition = lexErr.Position
			opts.EndPosition = lexErr.Position
			opts.SourceCode = p.l.GetLineText(token.Token{StartPosition: lexErr.Position})
		}
	}
	p.addError(NewSyntaxError(opts))
	return err
}

// consume moves past curToken and returns it.
func (p *Parser) consume() token.Token {
	tok := p.curToken
	p.nextToken()
	return tok
}

// Parse the program that is provided via the lexer. If any syntax error is
// found the returned program is nil and the error is an *Errors value
// listing every problem found, in source order.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	program := p.parseProgram()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.hasErrors() {
		return nil, NewErrors(p.errors)
	}
	return program, nil
}

// addError appends an error to the errors slice. Errors beyond MaxErrors
// are dropped.
func (p *Parser) addError(err ParserError) {
	if len(p.errors) >= MaxErrors {
		return
	}
	p.errors = append(p.errors, err)
}

// hasErrors returns true if any errors have been recorded.
func (p *Parser) hasErrors() bool {
	return len(p.errors) > 0
}

// tooManyErrors returns true if error limit has been reached.
func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// stop reports whether parsing should be abandoned, either because of the
// error limit or because the context is done.
func (p *Parser) stop() bool {
	return p.tooManyErrors() || p.cancelled()
}

// cancelled checks if the parsing context has been cancelled.
func (p *Parser) cancelled() bool {
	if p.ctx == nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return true
	default:
		return false
	}
}

// synchronize skips tokens until one of the given types, or the end of the
// input, is reached.
func (p *Parser) synchronize(stopAt ...token.Type) {
	for !p.curTokenIs(token.EOF) {
		for _, t := range stopAt {
			if p.curTokenIs(t) {
				return
			}
		}
		p.advanceToken()
	}
}

// statementBoundaries are the tokens at which statement-level recovery
// resumes.
var statementBoundaries = []token.Type{
	token.SEMICOLON, token.END, token.BEGIN,
	token.IF, token.WHILE, token.READ, token.WRITE,
}

// declarationBoundaries are the tokens at which declaration-level recovery
// resumes.
var declarationBoundaries = []token.Type{
	token.SEMICOLON, token.BEGIN, token.VAR, token.PROCEDURE, token.FUNCTION,
}

// peekError records that got was found while parsing context where a token
// of the expected type was required.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	code := rerrors.E1001
	if expected == token.IDENT {
		code = rerrors.E1006
	}
	p.tokenError(got, code, "unexpected %s while parsing %s (expected %s)",
		tokenDescription(got), context, tokenTypeDescription(expected))
}

// tokenError records a syntax error located at t. Errors located at an
// ILLEGAL token are suppressed because the lexer already reported them.
func (p *Parser) tokenError(t token.Token, code rerrors.ErrorCode, msg string, args ...any) {
	if t.Type == token.ILLEGAL {
		return
	}
	p.addError(NewSyntaxError(ErrorOpts{
		Code:          code,
		Message:       fmt.Sprintf(msg, args...),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

// enter increments the nesting depth, recording an error if the limit is
// exceeded. Every successful enter must be paired with leave.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.tokenError(p.curToken, rerrors.E1009, "maximum nesting depth exceeded")
		p.depth--
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

// newIdent creates a new Ident node from a token.
func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}

// curTokenIs returns true if the current token has the given type.
func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// peekTokenIs returns true if the next token has the given type.
func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expect consumes curToken if it has the given type. Otherwise an error is
// stored and nothing is consumed.
func (p *Parser) expect(context string, t token.Type) (token.Token, bool) {
	if p.curTokenIs(t) {
		return p.consume(), true
	}
	p.peekError(context, t, p.curToken)
	return token.Token{}, false
}

// expectIdent consumes an identifier and returns it as a node.
func (p *Parser) expectIdent(context string) (*ast.Ident, bool) {
	tok, ok := p.expect(context, token.IDENT)
	if !ok {
		return nil, false
	}
	return p.newIdent(tok), true
}
