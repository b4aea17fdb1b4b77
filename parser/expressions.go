package parser

import (
	"strconv"

	"github.com/rascal-lang/rascalc/ast"
	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/token"
)

// Operator classes, loosest first. Relational operators do not associate:
// "a < b < c" is a syntax error. The other binary operators associate to
// the left.
var (
	relationalOps = map[token.Type]bool{
		token.EQ:        true,
		token.NOT_EQ:    true,
		token.LT:        true,
		token.LT_EQUALS: true,
		token.GT:        true,
		token.GT_EQUALS: true,
	}
	additiveOps = map[token.Type]bool{
		token.PLUS:  true,
		token.MINUS: true,
		token.OR:    true,
	}
	multiplicativeOps = map[token.Type]bool{
		token.ASTERISK: true,
		token.DIV:      true,
		token.AND:      true,
	}
)

// parseExpression parses "simple [relop simple]".
func (p *Parser) parseExpression() ast.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	left := p.parseSimpleExpression()
	if left == nil {
		return nil
	}
	if !relationalOps[p.curToken.Type] {
		return left
	}
	opTok := p.consume()
	right := p.parseSimpleExpression()
	if right == nil {
		return nil
	}
	if relationalOps[p.curToken.Type] {
		p.tokenError(p.curToken, rerrors.E1001,
			"comparison operators cannot be chained (use parentheses)")
		return nil
	}
	return newInfix(left, opTok, right)
}

// parseSimpleExpression parses "term {addop term}".
func (p *Parser) parseSimpleExpression() ast.Expr {
	left := p.parseTerm()
	if left == nil {
		return nil
	}
	for additiveOps[p.curToken.Type] {
		opTok := p.consume()
		right := p.parseTerm()
		if right == nil {
			return nil
		}
		left = newInfix(left, opTok, right)
	}
	return left
}

// parseTerm parses "factor {mulop factor}".
func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	if left == nil {
		return nil
	}
	for multiplicativeOps[p.curToken.Type] {
		opTok := p.consume()
		right := p.parseFactor()
		if right == nil {
			return nil
		}
		left = newInfix(left, opTok, right)
	}
	return left
}

// parseFactor parses a unary operation, a literal, a variable, a function
// call or a parenthesized expression.
func (p *Parser) parseFactor() ast.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.MINUS, token.NOT:
		opTok := p.consume()
		x := p.parseFactor()
		if x == nil {
			return nil
		}
		return &ast.Prefix{OpPos: opTok.StartPosition, Op: opTok.Literal, X: x}
	case token.INT:
		return p.parseInt()
	case token.TRUE, token.FALSE:
		tok := p.consume()
		return &ast.Bool{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: tok.Type == token.TRUE}
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			if call := p.parseCall(); call != nil {
				return call
			}
			return nil
		}
		return p.newIdent(p.consume())
	case token.LPAREN:
		lparen := p.consume()
		x := p.parseExpression()
		if x == nil {
			return nil
		}
		rparen, ok := p.expect("parenthesized expression", token.RPAREN)
		if !ok {
			return nil
		}
		return &ast.Paren{Lparen: lparen.StartPosition, X: x, Rparen: rparen.StartPosition}
	default:
		p.tokenError(p.curToken, rerrors.E1004,
			"missing expression (found %s)", tokenDescription(p.curToken))
		return nil
	}
}

func (p *Parser) parseInt() ast.Expr {
	tok := p.consume()
	value, err := strconv.ParseInt(tok.Literal, 10, strconv.IntSize)
	if err != nil {
		p.tokenError(tok, rerrors.E1008, "invalid number literal %q", tok.Literal)
		return nil
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

// parseCall parses "name" or "name(args)". The current token is the name.
func (p *Parser) parseCall() *ast.Call {
	call := &ast.Call{Fn: p.newIdent(p.consume())}
	if !p.curTokenIs(token.LPAREN) {
		return call
	}
	call.Lparen = p.consume().StartPosition
	if !p.curTokenIs(token.RPAREN) {
		args, ok := p.parseExprList()
		if !ok {
			return nil
		}
		call.Args = args
	}
	rparen, ok := p.expect("call arguments", token.RPAREN)
	if !ok {
		return nil
	}
	call.Rparen = rparen.StartPosition
	return call
}

// parseExprList parses one or more comma separated expressions.
func (p *Parser) parseExprList() ([]ast.Expr, bool) {
	first := p.parseExpression()
	if first == nil {
		return nil, false
	}
	exprs := []ast.Expr{first}
	for p.curTokenIs(token.COMMA) {
		p.consume()
		expr := p.parseExpression()
		if expr == nil {
			return nil, false
		}
		exprs = append(exprs, expr)
	}
	return exprs, true
}

func newInfix(left ast.Expr, opTok token.Token, right ast.Expr) *ast.Infix {
	return &ast.Infix{X: left, OpPos: opTok.StartPosition, Op: opTok.Literal, Y: right}
}
