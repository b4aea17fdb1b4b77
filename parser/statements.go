package parser

import (
	"github.com/rascal-lang/rascalc/ast"
	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/token"
)

// parseCompound parses "begin stmt {; stmt} end". A trailing semicolon
// before "end" is accepted, as is an empty body.
func (p *Parser) parseCompound() *ast.Compound {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	begin, ok := p.expect("compound statement", token.BEGIN)
	if !ok {
		return nil
	}
	compound := &ast.Compound{Begin: begin.StartPosition}
	failed := false
	for !p.curTokenIs(token.END) {
		if p.stop() {
			return nil
		}
		if p.curTokenIs(token.EOF) {
			p.peekError("compound statement", token.END, p.curToken)
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil {
			failed = true
			p.synchronize(statementBoundaries...)
		} else {
			compound.Stmts = append(compound.Stmts, stmt)
		}
		switch p.curToken.Type {
		case token.SEMICOLON:
			p.consume()
		case token.END, token.EOF:
		default:
			if stmt != nil {
				failed = true
				p.tokenError(p.curToken, rerrors.E1001,
					"unexpected %s following statement (expected ';' or 'end')",
					tokenDescription(p.curToken))
				p.synchronize(statementBoundaries...)
				if p.curTokenIs(token.SEMICOLON) {
					p.consume()
				}
			}
		}
	}
	compound.EndPos = p.consume().StartPosition
	if failed {
		return nil
	}
	return compound
}

// parseStatement dispatches on the current token. It returns nil if the
// statement could not be parsed, after recording an error.
func (p *Parser) parseStatement() ast.Stmt {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssign()
		}
		if p.peekTokenIs(token.EQ) {
			p.tokenError(p.peekToken, rerrors.E1001,
				"unexpected '=' following identifier '%s' (did you mean ':='?)", p.curToken.Literal)
			return nil
		}
		call := p.parseCall()
		if call == nil {
			return nil
		}
		return &ast.CallStmt{Call: call}
	case token.BEGIN:
		if compound := p.parseCompound(); compound != nil {
			return compound
		}
		return nil
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.READ:
		return p.parseRead()
	case token.WRITE:
		return p.parseWrite()
	default:
		p.tokenError(p.curToken, rerrors.E1001,
			"unexpected %s while parsing statement", tokenDescription(p.curToken))
		return nil
	}
}

func (p *Parser) parseAssign() ast.Stmt {
	name := p.newIdent(p.consume())
	assign := p.consume() // :=
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ast.Assign{Name: name, Assign: assign.StartPosition, Value: value}
}

func (p *Parser) parseIf() ast.Stmt {
	keyword := p.consume()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect("if statement", token.THEN); !ok {
		return nil
	}
	consequence := p.parseStatement()
	if consequence == nil {
		return nil
	}
	stmt := &ast.If{IfPos: keyword.StartPosition, Cond: cond, Consequence: consequence}
	if p.curTokenIs(token.ELSE) {
		p.consume()
		if stmt.Alternative = p.parseStatement(); stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	keyword := p.consume()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect("while statement", token.DO); !ok {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.While{WhilePos: keyword.StartPosition, Cond: cond, Body: body}
}

// parseRead parses "read(a, b)". Only identifiers may be read into.
func (p *Parser) parseRead() ast.Stmt {
	keyword := p.consume()
	if _, ok := p.expect("read statement", token.LPAREN); !ok {
		return nil
	}
	names, ok := p.parseIdentList("read statement")
	if !ok {
		return nil
	}
	rparen, ok := p.expect("read statement", token.RPAREN)
	if !ok {
		return nil
	}
	return &ast.Read{ReadPos: keyword.StartPosition, Names: names, Rparen: rparen.StartPosition}
}

// parseWrite parses "write(e1, e2)" with at least one expression.
func (p *Parser) parseWrite() ast.Stmt {
	keyword := p.consume()
	if _, ok := p.expect("write statement", token.LPAREN); !ok {
		return nil
	}
	args, ok := p.parseExprList()
	if !ok {
		return nil
	}
	rparen, ok := p.expect("write statement", token.RPAREN)
	if !ok {
		return nil
	}
	return &ast.Write{WritePos: keyword.StartPosition, Args: args, Rparen: rparen.StartPosition}
}
