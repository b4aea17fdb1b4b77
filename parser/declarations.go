package parser

import (
	"github.com/rascal-lang/rascalc/ast"
	rerrors "github.com/rascal-lang/rascalc/errors"
	"github.com/rascal-lang/rascalc/internal/token"
)

// parseProgram parses the whole input:
//
//	program <name> ; <block> .
func (p *Parser) parseProgram() *ast.Program {
	program := &ast.Program{ProgramPos: p.curToken.StartPosition}
	headerOK := false
	if _, ok := p.expect("program header", token.PROGRAM); ok {
		if name, ok := p.expectIdent("program header"); ok {
			program.Name = name
			_, headerOK = p.expect("program header", token.SEMICOLON)
		}
	}
	if !headerOK {
		p.synchronize(token.VAR, token.PROCEDURE, token.FUNCTION, token.BEGIN)
		if p.curTokenIs(token.EOF) {
			return nil
		}
	}
	program.Block = p.parseBlock()
	if program.Block == nil || p.stop() {
		return nil
	}
	period, ok := p.expect("program", token.PERIOD)
	if !ok {
		return nil
	}
	program.Period = period.StartPosition
	if !p.curTokenIs(token.EOF) {
		p.tokenError(p.curToken, rerrors.E1001,
			"unexpected %s after the end of the program", tokenDescription(p.curToken))
		return nil
	}
	return program
}

// parseBlock parses the variable section, the subroutine declarations and
// the compound statement of a program or subroutine.
func (p *Parser) parseBlock() *ast.Block {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	block := &ast.Block{}
	if p.curTokenIs(token.VAR) {
		block.Vars = p.parseVarSection()
	}
	for p.curTokenIs(token.PROCEDURE) || p.curTokenIs(token.FUNCTION) {
		if p.stop() {
			return nil
		}
		if decl := p.parseSubroutine(); decl != nil {
			block.Subroutines = append(block.Subroutines, decl)
		}
	}
	if p.stop() {
		return nil
	}
	if !p.curTokenIs(token.BEGIN) {
		p.peekError("block", token.BEGIN, p.curToken)
		p.synchronize(token.BEGIN)
		if !p.curTokenIs(token.BEGIN) {
			return nil
		}
	}
	block.Body = p.parseCompound()
	if block.Body == nil {
		return nil
	}
	return block
}

// parseVarSection parses "var" followed by one or more declarations, each
// terminated by a semicolon.
func (p *Parser) parseVarSection() []*ast.VarDecl {
	p.consume() // var
	var decls []*ast.VarDecl
	for {
		if p.stop() {
			return decls
		}
		if decl := p.parseVarDecl(); decl != nil {
			decls = append(decls, decl)
			if _, ok := p.expect("variable declaration", token.SEMICOLON); !ok {
				p.synchronize(declarationBoundaries...)
				if p.curTokenIs(token.SEMICOLON) {
					p.consume()
				}
			}
		} else {
			p.synchronize(declarationBoundaries...)
			if p.curTokenIs(token.SEMICOLON) {
				p.consume()
			}
		}
		if !p.curTokenIs(token.IDENT) {
			return decls
		}
	}
}

// parseVarDecl parses "a, b: integer".
func (p *Parser) parseVarDecl() *ast.VarDecl {
	names, ok := p.parseIdentList("variable declaration")
	if !ok {
		return nil
	}
	colon, ok := p.expect("variable declaration", token.COLON)
	if !ok {
		return nil
	}
	typ, ok := p.expectIdent("variable declaration")
	if !ok {
		return nil
	}
	return &ast.VarDecl{Names: names, Colon: colon.StartPosition, Type: typ}
}

// parseIdentList parses one or more comma separated identifiers.
func (p *Parser) parseIdentList(context string) ([]*ast.Ident, bool) {
	first, ok := p.expectIdent(context)
	if !ok {
		return nil, false
	}
	names := []*ast.Ident{first}
	for p.curTokenIs(token.COMMA) {
		p.consume()
		name, ok := p.expectIdent(context)
		if !ok {
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}

// parseSubroutine parses a procedure or function declaration followed by
// its terminating semicolon.
func (p *Parser) parseSubroutine() ast.Decl {
	isFunction := p.curTokenIs(token.FUNCTION)
	context := "procedure declaration"
	if isFunction {
		context = "function declaration"
	}
	keyword := p.consume()

	name, params, result, ok := p.parseSubroutineHeader(context, isFunction)
	if !ok {
		// Skip to the body and parse it anyway so that errors inside it
		// are reported too.
		p.synchronize(token.VAR, token.PROCEDURE, token.FUNCTION, token.BEGIN)
		if p.curTokenIs(token.EOF) || p.curTokenIs(token.PROCEDURE) || p.curTokenIs(token.FUNCTION) {
			return nil
		}
	}
	block := p.parseBlock()
	if block == nil {
		p.synchronize(token.SEMICOLON, token.PROCEDURE, token.FUNCTION, token.BEGIN)
		if p.curTokenIs(token.SEMICOLON) {
			p.consume()
		}
		return nil
	}
	if _, semi := p.expect(context, token.SEMICOLON); !semi {
		p.synchronize(token.PROCEDURE, token.FUNCTION, token.BEGIN)
		return nil
	}
	if !ok {
		return nil
	}
	if isFunction {
		return &ast.Function{
			FuncPos: keyword.StartPosition,
			Name:    name,
			Params:  params,
			Result:  result,
			Block:   block,
		}
	}
	return &ast.Procedure{
		ProcPos: keyword.StartPosition,
		Name:    name,
		Params:  params,
		Block:   block,
	}
}

// parseSubroutineHeader parses everything between the keyword and the
// block:
//
//	<name> [ ( <params> ) ] [ : <type> ] ;
func (p *Parser) parseSubroutineHeader(context string, isFunction bool) (*ast.Ident, []*ast.ParamGroup, *ast.Ident, bool) {
	name, ok := p.expectIdent(context)
	if !ok {
		return nil, nil, nil, false
	}
	var params []*ast.ParamGroup
	if p.curTokenIs(token.LPAREN) {
		if params, ok = p.parseParams(context); !ok {
			return nil, nil, nil, false
		}
	}
	var result *ast.Ident
	if isFunction {
		if _, ok := p.expect(context, token.COLON); !ok {
			return nil, nil, nil, false
		}
		if result, ok = p.expectIdent(context); !ok {
			return nil, nil, nil, false
		}
	}
	if _, ok := p.expect(context, token.SEMICOLON); !ok {
		return nil, nil, nil, false
	}
	return name, params, result, true
}

// parseParams parses a parenthesized formal parameter list. Groups are
// separated by semicolons and each may begin with "var" to make every name
// in it a reference parameter. An empty list "()" is accepted.
func (p *Parser) parseParams(context string) ([]*ast.ParamGroup, bool) {
	p.consume() // (
	var groups []*ast.ParamGroup
	if p.curTokenIs(token.RPAREN) {
		p.consume()
		return groups, true
	}
	for {
		group := &ast.ParamGroup{}
		if p.curTokenIs(token.VAR) {
			group.VarPos = p.consume().StartPosition
			group.ByRef = true
		}
		names, ok := p.parseIdentList(context)
		if !ok {
			return nil, false
		}
		group.Names = names
		if _, ok := p.expect(context, token.COLON); !ok {
			return nil, false
		}
		if group.Type, ok = p.expectIdent(context); !ok {
			return nil, false
		}
		groups = append(groups, group)
		if p.curTokenIs(token.SEMICOLON) {
			p.consume()
			continue
		}
		if _, ok := p.expect(context, token.RPAREN); !ok {
			return nil, false
		}
		return groups, true
	}
}
