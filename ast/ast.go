// Package ast defines the abstract syntax tree representation of Rascal code.
//
// The tree is made of three sealed families: declarations (Decl), statements
// (Stmt) and expressions (Expr). Consumers switch exhaustively over the
// concrete types in each family.
package ast

import (
	"bytes"

	"github.com/rascal-lang/rascalc/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Decl represents a procedure or function declaration.
type Decl interface {
	Node
	declNode()
	// Ident returns the declared name.
	Ident() *Ident
	// ParamGroups returns the parameter groups in declaration order.
	ParamGroups() []*ParamGroup
	// Body returns the block executed when the subroutine is called.
	Body() *Block
}

// Program is the root node: "program name; block ."
type Program struct {
	ProgramPos token.Position // position of "program" keyword
	Name       *Ident
	Block      *Block
	Period     token.Position // position of the final "."
}

func (x *Program) Pos() token.Position { return x.ProgramPos }
func (x *Program) End() token.Position { return x.Period.Advance(1) }

func (x *Program) String() string {
	var out bytes.Buffer
	out.WriteString("program ")
	out.WriteString(x.Name.String())
	out.WriteString(";\n")
	out.WriteString(x.Block.String())
	out.WriteString(".")
	return out.String()
}

// Block holds the declarations of a scope followed by its body.
type Block struct {
	Vars        []*VarDecl
	Subroutines []Decl
	Body        *Compound
}

func (x *Block) Pos() token.Position {
	if len(x.Vars) > 0 {
		return x.Vars[0].Pos()
	}
	if len(x.Subroutines) > 0 {
		return x.Subroutines[0].Pos()
	}
	return x.Body.Pos()
}

func (x *Block) End() token.Position { return x.Body.End() }

func (x *Block) String() string {
	var out bytes.Buffer
	if len(x.Vars) > 0 {
		out.WriteString("var ")
		for _, v := range x.Vars {
			out.WriteString(v.String())
			out.WriteString("; ")
		}
		out.WriteString("\n")
	}
	for _, sub := range x.Subroutines {
		out.WriteString(sub.String())
		out.WriteString(";\n")
	}
	out.WriteString(x.Body.String())
	return out.String()
}
