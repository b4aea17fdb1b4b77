package ast

import (
	"bytes"
	"strings"

	"github.com/rascal-lang/rascalc/internal/token"
)

// Assign is a statement that stores a value: "x := expr".
type Assign struct {
	Name   *Ident
	Assign token.Position // position of ":="
	Value  Expr
}

func (x *Assign) stmtNode() {}

func (x *Assign) Pos() token.Position { return x.Name.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

func (x *Assign) String() string {
	return x.Name.String() + " := " + x.Value.String()
}

// CallStmt invokes a procedure for its side effects: "p(a, b)".
type CallStmt struct {
	Call *Call
}

func (x *CallStmt) stmtNode() {}

func (x *CallStmt) Pos() token.Position { return x.Call.Pos() }
func (x *CallStmt) End() token.Position { return x.Call.End() }
func (x *CallStmt) String() string      { return x.Call.String() }

// If is a conditional statement with an optional else branch.
type If struct {
	IfPos       token.Position // position of "if" keyword
	Cond        Expr
	Consequence Stmt
	Alternative Stmt // nil when there is no else branch
}

func (x *If) stmtNode() {}

func (x *If) Pos() token.Position { return x.IfPos }

func (x *If) End() token.Position {
	if x.Alternative != nil {
		return x.Alternative.End()
	}
	return x.Consequence.End()
}

func (x *If) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(x.Cond.String())
	out.WriteString(" then ")
	out.WriteString(x.Consequence.String())
	if x.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(x.Alternative.String())
	}
	return out.String()
}

// While is a pre-tested loop.
type While struct {
	WhilePos token.Position // position of "while" keyword
	Cond     Expr
	Body     Stmt
}

func (x *While) stmtNode() {}

func (x *While) Pos() token.Position { return x.WhilePos }
func (x *While) End() token.Position { return x.Body.End() }

func (x *While) String() string {
	return "while " + x.Cond.String() + " do " + x.Body.String()
}

// Read stores values from input into each named variable, in order.
type Read struct {
	ReadPos token.Position // position of "read" keyword
	Names   []*Ident
	Rparen  token.Position
}

func (x *Read) stmtNode() {}

func (x *Read) Pos() token.Position { return x.ReadPos }
func (x *Read) End() token.Position { return x.Rparen.Advance(1) }

func (x *Read) String() string {
	return "read(" + joinIdents(x.Names) + ")"
}

// Write prints each argument, in order.
type Write struct {
	WritePos token.Position // position of "write" keyword
	Args     []Expr
	Rparen   token.Position
}

func (x *Write) stmtNode() {}

func (x *Write) Pos() token.Position { return x.WritePos }
func (x *Write) End() token.Position { return x.Rparen.Advance(1) }

func (x *Write) String() string {
	return "write(" + joinExprs(x.Args) + ")"
}

// Compound is a "begin ... end" statement sequence.
type Compound struct {
	Begin  token.Position
	Stmts  []Stmt
	EndPos token.Position // position of "end" keyword
}

func (x *Compound) stmtNode() {}

func (x *Compound) Pos() token.Position { return x.Begin }
func (x *Compound) End() token.Position { return x.EndPos.Advance(3) }

func (x *Compound) String() string {
	parts := make([]string, 0, len(x.Stmts))
	for _, s := range x.Stmts {
		parts = append(parts, s.String())
	}
	return "begin " + strings.Join(parts, "; ") + " end"
}
