package ast

import (
	"bytes"
	"strings"

	"github.com/rascal-lang/rascalc/internal/token"
)

// VarDecl declares one or more variables of a single type: "a, b: integer".
type VarDecl struct {
	Names []*Ident
	Colon token.Position
	Type  *Ident
}

func (x *VarDecl) Pos() token.Position { return x.Names[0].Pos() }
func (x *VarDecl) End() token.Position { return x.Type.End() }

func (x *VarDecl) String() string {
	return joinIdents(x.Names) + ": " + x.Type.String()
}

// ParamGroup is one group of formal parameters sharing a type and passing
// mode: "var a, b: integer" or "c: boolean".
type ParamGroup struct {
	VarPos token.Position // position of "var"; invalid for by-value groups
	ByRef  bool
	Names  []*Ident
	Type   *Ident
}

func (x *ParamGroup) Pos() token.Position {
	if x.ByRef {
		return x.VarPos
	}
	return x.Names[0].Pos()
}

func (x *ParamGroup) End() token.Position { return x.Type.End() }

func (x *ParamGroup) String() string {
	s := joinIdents(x.Names) + ": " + x.Type.String()
	if x.ByRef {
		return "var " + s
	}
	return s
}

// Procedure is a subroutine declaration without a result.
type Procedure struct {
	ProcPos token.Position // position of "procedure" keyword
	Name    *Ident
	Params  []*ParamGroup
	Block   *Block
}

func (x *Procedure) declNode() {}

func (x *Procedure) Pos() token.Position        { return x.ProcPos }
func (x *Procedure) End() token.Position        { return x.Block.End() }
func (x *Procedure) Ident() *Ident              { return x.Name }
func (x *Procedure) ParamGroups() []*ParamGroup { return x.Params }
func (x *Procedure) Body() *Block               { return x.Block }

func (x *Procedure) String() string {
	var out bytes.Buffer
	out.WriteString("procedure ")
	out.WriteString(x.Name.String())
	out.WriteString(paramsString(x.Params))
	out.WriteString(";\n")
	out.WriteString(x.Block.String())
	return out.String()
}

// Function is a subroutine declaration that yields a value of type Result.
type Function struct {
	FuncPos token.Position // position of "function" keyword
	Name    *Ident
	Params  []*ParamGroup
	Result  *Ident
	Block   *Block
}

func (x *Function) declNode() {}

func (x *Function) Pos() token.Position        { return x.FuncPos }
func (x *Function) End() token.Position        { return x.Block.End() }
func (x *Function) Ident() *Ident              { return x.Name }
func (x *Function) ParamGroups() []*ParamGroup { return x.Params }
func (x *Function) Body() *Block               { return x.Block }

func (x *Function) String() string {
	var out bytes.Buffer
	out.WriteString("function ")
	out.WriteString(x.Name.String())
	out.WriteString(paramsString(x.Params))
	out.WriteString(": ")
	out.WriteString(x.Result.String())
	out.WriteString(";\n")
	out.WriteString(x.Block.String())
	return out.String()
}

// ParamCount returns the total number of formal parameters across groups.
func ParamCount(groups []*ParamGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Names)
	}
	return n
}

func paramsString(groups []*ParamGroup) string {
	if len(groups) == 0 {
		return ""
	}
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, g.String())
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

func joinIdents(idents []*Ident) string {
	names := make([]string, 0, len(idents))
	for _, id := range idents {
		names = append(names, id.Name)
	}
	return strings.Join(names, ", ")
}
