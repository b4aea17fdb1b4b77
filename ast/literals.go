package ast

import (
	"github.com/rascal-lang/rascalc/internal/token"
)

// Int is an integer literal.
type Int struct {
	ValuePos token.Position
	Literal  string
	Value    int64
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }
func (x *Int) String() string      { return x.Literal }

// Bool is a "true" or "false" literal.
type Bool struct {
	ValuePos token.Position
	Literal  string
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }
func (x *Bool) String() string      { return x.Literal }
