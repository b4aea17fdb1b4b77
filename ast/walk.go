package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range children(node) {
		Walk(v, child)
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

// children returns the non-nil direct children of node in source order.
func children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if n != nil {
			out = append(out, n)
		}
	}
	switch n := node.(type) {
	case *Program:
		add(n.Name)
		if n.Block != nil {
			add(n.Block)
		}
	case *Block:
		for _, v := range n.Vars {
			add(v)
		}
		for _, sub := range n.Subroutines {
			add(sub)
		}
		if n.Body != nil {
			add(n.Body)
		}

	// Declarations
	case *VarDecl:
		for _, id := range n.Names {
			add(id)
		}
		add(n.Type)
	case *ParamGroup:
		for _, id := range n.Names {
			add(id)
		}
		add(n.Type)
	case *Procedure:
		add(n.Name)
		for _, g := range n.Params {
			add(g)
		}
		if n.Block != nil {
			add(n.Block)
		}
	case *Function:
		add(n.Name)
		for _, g := range n.Params {
			add(g)
		}
		add(n.Result)
		if n.Block != nil {
			add(n.Block)
		}

	// Statements
	case *Assign:
		add(n.Name)
		addExpr(&out, n.Value)
	case *CallStmt:
		add(n.Call)
	case *If:
		addExpr(&out, n.Cond)
		addStmt(&out, n.Consequence)
		addStmt(&out, n.Alternative)
	case *While:
		addExpr(&out, n.Cond)
		addStmt(&out, n.Body)
	case *Read:
		for _, id := range n.Names {
			add(id)
		}
	case *Write:
		for _, arg := range n.Args {
			addExpr(&out, arg)
		}
	case *Compound:
		for _, s := range n.Stmts {
			addStmt(&out, s)
		}

	// Expressions
	case *Prefix:
		addExpr(&out, n.X)
	case *Infix:
		addExpr(&out, n.X)
		addExpr(&out, n.Y)
	case *Call:
		add(n.Fn)
		for _, arg := range n.Args {
			addExpr(&out, arg)
		}
	case *Paren:
		addExpr(&out, n.X)
	}
	return out
}

// addExpr and addStmt skip absent optional children such as a missing else
// branch.
func addExpr(out *[]Node, e Expr) {
	if e != nil {
		*out = append(*out, e)
	}
}

func addStmt(out *[]Node, s Stmt) {
	if s != nil {
		*out = append(*out, s)
	}
}
