package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/rascal-lang/rascalc/ast"
	"github.com/rascal-lang/rascalc/parser"
)

func (a *app) astCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the syntax tree of a program as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			name, text, err := a.readSource(path)
			if err != nil {
				return err
			}
			program, err := parser.Parse(cmd.Context(), text, parser.WithFilename(name))
			if err != nil {
				return err
			}
			return a.printJSON(a.stdout, nodeToJSON(program))
		},
	}
}

func (a *app) printJSON(w io.Writer, value any) error {
	var (
		data []byte
		err  error
	)
	if a.colorize(w) {
		data, err = prettyjson.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// ASTNode represents a node in the JSON AST output.
type ASTNode struct {
	Type     string     `json:"type"`
	Value    any        `json:"value,omitempty"`
	Pos      string     `json:"pos"`
	Children []*ASTNode `json:"children,omitempty"`
}

func (n *ASTNode) add(child ast.Node) {
	if node := nodeToJSON(child); node != nil {
		n.Children = append(n.Children, node)
	}
}

func nodeToJSON(node ast.Node) *ASTNode {
	if node == nil || reflect.ValueOf(node).IsNil() {
		return nil
	}
	pos := node.Pos()
	result := &ASTNode{
		Type: reflect.TypeOf(node).Elem().Name(),
		Pos:  fmt.Sprintf("%d:%d", pos.LineNumber(), pos.ColumnNumber()),
	}

	switch n := node.(type) {
	case *ast.Program:
		result.Value = n.Name.Name
		result.add(n.Block)

	case *ast.Block:
		for _, v := range n.Vars {
			result.add(v)
		}
		for _, sub := range n.Subroutines {
			result.add(sub)
		}
		result.add(n.Body)

	case *ast.VarDecl:
		result.Value = identList(n.Names) + ": " + n.Type.Name

	case *ast.Procedure:
		result.Value = n.Name.Name
		for _, g := range n.Params {
			result.add(g)
		}
		result.add(n.Block)

	case *ast.Function:
		result.Value = n.Name.Name + ": " + n.Result.Name
		for _, g := range n.Params {
			result.add(g)
		}
		result.add(n.Block)

	case *ast.ParamGroup:
		value := identList(n.Names) + ": " + n.Type.Name
		if n.ByRef {
			value = "var " + value
		}
		result.Value = value

	case *ast.Compound:
		for _, stmt := range n.Stmts {
			result.add(stmt)
		}

	case *ast.Assign:
		result.Value = n.Name.Name
		result.add(n.Value)

	case *ast.CallStmt:
		return nodeToJSON(n.Call)

	case *ast.If:
		result.add(n.Cond)
		result.add(n.Consequence)
		if n.Alternative != nil {
			result.add(n.Alternative)
		}

	case *ast.While:
		result.add(n.Cond)
		result.add(n.Body)

	case *ast.Read:
		result.Value = identList(n.Names)

	case *ast.Write:
		for _, arg := range n.Args {
			result.add(arg)
		}

	case *ast.Ident:
		result.Value = n.Name

	case *ast.Int:
		result.Value = n.Value

	case *ast.Bool:
		result.Value = n.Value

	case *ast.Prefix:
		result.Value = n.Op
		result.add(n.X)

	case *ast.Infix:
		result.Value = n.Op
		result.add(n.X)
		result.add(n.Y)

	case *ast.Paren:
		result.add(n.X)

	case *ast.Call:
		result.Value = n.Fn.Name
		for _, arg := range n.Args {
			result.add(arg)
		}
	}
	return result
}

func identList(idents []*ast.Ident) string {
	names := make([]string, len(idents))
	for i, ident := range idents {
		names[i] = ident.Name
	}
	return strings.Join(names, ", ")
}
