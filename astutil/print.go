// Copyright © 2024 The ELPS authors

package astutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/zxc/ast"
)

// Fprint writes an indented tree view of file to w.
func Fprint(w io.Writer, file *ast.File) error {
	p := &printer{w: w}
	p.line(0, "File %s", file.Name)
	for _, stmt := range file.Stmts {
		p.node(1, stmt)
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, v ...interface{}) {
	if p.err != nil {
		return
	}
	prefix := ""
	if depth > 0 {
		prefix = strings.Repeat("|   ", depth-1) + "├── "
	}
	_, p.err = fmt.Fprintf(p.w, prefix+format+"\n", v...)
}

func (p *printer) node(depth int, node ast.Node) {
	switch n := node.(type) {
	case *ast.FuncDecl:
		p.line(depth, "Function %s", n.Name.Text)
		if len(n.Params) > 0 {
			p.line(depth+1, "Parameters")
			for _, param := range n.Params {
				p.line(depth+2, "%s: %s", param.Name.Text, typeString(param.Type))
			}
		}
		if n.Result != nil {
			p.line(depth+1, "Return Type %s", typeString(n.Result))
		}
		p.node(depth+1, n.Body)
		return
	case *ast.VarDecl:
		if n.Type != nil {
			p.line(depth, "Variable %s: %s", n.Name.Text, typeString(n.Type))
		} else {
			p.line(depth, "Variable %s", n.Name.Text)
		}
		if n.Value != nil {
			p.node(depth+1, n.Value)
		}
		return
	case *ast.ClassDecl:
		p.line(depth, "Class %s", n.Name.Text)
	case *ast.Block:
		p.line(depth, "Block")
	case *ast.Return:
		p.line(depth, "Return")
	case *ast.ExprStmt:
		p.node(depth, n.X)
		return
	case *ast.If:
		p.line(depth, "If")
	case *ast.While:
		p.line(depth, "While")
	case *ast.For:
		p.line(depth, "For %s", n.Var.Text)
	case *ast.BadStmt:
		p.line(depth, "BadStmt %s", n.Span)
		return
	case *ast.Literal:
		if n.Kind == ast.LitString || n.Kind == ast.LitChar {
			p.line(depth, "Literal %s %q", n.Kind, n.Value)
		} else {
			p.line(depth, "Literal %s %s", n.Kind, n.Value)
		}
	case *ast.TypeExpr:
		p.line(depth, "Type %s", typeString(n))
	case *ast.Ident:
		p.line(depth, "Identifier %s", n.Name.Text)
	case *ast.Call:
		p.line(depth, "Call %s", n.Name.Text)
	case *ast.Binary:
		p.line(depth, "Binary %s", n.Op)
	case *ast.Unary:
		p.line(depth, "Unary %s", n.Op)
	case *ast.Paren:
		p.line(depth, "Paren")
	case *ast.BadExpr:
		p.line(depth, "BadExpr %s", n.Span)
		return
	default:
		p.line(depth, "%T", n)
	}
	for _, child := range Children(node) {
		p.node(depth+1, child)
	}
}

func typeString(t *ast.TypeExpr) string {
	if t.Nullable {
		return t.Name.Text + "?"
	}
	return t.Name.Text
}
