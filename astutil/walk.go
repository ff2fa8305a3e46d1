// Copyright © 2024 The ELPS authors

// Package astutil provides shared AST walking utilities for zx syntax trees.
//
// These helpers are used by the analysis package, the language server and
// the command line tools.
package astutil

import "github.com/luthersystems/zxc/ast"

// Children returns the direct child nodes of node in source order.
func Children(node ast.Node) []ast.Node {
	var out []ast.Node
	add := func(n ast.Node) {
		if n != nil {
			out = append(out, n)
		}
	}
	switch n := node.(type) {
	case *ast.FuncDecl:
		for _, p := range n.Params {
			add(p.Type)
		}
		if n.Result != nil {
			add(n.Result)
		}
		add(n.Body)
	case *ast.VarDecl:
		if n.Type != nil {
			add(n.Type)
		}
		if n.Value != nil {
			add(n.Value)
		}
	case *ast.ClassDecl:
		for _, m := range n.Members {
			add(m)
		}
	case *ast.Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *ast.Return:
		if n.Value != nil {
			add(n.Value)
		}
	case *ast.ExprStmt:
		add(n.X)
	case *ast.If:
		add(n.Cond)
		add(n.Then)
		if n.Else != nil {
			add(n.Else)
		}
	case *ast.While:
		add(n.Cond)
		add(n.Body)
	case *ast.For:
		add(n.Iter)
		add(n.Body)
	case *ast.Ident:
		if n.Next != nil {
			add(n.Next)
		}
	case *ast.Call:
		for _, a := range n.Args {
			add(a)
		}
		if n.Next != nil {
			add(n.Next)
		}
	case *ast.Binary:
		add(n.X)
		add(n.Y)
	case *ast.Unary:
		add(n.X)
	case *ast.Paren:
		add(n.X)
	}
	return out
}

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level statements.
func Walk(stmts []ast.Stmt, fn func(node ast.Node, parent ast.Node, depth int)) {
	for _, stmt := range stmts {
		walkNode(stmt, nil, 0, fn)
	}
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	fn(node, parent, depth)
	for _, child := range Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// Inspect traverses node depth-first.  If fn returns false Inspect does not
// descend into the children of that node.
func Inspect(node ast.Node, fn func(ast.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// NodeAt returns the innermost node whose span contains offset, along with
// the chain of enclosing nodes from outermost to innermost.  NodeAt returns
// nil when no top-level statement contains offset.
func NodeAt(file *ast.File, offset int) (ast.Node, []ast.Node) {
	var path []ast.Node
	for _, stmt := range file.Stmts {
		if contains(stmt, offset) {
			path = descend(stmt, offset, path)
			break
		}
	}
	if len(path) == 0 {
		return nil, nil
	}
	return path[len(path)-1], path
}

func descend(node ast.Node, offset int, path []ast.Node) []ast.Node {
	path = append(path, node)
	for _, child := range Children(node) {
		if contains(child, offset) {
			return descend(child, offset, path)
		}
	}
	return path
}

func contains(node ast.Node, offset int) bool {
	span := node.Pos()
	if x, ok := node.(ast.Expr); ok {
		span = ast.Chain(x)
	}
	return span.Start <= offset && offset < span.End
}
