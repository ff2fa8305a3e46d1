// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

// outcome is the result of checking one statement inside a block.  typ is
// nil for statements that do not produce a value.
type outcome struct {
	code []ir.Instr
	typ  types.Type
	span token.Span
}

// block checks the statements of b in a fresh table pushed onto stack and
// warns about locals that were never read once the block is done.  Names in
// guard may not be redeclared in the block; a function body uses it to
// protect parameter names.  Extra symbols in pre are declared in the block's
// table before any statement is checked.
func (c *Checker) block(b *ast.Block, stack Stack, path string, guard *Scopes, pre ...*Symbol) *Symbol {
	blk := &Block{Children: NewScopes(), Ret: types.Void{}, RetSpan: b.Rbrace}
	for _, sym := range pre {
		blk.Children.Declare(sym)
	}
	sym := &Symbol{Path: path, Span: b.Pos(), Kind: blk}
	inner := stack.Push(blk.Children).withGuard(guard)
	for _, stmt := range b.Stmts {
		out, err := c.statement(stmt, inner, path, blk)
		if err != nil {
			c.report(err)
			continue
		}
		if out.typ != nil {
			blk.Ret, blk.RetSpan = out.typ, out.span
		}
		blk.Code = append(blk.Code, out.code...)
	}
	for _, unused := range blk.Children.Unused() {
		c.warnf(unused, "field is never read: '%s'", unused.Name)
	}
	return sym
}

// nested checks a block owned by a statement of parent.
func (c *Checker) nested(b *ast.Block, stack Stack, prefix string, parent *Block) *Symbol {
	sym := c.block(b, stack, c.blockPath(prefix), nil)
	parent.Blocks = append(parent.Blocks, sym)
	return sym
}

func (c *Checker) statement(stmt ast.Stmt, stack Stack, path string, parent *Block) (outcome, error) {
	switch s := stmt.(type) {
	case *ast.FuncDecl, *ast.VarDecl, *ast.ClassDecl:
		_, code, err := c.declare(stmt, stack, path)
		return outcome{code: code}, err
	case *ast.Block:
		sym := c.nested(s, stack, path, parent)
		blk := sym.Kind.(*Block)
		return outcome{
			code: []ir.Instr{&ir.Block{Name: sym.Path, Code: blk.Code}},
			typ:  blk.Ret,
			span: blk.RetSpan,
		}, nil
	case *ast.ExprStmt:
		v, err := c.resolve(s.X, stack)
		if err != nil {
			return outcome{}, err
		}
		return outcome{code: []ir.Instr{&ir.Eval{Value: v}}, typ: v.Type(), span: ast.Chain(s.X)}, nil
	case *ast.Return:
		if s.Value == nil {
			return outcome{code: []ir.Instr{&ir.Ret{}}, typ: types.Void{}, span: s.Keyword}, nil
		}
		v, err := c.resolve(s.Value, stack)
		if err != nil {
			return outcome{}, err
		}
		return outcome{code: []ir.Instr{&ir.Ret{Value: v}}, typ: v.Type(), span: ast.Chain(s.Value)}, nil
	case *ast.If:
		return c.ifStmt(s, stack, path, parent)
	case *ast.While:
		cond, err := c.condition(s.Cond, stack)
		if err != nil {
			return outcome{}, err
		}
		body := c.nested(s.Body, stack, path, parent)
		return outcome{code: []ir.Instr{&ir.Loop{Cond: cond, Body: body.Kind.(*Block).Code}}}, nil
	case *ast.For:
		return c.forStmt(s, stack, path, parent)
	case *ast.BadStmt:
		return outcome{}, errSkip
	}
	return outcome{}, errorf(diagnostic.UnknownError, stmt.Pos(), "Unknown statement.")
}

// ifStmt produces a value only when it has an else branch and both branches
// produce the same type.
func (c *Checker) ifStmt(s *ast.If, stack Stack, path string, parent *Block) (outcome, error) {
	cond, err := c.condition(s.Cond, stack)
	if err != nil {
		return outcome{}, err
	}
	then := c.nested(s.Then, stack, path, parent).Kind.(*Block)
	instr := &ir.If{Cond: cond, Then: then.Code}
	out := outcome{code: []ir.Instr{instr}}
	var elseType types.Type
	switch e := s.Else.(type) {
	case *ast.Block:
		blk := c.nested(e, stack, path, parent).Kind.(*Block)
		instr.Else = blk.Code
		elseType = blk.Ret
	case *ast.If:
		chained, err := c.ifStmt(e, stack, path, parent)
		if err != nil {
			return outcome{}, err
		}
		instr.Else = chained.code
		elseType = chained.typ
	}
	if elseType != nil && types.Equal(then.Ret, elseType) {
		out.typ, out.span = then.Ret, s.Pos()
	}
	return out, nil
}

// forStmt declares the loop variable in the body's table and lowers the
// loop to a counter running from zero up to the evaluated bound.
func (c *Checker) forStmt(s *ast.For, stack Stack, path string, parent *Block) (outcome, error) {
	bound, err := c.resolve(s.Iter, stack)
	if err != nil {
		return outcome{}, err
	}
	if !types.Equal(bound.Type(), types.Integer{}) {
		return outcome{}, mismatch(ast.Chain(s.Iter), types.Integer{}, bound.Type())
	}
	bodyPath := c.blockPath(path)
	counter := &Symbol{
		Name: s.Var.Text,
		Path: bodyPath + "$" + s.Var.Text,
		Span: s.Var.Span,
		Kind: &Variable{Type: types.Integer{}, Field: -1},
	}
	end := counter.Path + "$end"
	bodySym := c.block(s.Body, stack, bodyPath, nil, counter)
	parent.Blocks = append(parent.Blocks, bodySym)
	body := bodySym.Kind.(*Block)
	intType := types.Integer{}
	load := &ir.Load{Path: counter.Path, Typ: intType}
	loop := &ir.Loop{
		Cond: &ir.BinOp{Op: token.LT.String(), X: load, Y: &ir.Load{Path: end, Typ: intType}, Typ: types.Bool{}},
		Body: body.Code,
		Post: []ir.Instr{&ir.Store{
			Path:  counter.Path,
			Value: &ir.BinOp{Op: token.PLUS.String(), X: load, Y: &ir.Const{Typ: intType, Text: "1"}, Typ: intType},
		}},
	}
	return outcome{code: []ir.Instr{
		&ir.Alloca{Path: counter.Path, Typ: intType},
		&ir.Store{Path: counter.Path, Value: &ir.Const{Typ: intType, Text: "0"}},
		&ir.Alloca{Path: end, Typ: intType},
		&ir.Store{Path: end, Value: bound},
		loop,
	}}, nil
}

func (c *Checker) condition(e ast.Expr, stack Stack) (ir.Value, error) {
	v, err := c.resolve(e, stack)
	if err != nil {
		return nil, err
	}
	if !types.Equal(v.Type(), types.Bool{}) {
		return nil, mismatch(ast.Chain(e), types.Bool{}, v.Type())
	}
	return v, nil
}
