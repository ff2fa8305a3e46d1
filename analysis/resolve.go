// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

// resolve infers the type of e and lowers it.  The type of an expression is
// the Type of the returned value.
func (c *Checker) resolve(e ast.Expr, stack Stack) (ir.Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return literal(e), nil
	case *ast.Paren:
		return c.resolve(e.X, stack)
	case *ast.Ident:
		return c.ident(e, stack, nil)
	case *ast.Call:
		return c.call(e, stack, nil)
	case *ast.Binary:
		return c.binary(e, stack)
	case *ast.Unary:
		return c.unary(e, stack)
	case *ast.TypeExpr:
		if _, err := c.resolveType(e, stack); err != nil {
			return nil, err
		}
		return nil, errorf(diagnostic.TypeError, e.Span, "type '%s' is not an expression", e.Name.Text)
	case *ast.BadExpr:
		return nil, errSkip
	}
	return nil, errorf(diagnostic.UnknownError, e.Pos(), "unknown expression")
}

func literal(e *ast.Literal) ir.Value {
	var typ types.Type
	switch e.Kind {
	case ast.LitString:
		typ = types.String{}
	case ast.LitChar:
		typ = types.Char{}
	case ast.LitInt:
		typ = types.Integer{}
	case ast.LitFloat:
		typ = types.Float{}
	case ast.LitBool:
		typ = types.Bool{}
	default:
		typ = types.Null{}
	}
	return &ir.Const{Typ: typ, Text: e.Value}
}

// lookup resolves name in stack and records the reference.
func (c *Checker) lookup(stack Stack, name ast.Name) (*Symbol, error) {
	sym, ok := stack.Lookup(name.Text)
	if !ok {
		return nil, undefined(name.Span, name.Text)
	}
	c.refs = append(c.refs, &Reference{Symbol: sym, Span: name.Span})
	return sym, nil
}

// ident resolves a variable reference.  recv is the instance whose member
// table stack resolves in, or nil outside a member-access chain.
func (c *Checker) ident(e *ast.Ident, stack Stack, recv ir.Value) (ir.Value, error) {
	sym, err := c.lookup(stack, e.Name)
	if err != nil {
		return nil, err
	}
	v, ok := sym.Kind.(*Variable)
	if !ok {
		return nil, misused(e.Name.Span, sym, "variable")
	}
	var val ir.Value = &ir.Load{Path: sym.Path, Typ: v.Type}
	if class, inMember := stack.InMember(); inMember && recv != nil {
		val = &ir.Member{Base: recv, Class: class.Path, Field: sym.Name, Index: v.Field, Typ: v.Type}
	}
	if e.Next == nil {
		return val, nil
	}
	return c.member(e.Next, val, stack)
}

// call resolves a function call or, for a class name, a constructor call.
// Arguments always resolve in the lexical scope of the call, even in the
// middle of a member-access chain.
func (c *Checker) call(e *ast.Call, stack Stack, recv ir.Value) (ir.Value, error) {
	sym, err := c.lookup(stack, e.Name)
	if err != nil {
		return nil, err
	}
	var val ir.Value
	switch k := sym.Kind.(type) {
	case *Function:
		args, err := c.args(e, k.Params, stack.Lexical())
		if err != nil {
			return nil, err
		}
		val = &ir.Call{Path: sym.Path, Ret: k.Return, Args: args, Recv: recv}
	case *Class:
		if len(e.Args) != 0 {
			return nil, arity(e, 0)
		}
		val = &ir.New{Class: sym.Path, Typ: types.Named{Name: sym.Name}}
	default:
		return nil, misused(e.Name.Span, sym, "function")
	}
	if e.Next == nil {
		return val, nil
	}
	return c.member(e.Next, val, stack)
}

func arity(e *ast.Call, want int) *Error {
	return errorf(diagnostic.TypeError, e.ArgsPos(),
		"this function takes %d argument but %d arguments were supplied", want, len(e.Args))
}

func (c *Checker) args(e *ast.Call, params []*Symbol, stack Stack) ([]ir.Value, error) {
	if len(e.Args) != len(params) {
		return nil, arity(e, len(params))
	}
	args := make([]ir.Value, len(e.Args))
	for i, arg := range e.Args {
		v, err := c.resolve(arg, stack)
		if err != nil {
			return nil, err
		}
		want := params[i].Type()
		if !types.Accepts(want, v.Type()) {
			return nil, mismatch(ast.Chain(arg), want, v.Type())
		}
		args[i] = v
	}
	return args, nil
}

// member resolves the continuation of a member-access chain on base.  While
// resolving next, names are looked up only in the member table of base's
// class.  Finding the class is not a use of it.
func (c *Checker) member(next ast.Expr, base ir.Value, stack Stack) (ir.Value, error) {
	named, ok := base.Type().(types.Named)
	if !ok {
		return nil, errorf(diagnostic.TypeError, ast.Chain(next), "type '%s' has no members", base.Type())
	}
	class := stack.Class(named.Name)
	if class == nil {
		return nil, errorf(diagnostic.TypeError, ast.Chain(next), "type '%s' not found", named.Name)
	}
	inner := stack.Member(class)
	switch n := next.(type) {
	case *ast.Ident:
		return c.ident(n, inner, base)
	case *ast.Call:
		return c.call(n, inner, base)
	}
	return nil, errorf(diagnostic.SyntaxError, next.Pos(), "expected member name")
}

func (c *Checker) binary(e *ast.Binary, stack Stack) (ir.Value, error) {
	x, err := c.resolve(e.X, stack)
	if err != nil {
		return nil, err
	}
	y, err := c.resolve(e.Y, stack)
	if err != nil {
		return nil, err
	}
	xt, yt := x.Type(), y.Type()
	var typ types.Type
	switch e.Op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if !types.Equal(xt, yt) {
			return nil, mismatch(ast.Chain(e.Y), xt, yt)
		}
		if !types.IsNumeric(xt) && !(e.Op == token.PLUS && types.Equal(xt, types.String{})) {
			return nil, badOperand(e.Op, e.OpPos, xt)
		}
		typ = xt
	case token.EQ, token.NEQ:
		if !equatable(xt, yt) {
			return nil, mismatch(ast.Chain(e.Y), xt, yt)
		}
		typ = types.Bool{}
	case token.LT, token.GT, token.LE, token.GE:
		if !types.Equal(xt, yt) {
			return nil, mismatch(ast.Chain(e.Y), xt, yt)
		}
		if !types.IsNumeric(xt) && !types.Equal(xt, types.Char{}) {
			return nil, badOperand(e.Op, e.OpPos, xt)
		}
		typ = types.Bool{}
	case token.AND, token.OR:
		if !types.Equal(xt, types.Bool{}) {
			return nil, mismatch(ast.Chain(e.X), types.Bool{}, xt)
		}
		if !types.Equal(yt, types.Bool{}) {
			return nil, mismatch(ast.Chain(e.Y), types.Bool{}, yt)
		}
		typ = types.Bool{}
	default:
		return nil, errorf(diagnostic.InternalError, e.OpPos, "unknown binary operator '%s'", e.Op)
	}
	return &ir.BinOp{Op: e.Op.String(), X: x, Y: y, Typ: typ}, nil
}

// equatable reports whether values of types a and b may be tested for
// equality.  Nullability is ignored and null compares with any nullable
// type.
func equatable(a, b types.Type) bool {
	if types.Accepts(a, b) || types.Accepts(b, a) {
		return true
	}
	return types.Equal(types.WithNull(a, false), types.WithNull(b, false))
}

func (c *Checker) unary(e *ast.Unary, stack Stack) (ir.Value, error) {
	x, err := c.resolve(e.X, stack)
	if err != nil {
		return nil, err
	}
	xt := x.Type()
	switch e.Op {
	case token.MINUS:
		if !types.IsNumeric(xt) {
			return nil, badOperand(e.Op, e.OpPos, xt)
		}
	case token.NOT:
		if !types.Equal(xt, types.Bool{}) {
			return nil, mismatch(ast.Chain(e.X), types.Bool{}, xt)
		}
	default:
		return nil, errorf(diagnostic.InternalError, e.OpPos, "unknown unary operator '%s'", e.Op)
	}
	return &ir.UnOp{Op: e.Op.String(), X: x, Typ: xt}, nil
}

func badOperand(op token.Type, span token.Span, t types.Type) *Error {
	return errorf(diagnostic.TypeError, span, "cannot apply operator '%s' to type '%s'", op, t)
}
