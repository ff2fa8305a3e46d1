// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/types"
)

// declare checks a declaration and inserts the symbol it declares into the
// innermost table of stack.  The returned code initializes the declared
// storage.  declare may return both a symbol and an error when the symbol
// was inserted before a problem in its body was found.
func (c *Checker) declare(stmt ast.Stmt, stack Stack, prefix string) (*Symbol, []ir.Instr, error) {
	switch s := stmt.(type) {
	case *ast.FuncDecl:
		sym, err := c.declareFunc(s, stack, prefix)
		return sym, nil, err
	case *ast.VarDecl:
		return c.declareVar(s, stack, prefix)
	case *ast.ClassDecl:
		sym, err := c.declareClass(s, stack, prefix)
		return sym, nil, err
	case *ast.Block:
		sym := c.block(s, stack, c.blockPath(prefix), nil)
		c.blocks = append(c.blocks, sym)
		return sym, []ir.Instr{&ir.Block{Name: sym.Path, Code: sym.Kind.(*Block).Code}}, nil
	case *ast.BadStmt:
		return nil, nil, errSkip
	}
	return nil, nil, errorf(diagnostic.UnknownError, stmt.Pos(), "Unknown statement.")
}

func (c *Checker) insert(stack Stack, sym *Symbol) error {
	if prev := stack.Declared(sym.Name); prev != nil {
		return redeclared(sym.Span, sym.Name, prev)
	}
	stack.Top().Declare(sym)
	return nil
}

// resolveType maps an annotation to a type.  Class names resolve lexically
// and count as a use of the class.
func (c *Checker) resolveType(te *ast.TypeExpr, stack Stack) (types.Type, error) {
	if t, ok := types.FromKeyword(te.Name.Text, te.Nullable); ok {
		return t, nil
	}
	sym, ok := stack.Lexical().Lookup(te.Name.Text)
	if !ok {
		return nil, errorf(diagnostic.TypeError, te.Span, "type '%s' not found", te.Name.Text)
	}
	if _, isClass := sym.Kind.(*Class); !isClass {
		return nil, errorf(diagnostic.TypeError, te.Span, "type '%s' not found", te.Name.Text)
	}
	c.refs = append(c.refs, &Reference{Symbol: sym, Span: te.Name.Span})
	return types.Named{Name: sym.Name, Null: te.Nullable}, nil
}

func (c *Checker) declareVar(s *ast.VarDecl, stack Stack, prefix string) (*Symbol, []ir.Instr, error) {
	typ, err := c.annotation(s, stack)
	if err != nil {
		return nil, nil, err
	}
	value, typ, err := c.initializer(s, typ, stack)
	if err != nil {
		return nil, nil, err
	}
	sym := &Symbol{
		Name: s.Name.Text,
		Path: prefix + "$" + s.Name.Text,
		Span: s.Name.Span,
		Kind: &Variable{Type: typ, Value: value, Field: -1},
	}
	if err := c.insert(stack, sym); err != nil {
		return nil, nil, err
	}
	code := []ir.Instr{&ir.Alloca{Path: sym.Path, Typ: typ}}
	if value != nil {
		code = append(code, &ir.Store{Path: sym.Path, Value: value})
	}
	return sym, code, nil
}

// annotation resolves the declared type of s, or returns nil when s has no
// annotation.
func (c *Checker) annotation(s *ast.VarDecl, stack Stack) (types.Type, error) {
	if s.Type == nil {
		return nil, nil
	}
	typ, err := c.resolveType(s.Type, stack)
	if err != nil {
		return nil, err
	}
	if types.IsVoid(typ) {
		return nil, errorf(diagnostic.TypeError, s.Type.Span, "variable '%s' cannot have type Void", s.Name.Text)
	}
	return typ, nil
}

// initializer checks the value of s against typ.  With a nil typ the
// variable's type is inferred from the value.
func (c *Checker) initializer(s *ast.VarDecl, typ types.Type, stack Stack) (ir.Value, types.Type, error) {
	if s.Value == nil {
		if typ == nil {
			return nil, nil, errorf(diagnostic.TypeError, s.Name.Span, "type annotations needed")
		}
		return nil, typ, nil
	}
	v, err := c.resolve(s.Value, stack)
	if err != nil {
		return nil, nil, err
	}
	got := v.Type()
	switch {
	case types.IsVoid(got):
		return nil, nil, errorf(diagnostic.TypeError, ast.Chain(s.Value), "expression has no value")
	case typ == nil:
		if _, isNull := got.(types.Null); isNull {
			return nil, nil, errorf(diagnostic.TypeError, s.Name.Span, "type annotations needed")
		}
		typ = got
	case !types.Accepts(typ, got):
		return nil, nil, mismatch(ast.Chain(s.Value), typ, got)
	}
	return v, typ, nil
}

// declareFunc inserts the function before checking its body so the body
// may call the function recursively.
func (c *Checker) declareFunc(s *ast.FuncDecl, stack Stack, prefix string) (*Symbol, error) {
	sym, body, err := c.funcSignature(s, stack, prefix)
	if err != nil {
		return nil, err
	}
	return sym, body()
}

// funcSignature resolves the parameters and result of s and inserts the
// function into the innermost table of stack.  The returned func checks the
// body.  An unresolvable return annotation is reported, the function is
// declared returning Void and its body is still checked, but the body's
// result is not compared with the annotation.
func (c *Checker) funcSignature(s *ast.FuncDecl, stack Stack, prefix string) (*Symbol, func() error, error) {
	path := prefix + "$" + s.Name.Text
	fn := &Function{
		ParamScope: NewScopes(),
		Return:     types.Void{},
		ReturnSpan: s.Body.Rbrace,
	}
	for i, p := range s.Params {
		typ, err := c.resolveType(p.Type, stack)
		if err != nil {
			return nil, nil, err
		}
		if types.IsVoid(typ) {
			return nil, nil, errorf(diagnostic.TypeError, p.Type.Span, "parameter '%s' cannot have type Void", p.Name.Text)
		}
		param := &Symbol{
			Name: p.Name.Text,
			Path: path + "$" + p.Name.Text,
			Span: p.Name.Span,
			Kind: &Variable{Type: typ, Value: &ir.Param{Index: i, Typ: typ}, Field: -1},
		}
		if prev := fn.ParamScope.LookupLocal(param.Name); prev != nil {
			return nil, nil, redeclared(param.Span, param.Name, prev)
		}
		fn.ParamScope.Declare(param)
		fn.Params = append(fn.Params, param)
		fn.Entry = append(fn.Entry,
			&ir.Alloca{Path: param.Path, Typ: typ},
			&ir.Store{Path: param.Path, Value: &ir.Param{Index: i, Typ: typ}})
	}
	compare := true
	if s.Result != nil {
		fn.ReturnSpan = s.Result.Span
		typ, err := c.resolveType(s.Result, stack)
		if err != nil {
			c.report(err)
			compare = false
		} else {
			fn.Return = typ
		}
	}
	sym := &Symbol{Name: s.Name.Text, Path: path, Span: s.Name.Span, Kind: fn}
	if err := c.insert(stack, sym); err != nil {
		return nil, nil, err
	}
	body := func() error {
		fn.Body = c.block(s.Body, stack.Push(fn.ParamScope), path, fn.ParamScope)
		blk := fn.Body.Kind.(*Block)
		fn.Children = blk.Children
		if compare && !types.Accepts(fn.Return, blk.Ret) {
			span := blk.RetSpan
			if s.Result != nil {
				span = s.Result.Span
			}
			return mismatch(span, fn.Return, blk.Ret)
		}
		return nil
	}
	return sym, body, nil
}

// fieldSignature declares a class field.  An annotated field is declared
// with its annotation and the returned func checks its initializer later.
// A field without annotation takes its type from its initializer at once,
// so that initializer sees only the members declared before it.
func (c *Checker) fieldSignature(s *ast.VarDecl, stack Stack, prefix string) (*Symbol, func() error, error) {
	if s.Type == nil {
		sym, _, err := c.declareVar(s, stack, prefix)
		return sym, nil, err
	}
	typ, err := c.annotation(s, stack)
	if err != nil {
		return nil, nil, err
	}
	v := &Variable{Type: typ, Field: -1}
	sym := &Symbol{Name: s.Name.Text, Path: prefix + "$" + s.Name.Text, Span: s.Name.Span, Kind: v}
	if err := c.insert(stack, sym); err != nil {
		return nil, nil, err
	}
	init := func() error {
		value, _, err := c.initializer(s, typ, stack)
		v.Value = value
		return err
	}
	return sym, init, nil
}

// declareClass declares every member before any initializer or method body
// is checked, so members may refer to siblings declared after them.  The
// class itself is inserted last and is not visible to its own members.
func (c *Checker) declareClass(s *ast.ClassDecl, stack Stack, prefix string) (*Symbol, error) {
	sym, checks, err := c.classMembers(s, stack, prefix)
	if err != nil {
		return nil, err
	}
	for _, check := range checks {
		c.report(check())
	}
	return sym, c.insert(stack, sym)
}

// classMembers fills the member table of s and returns the pending checks
// of member initializers and bodies in source order.  A nested class is
// declared into the member table right away, like any other member, and its
// own checks join the pending list.
func (c *Checker) classMembers(s *ast.ClassDecl, stack Stack, prefix string) (*Symbol, []func() error, error) {
	if prev := stack.Declared(s.Name.Text); prev != nil {
		return nil, nil, redeclared(s.Name.Span, s.Name.Text, prev)
	}
	path := prefix + "$" + s.Name.Text
	class := &Class{Members: NewScopes()}
	sym := &Symbol{Name: s.Name.Text, Path: path, Span: s.Name.Span, Kind: class}
	inner := stack.Push(class.Members)
	var checks []func() error
	for _, member := range s.Members {
		var (
			msym  *Symbol
			check func() error
			err   error
		)
		switch m := member.(type) {
		case *ast.FuncDecl:
			msym, check, err = c.funcSignature(m, inner, path)
		case *ast.VarDecl:
			msym, check, err = c.fieldSignature(m, inner, path)
		case *ast.ClassDecl:
			var nested []func() error
			msym, nested, err = c.classMembers(m, inner, path)
			if err == nil {
				inner.Top().Declare(msym)
			}
			checks = append(checks, nested...)
		case *ast.BadStmt:
			continue
		default:
			c.report(errorf(diagnostic.UnknownError, member.Pos(), "Unknown statement."))
			continue
		}
		c.report(err)
		if check != nil {
			checks = append(checks, check)
		}
		if msym == nil {
			continue
		}
		switch k := msym.Kind.(type) {
		case *Variable:
			k.Field = len(class.Fields)
			class.Fields = append(class.Fields, msym)
		case *Function:
			k.Class = sym
		}
	}
	return sym, checks, nil
}
