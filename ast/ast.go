// Copyright © 2024 The ELPS authors

// Package ast declares the syntax tree produced by the zx parser and consumed
// by semantic analysis.  Statement and expression kinds are closed sets: every
// node type implements exactly one of Stmt or Expr through an unexported
// marker method.
package ast

import "github.com/luthersystems/zxc/parser/token"

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the source range covered by the node.
	Pos() token.Span
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// File is a parsed source file.
type File struct {
	Name   string
	Source []byte
	Stmts  []Stmt
}

// Name is an identifier occurrence.
type Name struct {
	Text string
	Span token.Span
}

// ---------------------------------------------------------------------------
// Statements

// FuncDecl declares a function: fn name(params) [: Result] { Body }.
type FuncDecl struct {
	Keyword token.Span
	Name    Name
	Lparen  token.Span
	Params  []*Param
	Rparen  token.Span
	Result  *TypeExpr // nil when the return type is omitted
	Body    *Block
}

// Param is a single function parameter.
type Param struct {
	Name Name
	Type *TypeExpr
}

// VarDecl declares a variable: var name [: Type] [= Value].
type VarDecl struct {
	Keyword token.Span
	Name    Name
	Type    *TypeExpr // nil when the annotation is omitted
	Assign  token.Span
	Value   Expr // nil when there is no initializer
}

// ClassDecl declares a class whose members are declarations.
type ClassDecl struct {
	Keyword token.Span
	Name    Name
	Lbrace  token.Span
	Members []Stmt
	Rbrace  token.Span
}

// Block is a brace-delimited statement list.
type Block struct {
	Lbrace token.Span
	Stmts  []Stmt
	Rbrace token.Span
}

// Return is a return statement.  Value is nil for a bare return.
type Return struct {
	Keyword token.Span
	Value   Expr
}

// ExprStmt is an expression evaluated for its value or effect.
type ExprStmt struct {
	X Expr
}

// If is a conditional.  Else is nil, a *Block, or an *If for else-if chains.
type If struct {
	Keyword token.Span
	Cond    Expr
	Then    *Block
	Else    Stmt
}

// While is a condition-controlled loop.
type While struct {
	Keyword token.Span
	Cond    Expr
	Body    *Block
}

// For is a counted loop: for name in count { Body }.
type For struct {
	Keyword token.Span
	Var     Name
	Iter    Expr
	Body    *Block
}

// BadStmt is a placeholder for a statement that failed to parse.
type BadStmt struct {
	Span token.Span
}

func (s *FuncDecl) Pos() token.Span  { return s.Keyword.Join(s.Body.Pos()) }
func (s *VarDecl) Pos() token.Span {
	span := s.Keyword.Join(s.Name.Span)
	if s.Type != nil {
		span = span.Join(s.Type.Pos())
	}
	if s.Value != nil {
		span = span.Join(Chain(s.Value))
	}
	return span
}
func (s *ClassDecl) Pos() token.Span { return s.Keyword.Join(s.Rbrace) }
func (s *Block) Pos() token.Span     { return s.Lbrace.Join(s.Rbrace) }
func (s *Return) Pos() token.Span {
	if s.Value == nil {
		return s.Keyword
	}
	return s.Keyword.Join(Chain(s.Value))
}
func (s *ExprStmt) Pos() token.Span { return Chain(s.X) }
func (s *If) Pos() token.Span {
	if s.Else != nil {
		return s.Keyword.Join(s.Else.Pos())
	}
	return s.Keyword.Join(s.Then.Pos())
}
func (s *While) Pos() token.Span   { return s.Keyword.Join(s.Body.Pos()) }
func (s *For) Pos() token.Span     { return s.Keyword.Join(s.Body.Pos()) }
func (s *BadStmt) Pos() token.Span { return s.Span }

func (*FuncDecl) stmtNode()  {}
func (*VarDecl) stmtNode()   {}
func (*ClassDecl) stmtNode() {}
func (*Block) stmtNode()     {}
func (*Return) stmtNode()    {}
func (*ExprStmt) stmtNode()  {}
func (*If) stmtNode()        {}
func (*While) stmtNode()     {}
func (*For) stmtNode()       {}
func (*BadStmt) stmtNode()   {}

// ---------------------------------------------------------------------------
// Expressions

// LitKind classifies literal values.
type LitKind int

const (
	LitString LitKind = iota
	LitChar
	LitInt
	LitFloat
	LitBool
	LitNull
)

func (k LitKind) String() string {
	switch k {
	case LitString:
		return "string"
	case LitChar:
		return "char"
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitBool:
		return "bool"
	case LitNull:
		return "null"
	default:
		return "unknown"
	}
}

// Literal is a constant value.  Value holds the decoded text: the unquoted
// contents of strings and chars, the digits of numbers, "true"/"false".
type Literal struct {
	Kind  LitKind
	Value string
	Span  token.Span
}

// TypeExpr is a type annotation such as Int or Point?.
type TypeExpr struct {
	Name     Name
	Nullable bool
	Span     token.Span
}

// Ident references a name.  Next is the continuation of a member-access
// chain (a.b), either an *Ident or a *Call.
type Ident struct {
	Name Name
	Next Expr
}

// Call invokes a named function.  Next is the continuation of a
// member-access chain (f().b).
type Call struct {
	Name   Name
	Lparen token.Span
	Args   []Expr
	Rparen token.Span
	Next   Expr
}

// Binary is an infix operation.
type Binary struct {
	Op    token.Type
	OpPos token.Span
	X     Expr
	Y     Expr
}

// Unary is a prefix operation.
type Unary struct {
	Op    token.Type
	OpPos token.Span
	X     Expr
}

// Paren is a parenthesized expression.
type Paren struct {
	Lparen token.Span
	X      Expr
	Rparen token.Span
}

// BadExpr is a placeholder for an expression that failed to parse.
type BadExpr struct {
	Span token.Span
}

func (e *Literal) Pos() token.Span  { return e.Span }
func (e *TypeExpr) Pos() token.Span { return e.Span }
func (e *Ident) Pos() token.Span    { return e.Name.Span }
func (e *Call) Pos() token.Span     { return e.Name.Span.Join(e.Rparen) }
func (e *Binary) Pos() token.Span   { return e.X.Pos().Join(Chain(e.Y)) }
func (e *Unary) Pos() token.Span    { return e.OpPos.Join(Chain(e.X)) }
func (e *Paren) Pos() token.Span    { return e.Lparen.Join(e.Rparen) }
func (e *BadExpr) Pos() token.Span  { return e.Span }

func (*Literal) exprNode()  {}
func (*TypeExpr) exprNode() {}
func (*Ident) exprNode()    {}
func (*Call) exprNode()     {}
func (*Binary) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Paren) exprNode()    {}
func (*BadExpr) exprNode()  {}

// ArgsPos returns the span of a call's parenthesized argument list.
func (e *Call) ArgsPos() token.Span {
	return e.Lparen.Join(e.Rparen)
}

// Chain returns the full span of an expression including its member-access
// continuation.
func Chain(e Expr) token.Span {
	span := e.Pos()
	switch e := e.(type) {
	case *Ident:
		if e.Next != nil {
			span = span.Join(Chain(e.Next))
		}
	case *Call:
		if e.Next != nil {
			span = span.Join(Chain(e.Next))
		}
	}
	return span
}
