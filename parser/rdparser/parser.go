// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/parser/token"
)

// Error is a syntax error located at a span of the source text.
type Error struct {
	Source *token.Location
	Span   token.Span
	Msg    string
}

func (err *Error) Error() string {
	if err.Source == nil {
		return err.Msg
	}
	return fmt.Sprintf("%s: %s", err.Source, err.Msg)
}

// ErrorList is the set of syntax errors reported while parsing a file.
type ErrorList []*Error

func (errs ErrorList) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", errs[0], len(errs)-1)
	}
}

// bailout unwinds the parser to the nearest statement boundary.
type bailout struct{}

// Parser is a zx parser.  The parser recovers from syntax errors at statement
// boundaries so that a single mistake does not hide the rest of the file.
type Parser struct {
	name   string
	source []byte
	src    *TokenSource
	depth  int // number of open braces
	errs   ErrorList
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(name string, src *TokenSource) *Parser {
	return &Parser{
		name: name,
		src:  src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	p := NewFromSource(scanner.LocStart().File, NewTokenSource(scanner))
	p.source = scanner.Source()
	return p
}

// ParseFile parses statements until EOF.  A non-nil error is an ErrorList and
// the returned file then contains BadStmt and BadExpr nodes where parsing
// failed.
func (p *Parser) ParseFile() (*ast.File, error) {
	file := &ast.File{Name: p.name, Source: p.source}
	for !p.src.IsEOF() {
		file.Stmts = append(file.Stmts, p.parseStmtRecover())
	}
	if len(p.errs) > 0 {
		return file, p.errs
	}
	return file, nil
}

func (p *Parser) parseStmtRecover() (stmt ast.Stmt) {
	start := p.src.Peek().Span
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			stmt = &ast.BadStmt{Span: start.Join(p.sync())}
		}
	}()
	stmt = p.ParseStmt()
	p.Accept(token.SEMICOLON)
	return stmt
}

// sync skips tokens up to the next likely statement boundary and returns the
// span of the skipped text.  A closing brace that belongs to an open block is
// left for the block to consume.
func (p *Parser) sync() token.Span {
	span := p.src.Peek().Span
	first := true
	for {
		tok := p.src.Peek()
		switch {
		case tok.Type == token.EOF:
			return span
		case tok.Type == token.BRACE_R && p.depth > 0:
			return span
		case tok.Type == token.SEMICOLON:
			p.src.Scan()
			return span.Join(tok.Span)
		case !first && tok.PrecedingNewlines > 0:
			return span
		}
		p.src.Scan()
		span = span.Join(tok.Span)
		first = false
	}
}

// ParseStmt parses a single statement.
func (p *Parser) ParseStmt() ast.Stmt {
	switch p.PeekType() {
	case token.FN:
		return p.ParseFuncDecl()
	case token.VAR:
		return p.ParseVarDecl()
	case token.CLASS:
		return p.ParseClassDecl()
	case token.RETURN:
		return p.ParseReturn()
	case token.IF:
		return p.ParseIf()
	case token.WHILE:
		return p.ParseWhile()
	case token.FOR:
		return p.ParseFor()
	case token.BRACE_L:
		return p.ParseBlock()
	default:
		return &ast.ExprStmt{X: p.ParseExpr()}
	}
}

func (p *Parser) ParseFuncDecl() *ast.FuncDecl {
	decl := &ast.FuncDecl{Keyword: p.expect(token.FN).Span}
	decl.Name = p.parseName()
	decl.Lparen = p.expect(token.PAREN_L).Span
	for p.PeekType() != token.PAREN_R {
		param := &ast.Param{Name: p.parseName()}
		p.expect(token.COLON)
		param.Type = p.ParseType()
		decl.Params = append(decl.Params, param)
		if !p.Accept(token.COMMA) {
			break
		}
	}
	decl.Rparen = p.expect(token.PAREN_R).Span
	if p.Accept(token.COLON, token.ARROW) {
		decl.Result = p.ParseType()
	}
	decl.Body = p.ParseBlock()
	return decl
}

func (p *Parser) ParseVarDecl() *ast.VarDecl {
	decl := &ast.VarDecl{Keyword: p.expect(token.VAR).Span}
	decl.Name = p.parseName()
	if p.Accept(token.COLON) {
		decl.Type = p.ParseType()
	}
	if p.Accept(token.ASSIGN) {
		decl.Assign = p.src.Token.Span
		decl.Value = p.ParseExpr()
	}
	return decl
}

func (p *Parser) ParseClassDecl() *ast.ClassDecl {
	decl := &ast.ClassDecl{Keyword: p.expect(token.CLASS).Span}
	decl.Name = p.parseName()
	decl.Lbrace, decl.Members, decl.Rbrace = p.parseBraced()
	return decl
}

// ParseBlock parses a brace-delimited statement list.
func (p *Parser) ParseBlock() *ast.Block {
	block := &ast.Block{}
	block.Lbrace, block.Stmts, block.Rbrace = p.parseBraced()
	return block
}

func (p *Parser) parseBraced() (lbrace token.Span, stmts []ast.Stmt, rbrace token.Span) {
	lbrace = p.expect(token.BRACE_L).Span
	p.depth++
	defer func() { p.depth-- }()
	for p.PeekType() != token.BRACE_R {
		if p.src.IsEOF() {
			p.errorAt(lbrace, "unmatched {")
			return lbrace, stmts, p.src.Peek().Span
		}
		stmts = append(stmts, p.parseStmtRecover())
	}
	p.src.Scan()
	return lbrace, stmts, p.src.Token.Span
}

func (p *Parser) ParseReturn() *ast.Return {
	ret := &ast.Return{Keyword: p.expect(token.RETURN).Span}
	next := p.src.Peek()
	switch next.Type {
	case token.BRACE_R, token.SEMICOLON, token.EOF:
	default:
		if next.PrecedingNewlines == 0 {
			ret.Value = p.ParseExpr()
		}
	}
	return ret
}

func (p *Parser) ParseIf() *ast.If {
	stmt := &ast.If{Keyword: p.expect(token.IF).Span}
	stmt.Cond = p.ParseExpr()
	stmt.Then = p.ParseBlock()
	if p.Accept(token.ELSE) {
		if p.PeekType() == token.IF {
			stmt.Else = p.ParseIf()
		} else {
			stmt.Else = p.ParseBlock()
		}
	}
	return stmt
}

func (p *Parser) ParseWhile() *ast.While {
	stmt := &ast.While{Keyword: p.expect(token.WHILE).Span}
	stmt.Cond = p.ParseExpr()
	stmt.Body = p.ParseBlock()
	return stmt
}

func (p *Parser) ParseFor() *ast.For {
	stmt := &ast.For{Keyword: p.expect(token.FOR).Span}
	stmt.Var = p.parseName()
	p.expect(token.IN)
	stmt.Iter = p.ParseExpr()
	stmt.Body = p.ParseBlock()
	return stmt
}

// ParseType parses a type annotation such as Int or Point?.
func (p *Parser) ParseType() *ast.TypeExpr {
	typ := &ast.TypeExpr{Name: p.parseName()}
	typ.Span = typ.Name.Span
	if p.Accept(token.QUESTION) {
		typ.Nullable = true
		typ.Span = typ.Span.Join(p.src.Token.Span)
	}
	return typ
}

var precedence = map[token.Type]int{
	token.OR:      1,
	token.AND:     2,
	token.EQ:      3,
	token.NEQ:     3,
	token.LT:      4,
	token.GT:      4,
	token.LE:      4,
	token.GE:      4,
	token.PLUS:    5,
	token.MINUS:   5,
	token.STAR:    6,
	token.SLASH:   6,
	token.PERCENT: 6,
}

// ParseExpr parses an expression.  An expression ends at a line break that
// precedes a binary operator.
func (p *Parser) ParseExpr() ast.Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	x := p.parseUnary()
	for {
		next := p.src.Peek()
		prec, ok := precedence[next.Type]
		if !ok || prec < minPrec || next.PrecedingNewlines > 0 {
			return x
		}
		p.src.Scan()
		y := p.parseBinary(prec + 1)
		x = &ast.Binary{Op: next.Type, OpPos: next.Span, X: x, Y: y}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.Accept(token.MINUS, token.NOT) {
		op := p.src.Token
		return &ast.Unary{Op: op.Type, OpPos: op.Span, X: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.PeekType() {
	case token.INT:
		p.src.Scan()
		text := p.TokenText()
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			p.fail(p.src.Token, "integer literal overflows int: %v", text)
		}
		return p.literal(ast.LitInt, text)
	case token.FLOAT:
		p.src.Scan()
		text := p.TokenText()
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			p.fail(p.src.Token, "invalid floating point literal: %v", text)
		}
		return p.literal(ast.LitFloat, text)
	case token.STRING:
		p.src.Scan()
		s, err := strconv.Unquote(p.TokenText())
		if err != nil {
			p.fail(p.src.Token, "invalid string literal: %v", p.TokenText())
		}
		return p.literal(ast.LitString, s)
	case token.CHAR:
		p.src.Scan()
		s, err := strconv.Unquote(p.TokenText())
		if err != nil {
			p.fail(p.src.Token, "invalid char literal: %v", p.TokenText())
		}
		return p.literal(ast.LitChar, s)
	case token.TRUE, token.FALSE:
		p.src.Scan()
		return p.literal(ast.LitBool, p.TokenText())
	case token.NULL:
		p.src.Scan()
		return p.literal(ast.LitNull, p.TokenText())
	case token.PAREN_L:
		p.src.Scan()
		paren := &ast.Paren{Lparen: p.src.Token.Span}
		paren.X = p.ParseExpr()
		paren.Rparen = p.expect(token.PAREN_R).Span
		return paren
	case token.IDENT:
		return p.parseChain()
	case token.ERROR:
		p.src.Scan()
		p.fail(p.src.Token, "%s", p.TokenText())
	}
	tok := p.src.Peek()
	p.fail(tok, "unexpected %s", describe(tok))
	panic("unreachable")
}

// parseChain parses an identifier or call and any member-access continuation.
func (p *Parser) parseChain() ast.Expr {
	name := p.parseName()
	var x ast.Expr
	var next *ast.Expr
	if tok := p.src.Peek(); tok.Type == token.PAREN_L && tok.PrecedingNewlines == 0 {
		call := &ast.Call{Name: name, Lparen: p.expect(token.PAREN_L).Span}
		for p.PeekType() != token.PAREN_R {
			call.Args = append(call.Args, p.ParseExpr())
			if !p.Accept(token.COMMA) {
				break
			}
		}
		call.Rparen = p.expect(token.PAREN_R).Span
		x, next = call, &call.Next
	} else {
		ident := &ast.Ident{Name: name}
		x, next = ident, &ident.Next
	}
	if p.Accept(token.DOT) {
		*next = p.parseChain()
	}
	return x
}

func (p *Parser) literal(kind ast.LitKind, value string) *ast.Literal {
	return &ast.Literal{Kind: kind, Value: value, Span: p.src.Token.Span}
}

func (p *Parser) parseName() ast.Name {
	tok := p.expect(token.IDENT)
	return ast.Name{Text: tok.Text, Span: tok.Span}
}

// expect consumes a token of type typ or abandons the current statement.
func (p *Parser) expect(typ token.Type) *token.Token {
	if p.Accept(typ) {
		return p.src.Token
	}
	tok := p.src.Peek()
	if tok.Type == token.ERROR {
		p.src.Scan()
		p.fail(tok, "%s", tok.Text)
	}
	p.fail(tok, "expected %s but found %s", describeType(typ), describe(tok))
	panic("unreachable")
}

func (p *Parser) fail(tok *token.Token, format string, v ...interface{}) {
	p.errs = append(p.errs, &Error{
		Source: tok.Source,
		Span:   tok.Span,
		Msg:    fmt.Sprintf(format, v...),
	})
	panic(bailout{})
}

func (p *Parser) errorAt(span token.Span, msg string) {
	p.errs = append(p.errs, &Error{
		Source: p.location(span.Start),
		Span:   span,
		Msg:    msg,
	})
}

func (p *Parser) location(offset int) *token.Location {
	loc := &token.Location{File: p.name, Pos: offset}
	if p.source != nil {
		loc.Line, loc.Col = token.Position(p.source, offset)
	}
	return loc
}

func describe(tok *token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of file"
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.CHAR:
		return fmt.Sprintf("%s %s", tok.Type, tok.Text)
	default:
		return describeType(tok.Type)
	}
}

func describeType(typ token.Type) string {
	if typ.IsKeyword() || strings.ContainsAny(typ.String(), "(){},:;.?+-*/%=!<>&|") {
		return fmt.Sprintf("'%s'", typ)
	}
	return typ.String()
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}
