// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/zxc/parser/lexer"
	"github.com/luthersystems/zxc/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer but other implementations may be desirable for
// testing or for feeding pre-lexed input.
type TokenStream interface {
	// ReadToken returns the next token from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF.
	ReadToken() *token.Token
}

// TokenGenerator implements TokenStream.  The function will be called any time
// a TokenSource wants a token.
type TokenGenerator func() *token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() *token.Token {
	return fn()
}

// TokenSlice returns a TokenStream that yields toks followed by an EOF token
// positioned at the end of the last token.
func TokenSlice(toks []*token.Token) TokenStream {
	var end token.Span
	return TokenGenerator(func() *token.Token {
		if len(toks) == 0 {
			return &token.Token{
				Type:   token.EOF,
				Source: &token.Location{Pos: end.End},
				Span:   token.Span{Start: end.End, End: end.End},
			}
		}
		tok := toks[0]
		toks = toks[1:]
		end = tok.Span
		return tok
	})
}

// TokenSource abstracts a TokenStream by adding one token of lookahead.
// Comment tokens are dropped; their line breaks are carried over to the
// token that follows them.
type TokenSource struct {
	lex   TokenStream
	Token *token.Token
	peek  *token.Token
}

func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{
		lex: stream,
	}
}

// NewTokenSource initializes and returns a new TokenSource that scans tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	lex := lexer.New(scanner)
	return NewTokenStreamSource(lex)
}

func (s *TokenSource) Peek() *token.Token {
	if s.peek != nil {
		return s.peek
	}
	newlines := 0
	for {
		tok := s.lex.ReadToken()
		if tok.Type != token.COMMENT {
			tok.PrecedingNewlines += newlines
			s.peek = tok
			return tok
		}
		newlines += tok.PrecedingNewlines
	}
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	s.peek = nil
}
