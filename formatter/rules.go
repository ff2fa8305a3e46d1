// Copyright © 2024 The ELPS authors

package formatter

import "github.com/luthersystems/zxc/parser/token"

// Config holds formatting configuration.
type Config struct {
	IndentSize    int // spaces per indent level (default: 4)
	MaxBlankLines int // max consecutive blank lines (default: 1)
}

// DefaultConfig returns the default formatting configuration.
func DefaultConfig() *Config {
	return &Config{
		IndentSize:    4,
		MaxBlankLines: 1,
	}
}

// noSpaceBefore lists tokens that attach to the token before them.
var noSpaceBefore = map[token.Type]bool{
	token.PAREN_R:   true,
	token.COMMA:     true,
	token.COLON:     true,
	token.SEMICOLON: true,
	token.DOT:       true,
	token.QUESTION:  true,
}

// noSpaceAfter lists tokens that attach to the token after them.
var noSpaceAfter = map[token.Type]bool{
	token.PAREN_L: true,
	token.DOT:     true,
}

// binaryOps are the infix operators.  A line ending in one continues the
// expression on the next line.
var binaryOps = map[token.Type]bool{
	token.PLUS:    true,
	token.MINUS:   true,
	token.STAR:    true,
	token.SLASH:   true,
	token.PERCENT: true,
	token.ASSIGN:  true,
	token.EQ:      true,
	token.NEQ:     true,
	token.LT:      true,
	token.GT:      true,
	token.LE:      true,
	token.GE:      true,
	token.AND:     true,
	token.OR:      true,
	token.ARROW:   true,
}

// operandExpected reports whether a minus following prev is a negation.
func operandExpected(prev *token.Token) bool {
	if prev == nil {
		return true
	}
	switch prev.Type {
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.CHAR,
		token.TRUE, token.FALSE, token.NULL, token.PAREN_R, token.QUESTION:
		return false
	}
	return true
}

// spaceBetween reports whether a space separates prev and tok on one line.
// prevUnary marks prev as a prefix operator.
func spaceBetween(prev, tok *token.Token, prevUnary bool) bool {
	switch {
	case prev == nil:
		return false
	case tok.Type == token.COMMENT:
		return true
	case noSpaceBefore[tok.Type], noSpaceAfter[prev.Type], prevUnary:
		return false
	case tok.Type == token.PAREN_L:
		// calls and parameter lists
		return prev.Type != token.IDENT
	case tok.Type == token.BRACE_R && prev.Type == token.BRACE_L:
		return false
	}
	return true
}
