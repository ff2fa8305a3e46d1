// Copyright © 2024 The ELPS authors

package formatter

import (
	"bytes"
	"strings"

	"github.com/luthersystems/zxc/parser/token"
)

// printer reprints a token stream.  Line breaks come from the source,
// capped by MaxBlankLines; indentation is recomputed from bracket depth.
type printer struct {
	cfg       *Config
	buf       bytes.Buffer
	depth     int
	prev      *token.Token
	prevUnary bool
}

func newPrinter(cfg *Config) *printer {
	return &printer{cfg: cfg}
}

func (p *printer) write(tok *token.Token) {
	unary := tok.Type == token.NOT ||
		(tok.Type == token.MINUS && (tok.PrecedingNewlines > 0 || operandExpected(p.prev)))

	switch tok.Type {
	case token.BRACE_R, token.PAREN_R:
		if p.depth > 0 {
			p.depth--
		}
	}

	switch {
	case p.prev == nil:
		p.indent(0)
	case tok.PrecedingNewlines > 0:
		p.buf.WriteString(strings.Repeat("\n", min(tok.PrecedingNewlines, p.cfg.MaxBlankLines+1)))
		level := p.depth
		if binaryOps[p.prev.Type] && !p.prevUnary {
			level++
		}
		p.indent(level)
	case spaceBetween(p.prev, tok, p.prevUnary):
		p.buf.WriteByte(' ')
	}

	if tok.Type == token.COMMENT {
		p.buf.WriteString(strings.TrimRight(tok.Text, " \t\r"))
	} else {
		p.buf.WriteString(tok.Text)
	}

	switch tok.Type {
	case token.BRACE_L, token.PAREN_L:
		p.depth++
	}
	p.prev = tok
	p.prevUnary = unary
}

func (p *printer) indent(level int) {
	p.buf.WriteString(strings.Repeat(" ", level*p.cfg.IndentSize))
}
