// Copyright © 2024 The ELPS authors

// Package formatter provides source code formatting for zx files.
// Source is checked with the parser and then reprinted from its token stream,
// so comments and line structure survive while spacing and indentation are
// normalized.
package formatter

import (
	"strings"

	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/lexer"
	"github.com/luthersystems/zxc/parser/token"
)

// Format formats zx source code. If cfg is nil, DefaultConfig() is used.
func Format(source []byte, cfg *Config) ([]byte, error) {
	return FormatFile(source, "<stdin>", cfg)
}

// FormatFile formats zx source code, using filename for error messages.
// Source with syntax errors is not formatted.
func FormatFile(source []byte, filename string, cfg *Config) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if _, err := parser.Parse(filename, source); err != nil {
		return nil, err
	}

	pr := newPrinter(cfg)
	lex := lexer.New(token.NewScannerBytes(filename, source))
	for {
		tok := lex.ReadToken()
		if tok.Type == token.EOF {
			break
		}
		pr.write(tok)
	}

	result := pr.buf.String()

	// Ensure exactly one trailing newline (if there's any content)
	if len(result) > 0 {
		result = strings.TrimRight(result, "\n") + "\n"
	}
	return []byte(result), nil
}
