// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/parser/token"
)

// symbolAt returns the symbol named at pos, by reference or declaration,
// with the span of the identifier under the cursor.
func symbolAt(doc *Document, pos protocol.Position) (*analysis.Symbol, token.Span, string) {
	content, res := doc.snapshot()
	if res == nil {
		return nil, token.Span{}, content
	}
	offset := positionToOffset(content, pos)
	if ref := res.ReferenceAt(offset); ref != nil {
		return ref.Symbol, ref.Span, content
	}
	if sym := res.DeclarationAt(offset); sym != nil {
		return sym, sym.Span, content
	}
	return nil, token.Span{}, content
}

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	sym, span, content := symbolAt(doc, params.Position)
	if sym == nil {
		return nil, nil
	}
	r := spanToRange(content, span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: buildHoverContent(sym),
		},
		Range: &r,
	}, nil
}

// buildHoverContent builds Markdown hover text for a symbol.
func buildHoverContent(sym *analysis.Symbol) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "```zx\n%s\n```", sym.Signature())
	if name, ok := analysis.BuiltinName(sym.Path); ok {
		fmt.Fprintf(&sb, "\n\nbuiltin `%s`", name)
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n\n%s `%s`, type `%s`", sym.KindName(), sym.Path, sym.Type())
	switch sym.Uses {
	case 0:
		sb.WriteString(", never used")
	case 1:
		sb.WriteString(", used once")
	default:
		fmt.Fprintf(&sb, ", used %d times", sym.Uses)
	}
	return sb.String()
}
