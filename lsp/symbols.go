// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/analysis"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request.  Classes list their members and functions list their parameters
// and the locals of their body.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, res := doc.snapshot()
	if res == nil {
		return nil, nil
	}
	return documentSymbols(content, res.Globals.Symbols(), false), nil
}

func documentSymbols(src string, syms []*analysis.Symbol, member bool) []protocol.DocumentSymbol {
	out := []protocol.DocumentSymbol{}
	for _, sym := range syms {
		if sym.Name == "" {
			continue
		}
		sel := spanToRange(src, sym.Span)
		ds := protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         strPtr(sym.Signature()),
			Kind:           mapSymbolKind(sym, member),
			Range:          sel,
			SelectionRange: sel,
		}
		switch k := sym.Kind.(type) {
		case *analysis.Function:
			children := append([]*analysis.Symbol(nil), k.Params...)
			if k.Body != nil {
				ds.Range = spanToRange(src, sym.Span.Join(k.Body.Span))
				children = append(children, k.Body.Kind.(*analysis.Block).Children.Symbols()...)
			}
			ds.Children = documentSymbols(src, children, false)
		case *analysis.Class:
			ds.Children = documentSymbols(src, k.Members.Symbols(), true)
		}
		out = append(out, ds)
	}
	return out
}

func mapSymbolKind(sym *analysis.Symbol, member bool) protocol.SymbolKind {
	switch sym.Kind.(type) {
	case *analysis.Function:
		if member {
			return protocol.SymbolKindMethod
		}
		return protocol.SymbolKindFunction
	case *analysis.Class:
		return protocol.SymbolKindClass
	case *analysis.Variable:
		if member {
			return protocol.SymbolKindField
		}
		return protocol.SymbolKindVariable
	}
	return protocol.SymbolKindNamespace
}
