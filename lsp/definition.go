// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/analysis"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	sym, _, content := symbolAt(doc, params.Position)
	// Builtins have no navigable source.
	if sym == nil || analysis.IsBuiltin(sym.Path) {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: spanToRange(content, sym.Span),
	}, nil
}

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	sym, _, content := symbolAt(doc, params.Position)
	if sym == nil {
		return nil, nil
	}
	_, res := doc.snapshot()
	uri := params.TextDocument.URI

	var locs []protocol.Location
	if params.Context.IncludeDeclaration && !analysis.IsBuiltin(sym.Path) {
		locs = append(locs, protocol.Location{URI: uri, Range: spanToRange(content, sym.Span)})
	}
	for _, ref := range res.ReferencesTo(sym) {
		locs = append(locs, protocol.Location{URI: uri, Range: spanToRange(content, ref.Span)})
	}
	return locs, nil
}
