// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/parser/token"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// Every block and class body spanning more than one line folds.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	doc.mu.Lock()
	content := doc.Content
	file := doc.file
	res := doc.analysis
	doc.mu.Unlock()

	ranges := []protocol.FoldingRange{}
	fold := func(span token.Span) {
		r := spanToRange(content, span)
		if r.End.Line > r.Start.Line {
			kind := string(protocol.FoldingRangeKindRegion)
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: r.Start.Line,
				EndLine:   r.End.Line,
				Kind:      &kind,
			})
		}
	}
	if file != nil {
		collectClassFolds(file.Stmts, fold)
	}
	if res != nil {
		res.Walk(func(sym *analysis.Symbol, _ int) bool {
			if _, ok := sym.Kind.(*analysis.Block); ok {
				fold(sym.Span)
			}
			return true
		})
	}
	return ranges, nil
}

func collectClassFolds(stmts []ast.Stmt, fold func(token.Span)) {
	for _, stmt := range stmts {
		if c, ok := stmt.(*ast.ClassDecl); ok {
			fold(c.Lbrace.Join(c.Rbrace))
			collectClassFolds(c.Members, fold)
		}
	}
}
