// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

var keywords = []string{
	"fn", "var", "class", "return", "if", "else", "while", "for", "in",
	"true", "false", "null",
}

var typeNames = []string{
	types.KeywordString, types.KeywordInteger, types.KeywordChar,
	types.KeywordFloat, types.KeywordBool, types.KeywordVoid,
}

// textDocumentCompletion handles the textDocument/completion request.  The
// candidates are the names visible at the cursor: locals declared earlier
// in enclosing blocks, parameters of the enclosing function, globals,
// builtins, keywords and type names.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, res := doc.snapshot()
	if res == nil {
		return nil, nil
	}
	offset := positionToOffset(content, params.Position)
	prefix := wordBefore(content, offset)

	items := []protocol.CompletionItem{}
	seen := make(map[string]bool)
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if seen[label] || !strings.HasPrefix(label, prefix) {
			return
		}
		seen[label] = true
		item := protocol.CompletionItem{Label: label, Kind: &kind}
		if detail != "" {
			item.Detail = strPtr(detail)
		}
		items = append(items, item)
	}
	// Innermost scopes first so shadowing names win.
	for _, sym := range visibleLocals(res, offset) {
		add(sym.Name, completionKind(sym), sym.Signature())
	}
	for _, sym := range res.Globals.Symbols() {
		add(sym.Name, completionKind(sym), sym.Signature())
	}
	for _, sym := range res.Prelude.Symbols() {
		add(sym.Name, protocol.CompletionItemKindFunction, sym.Signature())
	}
	for _, kw := range keywords {
		add(kw, protocol.CompletionItemKindKeyword, "")
	}
	for _, name := range typeNames {
		add(name, protocol.CompletionItemKindClass, "")
	}
	return items, nil
}

// visibleLocals returns the named symbols of the blocks and functions
// enclosing offset, innermost first.  Block locals count only once their
// declaration precedes offset.
func visibleLocals(res *analysis.Result, offset int) []*analysis.Symbol {
	var scopes [][]*analysis.Symbol
	res.Walk(func(sym *analysis.Symbol, _ int) bool {
		switch k := sym.Kind.(type) {
		case *analysis.Function:
			if k.Body == nil || !contains(k.Body.Span, offset) {
				return false
			}
			if k.Class != nil {
				scopes = append(scopes, k.Class.Kind.(*analysis.Class).Members.Symbols())
			}
			scopes = append(scopes, k.Params)
		case *analysis.Block:
			if !contains(sym.Span, offset) {
				return false
			}
			var locals []*analysis.Symbol
			for _, local := range k.Children.Symbols() {
				if local.Span.Start < offset {
					locals = append(locals, local)
				}
			}
			scopes = append(scopes, locals)
		case *analysis.Variable:
			return false
		}
		return true
	})
	var out []*analysis.Symbol
	for i := len(scopes) - 1; i >= 0; i-- {
		syms := append([]*analysis.Symbol(nil), scopes[i]...)
		sort.SliceStable(syms, func(a, b int) bool { return syms[a].Span.Start > syms[b].Span.Start })
		out = append(out, syms...)
	}
	return out
}

func contains(span token.Span, offset int) bool {
	return span.Start < offset && offset < span.End
}

func completionKind(sym *analysis.Symbol) protocol.CompletionItemKind {
	switch k := sym.Kind.(type) {
	case *analysis.Function:
		if k.Class != nil {
			return protocol.CompletionItemKindMethod
		}
		return protocol.CompletionItemKindFunction
	case *analysis.Class:
		return protocol.CompletionItemKindClass
	case *analysis.Variable:
		if k.Field >= 0 {
			return protocol.CompletionItemKindField
		}
	}
	return protocol.CompletionItemKindVariable
}

// wordBefore returns the identifier characters immediately before offset.
func wordBefore(src string, offset int) string {
	start := offset
	for start > 0 {
		c := rune(src[start-1])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		start--
	}
	return src[start:offset]
}
