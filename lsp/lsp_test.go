// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/zxtest"
)

const testURI = "file:///tmp/test.zx"

const testSource = `class Point {
    var x: Int = 0
    fn get(): Int { return x }
}

fn add(a: Int, b: Int): Int {
    var sum = a + b
    return sum
}

fn main() {
    var p = Point()
    printInt(add(p.get(), 2))
}
`

func testServer(t *testing.T) *Server {
	return New(WithLogger(zxtest.Logrus(t)))
}

// openDoc opens a document in the test server and returns it.
func openDoc(s *Server, uri, content string) *Document {
	return s.docs.Open(uri, 1, content)
}

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func position(line, char int) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

func docPosition(line, char int) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Position:     position(line, char),
	}
}

// completionLabels extracts labels from a completion result.
func completionLabels(t *testing.T, result any) []string {
	t.Helper()
	require.NotNil(t, result, "completion result should not be nil")
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "completion result should be []CompletionItem, got %T", result)
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

func open(t *testing.T, s *Server, ctx *glsp.Context, content string) {
	t.Helper()
	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "zx",
			Version:    1,
			Text:       content,
		},
	})
	require.NoError(t, err)
}

func TestPositionConversion(t *testing.T) {
	src := "ab\n\U0001F600x\n"
	assert.Equal(t, position(0, 0), offsetToPosition(src, 0))
	assert.Equal(t, position(1, 0), offsetToPosition(src, 3))
	assert.Equal(t, position(1, 2), offsetToPosition(src, 7), "astral runes take two UTF-16 units")
	assert.Equal(t, position(2, 0), offsetToPosition(src, 100))

	assert.Equal(t, 7, positionToOffset(src, position(1, 2)))
	assert.Equal(t, 2, positionToOffset(src, position(0, 50)), "clamped to the end of the line")
	assert.Equal(t, len(src), positionToOffset(src, position(9, 0)))
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/tmp/test.zx", uriToPath(testURI))
	assert.Equal(t, testURI, pathToURI("/tmp/test.zx"))
	assert.Equal(t, "relative.zx", pathToURI("relative.zx"))
}

func TestInitialize(t *testing.T) {
	s := testServer(t)
	result, err := s.initialize(mockContext(), &protocol.InitializeParams{})
	require.NoError(t, err)
	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.NotNil(t, init.Capabilities.HoverProvider)
	assert.NotNil(t, init.Capabilities.CompletionProvider)
}

func TestDiagnosticsOnOpen_ValidCode(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	open(t, s, ctx, testSource)
	require.Len(t, *captured, 1)
	assert.Equal(t, testURI, (*captured)[0].URI)
	assert.Empty(t, (*captured)[0].Diagnostics, "debug records are not published")
}

func TestDiagnosticsOnTypeError(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	open(t, s, ctx, "var x: Int = \"s\"\n")
	require.Len(t, *captured, 1)
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, "TypeError", d.Code.Value)
	assert.Equal(t, "zxc", *d.Source)
	assert.Equal(t, "mismatched types\nnote: expected `Int`, found `Str`", d.Message)
	assert.Equal(t, protocol.Range{Start: position(0, 13), End: position(0, 16)}, d.Range)
}

func TestDiagnosticsRelatedInformation(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	open(t, s, ctx, "var x = 1\nvar x = 2\n")
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 1)
	require.Len(t, diags[0].RelatedInformation, 1)
	rel := diags[0].RelatedInformation[0]
	assert.Equal(t, "previous declaration", rel.Message)
	assert.Equal(t, testURI, rel.Location.URI)
	assert.Equal(t, protocol.Range{Start: position(0, 4), End: position(0, 5)}, rel.Location.Range)
	assert.Equal(t, protocol.Range{Start: position(1, 4), End: position(1, 5)}, diags[0].Range)
}

func TestDiagnosticsOnParseError(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	open(t, s, ctx, "var = 1\nvar ok = 2\n")
	require.Len(t, *captured, 1)
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, "SyntaxError", diags[0].Code.Value)
	assert.Equal(t, uint32(0), uint32(diags[0].Range.Start.Line))

	// the rest of the document is still analyzed
	doc := s.docs.Get(testURI)
	_, res := doc.snapshot()
	assert.NotNil(t, res.Globals.LookupLocal("ok"))
}

func TestDiagnosticsWarning(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	open(t, s, ctx, "fn f() {\n    var unused = 1\n}\n")
	diags := (*captured)[0].Diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Equal(t, "Warning", diags[0].Code.Value)
	assert.Equal(t, protocol.Range{Start: position(1, 8), End: position(1, 14)}, diags[0].Range)
}

func TestDiagnosticsOnClose_Cleared(t *testing.T) {
	s := testServer(t)
	open(t, s, mockContext(), "var x: Int = \"s\"\n")

	closeCtx, captured := capturingContext()
	s.captureNotify(closeCtx)
	err := s.textDocumentDidClose(closeCtx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Empty(t, (*captured)[0].Diagnostics)
	assert.Nil(t, s.docs.Get(testURI))
}

func TestDiagnosticsOnSave_Immediate(t *testing.T) {
	s := testServer(t)
	ctx, captured := capturingContext()
	open(t, s, ctx, testSource)
	err := s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	assert.Len(t, *captured, 2)
}

func TestDidChangeRechecks(t *testing.T) {
	s := testServer(t)
	open(t, s, mockContext(), "var x = 1\n")
	err := s.textDocumentDidChange(mockContext(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "var y = 1.5\n"},
		},
	})
	require.NoError(t, err)
	doc := s.docs.Get(testURI)
	content, res := doc.snapshot()
	assert.Equal(t, "var y = 1.5\n", content)
	assert.Nil(t, res.Globals.LookupLocal("x"))
	assert.NotNil(t, res.Globals.LookupLocal("y"))
	require.NoError(t, s.shutdown(mockContext()))
}

func TestHover(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: docPosition(12, 14),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
	assert.Equal(t, "```zx\nfn add(a: Int, b: Int): Int\n```\n\nfunction `$add`, type `Int`, used once", content.Value)
	assert.Equal(t, protocol.Range{Start: position(12, 13), End: position(12, 16)}, *hover.Range)
}

func TestHoverOnDeclaration(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: docPosition(6, 8),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	value := hover.Contents.(protocol.MarkupContent).Value
	assert.Contains(t, value, "var sum: Int")
	assert.Contains(t, value, "variable `$add$sum`")
}

func TestHoverOnBuiltin(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: docPosition(12, 6),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.True(t, strings.HasSuffix(hover.Contents.(protocol.MarkupContent).Value, "builtin `printInt`"))
}

func TestHoverOnWhitespace(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)
	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: docPosition(4, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestDefinition(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	result, err := s.textDocumentDefinition(mockContext(), &protocol.DefinitionParams{
		TextDocumentPositionParams: docPosition(7, 12),
	})
	require.NoError(t, err)
	loc, ok := result.(protocol.Location)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, testURI, loc.URI)
	assert.Equal(t, protocol.Range{Start: position(6, 8), End: position(6, 11)}, loc.Range)

	// builtins have no source
	result, err = s.textDocumentDefinition(mockContext(), &protocol.DefinitionParams{
		TextDocumentPositionParams: docPosition(12, 6),
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestReferences(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	locs, err := s.textDocumentReferences(mockContext(), &protocol.ReferenceParams{
		TextDocumentPositionParams: docPosition(5, 7),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, position(5, 7), locs[0].Range.Start)
	assert.Equal(t, position(6, 14), locs[1].Range.Start)

	locs, err = s.textDocumentReferences(mockContext(), &protocol.ReferenceParams{
		TextDocumentPositionParams: docPosition(5, 7),
	})
	require.NoError(t, err)
	assert.Len(t, locs, 1)
}

func TestDocumentSymbols(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	result, err := s.textDocumentDocumentSymbol(mockContext(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	syms, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok)
	require.Len(t, syms, 3)

	point := syms[0]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, protocol.SymbolKindClass, point.Kind)
	require.Len(t, point.Children, 2)
	assert.Equal(t, "x", point.Children[0].Name)
	assert.Equal(t, protocol.SymbolKindField, point.Children[0].Kind)
	assert.Equal(t, "get", point.Children[1].Name)
	assert.Equal(t, protocol.SymbolKindMethod, point.Children[1].Kind)

	add := syms[1]
	assert.Equal(t, "add", add.Name)
	assert.Equal(t, protocol.SymbolKindFunction, add.Kind)
	assert.Equal(t, "fn add(a: Int, b: Int): Int", *add.Detail)
	assert.Equal(t, protocol.Range{Start: position(5, 3), End: position(8, 1)}, add.Range)
	var children []string
	for _, c := range add.Children {
		children = append(children, c.Name)
	}
	assert.Equal(t, []string{"a", "b", "sum"}, children)

	assert.Equal(t, "main", syms[2].Name)
}

func TestCompletion(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: docPosition(12, 4),
	})
	require.NoError(t, err)
	labels := completionLabels(t, result)
	assert.Contains(t, labels, "p")
	assert.Contains(t, labels, "add")
	assert.Contains(t, labels, "Point")
	assert.Contains(t, labels, "printInt")
	assert.Contains(t, labels, "while")
	assert.Contains(t, labels, "Float")
	assert.NotContains(t, labels, "sum")
	assert.NotContains(t, labels, "x")
	assert.Equal(t, "p", labels[0], "locals come first")

	result, err = s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: docPosition(12, 7),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"print", "printInt", "printFloat", "printChar", "printBool"}, completionLabels(t, result))
}

func TestCompletionInMethod(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	result, err := s.textDocumentCompletion(mockContext(), &protocol.CompletionParams{
		TextDocumentPositionParams: docPosition(2, 27),
	})
	require.NoError(t, err)
	labels := completionLabels(t, result)
	assert.Contains(t, labels, "x")
	assert.Contains(t, labels, "get")
}

func TestFoldingRanges(t *testing.T) {
	s := testServer(t)
	openDoc(s, testURI, testSource)

	ranges, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	var spans [][2]int
	for _, r := range ranges {
		spans = append(spans, [2]int{int(r.StartLine), int(r.EndLine)})
	}
	assert.ElementsMatch(t, [][2]int{{0, 3}, {5, 8}, {10, 13}}, spans)
}

func TestUnknownDocument(t *testing.T) {
	s := testServer(t)
	hover, err := s.textDocumentHover(mockContext(), &protocol.HoverParams{
		TextDocumentPositionParams: docPosition(0, 0),
	})
	assert.NoError(t, err)
	assert.Nil(t, hover)
}

func TestExit(t *testing.T) {
	s := testServer(t)
	code := -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.exit(mockContext()))
	assert.Equal(t, 0, code)
}
