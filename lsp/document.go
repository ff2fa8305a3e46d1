// Copyright © 2024 The ELPS authors

package lsp

import (
	"errors"
	"sync"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/rdparser"
)

// Document represents an open text document tracked by the LSP server.
// The document is checked whenever its content changes; the parser
// recovers from syntax errors so a partially valid document still has an
// analysis result.
type Document struct {
	mu       sync.Mutex
	URI      string
	Version  int32
	Content  string
	file     *ast.File
	analysis *analysis.Result
	diags    []diagnostic.Diagnostic
}

// check parses and analyzes the document content.
func (d *Document) check() {
	path := uriToPath(d.URI)
	file, err := parser.Parse(path, []byte(d.Content))
	d.diags = nil
	var list rdparser.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			d.diags = append(d.diags, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Kind:     diagnostic.SyntaxError,
				Message:  e.Msg,
				File:     path,
				Span:     e.Span,
			})
		}
	}
	d.file = file
	d.analysis = analysis.Analyze(file, analysis.WithFilename(path))
	d.diags = append(d.diags, d.analysis.Diagnostics...)
}

// snapshot returns the current content and analysis.
func (d *Document) snapshot() (string, *analysis.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Content, d.analysis
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and checks it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.check()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-checks it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.check()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}
