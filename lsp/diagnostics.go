// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/zxc/diagnostic"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.publish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay publishing to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer func() { _ = recover() }() // don't crash the server on analysis panic
		if d := s.docs.Get(doc.URI); d != nil {
			s.publish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.publish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// publish sends the document's diagnostics to the client.  Debug records
// are tooling output and are never published.
func (s *Server) publish(doc *Document) {
	doc.mu.Lock()
	uri := doc.URI
	version := doc.Version
	content := doc.Content
	diags := diagnostic.FilterDebug(doc.diags)
	doc.mu.Unlock()

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, convertDiagnostic(uri, content, d))
	}
	s.log.WithFields(logrus.Fields{
		"uri":         uri,
		"version":     version,
		"diagnostics": len(out),
	}).Debug("publish diagnostics")

	v := protocol.UInteger(version) // #nosec G115 -- document versions are positive
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: out,
	})
}

// convertDiagnostic converts a checker diagnostic to an LSP diagnostic.
// Notes are appended to the message and related labels point into the same
// document.
func convertDiagnostic(uri, src string, d diagnostic.Diagnostic) protocol.Diagnostic {
	msg := d.Message
	if len(d.Notes) > 0 {
		msg += "\nnote: " + strings.Join(d.Notes, "\nnote: ")
	}
	var related []protocol.DiagnosticRelatedInformation
	for _, l := range d.Related {
		related = append(related, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: spanToRange(src, l.Span)},
			Message:  l.Text,
		})
	}
	return protocol.Diagnostic{
		Range:              spanToRange(src, d.Span),
		Severity:           severity(mapSeverity(d.Severity)),
		Source:             strPtr("zxc"),
		Code:               &protocol.IntegerOrString{Value: d.Kind.String()},
		Message:            msg,
		RelatedInformation: related,
	}
}

func mapSeverity(sev diagnostic.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diagnostic.SeverityError:
		return protocol.DiagnosticSeverityError
	case diagnostic.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diagnostic.SeverityNote:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}
