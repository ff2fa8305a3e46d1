// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
)

// Record is the JSON form of a located diagnostic.
type Record struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Col      int      `json:"col,omitempty"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Notes    []string `json:"notes,omitempty"`
}

// NewRecord returns the JSON form of d.  Line and column are computed from
// src, the contents of d.File, when it is non-nil.
func NewRecord(d Diagnostic, src []byte) Record {
	rec := Record{
		File:     d.File,
		Start:    d.Span.Start,
		End:      d.Span.End,
		Severity: d.Severity,
		Kind:     d.Kind,
		Message:  d.Message,
		Notes:    d.Notes,
	}
	if src != nil {
		rec.Line, rec.Col = d.Position(src)
	}
	return rec
}

// records converts diags, reading each file through read once.  Debug
// records, a nil read and a file that cannot be read leave positions unset.
func records(diags []Diagnostic, read SourceFunc) []Record {
	texts := make(map[string][]byte)
	recs := make([]Record, 0, len(diags))
	for _, d := range diags {
		var src []byte
		if read != nil && d.File != "" && d.Severity != SeverityDebug {
			text, ok := texts[d.File]
			if !ok {
				text, _ = read(d.File)
				texts[d.File] = text
			}
			src = text
		}
		recs = append(recs, NewRecord(d, src))
	}
	return recs
}

// String returns the record in go vet style: file:line:col: message (kind).
func (rec Record) String() string {
	pos := rec.File
	if rec.Line > 0 {
		pos = fmt.Sprintf("%s:%d:%d", rec.File, rec.Line, rec.Col)
	}
	s := fmt.Sprintf("%s: %s: %s (%s)", pos, rec.Severity, rec.Message, rec.Kind)
	for _, n := range rec.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic, read SourceFunc) error {
	for _, rec := range records(diags, read) {
		if _, err := fmt.Fprintln(w, rec.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatJSON writes diagnostics as a JSON array.
func FormatJSON(w io.Writer, diags []Diagnostic, read SourceFunc) error {
	recs := records(diags, read)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
