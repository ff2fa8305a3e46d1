// Copyright © 2024 The ELPS authors

// Package diagnostic defines the diagnostics stream produced by the zx
// checker and provides Rust-style annotated rendering for CLI output.  It
// depends only on parser/token so that any package can report diagnostics
// without creating import cycles.
package diagnostic

import (
	"encoding/json"
	"fmt"

	"github.com/luthersystems/zxc/parser/token"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
	// SeverityDebug marks introspection records meant for tooling.  Renderers
	// for people drop them (see FilterDebug).
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	case SeverityDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "note":
		*s = SeverityNote
	case "debug":
		*s = SeverityDebug
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Kind classifies the cause of a diagnostic.
type Kind int

const (
	UnknownError Kind = iota
	SyntaxError
	TypeError
	NameError
	Warning
	InternalError
	Debug
)

var kindNames = [...]string{
	UnknownError:  "UnknownError",
	SyntaxError:   "SyntaxError",
	TypeError:     "TypeError",
	NameError:     "NameError",
	Warning:       "Warning",
	InternalError: "InternalError",
	Debug:         "Debug",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UnknownError"
	}
	return kindNames[k]
}

// Kinds returns every diagnostic kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return UnknownError, false
}

// MarshalJSON serializes the kind as a JSON string.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON deserializes a kind from a JSON string.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	kind, ok := ParseKind(str)
	if !ok {
		return fmt.Errorf("unknown diagnostic kind: %q", str)
	}
	*k = kind
	return nil
}

// Label marks a secondary range of the diagnostic's file, such as the
// previous declaration of a redeclared name.
type Label struct {
	Span token.Span
	Text string
}

// Diagnostic represents a single error, warning, note or debug record.
// Span holds the byte offsets of the primary source range in File.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	File     string
	Span     token.Span
	Related  []Label
	Notes    []string // "= note:" lines
}

// Position returns the 1-based line and rune column of the start of d.Span.
func (d *Diagnostic) Position(src []byte) (line, col int) {
	return token.Position(src, d.Span.Start)
}

// FilterDebug returns diags without Debug severity records.
func FilterDebug(diags []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Severity != SeverityDebug {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics in diags with severity sev.
func Count(diags []Diagnostic, sev Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic has Error severity.
func HasErrors(diags []Diagnostic) bool {
	return Count(diags, SeverityError) > 0
}
