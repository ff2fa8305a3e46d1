// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for zx source files beyond the
// checks performed by semantic analysis.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed file and reports diagnostics. The framework handles
// parsing, running analyzers, collecting results, and formatting output.
// Embedders can define custom checks alongside the built-in set.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/lexer"
	"github.com/luthersystems/zxc/parser/token"
)

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "empty-block").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Semantic analyzers need the analysis result and are skipped when the
	// linter runs without one.
	Semantic bool

	// Run executes the check. It should call pass.Report for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	Analyzer *Analyzer
	Filename string
	Source   []byte
	File     *ast.File

	// Semantics is nil unless the linter was given an analysis result.
	Semantics *analysis.Result

	diagnostics []Diagnostic
}

// Report records a finding covering span.
func (p *Pass) Report(span token.Span, msg string, notes ...string) {
	line, col := token.Position(p.Source, span.Start)
	p.diagnostics = append(p.diagnostics, Diagnostic{
		Pos:      Position{File: p.Filename, Line: line, Col: col},
		Span:     span,
		Message:  msg,
		Analyzer: p.Analyzer.Name,
		Notes:    notes,
	})
}

// Reportf is a convenience for reporting a formatted message at span.
func (p *Pass) Reportf(span token.Span, format string, args ...interface{}) {
	p.Report(span, fmt.Sprintf(format, args...))
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Pos      Position   `json:"pos"`
	Span     token.Span `json:"-"`
	Message  string     `json:"message"`
	Analyzer string     `json:"analyzer"`
	Notes    []string   `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Diagnostic converts d into a warning for the diagnostic renderer.
func (d Diagnostic) Diagnostic() diagnostic.Diagnostic {
	out := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Kind:     diagnostic.Warning,
		Message:  d.Message + " (" + d.Analyzer + ")",
		File:     d.Pos.File,
		Span:     d.Span,
	}
	out.Notes = append(out.Notes, d.Notes...)
	out.Notes = append(out.Notes, "to suppress: add \"// nolint:"+d.Analyzer+"\" as a comment on this line")
	return out
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer
}

// LintFile parses source and runs the syntactic analyzers.  A file with
// syntax errors is not linted.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	file, err := parser.Parse(filename, source)
	if err != nil {
		return nil, err
	}
	return l.LintFileWithContext(file, nil)
}

// LintFileWithAnalysis parses, analyzes, and lints a source file in one call.
func (l *Linter) LintFileWithAnalysis(source []byte, filename string) ([]Diagnostic, error) {
	file, err := parser.Parse(filename, source)
	if err != nil {
		return nil, err
	}
	return l.LintFileWithContext(file, analysis.Analyze(file, analysis.WithFilename(filename)))
}

// LintFileWithContext lints an already parsed file.  When semantics is nil
// semantic analyzers are skipped.
func (l *Linter) LintFileWithContext(file *ast.File, semantics *analysis.Result) ([]Diagnostic, error) {
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		if analyzer.Semantic && semantics == nil {
			continue
		}
		pass := &Pass{
			Analyzer:  analyzer,
			Filename:  file.Name,
			Source:    file.Source,
			File:      file,
			Semantics: semantics,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", file.Name, analyzer.Name, err)
		}
		all = append(all, pass.diagnostics...)
	}

	all = filterSuppressed(all, file.Source)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})
	return all, nil
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, source []byte) []Diagnostic {
	if len(diags) == 0 {
		return diags
	}
	nolintLines := nolintDirectives(source) // line -> "" (all) or "a,b"

	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// nolintDirectives scans source for // nolint comments.
func nolintDirectives(source []byte) map[int]string {
	lines := make(map[int]string)
	lex := lexer.New(token.NewScannerBytes("", source))
	for {
		tok := lex.ReadToken()
		if tok.Type == token.EOF {
			return lines
		}
		if tok.Type != token.COMMENT {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(tok.Text, "//"))
		rest, ok := strings.CutPrefix(text, "nolint")
		if !ok {
			continue
		}
		if rest == "" {
			lines[tok.Source.Line] = ""
		} else if names, ok := strings.CutPrefix(rest, ":"); ok {
			lines[tok.Source.Line] = names
		}
	}
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerConstantCondition,
		AnalyzerEmptyBlock,
		AnalyzerUnreachableCode,
		AnalyzerSelfCompare,
		AnalyzerUnusedFunction,
		AnalyzerShadowedGlobal,
	}
}

// Lookup returns the default analyzer called name, or nil.
func Lookup(name string) *Analyzer {
	for _, a := range DefaultAnalyzers() {
		if a.Name == name {
			return a
		}
	}
	return nil
}
