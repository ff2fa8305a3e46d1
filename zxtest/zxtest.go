// Copyright © 2018 The ELPS authors

// Package zxtest provides helpers for testing code that parses and checks
// zx programs.
//
// RunDir runs the .zx files of a directory as expectation tests.  Each line
// of a file may end in annotations naming the diagnostics reported there:
//
//	var s: Int = "x"  // ERROR "mismatched types"
//	var unused = 1    // WARNING "never read"
//
// The quoted text must be a substring of the message.  Every error and
// warning must be matched by an annotation on its line and every annotation
// must match a diagnostic.
package zxtest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/rdparser"
	"github.com/luthersystems/zxc/parser/token"
)

// Check parses and analyzes src, failing the test on syntax errors.
func Check(t testing.TB, src string, opts ...analysis.Option) (*ast.File, *analysis.Result) {
	t.Helper()
	file, err := parser.Parse("test.zx", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return file, analysis.Analyze(file, opts...)
}

// BenchmarkCheck returns a benchmark that parses and analyzes the file at
// path.
func BenchmarkCheck(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			file, err := parser.Parse(path, buf)
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
			analysis.Analyze(file)
		}
	}
}

var annotation = regexp.MustCompile(`//\s*(ERROR|WARNING)\s+"([^"]*)"`)

// Expectation is an annotated diagnostic.
type Expectation struct {
	Line     int
	Severity diagnostic.Severity
	Text     string
}

func (e Expectation) String() string {
	return fmt.Sprintf("%d: %s %q", e.Line, e.Severity, e.Text)
}

// Expectations extracts the annotations of src.
func Expectations(src []byte) []Expectation {
	var exps []Expectation
	for i, line := range strings.Split(string(src), "\n") {
		for _, m := range annotation.FindAllStringSubmatch(line, -1) {
			sev := diagnostic.SeverityError
			if m[1] == "WARNING" {
				sev = diagnostic.SeverityWarning
			}
			exps = append(exps, Expectation{Line: i + 1, Severity: sev, Text: m[2]})
		}
	}
	return exps
}

// Verify matches diags against the annotations of src and returns a
// description of every mismatch.
func Verify(src []byte, diags []diagnostic.Diagnostic) []string {
	exps := Expectations(src)
	matched := make([]bool, len(exps))
	var problems []string
	for _, d := range diags {
		if d.Severity != diagnostic.SeverityError && d.Severity != diagnostic.SeverityWarning {
			continue
		}
		line, _ := token.Position(src, d.Span.Start)
		found := false
		for i, exp := range exps {
			if matched[i] || exp.Line != line || exp.Severity != d.Severity {
				continue
			}
			if strings.Contains(d.Message, exp.Text) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			problems = append(problems, fmt.Sprintf("%d: unexpected %s: %s", line, d.Severity, d.Message))
		}
	}
	for i, exp := range exps {
		if !matched[i] {
			problems = append(problems, fmt.Sprintf("%v: not reported", exp))
		}
	}
	return problems
}

// RunDir runs every .zx file in dir as a subtest.
func RunDir(t *testing.T, dir string, opts ...analysis.Option) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.zx"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatalf("no .zx files in %s", dir)
	}
	sort.Strings(paths)
	for _, path := range paths {
		path := path
		t.Run(strings.TrimSuffix(filepath.Base(path), ".zx"), func(t *testing.T) {
			RunFile(t, path, opts...)
		})
	}
}

// RunFile checks the file at path against its annotations.  Syntax errors
// are compared like any other diagnostic.
func RunFile(t testing.TB, path string, opts ...analysis.Option) {
	t.Helper()
	src, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Fatalf("Unable to read source file %v: %v", path, err)
	}
	file, perr := parser.Parse(path, src)
	var diags []diagnostic.Diagnostic
	var list rdparser.ErrorList
	if errors.As(perr, &list) {
		for _, e := range list {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Kind:     diagnostic.SyntaxError,
				Message:  e.Msg,
				Span:     e.Span,
			})
		}
	} else if perr != nil {
		t.Fatalf("parse: %v", perr)
	}
	diags = append(diags, analysis.Analyze(file, opts...).Diagnostics...)
	for _, p := range Verify(src, diags) {
		t.Errorf("%s:%s", path, p)
	}
}
