// Copyright © 2024 The ELPS authors

package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/codegen"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/ir"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/lexer"
	"github.com/luthersystems/zxc/parser/rdparser"
	"github.com/luthersystems/zxc/parser/token"
	"github.com/luthersystems/zxc/types"
)

// SourceName is the file name given to REPL input in diagnostics.
const SourceName = "<repl>"

// wrapper holds statement input so it can be checked like a function body.
const wrapper = "__repl"

// Session accumulates the declarations entered at the REPL.  Each input is
// checked together with everything committed before it.  Declarations
// without errors are committed; other statements are checked in a
// throwaway function and never committed.
type Session struct {
	src  []byte
	last *analysis.Result
}

// Outcome is the result of evaluating one input.  Diagnostic spans are
// relative to the input text.
type Outcome struct {
	Diagnostics []diagnostic.Diagnostic
	// Declared lists the symbols committed by the input.
	Declared []*analysis.Symbol
	// Type is the type of the last expression statement of statement
	// input, or nil.
	Type      types.Type
	Committed bool
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Source returns the committed program text.
func (s *Session) Source() string {
	return string(s.src)
}

// Reset discards all committed declarations.
func (s *Session) Reset() {
	s.src = nil
	s.last = nil
}

// Symbols returns the committed global symbols in declaration order.
func (s *Session) Symbols() []*analysis.Symbol {
	if s.last == nil {
		return nil
	}
	return s.last.Globals.Symbols()
}

// Eval checks input against the committed declarations.
func (s *Session) Eval(input string) *Outcome {
	input = strings.TrimSpace(input)
	if isStatementInput(input) {
		return s.evalStatements(input)
	}
	return s.evalDeclarations(input)
}

func (s *Session) evalDeclarations(input string) *Outcome {
	base := len(s.src)
	candidate := append(append([]byte{}, s.src...), input+"\n"...)
	res, diags := check(candidate)
	out := &Outcome{Diagnostics: relocate(diags, base, len(input))}
	if diagnostic.HasErrors(out.Diagnostics) {
		return out
	}
	for _, sym := range res.Globals.Symbols() {
		if sym.Span.Start >= base {
			out.Declared = append(out.Declared, sym)
		}
	}
	s.src = candidate
	s.last = res
	out.Committed = true
	return out
}

func (s *Session) evalStatements(input string) *Outcome {
	head := "fn " + wrapper + "() {\n"
	base := len(s.src) + len(head)
	candidate := append(append([]byte{}, s.src...), head+input+"\nreturn\n}\n"...)
	res, diags := check(candidate)
	out := &Outcome{Diagnostics: relocate(diags, base, len(input))}
	if diagnostic.HasErrors(out.Diagnostics) {
		return out
	}
	sym := res.Globals.LookupLocal(wrapper)
	if sym == nil {
		return out
	}
	fn, ok := sym.Kind.(*analysis.Function)
	if !ok || fn.Body == nil {
		return out
	}
	code := fn.Body.Kind.(*analysis.Block).Code
	if len(code) >= 2 {
		if eval, ok := code[len(code)-2].(*ir.Eval); ok && !types.IsVoid(eval.Value.Type()) {
			out.Type = eval.Value.Type()
		}
	}
	return out
}

// Emit writes the LLVM IR of the committed declarations to w.
func (s *Session) Emit(w io.Writer) error {
	if s.last == nil {
		return errors.New("nothing declared")
	}
	mod, err := codegen.Generate(s.last, codegen.WithoutMain())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mod.String())
	return err
}

// Dump writes the committed symbol tables to w.
func (s *Session) Dump(w io.Writer) error {
	if s.last == nil {
		return nil
	}
	return analysis.Dump(w, s.last.Globals)
}

func check(src []byte) (*analysis.Result, []diagnostic.Diagnostic) {
	file, err := parser.Parse(SourceName, src)
	var diags []diagnostic.Diagnostic
	var list rdparser.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Kind:     diagnostic.SyntaxError,
				Message:  e.Msg,
				File:     SourceName,
				Span:     e.Span,
			})
		}
	}
	res := analysis.Analyze(file)
	return res, append(diags, res.Diagnostics...)
}

// relocate keeps the errors and warnings of diags that concern the input
// starting at offset base and shifts their spans to be input relative.
// Errors outside the input, such as a clash with the wrapper, are kept
// without a span.
func relocate(diags []diagnostic.Diagnostic, base, n int) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, d := range diags {
		switch d.Severity {
		case diagnostic.SeverityError, diagnostic.SeverityWarning:
		default:
			continue
		}
		d.File = SourceName
		if d.Span.Start < base || d.Span.Start > base+n {
			if d.Severity != diagnostic.SeverityError {
				continue
			}
			d.Span = token.Span{}
			d.File = ""
			d.Related = nil
			out = append(out, d)
			continue
		}
		d.Span = token.Span{Start: d.Span.Start - base, End: min(d.Span.End-base, n)}
		var related []diagnostic.Label
		for _, l := range d.Related {
			if l.Span.Start >= base && l.Span.Start <= base+n {
				l.Span = token.Span{Start: l.Span.Start - base, End: min(l.Span.End-base, n)}
				related = append(related, l)
			}
		}
		d.Related = related
		out = append(out, d)
	}
	return out
}

// isStatementInput reports whether input starts with something other than
// a declaration.
func isStatementInput(input string) bool {
	lex := lexer.New(token.NewScannerBytes(SourceName, []byte(input)))
	for {
		tok := lex.ReadToken()
		switch tok.Type {
		case token.COMMENT:
			continue
		case token.EOF, token.FN, token.VAR, token.CLASS:
			return false
		}
		return true
	}
}

// Incomplete reports whether input has unclosed braces or parentheses and
// more lines should be read before evaluating it.
func Incomplete(input string) bool {
	lex := lexer.New(token.NewScannerBytes(SourceName, []byte(input)))
	depth := 0
	for {
		tok := lex.ReadToken()
		switch tok.Type {
		case token.EOF:
			return depth > 0
		case token.BRACE_L, token.PAREN_L:
			depth++
		case token.BRACE_R, token.PAREN_R:
			depth--
		}
	}
}

// Describe summarizes the outcome for display: the signatures of declared
// symbols and the type of a statement's value.
func (o *Outcome) Describe() string {
	var lines []string
	for _, sym := range o.Declared {
		lines = append(lines, sym.Signature())
	}
	if o.Type != nil {
		lines = append(lines, fmt.Sprintf("=> %s", o.Type))
	}
	return strings.Join(lines, "\n")
}
