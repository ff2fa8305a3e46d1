// Copyright © 2024 The ELPS authors

// Package analysis performs semantic analysis of zx programs.
//
// The checker walks the top-level declarations of a parsed file, builds the
// tree of symbol tables rooted at the global table, infers and checks the
// types of every expression, and lowers statements into the path-addressed
// instruction tree of package ir.  Analysis never stops at the first
// problem: a failing statement is reported as a diagnostic and the walk
// continues with the next statement.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/ir"
)

// Option configures a Checker.
type Option func(*config)

type config struct {
	filename string
	prelude  *Scopes
}

// WithFilename sets the file name attached to diagnostics.  The default is
// the name of the checked file.
func WithFilename(name string) Option {
	return func(cfg *config) { cfg.filename = name }
}

// WithPrelude replaces the table of builtin functions.  A nil prelude
// disables builtins.
func WithPrelude(prelude *Scopes) Option {
	return func(cfg *config) { cfg.prelude = prelude }
}

// Result holds the output of semantic analysis.
type Result struct {
	File        *ast.File
	Diagnostics []diagnostic.Diagnostic
	Globals     *Scopes
	Prelude     *Scopes
	// Blocks are the top-level blocks in source order.  They have no name
	// and are not part of Globals.
	Blocks []*Symbol
	// Init is the lowered code of top-level variable initializers and
	// blocks, in source order.
	Init       []ir.Instr
	References []*Reference
}

// Failed reports whether analysis produced an error diagnostic.
func (r *Result) Failed() bool {
	return diagnostic.HasErrors(r.Diagnostics)
}

// Walk calls fn for every symbol of the program in preorder, globals first
// and then top-level blocks.  Children of a symbol are skipped when fn
// returns false.
func (r *Result) Walk(fn func(sym *Symbol, depth int) bool) {
	Walk(r.Globals.Symbols(), fn)
	Walk(r.Blocks, fn)
}

// Lookup returns the symbol with the given path, or nil.
func (r *Result) Lookup(path string) *Symbol {
	var found *Symbol
	r.Walk(func(sym *Symbol, _ int) bool {
		if found != nil {
			return false
		}
		if sym.Path == path {
			found = sym
			return false
		}
		return strings.HasPrefix(path, sym.Path+"$")
	})
	return found
}

// DeclarationAt returns the named symbol whose declaring identifier
// contains offset, or nil.
func (r *Result) DeclarationAt(offset int) *Symbol {
	var found *Symbol
	r.Walk(func(sym *Symbol, _ int) bool {
		if sym.Name != "" && sym.Span.Start <= offset && offset < sym.Span.End {
			found = sym
		}
		return found == nil
	})
	return found
}

// Walk calls fn for each symbol in syms and, recursively, for the symbols
// each one owns: function parameters and body, class members, block locals
// and nested blocks.
func Walk(syms []*Symbol, fn func(sym *Symbol, depth int) bool) {
	walk(syms, 0, fn)
}

func walk(syms []*Symbol, depth int, fn func(*Symbol, int) bool) {
	for _, sym := range syms {
		if fn(sym, depth) {
			walk(Children(sym), depth+1, fn)
		}
	}
}

// Children returns the symbols owned by sym.
func Children(sym *Symbol) []*Symbol {
	switch k := sym.Kind.(type) {
	case *Function:
		children := append([]*Symbol(nil), k.Params...)
		if k.Body != nil {
			children = append(children, k.Body)
		}
		return children
	case *Class:
		return k.Members.Symbols()
	case *Block:
		children := append([]*Symbol(nil), k.Children.Symbols()...)
		return append(children, k.Blocks...)
	}
	return nil
}

// Checker checks a single file.  A Checker is not safe for concurrent use
// and checks its file once.
type Checker struct {
	file    *ast.File
	cfg     config
	globals *Scopes
	diags   []diagnostic.Diagnostic
	refs    []*Reference
	seq     map[string]int
	blocks  []*Symbol
	init    []ir.Instr
}

// New returns a Checker for file.
func New(file *ast.File, opts ...Option) *Checker {
	cfg := config{filename: file.Name, prelude: Prelude()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.prelude == nil {
		cfg.prelude = NewScopes()
	}
	return &Checker{
		file:    file,
		cfg:     cfg,
		globals: NewScopes(),
		seq:     make(map[string]int),
	}
}

// Analyze checks file and returns the result.
func Analyze(file *ast.File, opts ...Option) *Result {
	return New(file, opts...).Check()
}

// Check walks every top-level statement and returns the collected results.
// Diagnostics appear in the order their constructs are checked; a block's
// unused-local warnings follow its statements.  A single Debug record
// dumping the global table comes last.
func (c *Checker) Check() *Result {
	stack := NewStack(c.cfg.prelude, c.globals)
	for _, stmt := range c.file.Stmts {
		_, code, err := c.declare(stmt, stack, "")
		c.report(err)
		c.init = append(c.init, code...)
	}
	res := &Result{
		File:       c.file,
		Globals:    c.globals,
		Prelude:    c.cfg.prelude,
		Blocks:     c.blocks,
		Init:       c.init,
		References: c.refs,
	}
	var dump strings.Builder
	_ = Dump(&dump, c.globals)
	c.diags = append(c.diags, diagnostic.Diagnostic{
		Severity: diagnostic.SeverityDebug,
		Kind:     diagnostic.Debug,
		Message:  "scopes\n" + dump.String(),
		File:     c.cfg.filename,
	})
	res.Diagnostics = c.diags
	return res
}

func (c *Checker) report(err error) {
	if err == nil || err == errSkip {
		return
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: diagnostic.InternalError, Message: err.Error()}
	}
	c.diags = append(c.diags, diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Kind:     e.Kind,
		Message:  e.Message,
		File:     c.cfg.filename,
		Span:     e.Span,
		Related:  e.Related,
		Notes:    e.Notes,
	})
}

func (c *Checker) warnf(sym *Symbol, format string, v ...interface{}) {
	c.diags = append(c.diags, diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Kind:     diagnostic.Warning,
		Message:  fmt.Sprintf(format, v...),
		File:     c.cfg.filename,
		Span:     sym.Span,
	})
}

// blockPath returns the path of the next anonymous block under prefix.
func (c *Checker) blockPath(prefix string) string {
	n := c.seq[prefix]
	c.seq[prefix]++
	return fmt.Sprintf("%s$%d", prefix, n)
}
