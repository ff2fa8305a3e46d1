// Copyright © 2024 The ELPS authors

// Package compiler runs the zx pipeline: parsing, semantic analysis and,
// optionally, LLVM code generation.  Each phase is traced with
// OpenTelemetry and logged through logrus.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/llir/llvm/ir"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/ast"
	"github.com/luthersystems/zxc/codegen"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/rdparser"
)

// ContextTracerKey looks up the tracer name in a context.
const ContextTracerKey = "zxcTracer"

const defaultTracer = "zxc"

// Option configures a compilation.
type Option func(*config)

type config struct {
	log              logrus.FieldLogger
	emit             bool
	warningsAsErrors bool
}

// WithLogger sets the logger for phase boundaries and timings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) { c.log = log }
}

// WithEmit enables LLVM code generation for programs without errors.
func WithEmit(emit bool) Option {
	return func(c *config) { c.emit = emit }
}

// WithWarningsAsErrors promotes warning diagnostics to errors.
func WithWarningsAsErrors(strict bool) Option {
	return func(c *config) { c.warningsAsErrors = strict }
}

// Result is the outcome of compiling one file.
type Result struct {
	Name        string
	Source      []byte
	File        *ast.File
	Analysis    *analysis.Result
	Module      *ir.Module // nil unless emission was requested and succeeded
	Diagnostics []diagnostic.Diagnostic
}

// Failed reports whether any diagnostic has error severity.
func (r *Result) Failed() bool {
	return diagnostic.HasErrors(r.Diagnostics)
}

// CompileFile reads and compiles the file at path.
func CompileFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return Compile(ctx, path, src, opts...)
}

// Compile compiles src as the file called name.  Problems in the program
// are reported as diagnostics in the result; the returned error is reserved
// for failures of the compiler itself.  Analysis always runs, on the
// recovered syntax tree when the source has syntax errors.
func Compile(ctx context.Context, name string, src []byte, opts ...Option) (*Result, error) {
	cfg := config{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log.WithField("file", name)
	ctx, span := tracer(ctx).Start(ctx, "compile", trace.WithAttributes(semconv.CodeFilepath(name)))
	defer span.End()

	res := &Result{Name: name, Source: src}

	phase(ctx, log, "parse", func(span trace.Span) {
		file, err := parser.Parse(name, src)
		res.File = file
		res.Diagnostics = append(res.Diagnostics, syntaxDiagnostics(name, err)...)
		span.SetAttributes(attribute.Int("zx.statements", len(file.Stmts)))
	})

	phase(ctx, log, "check", func(span trace.Span) {
		res.Analysis = analysis.Analyze(res.File, analysis.WithFilename(name))
		res.Diagnostics = append(res.Diagnostics, res.Analysis.Diagnostics...)
		span.SetAttributes(attribute.Int("zx.symbols", res.Analysis.Globals.Len()))
	})

	if cfg.warningsAsErrors {
		for i := range res.Diagnostics {
			if res.Diagnostics[i].Severity == diagnostic.SeverityWarning {
				res.Diagnostics[i].Severity = diagnostic.SeverityError
			}
		}
	}
	span.SetAttributes(
		attribute.Int("zx.errors", diagnostic.Count(res.Diagnostics, diagnostic.SeverityError)),
		attribute.Int("zx.warnings", diagnostic.Count(res.Diagnostics, diagnostic.SeverityWarning)))

	if !cfg.emit || res.Failed() {
		return res, nil
	}
	var err error
	phase(ctx, log, "emit", func(span trace.Span) {
		res.Module, err = codegen.Generate(res.Analysis, codegen.WithLogger(log))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	})
	if err != nil {
		return res, fmt.Errorf("%s: code generation: %w", name, err)
	}
	return res, nil
}

func tracer(ctx context.Context) trace.Tracer {
	name, ok := ctx.Value(ContextTracerKey).(string)
	if !ok {
		name = defaultTracer
	}
	return otel.GetTracerProvider().Tracer(name)
}

// phase runs fn inside a child span and logs its duration.
func phase(ctx context.Context, log logrus.FieldLogger, name string, fn func(trace.Span)) {
	_, span := tracer(ctx).Start(ctx, name)
	defer span.End()
	start := time.Now()
	fn(span)
	log.WithFields(logrus.Fields{"phase": name, "elapsed": time.Since(start)}).Debug("phase complete")
}

// syntaxDiagnostics converts parse errors into SyntaxError diagnostics.
func syntaxDiagnostics(name string, err error) []diagnostic.Diagnostic {
	if err == nil {
		return nil
	}
	var list rdparser.ErrorList
	if !errors.As(err, &list) {
		return []diagnostic.Diagnostic{{
			Severity: diagnostic.SeverityError,
			Kind:     diagnostic.InternalError,
			Message:  err.Error(),
			File:     name,
		}}
	}
	diags := make([]diagnostic.Diagnostic, 0, len(list))
	for _, e := range list {
		diags = append(diags, diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			Kind:     diagnostic.SyntaxError,
			Message:  e.Msg,
			File:     name,
			Span:     e.Span,
		})
	}
	return diags
}
