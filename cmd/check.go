// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/zxc/compiler"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/lint"
)

const stdinName = "<stdin>"

// checkConfig holds the settings of one check run.
type checkConfig struct {
	json             bool
	lint             bool
	checks           string
	debugDump        bool
	warningsAsErrors bool
	color            diagnostic.ColorMode
	log              logrus.FieldLogger
}

// CheckCommand creates the "check" cobra command.
func CheckCommand() *cobra.Command {
	var cfg checkConfig
	var listChecks bool
	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Report errors and warnings in zx source files",
		Long: `Parse and analyze zx source files, reporting every syntax, name and
type error along with warnings for declarations that are never read.
Lint checks run on files without syntax errors unless --lint=false.

With no files, check uses the zx.toml manifest of the enclosing project
or, without one, reads the program from stdin. A file argument ending in
"/..." expands to all .zx files below that directory.

Exit codes:
  0  No errors (warnings may have been reported)
  1  One or more errors were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a lint warning, add a comment on the same line:
  fn helper() {} // nolint:unused-function

Available lint checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  zxc check main.zx                    # Check a single file
  zxc check ./...                      # Check a directory tree
  zxc check --json main.zx             # Output diagnostics as JSON
  zxc check --checks=empty-block a.zx  # Run only specific lint checks
  cat main.zx | zxc check              # Check stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			if listChecks {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return
			}
			cfg.warningsAsErrors = viper.GetBool("warnings-as-errors")
			cfg.color = colorMode()
			cfg.log = logger()
			code := runCheck(cmd.Context(), os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args)
			if code != 0 {
				os.Exit(code)
			}
		},
	}
	cmd.Flags().BoolVar(&cfg.json, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().BoolVar(&cfg.lint, "lint", true,
		"Run lint checks on files without syntax errors.")
	cmd.Flags().StringVar(&cfg.checks, "checks", "",
		"Comma-separated list of lint checks to run (default: all).")
	cmd.Flags().BoolVar(&cfg.debugDump, "debug-dump", false,
		"Include the scope dump record in the output.")
	cmd.Flags().BoolVar(&listChecks, "list", false,
		"List available lint checks and exit.")
	return cmd
}

// runCheck checks the files named by args and returns the process exit
// code.
func runCheck(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cfg checkConfig, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	analyzers, err := selectAnalyzers(cfg.checks)
	if err != nil {
		fmt.Fprintf(stderr, "zxc check: %v\n", err)
		return 2
	}
	opts := []compiler.Option{
		compiler.WithLogger(cfg.log),
		compiler.WithWarningsAsErrors(cfg.warningsAsErrors),
	}

	sources := sourceSet{}
	var paths []string
	if len(args) == 0 {
		m, err := compiler.FindManifest(".")
		switch {
		case err == nil:
			paths = []string{m.EntryPath()}
			opts = append(opts, m.Options()...)
			cfg.warningsAsErrors = cfg.warningsAsErrors || m.Check.WarningsAsErrors
			cfg.debugDump = cfg.debugDump || m.Check.DebugDump
		case errors.Is(err, compiler.ErrNoManifest):
			src, err := io.ReadAll(stdin)
			if err != nil {
				fmt.Fprintf(stderr, "zxc check: reading stdin: %v\n", err)
				return 2
			}
			sources[stdinName] = src
			paths = []string{stdinName}
		default:
			fmt.Fprintf(stderr, "zxc check: %v\n", err)
			return 2
		}
	} else {
		paths, err = expandArgs(args)
		if err != nil {
			fmt.Fprintf(stderr, "zxc check: %v\n", err)
			return 2
		}
	}

	var all []diagnostic.Diagnostic
	for _, path := range paths {
		src, err := sources.read(path)
		if err != nil {
			fmt.Fprintf(stderr, "zxc check: %v\n", err)
			return 2
		}
		sources[path] = src
		diags, err := checkSource(ctx, path, src, analyzers, cfg, opts)
		if err != nil {
			fmt.Fprintf(stderr, "zxc check: %v\n", err)
			return 2
		}
		all = append(all, diags...)
	}

	out := stderr
	if cfg.json {
		out = stdout
	}
	if err := writeDiagnostics(out, all, cfg.json, cfg.color, sources); err != nil {
		fmt.Fprintf(stderr, "zxc check: %v\n", err)
		return 2
	}
	if diagnostic.HasErrors(all) {
		return 1
	}
	return 0
}

// checkSource compiles one file and lints it when it parsed cleanly.
func checkSource(ctx context.Context, path string, src []byte, analyzers []*lint.Analyzer, cfg checkConfig, opts []compiler.Option) ([]diagnostic.Diagnostic, error) {
	res, err := compiler.Compile(ctx, path, src, opts...)
	if err != nil {
		return nil, err
	}
	diags := res.Diagnostics
	if !cfg.debugDump {
		diags = diagnostic.FilterDebug(diags)
	}
	if !cfg.lint || hasSyntaxErrors(diags) {
		return diags, nil
	}
	l := &lint.Linter{Analyzers: analyzers}
	found, err := l.LintFileWithContext(res.File, res.Analysis)
	if err != nil {
		return nil, err
	}
	lintDiags := make([]diagnostic.Diagnostic, len(found))
	for i, d := range found {
		lintDiags[i] = d.Diagnostic()
	}
	if cfg.warningsAsErrors {
		promoteWarnings(lintDiags)
	}
	return append(diags, lintDiags...), nil
}

func hasSyntaxErrors(diags []diagnostic.Diagnostic) bool {
	for _, d := range diags {
		if d.Kind == diagnostic.SyntaxError {
			return true
		}
	}
	return false
}

// selectAnalyzers returns the lint checks named in the comma separated list
// checks, or all of them when checks is empty.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	if checks == "" {
		return lint.DefaultAnalyzers(), nil
	}
	var selected []*lint.Analyzer
	for _, name := range strings.Split(checks, ",") {
		a := lint.Lookup(strings.TrimSpace(name))
		if a == nil {
			return nil, fmt.Errorf("unknown check: %s", strings.TrimSpace(name))
		}
		selected = append(selected, a)
	}
	return selected, nil
}

func init() {
	rootCmd.AddCommand(CheckCommand())
}
