// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/zxc/astutil"
	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/parser"
	"github.com/luthersystems/zxc/parser/rdparser"
)

var astCmd = &cobra.Command{
	Use:   "ast file.zx",
	Short: "Print the syntax tree of a zx source file",
	Long: `Parse a zx source file and print its syntax tree.

Syntax errors are reported on stderr. The tree recovered from a file with
errors is still printed, with Bad nodes marking the statements and
expressions that failed to parse.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := runAST(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0]); code != 0 {
			os.Exit(code)
		}
	},
}

func runAST(stdout, stderr io.Writer, path string) int {
	sources := sourceSet{}
	src, err := sources.read(path)
	if err != nil {
		fmt.Fprintf(stderr, "zxc ast: %v\n", err)
		return 2
	}
	sources[path] = src
	file, perr := parser.Parse(path, src)
	if err := astutil.Fprint(stdout, file); err != nil {
		fmt.Fprintf(stderr, "zxc ast: %v\n", err)
		return 2
	}
	if perr == nil {
		return 0
	}
	diags := syntaxDiagnostics(path, perr)
	if err := writeDiagnostics(stderr, diags, false, colorMode(), sources); err != nil {
		fmt.Fprintf(stderr, "zxc ast: %v\n", err)
		return 2
	}
	return 1
}

// syntaxDiagnostics converts a parse error into diagnostics.
func syntaxDiagnostics(path string, err error) []diagnostic.Diagnostic {
	list, ok := err.(rdparser.ErrorList)
	if !ok {
		return []diagnostic.Diagnostic{{
			Severity: diagnostic.SeverityError,
			Kind:     diagnostic.InternalError,
			Message:  err.Error(),
			File:     path,
		}}
	}
	diags := make([]diagnostic.Diagnostic, len(list))
	for i, e := range list {
		diags[i] = diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			Kind:     diagnostic.SyntaxError,
			Message:  e.Msg,
			File:     path,
			Span:     e.Span,
		}
	}
	return diags
}

func init() {
	rootCmd.AddCommand(astCmd)
}
