// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/zxc/formatter"
)

type fmtConfig struct {
	write bool
	diff  bool
	list  bool
	style *formatter.Config
}

// FmtCommand creates the "fmt" cobra command.
func FmtCommand() *cobra.Command {
	cfg := fmtConfig{style: formatter.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "fmt [flags] [files...]",
		Short: "Format zx source files",
		Long: `Format zx source files, similar to gofmt for Go.

Normalizes spacing and indentation and preserves comments and line breaks,
keeping at most one blank line in a row. Files with syntax errors are left
untouched. The formatter is idempotent.

With no files, reads from stdin and writes to stdout.
With files, prints formatted output to stdout unless -w is given.

Modes:
  (default)   Print formatted code to stdout
  -w          Write result back to source file
  -d          Display a diff of changes
  -l          List files that would be changed

Examples:
  zxc fmt main.zx                  Print formatted output
  zxc fmt -w ./...                 Format all zx files in place
  zxc fmt -l ./...                 List files needing formatting
  cat main.zx | zxc fmt            Format from stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			if code := runFmt(os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args); code != 0 {
				os.Exit(code)
			}
		},
	}
	cmd.Flags().BoolVarP(&cfg.write, "write", "w", false,
		"Write result to (source) file instead of stdout.")
	cmd.Flags().BoolVarP(&cfg.diff, "diff", "d", false,
		"Display diffs instead of rewriting files.")
	cmd.Flags().BoolVarP(&cfg.list, "list", "l", false,
		"List files whose formatting differs from zxc fmt's.")
	cmd.Flags().IntVar(&cfg.style.IndentSize, "indent-size", cfg.style.IndentSize,
		"Number of spaces per indentation level.")
	return cmd
}

func runFmt(stdin io.Reader, stdout, stderr io.Writer, cfg fmtConfig, args []string) int {
	if len(args) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "reading stdin: %v\n", err)
			return 1
		}
		out, err := formatter.Format(src, cfg.style)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		_, _ = stdout.Write(out)
		return 0
	}

	expanded, err := expandArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	exitCode := 0
	for _, path := range expanded {
		changed, err := fmtFile(stdout, path, cfg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			exitCode = 1
		} else if cfg.list && changed {
			exitCode = 1
		}
	}
	return exitCode
}

func fmtFile(stdout io.Writer, path string, cfg fmtConfig) (bool, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	out, err := formatter.FormatFile(src, path, cfg.style)
	if err != nil {
		return false, err
	}
	changed := !bytes.Equal(src, out)

	switch {
	case cfg.list:
		if changed {
			fmt.Fprintln(stdout, path)
		}
		return changed, nil
	case cfg.diff:
		if changed {
			printUnifiedDiff(stdout, path, src, out)
		}
		return changed, nil
	case cfg.write:
		if !changed {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		return true, os.WriteFile(path, out, info.Mode().Perm())
	}
	_, err = stdout.Write(out)
	return changed, err
}

// printUnifiedDiff writes a simple line-by-line diff.
func printUnifiedDiff(w io.Writer, path string, original, formatted []byte) {
	fmt.Fprintf(w, "--- %s\n", path)
	fmt.Fprintf(w, "+++ %s\n", path)

	origLines := splitLines(original)
	fmtLines := splitLines(formatted)

	i, j := 0, 0
	for i < len(origLines) || j < len(fmtLines) {
		switch {
		case i < len(origLines) && j < len(fmtLines) && origLines[i] == fmtLines[j]:
			fmt.Fprintf(w, " %s\n", origLines[i])
			i++
			j++
		case i < len(origLines):
			fmt.Fprintf(w, "-%s\n", origLines[i])
			i++
		default:
			fmt.Fprintf(w, "+%s\n", fmtLines[j])
			j++
		}
	}
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

func init() {
	rootCmd.AddCommand(FmtCommand())
}
