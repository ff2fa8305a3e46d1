// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/luthersystems/zxc/analysis"
	"github.com/luthersystems/zxc/compiler"
	"github.com/luthersystems/zxc/diagnostic"
)

var symbolsPrelude bool

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] file.zx",
	Short: "Print the symbol table of a zx source file as a tree",
	Long: `Analyze a zx source file and print every declared symbol as a tree.

Each entry shows the symbol's declaration, its fully qualified path and
how many times it is referenced. Functions own their parameters and body
block, classes own their members and blocks own their locals and nested
blocks. Diagnostics are reported on stderr.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if colorMode() == diagnostic.ColorNever {
			pterm.DisableStyling()
		}
		if code := runSymbols(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], symbolsPrelude); code != 0 {
			os.Exit(code)
		}
	},
}

func runSymbols(ctx context.Context, stdout, stderr io.Writer, path string, prelude bool) int {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := compiler.CompileFile(ctx, path, compiler.WithLogger(logger()))
	if err != nil {
		fmt.Fprintf(stderr, "zxc symbols: %v\n", err)
		return 2
	}
	tree, err := symbolTree(res.Name, res.Analysis, prelude)
	if err != nil {
		fmt.Fprintf(stderr, "zxc symbols: %v\n", err)
		return 2
	}
	fmt.Fprint(stdout, tree)

	diags := diagnostic.FilterDebug(res.Diagnostics)
	sources := sourceSet{path: res.Source}
	if err := writeDiagnostics(stderr, diags, false, colorMode(), sources); err != nil {
		fmt.Fprintf(stderr, "zxc symbols: %v\n", err)
		return 2
	}
	if res.Failed() {
		return 1
	}
	return 0
}

// symbolTree renders the program's symbols, optionally preceded by the
// builtin prelude.
func symbolTree(name string, res *analysis.Result, prelude bool) (string, error) {
	root := pterm.TreeNode{Text: name}
	if prelude {
		builtins := pterm.TreeNode{Text: "prelude"}
		for _, sym := range res.Prelude.Symbols() {
			builtins.Children = append(builtins.Children, symbolNode(sym))
		}
		root.Children = append(root.Children, builtins)
	}
	for _, sym := range res.Globals.Symbols() {
		root.Children = append(root.Children, symbolNode(sym))
	}
	for _, sym := range res.Blocks {
		root.Children = append(root.Children, symbolNode(sym))
	}
	return pterm.DefaultTree.WithRoot(root).Srender()
}

func symbolNode(sym *analysis.Symbol) pterm.TreeNode {
	text := fmt.Sprintf("%s  %s", sym.Signature(), sym.Path)
	if sym.Name != "" {
		text += fmt.Sprintf("  uses=%d", sym.Uses)
	}
	node := pterm.TreeNode{Text: text}
	for _, child := range analysis.Children(sym) {
		node.Children = append(node.Children, symbolNode(child))
	}
	return node
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().BoolVar(&symbolsPrelude, "prelude", false,
		"Include the builtin functions.")
}
