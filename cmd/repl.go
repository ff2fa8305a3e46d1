// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/zxc/repl"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive zx session",
	Long: `Start an interactive read-check loop for zx.

Declarations (fn, var, class) are checked against everything declared so
far and kept when they have no errors. Other statements are checked in
the session's context and their type is printed. Input with unbalanced
braces or parentheses continues on the next line.

Commands:
  :help      List commands
  :symbols   Show the session's declarations
  :source    Print the accumulated source
  :emit      Print LLVM IR for the session
  :reset     Forget all declarations
  :quit      Exit (Ctrl-D also exits)

Example session:
  zx> fn add(a: Int, b: Int): Int { return a + b }
  fn add(a: Int, b: Int): Int
  zx> add(1, 2)
  => Int`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := repl.RunRepl("zx> ",
			repl.WithColor(colorMode()),
			repl.WithLogger(logger()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "zxc repl: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
