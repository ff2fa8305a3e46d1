// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/zxc/lsp"
)

// LSPCommand creates the "lsp" cobra command.
func LSPCommand() *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the zx Language Server Protocol server",
		Long: `Start an LSP server for zx source files.

The language server provides diagnostics as you type, hover with symbol
signatures, go-to-definition, find references, completion, document
symbols and folding ranges.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  zxc lsp                   Start with stdio transport
  zxc lsp --port 7998       Start with TCP on port 7998

Editor configuration:
  Configure a generic LSP client to run "zxc lsp --stdio" for .zx files.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			log := logger()
			srv := lsp.New(lsp.WithLogger(log))

			var err error
			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.WithField("addr", addr).Info("zx LSP server listening")
				err = srv.RunTCP(addr)
			} else {
				err = srv.RunStdio()
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
