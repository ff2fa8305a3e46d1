// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/zxc/compiler"
	"github.com/luthersystems/zxc/diagnostic"
)

var emitOutput string

var emitCmd = &cobra.Command{
	Use:   "emit [flags] [file.zx]",
	Short: "Compile a zx source file to LLVM IR",
	Long: `Check a zx source file and, when it has no errors, write the LLVM IR
for it. IR goes to stdout unless -o names a file.

Without a file argument emit compiles the entry file of the enclosing
zx.toml project and writes to the project's output path.

Examples:
  zxc emit main.zx              # Print IR
  zxc emit main.zx -o main.ll   # Write IR to main.ll
  zxc emit                      # Build the current project`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := []compiler.Option{
			compiler.WithLogger(logger()),
			compiler.WithWarningsAsErrors(viper.GetBool("warnings-as-errors")),
		}
		if code := runEmit(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, emitOutput, opts); code != 0 {
			os.Exit(code)
		}
	},
}

func runEmit(ctx context.Context, stdout, stderr io.Writer, args []string, output string, opts []compiler.Option) int {
	if ctx == nil {
		ctx = context.Background()
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		m, err := compiler.FindManifest(".")
		if err != nil {
			if errors.Is(err, compiler.ErrNoManifest) {
				err = fmt.Errorf("no file given and %w", err)
			}
			fmt.Fprintf(stderr, "zxc emit: %v\n", err)
			return 2
		}
		path = m.EntryPath()
		if output == "" {
			output = m.OutputPath()
		}
		opts = append(opts, m.Options()...)
	}

	opts = append(opts, compiler.WithEmit(true))
	res, err := compiler.CompileFile(ctx, path, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "zxc emit: %v\n", err)
		return 2
	}
	diags := diagnostic.FilterDebug(res.Diagnostics)
	if err := writeDiagnostics(stderr, diags, false, colorMode(), sourceSet{path: res.Source}); err != nil {
		fmt.Fprintf(stderr, "zxc emit: %v\n", err)
		return 2
	}
	if res.Failed() {
		return 1
	}

	ir := res.Module.String()
	if output == "" || output == "-" {
		fmt.Fprint(stdout, ir)
		return 0
	}
	if err := os.WriteFile(output, []byte(ir), 0o644); err != nil { //nolint:gosec // emitted IR is not secret
		fmt.Fprintf(stderr, "zxc emit: %v\n", err)
		return 2
	}
	logger().WithField("output", output).Info("wrote LLVM IR")
	return 0
}

func init() {
	rootCmd.AddCommand(emitCmd)
	emitCmd.Flags().StringVarP(&emitOutput, "output", "o", "",
		`Write IR to this file ("-" for stdout).`)
}
