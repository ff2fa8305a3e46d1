// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/zxc/diagnostic"
	"github.com/luthersystems/zxc/docs"
	"github.com/luthersystems/zxc/lint"
)

const explainWidth = 72

var kindDocs = map[diagnostic.Kind]string{
	diagnostic.UnknownError:  "An error whose cause could not be classified.\n\nThis should not appear in practice; please report the program that produced it.",
	diagnostic.SyntaxError:   "The source text does not follow the zx grammar.\n\nThe parser reports the token it expected and the one it found, then skips to the next statement boundary so that later mistakes are reported too. Semantic analysis still runs on the statements that parsed.",
	diagnostic.TypeError:     "A value's type does not fit where it is used.\n\nThis covers mismatched assignments and returns, calls with the wrong number of arguments, operators applied to unsupported types, member access on types without members, and variables whose type cannot be determined. A note shows the expected and the found type where both are known.",
	diagnostic.NameError:     "A name does not refer to any visible declaration, or is declared twice in one scope.\n\nNames are visible in the block that declares them and in nested blocks. Class members are visible inside the class's methods, and globals are visible everywhere, including before their declaration.",
	diagnostic.Warning:       "A likely mistake that does not stop compilation.\n\nThe checker warns about local variables that are never read. Lint checks add warnings of their own, each tagged with the check's name. Use --warnings-as-errors to make warnings fail the build.",
	diagnostic.InternalError: "The compiler itself failed.\n\nThe program may be valid. Please report it along with the message.",
	diagnostic.Debug:         "A record of compiler internals, such as the dump of all scopes after analysis.\n\nDebug records are hidden unless --debug-dump is given.",
}

var explainCmd = &cobra.Command{
	Use:   "explain [topic]",
	Short: "Describe a diagnostic kind or lint check",
	Long: `Describe a diagnostic kind, such as TypeError, or a lint check, such as
empty-block. The topic "lang" prints the language reference. Without a topic,
list all topics.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := runExplain(cmd.OutOrStdout(), cmd.ErrOrStderr(), args); code != 0 {
			os.Exit(code)
		}
	},
}

func runExplain(stdout, stderr io.Writer, args []string) int {
	if len(args) == 0 {
		listTopics(stdout)
		return 0
	}
	topic := args[0]
	if strings.EqualFold(topic, "lang") {
		fmt.Fprint(stdout, docs.LangGuide)
		return 0
	}
	for _, kind := range diagnostic.Kinds() {
		if strings.EqualFold(kind.String(), topic) {
			writeTopic(stdout, kind.String(), kindDocs[kind])
			return 0
		}
	}
	if a := lint.Lookup(strings.ToLower(topic)); a != nil {
		writeTopic(stdout, a.Name+" (lint check)", a.Doc)
		return 0
	}
	fmt.Fprintf(stderr, "zxc explain: unknown topic: %s\n", topic)
	return 2
}

func listTopics(w io.Writer) {
	fmt.Fprintln(w, "Diagnostic kinds:")
	for _, kind := range diagnostic.Kinds() {
		fmt.Fprintf(w, "  %-16s %s\n", kind, summary(kindDocs[kind]))
	}
	fmt.Fprintln(w, "\nLint checks:")
	for _, a := range lint.DefaultAnalyzers() {
		fmt.Fprintf(w, "  %-20s %s\n", a.Name, summary(a.Doc))
	}
	fmt.Fprintln(w, "\nRun 'zxc explain lang' for the language reference.")
}

func writeTopic(w io.Writer, title, doc string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)
	for i, para := range strings.Split(doc, "\n\n") {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, indent.String(wordwrap.String(para, explainWidth), 2))
	}
}

func summary(doc string) string {
	first, _, _ := strings.Cut(doc, "\n")
	return first
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
