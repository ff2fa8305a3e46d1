// Copyright © 2024 The ELPS authors

package analysis

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented listing of the symbols in scopes and everything
// they own.
func Dump(w io.Writer, scopes *Scopes) error {
	bw := bufio.NewWriter(w)
	Walk(scopes.Symbols(), func(sym *Symbol, depth int) bool {
		fmt.Fprintf(bw, "%s%s %s: %s", strings.Repeat("  ", depth), sym.KindName(), sym.Path, sym.Type())
		if sym.Name != "" {
			fmt.Fprintf(bw, " uses=%d", sym.Uses)
		}
		bw.WriteString("\n")
		return true
	})
	return bw.Flush()
}
