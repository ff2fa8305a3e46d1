// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/luthersystems/zxc/diagnostic"
)

// renderDiagnostics renders diagnostics whose spans are relative to input.
// Diagnostics without a file are rendered without a source snippet.
func renderDiagnostics(w io.Writer, color diagnostic.ColorMode, input string, diags []diagnostic.Diagnostic) {
	r := &diagnostic.Renderer{
		Color: color,
		SourceReader: func(string) ([]byte, error) {
			return []byte(input), nil
		},
	}
	for _, d := range diags {
		_ = r.Render(w, d)
	}
}
