// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/luthersystems/zxc/diagnostic"
)

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString("color"))
	if err != nil {
		logger().WithError(err).Warn("using automatic color")
	}
	return mode
}

// sourceSet holds the text of every file a command read so that rendering
// does not depend on the file system, which matters for stdin.
type sourceSet map[string][]byte

func (s sourceSet) read(file string) ([]byte, error) {
	if src, ok := s[file]; ok {
		return src, nil
	}
	return os.ReadFile(file) //nolint:gosec // CLI tool reads user-specified files
}

func newRenderer(color diagnostic.ColorMode, sources sourceSet) *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: color, SourceReader: sources.read}
}

// writeDiagnostics renders diags to w, or encodes them as JSON.
func writeDiagnostics(w io.Writer, diags []diagnostic.Diagnostic, asJSON bool, color diagnostic.ColorMode, sources sourceSet) error {
	if asJSON {
		return diagnostic.FormatJSON(w, diags, sources.read)
	}
	if len(diags) == 0 {
		return nil
	}
	return newRenderer(color, sources).RenderAll(w, diags)
}

// promoteWarnings turns warnings into errors in place.
func promoteWarnings(diags []diagnostic.Diagnostic) {
	for i := range diags {
		if diags[i].Severity == diagnostic.SeverityWarning {
			diags[i].Severity = diagnostic.SeverityError
		}
	}
}
