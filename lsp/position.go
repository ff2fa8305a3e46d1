// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/zxc/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LSP positions count UTF-16 code units within a line.

// offsetToPosition converts a byte offset of src to a 0-based LSP position.
// Offsets past the end of src are clamped.
func offsetToPosition(src string, offset int) protocol.Position {
	if offset > len(src) {
		offset = len(src)
	}
	line, lineStart := 0, 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(utf16Len(src[lineStart:offset])),
	}
}

// positionToOffset converts a 0-based LSP position to a byte offset of src.
// A character past the end of its line maps to the end of the line.
func positionToOffset(src string, pos protocol.Position) int {
	offset := 0
	for line := 0; line < int(pos.Line); line++ {
		nl := strings.IndexByte(src[offset:], '\n')
		if nl < 0 {
			return len(src)
		}
		offset += nl + 1
	}
	units := int(pos.Character)
	for offset < len(src) && units > 0 {
		c, n := utf8.DecodeRuneInString(src[offset:])
		if c == '\n' {
			break
		}
		units -= utf16Units(c)
		offset += n
	}
	return offset
}

// spanToRange converts a byte span of src to an LSP range.
func spanToRange(src string, span token.Span) protocol.Range {
	return protocol.Range{
		Start: offsetToPosition(src, span.Start),
		End:   offsetToPosition(src, span.End),
	}
}

func utf16Len(s string) int {
	n := 0
	for _, c := range s {
		n += utf16Units(c)
	}
	return n
}

func utf16Units(c rune) int {
	if c >= 0x10000 {
		return 2
	}
	return 1
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
