// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/zxc/parser/token"
)

// SourceFunc returns the contents of the named file.
type SourceFunc func(file string) ([]byte, error)

// tabWidth is the number of columns a tab occupies in rendered snippets.
const tabWidth = 4

// Source indexes the lines of a file so that byte offsets can be mapped to
// lines and columns.
type Source struct {
	Name  string
	text  []byte
	lines []int // start offset of each line
}

// NewSource indexes text.
func NewSource(name string, text []byte) *Source {
	lines := []int{0}
	for i, b := range text {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Source{Name: name, text: text, lines: lines}
}

// Line returns the 1-based line containing offset.  Offsets past the end of
// the text belong to the last line.
func (s *Source) Line(offset int) int {
	return sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset })
}

// Text returns line n without its terminator.
func (s *Source) Text(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	end := len(s.text)
	if n < len(s.lines) {
		end = s.lines[n] - 1
	}
	return strings.TrimSuffix(string(s.text[s.lines[n-1]:end]), "\r")
}

// Position returns the 1-based line and rune column of offset.
func (s *Source) Position(offset int) (line, col int) {
	return token.Position(s.text, offset)
}

// columns returns the line holding the start of span and the 1-based,
// inclusive display columns the span covers on that line.  A span running
// past the end of the line stops there and an empty span covers one column.
func (s *Source) columns(span token.Span) (line, start, end int) {
	line = s.Line(span.Start)
	text := s.Text(line)
	base := s.lines[line-1]
	from := min(max(span.Start-base, 0), len(text))
	to := min(max(span.End-base, from), len(text))
	start = displayWidth(text[:from]) + 1
	end = max(displayWidth(text[:to]), start)
	return line, start, end
}

func displayWidth(s string) int {
	return utf8.RuneCountInString(s) + strings.Count(s, "\t")*(tabWidth-1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
