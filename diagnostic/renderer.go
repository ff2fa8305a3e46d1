// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/luthersystems/zxc/parser/token"
)

// Renderer formats diagnostics as annotated source snippets.  The primary
// span is underlined with '^', related labels with '-', and notes follow the
// snippet.  Each file is read at most once per Renderer.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader SourceFunc

	sources map[string]*Source
}

// mark is one underline drawn beneath a source line.
type mark struct {
	line       int
	start, end int
	primary    bool
	text       string
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	var b strings.Builder
	header(&b, d, p)
	switch src := r.source(d); {
	case src != nil:
		snippet(&b, src, d, p)
	case d.File != "":
		fmt.Fprintf(&b, "  %s-->%s %s\n", p.boldBlue, p.reset, d.File)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// source returns the indexed text of d.File, or nil when d has no snippet.
func (r *Renderer) source(d Diagnostic) *Source {
	if d.File == "" || d.Severity == SeverityDebug {
		return nil
	}
	if src, ok := r.sources[d.File]; ok {
		return src
	}
	read := r.SourceReader
	if read == nil {
		read = os.ReadFile
	}
	var src *Source
	if text, err := read(d.File); err == nil {
		src = NewSource(d.File, text)
	}
	if r.sources == nil {
		r.sources = make(map[string]*Source)
	}
	r.sources[d.File] = src
	return src
}

// header writes "error[Kind]: message", or "severity: message" for anything
// other than an error.
func header(b *strings.Builder, d Diagnostic, p palette) {
	title, color := d.Severity.String(), p.boldCyan
	switch d.Severity {
	case SeverityError:
		title, color = fmt.Sprintf("error[%s]", d.Kind), p.boldRed
	case SeverityWarning:
		color = p.yellow
	case SeverityDebug:
		color = p.blue
	}
	fmt.Fprintf(b, "%s%s%s%s: %s%s%s\n", color, p.bold, title, p.reset, p.bold, d.Message, p.reset)
}

// snippet writes the location of d followed by every source line that
// carries a mark, in line order.  Lines that are not adjacent are separated
// by an elision gutter.
func snippet(b *strings.Builder, src *Source, d Diagnostic, p palette) {
	line, col := src.Position(d.Span.Start)
	fmt.Fprintf(b, "  %s-->%s %s:%d:%d\n", p.boldBlue, p.reset, src.Name, line, col)

	marks := []mark{newMark(src, d.Span, true, "")}
	for _, rel := range d.Related {
		marks = append(marks, newMark(src, rel.Span, false, rel.Text))
	}
	sort.SliceStable(marks, func(i, j int) bool {
		if marks[i].line != marks[j].line {
			return marks[i].line < marks[j].line
		}
		return marks[i].start < marks[j].start
	})

	width := len(strconv.Itoa(marks[len(marks)-1].line))
	gutter := func(label string) string {
		return fmt.Sprintf("%s%*s |%s", p.boldBlue, width+1, label, p.reset)
	}
	b.WriteString(gutter("") + "\n")
	last := 0
	for _, m := range marks {
		if m.line != last {
			if last != 0 && m.line > last+1 {
				fmt.Fprintf(b, "%s...%s\n", p.boldBlue, p.reset)
			}
			fmt.Fprintf(b, "%s %s\n", gutter(strconv.Itoa(m.line)), expandTabs(src.Text(m.line)))
			last = m.line
		}
		color, ch := p.boldBlue, "-"
		if m.primary {
			color, ch = p.boldRed, "^"
		}
		underline := strings.Repeat(" ", m.start-1) + strings.Repeat(ch, m.end-m.start+1)
		if m.text != "" {
			underline += " " + m.text
		}
		fmt.Fprintf(b, "%s %s%s%s\n", gutter(""), color, underline, p.reset)
	}
	b.WriteString(gutter("") + "\n")
}

func newMark(src *Source, span token.Span, primary bool, text string) mark {
	line, start, end := src.columns(span)
	return mark{line: line, start: start, end: end, primary: primary, text: text}
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
