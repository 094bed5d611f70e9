// Package output provides consistent CLI output formatting with colors
// and search hit rendering.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/draftglass/inkdex/pkg/manuscript"
)

var (
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	sceneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
}

// New creates a new output Writer. Color is enabled only when out is a
// terminal.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, useColor: useColor}
}

// NewPlain creates a Writer that never emits color.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Hit prints one search hit: a scene header line followed by the
// snippet with match spans emphasized.
func (w *Writer) Hit(hit manuscript.SearchHit) {
	header := fmt.Sprintf("%s  offset %d", hit.SceneID, hit.Offset)
	if w.useColor {
		header = sceneStyle.Render(hit.SceneID) + dimStyle.Render(fmt.Sprintf("  offset %d", hit.Offset))
	}
	_, _ = fmt.Fprintln(w.out, header)
	_, _ = fmt.Fprintf(w.out, "  %s\n", w.renderSnippet(hit.Snippet, hit.Highlights))
}

// Hits prints a result list with a trailing count line.
func (w *Writer) Hits(hits []manuscript.SearchHit) {
	for _, hit := range hits {
		w.Hit(hit)
		w.Newline()
	}
	if len(hits) == 1 {
		w.Status("", "1 result")
	} else {
		w.Statusf("", "%d results", len(hits))
	}
}

// renderSnippet emphasizes highlight spans. Spans are byte ranges into
// the snippet; out-of-range spans are skipped.
func (w *Writer) renderSnippet(snippet string, spans []manuscript.Span) string {
	if len(spans) == 0 {
		return snippet
	}

	var b strings.Builder
	var pos int
	for _, span := range spans {
		if span.Start < pos || span.End > len(snippet) || span.Start >= span.End {
			continue
		}
		b.WriteString(snippet[pos:span.Start])
		match := snippet[span.Start:span.End]
		if w.useColor {
			b.WriteString(highlightStyle.Render(match))
		} else {
			b.WriteString("[" + match + "]")
		}
		pos = span.End
	}
	b.WriteString(snippet[pos:])
	return b.String()
}
