package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles applied when color output is enabled.
var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	locStyle     = lipgloss.NewStyle().Bold(true)
	caretStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Formatter renders diagnostics against one unit's source text, resolving
// absolute byte offsets to 1-based line/column positions on demand. The core
// phases never do this themselves; offset-to-coordinate mapping lives here.
type Formatter struct {
	name  string
	src   string
	lines []int // byte offset of each line start
	color bool
}

// NewFormatter builds a formatter for the named unit. An empty name renders
// as "<input>".
func NewFormatter(name, src string) *Formatter {
	if name == "" {
		name = "<input>"
	}
	f := &Formatter{name: name, src: src}
	f.lines = append(f.lines, 0)
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// WithColor toggles ANSI styling of rendered output.
func (f *Formatter) WithColor(enabled bool) *Formatter {
	f.color = enabled
	return f
}

// Position resolves an absolute byte offset to 1-based line and column.
func (f *Formatter) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.src) {
		offset = len(f.src)
	}
	i := sort.SearchInts(f.lines, offset+1) - 1
	return i + 1, offset - f.lines[i] + 1
}

// Format renders one diagnostic: a location header, the offending source
// line, and a caret line underlining the span.
func (f *Formatter) Format(w io.Writer, d Diagnostic) {
	line, col := f.Position(d.Start)

	loc := fmt.Sprintf("%s:%d:%d", f.name, line, col)
	sev := string(d.Severity)
	if f.color {
		loc = locStyle.Render(loc)
		sev = f.severityStyle(d.Severity).Render(sev)
	}
	fmt.Fprintf(w, "%s: %s: %s [%s]\n", loc, sev, d.Message, d.Code)

	text := f.lineText(line)
	if text == "" && d.Start >= len(f.src) {
		return
	}
	fmt.Fprintf(w, "  %s\n", text)

	lineStart := f.lines[line-1]
	width := d.End - d.Start
	if width < 1 {
		width = 1
	}
	if rest := len(text) - (d.Start - lineStart); width > rest && rest >= 1 {
		width = rest
	}

	// Mirror tabs so the carets line up under the span.
	var pad strings.Builder
	for i := lineStart; i < d.Start && i-lineStart < len(text); i++ {
		if text[i-lineStart] == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	carets := strings.Repeat("^", width)
	if f.color {
		carets = caretStyle.Render(carets)
	}
	fmt.Fprintf(w, "  %s%s\n", pad.String(), carets)
}

// FormatAll renders diagnostics in order.
func (f *Formatter) FormatAll(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		f.Format(w, d)
	}
}

func (f *Formatter) severityStyle(s Severity) lipgloss.Style {
	switch s {
	case SeverityWarning:
		return warningStyle
	case SeverityNote:
		return noteStyle
	default:
		return errorStyle
	}
}

func (f *Formatter) lineText(line int) string {
	start := f.lines[line-1]
	end := len(f.src)
	if line < len(f.lines) {
		end = f.lines[line] - 1
	}
	return strings.TrimSuffix(f.src[start:end], "\r")
}
