// Package render produces a colourised, syntax-highlighted terminal
// presentation of a parsed diff. It is a pure string-in/string-out
// sibling of diff.FormatFileDiff, not a GUI: no widgets, no event
// loop, no file pickers, just another serialisation of the same
// immutable model.
package render

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"github.com/batalabs/diffcore/internal/diff"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderUnifiedDiff returns an ANSI-coloured rendering of fp, with
// context/addition/deletion lines syntax-highlighted according to the
// lexer chroma infers from fp's paths before the add/remove colour
// wash is applied.
func RenderUnifiedDiff(fp *diff.FilePatch) string {
	lexer := lexerFor(fp)

	var b strings.Builder
	b.WriteString(headerStyle.Render("--- "+withPrefix(fp.OldPath, "a/")) + "\n")
	b.WriteString(headerStyle.Render("+++ "+withPrefix(fp.NewPath, "b/")) + "\n")

	for _, h := range fp.Hunks {
		b.WriteString(hunkStyle.Render(hunkHeader(h)) + "\n")
		for _, hl := range h.Lines {
			b.WriteString(renderLine(hl, lexer) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderLine(hl diff.HunkLine, lexer string) string {
	highlighted := highlight(hl.Text, lexer)
	switch hl.Kind {
	case diff.Addition:
		return addStyle.Render("+" + highlighted)
	case diff.Deletion:
		return delStyle.Render("-" + highlighted)
	default:
		return contextStyle.Render(" " + highlighted)
	}
}

// highlight syntax-highlights a single line of source text with
// chroma's terminal256 formatter. Highlighting never changes the
// underlying text content — on any lexer/formatter error the plain
// text is returned unchanged, so a rendering failure can never affect
// what diff.Apply would do with the same line.
func highlight(text, lexer string) string {
	if lexer == "" || strings.TrimSpace(text) == "" {
		return text
	}
	var b strings.Builder
	if err := quick.Highlight(&b, text, lexer, "terminal256", "monokai"); err != nil {
		return text
	}
	return strings.TrimRight(b.String(), "\n")
}

// lexerFor infers a chroma lexer name from a FilePatch's new (falling
// back to old) path extension. Returns "" when no lexer matches,
// which disables highlighting for that patch.
func lexerFor(fp *diff.FilePatch) string {
	path := fp.NewPath
	if path == "" || path == "/dev/null" {
		path = fp.OldPath
	}
	if path == "" || path == "/dev/null" {
		return ""
	}
	l := lexers.Match(path)
	if l == nil {
		return ""
	}
	return l.Config().Name
}

func hunkHeader(h diff.Hunk) string {
	return "@@ -" + strconv.Itoa(h.OldStart) + "," + strconv.Itoa(h.OldLen) +
		" +" + strconv.Itoa(h.NewStart) + "," + strconv.Itoa(h.NewLen) + " @@"
}

// withPrefix prepends prefix to p, treating an empty path as the
// "/dev/null" sentinel (written bare, with no a/ or b/ prefix).
func withPrefix(p, prefix string) string {
	if p == "" {
		p = "/dev/null"
	}
	if p == "/dev/null" {
		return p
	}
	return prefix + p
}
