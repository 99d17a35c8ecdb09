package diagnostic

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Snippet renders a caret-annotated source excerpt for d, three lines of
// context above and below, a '>' gutter marker on the offending line and a
// caret under the offending column — the same shape as the teacher corpus's
// printer.PrintErrorToken, ported from token-chain walking to a plain line
// index since the core never needs to reconstruct original whitespace.
func Snippet(source string, d *Diagnostic, colored bool) string {
	lines := strings.Split(source, "\n")
	if d.Line < 1 || d.Line > len(lines) {
		return ""
	}
	const context = 3
	minLine := d.Line - context
	if minLine < 1 {
		minLine = 1
	}
	maxLine := d.Line + context
	if maxLine > len(lines) {
		maxLine = len(lines)
	}

	gutterWidth := len(fmt.Sprintf("%d", maxLine))
	bold := color.New(color.Bold, color.FgHiWhite).SprintFunc()

	var b strings.Builder
	for n := minLine; n <= maxLine; n++ {
		marker := "  "
		if n == d.Line {
			marker = "> "
		}
		gutter := fmt.Sprintf("%s%*d | ", marker, gutterWidth, n)
		if colored {
			gutter = bold(gutter)
		}
		fmt.Fprintf(&b, "%s%s\n", gutter, lines[n-1])
		if n == d.Line {
			col := d.Column
			if col < 1 {
				col = 1
			}
			caretLine := strings.Repeat(" ", len(marker)+gutterWidth+3+col-1) + "^"
			if colored {
				caretLine = color.New(color.FgHiRed).Sprint(caretLine)
			}
			fmt.Fprintf(&b, "%s\n", caretLine)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Format renders the diagnostic message followed by its snippet, the shape
// the CLI prints to stderr.
func Format(source string, d *Diagnostic, colored bool) string {
	msg := d.Error()
	if colored {
		msg = color.New(color.Bold, color.FgHiRed).Sprint(msg)
	}
	snippet := Snippet(source, d, colored)
	if snippet == "" {
		return msg
	}
	return msg + "\n" + snippet
}
