package reportfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"buildlens/internal/suggest"
)

var headerStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	PaddingRight(2)

// Pretty writes report for a terminal.
func Pretty(w io.Writer, title string, report *suggest.Report, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	var b strings.Builder

	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	for _, out := range report.Outputs {
		if opts.Quiet && !out.Failed() && len(out.Suggestions) == 0 {
			continue
		}
		b.WriteString(pal.provider.Sprint(out.Provider))
		b.WriteByte('\n')

		switch {
		case out.Failed():
			b.WriteString(indent(2, pal.failure.Sprint("failed: ")+out.Failure.Message, opts.Width))
		case len(out.Suggestions) == 0:
			b.WriteString(indent(2, pal.faint.Sprint("no suggestions"), opts.Width))
		}
		for _, s := range out.Suggestions {
			writeSuggestion(&b, pal, s, opts.Width)
		}
		b.WriteByte('\n')
	}

	failed := len(report.Failures())
	summary := fmt.Sprintf("%s from %s", plural(report.SuggestionCount(), "suggestion"), plural(len(report.Outputs), "provider"))
	if failed > 0 {
		summary += ", " + pal.failure.Sprint(numbers.Sprintf("%d failed", failed))
	}
	b.WriteString(summary)
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSuggestion(b *strings.Builder, pal palette, s suggest.Suggestion, width int) {
	b.WriteString(indent(2, "* "+pal.title.Sprint(s.Title), width))
	if s.Recommendation != "" {
		b.WriteString(indent(4, s.Recommendation, width))
	}
	for _, r := range s.Rationale {
		b.WriteString(indent(4, "- "+r, width))
	}
	for _, c := range s.Caveats {
		b.WriteString(indent(4, pal.caveat.Sprint("caveat: ")+c.Message, width))
	}
}

// indent left-pads text and wraps it to width, ending with a newline.
func indent(n int, text string, width int) string {
	style := lipgloss.NewStyle().PaddingLeft(n)
	if width > n {
		style = style.Width(width)
	}
	return style.Render(text) + "\n"
}
