// Package reportfmt renders suggestion reports and fact dumps.
package reportfmt

import (
	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color bool
	// Width wraps long text; 0 disables wrapping.
	Width int
	// Quiet hides providers without suggestions.
	Quiet bool
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Indent bool
}

type palette struct {
	provider *color.Color
	title    *color.Color
	caveat   *color.Color
	failure  *color.Color
	faint    *color.Color
	ok       *color.Color
}

func newPalette(on bool) palette {
	p := palette{
		provider: color.New(color.FgCyan, color.Bold),
		title:    color.New(color.Bold),
		caveat:   color.New(color.FgYellow),
		failure:  color.New(color.FgRed, color.Bold),
		faint:    color.New(color.Faint),
		ok:       color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.provider, p.title, p.caveat, p.failure, p.faint, p.ok} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

var numbers = message.NewPrinter(language.English)

// plural renders "1 suggestion" / "1,024 suggestions".
func plural(n int, word string) string {
	if n == 1 {
		return numbers.Sprintf("%d %s", n, word)
	}
	return numbers.Sprintf("%d %ss", n, word)
}
