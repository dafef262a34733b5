package reportfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FactStatus is the outcome of resolving one fact for a dump.
type FactStatus string

const (
	FactOK          FactStatus = "ok"
	FactUnavailable FactStatus = "unavailable"
	FactFailed      FactStatus = "failed"
)

// FactRow is one line of a fact dump.
type FactRow struct {
	Type        string     `json:"type"`
	Status      FactStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	// Summary is the fact summary, or the error for failed facts.
	Summary string `json:"summary,omitempty"`
}

// Facts writes rows as an aligned table. Summaries are truncated to fit
// opts.Width when it is set.
func Facts(w io.Writer, rows []FactRow, opts PrettyOpts) error {
	pal := newPalette(opts.Color)

	nameW, statusW := runewidth.StringWidth("FACT"), runewidth.StringWidth(string(FactUnavailable))
	for _, r := range rows {
		nameW = max(nameW, runewidth.StringWidth(r.Type))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n",
		runewidth.FillRight("FACT", nameW), runewidth.FillRight("STATUS", statusW), "SUMMARY")
	for _, r := range rows {
		summary := r.Summary
		if opts.Width > 0 {
			room := opts.Width - nameW - statusW - 4
			if room > 1 {
				summary = runewidth.Truncate(summary, room, "…")
			}
		}
		status := runewidth.FillRight(string(r.Status), statusW)
		switch r.Status {
		case FactOK:
			status = pal.ok.Sprint(status)
		case FactFailed:
			status = pal.failure.Sprint(status)
		default:
			status = pal.faint.Sprint(status)
		}
		fmt.Fprintf(&b, "%s  %s  %s\n", runewidth.FillRight(r.Type, nameW), status, summary)
	}
	b.WriteString(numbers.Sprintf("\n%s\n", plural(len(rows), "fact")))

	_, err := io.WriteString(w, b.String())
	return err
}

// FactsJSON writes rows as a JSON array.
func FactsJSON(w io.Writer, rows []FactRow, opts JSONOpts) error {
	if rows == nil {
		rows = []FactRow{}
	}
	return encode(w, rows, opts)
}
