package reportfmt

import (
	"encoding/json"
	"io"

	"buildlens/internal/suggest"
)

// CaveatJSON is one caveat in JSON output.
type CaveatJSON struct {
	Message string `json:"message"`
}

// SuggestionJSON is one suggestion in JSON output.
type SuggestionJSON struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Recommendation string       `json:"recommendation"`
	Rationale      []string     `json:"rationale,omitempty"`
	Caveats        []CaveatJSON `json:"caveats,omitempty"`
}

// OutputJSON is the output of one provider.
type OutputJSON struct {
	Provider    string           `json:"provider"`
	Suggestions []SuggestionJSON `json:"suggestions"`
	Failure     string           `json:"failure,omitempty"`
}

// ReportJSON is the root of JSON report output.
type ReportJSON struct {
	Outputs     []OutputJSON `json:"outputs"`
	Suggestions int          `json:"suggestions"`
	Failed      int          `json:"failed"`
}

// BuildReportJSON converts report into its JSON form.
func BuildReportJSON(report *suggest.Report) ReportJSON {
	out := ReportJSON{
		Outputs:     make([]OutputJSON, 0, len(report.Outputs)),
		Suggestions: report.SuggestionCount(),
		Failed:      len(report.Failures()),
	}
	for _, o := range report.Outputs {
		oj := OutputJSON{Provider: o.Provider, Suggestions: make([]SuggestionJSON, 0, len(o.Suggestions))}
		if o.Failed() {
			oj.Failure = o.Failure.Message
		}
		for _, s := range o.Suggestions {
			sj := SuggestionJSON{
				ID:             s.ID,
				Title:          s.Title,
				Recommendation: s.Recommendation,
				Rationale:      s.Rationale,
			}
			for _, c := range s.Caveats {
				sj.Caveats = append(sj.Caveats, CaveatJSON(c))
			}
			oj.Suggestions = append(oj.Suggestions, sj)
		}
		out.Outputs = append(out.Outputs, oj)
	}
	return out
}

// JSON writes report as JSON.
func JSON(w io.Writer, report *suggest.Report, opts JSONOpts) error {
	return encode(w, BuildReportJSON(report), opts)
}

func encode(w io.Writer, v any, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
