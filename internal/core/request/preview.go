package request

import (
	"fmt"
	"strings"
	"time"
)

// EntryPreview summarizes how the backend will expand an entry: one morning
// and one afternoon booking per business day, each taking the next
// description line.
type EntryPreview struct {
	Entry          Entry `json:"entry"`
	BusinessDays   int   `json:"business_days"`
	MorningLines   int   `json:"morning_lines"`
	AfternoonLines int   `json:"afternoon_lines"`
	// DateError is set when the dates do not parse; the backend will reject
	// the entry.
	DateError string `json:"date_error,omitempty"`
}

// ShortDescriptions reports whether either shift has fewer description lines
// than business days. Empty descriptions are allowed.
func (p EntryPreview) ShortDescriptions() bool {
	short := func(n int) bool { return n > 0 && n < p.BusinessDays }
	return short(p.MorningLines) || short(p.AfternoonLines)
}

// Preview computes an EntryPreview for every entry of the request.
func Preview(req Request) []EntryPreview {
	out := make([]EntryPreview, 0, len(req.Periods))
	for _, e := range req.Periods {
		p := EntryPreview{
			Entry:          e,
			MorningLines:   DescriptionLines(e.Morning),
			AfternoonLines: DescriptionLines(e.Afternoon),
		}
		days, err := BusinessDays(e.Start, e.End)
		if err != nil {
			p.DateError = err.Error()
		}
		p.BusinessDays = days
		out = append(out, p)
	}
	return out
}

// BusinessDays counts the Monday to Friday dates in the inclusive range.
// A range whose end precedes its start has no business days.
func BusinessDays(start, end string) (int, error) {
	from, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q", start)
	}
	to, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q", end)
	}

	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n, nil
}

// DescriptionLines counts the non-blank lines of a description.
func DescriptionLines(s string) int {
	n := 0
	for line := range strings.SplitSeq(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
