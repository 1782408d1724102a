package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/kpilens/internal/records"
)

// Columns names the dataset columns a scan reads.
type Columns struct {
	Item       string `json:"item"`
	Actual     string `json:"actual"`
	Plan       string `json:"plan"`
	PriorMonth string `json:"priorMonth"`
	PriorYear  string `json:"priorYear"`
}

// DefaultColumns returns the headings used by the report workbook.
func DefaultColumns() Columns {
	return Columns{Item: "項目", Actual: "実績", Plan: "計画", PriorMonth: "前月", PriorYear: "前年"}
}

// Scan is the result of running the policy over a dataset.
type Scan struct {
	Dataset  string    `json:"dataset"`
	Columns  Columns   `json:"columns"`
	Policy   Policy    `json:"policy"`
	Rows     int       `json:"rows"`
	Findings []Finding `json:"findings"`
	Notes    []string  `json:"notes,omitempty"`
}

// Items converts records into policy items. Rows whose actual figure is
// missing or not a number are skipped with a note; an unreadable optional
// figure is treated as missing and noted.
func Items(ds records.Dataset, cols Columns) ([]Item, []string) {
	var (
		items []Item
		notes []string
	)
	for i, rec := range ds {
		row := i + 2 // header is row 1
		name, _ := rec.Get(cols.Item)
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("row %d", row)
		}

		raw, defined := rec.Get(cols.Actual)
		actual, ok := ParseFigure(raw)
		if !ok {
			if defined && strings.TrimSpace(raw) != "" {
				notes = append(notes, fmt.Sprintf("%s: %s %q is not a number, skipped", name, cols.Actual, raw))
			} else {
				notes = append(notes, fmt.Sprintf("%s: no %s figure, skipped", name, cols.Actual))
			}
			continue
		}

		it := Item{Name: name, Actual: actual}
		for _, opt := range []struct {
			col string
			dst *Figure
		}{
			{cols.Plan, &it.Plan},
			{cols.PriorMonth, &it.PriorMonth},
			{cols.PriorYear, &it.PriorYear},
		} {
			if opt.col == "" {
				continue
			}
			v, defined := rec.Get(opt.col)
			fig, ok := parseOptional(v, defined)
			if !ok {
				notes = append(notes, fmt.Sprintf("%s: %s %q is not a number, ignored", name, opt.col, v))
			}
			*opt.dst = fig
		}
		items = append(items, it)
	}
	return items, notes
}

// Run scans a dataset with the given column mapping and policy.
func Run(name string, ds records.Dataset, cols Columns, p Policy) *Scan {
	items, notes := Items(ds, cols)
	findings := p.Evaluate(items)
	return &Scan{
		Dataset:  name,
		Columns:  cols,
		Policy:   p,
		Rows:     len(ds),
		Findings: findings,
		Notes:    notes,
	}
}

// Flagged returns the findings that matched at least one rule.
func (s *Scan) Flagged() []Finding { return FlaggedOnly(s.Findings) }
