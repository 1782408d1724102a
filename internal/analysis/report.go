package analysis

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

// FormatAmount renders a figure rounded to an integer with comma grouping.
func FormatAmount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatPct renders a signed percentage with one decimal place.
func FormatPct(f Figure) string {
	if !f.OK {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", f.Value)
}

func formatFigure(f Figure) string {
	if !f.OK {
		return "-"
	}
	return FormatAmount(f.Value)
}

// Markdown renders the flagged findings as a table followed by any notes.
func (s *Scan) Markdown() string {
	var b strings.Builder
	flagged := s.Flagged()

	b.WriteString("[ANOMALY SCAN]\n")
	if s.Dataset != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", s.Dataset))
	}
	b.WriteString(fmt.Sprintf("Rows: %d, items: %d, flagged: %d\n", s.Rows, len(s.Findings), len(flagged)))
	b.WriteString(fmt.Sprintf("Rules: %s\n\n", s.Policy.describe()))

	if len(flagged) == 0 {
		b.WriteString("No item reached a threshold.\n")
	} else {
		b.WriteString("| 項目 | 実績 | 計画 | 計画比 | 前月比 | 前年差 | 影響額 | 理由 |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---|\n")
		for _, f := range flagged {
			labels := make([]string, len(f.Reasons))
			for i, r := range f.Reasons {
				labels[i] = r.Label()
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				cell(f.Name),
				FormatAmount(f.Actual),
				formatFigure(f.Plan),
				FormatPct(f.PlanPct),
				FormatPct(f.MoMPct),
				FormatPct(f.YoYPct),
				formatFigure(f.Impact),
				strings.Join(labels, ", ")))
		}
	}

	if len(s.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range s.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func (p Policy) describe() string {
	var parts []string
	if p.PlanVariancePct > 0 {
		parts = append(parts, fmt.Sprintf("計画比 ±%g%%", p.PlanVariancePct))
	}
	if p.MoMPct > 0 {
		parts = append(parts, fmt.Sprintf("前月比 ±%g%%", p.MoMPct))
	}
	if p.YoYPct > 0 {
		parts = append(parts, fmt.Sprintf("前年差 ±%g%%", p.YoYPct))
	}
	if p.TopN > 0 {
		parts = append(parts, fmt.Sprintf("影響額上位%d", p.TopN))
	}
	if p.ImpactFloor > 0 {
		parts = append(parts, "影響額 "+FormatAmount(p.ImpactFloor)+"以上")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " / ")
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
