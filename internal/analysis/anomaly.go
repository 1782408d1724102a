package analysis

import (
	"math"
	"sort"
)

// Reason names one rule that flagged an item.
type Reason string

const (
	ReasonPlan        Reason = "plan_variance"
	ReasonMoM         Reason = "month_over_month"
	ReasonYoY         Reason = "year_over_year"
	ReasonTopImpact   Reason = "top_impact"
	ReasonImpactFloor Reason = "impact_floor"
)

// Label is the report heading used for the reason.
func (r Reason) Label() string {
	switch r {
	case ReasonPlan:
		return "計画比"
	case ReasonMoM:
		return "前月比"
	case ReasonYoY:
		return "前年差"
	case ReasonTopImpact:
		return "影響額上位"
	case ReasonImpactFloor:
		return "影響額"
	}
	return string(r)
}

// Policy holds the anomaly thresholds. Percent thresholds compare against
// the absolute change; a zero threshold disables that rule.
type Policy struct {
	PlanVariancePct float64 `json:"planVariancePct"`
	MoMPct          float64 `json:"momPct"`
	YoYPct          float64 `json:"yoyPct"`
	// TopN flags the items with the largest variance amount.
	TopN int `json:"topN"`
	// ImpactFloor flags items below every threshold whose variance amount
	// is at least this large. Zero disables it.
	ImpactFloor float64 `json:"impactFloor"`
}

// DefaultPolicy is the rule the analysis contract states.
func DefaultPolicy() Policy {
	return Policy{PlanVariancePct: 5, MoMPct: 10, YoYPct: 10, TopN: 3}
}

// Item is one line of figures to evaluate.
type Item struct {
	Name       string  `json:"name"`
	Actual     float64 `json:"actual"`
	Plan       Figure  `json:"plan"`
	PriorMonth Figure  `json:"priorMonth"`
	PriorYear  Figure  `json:"priorYear"`
}

// Finding is an evaluated item. Percentages are missing when the base
// figure is missing or zero.
type Finding struct {
	Item
	PlanPct Figure   `json:"planPct"`
	MoMPct  Figure   `json:"momPct"`
	YoYPct  Figure   `json:"yoyPct"`
	Impact  Figure   `json:"impact"`
	Reasons []Reason `json:"reasons"`
}

// Flagged reports whether any rule matched.
func (f Finding) Flagged() bool { return len(f.Reasons) > 0 }

const pctTolerance = 1e-9

func changePct(actual float64, base Figure) Figure {
	if !base.OK || math.Abs(base.Value) < pctTolerance {
		return Figure{}
	}
	return Known((actual - base.Value) * 100 / math.Abs(base.Value))
}

// impact is the larger of the plan and prior-year variance amounts.
func impact(it Item) Figure {
	var out Figure
	for _, base := range []Figure{it.Plan, it.PriorYear} {
		if !base.OK {
			continue
		}
		d := math.Abs(it.Actual - base.Value)
		if !out.OK || d > out.Value {
			out = Known(d)
		}
	}
	return out
}

func reaches(pct Figure, threshold float64) bool {
	return threshold > 0 && pct.OK && math.Abs(pct.Value) >= threshold-pctTolerance
}

// Evaluate applies the policy to items and returns one finding per item,
// in input order.
func (p Policy) Evaluate(items []Item) []Finding {
	out := make([]Finding, len(items))
	for i, it := range items {
		f := Finding{
			Item:    it,
			PlanPct: changePct(it.Actual, it.Plan),
			MoMPct:  changePct(it.Actual, it.PriorMonth),
			YoYPct:  changePct(it.Actual, it.PriorYear),
			Impact:  impact(it),
		}
		if reaches(f.PlanPct, p.PlanVariancePct) {
			f.Reasons = append(f.Reasons, ReasonPlan)
		}
		if reaches(f.MoMPct, p.MoMPct) {
			f.Reasons = append(f.Reasons, ReasonMoM)
		}
		if reaches(f.YoYPct, p.YoYPct) {
			f.Reasons = append(f.Reasons, ReasonYoY)
		}
		out[i] = f
	}

	if p.TopN > 0 {
		ranked := make([]int, 0, len(out))
		for i, f := range out {
			if f.Impact.OK && f.Impact.Value > 0 {
				ranked = append(ranked, i)
			}
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return out[ranked[a]].Impact.Value > out[ranked[b]].Impact.Value
		})
		if len(ranked) > p.TopN {
			ranked = ranked[:p.TopN]
		}
		for _, i := range ranked {
			out[i].Reasons = append(out[i].Reasons, ReasonTopImpact)
		}
	}

	if p.ImpactFloor > 0 {
		for i := range out {
			f := &out[i]
			if !f.Flagged() && f.Impact.OK && f.Impact.Value >= p.ImpactFloor {
				f.Reasons = append(f.Reasons, ReasonImpactFloor)
			}
		}
	}
	return out
}

// FlaggedOnly filters findings to those with at least one reason.
func FlaggedOnly(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Flagged() {
			out = append(out, f)
		}
	}
	return out
}
