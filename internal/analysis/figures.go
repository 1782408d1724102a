package analysis

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ParseFigure reads a figure as a spreadsheet displays it: "1,234,567",
// "¥1,200", "1,200円", "12.5%", "(1,234)", "△1,234", full-width digits.
// Commas are always thousands separators. ok is false for blanks and text.
func ParseFigure(s string) (float64, bool) {
	raw := width.Narrow.String(strings.TrimSpace(s))
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	neg := false
	switch {
	case strings.HasPrefix(raw, "△"), strings.HasPrefix(raw, "▲"):
		neg = true
		raw = raw[len("△"):]
	case strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")"):
		neg = true
		raw = raw[1 : len(raw)-1]
	}
	raw = strings.ReplaceAll(raw, "−", "-") // minus sign

	for _, mark := range []string{"¥", "$", "円", "%"} {
		raw = strings.ReplaceAll(raw, mark, "")
	}
	for _, sep := range []string{",", " "} {
		raw = strings.ReplaceAll(raw, sep, "")
	}
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// Figure is an optional number: OK is false when the cell was absent,
// blank or not a number.
type Figure struct {
	Value float64
	OK    bool
}

// Known wraps a present value.
func Known(v float64) Figure { return Figure{Value: v, OK: true} }

func parseOptional(s string, defined bool) (Figure, bool) {
	if !defined || strings.TrimSpace(s) == "" {
		return Figure{}, true
	}
	v, ok := ParseFigure(s)
	if !ok {
		return Figure{}, false
	}
	return Known(v), true
}

// MarshalJSON encodes a missing figure as null.
func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.OK {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}
