package records

import (
	"strings"

	"github.com/KaramelBytes/kpilens/internal/grid"
)

// Normalize converts a grid whose first row is the header into records.
// Fewer than two rows yields an empty dataset. A row shorter than the header
// leaves its trailing keys undefined; cells beyond the header are dropped.
func Normalize(g grid.RawGrid) Dataset {
	if len(g) < 2 {
		return Dataset{}
	}
	headers := make([]string, len(g[0]))
	for i, h := range g[0] {
		headers[i] = strings.TrimSpace(h)
	}
	out := make(Dataset, 0, len(g)-1)
	for _, row := range g[1:] {
		rec := newRecord(len(headers))
		for i, key := range headers {
			if i < len(row) {
				rec.set(key, row[i], true)
			} else {
				rec.set(key, "", false)
			}
		}
		out = append(out, rec)
	}
	return out
}
