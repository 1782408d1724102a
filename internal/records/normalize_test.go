package records

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/kpilens/internal/grid"
)

func TestNormalizeEmptyGrids(t *testing.T) {
	for _, g := range []grid.RawGrid{nil, {}, {{"Revenue", "Cost"}}} {
		ds := Normalize(g)
		require.NotNil(t, ds)
		assert.Len(t, ds, 0)
		b, err := json.Marshal(ds)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(b))
	}
}

func TestNormalizeTrimsHeaders(t *testing.T) {
	ds := Normalize(grid.RawGrid{{" Revenue ", "\tCost"}, {"1,000", "800"}})
	require.Len(t, ds, 1)
	assert.Equal(t, []string{"Revenue", "Cost"}, ds[0].Keys())
	v, ok := ds[0].Get("Revenue")
	require.True(t, ok)
	assert.Equal(t, "1,000", v)
	assert.False(t, ds[0].Has(" Revenue "))
}

func TestNormalizeShortRowLeavesKeysUndefined(t *testing.T) {
	ds := Normalize(grid.RawGrid{{"a", "b", "c"}, {"1"}})
	require.Len(t, ds, 1)
	r := ds[0]
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Has("c"))
	_, ok := r.Get("c")
	assert.False(t, ok)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":null,"c":null}`, string(b))
}

func TestNormalizeEmptyCellIsDefined(t *testing.T) {
	ds := Normalize(grid.RawGrid{{"a", "b"}, {"1", ""}})
	v, ok := ds[0].Get("b")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestNormalizeDropsExtraColumns(t *testing.T) {
	ds := Normalize(grid.RawGrid{{"a"}, {"1", "2", "3"}})
	assert.Equal(t, []string{"a"}, ds[0].Keys())
}

func TestNormalizeDuplicateHeaderLastWins(t *testing.T) {
	ds := Normalize(grid.RawGrid{{"x", "y", "x "}, {"first", "mid", "last"}})
	r := ds[0]
	assert.Equal(t, []string{"x", "y"}, r.Keys())
	v, _ := r.Get("x")
	assert.Equal(t, "last", v)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"x":"last","y":"mid"}`, string(b))
}

func TestNormalizeJSONKeepsHeaderOrder(t *testing.T) {
	ds := Normalize(grid.RawGrid{{"月", "売上", "Cost"}, {"4月", "1,000,000", "\"q\""}})
	b, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, `[{"月":"4月","売上":"1,000,000","Cost":"\"q\""}]`, string(b))
}

// Record count equals rows-1 and every record carries all H header keys
// whenever data rows are no wider than the header.
func TestNormalizeShapeProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		h := 1 + rng.Intn(6)
		n := rng.Intn(12)
		g := make(grid.RawGrid, 0, n+1)
		header := make([]string, h)
		for i := range header {
			header[i] = fmt.Sprintf(" col%d ", i)
		}
		g = append(g, header)
		for r := 0; r < n; r++ {
			row := make([]string, rng.Intn(h+1))
			for c := range row {
				row[c] = fmt.Sprintf("%d", rng.Intn(1000))
			}
			g = append(g, row)
		}

		ds := Normalize(g)
		if n == 0 {
			assert.Len(t, ds, 0)
			continue
		}
		require.Len(t, ds, len(g)-1)
		for i, rec := range ds {
			assert.Equal(t, h, rec.Len(), "iter %d record %d", iter, i)
		}

		again := Normalize(g)
		a, _ := json.Marshal(ds)
		b, _ := json.Marshal(again)
		assert.Equal(t, string(a), string(b))
	}
}
