package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/kpilens/internal/config"
	"github.com/KaramelBytes/kpilens/internal/grid"
)

var testSheets = Sheets{Consolidated: "統合データ", YearlySummary: "年度集計"}

func newTestAccessor(t *testing.T, secrets config.Secrets) (*Accessor, *grid.Memory, *observer.ObservedLogs) {
	t.Helper()
	mem := grid.NewMemory()
	mem.Put("mem:kpi", "統合データ", grid.RawGrid{
		{" 月 ", "売上", "粗利"},
		{"4月", "1,000,000", "300,000"},
		{"5月", "1,100,000"},
	})
	mem.Put("mem:kpi", "年度集計", grid.RawGrid{{"年度", "売上"}})
	core, logs := observer.New(zap.DebugLevel)
	return NewAccessor(secrets, grid.NewRegistry(mem), testSheets, zap.New(core)), mem, logs
}

func TestFetchConsolidated(t *testing.T) {
	a, _, _ := newTestAccessor(t, config.StaticSecrets{config.KeyStoreID: "mem:kpi"})

	ds, err := a.FetchConsolidated(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"月", "売上", "粗利"}, ds[0].Keys())
	_, ok := ds[1].Get("粗利")
	assert.False(t, ok)
}

func TestFetchYearlySummaryHeaderOnly(t *testing.T) {
	a, _, _ := newTestAccessor(t, config.StaticSecrets{config.KeyStoreID: "mem:kpi"})

	ds, err := a.FetchYearlySummary(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Len(t, ds, 0)
}

func TestFetchMissingStoreIDFailsBeforeStoreAccess(t *testing.T) {
	a, mem, logs := newTestAccessor(t, config.StaticSecrets{})

	_, err := a.Fetch(context.Background(), Consolidated)
	var missing *config.MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, config.KeyStoreID, missing.Key)
	assert.Equal(t, 0, mem.Opens())
	assert.Equal(t, 1, logs.FilterMessage("fetch dataset failed").Len())
}

func TestFetchMissingSheet(t *testing.T) {
	a, _, logs := newTestAccessor(t, config.StaticSecrets{config.KeyStoreID: "mem:other"})

	_, err := a.Fetch(context.Background(), YearlySummary)
	var nf *grid.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "年度集計", nf.Name)

	entries := logs.FilterMessage("fetch dataset failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "年度集計", entries[0].ContextMap()["sheet"])
}

func TestFetchRereadsEveryCall(t *testing.T) {
	a, mem, _ := newTestAccessor(t, config.StaticSecrets{config.KeyStoreID: "mem:kpi"})
	ctx := context.Background()

	_, err := a.FetchConsolidated(ctx)
	require.NoError(t, err)
	mem.Put("mem:kpi", "統合データ", grid.RawGrid{{"月"}, {"4月"}, {"5月"}, {"6月"}})
	ds, err := a.FetchConsolidated(ctx)
	require.NoError(t, err)
	assert.Len(t, ds, 3)
	assert.Equal(t, 2, mem.Opens())
}

func TestFetchAll(t *testing.T) {
	a, _, _ := newTestAccessor(t, config.StaticSecrets{config.KeyStoreID: "mem:kpi"})

	all, err := a.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all[Consolidated], 2)
	assert.Len(t, all[YearlySummary], 0)
}

func TestFetchAllNoPartialResults(t *testing.T) {
	mem := grid.NewMemory()
	mem.Put("mem:half", "統合データ", grid.RawGrid{{"a"}, {"1"}})
	a := NewAccessor(config.StaticSecrets{config.KeyStoreID: "mem:half"}, grid.NewRegistry(mem), testSheets, nil)

	all, err := a.FetchAll(context.Background(), Consolidated, YearlySummary)
	require.Error(t, err)
	assert.Nil(t, all)
}

func TestParseName(t *testing.T) {
	for in, want := range map[string]Name{
		"consolidated":   Consolidated,
		"yearly":         YearlySummary,
		"yearly-summary": YearlySummary,
		"yearlySummary":  YearlySummary,
		"年度集計":           YearlySummary,
	} {
		got, err := ParseName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseName("monthly")
	assert.Error(t, err)
}
