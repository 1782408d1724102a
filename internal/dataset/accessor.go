// Package dataset binds the logical datasets to sheets of the configured store.
package dataset

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/kpilens/internal/config"
	"github.com/KaramelBytes/kpilens/internal/grid"
	"github.com/KaramelBytes/kpilens/internal/logging"
	"github.com/KaramelBytes/kpilens/internal/records"
)

// Name identifies a logical dataset.
type Name string

const (
	Consolidated  Name = "consolidated"
	YearlySummary Name = "yearlySummary"
)

// Names lists the logical datasets in display order.
var Names = []Name{Consolidated, YearlySummary}

// ParseName accepts the canonical names and the CLI/URL aliases.
func ParseName(s string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "consolidated", "統合データ":
		return Consolidated, nil
	case "yearlysummary", "yearly", "yearly-summary", "yearly_summary", "年度集計":
		return YearlySummary, nil
	}
	return "", fmt.Errorf("unknown dataset %q (use consolidated or yearly)", s)
}

// Sheets maps each logical dataset to its sheet name in the store.
type Sheets map[Name]string

// Accessor reads a logical dataset fresh from the store on every call.
type Accessor struct {
	secrets config.Secrets
	store   grid.Store
	sheets  Sheets
	logger  *zap.Logger
}

// NewAccessor wires an accessor. store defaults to grid.Default().
func NewAccessor(secrets config.Secrets, store grid.Store, sheets Sheets, logger *zap.Logger) *Accessor {
	if store == nil {
		store = grid.Default()
	}
	return &Accessor{secrets: secrets, store: store, sheets: sheets, logger: logging.OrNop(logger)}
}

// SheetsFromConfig returns the sheet binding configured in c.
func SheetsFromConfig(c *config.Global) Sheets {
	return Sheets{Consolidated: c.ConsolidatedSheet, YearlySummary: c.YearlySheet}
}

// Fetch reads and normalizes the dataset. Errors are logged and returned as is.
func (a *Accessor) Fetch(ctx context.Context, name Name) (records.Dataset, error) {
	sheet, ok := a.sheets[name]
	if !ok || sheet == "" {
		err := fmt.Errorf("dataset %q has no sheet configured", name)
		a.logger.Error("fetch dataset failed", zap.String("dataset", string(name)), zap.Error(err))
		return nil, err
	}
	log := a.logger.With(zap.String("dataset", string(name)), zap.String("sheet", sheet))

	storeID, err := config.Require(a.secrets, config.KeyStoreID)
	if err != nil {
		log.Error("fetch dataset failed", zap.Error(err))
		return nil, err
	}
	g, err := grid.ReadNamed(ctx, a.store, storeID, sheet)
	if err != nil {
		log.Error("fetch dataset failed", zap.Error(err))
		return nil, err
	}
	ds := records.Normalize(g)
	log.Debug("dataset fetched", zap.Int("rows", len(ds)))
	return ds, nil
}

// FetchConsolidated reads the consolidated dataset.
func (a *Accessor) FetchConsolidated(ctx context.Context) (records.Dataset, error) {
	return a.Fetch(ctx, Consolidated)
}

// FetchYearlySummary reads the yearly summary dataset.
func (a *Accessor) FetchYearlySummary(ctx context.Context) (records.Dataset, error) {
	return a.Fetch(ctx, YearlySummary)
}

// FetchAll reads the named datasets concurrently. It returns every dataset
// or the first error, never a partial result.
func (a *Accessor) FetchAll(ctx context.Context, names ...Name) (map[Name]records.Dataset, error) {
	if len(names) == 0 {
		names = Names
	}
	results := make([]records.Dataset, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range names {
		i, n := i, n
		g.Go(func() error {
			ds, err := a.Fetch(gctx, n)
			if err != nil {
				return err
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[Name]records.Dataset, len(names))
	for i, n := range names {
		out[n] = results[i]
	}
	return out, nil
}
