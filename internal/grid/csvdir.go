package grid

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CSVDirBackend treats a directory as a store whose sheets are <name>.csv files.
type CSVDirBackend struct{}

func (CSVDirBackend) CanOpen(id string) bool {
	info, err := os.Stat(id)
	return err == nil && info.IsDir()
}

func (CSVDirBackend) Open(ctx context.Context, id string) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(id)
	if err != nil {
		return nil, fmt.Errorf("open csv store: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return &csvWorkbook{dir: id, names: names}, nil
}

type csvWorkbook struct {
	dir   string
	names []string
}

func (w *csvWorkbook) Grid(name string) (Sheet, bool) {
	for _, n := range w.names {
		if n == name {
			return csvSheet{path: filepath.Join(w.dir, name+".csv")}, true
		}
	}
	return nil, false
}

func (w *csvWorkbook) Names() []string { return w.names }

func (w *csvWorkbook) Close() error { return nil }

type csvSheet struct {
	path string
}

func (s csvSheet) DisplayValues() (RawGrid, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", filepath.Base(s.path), err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return RawGrid(rows), nil
}
