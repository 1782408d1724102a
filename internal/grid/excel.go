package grid

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelBackend opens .xlsx workbooks from disk. Cell values are read with
// their number formats applied, the same text a spreadsheet shows.
type ExcelBackend struct{}

func (ExcelBackend) CanOpen(id string) bool {
	switch strings.ToLower(filepath.Ext(id)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

func (ExcelBackend) Open(ctx context.Context, id string) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(id)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &excelWorkbook{f: f}, nil
}

type excelWorkbook struct {
	f *excelize.File
}

func (w *excelWorkbook) Grid(name string) (Sheet, bool) {
	for _, s := range w.f.GetSheetList() {
		if s == name {
			return excelSheet{f: w.f, name: s}, true
		}
	}
	return nil, false
}

func (w *excelWorkbook) Names() []string { return w.f.GetSheetList() }

func (w *excelWorkbook) Close() error { return w.f.Close() }

type excelSheet struct {
	f    *excelize.File
	name string
}

// DisplayValues returns the sheet's used range. excelize trims trailing
// empty cells per row; rows are padded back so the grid is rectangular.
func (s excelSheet) DisplayValues() (RawGrid, error) {
	rows, err := s.f.GetRows(s.name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.name, err)
	}
	return RawGrid(rows).Rectangular(), nil
}
