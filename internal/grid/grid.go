// Package grid reads named sheets from spreadsheet-like stores as raw grids of
// display-formatted text. A store is addressed by an identifier (STORE_ID)
// whose form selects the backend: an .xlsx workbook path, a directory of CSV
// files, or an in-memory store.
package grid

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RawGrid is row-major display text; row 0 is the header row.
type RawGrid [][]string

// Sheet is one named grid inside a store.
type Sheet interface {
	DisplayValues() (RawGrid, error)
}

// Workbook is an opened store.
type Workbook interface {
	// Grid returns the sheet with the exact given name.
	Grid(name string) (Sheet, bool)
	// Names lists sheet names in store order.
	Names() []string
	Close() error
}

// Backend opens stores of one kind.
type Backend interface {
	CanOpen(id string) bool
	Open(ctx context.Context, id string) (Workbook, error)
}

// Store opens a workbook by identifier.
type Store interface {
	Open(ctx context.Context, id string) (Workbook, error)
}

// ErrUnsupported indicates no backend recognizes the store identifier.
var ErrUnsupported = errors.New("unsupported store identifier")

// NotFoundError reports a named grid that does not exist in the store.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("sheet %q not found", e.Name)
	}
	return fmt.Sprintf("sheet %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Registry selects a backend by asking each, in registration order,
// whether it can open the identifier.
type Registry struct {
	backends []Backend
}

// NewRegistry returns a registry holding the given backends.
func NewRegistry(backends ...Backend) *Registry {
	return &Registry{backends: backends}
}

// Register adds a backend implementation to the registry.
func (r *Registry) Register(b Backend) {
	r.backends = append(r.backends, b)
}

// Open implements Store.
func (r *Registry) Open(ctx context.Context, id string) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, b := range r.backends {
		if b.CanOpen(id) {
			return b.Open(ctx, id)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, id)
}

var defaultRegistry = NewRegistry(ExcelBackend{}, CSVDirBackend{})

// Default returns the registry with the built-in file backends.
func Default() *Registry { return defaultRegistry }

// Register adds a backend to the default registry.
func Register(b Backend) { defaultRegistry.Register(b) }

// ReadNamed opens id, locates name and reads its display values.
func ReadNamed(ctx context.Context, s Store, id, name string) (RawGrid, error) {
	wb, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	sh, ok := wb.Grid(name)
	if !ok {
		return nil, &NotFoundError{Name: name, Available: wb.Names()}
	}
	return sh.DisplayValues()
}

// Width returns the widest row length in g.
func (g RawGrid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Rectangular returns g with every row padded with "" to the widest row.
func (g RawGrid) Rectangular() RawGrid {
	w := g.Width()
	out := make(RawGrid, len(g))
	for i, row := range g {
		if len(row) < w {
			tmp := make([]string, w)
			copy(tmp, row)
			row = tmp
		}
		out[i] = row
	}
	return out
}
