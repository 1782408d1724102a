package grid

import (
	"context"
	"strings"
	"sync"
)

// MemoryPrefix marks store identifiers served by a Memory backend.
const MemoryPrefix = "mem:"

// Memory is an in-memory backend: stores are named "mem:<name>" and hold
// sheets keyed by name. Grids are copied on read.
type Memory struct {
	mu     sync.RWMutex
	stores map[string]*memStore
	opens  int
}

type memStore struct {
	order  []string
	sheets map[string]RawGrid
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{stores: make(map[string]*memStore)}
}

// Put stores g as sheet name inside store id ("mem:" prefix optional).
func (m *Memory) Put(id, name string, g RawGrid) {
	id = strings.TrimPrefix(id, MemoryPrefix)
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[id]
	if !ok {
		st = &memStore{sheets: make(map[string]RawGrid)}
		m.stores[id] = st
	}
	if _, exists := st.sheets[name]; !exists {
		st.order = append(st.order, name)
	}
	st.sheets[name] = copyGrid(g)
}

// Opens reports how many times a store was opened.
func (m *Memory) Opens() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opens
}

func (m *Memory) CanOpen(id string) bool { return strings.HasPrefix(id, MemoryPrefix) }

func (m *Memory) Open(ctx context.Context, id string) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	st, ok := m.stores[strings.TrimPrefix(id, MemoryPrefix)]
	if !ok {
		// an unknown in-memory store behaves like an empty workbook
		return memWorkbook{st: &memStore{sheets: map[string]RawGrid{}}}, nil
	}
	snap := &memStore{order: append([]string(nil), st.order...), sheets: make(map[string]RawGrid, len(st.sheets))}
	for k, v := range st.sheets {
		snap.sheets[k] = v
	}
	return memWorkbook{st: snap}, nil
}

type memWorkbook struct {
	st *memStore
}

func (w memWorkbook) Grid(name string) (Sheet, bool) {
	g, ok := w.st.sheets[name]
	if !ok {
		return nil, false
	}
	return memSheet{g: g}, true
}

func (w memWorkbook) Names() []string { return append([]string(nil), w.st.order...) }

func (w memWorkbook) Close() error { return nil }

type memSheet struct {
	g RawGrid
}

func (s memSheet) DisplayValues() (RawGrid, error) { return copyGrid(s.g), nil }

func copyGrid(g RawGrid) RawGrid {
	if g == nil {
		return nil
	}
	out := make(RawGrid, len(g))
	for i, row := range g {
		out[i] = append([]string(nil), row...)
	}
	return out
}
