package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pixelsheets/gridsync/grid"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps cells in memory. It backs offline sessions and tests.
type MemStore struct {
	mu     sync.Mutex
	sheets map[int]map[grid.Ref]grid.Cell
}

func NewMem() *MemStore {
	return &MemStore{sheets: make(map[int]map[grid.Ref]grid.Cell)}
}

// NewMemWithDemo returns a store seeded with the demo block on sheet 1:
// Revenue/Expenses rows and a Profit row computed by formulas.
func NewMemWithDemo() *MemStore {
	s := NewMem()
	seed := []struct {
		row, col int
		value    string
	}{
		{1, 1, "Revenue"},
		{1, 2, "50000"},
		{1, 3, "55000"},
		{2, 1, "Expenses"},
		{2, 2, "35000"},
		{2, 3, "38000"},
		{3, 1, "Profit"},
		{3, 2, "=B1-B2"},
		{3, 3, "=C1-C2"},
	}
	for _, c := range seed {
		_, _ = s.WriteCell(context.Background(), 1, c.row, c.col, DataForValue(c.value))
	}
	return s
}

func (s *MemStore) WriteCell(_ context.Context, sheetID, row, col int, data CellData) (grid.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cells, ok := s.sheets[sheetID]
	if !ok {
		cells = make(map[grid.Ref]grid.Cell)
		s.sheets[sheetID] = cells
	}

	if data.DataType == "" {
		data.DataType, data.Formula = grid.Infer(data.Value)
	}
	cell := grid.Cell{
		Row:        row,
		Column:     col,
		Value:      data.Value,
		Formula:    data.Formula,
		DataType:   data.DataType,
		Formatting: data.Formatting,
	}
	if prev, ok := cells[grid.Ref{Row: row, Col: col}]; ok && cell.Formatting == nil {
		cell.Formatting = prev.Formatting
	}
	cells[grid.Ref{Row: row, Col: col}] = cell
	return cell, nil
}

func (s *MemStore) ReadCells(_ context.Context, sheetID int) ([]grid.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]grid.Cell, 0, len(s.sheets[sheetID]))
	for _, c := range s.sheets[sheetID] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a := grid.Ref{Row: out[i].Row, Col: out[i].Column}
		b := grid.Ref{Row: out[j].Row, Col: out[j].Column}
		return grid.CompareRef(a, b) < 0
	})
	return out, nil
}
