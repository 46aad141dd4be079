// Package store persists sheet cells behind one interface, with REST,
// SQLite-backed and in-memory implementations.
package store

import (
	"context"
	"errors"

	"github.com/pixelsheets/gridsync/grid"
)

// Failure modes of the upstream cell API.
var (
	ErrPermissionDenied = errors.New("store: permission denied")
	ErrNotFound         = errors.New("store: not found")
	ErrConflict         = errors.New("store: conflict")
)

// CellData is the writable portion of a cell record.
type CellData struct {
	Value      string            `json:"value"`
	Formula    string            `json:"formula,omitempty"`
	DataType   grid.DataType     `json:"data_type"`
	Formatting map[string]string `json:"formatting,omitempty"`
}

// DataForValue builds CellData from raw text, inferring the data type.
func DataForValue(value string) CellData {
	dt, formula := grid.Infer(value)
	return CellData{Value: value, Formula: formula, DataType: dt}
}

// Store reads and writes the cells of one sheet at a time.
type Store interface {
	// WriteCell upserts the cell at (row, col) and returns the stored record.
	WriteCell(ctx context.Context, sheetID, row, col int, data CellData) (grid.Cell, error)
	// ReadCells returns every stored cell of the sheet in row-major order.
	ReadCells(ctx context.Context, sheetID int) ([]grid.Cell, error)
}
