package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pixelsheets/gridsync/grid"
)

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cells (
	sheet_id   INTEGER NOT NULL,
	"row"      INTEGER NOT NULL,
	col        INTEGER NOT NULL,
	value      TEXT NOT NULL DEFAULT '',
	formula    TEXT,
	data_type  TEXT NOT NULL DEFAULT 'text',
	formatting TEXT,
	updated_at INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (sheet_id, "row", col)
)`

// SQLiteStore persists cells in a single local database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the database at path, creating the file and schema as
// needed. Use ":memory:" for a throwaway store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) WriteCell(ctx context.Context, sheetID, row, col int, data CellData) (grid.Cell, error) {
	if data.DataType == "" {
		data.DataType, data.Formula = grid.Infer(data.Value)
	}
	var formula any
	if data.Formula != "" {
		formula = data.Formula
	}
	var formatting any
	if data.Formatting != nil {
		b, err := json.Marshal(data.Formatting)
		if err != nil {
			return grid.Cell{}, fmt.Errorf("marshaling formatting: %w", err)
		}
		formatting = string(b)
	}

	// A NULL incoming formatting keeps whatever the cell already has.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cells (sheet_id, "row", col, value, formula, data_type, formatting, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sheet_id, "row", col) DO UPDATE SET
			value      = excluded.value,
			formula    = excluded.formula,
			data_type  = excluded.data_type,
			formatting = COALESCE(excluded.formatting, cells.formatting),
			updated_at = excluded.updated_at`,
		sheetID, row, col, data.Value, formula, data.DataType, formatting, time.Now().UnixMilli(),
	)
	if err != nil {
		return grid.Cell{}, fmt.Errorf("upserting cell (%d,%d): %w", row, col, err)
	}
	return s.readCell(ctx, sheetID, row, col)
}

func (s *SQLiteStore) ReadCells(ctx context.Context, sheetID int) ([]grid.Cell, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT "row", col, value, formula, data_type, formatting
		FROM cells WHERE sheet_id = ? ORDER BY "row", col`,
		sheetID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sheet %d: %w", sheetID, err)
	}
	defer rows.Close()

	var cells []grid.Cell
	for rows.Next() {
		cell, err := scanCell(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cell: %w", err)
		}
		cells = append(cells, cell)
	}
	return cells, rows.Err()
}

func (s *SQLiteStore) readCell(ctx context.Context, sheetID, row, col int) (grid.Cell, error) {
	r := s.db.QueryRowContext(ctx, `
		SELECT "row", col, value, formula, data_type, formatting
		FROM cells WHERE sheet_id = ? AND "row" = ? AND col = ?`,
		sheetID, row, col,
	)
	cell, err := scanCell(r)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.Cell{}, ErrNotFound
	}
	if err != nil {
		return grid.Cell{}, fmt.Errorf("reading cell (%d,%d): %w", row, col, err)
	}
	return cell, nil
}

func scanCell(sc interface{ Scan(dest ...any) error }) (grid.Cell, error) {
	var (
		cell       grid.Cell
		formula    sql.NullString
		dataType   string
		formatting sql.NullString
	)
	if err := sc.Scan(&cell.Row, &cell.Column, &cell.Value, &formula, &dataType, &formatting); err != nil {
		return grid.Cell{}, err
	}
	cell.Formula = formula.String
	cell.DataType = grid.DataType(dataType)
	if formatting.Valid && formatting.String != "" {
		if err := json.Unmarshal([]byte(formatting.String), &cell.Formatting); err != nil {
			return grid.Cell{}, fmt.Errorf("decoding formatting: %w", err)
		}
	}
	return cell, nil
}
