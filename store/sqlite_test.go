package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pixelsheets/gridsync/grid"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cells.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.WriteCell(ctx, 1, 2, 1, DataForValue("Expenses"))
	require.NoError(t, err)
	cell, err := s.WriteCell(ctx, 1, 1, 2, DataForValue("50000"))
	require.NoError(t, err)
	require.Equal(t, grid.Cell{Row: 1, Column: 2, Value: "50000", DataType: grid.TypeNumber}, cell)

	cells, err := s.ReadCells(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []grid.Cell{
		{Row: 1, Column: 2, Value: "50000", DataType: grid.TypeNumber},
		{Row: 2, Column: 1, Value: "Expenses", DataType: grid.TypeText},
	}, cells)

	// Sheets are isolated.
	cells, err = s.ReadCells(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, cells)
}

func TestSQLiteStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.WriteCell(ctx, 1, 1, 1, DataForValue("old"))
	require.NoError(t, err)
	cell, err := s.WriteCell(ctx, 1, 1, 1, DataForValue("=A2*2"))
	require.NoError(t, err)
	require.Equal(t, "=A2*2", cell.Formula)
	require.Equal(t, grid.TypeFormula, cell.DataType)

	cells, err := s.ReadCells(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	require.Equal(t, "=A2*2", cells[0].Value)
}

func TestSQLiteStore_FormattingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.WriteCell(ctx, 1, 1, 1, CellData{
		Value:      "styled",
		Formatting: map[string]string{"bold": "true", "color": "#ff0000"},
	})
	require.NoError(t, err)

	// A write without formatting keeps the stored formatting.
	cell, err := s.WriteCell(ctx, 1, 1, 1, DataForValue("restyled"))
	require.NoError(t, err)
	require.Equal(t, map[string]string{"bold": "true", "color": "#ff0000"}, cell.Formatting)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cells.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = s.WriteCell(ctx, 1, 1, 1, DataForValue("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	cells, err := s.ReadCells(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	require.Equal(t, "persisted", cells[0].Value)
}
