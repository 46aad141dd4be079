package editor

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pixelsheets/gridsync/grid"
)

func TestCellAt_Geometry(t *testing.T) {
	m, _ := newTestModel(t)

	if got, ok := m.cellAt(gutterWidth, headerRows); !ok || got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("first cell: got %v ok=%v, want {1 1}", got, ok)
	}

	// The separator column still belongs to the cell left of it.
	if got, ok := m.cellAt(gutterWidth+cellWidth-1, headerRows); !ok || got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("separator column: got %v ok=%v, want {1 1}", got, ok)
	}
	if got, ok := m.cellAt(gutterWidth+cellWidth, headerRows); !ok || got != (grid.Ref{Row: 1, Col: 2}) {
		t.Fatalf("second column: got %v ok=%v, want {1 2}", got, ok)
	}

	if got, ok := m.cellAt(gutterWidth, headerRows+3); !ok || got != (grid.Ref{Row: 4, Col: 1}) {
		t.Fatalf("fourth row: got %v ok=%v, want {4 1}", got, ok)
	}

	if _, ok := m.cellAt(gutterWidth, 0); ok {
		t.Fatalf("header row should miss")
	}
	if _, ok := m.cellAt(gutterWidth-1, headerRows); ok {
		t.Fatalf("row-number gutter should miss")
	}

	// SetSize(85, 12) shows 10 rows and 8 columns.
	if _, ok := m.cellAt(gutterWidth, headerRows+10); ok {
		t.Fatalf("below the window should miss")
	}
	if _, ok := m.cellAt(gutterWidth+8*cellWidth, headerRows); ok {
		t.Fatalf("right of the window should miss")
	}
}

func TestCellAt_ScrolledWindow(t *testing.T) {
	m, _ := newTestModel(t)
	m.rowOff = 40
	m.colOff = 3

	if got, ok := m.cellAt(gutterWidth+cellWidth, headerRows+2); !ok || got != (grid.Ref{Row: 42, Col: 4}) {
		t.Fatalf("scrolled hit: got %v ok=%v, want {42 4}", got, ok)
	}
}

func TestCellAt_ClipsToSheetBounds(t *testing.T) {
	g := grid.New(grid.Options{
		Bounds: grid.Bounds{Rows: 3, Cols: 3},
		Clock:  clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000)),
	})
	m := New(g, Config{}).SetSize(85, 12)

	// Window space past the sheet's last row misses even though it is
	// inside the component.
	if _, ok := m.cellAt(gutterWidth, headerRows+3); ok {
		t.Fatalf("click past the sheet edge should miss")
	}
	if got, ok := m.cellAt(gutterWidth, headerRows+2); !ok || got != (grid.Ref{Row: 3, Col: 1}) {
		t.Fatalf("last sheet row: got %v ok=%v, want {3 1}", got, ok)
	}
}
