package editor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/pixelsheets/gridsync/grid"
)

type memClipboard struct {
	s string
}

func (c *memClipboard) ReadText() (string, error) { return c.s, nil }
func (c *memClipboard) WriteText(s string) error  { c.s = s; return nil }

func TestClipboard_CopyPasteSameAnchorIsIdempotent(t *testing.T) {
	m, g := newTestModel(t)
	g.SetCell(1, 1, "a")
	g.SetCell(1, 2, "b")
	g.SetCell(2, 1, "=A1")
	g.DrainPending()

	g.SetSelection(grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 2, Col: 2}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	// The empty corner is captured too.
	if got := len(m.clip.entries); got != 4 {
		t.Fatalf("captured %d entries, want 4", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

	want := map[grid.Ref]string{
		{Row: 1, Col: 1}: "a",
		{Row: 1, Col: 2}: "b",
		{Row: 2, Col: 1}: "=A1",
		{Row: 2, Col: 2}: "",
	}
	for ref, wantVal := range want {
		if c, _ := g.Cell(ref.Row, ref.Col); c.Value != wantVal {
			t.Fatalf("cell %v after paste: got %q, want %q", ref, c.Value, wantVal)
		}
	}

	// Formula identity survives the round trip.
	c, _ := g.Cell(2, 1)
	if c.DataType != grid.TypeFormula || c.Formula != "=A1" {
		t.Fatalf("formula cell after paste: %+v", c)
	}
}

func TestClipboard_CutPasteMoves(t *testing.T) {
	m, g := newTestModel(t)
	g.SetCell(1, 1, "1")
	g.SetCell(1, 2, "2")
	g.DrainPending()

	g.SetSelection(grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 1, Col: 2}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})

	for col := 1; col <= 2; col++ {
		if c, _ := g.Cell(1, col); c.Value != "" {
			t.Fatalf("cut should clear source col %d, got %q", col, c.Value)
		}
	}

	g.ClearSelection()
	g.SetActive(grid.Ref{Row: 5, Col: 3})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

	if c, _ := g.Cell(5, 3); c.Value != "1" {
		t.Fatalf("pasted cell C5: got %q, want 1", c.Value)
	}
	if c, _ := g.Cell(5, 4); c.Value != "2" {
		t.Fatalf("pasted cell D5: got %q, want 2", c.Value)
	}
}

func TestClipboard_PasteClipsAtSheetEdge(t *testing.T) {
	var updates []grid.Update
	m, g := newTestModelWith(t, Config{OnCellUpdate: func(u grid.Update) { updates = append(updates, u) }})

	for row := 1; row <= 3; row++ {
		for col := 1; col <= 3; col++ {
			g.SetCell(row, col, "r"+string(rune('0'+row))+"c"+string(rune('0'+col)))
		}
	}
	g.DrainPending()

	g.SetSelection(grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 3, Col: 3}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	b := g.Bounds()
	g.ClearSelection()
	g.SetActive(grid.Ref{Row: b.Rows - 1, Col: b.Cols - 1})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

	// A 3x3 block anchored one cell from the corner: 2x2 lands, the rest
	// falls off the sheet.
	if len(updates) != 4 {
		t.Fatalf("paste wrote %d cells, want 4", len(updates))
	}
	if c, _ := g.Cell(b.Rows-1, b.Cols-1); c.Value != "r1c1" {
		t.Fatalf("top-left of pasted block: got %q, want r1c1", c.Value)
	}
	if c, _ := g.Cell(b.Rows, b.Cols); c.Value != "r2c2" {
		t.Fatalf("bottom-right in-bounds cell: got %q, want r2c2", c.Value)
	}
}

func TestClipboard_EmptyPasteIsNoOp(t *testing.T) {
	m, g := newTestModel(t)

	before := g.Version()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if got := g.Version(); got != before {
		t.Fatalf("empty paste should not touch the grid: version %d -> %d", before, got)
	}
}

func TestClipboard_CopySingleCellWithoutSelection(t *testing.T) {
	m, g := newTestModel(t)
	g.SetCell(1, 1, "solo")
	g.DrainPending()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if got := len(m.clip.entries); got != 1 {
		t.Fatalf("captured %d entries, want 1", got)
	}

	g.SetActive(grid.Ref{Row: 3, Col: 3})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if c, _ := g.Cell(3, 3); c.Value != "solo" {
		t.Fatalf("pasted cell: got %q, want solo", c.Value)
	}
}

func TestClipboard_MirrorsTSV(t *testing.T) {
	cb := &memClipboard{}
	m, g := newTestModelWith(t, Config{Clipboard: cb})
	g.SetCell(1, 1, "a")
	g.SetCell(1, 2, "b")
	g.SetCell(2, 1, "c")
	g.DrainPending()

	g.SetSelection(grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 2, Col: 2}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if want := "a\tb\nc\t"; cb.s != want {
		t.Fatalf("mirrored text %q, want %q", cb.s, want)
	}
}

func TestClipboard_SelectAllCopiesWholeSheet(t *testing.T) {
	g := grid.New(grid.Options{
		Bounds: grid.Bounds{Rows: 3, Cols: 3},
		Clock:  clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000)),
	})
	m := New(g, Config{}).SetSize(85, 12)
	g.SetCell(2, 2, "mid")
	g.DrainPending()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	r, ok := g.Selection()
	if !ok {
		t.Fatalf("expected full-sheet selection")
	}
	if want := (grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 3, Col: 3}}); r != want {
		t.Fatalf("selection=%v, want %v", r, want)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if got := len(m.clip.entries); got != 9 {
		t.Fatalf("captured %d entries, want 9", got)
	}
}
