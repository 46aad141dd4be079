package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pixelsheets/gridsync/grid"
)

func TestNavigate_ArrowsClampAtEdges(t *testing.T) {
	m, g := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("active after edge moves: got %v, want A1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := g.Active(); got != (grid.Ref{Row: 2, Col: 2}) {
		t.Fatalf("active after right+down: got %v, want B2", got)
	}

	b := g.Bounds()
	g.SetActive(grid.Ref{Row: b.Rows, Col: b.Cols})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := g.Active(); got != (grid.Ref{Row: b.Rows, Col: b.Cols}) {
		t.Fatalf("far corner should clamp: got %v", got)
	}
}

func TestNavigate_TabEnterMove(t *testing.T) {
	m, g := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 2}) {
		t.Fatalf("tab: got %v, want B1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("shift+tab should clamp at column A: got %v", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := g.Active(); got != (grid.Ref{Row: 2, Col: 1}) {
		t.Fatalf("enter: got %v, want A2", got)
	}

	// Tab clamps at the last column instead of wrapping to the next row.
	last := g.Bounds().Cols
	g.SetActive(grid.Ref{Row: 2, Col: last})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := g.Active(); got != (grid.Ref{Row: 2, Col: last}) {
		t.Fatalf("tab at last column should clamp: got %v", got)
	}
}

func TestNavigate_TypingStartsFreshEdit(t *testing.T) {
	m, g := newTestModel(t)
	g.SetCell(1, 1, "old")
	g.DrainPending()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	if m.Mode() != ModeEdit {
		t.Fatalf("typing should enter edit mode")
	}
	if got := m.input.Value(); got != "9" {
		t.Fatalf("buffer after first rune: got %q, want %q", got, "9")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if c, _ := g.Cell(1, 1); c.Value != "99" {
		t.Fatalf("cell after commit: got %q, want %q", c.Value, "99")
	}
	if m.Mode() != ModeNavigate {
		t.Fatalf("enter should return to navigate")
	}
	if got := g.Active(); got != (grid.Ref{Row: 2, Col: 1}) {
		t.Fatalf("enter commits and moves down: got %v", got)
	}
}

func TestEdit_F2SeedsAndEscapeDiscards(t *testing.T) {
	m, g := newTestModel(t)
	g.SetCell(1, 1, "keep")
	g.DrainPending()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyF2})
	if m.Mode() != ModeEdit {
		t.Fatalf("f2 should enter edit mode")
	}
	if got := m.input.Value(); got != "keep" {
		t.Fatalf("buffer seeded with cell value: got %q", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("X")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.Mode() != ModeNavigate {
		t.Fatalf("esc should return to navigate")
	}
	if c, _ := g.Cell(1, 1); c.Value != "keep" {
		t.Fatalf("cell after cancel: got %q, want %q", c.Value, "keep")
	}
	if got := len(g.DrainPending()); got != 0 {
		t.Fatalf("cancel queued %d updates, want 0", got)
	}
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("esc should not move the active cell: got %v", got)
	}
}

func TestEdit_CommitAlwaysWrites(t *testing.T) {
	var updates []grid.Update
	m, g := newTestModelWith(t, Config{OnCellUpdate: func(u grid.Update) { updates = append(updates, u) }})
	g.SetCell(1, 1, "same")
	g.DrainPending()

	// F2 then immediate enter: the text is unchanged but still written.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if len(updates) != 1 {
		t.Fatalf("emitted %d updates, want 1", len(updates))
	}
	if u := updates[0]; u.Row != 1 || u.Column != 1 || u.Value != "same" {
		t.Fatalf("update=%+v, want row 1 col 1 value %q", u, "same")
	}
}

func TestEdit_TabCommitsAndMoves(t *testing.T) {
	m, g := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	if c, _ := g.Cell(1, 1); c.Value != "a" {
		t.Fatalf("tab should commit: got %q", c.Value)
	}
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 2}) {
		t.Fatalf("tab should move right: got %v", got)
	}
	if m.Mode() != ModeNavigate {
		t.Fatalf("tab should leave edit mode")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})

	if c, _ := g.Cell(1, 2); c.Value != "b" {
		t.Fatalf("shift+tab should commit: got %q", c.Value)
	}
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("shift+tab should move left: got %v", got)
	}
}

func TestNavigate_ShiftArrowsExtendSelection(t *testing.T) {
	m, g := newTestModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftDown})

	r, ok := g.Selection()
	if !ok {
		t.Fatalf("expected a range selection")
	}
	if want := (grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 2, Col: 2}}); r != want {
		t.Fatalf("selection=%v, want %v", r, want)
	}
	if got := g.Active(); got != (grid.Ref{Row: 2, Col: 2}) {
		t.Fatalf("active should track the moving edge: got %v", got)
	}

	// Shrinks back toward the anchor.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftLeft})
	r, _ = g.Selection()
	if want := (grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 2, Col: 1}}); r != want {
		t.Fatalf("selection after shift+left=%v, want %v", r, want)
	}

	// A plain arrow clears the range.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if _, ok := g.Selection(); ok {
		t.Fatalf("plain move should clear the selection")
	}
}

func TestNavigate_DeleteClearsActiveOrRange(t *testing.T) {
	var updates []grid.Update
	m, g := newTestModelWith(t, Config{OnCellUpdate: func(u grid.Update) { updates = append(updates, u) }})
	g.SetCell(1, 1, "x")
	g.SetCell(1, 2, "y")
	g.DrainPending()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDelete})
	if c, _ := g.Cell(1, 1); c.Value != "" {
		t.Fatalf("delete should clear the active cell, got %q", c.Value)
	}
	if c, _ := g.Cell(1, 2); c.Value != "y" {
		t.Fatalf("neighbor should survive, got %q", c.Value)
	}
	if len(updates) != 1 {
		t.Fatalf("emitted %d updates, want 1", len(updates))
	}

	updates = nil
	g.SetCell(1, 1, "x")
	g.DrainPending()
	g.SetSelection(grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 1, Col: 2}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	for col := 1; col <= 2; col++ {
		if c, _ := g.Cell(1, col); c.Value != "" {
			t.Fatalf("range clear left col %d = %q", col, c.Value)
		}
	}
	if len(updates) != 2 {
		t.Fatalf("emitted %d updates, want 2", len(updates))
	}
}

func TestNavigate_EscClearsSelection(t *testing.T) {
	m, g := newTestModel(t)
	g.SetSelection(grid.Range{Start: grid.Ref{Row: 1, Col: 1}, End: grid.Ref{Row: 3, Col: 3}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := g.Selection(); ok {
		t.Fatalf("esc should clear the selection")
	}
	if got := g.Active(); got != (grid.Ref{Row: 1, Col: 1}) {
		t.Fatalf("esc should not move the active cell: got %v", got)
	}
}

type cursorEvent struct {
	row, col int
	editing  bool
}

func TestCursorHook_FiresOnMovesAndModeChanges(t *testing.T) {
	var events []cursorEvent
	m, _ := newTestModelWith(t, Config{OnCursorMove: func(row, col int, editing bool) {
		events = append(events, cursorEvent{row, col, editing})
	}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	// Clamped no-op move: no event.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})

	want := []cursorEvent{
		{1, 2, false},
		{1, 2, true},
		{1, 2, false},
		{1, 1, false},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d cursor events %v, want %d", len(events), events, len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event[%d]=%v, want %v", i, events[i], want[i])
		}
	}
}
