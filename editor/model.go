package editor

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/pixelsheets/gridsync/grid"
)

// Model is a Bubble Tea component that renders and interacts with a Grid.
//
// The Grid is shared with the collaboration layer; the model never holds
// cell state of its own beyond the in-progress edit buffer.
type Model struct {
	cfg  Config
	grid *grid.Grid

	mode  Mode
	input textinput.Model

	focused bool

	width  int
	height int
	rowOff int
	colOff int

	dragging   bool
	dragAnchor grid.Ref

	lastClick     grid.Ref
	lastClickTime time.Time

	clip  clipBuffer
	clock clockwork.Clock

	remote []RemoteCursor
}

func New(g *grid.Grid, cfg Config) Model {
	if !cfg.KeyMap.Up.Enabled() {
		cfg.KeyMap = DefaultKeyMap()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Width = cellWidth - 1

	return Model{
		cfg:     cfg,
		grid:    g,
		mode:    ModeNavigate,
		input:   ti,
		focused: true,
		rowOff:  1,
		colOff:  1,
		clock:   cfg.Clock,
	}
}

func (m Model) Grid() *grid.Grid { return m.grid }

func (m Model) Mode() Mode { return m.mode }

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.width = width
	m.height = height
	m.follow()
	return m
}

func (m Model) Focus() Model {
	m.focused = true
	return m
}

// Blur drops focus. An in-progress edit is committed first, so focus changes
// never lose typed text.
func (m Model) Blur() Model {
	if m.mode == ModeEdit {
		m.commitEdit()
	}
	m.focused = false
	return m
}

func (m Model) Focused() bool { return m.focused }

// SetRemoteCursors replaces the collaborator cursor overlay.
func (m Model) SetRemoteCursors(cursors []RemoteCursor) Model {
	m.remote = append([]RemoteCursor(nil), cursors...)
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

// beginEdit enters edit mode seeding the buffer with the cell's raw value.
func (m *Model) beginEdit() tea.Cmd {
	a := m.grid.Active()
	seed := ""
	if c, ok := m.grid.Cell(a.Row, a.Col); ok {
		seed = c.Value
	}
	return m.beginEditWith(seed)
}

func (m *Model) beginEditWith(seed string) tea.Cmd {
	m.mode = ModeEdit
	m.grid.ClearSelection()
	m.input.SetValue(seed)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	m.notifyCursor()
	return cmd
}

// commitEdit flushes the buffer into the grid. Leaving edit mode always
// writes, even when the text is unchanged.
func (m *Model) commitEdit() {
	a := m.grid.Active()
	_, _ = m.grid.SetCell(a.Row, a.Col, m.input.Value())
	m.exitEdit()
	m.emitPending()
}

// cancelEdit discards the buffer without writing.
func (m *Model) cancelEdit() {
	m.exitEdit()
}

func (m *Model) exitEdit() {
	m.mode = ModeNavigate
	m.input.Blur()
	m.input.SetValue("")
	m.notifyCursor()
}

// moveActive moves the active cell by (dr, dc), clamped at bounds, and
// clears any range selection.
func (m *Model) moveActive(dr, dc int) {
	a := m.grid.Active()
	m.grid.ClearSelection()
	m.setActiveNotify(grid.Ref{Row: a.Row + dr, Col: a.Col + dc})
}

// extendSelection grows the range selection by (dr, dc) from the current
// anchor, the active cell tracking the moving edge.
func (m *Model) extendSelection(dr, dc int) {
	prev := m.grid.Active()
	anchor, end := prev, prev
	if raw, ok := m.grid.SelectionRaw(); ok {
		anchor, end = raw.Start, raw.End
	}
	end = grid.ClampRef(grid.Ref{Row: end.Row + dr, Col: end.Col + dc}, m.grid.Bounds())
	m.grid.SetSelection(grid.Range{Start: anchor, End: end})
	m.setActiveNotify(end)
}

func (m *Model) setActiveNotify(ref grid.Ref) {
	prev := m.grid.Active()
	m.grid.SetActive(ref)
	m.follow()
	if m.grid.Active() != prev {
		m.notifyCursor()
	}
}

// clearTargets blanks the active cell, or every cell of the range selection
// when one is active.
func (m *Model) clearTargets() {
	if r, ok := m.grid.Selection(); ok {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				_, _ = m.grid.SetCell(row, col, "")
			}
		}
	} else {
		a := m.grid.Active()
		_, _ = m.grid.SetCell(a.Row, a.Col, "")
	}
	m.emitPending()
}

// copyRange captures the selection (or the active cell) into the clipboard
// and mirrors it as TSV to the host clipboard when one is configured.
// Returns the count captured.
func (m *Model) copyRange() int {
	n := m.clip.capture(m.grid, m.selectionOrActive())
	if m.cfg.Clipboard != nil && n > 0 {
		_ = m.cfg.Clipboard.WriteText(m.clip.tsv())
	}
	return n
}

// cutRange copies, then clears every captured cell.
func (m *Model) cutRange() {
	r := grid.NormalizeRange(m.selectionOrActive())
	m.copyRange()
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			_, _ = m.grid.SetCell(row, col, "")
		}
	}
	m.emitPending()
}

// pasteAt rebases the clipboard at the active cell. An empty clipboard is a
// no-op.
func (m *Model) pasteAt() {
	if m.clip.empty() {
		return
	}
	m.clip.paste(m.grid, m.grid.Active())
	m.emitPending()
}

func (m *Model) selectionOrActive() grid.Range {
	if r, ok := m.grid.Selection(); ok {
		return r
	}
	a := m.grid.Active()
	return grid.Range{Start: a, End: a}
}

// emitPending drains queued local writes to the host, in write order. The
// queue is drained either way so unplugged hosts don't accumulate stale
// writes.
func (m *Model) emitPending() {
	updates := m.grid.DrainPending()
	if m.cfg.OnCellUpdate == nil {
		return
	}
	for _, u := range updates {
		m.cfg.OnCellUpdate(u)
	}
}

func (m *Model) notifyCursor() {
	if m.cfg.OnCursorMove == nil {
		return
	}
	a := m.grid.Active()
	m.cfg.OnCursorMove(a.Row, a.Col, m.mode == ModeEdit)
}

// follow scrolls the window so the active cell stays visible.
func (m *Model) follow() {
	rows, cols := m.visibleCells()
	if rows <= 0 || cols <= 0 {
		return
	}
	a := m.grid.Active()
	if a.Row < m.rowOff {
		m.rowOff = a.Row
	}
	if a.Row >= m.rowOff+rows {
		m.rowOff = a.Row - rows + 1
	}
	if a.Col < m.colOff {
		m.colOff = a.Col
	}
	if a.Col >= m.colOff+cols {
		m.colOff = a.Col - cols + 1
	}
}

func (m *Model) visibleCells() (rows, cols int) {
	rows = m.height - headerRows - statusRows
	if rows < 0 {
		rows = 0
	}
	cols = (m.width - gutterWidth) / cellWidth
	if cols < 0 {
		cols = 0
	}
	return rows, cols
}
