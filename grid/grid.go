package grid

import (
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/pixelsheets/gridsync/internal/refname"
)

// ErrOutOfBounds reports a cell write outside the sheet rectangle. State is
// never mutated when it is returned.
var ErrOutOfBounds = errors.New("grid: cell out of bounds")

type Options struct {
	Bounds       Bounds          // default: DefaultBounds()
	Clock        clockwork.Clock // default: real clock; tests inject a fake
	PendingLimit int             // default: 1024 queued updates, oldest dropped beyond
}

type selectionState struct {
	active bool
	anchor Ref
	end    Ref
}

// Grid is the per-sheet cell store: cells, active cell, selection, and the
// queue of local writes awaiting broadcast.
//
// The input layer and the collaboration layer touch the same Grid from
// different goroutines, so all state sits behind one mutex.
type Grid struct {
	mu sync.Mutex

	bounds  Bounds
	cells   map[int]map[int]Cell
	version uint64

	active Ref
	sel    selectionState

	pending []Update

	clock clockwork.Clock
	limit int
}

func New(opt Options) *Grid {
	if opt.Bounds.Rows <= 0 || opt.Bounds.Cols <= 0 {
		opt.Bounds = DefaultBounds()
	}
	if opt.Clock == nil {
		opt.Clock = clockwork.NewRealClock()
	}
	if opt.PendingLimit <= 0 {
		opt.PendingLimit = 1024
	}
	return &Grid{
		bounds: opt.Bounds,
		cells:  make(map[int]map[int]Cell),
		active: Ref{Row: 1, Col: 1},
		clock:  opt.Clock,
		limit:  opt.PendingLimit,
	}
}

func (g *Grid) Bounds() Bounds {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bounds
}

func (g *Grid) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// Active returns the active (cursor) cell.
func (g *Grid) Active() Ref {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// SetActive moves the active cell, clamped into bounds.
func (g *Grid) SetActive(ref Ref) {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := ClampRef(ref, g.bounds)
	if next == g.active {
		return
	}
	g.active = next
	g.version++
}

// Selection returns the normalized range selection, if one is active.
// A selection covering a single cell is reported as inactive: the active
// cell alone represents it.
func (g *Grid) Selection() (Range, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selectionLocked()
}

func (g *Grid) selectionLocked() (Range, bool) {
	if !g.sel.active {
		return Range{}, false
	}
	r := NormalizeRange(Range{Start: g.sel.anchor, End: g.sel.end})
	if r.IsSingle() {
		return Range{}, false
	}
	return r, true
}

// SelectionRaw returns the raw anchor/end pair without normalization, for
// UI layers that extend a drag from its original corner.
func (g *Grid) SelectionRaw() (Range, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.sel.active || g.sel.anchor == g.sel.end {
		return Range{}, false
	}
	return Range{Start: g.sel.anchor, End: g.sel.end}, true
}

// SetSelection sets the range selection from raw drag corners, clamped into
// bounds. A single-cell range clears the selection instead.
func (g *Grid) SetSelection(r Range) {
	g.mu.Lock()
	defer g.mu.Unlock()

	clamped := ClampRange(r, g.bounds)
	next := selectionState{active: true, anchor: clamped.Start, end: clamped.End}
	if NormalizeRange(Range{Start: next.anchor, End: next.end}).IsSingle() {
		next = selectionState{}
	}

	prevRange, prevOK := g.selectionLocked()
	g.sel = next
	nextRange, nextOK := g.selectionLocked()

	if prevOK != nextOK || (prevOK && prevRange != nextRange) {
		g.version++
	}
}

func (g *Grid) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.sel.active {
		return
	}
	_, wasVisible := g.selectionLocked()
	g.sel = selectionState{}
	if wasVisible {
		g.version++
	}
}

// SelectAll selects the full sheet rectangle.
func (g *Grid) SelectAll() {
	b := g.Bounds()
	g.SetSelection(Range{Start: Ref{Row: 1, Col: 1}, End: Ref{Row: b.Rows, Col: b.Cols}})
}

// UsedExtent returns the bounding rectangle of all stored cells.
func (g *Grid) UsedExtent() (Range, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	found := false
	var ext Range
	for row, cols := range g.cells {
		for col := range cols {
			if !found {
				ext = Range{Start: Ref{Row: row, Col: col}, End: Ref{Row: row, Col: col}}
				found = true
				continue
			}
			if row < ext.Start.Row {
				ext.Start.Row = row
			}
			if row > ext.End.Row {
				ext.End.Row = row
			}
			if col < ext.Start.Col {
				ext.Start.Col = col
			}
			if col > ext.End.Col {
				ext.End.Col = col
			}
		}
	}
	return ext, found
}

// Cell returns the stored cell at (row, col) and whether one exists.
func (g *Grid) Cell(row, col int) (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.cells[row][col]
	return c, ok
}

// SetCell stores raw text at (row, col), re-inferring the data type, and
// queues one Update for the collaboration layer. Existing formatting on the
// cell is preserved. Out-of-bounds targets return ErrOutOfBounds untouched.
func (g *Grid) SetCell(row, col int, value string) (Cell, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.bounds.Contains(Ref{Row: row, Col: col}) {
		return Cell{}, ErrOutOfBounds
	}

	cell := NewCell(row, col, value)
	if prev, ok := g.cells[row][col]; ok {
		cell.Formatting = prev.Formatting
	}
	g.storeLocked(cell)
	g.version++

	g.pending = append(g.pending, Update{
		Row:       row,
		Column:    col,
		Value:     value,
		Timestamp: g.clock.Now().UnixMilli(),
	})
	if len(g.pending) > g.limit {
		g.pending = g.pending[len(g.pending)-g.limit:]
	}

	return cell, nil
}

// ApplyRemote applies a peer's cell write without queueing a new update,
// overwriting whatever is stored (delivery order wins). Out-of-bounds
// updates are ignored.
func (g *Grid) ApplyRemote(u Update) (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.bounds.Contains(Ref{Row: u.Row, Col: u.Column}) {
		return Cell{}, false
	}

	cell := NewCell(u.Row, u.Column, u.Value)
	if prev, ok := g.cells[u.Row][u.Column]; ok {
		cell.Formatting = prev.Formatting
	}
	g.storeLocked(cell)
	g.version++
	return cell, true
}

// Load replaces all cell content with cells read from storage. Nothing is
// queued. Cells outside bounds are skipped.
func (g *Grid) Load(cells []Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cells = make(map[int]map[int]Cell)
	for _, c := range cells {
		if !g.bounds.Contains(Ref{Row: c.Row, Col: c.Column}) {
			continue
		}
		dt, formula := Infer(c.Value)
		c.DataType = dt
		c.Formula = formula
		g.storeLocked(c)
	}
	g.version++
}

// DrainPending hands over all queued local updates in write order.
func (g *Grid) DrainPending() []Update {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.pending
	g.pending = nil
	return out
}

// CellText resolves an A1-style reference ("B3") to the cell's raw value,
// satisfying the formula evaluator's source interface.
func (g *Grid) CellText(ref string) (string, bool) {
	row, col, ok := refname.Parse(ref)
	if !ok {
		return "", false
	}
	c, ok := g.Cell(row, col)
	if !ok {
		return "", false
	}
	return c.Value, true
}

func (g *Grid) storeLocked(c Cell) {
	cols, ok := g.cells[c.Row]
	if !ok {
		cols = make(map[int]Cell)
		g.cells[c.Row] = cols
	}
	cols[c.Column] = c
}
