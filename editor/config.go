package editor

import (
	"github.com/jonboulle/clockwork"

	"github.com/pixelsheets/gridsync/grid"
)

// Config configures the editor Model.
//
// Hooks are optional; a nil hook disables that integration point.
type Config struct {
	KeyMap KeyMap
	Style  Style

	// Clipboard mirrors copied ranges out as tab-separated text. The
	// offset-tuple clipboard used for paste is internal and local-only.
	Clipboard Clipboard

	// Evaluate resolves a formula cell's display text ("=A1+1" → "3").
	// Nil displays the raw formula.
	Evaluate func(formula string) string

	// OnCellUpdate receives every queued local write after a mutation, in
	// write order.
	OnCellUpdate func(grid.Update)

	// OnCursorMove fires when the active cell moves or the edit state
	// changes.
	OnCursorMove func(row, col int, editing bool)

	// Clock drives double-click detection. Tests inject a fake.
	Clock clockwork.Clock
}
