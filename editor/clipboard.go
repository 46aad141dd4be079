package editor

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/pixelsheets/gridsync/grid"
)

// Clipboard provides editor-level clipboard integration. Copied ranges are
// mirrored out as tab-separated text.
//
// Errors must not crash the UI; failures are ignored.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

// SystemClipboard bridges the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) { return clipboard.ReadAll() }
func (SystemClipboard) WriteText(s string) error  { return clipboard.WriteAll(s) }

// clipEntry is one captured cell, addressed relative to the top-left corner
// of the copied range.
type clipEntry struct {
	RelRow   int
	RelCol   int
	Value    string
	Formula  string
	DataType grid.DataType
}

// clipBuffer is the offset-tuple clipboard. It is local to the session and
// never synchronized to peers.
type clipBuffer struct {
	entries []clipEntry
}

// capture records every cell of r in row-major order, empties included:
// pasting a range with blanks blanks the targets, the way spreadsheets
// behave. Returns the count captured.
func (cb *clipBuffer) capture(g *grid.Grid, r grid.Range) int {
	r = grid.NormalizeRange(r)
	cb.entries = cb.entries[:0]
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			e := clipEntry{RelRow: row - r.Start.Row, RelCol: col - r.Start.Col, DataType: grid.TypeText}
			if c, ok := g.Cell(row, col); ok {
				e.Value = c.Value
				e.Formula = c.Formula
				e.DataType = c.DataType
			}
			cb.entries = append(cb.entries, e)
		}
	}
	return len(cb.entries)
}

// paste rebases the captured tuples onto anchor. Targets outside bounds are
// skipped; a partial paste at the sheet edge is expected, not an error.
// Returns the count written.
func (cb *clipBuffer) paste(g *grid.Grid, anchor grid.Ref) int {
	written := 0
	for _, e := range cb.entries {
		if _, err := g.SetCell(anchor.Row+e.RelRow, anchor.Col+e.RelCol, e.Value); err != nil {
			continue
		}
		written++
	}
	return written
}

func (cb *clipBuffer) empty() bool { return len(cb.entries) == 0 }

// tsv renders the captured rectangle as tab-separated text for the host
// clipboard mirror. Relies on capture's row-major order.
func (cb *clipBuffer) tsv() string {
	var sb strings.Builder
	row := 0
	for i, e := range cb.entries {
		if i > 0 {
			if e.RelRow != row {
				sb.WriteByte('\n')
				row = e.RelRow
			} else {
				sb.WriteByte('\t')
			}
		}
		sb.WriteString(e.Value)
	}
	return sb.String()
}
