package editor

import "github.com/pixelsheets/gridsync/grid"

// cellAt maps component-local screen coordinates to a grid cell.
//
// Coordinates are in terminal cells relative to the component's top-left:
// row 0 is the column header, columns 0..gutterWidth-1 the row-number
// gutter. ok is false outside the cell window.
func (m *Model) cellAt(x, y int) (grid.Ref, bool) {
	rows, cols := m.visibleCells()
	if rows <= 0 || cols <= 0 {
		return grid.Ref{}, false
	}
	if y < headerRows || y >= headerRows+rows {
		return grid.Ref{}, false
	}
	if x < gutterWidth {
		return grid.Ref{}, false
	}
	col := (x - gutterWidth) / cellWidth
	if col >= cols {
		return grid.Ref{}, false
	}

	ref := grid.Ref{Row: m.rowOff + y - headerRows, Col: m.colOff + col}
	if !m.grid.Bounds().Contains(ref) {
		return grid.Ref{}, false
	}
	return ref, true
}
