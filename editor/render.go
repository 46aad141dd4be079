package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pixelsheets/gridsync/grid"
	"github.com/pixelsheets/gridsync/internal/grapheme"
	"github.com/pixelsheets/gridsync/internal/refname"
)

// Fixed cell metrics: every column is cellWidth terminal cells wide, the
// last of which is a separator space. The gutter fits a 4-digit row number.
const (
	cellWidth   = 10
	gutterWidth = 5
	headerRows  = 1
	statusRows  = 1
)

// View renders the visible sheet window: column header, row-number gutter,
// cells, and a status line.
func (m Model) View() string {
	rows, cols := m.visibleCells()
	if rows <= 0 || cols <= 0 {
		return ""
	}

	active := m.grid.Active()
	sel, selOK := m.grid.Selection()

	out := make([]string, 0, rows+headerRows+statusRows)
	out = append(out, m.renderHeader(cols, active))

	for r := 0; r < rows; r++ {
		row := m.rowOff + r

		var sb strings.Builder
		numStyle := m.cfg.Style.RowNum
		if row == active.Row {
			numStyle = m.cfg.Style.RowNumActive
		}
		sb.WriteString(numStyle.Render(fmt.Sprintf("%*d", gutterWidth-1, row)))
		sb.WriteString(" ")

		for c := 0; c < cols; c++ {
			sb.WriteString(m.renderCell(grid.Ref{Row: row, Col: m.colOff + c}, active, sel, selOK))
		}
		out = append(out, sb.String())
	}

	out = append(out, m.renderStatus(active))
	return strings.Join(out, "\n")
}

func (m Model) renderHeader(cols int, active grid.Ref) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", gutterWidth))
	for c := 0; c < cols; c++ {
		col := m.colOff + c
		style := m.cfg.Style.Header
		if col == active.Col {
			style = m.cfg.Style.HeaderActive
		}
		sb.WriteString(style.Render(centerText(refname.ColumnName(col), cellWidth-1)))
		sb.WriteString(" ")
	}
	return sb.String()
}

func (m Model) renderCell(ref, active grid.Ref, sel grid.Range, selOK bool) string {
	if m.mode == ModeEdit && ref == active {
		return m.renderEditCell()
	}

	text, numeric := m.displayText(ref)
	text = grapheme.Fit(text, cellWidth-1, numeric)

	style := m.cfg.Style.Cell
	switch {
	case ref == active && m.focused:
		style = m.cfg.Style.Active
	case selOK && sel.Contains(ref):
		style = m.cfg.Style.Selection
	default:
		if rc, ok := m.remoteAt(ref); ok {
			style = m.cfg.Style.Remote
			if rc.Color != "" {
				style = style.Foreground(lipgloss.Color(rc.Color))
			}
		}
	}
	return style.Render(text) + " "
}

// renderEditCell draws the inline text input in place of the active cell.
// The input windows its own content to the cell width.
func (m Model) renderEditCell() string {
	view := m.input.View()
	if pad := cellWidth - 1 - lipgloss.Width(view); pad > 0 {
		view += strings.Repeat(" ", pad)
	}
	return view + " "
}

// displayText returns the cell's display string and whether it should be
// right-aligned (numbers, and formula results that read as numbers).
func (m Model) displayText(ref grid.Ref) (string, bool) {
	c, ok := m.grid.Cell(ref.Row, ref.Col)
	if !ok {
		return "", false
	}
	switch c.DataType {
	case grid.TypeFormula:
		text := c.Value
		if m.cfg.Evaluate != nil {
			text = m.cfg.Evaluate(c.Formula)
		}
		_, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		return text, err == nil && text != ""
	case grid.TypeNumber:
		return c.Value, true
	default:
		return c.Value, false
	}
}

func (m Model) remoteAt(ref grid.Ref) (RemoteCursor, bool) {
	for _, rc := range m.remote {
		if rc.Row == ref.Row && rc.Col == ref.Col {
			return rc, true
		}
	}
	return RemoteCursor{}, false
}

func (m Model) renderStatus(active grid.Ref) string {
	cellType := "empty"
	if c, ok := m.grid.Cell(active.Row, active.Col); ok {
		cellType = string(c.DataType)
	}
	status := fmt.Sprintf(" %s  %s  %s", m.mode, refname.Format(active.Row, active.Col), cellType)
	return m.cfg.Style.Status.Render(status)
}

func centerText(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	left := (w - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
}
