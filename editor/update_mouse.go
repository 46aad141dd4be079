package editor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pixelsheets/gridsync/grid"
)

// doubleClickWindow is how close two presses on the same cell must land to
// count as a double click.
const doubleClickWindow = 400 * time.Millisecond

const wheelStep = 3

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollRows(-wheelStep)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.scrollRows(wheelStep)
			return m, nil
		case tea.MouseButtonLeft:
		default:
			return m, nil
		}

		ref, ok := m.cellAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}

		// A press while editing commits first, then moves the active cell.
		if m.mode == ModeEdit {
			m.commitEdit()
		}

		if msg.Shift {
			anchor := m.grid.Active()
			if raw, ok := m.grid.SelectionRaw(); ok {
				anchor = raw.Start
			}
			m.dragAnchor = anchor
			m.dragging = true
			m.grid.SetSelection(grid.Range{Start: anchor, End: ref})
			m.setActiveNotify(ref)
			return m, nil
		}

		now := m.clock.Now()
		double := ref == m.lastClick && now.Sub(m.lastClickTime) <= doubleClickWindow
		m.lastClick = ref
		m.lastClickTime = now

		m.dragAnchor = ref
		m.dragging = true
		m.grid.ClearSelection()
		m.setActiveNotify(ref)

		if double {
			m.dragging = false
			return m, m.beginEdit()
		}

	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		ref, ok := m.cellAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.grid.SetSelection(grid.Range{Start: m.dragAnchor, End: ref})
		m.setActiveNotify(ref)

	case tea.MouseActionRelease:
		// Selection is already current; the drag just ends.
		m.dragging = false
	}

	return m, nil
}

// scrollRows moves the row window without touching the active cell.
func (m *Model) scrollRows(delta int) {
	rows, _ := m.visibleCells()
	maxOff := m.grid.Bounds().Rows - rows + 1
	if maxOff < 1 {
		maxOff = 1
	}
	m.rowOff += delta
	if m.rowOff < 1 {
		m.rowOff = 1
	}
	if m.rowOff > maxOff {
		m.rowOff = maxOff
	}
}
