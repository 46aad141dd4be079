package editor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	if m.mode == ModeEdit {
		return m.updateKeyEdit(msg)
	}
	return m.updateKeyNavigate(msg)
}

func (m Model) updateKeyNavigate(msg tea.KeyMsg) (Model, tea.Cmd) {
	km := m.cfg.KeyMap

	switch {
	case key.Matches(msg, km.Left):
		m.moveActive(0, -1)
	case key.Matches(msg, km.Right):
		m.moveActive(0, 1)
	case key.Matches(msg, km.Up):
		m.moveActive(-1, 0)
	case key.Matches(msg, km.Down):
		m.moveActive(1, 0)

	case key.Matches(msg, km.ShiftLeft):
		m.extendSelection(0, -1)
	case key.Matches(msg, km.ShiftRight):
		m.extendSelection(0, 1)
	case key.Matches(msg, km.ShiftUp):
		m.extendSelection(-1, 0)
	case key.Matches(msg, km.ShiftDown):
		m.extendSelection(1, 0)

	// Tab clamps at the column bound, matching arrow clamping. No row wrap.
	case key.Matches(msg, km.NextCol):
		m.moveActive(0, 1)
	case key.Matches(msg, km.PrevCol):
		m.moveActive(0, -1)
	case key.Matches(msg, km.NextRow):
		m.moveActive(1, 0)
	case key.Matches(msg, km.PrevRow):
		m.moveActive(-1, 0)

	case key.Matches(msg, km.Edit):
		return m, m.beginEdit()
	case key.Matches(msg, km.Clear):
		m.clearTargets()

	case key.Matches(msg, km.Copy):
		m.copyRange()
	case key.Matches(msg, km.Cut):
		m.cutRange()
	case key.Matches(msg, km.Paste):
		m.pasteAt()
	case key.Matches(msg, km.SelectAll):
		m.grid.SelectAll()
	case key.Matches(msg, km.Cancel):
		m.grid.ClearSelection()

	default:
		// Typing replaces the cell: start a fresh edit from the typed runes.
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
			cmd := m.beginEditWith("")
			var icmd tea.Cmd
			m.input, icmd = m.input.Update(msg)
			return m, tea.Batch(cmd, icmd)
		}
	}

	return m, nil
}

func (m Model) updateKeyEdit(msg tea.KeyMsg) (Model, tea.Cmd) {
	km := m.cfg.KeyMap

	switch {
	case key.Matches(msg, km.NextRow):
		m.commitEdit()
		m.moveActive(1, 0)
	case key.Matches(msg, km.PrevRow):
		m.commitEdit()
		m.moveActive(-1, 0)
	case key.Matches(msg, km.NextCol):
		m.commitEdit()
		m.moveActive(0, 1)
	case key.Matches(msg, km.PrevCol):
		m.commitEdit()
		m.moveActive(0, -1)
	case key.Matches(msg, km.Cancel):
		m.cancelEdit()

	default:
		// Everything else is native text-input behavior.
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}
