package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor key bindings.
//
// Navigate mode uses the movement, clear, and clipboard bindings. Edit mode
// reuses NextRow/PrevRow/NextCol/PrevCol as commit-and-move and Cancel as
// discard; everything else falls through to the text input.
type KeyMap struct {
	Left, Right, Up, Down                     key.Binding
	ShiftLeft, ShiftRight, ShiftUp, ShiftDown key.Binding

	NextCol, PrevCol key.Binding
	NextRow, PrevRow key.Binding

	Edit   key.Binding
	Clear  key.Binding
	Cancel key.Binding

	Copy, Cut, Paste, SelectAll key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),

		ShiftLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "extend left")),
		ShiftRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "extend right")),
		ShiftUp:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "extend up")),
		ShiftDown:  key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "extend down")),

		NextCol: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next column")),
		PrevCol: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous column")),
		// Not every terminal reports shift+enter; PrevRow works where it does.
		NextRow: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next row")),
		PrevRow: key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("shift+enter", "previous row")),

		Edit:   key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "edit cell")),
		Clear:  key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "clear")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Copy:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "copy")),
		Cut:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cut")),
		Paste:     key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
	}
}
