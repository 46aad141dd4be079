package editor

// Mode is the input dispatcher state. Transitions happen only through the
// explicit begin/commit/cancel paths, never inferred from event content.
type Mode int

const (
	ModeNavigate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "navigate"
}
