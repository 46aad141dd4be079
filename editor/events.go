package editor

// RemoteCursor is a collaborator's cursor position, fed by the host from
// presence snapshots and drawn as an overlay in the cell window.
type RemoteCursor struct {
	UserID   int
	Username string
	Row      int
	Col      int
	Editing  bool
	Color    string
}
