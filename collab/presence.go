package collab

// Collaborator is one remote peer present in the sheet room, with their
// last known cursor position.
type Collaborator struct {
	UserID    int
	Username  string
	Email     string
	Avatar    string
	Row       int
	Column    int
	IsEditing bool
	Color     string
}

// Activity is one applied cell edit, local or remote, for the session's
// activity feed.
type Activity struct {
	UserID          int
	Username        string
	Row             int
	Column          int
	Value           string
	TimestampMillis int64
}

// colorTable holds the presence palette. A user keeps the same color for as
// long as their id is stable, on every client, with no negotiation.
var colorTable = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#9a6324", // brown
}

func colorFor(userID int) string {
	i := userID % len(colorTable)
	if i < 0 {
		i += len(colorTable)
	}
	return colorTable[i]
}
