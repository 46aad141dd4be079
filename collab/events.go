package collab

import (
	"encoding/json"
	"fmt"
)

// Wire message discriminators. Every frame is a flat JSON object whose
// "type" field names one of these.
const (
	TypeJoinRoom          = "join-room"
	TypeCollaboratorJoin  = "collaborator-join"
	TypeCollaboratorLeave = "collaborator-leave"
	TypeCursorMove        = "cursor-move"
	TypeCellUpdate        = "cell-update"
	TypeConnectionStatus  = "connection-status"
)

// msgType probes the discriminator before the full decode.
type msgType struct {
	Type string `json:"type"`
}

// User identifies one account in a room.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// JoinRoom is sent once per connection to enter a sheet's room.
type JoinRoom struct {
	Type          string `json:"type"`
	SpreadsheetID int    `json:"spreadsheetId"`
	SheetID       int    `json:"sheetId"`
}

// CollaboratorJoin announces a user's presence in the room.
type CollaboratorJoin struct {
	Type string `json:"type"`
	User User   `json:"user"`
}

// CollaboratorLeave announces a user's departure.
type CollaboratorLeave struct {
	Type   string `json:"type"`
	UserID int    `json:"userId"`
}

// CursorMove carries a user's active cell and editing flag.
type CursorMove struct {
	Type          string `json:"type"`
	SpreadsheetID int    `json:"spreadsheetId"`
	SheetID       int    `json:"sheetId"`
	Row           int    `json:"row"`
	Column        int    `json:"column"`
	IsEditing     bool   `json:"isEditing"`
	UserID        int    `json:"userId"`
}

// CellUpdate carries one committed cell write. TimestampMillis is the
// writer's capture time; receivers apply updates in delivery order and keep
// the timestamp for the activity log only.
type CellUpdate struct {
	Type            string `json:"type"`
	SpreadsheetID   int    `json:"spreadsheetId"`
	SheetID         int    `json:"sheetId"`
	Row             int    `json:"row"`
	Column          int    `json:"column"`
	Value           string `json:"value"`
	UserID          int    `json:"userId"`
	TimestampMillis int64  `json:"timestampMillis"`
}

// ConnectionStatus reports room connectivity, pushed by the room server.
type ConnectionStatus struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Decode parses one wire frame into its typed message.
func Decode(data []byte) (any, error) {
	var probe msgType
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("probing message type: %w", err)
	}

	var msg any
	switch probe.Type {
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeCollaboratorJoin:
		msg = &CollaboratorJoin{}
	case TypeCollaboratorLeave:
		msg = &CollaboratorLeave{}
	case TypeCursorMove:
		msg = &CursorMove{}
	case TypeCellUpdate:
		msg = &CellUpdate{}
	case TypeConnectionStatus:
		msg = &ConnectionStatus{}
	default:
		return nil, fmt.Errorf("unknown message type %q", probe.Type)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", probe.Type, err)
	}
	return msg, nil
}

// Encode marshals one typed message into a wire frame.
func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	return data, nil
}
