package collab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_KnownTypes(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  string
		want any
	}{
		{
			"join-room",
			`{"type":"join-room","spreadsheetId":1,"sheetId":2}`,
			&JoinRoom{Type: TypeJoinRoom, SpreadsheetID: 1, SheetID: 2},
		},
		{
			"collaborator-join",
			`{"type":"collaborator-join","user":{"id":7,"username":"ada","email":"ada@example.com"}}`,
			&CollaboratorJoin{Type: TypeCollaboratorJoin, User: User{ID: 7, Username: "ada", Email: "ada@example.com"}},
		},
		{
			"collaborator-leave",
			`{"type":"collaborator-leave","userId":7}`,
			&CollaboratorLeave{Type: TypeCollaboratorLeave, UserID: 7},
		},
		{
			"cursor-move",
			`{"type":"cursor-move","spreadsheetId":1,"sheetId":2,"row":3,"column":4,"isEditing":true,"userId":7}`,
			&CursorMove{Type: TypeCursorMove, SpreadsheetID: 1, SheetID: 2, Row: 3, Column: 4, IsEditing: true, UserID: 7},
		},
		{
			"cell-update",
			`{"type":"cell-update","spreadsheetId":1,"sheetId":2,"row":3,"column":4,"value":"=A1+1","userId":7,"timestampMillis":99}`,
			&CellUpdate{Type: TypeCellUpdate, SpreadsheetID: 1, SheetID: 2, Row: 3, Column: 4, Value: "=A1+1", UserID: 7, TimestampMillis: 99},
		},
		{
			"connection-status",
			`{"type":"connection-status","status":"connected"}`,
			&ConnectionStatus{Type: TypeConnectionStatus, Status: "connected"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"poke"}`))
	require.ErrorContains(t, err, `unknown message type "poke"`)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
}

func TestEncode_OmitsEmptyUserFields(t *testing.T) {
	data, err := Encode(&CollaboratorJoin{Type: TypeCollaboratorJoin, User: User{ID: 7, Username: "ada"}})
	require.NoError(t, err)
	require.NotContains(t, string(data), "avatar")
	require.NotContains(t, string(data), "email")

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, &CollaboratorJoin{Type: TypeCollaboratorJoin, User: User{ID: 7, Username: "ada"}}, got)
}
