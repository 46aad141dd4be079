package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pixelsheets/gridsync/collab"
	"github.com/pixelsheets/gridsync/editor"
	"github.com/pixelsheets/gridsync/internal/refname"
)

// Messages injected by channel callbacks through Program.Send.
type (
	stateMsg   collab.ConnState
	noticeMsg  string
	refreshMsg struct{}
)

var (
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ui wraps the sheet editor with a one-line session bar showing connection
// state, who else is in the room, and transient notices.
type ui struct {
	editor  editor.Model
	channel *collab.Channel
	state   collab.ConnState
	notice  string
}

func newUI(ed editor.Model, ch *collab.Channel) ui {
	u := ui{editor: ed, channel: ch}
	if ch != nil {
		u.state = ch.State()
	}
	return u
}

func (u ui) Init() tea.Cmd { return u.editor.Init() }

func (u ui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// The bottom line belongs to the session bar.
		u.editor = u.editor.SetSize(msg.Width, msg.Height-1)
		return u, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q":
			return u, tea.Quit
		case "ctrl+r":
			return u, u.reconnect()
		}
	case stateMsg:
		u.state = collab.ConnState(msg)
		u.syncRemote()
		return u, nil
	case noticeMsg:
		u.notice = string(msg)
		return u, nil
	case refreshMsg:
		u.syncRemote()
		return u, nil
	}

	var cmd tea.Cmd
	u.editor, cmd = u.editor.Update(msg)
	return u, cmd
}

func (u ui) View() string {
	return u.editor.View() + "\n" + u.bar()
}

// syncRemote mirrors the presence snapshot into the editor's cursor overlay.
func (u *ui) syncRemote() {
	if u.channel == nil {
		return
	}
	peers := u.channel.Collaborators()
	cursors := make([]editor.RemoteCursor, 0, len(peers))
	for _, p := range peers {
		cursors = append(cursors, editor.RemoteCursor{
			UserID:   p.UserID,
			Username: p.Username,
			Row:      p.Row,
			Col:      p.Column,
			Editing:  p.IsEditing,
			Color:    p.Color,
		})
	}
	u.editor = u.editor.SetRemoteCursors(cursors)
}

func (u ui) reconnect() tea.Cmd {
	if u.channel == nil || u.state == collab.StateConnected {
		return nil
	}
	ch := u.channel
	return func() tea.Msg {
		if err := ch.Reconnect(context.Background()); err != nil {
			return noticeMsg(fmt.Sprintf("reconnect failed: %v", err))
		}
		return nil
	}
}

func (u ui) bar() string {
	var sb strings.Builder
	sb.WriteString(" ")
	if u.channel == nil {
		sb.WriteString(barStyle.Render("offline"))
	} else {
		switch u.state {
		case collab.StateConnected:
			sb.WriteString(okStyle.Render("● connected"))
		case collab.StateConnecting:
			sb.WriteString(pendStyle.Render("● connecting"))
		default:
			sb.WriteString(downStyle.Render("● disconnected, ctrl+r reconnects"))
		}
		for _, p := range u.channel.Collaborators() {
			sb.WriteString("  ")
			label := fmt.Sprintf("%s@%s", p.Username, refname.Format(p.Row, p.Column))
			style := barStyle
			if p.Color != "" {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color))
			}
			sb.WriteString(style.Render(label))
		}
	}
	if u.notice != "" {
		sb.WriteString("  ")
		sb.WriteString(noticeStyle.Render(u.notice))
	}
	return sb.String()
}
