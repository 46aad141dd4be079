package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
//
// The zero value renders plain text; DefaultStyle is the intended look.
type Style struct {
	Header       lipgloss.Style
	HeaderActive lipgloss.Style
	RowNum       lipgloss.Style
	RowNumActive lipgloss.Style

	Cell      lipgloss.Style
	Active    lipgloss.Style
	Selection lipgloss.Style

	// Remote marks collaborator cursor cells; their assigned color is
	// applied on top at render time.
	Remote lipgloss.Style

	Status lipgloss.Style
}

func DefaultStyle() Style {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bright := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
	return Style{
		Header:       dim,
		HeaderActive: bright,
		RowNum:       dim,
		RowNumActive: bright,
		Cell:         lipgloss.NewStyle(),
		Active:       lipgloss.NewStyle().Reverse(true),
		Selection:    lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Remote:       lipgloss.NewStyle().Underline(true),
		Status:       dim,
	}
}
