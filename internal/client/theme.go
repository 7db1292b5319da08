package client

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styles used for exerciser output. Colours are dropped
// automatically when the writer is not a terminal.
type Theme struct {
	Header   lipgloss.Style
	Request  lipgloss.Style
	StatusOK lipgloss.Style
	StatusKO lipgloss.Style
	Dim      lipgloss.Style
}

// NewTheme builds the default theme for output written to w.
func NewTheme(w io.Writer) Theme {
	r := lipgloss.NewRenderer(w)
	return Theme{
		Header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")),
		Request:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
		StatusOK: r.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusKO: r.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}
