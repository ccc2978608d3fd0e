// Package screen defines what the router needs from a page of the UI.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drill/internal/ui/layout"
)

// Screen is one page. View draws only the body; the app adds the header
// and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer reloads data when the screen on top of it closes.
type Resumer interface {
	Resume() tea.Cmd
}

// StatusMsg sets the level and streak badge in the header.
type StatusMsg string
