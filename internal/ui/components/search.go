// Package components holds small widgets shared by screens.
package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drill/internal/ui/theme"
)

// SearchBox is a one-line filter prompt. It shows a dimmed hint while
// idle and empty.
type SearchBox struct {
	input textinput.Model
}

// NewSearchBox returns an unfocused box accepting up to limit runes.
func NewSearchBox(placeholder string, limit int) SearchBox {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetWidth(limit)
	return SearchBox{input: in}
}

func (s *SearchBox) Focus() tea.Cmd { return s.input.Focus() }
func (s *SearchBox) Blur()          { s.input.Blur() }
func (s *SearchBox) Clear()         { s.input.SetValue("") }
func (s SearchBox) Focused() bool   { return s.input.Focused() }
func (s SearchBox) Query() string   { return s.input.Value() }

func (s SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s SearchBox) View() string {
	if !s.input.Focused() && s.input.Value() == "" {
		return theme.Hint.Render("press / to filter")
	}
	return s.input.View()
}
