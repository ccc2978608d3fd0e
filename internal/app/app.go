// Package app runs the terminal UI.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/drill/internal/router"
	"github.com/abhisek/drill/internal/screen"
	"github.com/abhisek/drill/internal/screens/dashboard"
	"github.com/abhisek/drill/internal/ui/layout"
)

var defaultHints = []layout.KeyHint{
	{Key: "Esc", Description: "Back"},
	{Key: "Ctrl+C", Description: "Quit"},
}

type model struct {
	screens *router.Router
	badge   string
	width   int
	height  int
}

func (m model) Init() tea.Cmd { return m.screens.Active().Init() }

// Update owns window size, the header badge and ctrl+c. Screens see
// every other message, including esc.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case screen.StatusMsg:
		m.badge = string(msg)
		return m, nil
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, m.screens.Update(msg)
}

func (m model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	switch {
	case m.width == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

func (m model) frame() string {
	active := m.screens.Active()
	hints := defaultHints
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	header := layout.RenderHeader(active.Title(), m.badge, m.width)
	footer := layout.RenderFooter(hints, m.width)
	body := m.screens.View(m.width, max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0))
	return layout.RenderFrame(header, body, footer, m.width, m.height)
}

// Run shows the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps dashboard.Deps, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("ui start")
	p := tea.NewProgram(model{screens: router.New(dashboard.New(deps))}, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		logger.Error("ui exit", zap.Error(err))
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Debug("ui exit")
	return nil
}
