// Package history lists every attempted problem with its results.
package history

import (
	"context"
	"image/color"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/drill/internal/router"
	"github.com/abhisek/drill/internal/screen"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/ui/layout"
	"github.com/abhisek/drill/internal/ui/theme"
)

type loadedMsg struct {
	stats []store.ProblemStats
	err   error
}

// HistoryScreen is a scrollable table of pass and fail counts per problem.
type HistoryScreen struct {
	attempts store.AttemptRepo
	stats    []store.ProblemStats
	offset   int
	loaded   bool
	err      error
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(attempts store.AttemptRepo) *HistoryScreen {
	return &HistoryScreen{attempts: attempts}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		stats, err := s.attempts.GlobalStats(context.Background())
		return loadedMsg{stats: stats, err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.stats, s.err, s.loaded = msg.stats, msg.err, true
	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc", "q":
			return s, router.Back()
		case "up", "k":
			s.offset = max(s.offset-1, 0)
		case "down", "j":
			s.offset = min(s.offset+1, max(len(s.stats)-1, 0))
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	switch {
	case s.err != nil:
		return layout.RenderNotice("Error: "+s.err.Error(), theme.Incorrect, width)
	case !s.loaded:
		return layout.RenderNotice("Loading history…", theme.Hint, width)
	case len(s.stats) == 0:
		return layout.RenderNotice("Nothing checked yet. Open a problem and press Enter to run its tests.", theme.Hint, width)
	}

	rows := make([][]string, len(s.stats))
	for i, st := range s.stats {
		rows[i] = []string{
			st.Title,
			strconv.Itoa(st.Wins),
			strconv.Itoa(st.Fails),
			st.LastAttempt.Local().Format("Jan 02 15:04"),
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	colors := map[int]color.Color{1: theme.Success, 2: theme.Error}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("Problem", "Passed", "Failed", "Last run").
		Rows(rows...).
		Height(max(height-2, 3)).
		YOffset(s.offset).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Foreground(theme.Primary).Bold(true)
			}
			if c, ok := colors[col]; ok {
				return cell.Foreground(c)
			}
			return cell.Foreground(theme.Text)
		})
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, t.Render())
}
