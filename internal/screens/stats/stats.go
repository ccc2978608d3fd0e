package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drill/internal/progress"
	"github.com/abhisek/drill/internal/router"
	"github.com/abhisek/drill/internal/screen"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/ui/components"
	"github.com/abhisek/drill/internal/ui/layout"
	"github.com/abhisek/drill/internal/ui/theme"
)

// maxDays is how many of the most recent active days are charted.
const maxDays = 14

type statsLoadedMsg struct {
	State    progress.State
	Counts   store.ProblemCounts
	Activity []progress.DayCount
	Err      error
}

// StatsScreen shows level progress and solving activity by day.
type StatsScreen struct {
	problems store.ProblemRepo
	attempts store.AttemptRepo
	ledger   *progress.Ledger

	data   statsLoadedMsg
	loaded bool
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a new StatsScreen.
func New(problems store.ProblemRepo, attempts store.AttemptRepo, ledger *progress.Ledger) *StatsScreen {
	return &StatsScreen{problems: problems, attempts: attempts, ledger: ledger}
}

func (s *StatsScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		st, err := s.ledger.State(ctx, time.Now())
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		counts, err := s.problems.Counts(ctx)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		times, err := s.attempts.SuccessTimes(ctx)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{State: st, Counts: counts, Activity: progress.DailyActivity(times)}
	}
}

func (s *StatsScreen) Title() string {
	return "Stats"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		s.data = msg
		s.loaded = true
	case tea.KeyMsg:
		if k := msg.String(); k == "esc" || k == "q" {
			return s, router.Back()
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	if s.data.Err != nil {
		return layout.RenderNotice("Error: "+s.data.Err.Error(), theme.Incorrect, width)
	}
	if !s.loaded {
		return layout.RenderNotice("Loading stats…", theme.Hint, width)
	}
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	barWidth := min(60, width-8)
	var b strings.Builder

	st := s.data.State
	b.WriteString(theme.Title.Render(progress.Badge(st)))
	b.WriteString("\n\n")

	inLevel := progress.LevelProgress(st.TotalXP)
	b.WriteString(components.Meter{
		Label: fmt.Sprintf("Level %d → %d", st.Level, st.Level+1),
		Value: inLevel, Max: progress.XPPerLevel, Width: barWidth, ShowRatio: true,
	}.View())
	b.WriteString("\n")

	b.WriteString(components.Meter{
		Label: "Solved", Value: s.data.Counts.Solved, Max: s.data.Counts.Total, Width: barWidth, ShowRatio: true,
	}.View())
	b.WriteString("\n\n")

	b.WriteString(theme.Subtitle.Render("Tests passed per day"))
	b.WriteString("\n\n")
	b.WriteString(renderActivity(s.data.Activity, barWidth))

	return center.Render(b.String())
}

func renderActivity(days []progress.DayCount, width int) string {
	if len(days) == 0 {
		return theme.Hint.Render("No passing runs yet.")
	}
	if len(days) > maxDays {
		days = days[len(days)-maxDays:]
	}

	peak := 0
	for _, d := range days {
		peak = max(peak, d.Count)
	}

	lines := make([]string, 0, len(days))
	for _, d := range days {
		label := fmt.Sprintf("%s %3d", d.Day.Format("Jan 02"), d.Count)
		lines = append(lines, components.Meter{Label: label, Value: d.Count, Max: peak, Width: width}.View())
	}
	return strings.Join(lines, "\n")
}
