package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drill/internal/catalog"
	"github.com/abhisek/drill/internal/hints"
	"github.com/abhisek/drill/internal/practice"
	"github.com/abhisek/drill/internal/progress"
	"github.com/abhisek/drill/internal/review"
	"github.com/abhisek/drill/internal/router"
	"github.com/abhisek/drill/internal/screen"
	"github.com/abhisek/drill/internal/screens/history"
	"github.com/abhisek/drill/internal/screens/solve"
	"github.com/abhisek/drill/internal/screens/stats"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/ui/components"
	"github.com/abhisek/drill/internal/ui/layout"
	"github.com/abhisek/drill/internal/ui/theme"
	"github.com/abhisek/drill/internal/workspace"
)

// Deps are the services the dashboard and the screens it opens use.
type Deps struct {
	Store     *store.Store
	Practice  *practice.Service
	Scheduler *review.Scheduler
	Workspace *workspace.Workspace
	Importer  *catalog.Importer
	Hints     *hints.Service // nil when no LLM provider is configured
}

type loadedMsg struct {
	Problems []store.Problem
	Due      map[int64]bool
	State    progress.State
	Err      error
}

type importedMsg struct {
	Report catalog.Report
	Err    error
}

// DashboardScreen lists all problems with their solved and review marks.
type DashboardScreen struct {
	deps Deps

	problems []store.Problem
	due      map[int64]bool
	state    progress.State
	visible  []store.Problem

	filter   components.SearchBox
	selected int
	loaded   bool
	notice   string
	errMsg   string
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)
var _ screen.Resumer = (*DashboardScreen)(nil)

// New creates a new DashboardScreen.
func New(deps Deps) *DashboardScreen {
	return &DashboardScreen{
		deps:   deps,
		due:    map[int64]bool{},
		filter: components.NewSearchBox("filter by title", 40),
	}
}

func (d *DashboardScreen) Init() tea.Cmd {
	return d.load()
}

// Resume reloads the list after returning from another screen.
func (d *DashboardScreen) Resume() tea.Cmd {
	return d.load()
}

func (d *DashboardScreen) load() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		now := time.Now()

		problems, err := d.deps.Store.ProblemRepo().List(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		due, err := d.deps.Scheduler.DueIDs(ctx, now)
		if err != nil {
			return loadedMsg{Err: err}
		}
		st, err := d.deps.Practice.Ledger().State(ctx, now)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Problems: problems, Due: due, State: st}
	}
}

func (d *DashboardScreen) Title() string {
	return "Problems"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	if d.filter.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Clear"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Solve"},
		{Key: "/", Description: "Filter"},
		{Key: "h", Description: "History"},
		{Key: "s", Description: "Stats"},
		{Key: "i", Description: "Import"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		d.loaded = true
		if msg.Err != nil {
			d.errMsg = msg.Err.Error()
			return d, nil
		}
		d.errMsg = ""
		d.problems, d.due, d.state = msg.Problems, msg.Due, msg.State
		d.applyFilter()
		badge := progress.Badge(d.state)
		return d, func() tea.Msg { return screen.StatusMsg(badge) }

	case importedMsg:
		if msg.Err != nil {
			d.errMsg = msg.Err.Error()
			return d, nil
		}
		d.notice = fmt.Sprintf("Imported %d, skipped %d, failed %d.",
			len(msg.Report.Imported), len(msg.Report.Skipped), len(msg.Report.Failed))
		return d, d.load()

	case tea.KeyMsg:
		if d.filter.Focused() {
			return d.handleFilterKey(msg)
		}
		return d.handleKey(msg)
	}

	if d.filter.Focused() {
		var cmd tea.Cmd
		d.filter, cmd = d.filter.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d *DashboardScreen) handleFilterKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		d.filter.Blur()
		return d, nil
	case "esc":
		d.filter.Clear()
		d.filter.Blur()
		d.applyFilter()
		return d, nil
	}
	var cmd tea.Cmd
	d.filter, cmd = d.filter.Update(msg)
	d.applyFilter()
	return d, cmd
}

func (d *DashboardScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if d.selected > 0 {
			d.selected--
		}
	case "down", "j":
		if d.selected < len(d.visible)-1 {
			d.selected++
		}
	case "/":
		d.notice = ""
		return d, d.filter.Focus()
	case "esc":
		if d.filter.Query() != "" {
			d.filter.Clear()
			d.applyFilter()
		}
	case "enter":
		if len(d.visible) == 0 {
			return d, nil
		}
		p := d.visible[d.selected]
		scr := solve.New(p.ID, d.deps.Practice, d.deps.Store.AttemptRepo(), d.deps.Workspace, d.deps.Hints)
		return d, router.Open(scr)
	case "h":
		scr := history.New(d.deps.Store.AttemptRepo())
		return d, router.Open(scr)
	case "s":
		scr := stats.New(d.deps.Store.ProblemRepo(), d.deps.Store.AttemptRepo(), d.deps.Practice.Ledger())
		return d, router.Open(scr)
	case "i":
		if d.deps.Importer == nil {
			return d, nil
		}
		d.notice = "Importing from " + d.deps.Workspace.QuestionsDir + "..."
		return d, func() tea.Msg {
			rep, err := d.deps.Importer.ImportDir(context.Background(), d.deps.Workspace.QuestionsDir)
			return importedMsg{Report: rep, Err: err}
		}
	}
	return d, nil
}

func (d *DashboardScreen) applyFilter() {
	d.visible = FilterProblems(d.problems, d.filter.Query())
	if d.selected >= len(d.visible) {
		d.selected = max(len(d.visible)-1, 0)
	}
}

// FilterProblems returns the problems whose title contains query, ignoring
// case. An empty query matches everything.
func FilterProblems(problems []store.Problem, query string) []store.Problem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return problems
	}
	var out []store.Problem
	for _, p := range problems {
		if strings.Contains(strings.ToLower(p.Title), query) {
			out = append(out, p)
		}
	}
	return out
}

// RowLabel renders one list entry: a solved mark, the title and a review
// warning when the problem is due.
func RowLabel(p store.Problem, due bool) string {
	mark := "⚫"
	if p.Solved {
		mark = "✔"
	}
	label := mark + " " + p.Title
	if due {
		label += " ⚠️ review"
	}
	return label
}

func (d *DashboardScreen) View(width, height int) string {
	if !d.loaded {
		return layout.RenderNotice("Loading problems…", theme.Hint, width)
	}
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(theme.Title.Render(progress.Badge(d.state)))
	b.WriteString("\n\n")
	b.WriteString(d.filter.View())
	b.WriteString("\n\n")

	// Lines used above and below the list.
	listHeight := max(height-8, 1)

	switch {
	case len(d.problems) == 0:
		b.WriteString(theme.Hint.Render("No problems yet. Put quiz pages in " +
			d.deps.Workspace.QuestionsDir + " and press i."))
	case len(d.visible) == 0:
		b.WriteString(theme.Hint.Render("No problem matches the filter."))
	default:
		start := 0
		if d.selected >= listHeight {
			start = d.selected - listHeight + 1
		}
		end := min(start+listHeight, len(d.visible))
		for i := start; i < end; i++ {
			p := d.visible[i]
			due := d.due[p.ID]
			style := theme.Unselected
			prefix := "  "
			switch {
			case i == d.selected:
				style, prefix = theme.Selected, "> "
			case due:
				style = theme.Due
			case p.Solved:
				style = lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(prefix + RowLabel(p, due)))
			b.WriteString("\n")
		}
	}

	if d.notice != "" {
		b.WriteString("\n" + theme.Hint.Render(d.notice))
	}
	if d.errMsg != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("Error: "+d.errMsg))
	}

	return lipgloss.NewStyle().PaddingLeft(4).Width(width).Render(b.String())
}
