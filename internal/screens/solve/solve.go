package solve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drill/internal/hints"
	"github.com/abhisek/drill/internal/practice"
	"github.com/abhisek/drill/internal/progress"
	"github.com/abhisek/drill/internal/router"
	"github.com/abhisek/drill/internal/screen"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/ui/layout"
	"github.com/abhisek/drill/internal/ui/theme"
	"github.com/abhisek/drill/internal/workspace"
)

type openedMsg struct {
	Session *practice.Session
	Err     error
}

type gradedMsg struct {
	Result *practice.Result
	Err    error
}

type hintMsg struct {
	Hint *hints.Hint
	Err  error
}

type resetMsg struct {
	Err error
}

type editorDoneMsg struct {
	Err error
}

type tickMsg time.Time

// SolveScreen shows one problem and runs its tests on demand.
type SolveScreen struct {
	problemID int64
	svc       *practice.Service
	attempts  store.AttemptRepo
	ws        *workspace.Workspace
	hints     *hints.Service

	session *practice.Session
	started time.Time
	elapsed time.Duration

	spinner spinner.Model
	busy    string // non-empty while grading or asking for a hint
	cancel  context.CancelFunc

	result *practice.Result
	hint   *hints.Hint
	notice string
	errMsg string
	scroll int
}

var _ screen.Screen = (*SolveScreen)(nil)
var _ screen.KeyHintProvider = (*SolveScreen)(nil)

// New creates a SolveScreen for a problem. hintSvc may be nil when no LLM
// provider is configured.
func New(problemID int64, svc *practice.Service, attempts store.AttemptRepo, ws *workspace.Workspace, hintSvc *hints.Service) *SolveScreen {
	return &SolveScreen{
		problemID: problemID,
		svc:       svc,
		attempts:  attempts,
		ws:        ws,
		hints:     hintSvc,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
}

func (s *SolveScreen) Init() tea.Cmd {
	return func() tea.Msg {
		sess, err := s.svc.Open(context.Background(), s.problemID)
		return openedMsg{Session: sess, Err: err}
	}
}

func (s *SolveScreen) Title() string {
	if s.session == nil {
		return "Solve"
	}
	return s.session.Problem.Title
}

func (s *SolveScreen) KeyHints() []layout.KeyHint {
	if s.busy != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	keys := []layout.KeyHint{
		{Key: "Enter", Description: "Run tests"},
		{Key: "e", Description: "Edit"},
		{Key: "r", Description: "Reset code"},
	}
	if s.hints != nil {
		keys = append(keys, layout.KeyHint{Key: "?", Description: "Hint"})
	}
	return append(keys, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (s *SolveScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.session = msg.Session
		s.started = time.Now()
		if msg.Session.Created {
			s.notice = "Created " + msg.Session.SolutionPath
		}
		return s, tick()

	case tickMsg:
		if s.session == nil {
			return s, nil
		}
		s.elapsed = time.Time(msg).Sub(s.started)
		return s, tick()

	case spinner.TickMsg:
		if s.busy == "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case gradedMsg:
		s.busy, s.cancel = "", nil
		if msg.Err != nil {
			if !errors.Is(msg.Err, context.Canceled) {
				s.errMsg = msg.Err.Error()
			}
			return s, nil
		}
		s.result = msg.Result
		s.session.History = append([]store.Attempt{msg.Result.Attempt}, s.session.History...)
		if a := msg.Result.Award; a != nil {
			badge := progress.Badge(progress.State{TotalXP: a.TotalXP, Level: a.Level, Streak: a.Streak})
			return s, func() tea.Msg { return screen.StatusMsg(badge) }
		}
		return s, nil

	case hintMsg:
		s.busy, s.cancel = "", nil
		if msg.Err != nil {
			if !errors.Is(msg.Err, context.Canceled) {
				s.errMsg = msg.Err.Error()
			}
			return s, nil
		}
		s.hint = msg.Hint
		return s, nil

	case resetMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.notice = "Solution reset to the starter code."
			s.result, s.hint = nil, nil
		}
		return s, nil

	case editorDoneMsg:
		if msg.Err != nil {
			s.errMsg = "editor: " + msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SolveScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.busy != "" {
		if key == "esc" && s.cancel != nil {
			s.cancel()
		}
		return s, nil
	}

	switch key {
	case "esc", "q":
		return s, router.Back()
	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
		return s, nil
	case "down", "j":
		s.scroll++
		return s, nil
	}

	if s.session == nil {
		return s, nil
	}
	s.errMsg, s.notice = "", ""

	switch key {
	case "enter", "c":
		return s, s.startGrading()
	case "r":
		return s, func() tea.Msg {
			_, err := s.svc.Reset(context.Background(), s.problemID)
			return resetMsg{Err: err}
		}
	case "e":
		return s, s.openEditor()
	case "?":
		if s.hints != nil {
			return s, s.startHint()
		}
	}
	return s, nil
}

func (s *SolveScreen) startGrading() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.busy, s.cancel = "Running tests", cancel
	s.result, s.hint = nil, nil

	elapsed := time.Since(s.started)
	grade := func() tea.Msg {
		defer cancel()
		res, err := s.svc.Submit(ctx, s.problemID, elapsed)
		return gradedMsg{Result: res, Err: err}
	}
	return tea.Batch(grade, s.spinner.Tick)
}

func (s *SolveScreen) startHint() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.busy, s.cancel = "Thinking of a hint", cancel

	p := s.session.Problem
	ask := func() tea.Msg {
		defer cancel()
		src, err := s.ws.ReadSolution(p)
		if err != nil {
			return hintMsg{Err: err}
		}
		last, err := s.attempts.LastFailure(ctx, p.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return hintMsg{Err: err}
		}
		h, err := s.hints.Generate(ctx, hints.InputFor(p, src, last))
		return hintMsg{Hint: h, Err: err}
	}
	return tea.Batch(ask, s.spinner.Tick)
}

// openEditor suspends the UI and opens the solution in $VISUAL or $EDITOR.
func (s *SolveScreen) openEditor() tea.Cmd {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	args := strings.Fields(editor)
	c := exec.Command(args[0], append(args[1:], s.session.SolutionPath)...)
	return tea.ExecProcess(c, func(err error) tea.Msg { return editorDoneMsg{Err: err} })
}

func (s *SolveScreen) View(width, height int) string {
	if s.session == nil {
		if s.errMsg != "" {
			return layout.RenderNotice("Error: "+s.errMsg, theme.Incorrect, width)
		}
		return layout.RenderNotice("Loading problem…", theme.Hint, width)
	}

	inner := min(width-4, 100)
	wrap := lipgloss.NewStyle().Width(inner)
	p := s.session.Problem

	var sections []string

	status := fmt.Sprintf("⏱  %s", formatElapsed(s.elapsed))
	if p.Solved || (s.result != nil && s.result.Verdict.Success) {
		status += "   " + theme.Correct.Render("✔ solved")
	}
	sections = append(sections,
		theme.Title.Render(p.Title)+"   "+theme.Hint.Render(status),
		theme.Body.Width(inner).Render(p.Instructions),
		theme.Hint.Render("Edit: "+s.session.SolutionPath),
	)

	if s.busy != "" {
		sections = append(sections, s.spinner.View()+" "+s.busy+"...")
	}
	if s.result != nil {
		sections = append(sections, renderResult(s.result, inner))
	}
	if s.hint != nil {
		sections = append(sections, wrap.Foreground(theme.Secondary).Render(s.hint.String()))
	}
	if s.notice != "" {
		sections = append(sections, theme.Hint.Render(s.notice))
	}
	if s.errMsg != "" {
		sections = append(sections, wrap.Foreground(theme.Error).Render("Error: "+s.errMsg))
	}
	if n := len(s.session.History); n > 0 {
		sections = append(sections, theme.Hint.Render(fmt.Sprintf("%d attempt(s) so far", n)))
	}

	lines := strings.Split(strings.Join(sections, "\n\n"), "\n")
	if s.scroll > len(lines)-1 {
		s.scroll = max(len(lines)-1, 0)
	}
	lines = lines[s.scroll:]
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}

func renderResult(r *practice.Result, width int) string {
	v := r.Verdict
	style := theme.Incorrect
	if v.Success {
		style = theme.Correct
	}
	out := style.Render(strings.TrimPrefix(v.Diagnostic, "\n"))
	if !v.Success {
		out = theme.Code.Width(width).Render(strings.TrimPrefix(v.Diagnostic, "\n"))
	}
	if r.Award != nil {
		out += lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(progress.RewardMessage(*r.Award))
	}
	return out
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
