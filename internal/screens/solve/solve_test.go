package solve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drill/internal/grader"
	"github.com/abhisek/drill/internal/practice"
	"github.com/abhisek/drill/internal/progress"
	"github.com/abhisek/drill/internal/router"
	"github.com/abhisek/drill/internal/screen"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpened(t *testing.T) *SolveScreen {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "drill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ws := workspace.New(t.TempDir())
	require.NoError(t, ws.Init())

	g, err := grader.New(grader.DefaultConfig(ws.SolutionsDir), nil)
	require.NoError(t, err)

	id, err := st.ProblemRepo().Upsert(context.Background(), store.ProblemInput{
		Title:        "001 Adder",
		Filename:     "Adder.py",
		Instructions: "Write add(a, b).",
		SolutionStub: "def add(a, b):\n    pass\n",
		TestCode:     "from exercise import add\n",
	})
	require.NoError(t, err)

	s := New(id, practice.NewService(st, g, ws), st.AttemptRepo(), ws, nil)
	msg := s.Init()()
	opened, ok := msg.(openedMsg)
	require.True(t, ok)
	require.NoError(t, opened.Err)

	s.Update(msg)
	require.NotNil(t, s.session)
	return s
}

func TestInitOpensProblem(t *testing.T) {
	s := newOpened(t)

	assert.Equal(t, "001 Adder", s.Title())
	assert.True(t, s.session.Created)
	assert.FileExists(t, s.session.SolutionPath)

	view := s.View(100, 40)
	assert.Contains(t, view, "Write add(a, b).")
	assert.Contains(t, view, "Adder.py")
}

func TestKeyHintsWithoutHintService(t *testing.T) {
	s := newOpened(t)
	for _, h := range s.KeyHints() {
		assert.NotEqual(t, "?", h.Key)
	}
}

func TestEscPops(t *testing.T) {
	s := newOpened(t)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.BackMsg)
	assert.True(t, ok)
}

func TestGradedAwardUpdatesStatus(t *testing.T) {
	s := newOpened(t)

	award := progress.Award{XP: 50, TotalXP: 50, Level: 1, Streak: 1}
	_, cmd := s.Update(gradedMsg{Result: &practice.Result{
		Verdict: grader.Verdict{Success: true, Kind: grader.KindPassed, Diagnostic: "✅ All tests passed!"},
		Attempt: store.Attempt{ID: 1, Success: true},
		Award:   &award,
	}})
	require.NotNil(t, cmd)
	status, ok := cmd().(screen.StatusMsg)
	require.True(t, ok)
	assert.Equal(t, progress.Badge(progress.State{TotalXP: 50, Level: 1, Streak: 1}), string(status))

	assert.Len(t, s.session.History, 1)
	view := s.View(100, 40)
	assert.Contains(t, view, "All tests passed!")
	assert.Contains(t, view, "✔ solved")
}

func TestGradedCancelIsSilent(t *testing.T) {
	s := newOpened(t)
	s.busy = "Running tests"

	_, cmd := s.Update(gradedMsg{Err: context.Canceled})
	assert.Nil(t, cmd)
	assert.Empty(t, s.busy)
	assert.Empty(t, s.errMsg)
}

func TestBusyIgnoresKeys(t *testing.T) {
	s := newOpened(t)
	cancelled := false
	s.busy = "Running tests"
	s.cancel = func() { cancelled = true }

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	assert.Nil(t, cmd)
	assert.False(t, cancelled)

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.True(t, cancelled)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", formatElapsed(0))
	assert.Equal(t, "01:05", formatElapsed(65*time.Second))
	assert.Equal(t, "12:00", formatElapsed(12*time.Minute+300*time.Millisecond))
}
