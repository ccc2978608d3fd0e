package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drill/internal/screen"
)

type fakeScreen struct {
	name    string
	inits   int
	resumes int
	got     []tea.Msg
}

type initMsg struct{ name string }

func (f *fakeScreen) Init() tea.Cmd {
	f.inits++
	return func() tea.Msg { return initMsg{f.name} }
}

func (f *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	f.got = append(f.got, msg)
	return f, nil
}

func (f *fakeScreen) View(w, h int) string { return f.name }
func (f *fakeScreen) Title() string        { return f.name }

type resumable struct{ fakeScreen }

func (r *resumable) Resume() tea.Cmd {
	r.resumes++
	return nil
}

func TestOpenAndBack(t *testing.T) {
	list := &resumable{fakeScreen: fakeScreen{name: "problems"}}
	r := New(list)

	solve := &fakeScreen{name: "solve"}
	cmd := r.Update(Open(solve)())
	require.NotNil(t, cmd)
	assert.Equal(t, initMsg{"solve"}, cmd())
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "solve", r.View(80, 24))

	r.Update(Back()())
	assert.Equal(t, 1, r.Depth())
	assert.Same(t, list, r.Active())
	assert.Equal(t, 1, list.resumes)
}

func TestBackKeepsRoot(t *testing.T) {
	root := &fakeScreen{name: "problems"}
	r := New(root)

	assert.Nil(t, r.Update(BackMsg{}))
	assert.Equal(t, 1, r.Depth())
	assert.Same(t, root, r.Active())
}

func TestMessagesReachOnlyActive(t *testing.T) {
	root := &fakeScreen{name: "problems"}
	r := New(root)
	top := &fakeScreen{name: "stats"}
	r.Update(OpenMsg{Screen: top})

	r.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Empty(t, root.got)
	require.Len(t, top.got, 1)
	assert.Equal(t, tea.WindowSizeMsg{Width: 100, Height: 30}, top.got[0])
}
