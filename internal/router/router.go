// Package router keeps the stack of open screens.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drill/internal/screen"
)

// OpenMsg puts Screen on top of the stack.
type OpenMsg struct{ Screen screen.Screen }

// BackMsg closes the top screen.
type BackMsg struct{}

// Open returns a command that opens s.
func Open(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return OpenMsg{Screen: s} }
}

// Back returns a command that closes the current screen.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

// Router routes messages to the top of a screen stack. The bottom screen
// is never closed.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Active is the screen on top.
func (r *Router) Active() screen.Screen { return r.stack[len(r.stack)-1] }

// Depth is the number of open screens.
func (r *Router) Depth() int { return len(r.stack) }

// Update handles OpenMsg and BackMsg and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OpenMsg:
		r.stack = append(r.stack, msg.Screen)
		return msg.Screen.Init()
	case BackMsg:
		if len(r.stack) == 1 {
			return nil
		}
		r.stack[len(r.stack)-1] = nil
		r.stack = r.stack[:len(r.stack)-1]
		// The uncovered screen may hold stale data.
		if res, ok := r.Active().(screen.Resumer); ok {
			return res.Resume()
		}
		return nil
	}

	next, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// View renders the active screen into width x height.
func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
