package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drill/internal/ui/theme"
)

// Meter is a one-line gauge of Value out of Max.
type Meter struct {
	Label string
	Value int
	Max   int
	Width int
	// ShowRatio appends "Value/Max" after the gauge.
	ShowRatio bool
}

// View renders the meter in Width cells. The gauge keeps at least four
// cells even when the label is long.
func (m Meter) View() string {
	var label, ratio string
	if m.Label != "" {
		label = theme.Body.Render(m.Label) + " "
	}
	if m.ShowRatio {
		ratio = theme.Hint.Render(fmt.Sprintf(" %d/%d", m.Value, m.Max))
	}

	cells := max(m.Width-lipgloss.Width(label)-lipgloss.Width(ratio), 4)
	full := 0
	if m.Max > 0 {
		full = min(cells*max(m.Value, 0)/m.Max, cells)
	}
	return label +
		theme.MeterFull.Render(strings.Repeat("█", full)) +
		theme.MeterEmpty.Render(strings.Repeat("░", cells-full)) +
		ratio
}
