// Package layout composes the header, body and footer of the terminal UI.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drill/internal/ui/theme"
)

// Smallest terminal the UI draws into.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key: action" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether width x height is below the minimum.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("drill needs at least %dx%d\n(now %dx%d)", MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Body.Align(lipgloss.Center).Render(msg))
}

// RenderHeader draws "drill", the screen title centered, and status on
// the right.
func RenderHeader(title, status string, width int) string {
	inner := max(width-theme.Header.GetHorizontalFrameSize(), 0)
	brand := theme.Selected.Render("drill")
	badge := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	side := max(lipgloss.Width(brand), lipgloss.Width(badge))
	mid := max(inner-2*side, 0)
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.PlaceHorizontal(side, lipgloss.Left, brand),
		lipgloss.PlaceHorizontal(mid, lipgloss.Center, theme.Body.Bold(true).Render(title)),
		lipgloss.PlaceHorizontal(side, lipgloss.Right, badge),
	)
	return theme.Header.Width(width).MaxHeight(1).Render(row)
}

// RenderFooter lists key hints separated by dots.
func RenderFooter(hints []KeyHint, width int) string {
	key := theme.Body.Bold(true)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + h.Description
	}
	return theme.Footer.Width(width).MaxHeight(1).Render(strings.Join(parts, "  ·  "))
}

// RenderFrame stacks header, content and footer, giving content whatever
// height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}

// RenderNotice centers a placeholder line, such as a loading or error
// message, two rows into the body.
func RenderNotice(text string, style lipgloss.Style, width int) string {
	return style.Width(width).Align(lipgloss.Center).PaddingTop(2).Render(text)
}
