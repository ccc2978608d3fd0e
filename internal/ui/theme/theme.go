// Package theme holds the colors and styles shared by every screen.
package theme

import "charm.land/lipgloss/v2"

// Palette, tuned for dark terminals.
var (
	Primary   = lipgloss.Color("#7AA2F7")
	Secondary = lipgloss.Color("#73DACA")
	Accent    = lipgloss.Color("#FF9E64")
	Success   = lipgloss.Color("#9ECE6A")
	Error     = lipgloss.Color("#F7768E")
	Warning   = lipgloss.Color("#E0AF68")
	Text      = lipgloss.Color("#C0CAF5")
	TextDim   = lipgloss.Color("#737AA2")
	Surface   = lipgloss.Color("#24283B")
	Border    = lipgloss.Color("#3B4261")
)

var (
	Title    = lipgloss.NewStyle().Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
)

// Bar is the one-line strip used for both header and footer.
var (
	Header = lipgloss.NewStyle().Background(Surface).Foreground(Text).Padding(0, 1)
	Footer = Header.Foreground(TextDim)
)

// List rows and outcome marks.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = Body
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Due        = lipgloss.NewStyle().Foreground(Warning)
)

// Code is a left-ruled block for source and test output.
var Code = lipgloss.NewStyle().
	Foreground(Text).
	BorderStyle(lipgloss.ThickBorder()).
	BorderLeft(true).
	BorderForeground(Border).
	PaddingLeft(1)

// Meter cells.
var (
	MeterFull  = lipgloss.NewStyle().Foreground(Secondary)
	MeterEmpty = lipgloss.NewStyle().Foreground(Border)
)
