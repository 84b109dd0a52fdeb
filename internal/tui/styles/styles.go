// Package styles holds the palette and lipgloss styles used by terminal
// output: the full-window views and the record tables.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	White   = lipgloss.Color("#E2E2E2")
	Gray    = lipgloss.Color("#888888")
	Muted   = lipgloss.Color("#555555")
	DimGray = lipgloss.Color("#444444")
	Blue    = lipgloss.Color("#5FAFFF")
	Green   = lipgloss.Color("#5FD787")
	Yellow  = lipgloss.Color("#FFD787")
	Red     = lipgloss.Color("#FF8787")
)

// Text.
var (
	Brand       = lipgloss.NewStyle().Bold(true).Foreground(Blue)
	Title       = lipgloss.NewStyle().Bold(true).Foreground(White)
	Subtitle    = lipgloss.NewStyle().Foreground(Gray)
	Label       = lipgloss.NewStyle().Bold(true).Foreground(Gray)
	Value       = lipgloss.NewStyle().Foreground(White)
	MutedText   = lipgloss.NewStyle().Foreground(Muted)
	ErrorText   = lipgloss.NewStyle().Bold(true).Foreground(Red)
	SuccessText = lipgloss.NewStyle().Bold(true).Foreground(Green)
)

// Chrome.
var (
	// Bar is the top and bottom rule of a full-window view. Callers pick
	// which side the rule is drawn on.
	Bar = lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(DimGray)

	// Card is a rounded panel around the main content of a view.
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(DimGray).
		Padding(1, 2)

	// Key and KeyDesc render one key hint, e.g. "q stop watching".
	Key     = lipgloss.NewStyle().Bold(true).Foreground(Blue)
	KeyDesc = lipgloss.NewStyle().Foreground(Muted)

	// Cursor marks the selected row of a list.
	Cursor = lipgloss.NewStyle().Foreground(Blue)
)

// Record tables.
var (
	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(Gray).Padding(0, 1)
	TableCell   = lipgloss.NewStyle().Foreground(White).Padding(0, 1)
	TableBorder = lipgloss.NewStyle().Foreground(DimGray)
)

// StatusStyle colors a watch tick outcome: applied in green, partial in
// yellow, error in red and everything else gray.
func StatusStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "applied":
		return lipgloss.NewStyle().Bold(true).Foreground(Green)
	case "partial":
		return lipgloss.NewStyle().Bold(true).Foreground(Yellow)
	case "error":
		return lipgloss.NewStyle().Foreground(Red)
	}
	return lipgloss.NewStyle().Foreground(Gray)
}
