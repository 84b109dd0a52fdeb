// Package components holds render-only building blocks shared by the
// full-window views.
package components

import (
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Level selects how a status line is colored.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// KeyBinding is one entry of the key hint bar.
type KeyBinding struct {
	Key  string
	Desc string
}

// Frame is the chrome around a full-window view:
//
//	transip-dns > watch                     example.com
//	───────────────────────────────────────────────────
//	                    body
//	status
//	───────────────────────────────────────────────────
//	q stop watching
type Frame struct {
	Width, Height int

	// View names the current screen in the breadcrumb.
	View string

	// Context is shown right-aligned in the top bar.
	Context string

	Keys []KeyBinding

	Status      string
	StatusLevel Level
}

// Render lays out the frame around body. body receives the space left
// between the bars. Nothing is drawn until the terminal size is known.
func (f Frame) Render(body func(width, height int) string) string {
	if f.Width < 10 || f.Height == 0 {
		return ""
	}

	top := f.topBar()
	bottom := f.keyBar()
	status := f.statusLine()

	height := max(f.Height-lipgloss.Height(top)-lipgloss.Height(bottom)-lipgloss.Height(status), 1)

	parts := []string{top, body(f.Width, height)}
	if status != "" {
		parts = append(parts, status)
	}
	if bottom != "" {
		parts = append(parts, bottom)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (f Frame) topBar() string {
	left := styles.Brand.Render("transip-dns")
	if f.View != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(f.View)
	}
	right := styles.Subtitle.Render(f.Context)

	gap := max(f.Width-4-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return styles.Bar.
		Width(f.Width).
		BorderBottom(true).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (f Frame) keyBar() string {
	if len(f.Keys) == 0 {
		return ""
	}
	hints := make([]string, len(f.Keys))
	for i, k := range f.Keys {
		hints[i] = styles.Key.Render(k.Key) + " " + styles.KeyDesc.Render(k.Desc)
	}
	return styles.Bar.
		Width(f.Width).
		BorderTop(true).
		Render(strings.Join(hints, "   "))
}

func (f Frame) statusLine() string {
	if f.Status == "" {
		return ""
	}
	style := styles.MutedText
	switch f.StatusLevel {
	case LevelSuccess:
		style = styles.SuccessText
	case LevelError:
		style = styles.ErrorText
	}
	return lipgloss.NewStyle().Width(f.Width).Padding(0, 2).Render(style.Render(f.Status))
}

// Centered places content in the middle of a width x height box.
func Centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Field renders a "label  value" row with the label padded to labelWidth.
func Field(labelWidth int, label, value string) string {
	return styles.Label.Width(labelWidth).Render(label) + value
}
