package tui

import (
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/scheduler"
	"nathanbeddoewebdev/transip-dns/internal/publicip"
	"nathanbeddoewebdev/transip-dns/internal/tui/components"
	"nathanbeddoewebdev/transip-dns/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// historySize is the number of past ticks kept on screen.
const historySize = 8

// --- Watch messages ---

// WatchEventMsg carries a scheduler event into the watch view.
type WatchEventMsg scheduler.Event

// WatchStoppedMsg tells the watch view that the scheduler has returned.
type WatchStoppedMsg struct{}

// WatchOptions describes what the watch view is showing.
type WatchOptions struct {
	Domains  []string
	Names    []string
	Interval time.Duration
	Families string

	// Stop is called once when the user quits; it should cancel the scheduler.
	Stop func()
}

// --- Watch model ---

type watchModel struct {
	opts WatchOptions

	spinner spinner.Model
	history []scheduler.Event
	started time.Time

	// lastAddresses is the newest non-empty address set; failed ticks
	// leave it alone.
	lastAddresses publicip.Addresses
	now     time.Time

	stopping bool

	width  int
	height int
}

type watchClockMsg time.Time

// NewWatchProgram returns the full-window watch status program. Deliver
// scheduler events with Send(WatchEventMsg(ev)) and WatchStoppedMsg{} once
// the scheduler returns.
func NewWatchProgram(opts WatchOptions) *tea.Program {
	return tea.NewProgram(newWatchModel(opts, time.Now()), tea.WithAltScreen())
}

func newWatchModel(opts WatchOptions, now time.Time) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Cursor

	return watchModel{
		opts:    opts,
		spinner: s,
		started: now,
		now:     now,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, clockTick())
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchClockMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.stopping {
				m.stopping = true
				if m.opts.Stop != nil {
					m.opts.Stop()
				}
			}
			return m, nil
		}

	case WatchEventMsg:
		if !msg.Addresses.Families().Empty() {
			m.lastAddresses = msg.Addresses
		}
		m.history = append([]scheduler.Event{scheduler.Event(msg)}, m.history...)
		if len(m.history) > historySize {
			m.history = m.history[:historySize]
		}
		return m, nil

	case WatchStoppedMsg:
		return m, tea.Quit

	case watchClockMsg:
		m.now = time.Time(msg)
		return m, clockTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m watchModel) View() string {
	frame := components.Frame{
		Width:   m.width,
		Height:  m.height,
		View:    "watch",
		Context: strings.Join(m.opts.Domains, ", "),
		Keys:    []components.KeyBinding{{Key: "q", Desc: "stop watching"}},
	}
	if m.stopping {
		frame.Status = "Stopping after the current cycle..."
	}
	return frame.Render(m.renderContent)
}

func (m watchModel) renderContent(width, height int) string {
	cardWidth := min(max(width-8, 40), 88)
	const labelWidth = 14

	names := "all"
	if len(m.opts.Names) > 0 {
		names = strings.Join(m.opts.Names, ", ")
	}

	summary := []string{
		components.Field(labelWidth, "records", styles.Value.Render(names)),
		components.Field(labelWidth, "families", styles.Value.Render(m.opts.Families)),
		components.Field(labelWidth, "interval", styles.Value.Render(m.opts.Interval.String())),
		components.Field(labelWidth, "uptime", styles.Value.Render(m.now.Sub(m.started).Truncate(time.Second).String())),
	}

	if len(m.history) == 0 {
		summary = append(summary, "", m.spinner.View()+" "+styles.MutedText.Render("running first cycle..."))
	} else {
		next := m.history[0].At.Add(m.opts.Interval).Sub(m.now).Truncate(time.Second)
		address := styles.MutedText.Render("not resolved yet")
		if !m.lastAddresses.Families().Empty() {
			address = styles.Value.Bold(true).Render(m.lastAddresses.String())
		}
		summary = append(summary,
			components.Field(labelWidth, "address", address),
			components.Field(labelWidth, "next check", m.spinner.View()+" "+styles.MutedText.Render("in "+max(next, 0).String())),
		)
	}

	card := styles.Card.Width(cardWidth).Render(strings.Join(summary, "\n"))
	sections := []string{styles.Title.Render("Watching public address"), "", card}

	if len(m.history) > 0 {
		sections = append(sections, "", m.renderHistory(cardWidth))
	}

	return components.Centered(width, height, lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m watchModel) renderHistory(width int) string {
	rows := make([]string, 0, len(m.history))
	for _, ev := range m.history {
		outcome := ev.Outcome()
		line := fmt.Sprintf("%s  %s  %s",
			styles.MutedText.Render(ev.At.Format("15:04:05")),
			styles.StatusStyle(outcome).Width(10).Render(outcome),
			ev.Detail(),
		)
		rows = append(rows, ansi.Truncate(line, width, "…"))
	}
	return strings.Join(rows, "\n")
}
