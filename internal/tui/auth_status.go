package tui

import (
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/services/auth"
	"nathanbeddoewebdev/transip-dns/internal/tui/components"
	"nathanbeddoewebdev/transip-dns/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Auth status model ---

type authStatusModel struct {
	stored auth.Stored

	width  int
	height int
}

// RunAuthStatus starts the full-window view of the stored credentials.
func RunAuthStatus(store auth.Store) error {
	m := authStatusModel{stored: auth.Inspect(store)}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m authStatusModel) View() string {
	frame := components.Frame{
		Width:   m.width,
		Height:  m.height,
		View:    "auth status",
		Context: auth.ServiceName,
		Keys:    []components.KeyBinding{{Key: "q", Desc: "quit"}},
	}
	if m.stored.Err != nil {
		frame.Status = "keychain error: " + m.stored.Err.Error()
		frame.StatusLevel = components.LevelError
	}
	return frame.Render(m.renderContent)
}

func (m authStatusModel) renderContent(width, height int) string {
	card := styles.Card.Width(52).Render(strings.Join(statusRows(m.stored), "\n"))
	return components.Centered(width, height,
		lipgloss.JoinVertical(lipgloss.Center, styles.Title.Render("TransIP Credentials"), "", card))
}

func statusRows(st auth.Stored) []string {
	const labelWidth = 16

	login := styles.MutedText.Render("not stored")
	if st.HasLogin {
		login = styles.Value.Render(st.Login)
	}

	key := styles.MutedText.Render("not stored")
	if st.HasPrivateKey {
		key = styles.SuccessText.Render("stored")
	}

	rows := []string{
		components.Field(labelWidth, "login", login),
		components.Field(labelWidth, "private key", key),
	}
	if !st.Complete() {
		rows = append(rows, "", styles.MutedText.Italic(true).Render("run `transip-dns auth login` to store credentials"))
	}
	return rows
}
