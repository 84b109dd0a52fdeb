package tui

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/tui/components"
	"nathanbeddoewebdev/transip-dns/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type configSavedMsg struct {
	key     string
	cleared bool
}

type configSaveErrorMsg struct {
	err error
}

// configModel lists every config key grouped by section. Enter edits a
// key (or flips a toggle), x resets it to its default. Every change is
// written to disk immediately.
type configModel struct {
	cfg  *config.Config
	path string
	keys []config.KeySpec
	save func(*config.Config) error

	cursor  int
	editing bool
	editor  textinput.Model

	width  int
	height int

	status string
	level  components.Level
}

// RunConfigView starts the interactive config editor.
func RunConfigView() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path, err := config.Path()
	if err != nil {
		return err
	}

	m := newConfigModel(cfg, path, (*config.Config).Save)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newConfigModel(cfg *config.Config, path string, save func(*config.Config) error) configModel {
	return configModel{cfg: cfg, path: path, keys: config.Keys, save: save}
}

func (m configModel) Init() tea.Cmd {
	return nil
}

func (m configModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
		return m.updateList(msg)

	case configSavedMsg:
		m.editing = false
		m.status, m.level = msg.key+" saved", components.LevelSuccess
		if msg.cleared {
			m.status = msg.key + " reset to default"
		}
		return m, nil

	case configSaveErrorMsg:
		m.status, m.level = "Error: "+msg.err.Error(), components.LevelError
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m configModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.keys) == 0 {
		if k := msg.String(); k == "q" || k == "esc" || k == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	spec := m.keys[m.cursor]

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.keys)-1)
	case "x", "delete", "backspace":
		return m.apply(spec, "")
	case "enter", "e", " ":
		if spec.Toggle {
			next := "true"
			if spec.Get(m.cfg) != "" {
				next = "false"
			}
			return m.apply(spec, next)
		}
		ti := textinput.New()
		ti.SetValue(spec.Get(m.cfg))
		ti.Placeholder = spec.Default
		ti.Width = 36
		ti.Focus()
		m.editor, m.editing, m.status = ti, true, ""
		return m, textinput.Blink
	}
	return m, nil
}

func (m configModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		return m.apply(m.keys[m.cursor], strings.TrimSpace(m.editor.Value()))
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// apply validates value into the in-memory config and, when valid, saves it.
func (m configModel) apply(spec config.KeySpec, value string) (tea.Model, tea.Cmd) {
	if err := spec.Set(m.cfg, value); err != nil {
		m.status, m.level = "Error: "+err.Error(), components.LevelError
		return m, nil
	}
	cfg, save := m.cfg, m.save
	cleared := value == ""
	return m, func() tea.Msg {
		if err := save(cfg); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{key: spec.Name, cleared: cleared}
	}
}

func (m configModel) View() string {
	keys := []components.KeyBinding{
		{Key: "j/k", Desc: "move"},
		{Key: "enter", Desc: "edit"},
		{Key: "x", Desc: "reset"},
		{Key: "q", Desc: "quit"},
	}
	if m.editing {
		keys = []components.KeyBinding{{Key: "enter", Desc: "save"}, {Key: "esc", Desc: "cancel"}}
	}
	return components.Frame{
		Width:       m.width,
		Height:      m.height,
		View:        "config",
		Context:     m.path,
		Keys:        keys,
		Status:      m.status,
		StatusLevel: m.level,
	}.Render(m.renderContent)
}

func (m configModel) renderContent(width, height int) string {
	if len(m.keys) == 0 {
		return components.Centered(width, height, styles.MutedText.Render("No configuration keys defined."))
	}

	const labelWidth = 20
	var rows []string
	section := ""
	for i, spec := range m.keys {
		if spec.Section != section {
			if section != "" {
				rows = append(rows, "")
			}
			section = spec.Section
			rows = append(rows, styles.Subtitle.Render(strings.ToUpper(section)))
		}

		selected := i == m.cursor
		cursor := "  "
		if selected {
			cursor = styles.Cursor.Render("> ")
		}

		switch {
		case selected && m.editing:
			rows = append(rows, cursor+components.Field(labelWidth, spec.Name, m.editor.View()))
		case selected:
			rows = append(rows,
				cursor+components.Field(labelWidth, spec.Name, m.renderValue(spec, true)),
				"    "+styles.MutedText.Italic(true).Render(spec.Description),
			)
		default:
			rows = append(rows, cursor+styles.MutedText.Width(labelWidth).Render(spec.Name)+m.renderValue(spec, false))
		}
	}

	card := styles.Card.Width(min(max(width-8, 48), 72)).Render(strings.Join(rows, "\n"))
	return components.Centered(width, height,
		lipgloss.JoinVertical(lipgloss.Center, styles.Title.Render("Configuration"), "", card))
}

// renderValue shows the stored value, or the effective default when unset.
func (m configModel) renderValue(spec config.KeySpec, selected bool) string {
	v := spec.Get(m.cfg)
	if v == "" {
		if spec.Default == "" {
			return styles.MutedText.Render("(not set)")
		}
		return styles.MutedText.Render(spec.Default + " (default)")
	}
	if spec.Toggle {
		return styles.SuccessText.Render("on")
	}
	if selected {
		return styles.Value.Bold(true).Render(v)
	}
	return styles.Value.Render(v)
}
