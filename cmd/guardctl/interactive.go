package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/modguard/config"
	"github.com/wippyai/modguard/guard"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxEvents = 8

type focus int

const (
	focusInput focus = iota
	focusTable
)

// interactiveModel drives the guard from the bubbletea update loop, which
// is the only goroutine touching it.
type interactiveModel struct {
	err      error
	session  *session
	cfg      config.Config
	wasmFile string
	input    textinput.Model
	entries  []guard.Entry
	present  map[string]bool
	events   []guard.Event
	selected int
	focus    focus
}

type openedMsg struct {
	err     error
	session *session
}

func newInteractiveModel(cfg config.Config, wasmFile string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "module key"
	ti.Prompt = "key: "
	ti.Width = 40
	ti.Focus()

	return &interactiveModel{
		cfg:      cfg,
		wasmFile: wasmFile,
		input:    ti,
		focus:    focusInput,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.open)
}

func (m *interactiveModel) open() tea.Msg {
	// The observer is attached once the session arrives in Update.
	s, err := newSession(context.Background(), m.cfg, m.wasmFile, nil, true)
	return openedMsg{session: s, err: err}
}

func (m *interactiveModel) OnGuardEvent(e guard.Event) {
	m.events = append(m.events, e)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.session.guard.Subscribe(m)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.session != nil {
				_ = m.session.Close(context.Background())
			}
			return m, tea.Quit

		case "tab":
			if m.focus == focusInput && len(m.entries) > 0 {
				m.focus = focusTable
				m.input.Blur()
			} else {
				m.focus = focusInput
				return m, m.input.Focus()
			}
			return m, nil
		}

		if m.session == nil {
			return m, nil
		}

		if m.focus == focusTable {
			m.updateTable(msg)
			return m, nil
		}

		switch msg.String() {
		case "enter":
			m.apply(opAcquire, m.input.Value())
			m.input.SetValue("")
			return m, nil
		case "ctrl+r":
			m.apply(opRelease, m.input.Value())
			m.input.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) updateTable(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}
	case "+", "a":
		if m.selected < len(m.entries) {
			m.apply(opAcquire, m.entries[m.selected].Key)
		}
	case "-", "r":
		if m.selected < len(m.entries) {
			m.apply(opRelease, m.entries[m.selected].Key)
		}
	}
}

func (m *interactiveModel) apply(kind opKind, raw string) {
	key, payload, _ := strings.Cut(strings.TrimSpace(raw), "=")
	if kind == opRelease {
		payload = ""
	}
	m.err = m.session.apply(context.Background(), op{kind: kind, key: key, payload: payload})

	m.refresh(context.Background())
	if m.selected >= len(m.entries) {
		m.selected = max(len(m.entries)-1, 0)
	}
	if len(m.entries) == 0 {
		m.focus = focusInput
		m.input.Focus()
	}
}

// refresh snapshots the table and store presence. View renders from the
// snapshot, so redraws never reach the store.
func (m *interactiveModel) refresh(ctx context.Context) {
	m.entries = m.session.guard.Entries()
	m.present = make(map[string]bool, len(m.entries))
	for _, e := range m.entries {
		m.present[e.Key] = m.session.inStore(ctx, e.Key)
	}
}

func (m *interactiveModel) View() string {
	if m.session == nil {
		if m.err != nil {
			return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
		}
		return "Opening store..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Module Guard"))
	b.WriteString(fmt.Sprintf(" store %s, policy %s", m.session.backend, m.session.guard.Policy()))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(helpStyle.Render("no active modules"))
		b.WriteString("\n")
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("%-24s %s  in store: %t", e.Key, countStyle.Render(fmt.Sprintf("%d", e.Count)), m.present[e.Key])
		if m.focus == focusTable && i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + keyStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, e := range m.events {
			b.WriteString("  ")
			b.WriteString(renderEvent(e))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.focus == focusTable {
		b.WriteString(helpStyle.Render("↑/↓ select • +/a acquire • -/r release • tab input • esc quit"))
	} else {
		b.WriteString(helpStyle.Render("enter acquire • ctrl+r release • tab table • esc quit"))
	}

	return b.String()
}

func renderEvent(e guard.Event) string {
	text := fmt.Sprintf("%-22s %s", e.Type, e.Key)
	switch e.Type {
	case guard.EventUnmatchedRelease, guard.EventExternalRegistration, guard.EventExternalRemoval:
		return warnStyle.Render(text)
	case guard.EventStoreFault:
		return errorStyle.Render(fmt.Sprintf("%s: %v", text, e.Err))
	default:
		return eventStyle.Render(fmt.Sprintf("%s (%d)", text, e.Count))
	}
}

func runInteractive(cfg config.Config, wasmFile string) error {
	p := tea.NewProgram(newInteractiveModel(cfg, wasmFile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
