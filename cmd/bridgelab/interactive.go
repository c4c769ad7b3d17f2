package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxOutputLines = 16

// action is one thing the lab can push across the bridge.
type action struct {
	name string
	run  func(l *lab) error
}

var actions = []action{
	{"event: Play", func(l *lab) error { return l.session.Play() }},
	{"event: Pause", func(l *lab) error { return l.session.Pause() }},
	{"event: Stop", func(l *lab) error { return l.session.Stop() }},
	{"event: NextTrack", func(l *lab) error { return l.session.NextTrack() }},
	{"event: PreviousTrack", func(l *lab) error { return l.session.PreviousTrack() }},
	{"event: ToggleShuffle", func(l *lab) error { return l.session.ToggleShuffle() }},
	{"event: ToggleRepeat", func(l *lab) error { return l.session.ToggleRepeat() }},
	{"event: Seek 95s", func(l *lab) error { return l.session.Seek(95000) }},
	{"command: Enable", dispatchAction(`{"type":"Enable"}`)},
	{"command: Disable", dispatchAction(`{"type":"Disable"}`)},
	{"command: PlayState Playing", dispatchAction(`{"type":"PlayState","payload":{"status":"Playing"}}`)},
	{"command: sample Metadata", dispatchAction(`{"type":"Metadata","payload":{"title":"Digital Love","artist":"Daft Punk","album":"Discovery","coverUrl":"https://img/discovery.jpg"}}`)},
	{"command: custom JSON…", nil}, // switches to the input field
}

func dispatchAction(command string) func(*lab) error {
	return func(l *lab) error {
		l.dispatch(command)
		return nil
	}
}

type labModel struct {
	lab      *lab
	outCh    chan string
	output   []string
	err      error
	input    textinput.Model
	selected int
	typing   bool
}

func newLabModel(l *lab) *labModel {
	ti := textinput.New()
	ti.Placeholder = `{"type":"Enable"}`
	ti.CharLimit = 512
	return &labModel{
		lab:   l,
		outCh: make(chan string, 64),
		input: ti,
	}
}

// writer returns the sink for script print output; every line becomes a
// tea message.
func (m *labModel) writer() io.Writer {
	return chanWriter{ch: m.outCh}
}

type chanWriter struct {
	ch chan string
}

func (w chanWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.ch <- line:
		default: // drop rather than block the renderer thread
		}
	}
	return len(p), nil
}

type outputMsg string

func waitForOutput(ch chan string) tea.Cmd {
	return func() tea.Msg {
		return outputMsg(<-ch)
	}
}

func (m *labModel) Init() tea.Cmd {
	return waitForOutput(m.outCh)
}

func (m *labModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outputMsg:
		m.output = append(m.output, string(msg))
		if len(m.output) > maxOutputLines {
			m.output = m.output[len(m.output)-maxOutputLines:]
		}
		return m, waitForOutput(m.outCh)

	case tea.KeyMsg:
		if m.typing {
			return m.updateTyping(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(actions)-1 {
				m.selected++
			}

		case "enter":
			act := actions[m.selected]
			if act.run == nil {
				m.typing = true
				m.input.Focus()
				return m, textinput.Blink
			}
			m.err = act.run(m.lab)
		}
	}
	return m, nil
}

func (m *labModel) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case "enter":
		command := m.input.Value()
		m.typing = false
		m.input.Blur()
		m.input.Reset()
		if command != "" {
			m.lab.dispatch(command)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *labModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bridgelab"))
	b.WriteString("\n\n")

	for i, act := range actions {
		line := "  " + act.name
		if i == m.selected {
			line = selectedStyle.Render("> " + act.name)
		} else {
			line = actionStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.typing {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("script output"))
	b.WriteString("\n")
	for _, line := range m.output {
		b.WriteString(outputStyle.Render(line))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("\n↑/↓ select · enter run · q quit"))
	b.WriteString("\n")
	return b.String()
}
