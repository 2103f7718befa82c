package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smazurov/progressbridge/internal/protocol"
)

type (
	commandMsg     protocol.Command
	inputClosedMsg struct{}
)

const (
	defaultTitle = "Working"
	cancelLabel  = "[ Cancel ]"
	maxBarWidth  = 60
	// buttonRow is the screen row of the cancel button in View.
	buttonRow = 5
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("87"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	title  string
	state  State
	bar    progress.Model
	tokens *tokenWriter
}

func newModel(title string, tokens *tokenWriter) model {
	if title == "" {
		title = defaultTitle
	}
	return model{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		tokens: tokens,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commandMsg:
		m.state.Apply(protocol.Command(msg))
		return m, nil

	case inputClosedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			return m.cancel("KeyEvent " + msg.String())
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft &&
			msg.Y == buttonRow && msg.X < lipgloss.Width(cancelLabel) {
			return m.cancel(fmt.Sprintf("MouseEvent %d %d", msg.X, msg.Y))
		}
	}
	return m, nil
}

// cancel reports the triggering event and tells the bridge the user closed
// the dialog.
func (m model) cancel(event string) (tea.Model, tea.Cmd) {
	m.tokens.diagnostic("%s", event)
	// A write error means the bridge is already gone; quit either way.
	_ = m.tokens.close()
	return m, tea.Quit
}

func (m model) View() string {
	var b strings.Builder
	operation := m.state.Operation
	if operation == "" {
		operation = m.title
	}
	b.WriteString(titleStyle.Render(operation) + "\n")
	b.WriteString(labelStyle.Render(m.state.Label) + "\n")
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.state.Width) + "\n")
	b.WriteString("\n")
	b.WriteString(buttonStyle.Render(cancelLabel) + "\n")
	b.WriteString(hintStyle.Render("esc to cancel"))
	return b.String()
}
