package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/theme"
)

// Commands understood by the root model.
const (
	CmdRefresh    = "refresh"
	CmdNew        = "new"
	CmdNotebooks  = "notebooks"
	CmdTags       = "tags"
	CmdTheme      = "theme"
	CmdEmptyTrash = "empty trash"
	CmdClear      = "clear"
	CmdQuit       = "quit"
)

var suggestions = []string{
	CmdRefresh, CmdNew, CmdNotebooks, CmdTags,
	CmdTheme + " light", CmdTheme + " dark",
	CmdEmptyTrash, CmdClear, CmdQuit,
}

// CommandMsg is emitted when the user executes a command. Name is the
// command word(s), Arg what follows.
type CommandMsg struct {
	Name string
	Arg  string
}

// Parse splits a command line into name and argument.
func Parse(line string) CommandMsg {
	line = strings.Join(strings.Fields(strings.ToLower(line)), " ")
	if line == CmdEmptyTrash {
		return CommandMsg{Name: CmdEmptyTrash}
	}
	name, arg, _ := strings.Cut(line, " ")
	return CommandMsg{Name: name, Arg: arg}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(suggestions)
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		cmd := Parse(line)
		return m, func() tea.Msg { return cmd }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Command Palette"),
		m.input.View(),
		"",
		theme.HelpStyle.Render(strings.Join(suggestions, " · ")),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 20)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	return m.input.Focus()
}
