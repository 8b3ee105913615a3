package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/markdown"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Actions a read-only note offers.
const (
	ActionRestore       = "restore"
	ActionDeleteForever = "delete_forever"
)

// ActionMsg asks the parent to run an action on the shown note.
type ActionMsg struct {
	Action string
	NoteID model.ID
}

// Model shows an archived or trashed note read-only.
type Model struct {
	note     *model.Note
	notebook string
	tags     []model.Tag
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, max(height-2, 1))
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Restore):
			return m, m.action(ActionRestore)

		case key.Matches(msg, m.keys.DeleteForever):
			return m, m.action(ActionDeleteForever)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	id := m.NoteID()
	if m.loading || id.IsZero() {
		return nil
	}
	return func() tea.Msg { return ActionMsg{Action: name, NoteID: id} }
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading note...")
	}
	if m.note == nil {
		return placeholder.Render("No note selected")
	}
	return m.viewport.View()
}

// renderContent builds the content string for the viewport.
func (m Model) renderContent() string {
	if m.note == nil {
		return ""
	}

	n := m.note
	var sections []string

	sections = append(sections, theme.TitleStyle.MarginBottom(0).Render(markdown.DisplayTitle(n.Name, n.Text)))

	location := theme.NoticeStyle.Render(strings.ToUpper(n.Location().String()))
	pri := theme.PriorityStyle(n.Order).Render(model.PriorityLabel(n.Order) + " priority")
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, location, "  ", pri))
	sections = append(sections, "")

	metaStyle := theme.DimmedStyle
	if m.notebook != "" {
		sections = append(sections, fmt.Sprintf("%s  %s", metaStyle.Render("Notebook:"), m.notebook))
	}
	if len(m.tags) > 0 {
		names := make([]string, len(m.tags))
		for i, t := range m.tags {
			names[i] = theme.ColorStyle(t.Color).Render("#" + t.Name)
		}
		sections = append(sections, fmt.Sprintf("%s      %s", metaStyle.Render("Tags:"), strings.Join(names, " ")))
	}
	sections = append(sections, fmt.Sprintf("%s     %d", metaStyle.Render("Words:"), markdown.WordCount(n.Text)))

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	body := n.Text
	if strings.TrimSpace(body) == "" {
		body = theme.HelpStyle.Render("Empty note")
	}
	sections = append(sections, body)

	sections = append(sections, "", theme.HelpStyle.Render("u restore | D delete forever | esc back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNote updates the note being displayed and re-renders the content.
func (m *Model) SetNote(n model.Note, notebook string, tags []model.Tag) {
	c := n.Clone()
	m.note = &c
	m.notebook = notebook
	m.tags = tags
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// NoteID returns the id of the shown note, zero if none.
func (m Model) NoteID() model.ID {
	if m.note == nil {
		return ""
	}
	return m.note.ID
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	if m.note != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
