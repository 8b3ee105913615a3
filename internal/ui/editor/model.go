package editor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/autosave"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/markdown"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// CloseMsg asks the parent to leave the editor. The parent flushes the
// pending draft.
type CloseMsg struct {
	ID model.ID
}

type field int

const (
	fieldTitle field = iota
	fieldBody
)

// Model edits the name and markdown body of one active note. Every change
// is handed to the autosaver as the latest draft.
type Model struct {
	keys     *keys.KeyMap
	saver    *autosave.Autosaver
	note     model.Note
	notebook string
	focus    field
	title    textinput.Model
	body     textarea.Model
	width    int
	height   int
}

// New creates an editor that drafts through saver.
func New(saver *autosave.Autosaver, k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Untitled"
	ti.Prompt = ""
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Write markdown..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	m := Model{keys: k, saver: saver, title: ti, body: ta}
	m.SetSize(width, height)
	return m
}

// Open loads n into the editor.
func (m *Model) Open(n model.Note, notebook string) tea.Cmd {
	m.note = n.Clone()
	m.notebook = notebook
	m.title.SetValue(n.Name)
	m.body.SetValue(n.Text)
	m.saver.Discard()

	m.focus = fieldBody
	m.title.Blur()
	return m.body.Focus()
}

// Note returns the note as last loaded or saved.
func (m Model) Note() model.Note { return m.note }

// Saved records a note the server confirmed. The text being typed is kept.
func (m *Model) Saved(n model.Note) {
	if n.ID != m.note.ID {
		return
	}
	m.note = n.Clone()
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			id := m.note.ID
			return m, func() tea.Msg { return CloseMsg{ID: id} }

		case key.Matches(msg, m.keys.Save):
			return m, m.saver.FlushCmd()

		case key.Matches(msg, m.keys.SwitchField):
			return m, m.toggleFocus()
		}
	}

	name, text := m.title.Value(), m.body.Value()
	var cmd tea.Cmd
	if m.focus == fieldTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	if m.title.Value() != name || m.body.Value() != text {
		m.saver.SetDraft(m.note.ID, m.draft())
	}
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == fieldTitle {
		m.focus = fieldBody
		m.title.Blur()
		return m.body.Focus()
	}
	m.focus = fieldTitle
	m.body.Blur()
	return m.title.Focus()
}

// draft is the note's editable fields with the typed name and body.
func (m Model) draft() model.NotePatch {
	p := model.PatchOf(m.note)
	p.Name = m.title.Value()
	p.Text = m.body.Value()
	return p
}

// View renders the editor.
func (m Model) View() string {
	titleStyle := theme.TitleStyle.MarginBottom(0)
	if m.focus == fieldTitle {
		titleStyle = titleStyle.Foreground(theme.ColorAccent)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title.View()),
		theme.DimmedStyle.Render(m.meta()),
		"",
		m.body.View(),
		"",
		m.footer(),
	)
	return lipgloss.NewStyle().Padding(0, 1).Render(content)
}

func (m Model) meta() string {
	nb := m.notebook
	if nb == "" {
		nb = "no notebook"
	}
	return fmt.Sprintf("%s · %s priority · %d words",
		nb, model.PriorityLabel(m.note.Order), markdown.WordCount(m.body.Value()))
}

func (m Model) footer() string {
	st := m.saver.Status()
	switch {
	case st.State == autosave.Saving:
		return theme.DimmedStyle.Render("saving...")
	case st.State == autosave.Failed && st.Err != nil:
		return theme.ErrorStyle.Render("save failed: " + api.Message(st.Err))
	case st.Dirty:
		return theme.DimmedStyle.Render("unsaved changes")
	case !st.LastSaved.IsZero():
		return theme.DimmedStyle.Render("saved " + st.LastSaved.Format(time.Kitchen))
	default:
		return ""
	}
}

// SetSize updates the editor dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.title.Width = max(width-4, 10)
	m.body.SetWidth(max(width-2, 10))
	// title, meta, two blank lines and the footer
	m.body.SetHeight(max(height-5, 3))
}
