package notelist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/theme"
)

// Tab selects which collection the list shows.
type Tab int

const (
	TabActive Tab = iota
	TabArchive
	TabTrash
)

var tabs = []Tab{TabActive, TabArchive, TabTrash}

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabArchive:
		return "Archive"
	case TabTrash:
		return "Trash"
	default:
		return "Notes"
	}
}

// SelectedNoteMsg is sent when the user opens a note.
type SelectedNoteMsg struct {
	ID model.ID
}

// TabChangedMsg is sent after the user switches tabs.
type TabChangedMsg struct {
	Tab Tab
}

// ScopeClearedMsg is sent when the user drops the notebook and tag scope.
type ScopeClearedMsg struct{}

// Model is the note list view.
type Model struct {
	list        list.Model
	store       *store.Store
	keys        *keys.KeyMap
	tab         Tab
	filter      store.Filter
	searchMode  bool
	searchInput textinput.Model
	loaded      bool
	loadErr     error
	width       int
	height      int
}

// New creates a note list over s.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, listHeight(height))
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("note", "notes")

	si := textinput.New()
	si.Placeholder = "search notes..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// listHeight leaves room for the tab bar and the scope line.
func listHeight(height int) int {
	return max(height-3, 1)
}

// Refresh rebuilds the items from the store's current state.
func (m *Model) Refresh() tea.Cmd {
	var notes []model.Note
	switch m.tab {
	case TabArchive:
		notes = m.store.ArchivedNotes(m.filter)
	case TabTrash:
		notes = m.store.TrashedNotes(m.filter)
	default:
		notes = m.store.ActiveNotes(m.filter)
	}

	items := make([]list.Item, len(notes))
	for i, n := range notes {
		item := NoteItem{Note: n, Tags: m.store.ResolveTags(n)}
		if nb, ok := m.store.NotebookFor(n); ok {
			item.Notebook = nb.Name
		}
		items[i] = item
	}
	return m.list.SetItems(items)
}

// SetLoadError records the outcome of the initial note-list load. A
// failure replaces the list with a full-page error until a load succeeds.
func (m *Model) SetLoadError(err error) {
	if err == nil {
		m.loaded = true
		m.loadErr = nil
		return
	}
	if !m.loaded {
		m.loadErr = err
	}
}

// Update handles messages for the note list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Query = strings.TrimSpace(m.searchInput.Value())
		return m, m.Refresh()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = ""
		return m, m.Refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		n, ok := m.SelectedNote()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return SelectedNoteMsg{ID: n.ID} }

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.filter.Query)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.NextTab):
		return m, m.SetTab((m.tab + 1) % Tab(len(tabs)))

	case key.Matches(msg, m.keys.PrevTab):
		return m, m.SetTab((m.tab + Tab(len(tabs)) - 1) % Tab(len(tabs)))

	case key.Matches(msg, m.keys.SortByPri):
		m.filter.ByPriority = !m.filter.ByPriority
		return m, m.Refresh()

	case key.Matches(msg, m.keys.ClearScope):
		m.filter = store.Filter{ByPriority: m.filter.ByPriority}
		return m, tea.Batch(m.Refresh(), func() tea.Msg { return ScopeClearedMsg{} })
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetTab switches the visible collection.
func (m *Model) SetTab(t Tab) tea.Cmd {
	m.tab = t
	m.list.ResetSelected()
	return tea.Batch(m.Refresh(), func() tea.Msg { return TabChangedMsg{Tab: t} })
}

// Tab returns the visible collection.
func (m Model) Tab() Tab { return m.tab }

// SetNotebook scopes the list to one notebook; a zero id shows all.
func (m *Model) SetNotebook(id model.ID) tea.Cmd {
	m.filter.NotebookID = id
	return m.Refresh()
}

// SetTags scopes the list to notes carrying any of ids.
func (m *Model) SetTags(ids []model.ID) tea.Cmd {
	m.filter.TagIDs = ids
	return m.Refresh()
}

// Filter returns the current list scope.
func (m Model) Filter() store.Filter { return m.filter }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// SelectedNote returns the note under the cursor.
func (m Model) SelectedNote() (model.Note, bool) {
	item, ok := m.list.SelectedItem().(NoteItem)
	if !ok {
		return model.Note{}, false
	}
	return item.Note, true
}

// Len returns the number of visible notes.
func (m Model) Len() int { return len(m.list.Items()) }

// View renders the note list.
func (m Model) View() string {
	if m.loadErr != nil {
		return m.renderLoadError()
	}

	parts := []string{m.renderTabs(), m.renderScope()}
	if m.searchMode {
		parts = append(parts, lipgloss.NewStyle().Padding(0, 1).Render(m.searchInput.View()))
	}

	if len(m.list.Items()) == 0 {
		parts = append(parts, m.renderEmptyState())
	} else {
		parts = append(parts, m.list.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		style := theme.TabStyle
		if t == m.tab {
			style = theme.ActiveTabStyle
		}
		rendered[i] = style.Render(t.String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderScope summarizes the notebook, tags, query and sort in effect.
func (m Model) renderScope() string {
	var parts []string
	if !m.filter.NotebookID.IsZero() {
		name := m.filter.NotebookID.String()
		for _, nb := range m.store.Notebooks() {
			if nb.ID == m.filter.NotebookID {
				name = nb.Name
				break
			}
		}
		parts = append(parts, "notebook: "+name)
	}
	if len(m.filter.TagIDs) > 0 {
		names := make([]string, 0, len(m.filter.TagIDs))
		for _, id := range m.filter.TagIDs {
			if t, ok := m.store.Tag(id); ok {
				names = append(names, "#"+t.Name)
			}
		}
		parts = append(parts, "tags: "+strings.Join(names, " "))
	}
	if m.filter.Query != "" {
		parts = append(parts, "search: "+m.filter.Query)
	}
	if m.filter.ByPriority {
		parts = append(parts, "by priority")
	}
	if len(parts) == 0 {
		return theme.DimmedStyle.Padding(0, 1).Render("all notes")
	}
	return theme.DimmedStyle.Padding(0, 1).Render(strings.Join(parts, " | "))
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(listHeight(m.height)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	scoped := !m.filter.NotebookID.IsZero() || len(m.filter.TagIDs) > 0 || m.filter.Query != ""
	switch {
	case scoped:
		return style.Render("No matching notes.\nPress x to clear the scope.")
	case m.tab == TabArchive:
		return style.Render("The archive is empty.")
	case m.tab == TabTrash:
		return style.Render("The trash is empty.")
	default:
		return style.Render("No notes yet.\n\nPress n to write one.")
	}
}

func (m Model) renderLoadError() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.ErrorStyle.Render("Could not load notes"),
		"",
		api.Message(m.loadErr),
		"",
		theme.HelpStyle.Render("press r to retry"),
	)
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
	m.searchInput.Width = width - 4
}
