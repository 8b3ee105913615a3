package notebookmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/theme"
)

// CloseMsg signals the parent to close the notebook view.
type CloseMsg struct{}

// SelectedMsg asks the parent to make a notebook active.
type SelectedMsg struct {
	ID model.ID
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name        string
	description string
	confirm     bool
}

type fetchedMsg struct{ err error }
type savedMsg struct {
	notebook model.Notebook
	err      error
}
type deletedMsg struct {
	name string
	err  error
}

// Model is the Bubble Tea model for notebook management.
type Model struct {
	mode        mode
	store       *store.Store
	keys        *keys.KeyMap
	selectedIdx int
	editingID   model.ID
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	statusErr   bool
	width       int
	height      int
}

// New creates a new notebook manager model.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		store: s,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init refreshes notebooks from the server.
func (m Model) Init() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return fetchedMsg{err: s.FetchNotebooks(context.Background())}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.clampSelection()
		return m, nil

	case savedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setNotice(fmt.Sprintf("Saved %q", msg.notebook.Name))
		return m, nil

	case deletedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setNotice(fmt.Sprintf("Deleted %q", msg.name))
		}
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	notebooks := m.store.Notebooks()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(notebooks) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(notebooks)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(notebooks) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(notebooks) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		nb, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return SelectedMsg{ID: nb.ID} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Init()

	case msg.String() == "n":
		m.editingID = ""
		m.fb.name = ""
		m.fb.description = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "e":
		nb, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = nb.ID
		m.fb.name = nb.Name
		m.fb.description = nb.Description
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "d":
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) selected() (model.Notebook, bool) {
	notebooks := m.store.Notebooks()
	if m.selectedIdx < 0 || m.selectedIdx >= len(notebooks) {
		return model.Notebook{}, false
	}
	return notebooks[m.selectedIdx], true
}

func (m *Model) clampSelection() {
	n := len(m.store.Notebooks())
	if m.selectedIdx >= n {
		m.selectedIdx = max(n-1, 0)
	}
}

func (m *Model) setError(err error) {
	m.statusErr = true
	if errors.Is(err, store.ErrEmptyName) {
		m.statusMsg = "Name is required"
		return
	}
	m.statusMsg = api.Message(err)
}

func (m *Model) setNotice(s string) {
	m.statusErr = false
	m.statusMsg = s
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Notebook name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional description").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	nb, _ := m.selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete notebook %q?", nb.Name)).
				Description("Notes in this notebook move to the trash.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		m.setNotice("Saving...")
		return m, m.saveNotebook()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		m.mode = modeList
		nb, ok := m.selected()
		if m.fb.confirm && ok {
			m.setNotice("Deleting...")
			return m, m.deleteNotebook(nb)
		}
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the notebook manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Notebooks"))
	b.WriteString("\n\n")

	notebooks := m.store.Notebooks()
	active, _ := m.store.ActiveNotebook()
	if len(notebooks) == 0 {
		b.WriteString(theme.HelpStyle.Render("No notebooks yet. Press 'n' to create one."))
	} else {
		for i, nb := range notebooks {
			label := nb.Name
			if nb.ID == active.ID {
				label += " (active)"
			}
			if nb.Description != "" {
				label += theme.DimmedStyle.Render("  " + nb.Description)
			}

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(theme.ErrorStyle.Render(m.statusMsg))
		} else {
			b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render(
		"enter open | n new | e rename | d delete | r refresh | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) saveNotebook() tea.Cmd {
	s := m.store
	name, description := m.fb.name, m.fb.description
	editID := m.editingID
	return func() tea.Msg {
		ctx := context.Background()
		if editID.IsZero() {
			nb, err := s.CreateNotebook(ctx, name, description)
			return savedMsg{notebook: nb, err: err}
		}
		nb, err := s.RenameNotebook(ctx, editID, name, description)
		return savedMsg{notebook: nb, err: err}
	}
}

func (m Model) deleteNotebook(nb model.Notebook) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteNotebook(context.Background(), nb.ID)
		return deletedMsg{name: nb.Name, err: err}
	}
}
