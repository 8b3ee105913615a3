package tagmgr

import (
	"context"
	"errors"
	"fmt"
	"slices"
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

// CloseMsg signals the parent to close the tag view.
type CloseMsg struct{}

// FilterMsg asks the parent to scope the note list to these tags. An
// empty slice clears the tag scope.
type FilterMsg struct {
	IDs []model.ID
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

type fetchedMsg struct{ err error }
type savedMsg struct {
	name string
	err  error
}
type deletedMsg struct {
	name string
	err  error
}

// Model is the Bubble Tea model for tag management.
type Model struct {
	mode        mode
	store       *store.Store
	keys        *keys.KeyMap
	selectedIdx int
	picked      []model.ID
	editingID   model.ID
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	statusErr   bool
	width       int
	height      int
}

// New creates a new tag manager model.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		store: s,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init refreshes tags from the server.
func (m Model) Init() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return fetchedMsg{err: s.FetchTags(context.Background())}
	}
}

// SetPicked marks the tags currently scoping the note list.
func (m *Model) SetPicked(ids []model.ID) {
	m.picked = slices.Clone(ids)
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
		} else {
			m.setNotice(fmt.Sprintf("Saved #%s", msg.name))
		}
		return m, nil

	case deletedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setNotice(fmt.Sprintf("Deleted #%s", msg.name))
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
	tags := m.store.Tags()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(tags) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(tags)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(tags) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(tags) - 1
			}
		}
		return m, nil

	case msg.String() == " ":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if i := slices.Index(m.picked, t.ID); i >= 0 {
			m.picked = slices.Delete(m.picked, i, i+1)
		} else {
			m.picked = append(m.picked, t.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		ids := slices.Clone(m.picked)
		return m, func() tea.Msg { return FilterMsg{IDs: ids} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Init()

	case msg.String() == "n":
		m.editingID = ""
		m.fb.name = ""
		m.fb.color = "#6BCB77"
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = t.ID
		m.fb.name = t.Name
		m.fb.color = t.Color
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

func (m Model) selected() (model.Tag, bool) {
	tags := m.store.Tags()
	if m.selectedIdx < 0 || m.selectedIdx >= len(tags) {
		return model.Tag{}, false
	}
	return tags[m.selectedIdx], true
}

func (m *Model) clampSelection() {
	n := len(m.store.Tags())
	if m.selectedIdx >= n {
		m.selectedIdx = max(n-1, 0)
	}
}

func (m *Model) setError(err error) {
	m.statusErr = true
	switch {
	case errors.Is(err, store.ErrDuplicateTag):
		m.statusMsg = "A tag with this name already exists"
	case errors.Is(err, store.ErrEmptyName):
		m.statusMsg = "Name is required"
	default:
		m.statusMsg = api.Message(err)
	}
}

func (m *Model) setNotice(s string) {
	m.statusErr = false
	m.statusMsg = s
}

func (m Model) buildForm() *huh.Form {
	s := m.store
	editID := m.editingID
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Tag name").
				Value(&m.fb.name).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("name is required")
					}
					if t, ok := s.TagByName(v); ok && t.ID != editID {
						return fmt.Errorf("tag %q already exists", t.Name)
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Placeholder("#6BCB77").
				Value(&m.fb.color),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	t, _ := m.selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete tag %q?", t.Name)).
				Description("Notes keep their text; the tag stops showing on them.").
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
		return m, m.saveTag()
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
		t, ok := m.selected()
		if m.fb.confirm && ok {
			if i := slices.Index(m.picked, t.ID); i >= 0 {
				m.picked = slices.Delete(m.picked, i, i+1)
			}
			return m, m.deleteTag(t)
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

// View renders the tag manager.
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

	b.WriteString(theme.TitleStyle.Render("Tags"))
	b.WriteString("\n\n")

	tags := m.store.Tags()
	if len(tags) == 0 {
		b.WriteString(theme.HelpStyle.Render("No tags yet. Press 'n' to create one."))
	} else {
		for i, t := range tags {
			check := "[ ]"
			if slices.Contains(m.picked, t.ID) {
				check = "[x]"
			}
			label := check + " " + theme.ColorStyle(t.Color).Render("#"+t.Name)

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
		"space pick | enter filter | n new | e edit | d delete | esc back",
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

func (m Model) saveTag() tea.Cmd {
	s := m.store
	name, color := m.fb.name, m.fb.color
	editID := m.editingID
	return func() tea.Msg {
		ctx := context.Background()
		if editID.IsZero() {
			t, err := s.CreateTag(ctx, name, color)
			return savedMsg{name: t.Name, err: err}
		}
		err := s.UpdateTag(ctx, editID, name, color)
		return savedMsg{name: strings.TrimSpace(name), err: err}
	}
}

func (m Model) deleteTag(t model.Tag) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteTag(context.Background(), t.ID)
		return deletedMsg{name: t.Name, err: err}
	}
}
