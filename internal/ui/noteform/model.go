package noteform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/theme"
)

// SubmitMsg carries the form result. Original is the note as it was
// when editing started; it is zero for a new note.
type SubmitMsg struct {
	Original model.Note
	Note     model.Note
}

// IsNew reports whether the form created a note.
func (m SubmitMsg) IsNew() bool { return m.Original.ID.IsZero() }

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// Colors offered for notes. The empty value keeps the default.
var Colors = []struct{ Name, Hex string }{
	{"Default", ""},
	{"Red", "#FF6B6B"},
	{"Orange", "#FFA94D"},
	{"Yellow", "#FFD93D"},
	{"Green", "#6BCB77"},
	{"Blue", "#5B9BD5"},
	{"Purple", "#CC5DE8"},
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name       string
	color      string
	priority   int
	notebookID model.ID
	tagIDs     []model.ID
}

// Model is the Bubble Tea model for the note details form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	original  model.Note
	notebooks []model.Notebook
	tags      []model.Tag
	width     int
	height    int
}

// New creates a new note form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityNone},
		width:  width,
		height: height,
	}
}

// SetOptions sets the notebooks and tags offered by the selectors.
func (m *Model) SetOptions(notebooks []model.Notebook, tags []model.Tag) {
	m.notebooks = notebooks
	m.tags = tags
}

// StartCreate initializes the form for a new note filed under notebookID.
func (m *Model) StartCreate(notebookID model.ID) tea.Cmd {
	m.original = model.Note{}
	m.fb.name = ""
	m.fb.color = ""
	m.fb.priority = model.PriorityNone
	m.fb.notebookID = notebookID
	m.fb.tagIDs = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing note.
func (m *Model) StartEdit(n model.Note) tea.Cmd {
	m.original = n.Clone()
	m.fb.name = n.Name
	m.fb.color = n.Color
	m.fb.priority = model.NormalizePriority(n.Order)
	m.fb.notebookID = n.NotebookID
	m.fb.tagIDs = append([]model.ID(nil), n.Tags...)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the note form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Note"
	if !m.original.ID.IsZero() {
		titleText = "Edit Note"
	}

	content := theme.TitleStyle.Render(titleText) + "\n" + m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("Leave empty to use the first heading").
			CharLimit(200).
			Value(&m.fb.name),
		m.colorField(),
		huh.NewSelect[int]().
			Title("Priority").
			Options(
				huh.NewOption("None", model.PriorityNone),
				huh.NewOption("Low", model.PriorityLow),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("High", model.PriorityHigh),
			).
			Value(&m.fb.priority),
		m.notebookField(),
	}
	if tagField := m.tagField(); tagField != nil {
		fields = append(fields, tagField)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) colorField() huh.Field {
	opts := make([]huh.Option[string], 0, len(Colors)+1)
	known := false
	for _, c := range Colors {
		label := c.Name
		if c.Hex != "" {
			label = theme.ColorStyle(c.Hex).Render("●") + " " + c.Name
		}
		opts = append(opts, huh.NewOption(label, c.Hex))
		known = known || c.Hex == m.fb.color
	}
	if !known {
		opts = append(opts, huh.NewOption("Current ("+m.fb.color+")", m.fb.color))
	}
	return huh.NewSelect[string]().
		Title("Color").
		Options(opts...).
		Value(&m.fb.color)
}

func (m *Model) notebookField() huh.Field {
	opts := []huh.Option[model.ID]{
		huh.NewOption("No notebook", model.ID("")),
	}
	for _, nb := range m.notebooks {
		opts = append(opts, huh.NewOption(nb.Name, nb.ID))
	}
	return huh.NewSelect[model.ID]().
		Title("Notebook").
		Options(opts...).
		Value(&m.fb.notebookID)
}

func (m *Model) tagField() huh.Field {
	if len(m.tags) == 0 {
		return nil
	}
	opts := make([]huh.Option[model.ID], len(m.tags))
	for i, t := range m.tags {
		opts[i] = huh.NewOption(t.Name, t.ID)
	}
	return huh.NewMultiSelect[model.ID]().
		Title("Tags").
		Options(opts...).
		Value(&m.fb.tagIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	n := m.original.Clone()
	n.Name = m.fb.name
	n.Color = m.fb.color
	n.Order = m.fb.priority
	n.NotebookID = m.fb.notebookID
	n.Tags = model.DedupTags(append([]model.ID(nil), m.fb.tagIDs...))

	msg := SubmitMsg{Original: m.original, Note: n}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
