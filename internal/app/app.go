package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/autosave"
	"github.com/nhle/notekeeper/internal/cache"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/theme"
	"github.com/nhle/notekeeper/internal/ui"
	"github.com/nhle/notekeeper/internal/ui/command"
	"github.com/nhle/notekeeper/internal/ui/detail"
	"github.com/nhle/notekeeper/internal/ui/editor"
	helpview "github.com/nhle/notekeeper/internal/ui/help"
	"github.com/nhle/notekeeper/internal/ui/notebookmgr"
	"github.com/nhle/notekeeper/internal/ui/noteform"
	"github.com/nhle/notekeeper/internal/ui/notelist"
	"github.com/nhle/notekeeper/internal/ui/tagmgr"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewEditor
	ViewDetail
	ViewHelp
	ViewCommand
	ViewNoteForm
	ViewNotebooks
	ViewTags
)

// Options carries the collaborators the root model drives.
type Options struct {
	Store     *store.Store
	Autosaver *autosave.Autosaver
	// Cache may be nil; preferences and snapshots are then not persisted.
	Cache  *cache.Cache
	Config *model.AppConfig
	// LastNotebook is reselected once notebooks are loaded.
	LastNotebook model.ID
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the entity store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *store.Store
	autosaver    *autosave.Autosaver
	cache        *cache.Cache
	keys         *keys.KeyMap
	changes      <-chan store.Change
	unsubscribe  func()
	noteList     notelist.Model
	editor       editor.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	noteForm     noteform.Model
	notebookView notebookmgr.Model
	tagView      tagmgr.Model
	pendingNB    model.ID
	ready        bool
	status       string
	statusErr    bool
}

// New creates the root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	s := opts.Store
	changes, unsubscribe := s.Subscribe()

	m := Model{
		currentView:  ViewList,
		store:        s,
		autosaver:    opts.Autosaver,
		cache:        opts.Cache,
		keys:         k,
		changes:      changes,
		unsubscribe:  unsubscribe,
		noteList:     notelist.New(s, k, 80, 24),
		editor:       editor.New(opts.Autosaver, k, 80, 24),
		detail:       detail.New(k, 80, 24),
		helpView:     helpview.New(k, opts.Config, 80, 24),
		commandView:  command.New(80, 24),
		noteForm:     noteform.New(80, 24),
		notebookView: notebookmgr.New(s, k, 80, 24),
		tagView:      tagmgr.New(s, k, 80, 24),
		pendingNB:    opts.LastNotebook,
	}
	// Paint whatever was hydrated from the local cache.
	m.noteList.Refresh()
	return m
}

// Init fetches every collection and starts listening for store changes
// and autosave results.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchAll(),
		waitForChange(m.changes),
		m.autosaver.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.noteList.SetSize(w, h)
		m.editor.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.noteForm.SetSize(w, h)
		m.notebookView.SetSize(w, h)
		m.tagView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case changeMsg:
		return m, tea.Batch(m.noteList.Refresh(), waitForChange(m.changes))

	case fetchedMsg:
		return m.handleFetched(msg)

	case autosave.ResultMsg:
		var next tea.Cmd
		if !msg.Manual {
			next = m.autosaver.WaitForNextResult()
		}
		if msg.Err != nil {
			m.setError(msg.Err)
		} else {
			m.editor.Saved(msg.Note)
		}
		return m, next

	case noteOpenedMsg:
		if msg.err != nil {
			m.currentView = ViewList
			m.setError(msg.err)
			return m, nil
		}
		return m, m.showNote(msg.note)

	case noteSavedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setNotice(msg.verb)
		if msg.open {
			return m, m.showNote(msg.note)
		}
		return m, nil

	case trashEmptiedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setNotice(fmt.Sprintf("Deleted %d notes forever", msg.deleted))
		return m, nil

	case prefSavedMsg:
		logPrefError(msg)
		return m, nil

	case notelist.SelectedNoteMsg:
		if n, ok := m.store.Note(msg.ID); ok && n.Location() != model.LocationActive {
			m.currentView = ViewDetail
			m.detail.SetLoading(true)
		}
		return m, m.openNote(msg.ID)

	case notelist.TabChangedMsg:
		switch msg.Tab {
		case notelist.TabArchive:
			return m, m.fetch(fetchArchive)
		case notelist.TabTrash:
			return m, m.fetch(fetchTrash)
		}
		return m, m.fetch(fetchNotes)

	case notelist.ScopeClearedMsg:
		m.store.SetActiveNotebook("")
		return m, m.saveLastNotebook("")

	case editor.CloseMsg:
		m.currentView = ViewList
		return m, m.autosaver.FlushCmd()

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		m.currentView = ViewList
		n, ok := m.store.Note(msg.NoteID)
		if !ok {
			return m, nil
		}
		switch msg.Action {
		case detail.ActionRestore:
			return m, m.restore(n)
		case detail.ActionDeleteForever:
			if n.Location() == model.LocationTrashed {
				return m, m.deleteForever(n.ID)
			}
		}
		return m, nil

	case noteform.SubmitMsg:
		m.currentView = ViewList
		return m, m.saveForm(msg)

	case noteform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case notebookmgr.SelectedMsg:
		m.currentView = ViewList
		nb, ok := m.store.SetActiveNotebook(msg.ID)
		if !ok {
			return m, nil
		}
		return m, tea.Batch(m.noteList.SetNotebook(nb.ID), m.saveLastNotebook(nb.ID))

	case notebookmgr.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case tagmgr.FilterMsg:
		m.currentView = ViewList
		return m, m.noteList.SetTags(msg.IDs)

	case tagmgr.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.currentView == ViewList && !m.noteList.Searching() {
			if next, cmd, handled := m.handleListKey(msg); handled {
				return next, cmd
			}
		}
		if m.currentView == ViewHelp && (key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back)) {
			m.currentView = m.previousView
			return m, nil
		}
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleListKey processes the global keys of the note list.
func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	selected, hasSelection := m.noteList.SelectedNote()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh):
		m.clearStatus()
		return m, m.fetchAll(), true

	case key.Matches(msg, m.keys.ToggleTheme):
		name := theme.Toggle()
		m.setNotice("Theme: " + name)
		return m, m.saveTheme(name), true

	case key.Matches(msg, m.keys.New):
		return m, m.startCreate(), true

	case key.Matches(msg, m.keys.Edit):
		if !hasSelection || selected.Location() == model.LocationTrashed {
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewNoteForm
		m.noteForm.SetOptions(m.store.Notebooks(), m.store.Tags())
		return m, m.noteForm.StartEdit(selected), true

	case key.Matches(msg, m.keys.Trash):
		if !hasSelection || selected.Location() == model.LocationTrashed {
			return m, nil, true
		}
		return m, m.moveToTrash(selected.ID), true

	case key.Matches(msg, m.keys.Archive):
		if !hasSelection || selected.Location() != model.LocationActive {
			return m, nil, true
		}
		return m, m.moveToArchive(selected.ID), true

	case key.Matches(msg, m.keys.Restore):
		if !hasSelection {
			return m, nil, true
		}
		return m, m.restore(selected), true

	case key.Matches(msg, m.keys.DeleteForever):
		if !hasSelection || selected.Location() != model.LocationTrashed {
			return m, nil, true
		}
		return m, m.deleteForever(selected.ID), true

	case key.Matches(msg, m.keys.Notebooks):
		m.previousView = m.currentView
		m.currentView = ViewNotebooks
		return m, m.notebookView.Init(), true

	case key.Matches(msg, m.keys.Tags):
		m.previousView = m.currentView
		m.currentView = ViewTags
		m.tagView.SetPicked(m.noteList.Filter().TagIDs)
		return m, m.tagView.Init(), true
	}
	return m, nil, false
}

func (m *Model) startCreate() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewNoteForm
	m.noteForm.SetOptions(m.store.Notebooks(), m.store.Tags())
	nb, _ := m.store.ActiveNotebook()
	return m.noteForm.StartCreate(nb.ID)
}

// showNote routes an opened note: active notes go to the editor, the
// rest to the read-only detail view.
func (m *Model) showNote(n model.Note) tea.Cmd {
	notebook := ""
	if nb, ok := m.store.NotebookFor(n); ok {
		notebook = nb.Name
	}
	if n.Location() == model.LocationActive {
		m.currentView = ViewEditor
		return m.editor.Open(n, notebook)
	}
	m.currentView = ViewDetail
	m.detail.SetNote(n, notebook, m.store.ResolveTags(n))
	return nil
}

func (m Model) handleFetched(msg fetchedMsg) (tea.Model, tea.Cmd) {
	if msg.what == fetchNotes {
		m.noteList.SetLoadError(msg.err)
	}
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}

	var cmds []tea.Cmd
	if msg.what == fetchNotebooks && !m.pendingNB.IsZero() {
		if nb, ok := m.store.SetActiveNotebook(m.pendingNB); ok {
			cmds = append(cmds, m.noteList.SetNotebook(nb.ID))
		}
		m.pendingNB = ""
	}
	cmds = append(cmds, m.noteList.Refresh(), m.saveSnapshot())
	return m, tea.Batch(cmds...)
}

// quit flushes the editor draft before exiting. The autosave timer stops
// first so no new save starts.
func (m Model) quit() tea.Cmd {
	m.autosaver.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return tea.Sequence(m.autosaver.FlushCmd(), tea.Quit)
}

// setError shows err on the inline status line. Superseded responses are
// expected under last_issued ordering and are not shown.
func (m *Model) setError(err error) {
	if errors.Is(err, store.ErrStaleResponse) {
		return
	}
	m.status = api.Message(err)
	m.statusErr = true
}

func (m *Model) setNotice(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.noteList, cmd = m.noteList.Update(msg)
	case ViewEditor:
		m.editor, cmd = m.editor.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewNoteForm:
		m.noteForm, cmd = m.noteForm.Update(msg)
	case ViewNotebooks:
		m.notebookView, cmd = m.notebookView.Update(msg)
	case ViewTags:
		m.tagView, cmd = m.tagView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Notekeeper"
	if nb, ok := m.store.ActiveNotebook(); ok {
		title += " / " + nb.Name
	}
	header := m.layout.RenderHeader(title, m.activity())
	statusBar := m.layout.RenderStatusBar(m.inlineStatus(), m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.noteList.View()
	case ViewEditor:
		return m.editor.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewNoteForm:
		return m.noteForm.View()
	case ViewNotebooks:
		return m.notebookView.View()
	case ViewTags:
		return m.tagView.View()
	default:
		return ""
	}
}

// activity summarizes requests in flight and the autosave state.
func (m Model) activity() string {
	if pending := m.store.Operations().Pending(); len(pending) > 0 {
		return fmt.Sprintf("syncing (%d)", len(pending))
	}
	switch st := m.autosaver.Status(); {
	case st.State == autosave.Saving:
		return "saving"
	case st.Dirty:
		return "unsaved"
	}
	return "idle"
}

func (m Model) inlineStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return theme.ErrorStyle.Render(m.status)
	}
	return theme.NoticeStyle.Render(m.status)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewEditor:
		return "esc close | ctrl+s save | tab title/body"
	case ViewDetail:
		return "esc back | u restore | D delete forever | j/k scroll"
	case ViewNoteForm:
		return "enter submit | esc cancel"
	case ViewNotebooks:
		return "enter open | n new | e rename | d delete | esc back"
	case ViewTags:
		return "space pick | enter filter | n new | e edit | d delete | esc back"
	}

	switch m.noteList.Tab() {
	case notelist.TabArchive:
		return "q quit | ? help | u restore | d trash | e edit | tab next"
	case notelist.TabTrash:
		return "q quit | ? help | u restore | D delete forever | tab next"
	default:
		return "q quit | ? help | n new | d trash | a archive | b notebooks | t tags | / search | tab next"
	}
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(c command.CommandMsg) (tea.Model, tea.Cmd) {
	switch c.Name {
	case command.CmdRefresh:
		m.clearStatus()
		return m, m.fetchAll()
	case command.CmdQuit, "q":
		return m, m.quit()
	case command.CmdNew:
		return m, m.startCreate()
	case command.CmdNotebooks:
		m.previousView = ViewList
		m.currentView = ViewNotebooks
		return m, m.notebookView.Init()
	case command.CmdTags:
		m.previousView = ViewList
		m.currentView = ViewTags
		m.tagView.SetPicked(m.noteList.Filter().TagIDs)
		return m, m.tagView.Init()
	case command.CmdTheme:
		var name string
		switch c.Arg {
		case model.ThemeLight, model.ThemeDark:
			name = theme.Apply(c.Arg).Name
		default:
			name = theme.Toggle()
		}
		m.setNotice("Theme: " + name)
		return m, m.saveTheme(name)
	case command.CmdEmptyTrash:
		m.setNotice("Emptying trash...")
		return m, m.emptyTrash()
	case command.CmdClear:
		m.store.SetActiveNotebook("")
		return m, tea.Batch(m.noteList.SetNotebook(""), m.noteList.SetTags(nil), m.saveLastNotebook(""))
	default:
		m.setError(fmt.Errorf("unknown command %q", c.Name))
		return m, nil
	}
}
