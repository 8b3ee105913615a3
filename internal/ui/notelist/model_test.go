package notelist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/keys"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
)

func hydratedStore() *store.Store {
	s := store.New(nil, nil, nil, store.Options{})
	s.Hydrate(store.Snapshot{
		Notes: []model.Note{
			{ID: "n1", Name: "Groceries", Text: "milk", NotebookID: "b1", Tags: []model.ID{"t1"}},
			{ID: "n2", Text: "# Trip plan\n\npack bags", Order: model.PriorityHigh},
		},
		Archived: []model.Note{
			{ID: "n3", Name: "Old", IsArchived: true},
		},
		Trashed: []model.Note{
			{ID: "n4", Name: "Gone", IsDeleted: true},
		},
		Notebooks: []model.Notebook{{ID: "b1", Name: "Home"}},
		Tags:      []model.Tag{{ID: "t1", Name: "errand"}},
	})
	return s
}

func newList(t *testing.T) Model {
	t.Helper()
	m := New(hydratedStore(), keys.DefaultKeyMap(), 80, 24)
	m.Refresh()
	return m
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRefresh_ShowsCollectionOfTab(t *testing.T) {
	m := newList(t)
	assert.Equal(t, 2, m.Len())

	m.SetTab(TabArchive)
	assert.Equal(t, 1, m.Len())
	n, ok := m.SelectedNote()
	require.True(t, ok)
	assert.Equal(t, model.ID("n3"), n.ID)

	m.SetTab(TabTrash)
	n, ok = m.SelectedNote()
	require.True(t, ok)
	assert.Equal(t, model.ID("n4"), n.ID)
}

func TestRefresh_ResolvesNamesForItems(t *testing.T) {
	m := newList(t)

	item, ok := m.list.Items()[0].(NoteItem)
	require.True(t, ok)
	assert.Equal(t, "Home", item.Notebook)
	require.Len(t, item.Tags, 1)
	assert.Equal(t, "errand", item.Tags[0].Name)

	untitled, ok := m.list.Items()[1].(NoteItem)
	require.True(t, ok)
	assert.Equal(t, "Trip plan", untitled.Title())
}

func TestScope_NotebookAndTags(t *testing.T) {
	m := newList(t)

	m.SetNotebook("b1")
	assert.Equal(t, 1, m.Len())

	m.SetNotebook("")
	m.SetTags([]model.ID{"t1"})
	assert.Equal(t, 1, m.Len())

	m, _ = m.Update(runeKey("x"))
	assert.Equal(t, 2, m.Len())
	assert.Empty(t, m.Filter().TagIDs)
}

func TestSortByPriority_Toggles(t *testing.T) {
	m := newList(t)

	m, _ = m.Update(runeKey("s"))
	require.True(t, m.Filter().ByPriority)
	n, ok := m.SelectedNote()
	require.True(t, ok)
	assert.Equal(t, model.ID("n2"), n.ID)
}

func TestSelect_EmitsSelectedNote(t *testing.T) {
	m := newList(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedNoteMsg{ID: "n1"}, cmd())
}

func TestNextTab_Cycles(t *testing.T) {
	m := newList(t)

	for _, want := range []Tab{TabArchive, TabTrash, TabActive} {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, want, m.Tab())
	}
}

func TestSearch_AppliesOnEnter(t *testing.T) {
	m := newList(t)

	m, _ = m.Update(runeKey("/"))
	require.True(t, m.Searching())
	for _, r := range "trip" {
		m, _ = m.Update(runeKey(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.Searching())
	assert.Equal(t, "trip", m.Filter().Query)
	assert.Equal(t, 1, m.Len())
}

func TestLoadError_OnlyBeforeFirstLoad(t *testing.T) {
	m := newList(t)
	failure := &api.TransportError{Method: "GET", Path: "/notes", Err: assert.AnError}

	m.SetLoadError(failure)
	assert.Contains(t, m.View(), "Could not load notes")

	m.SetLoadError(nil)
	m.SetLoadError(failure)
	assert.NotContains(t, m.View(), "Could not load notes")
}
