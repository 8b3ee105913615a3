package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/mockapi"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

func TestNotebookReferenceSurvivesRename(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})

	work, err := s.CreateNotebook(ctx, "Work", "")
	require.NoError(t, err)
	plan, err := s.Create(ctx, model.Note{Name: "Plan", NotebookID: work.ID})
	require.NoError(t, err)

	_, err = s.RenameNotebook(ctx, work.ID, "Work 2", "renamed")
	require.NoError(t, err)

	require.NoError(t, s.FetchAll(ctx))
	note, ok := s.Note(plan.ID)
	require.True(t, ok)
	nb, ok := s.NotebookFor(note)
	require.True(t, ok)
	assert.Equal(t, "Work 2", nb.Name)
}

func TestRenameNotebookBareResponse(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{BareMutations: true})

	nb, err := s.CreateNotebook(ctx, "Home", "")
	require.NoError(t, err)
	_, ok := s.SetActiveNotebook(nb.ID)
	require.True(t, ok)

	renamed, err := s.RenameNotebook(ctx, nb.ID, "House", "")
	require.NoError(t, err)
	assert.Equal(t, "House", renamed.Name)

	active, ok := s.ActiveNotebook()
	require.True(t, ok)
	assert.Equal(t, "House", active.Name)
}

func TestBlankNotebookNamesAreRejected(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})

	_, err := s.CreateNotebook(ctx, "  ", "")
	assert.ErrorIs(t, err, store.ErrEmptyName)
	assert.ErrorIs(t, s.Operations().LastError(store.OpCreateNotebook), store.ErrEmptyName)

	nb, err := s.CreateNotebook(ctx, "Work", "")
	require.NoError(t, err)
	_, err = s.RenameNotebook(ctx, nb.ID, "", "")
	assert.ErrorIs(t, err, store.ErrEmptyName)
	assert.ErrorIs(t, s.Operations().LastError(store.OpRenameNotebook), store.ErrEmptyName)
	assert.Equal(t, "Work", s.Notebooks()[0].Name)
}

func TestSetActiveNotebookIsLocalOnly(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	remote, err := srv.Backend.CreateNotebook("remote", "")
	require.NoError(t, err)

	_, ok := s.SetActiveNotebook(remote.ID)
	assert.False(t, ok, "not loaded yet")

	require.NoError(t, s.FetchNotebooks(ctx))
	got, ok := s.SetActiveNotebook(remote.ID)
	require.True(t, ok)
	assert.Equal(t, "remote", got.Name)

	_, ok = s.SetActiveNotebook("unknown")
	assert.False(t, ok)
	_, ok = s.ActiveNotebook()
	assert.False(t, ok)
}

func TestDeleteNotebookCascadesToTrash(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})

	nb, err := s.CreateNotebook(ctx, "Work", "")
	require.NoError(t, err)
	other, err := s.CreateNotebook(ctx, "Other", "")
	require.NoError(t, err)

	a, err := s.Create(ctx, model.Note{Name: "a", NotebookID: nb.ID})
	require.NoError(t, err)
	// Known only to the server.
	b := srv.Backend.CreateNote(model.Note{Name: "b", NotebookID: nb.ID})
	keep, err := s.Create(ctx, model.Note{Name: "keep", NotebookID: other.ID})
	require.NoError(t, err)

	_, ok := s.SetActiveNotebook(nb.ID)
	require.True(t, ok)

	require.NoError(t, s.DeleteNotebook(ctx, nb.ID))

	assert.ElementsMatch(t, []model.ID{a.ID, b.ID}, ids(s.Trashed()))
	assert.Equal(t, []model.ID{keep.ID}, ids(s.Notes()))
	assert.NotContains(t, notebookIDs(s.Notebooks()), nb.ID)
	_, ok = s.ActiveNotebook()
	assert.False(t, ok)

	_, err = srv.Backend.GetNotebook(nb.ID)
	assert.ErrorIs(t, err, mockapi.ErrNotebookNotFound)
}

// failingTrash fails MoveToTrash for one note.
type failingTrash struct {
	store.NotesAPI
	fail model.ID
}

func (f *failingTrash) MoveToTrash(ctx context.Context, id model.ID) (*model.Note, error) {
	if id == f.fail {
		return nil, errors.New("boom")
	}
	return f.NotesAPI.MoveToTrash(ctx, id)
}

func TestDeleteNotebookAbortsWhenTrashFails(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewMockServer(t, mockapi.Options{})
	nb, err := srv.Backend.CreateNotebook("Work", "")
	require.NoError(t, err)
	n := srv.Backend.CreateNote(model.Note{Name: "a", NotebookID: nb.ID})

	s := store.New(&failingTrash{NotesAPI: srv.Client, fail: n.ID}, srv.Client, srv.Client, store.Options{})
	require.NoError(t, s.FetchNotebooks(ctx))
	require.NoError(t, s.FetchAll(ctx))

	err = s.DeleteNotebook(ctx, nb.ID)
	require.Error(t, err)

	assert.Contains(t, notebookIDs(s.Notebooks()), nb.ID)
	_, err = srv.Backend.GetNotebook(nb.ID)
	assert.NoError(t, err)
	assert.Equal(t, []model.ID{n.ID}, ids(s.Notes()))
}

func notebookIDs(notebooks []model.Notebook) []model.ID {
	out := make([]model.ID, len(notebooks))
	for i, nb := range notebooks {
		out[i] = nb.ID
	}
	return out
}
