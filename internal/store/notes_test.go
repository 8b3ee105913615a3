package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/mockapi"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

func newStore(t *testing.T, opts mockapi.Options) (*store.Store, *testutil.MockServer) {
	t.Helper()
	srv := testutil.NewMockServer(t, opts)
	return store.New(srv.Client, srv.Client, srv.Client, store.Options{}), srv
}

func ids(notes []model.Note) []model.ID {
	out := make([]model.ID, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func findNote(notes []model.Note, id model.ID) (model.Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}

func TestCreateThenFetchAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})

	input := model.Note{Name: "Plan", Text: "# Plan\n\n- ship", Color: "#00ff00", Order: model.PriorityHigh}
	created, err := s.Create(ctx, input)
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())
	assert.Contains(t, ids(s.Notes()), created.ID)

	require.NoError(t, s.FetchAll(ctx))
	got, ok := findNote(s.Notes(), created.ID)
	require.True(t, ok)
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.Text, got.Text)
	assert.Equal(t, input.Color, got.Color)
}

func TestMoveToTrash(t *testing.T) {
	for _, bare := range []bool{false, true} {
		name := "full responses"
		if bare {
			name = "bare responses"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, srv := newStore(t, mockapi.Options{BareMutations: bare})

			for _, title := range []string{"a", "b", "c"} {
				srv.Backend.CreateNote(model.Note{Name: title})
			}
			require.NoError(t, s.FetchAll(ctx))

			for _, n := range s.Notes() {
				trashed, err := s.MoveToTrash(ctx, n.ID)
				require.NoError(t, err)
				assert.True(t, trashed.IsDeleted)

				assert.NotContains(t, ids(s.Notes()), n.ID)
				got, ok := findNote(s.Trashed(), n.ID)
				require.True(t, ok)
				assert.True(t, got.IsDeleted)
				assert.Equal(t, n.Name, got.Name)
			}
		})
	}
}

func TestMoveToTrashBeforeListLoaded(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{BareMutations: true})
	n := srv.Backend.CreateNote(model.Note{Name: "unloaded", Text: "body"})

	_, err := s.MoveToTrash(ctx, n.ID)
	require.NoError(t, err)

	got, ok := findNote(s.Trashed(), n.ID)
	require.True(t, ok)
	assert.Equal(t, "unloaded", got.Name)
	assert.Equal(t, "body", got.Text)
	assert.True(t, got.IsDeleted)
}

func TestRestoreFromTrash(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	plain := srv.Backend.CreateNote(model.Note{Name: "plain"})
	archived := srv.Backend.CreateNote(model.Note{Name: "archived"})
	require.NoError(t, s.FetchAll(ctx))

	_, err := s.MoveToArchive(ctx, archived.ID)
	require.NoError(t, err)
	for _, id := range []model.ID{plain.ID, archived.ID} {
		_, err := s.MoveToTrash(ctx, id)
		require.NoError(t, err)
	}
	assert.Empty(t, s.Archived())

	t.Run("back to active", func(t *testing.T) {
		restored, err := s.RestoreFromTrash(ctx, plain.ID)
		require.NoError(t, err)
		assert.False(t, restored.IsDeleted)
		assert.NotContains(t, ids(s.Trashed()), plain.ID)
		assert.Contains(t, ids(s.Notes()), plain.ID)
	})

	t.Run("still archived goes to archive", func(t *testing.T) {
		restored, err := s.RestoreFromTrash(ctx, archived.ID)
		require.NoError(t, err)
		assert.False(t, restored.IsDeleted)
		assert.NotContains(t, ids(s.Trashed()), archived.ID)
		assert.NotContains(t, ids(s.Notes()), archived.ID)
		assert.Contains(t, ids(s.Archived()), archived.ID)
	})
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	n := srv.Backend.CreateNote(model.Note{Name: "a"})
	require.NoError(t, s.FetchAll(ctx))

	_, err := s.MoveToArchive(ctx, n.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Notes())
	require.NoError(t, s.FetchArchive(ctx))
	assert.Equal(t, []model.ID{n.ID}, ids(s.Archived()))

	_, err = s.RestoreFromArchive(ctx, n.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Archived())
	assert.Equal(t, []model.ID{n.ID}, ids(s.Notes()))
}

func TestDeleteForeverIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	n := srv.Backend.CreateNote(model.Note{Name: "a"})
	require.NoError(t, s.FetchAll(ctx))
	_, err := s.SetActiveNote(ctx, n.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.DeleteForever(ctx, n.ID))
		assert.NotContains(t, ids(s.Notes()), n.ID)
		assert.NotContains(t, ids(s.Archived()), n.ID)
		assert.NotContains(t, ids(s.Trashed()), n.ID)
		_, ok := s.ActiveNote()
		assert.False(t, ok)
	}
}

func TestAddTagTwiceKeepsOneEntry(t *testing.T) {
	for _, bare := range []bool{false, true} {
		ctx := context.Background()
		s, srv := newStore(t, mockapi.Options{BareMutations: bare})
		n := srv.Backend.CreateNote(model.Note{Name: "a"})
		require.NoError(t, s.FetchAll(ctx))

		for i := 0; i < 2; i++ {
			_, err := s.AddTag(ctx, n.ID, "t1")
			require.NoError(t, err)
		}
		got, ok := s.Note(n.ID)
		require.True(t, ok)
		assert.Equal(t, []model.ID{"t1"}, got.Tags, "bare=%v", bare)

		_, err := s.RemoveTag(ctx, n.ID, "t1")
		require.NoError(t, err)
		got, _ = s.Note(n.ID)
		assert.Empty(t, got.Tags)
	}
}

func TestUpdateReplacesEverywhere(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{BareMutations: true})
	n := srv.Backend.CreateNote(model.Note{Name: "a", Order: model.PriorityLow})
	require.NoError(t, s.FetchAll(ctx))
	_, err := s.SetActiveNote(ctx, n.ID)
	require.NoError(t, err)

	patch := model.PatchOf(n)
	patch.Name = "renamed"
	patch.Order = model.PriorityHigh
	updated, err := s.Update(ctx, n.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	got, _ := s.Note(n.ID)
	assert.Equal(t, "renamed", got.Name)
	active, ok := s.ActiveNote()
	require.True(t, ok)
	assert.Equal(t, "renamed", active.Name)
	assert.Equal(t, model.PriorityHigh, active.Order)
}

func TestFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	n := srv.Backend.CreateNote(model.Note{Name: "a"})
	require.NoError(t, s.FetchAll(ctx))
	before := s.Snapshot()

	_, err := s.Update(ctx, "missing", model.NotePatch{Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNotFound))
	assert.Equal(t, before, s.Snapshot())

	opErr := s.Operations().LastError(store.OpUpdateNote)
	require.Error(t, opErr)
	assert.NotEmpty(t, api.Message(opErr))

	_, err = s.MoveToTrash(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, []model.ID{n.ID}, ids(s.Notes()))
	assert.Empty(t, s.Trashed())
}

func TestChangeNotebook(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{BareMutations: true})
	n := srv.Backend.CreateNote(model.Note{Name: "a"})
	require.NoError(t, s.FetchAll(ctx))

	got, err := s.ChangeNotebook(ctx, n.ID, "nb-1")
	require.NoError(t, err)
	assert.Equal(t, model.ID("nb-1"), got.NotebookID)

	local, _ := s.Note(n.ID)
	assert.Equal(t, model.ID("nb-1"), local.NotebookID)
	assert.Equal(t, "a", local.Name)
}

func TestSetActiveNoteFetchesUnknown(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	n := srv.Backend.CreateNote(model.Note{Name: "remote"})

	got, err := s.SetActiveNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote", got.Name)
	assert.Empty(t, s.Notes())

	_, err = s.SetActiveNote(ctx, "")
	require.NoError(t, err)
	_, ok := s.ActiveNote()
	assert.False(t, ok)
}

func TestServerSideListings(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	srv.Backend.CreateNote(model.Note{Name: "a", NotebookID: "nb", Tags: []model.ID{"x"}})
	srv.Backend.CreateNote(model.Note{Name: "b"})

	byNotebook, err := s.NotesByNotebook(ctx, "nb")
	require.NoError(t, err)
	assert.Len(t, byNotebook, 1)

	byTags, err := s.NotesByTags(ctx, []model.ID{"x"})
	require.NoError(t, err)
	assert.Len(t, byTags, 1)

	assert.Empty(t, s.Notes())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})
	changes, cancel := s.Subscribe()
	defer cancel()

	created, err := s.Create(ctx, model.Note{Name: "a"})
	require.NoError(t, err)

	c := <-changes
	assert.Equal(t, store.KindNote, c.Kind)
	assert.Equal(t, store.OpCreateNote, c.Op)
	assert.Equal(t, created.ID, c.ID)

	cancel()
	_, open := <-changes
	assert.False(t, open)
}
