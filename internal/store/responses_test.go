package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/mockapi"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

// echoBefore answers every lifecycle call with the note as it was before
// the call, the way a backend returning its pre-update row would.
type echoBefore struct {
	store.NotesAPI
}

func (e echoBefore) flip(ctx context.Context, id model.ID, call func(context.Context, model.ID) (*model.Note, error)) (*model.Note, error) {
	before, err := e.NotesAPI.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := call(ctx, id); err != nil {
		return nil, err
	}
	return before, nil
}

func (e echoBefore) MoveToTrash(ctx context.Context, id model.ID) (*model.Note, error) {
	return e.flip(ctx, id, e.NotesAPI.MoveToTrash)
}

func (e echoBefore) RestoreFromTrash(ctx context.Context, id model.ID) (*model.Note, error) {
	return e.flip(ctx, id, e.NotesAPI.RestoreFromTrash)
}

func (e echoBefore) MoveToArchive(ctx context.Context, id model.ID) (*model.Note, error) {
	return e.flip(ctx, id, e.NotesAPI.MoveToArchive)
}

func (e echoBefore) RestoreFromArchive(ctx context.Context, id model.ID) (*model.Note, error) {
	return e.flip(ctx, id, e.NotesAPI.RestoreFromArchive)
}

func TestLifecycleFlagHoldsOverStaleBody(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewMockServer(t, mockapi.Options{})
	n := srv.Backend.CreateNote(model.Note{Name: "plan"})
	s := store.New(echoBefore{NotesAPI: srv.Client}, srv.Client, srv.Client, store.Options{})
	require.NoError(t, s.FetchAll(ctx))

	trashed, err := s.MoveToTrash(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted)
	assert.NotContains(t, ids(s.Notes()), n.ID)
	got, ok := findNote(s.Trashed(), n.ID)
	require.True(t, ok)
	assert.True(t, got.IsDeleted)

	restored, err := s.RestoreFromTrash(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.NotContains(t, ids(s.Trashed()), n.ID)
	assert.Contains(t, ids(s.Notes()), n.ID)

	archived, err := s.MoveToArchive(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.NotContains(t, ids(s.Notes()), n.ID)
	assert.Contains(t, ids(s.Archived()), n.ID)

	_, err = s.RestoreFromArchive(ctx, n.ID)
	require.NoError(t, err)
	assert.NotContains(t, ids(s.Archived()), n.ID)
	assert.Contains(t, ids(s.Notes()), n.ID)
}

func TestStatusStringMutationStillApplies(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var data any
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/notes":
			data = []map[string]any{{"id": 1, "name": "plan", "text": "body"}}
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/notes/trash/1":
			data = "Note moved to trash"
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unexpected " + r.Method + " " + r.URL.Path})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	s := store.New(client, client, client, store.Options{})
	require.NoError(t, s.FetchAll(ctx))

	trashed, err := s.MoveToTrash(ctx, "1")
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted)
	assert.Empty(t, s.Notes())
	got, ok := findNote(s.Trashed(), "1")
	require.True(t, ok)
	assert.Equal(t, "plan", got.Name)
	assert.Equal(t, "body", got.Text)
}

// overtakingTrash lets a newer update of the same note land while the
// trash call is in flight, so the trash response arrives stale.
type overtakingTrash struct {
	store.NotesAPI
	store *store.Store
}

func (o *overtakingTrash) MoveToTrash(ctx context.Context, id model.ID) (*model.Note, error) {
	n, err := o.NotesAPI.MoveToTrash(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := o.store.Update(ctx, id, model.NotePatch{Name: "edited meanwhile"}); err != nil {
		return nil, err
	}
	return n, nil
}

func TestDeleteNotebookToleratesStaleTrashResponse(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewMockServer(t, mockapi.Options{})
	nb, err := srv.Backend.CreateNotebook("Work", "")
	require.NoError(t, err)
	n := srv.Backend.CreateNote(model.Note{Name: "a", NotebookID: nb.ID})

	notes := &overtakingTrash{NotesAPI: srv.Client}
	s := store.New(notes, srv.Client, srv.Client, store.Options{Ordering: model.OrderingLastIssued})
	notes.store = s
	require.NoError(t, s.FetchNotebooks(ctx))
	require.NoError(t, s.FetchAll(ctx))

	require.NoError(t, s.DeleteNotebook(ctx, nb.ID))

	assert.NotContains(t, notebookIDs(s.Notebooks()), nb.ID)
	_, err = srv.Backend.GetNotebook(nb.ID)
	assert.ErrorIs(t, err, mockapi.ErrNotebookNotFound)
	got, ok := findNote(s.Trashed(), n.ID)
	require.True(t, ok)
	assert.True(t, got.IsDeleted)
}
