package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func call(t *testing.T, router http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestNoteLifecycle(t *testing.T) {
	router := NewRouter(NewBackend(), Options{})

	code, env := call(t, router, http.MethodPost, "/api/v1/notes", map[string]any{"name": "Plan", "text": "body"})
	require.Equal(t, http.StatusCreated, code)
	note := decode[model.Note](t, env.Data)
	require.False(t, note.ID.IsZero())
	assert.Equal(t, model.PriorityNone, note.Order)

	t.Run("trash", func(t *testing.T) {
		code, env := call(t, router, http.MethodDelete, "/api/v1/notes/trash/"+note.ID.String(), nil)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, decode[model.Note](t, env.Data).IsDeleted)

		_, env = call(t, router, http.MethodGet, "/api/v1/notes", nil)
		assert.Empty(t, decode[[]model.Note](t, env.Data))
		_, env = call(t, router, http.MethodGet, "/api/v1/notes/trash", nil)
		assert.Len(t, decode[[]model.Note](t, env.Data), 1)
	})

	t.Run("restore", func(t *testing.T) {
		code, env := call(t, router, http.MethodGet, "/api/v1/notes/trash/"+note.ID.String(), nil)
		require.Equal(t, http.StatusOK, code)
		assert.False(t, decode[model.Note](t, env.Data).IsDeleted)
	})

	t.Run("archive", func(t *testing.T) {
		call(t, router, http.MethodDelete, "/api/v1/notes/archive/"+note.ID.String(), nil)
		_, env := call(t, router, http.MethodGet, "/api/v1/notes/archive", nil)
		assert.Len(t, decode[[]model.Note](t, env.Data), 1)
	})

	t.Run("tag add is idempotent", func(t *testing.T) {
		call(t, router, http.MethodPut, "/api/v1/notes/tag/"+note.ID.String(), map[string]any{"tag_id": "t1"})
		_, env := call(t, router, http.MethodPut, "/api/v1/notes/tag/"+note.ID.String(), map[string]any{"tag_id": "t1"})
		assert.Equal(t, []model.ID{"t1"}, decode[model.Note](t, env.Data).Tags)

		_, env = call(t, router, http.MethodPatch, "/api/v1/notes/tag/"+note.ID.String(), map[string]any{"tag_id": "t1"})
		assert.Empty(t, decode[model.Note](t, env.Data).Tags)
	})

	t.Run("delete forever", func(t *testing.T) {
		code, _ := call(t, router, http.MethodDelete, "/api/v1/notes/"+note.ID.String(), nil)
		assert.Equal(t, http.StatusOK, code)

		code, env := call(t, router, http.MethodDelete, "/api/v1/notes/"+note.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, ErrNoteNotFound.Error(), env.Error)
	})
}

func TestNotesByNotebookAndTags(t *testing.T) {
	backend := NewBackend()
	router := NewRouter(backend, Options{})
	backend.CreateNote(model.Note{Name: "a", NotebookID: "nb1", Tags: []model.ID{"x"}})
	backend.CreateNote(model.Note{Name: "b", NotebookID: "nb2", Tags: []model.ID{"y"}})

	_, env := call(t, router, http.MethodGet, "/api/v1/notes/group/nb1", nil)
	notes := decode[[]model.Note](t, env.Data)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].Name)

	_, env = call(t, router, http.MethodPost, "/api/v1/notes/tag", map[string]any{"tags": []string{"y", "z"}})
	notes = decode[[]model.Note](t, env.Data)
	require.Len(t, notes, 1)
	assert.Equal(t, "b", notes[0].Name)
}

func TestTagCreateReturnsID(t *testing.T) {
	router := NewRouter(NewBackend(), Options{})

	code, env := call(t, router, http.MethodPost, "/api/v1/tags", map[string]any{"name": "urgent", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, code)
	id := decode[model.ID](t, env.Data)

	_, env = call(t, router, http.MethodGet, "/api/v1/tags/"+id.String(), nil)
	assert.Equal(t, model.Tag{ID: id, Name: "urgent", Color: "#ff0000"}, decode[model.Tag](t, env.Data))

	code, env = call(t, router, http.MethodPost, "/api/v1/tags", map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, ErrNameRequired.Error(), env.Error)
}

func TestBareMutations(t *testing.T) {
	backend := NewBackend()
	router := NewRouter(backend, Options{BareMutations: true})
	note := backend.CreateNote(model.Note{Name: "a"})

	code, env := call(t, router, http.MethodDelete, "/api/v1/notes/trash/"+note.ID.String(), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", string(env.Data))

	stored, err := backend.GetNote(note.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
}

func TestBearerAuth(t *testing.T) {
	router := NewRouter(NewBackend(), Options{Token: "s3cret"})

	code, env := call(t, router, http.MethodGet, "/api/v1/notes", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, env.Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
