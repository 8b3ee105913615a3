package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nhle/notekeeper/internal/model"
)

// ListNotes returns the active note listing.
func (c *Client) ListNotes(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := c.do(ctx, http.MethodGet, c.notesURL, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote fetches a single note.
func (c *Client) GetNote(ctx context.Context, id model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodGet, "/notes/"+id.String(), nil)
}

// ListTrash returns the trashed notes.
func (c *Client) ListTrash(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := c.do(ctx, http.MethodGet, c.notesURL, "/notes/trash", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// ListArchive returns the archived notes.
func (c *Client) ListArchive(ctx context.Context) ([]model.Note, error) {
	var notes []model.Note
	if err := c.do(ctx, http.MethodGet, c.notesURL, "/notes/archive", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// ListNotesByNotebook returns every note filed under a notebook.
func (c *Client) ListNotesByNotebook(ctx context.Context, notebookID model.ID) ([]model.Note, error) {
	var notes []model.Note
	err := c.do(ctx, http.MethodGet, c.notesURL, "/notes/group/"+notebookID.String(), nil, &notes)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// ListNotesByTags returns the notes carrying any of the given tags.
func (c *Client) ListNotesByTags(ctx context.Context, tagIDs []model.ID) ([]model.Note, error) {
	if tagIDs == nil {
		tagIDs = []model.ID{}
	}
	body := struct {
		Tags []model.ID `json:"tags"`
	}{Tags: tagIDs}

	var notes []model.Note
	if err := c.do(ctx, http.MethodPost, c.notesURL, "/notes/tag", body, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote creates a note and returns the stored representation.
func (c *Client) CreateNote(ctx context.Context, note model.Note) (*model.Note, error) {
	body := struct {
		Name       string     `json:"name"`
		Text       string     `json:"text"`
		Color      string     `json:"color"`
		Order      int        `json:"order"`
		NotebookID model.ID   `json:"notebook_id,omitempty"`
		Tags       []model.ID `json:"tags"`
	}{
		Name:       note.Name,
		Text:       note.Text,
		Color:      note.Color,
		Order:      note.Order,
		NotebookID: note.NotebookID,
		Tags:       note.Tags,
	}
	if body.Tags == nil {
		body.Tags = []model.ID{}
	}
	return c.noteCall(ctx, http.MethodPost, "/notes", body)
}

// UpdateNote sends the editable fields of a note.
func (c *Client) UpdateNote(ctx context.Context, id model.ID, patch model.NotePatch) (*model.Note, error) {
	if patch.Tags == nil {
		patch.Tags = []model.ID{}
	}
	return c.noteCall(ctx, http.MethodPut, "/notes/"+id.String(), patch)
}

// ChangeNotebook files the note under notebookID. An empty id unfiles it.
func (c *Client) ChangeNotebook(ctx context.Context, id, notebookID model.ID) (*model.Note, error) {
	body := struct {
		NotebookID model.ID `json:"notebook_id"`
	}{NotebookID: notebookID}
	return c.noteCall(ctx, http.MethodPut, "/notes/notebook/"+id.String(), body)
}

// AddTagToNote attaches a tag.
func (c *Client) AddTagToNote(ctx context.Context, id, tagID model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodPut, "/notes/tag/"+id.String(), tagBody{TagID: tagID})
}

// RemoveTagFromNote detaches a tag.
func (c *Client) RemoveTagFromNote(ctx context.Context, id, tagID model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodPatch, "/notes/tag/"+id.String(), tagBody{TagID: tagID})
}

// DeleteNote removes a note permanently.
func (c *Client) DeleteNote(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, c.notesURL, "/notes/"+id.String(), nil, nil)
}

// MoveToTrash sets is_deleted on the note.
func (c *Client) MoveToTrash(ctx context.Context, id model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodDelete, "/notes/trash/"+id.String(), nil)
}

// RestoreFromTrash clears is_deleted.
func (c *Client) RestoreFromTrash(ctx context.Context, id model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodGet, "/notes/trash/"+id.String(), nil)
}

// MoveToArchive sets is_archived on the note.
func (c *Client) MoveToArchive(ctx context.Context, id model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodDelete, "/notes/archive/"+id.String(), nil)
}

// RestoreFromArchive clears is_archived.
func (c *Client) RestoreFromArchive(ctx context.Context, id model.ID) (*model.Note, error) {
	return c.noteCall(ctx, http.MethodGet, "/notes/archive/"+id.String(), nil)
}

type tagBody struct {
	TagID model.ID `json:"tag_id"`
}

// noteCall performs a note endpoint that may answer with a note, null or a
// non-entity payload such as a status string. Anything but a note with an
// id is treated as null.
func (c *Client) noteCall(ctx context.Context, method, path string, body interface{}) (*model.Note, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, c.notesURL, path, body, &raw); err != nil {
		return nil, err
	}
	var note model.Note
	if ok, err := decodeEntity(method, path, raw, &note); !ok || err != nil {
		return nil, err
	}
	if note.ID.IsZero() {
		return nil, nil
	}
	return &note, nil
}
