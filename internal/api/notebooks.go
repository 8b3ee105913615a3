package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nhle/notekeeper/internal/model"
)

type notebookBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListNotebooks returns every notebook.
func (c *Client) ListNotebooks(ctx context.Context) ([]model.Notebook, error) {
	var notebooks []model.Notebook
	if err := c.do(ctx, http.MethodGet, c.baseURL, "/notebooks", nil, &notebooks); err != nil {
		return nil, err
	}
	return notebooks, nil
}

// GetNotebook fetches one notebook.
func (c *Client) GetNotebook(ctx context.Context, id model.ID) (*model.Notebook, error) {
	return c.notebookCall(ctx, http.MethodGet, "/notebooks/"+id.String(), nil)
}

// CreateNotebook creates a notebook. The result is nil when the server
// answered without a body.
func (c *Client) CreateNotebook(ctx context.Context, name, description string) (*model.Notebook, error) {
	return c.notebookCall(ctx, http.MethodPost, "/notebooks", notebookBody{Name: name, Description: description})
}

// UpdateNotebook renames a notebook.
func (c *Client) UpdateNotebook(ctx context.Context, id model.ID, name, description string) (*model.Notebook, error) {
	return c.notebookCall(ctx, http.MethodPut, "/notebooks/"+id.String(),
		notebookBody{Name: name, Description: description})
}

// DeleteNotebook deletes a notebook. Its notes are not touched.
func (c *Client) DeleteNotebook(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, c.baseURL, "/notebooks/"+id.String(), nil, nil)
}

func (c *Client) notebookCall(ctx context.Context, method, path string, body interface{}) (*model.Notebook, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, c.baseURL, path, body, &raw); err != nil {
		return nil, err
	}
	var nb model.Notebook
	if ok, err := decodeEntity(method, path, raw, &nb); !ok || err != nil {
		return nil, err
	}
	if nb.ID.IsZero() {
		return nil, nil
	}
	return &nb, nil
}
