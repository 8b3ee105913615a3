package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nhle/notekeeper/internal/model"
)

type tagPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListTags returns the tag vocabulary.
func (c *Client) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := c.do(ctx, http.MethodGet, c.tagsURL, "/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag fetches one tag.
func (c *Client) GetTag(ctx context.Context, id model.ID) (*model.Tag, error) {
	var tag *model.Tag
	if err := c.do(ctx, http.MethodGet, c.tagsURL, "/tags/"+id.String(), nil, &tag); err != nil {
		return nil, err
	}
	if tag == nil || tag.ID.IsZero() {
		return nil, &ParseError{Method: http.MethodGet, Path: "/tags/" + id.String(), Err: errors.New("empty tag")}
	}
	return tag, nil
}

// CreateTag creates a tag and returns only its server-assigned id. The
// backend answers with either a bare id or an object carrying one.
func (c *Client) CreateTag(ctx context.Context, name, color string) (model.ID, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.tagsURL, "/tags", tagPayload{Name: name, Color: color}, &raw); err != nil {
		return "", err
	}

	var id model.ID
	if err := json.Unmarshal(raw, &id); err != nil || id.IsZero() {
		var obj struct {
			ID model.ID `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil || obj.ID.IsZero() {
			return "", &ParseError{
				Method: http.MethodPost,
				Path:   "/tags",
				Body:   truncate(string(raw), 200),
				Err:    errors.New("response carries no tag id"),
			}
		}
		id = obj.ID
	}
	return id, nil
}

// UpdateTag changes a tag's name and color.
func (c *Client) UpdateTag(ctx context.Context, id model.ID, name, color string) error {
	return c.do(ctx, http.MethodPut, c.tagsURL, "/tags/"+id.String(), tagPayload{Name: name, Color: color}, nil)
}

// DeleteTag removes a tag. Notes keep referencing its id.
func (c *Client) DeleteTag(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, c.tagsURL, "/tags/"+id.String(), nil, nil)
}
