package cache

import (
	"context"

	"github.com/nhle/notekeeper/internal/model"
)

// Preference keys.
const (
	KeyTheme        = "theme"
	KeyLastNotebook = "last_notebook"
)

// Theme returns the stored theme, or fallback when none was saved or the
// stored value is not a known theme.
func (c *Cache) Theme(ctx context.Context, fallback string) (string, error) {
	v, ok, err := c.Preference(ctx, KeyTheme)
	if err != nil {
		return fallback, err
	}
	if !ok || (v != model.ThemeLight && v != model.ThemeDark) {
		return fallback, nil
	}
	return v, nil
}

// SetTheme stores the theme chosen by the user.
func (c *Cache) SetTheme(ctx context.Context, theme string) error {
	return c.SetPreference(ctx, KeyTheme, theme)
}

// LastNotebook returns the notebook that was active when the app last ran.
func (c *Cache) LastNotebook(ctx context.Context) (model.ID, error) {
	v, _, err := c.Preference(ctx, KeyLastNotebook)
	return model.ID(v), err
}

// SetLastNotebook records the active notebook. An empty id clears it.
func (c *Cache) SetLastNotebook(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return c.DeletePreference(ctx, KeyLastNotebook)
	}
	return c.SetPreference(ctx, KeyLastNotebook, id.String())
}
