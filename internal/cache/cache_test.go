package cache_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/cache"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	c := testutil.NewTestCache(t)
	v, err := c.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	c, err := cache.Open(path)
	require.NoError(t, err)
	require.NoError(t, c.SetTheme(ctx, model.ThemeLight))
	require.NoError(t, c.Close())

	c, err = cache.Open(path)
	require.NoError(t, err)
	defer c.Close()

	theme, err := c.Theme(ctx, model.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, theme)

	v, err := c.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	c := testutil.NewTestCache(t)

	_, ok, err := c.Preference(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetPreference(ctx, "k", "v1"))
	require.NoError(t, c.SetPreference(ctx, "k", "v2"))
	v, ok, err := c.Preference(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestTheme(t *testing.T) {
	ctx := context.Background()
	c := testutil.NewTestCache(t)

	theme, err := c.Theme(ctx, model.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, theme, "fallback when unset")

	require.NoError(t, c.SetPreference(ctx, cache.KeyTheme, "sepia"))
	theme, err = c.Theme(ctx, model.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, theme, "fallback for unknown values")

	require.NoError(t, c.SetTheme(ctx, model.ThemeLight))
	theme, err = c.Theme(ctx, model.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, theme)
}

func TestLastNotebook(t *testing.T) {
	ctx := context.Background()
	c := testutil.NewTestCache(t)

	require.NoError(t, c.SetLastNotebook(ctx, "nb-1"))
	id, err := c.LastNotebook(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ID("nb-1"), id)

	require.NoError(t, c.SetLastNotebook(ctx, ""))
	id, err = c.LastNotebook(ctx)
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := testutil.NewTestCache(t)

	_, _, ok, err := c.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	snap := store.Snapshot{
		Notes:     []model.Note{{ID: "1", Name: "a", Order: model.PriorityHigh, Tags: []model.ID{"t"}}},
		Archived:  []model.Note{{ID: "2", Name: "b", IsArchived: true, Tags: []model.ID{}}},
		Trashed:   []model.Note{},
		Notebooks: []model.Notebook{{ID: "nb", Name: "Work"}},
		Tags:      []model.Tag{{ID: "t", Name: "urgent", Color: "#ff0000"}},
	}
	require.NoError(t, c.SaveSnapshot(ctx, snap))

	got, savedAt, ok, err := c.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, savedAt.IsZero())
	assert.Equal(t, snap, got)
}
