package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/mockapi"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
)

func TestCreateTagFetchesAfterCreate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})

	tag, err := s.CreateTag(ctx, "  urgent ", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "urgent", tag.Name)
	assert.Equal(t, "#ff0000", tag.Color)
	assert.Equal(t, []model.Tag{tag}, s.Tags())
}

func TestCreateTagDuplicateCheck(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})

	_, err := s.CreateTag(ctx, "Urgent", "red")
	require.NoError(t, err)

	for _, name := range []string{"Urgent", "urgent", " URGENT  "} {
		_, err := s.CreateTag(ctx, name, "blue")
		assert.ErrorIs(t, err, store.ErrDuplicateTag, name)
		assert.ErrorIs(t, s.Operations().LastError(store.OpCreateTag), store.ErrDuplicateTag, name)
	}
	assert.Len(t, srv.Backend.ListTags(), 1)

	_, err = s.CreateTag(ctx, " ", "blue")
	assert.ErrorIs(t, err, store.ErrEmptyName)
	assert.ErrorIs(t, s.Operations().LastError(store.OpCreateTag), store.ErrEmptyName)
}

func TestUpdateTagRejectsBlankName(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})
	tag, err := s.CreateTag(ctx, "work", "blue")
	require.NoError(t, err)

	err = s.UpdateTag(ctx, tag.ID, "  ", "blue")
	assert.ErrorIs(t, err, store.ErrEmptyName)
	assert.ErrorIs(t, s.Operations().LastError(store.OpUpdateTag), store.ErrEmptyName)
	assert.Equal(t, "work", s.Tags()[0].Name)
}

func TestUpdateTagRefreshesList(t *testing.T) {
	ctx := context.Background()
	s, srv := newStore(t, mockapi.Options{})
	tag, err := s.CreateTag(ctx, "work", "blue")
	require.NoError(t, err)

	// Created elsewhere; shows up after the refresh.
	_, err = srv.Backend.CreateTag("home", "green")
	require.NoError(t, err)

	require.NoError(t, s.UpdateTag(ctx, tag.ID, "job", "navy"))

	tags := s.Tags()
	require.Len(t, tags, 2)
	got, ok := s.Tag(tag.ID)
	require.True(t, ok)
	assert.Equal(t, "job", got.Name)
	assert.Equal(t, "navy", got.Color)
}

func TestDeletedTagIsHiddenOnNotes(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, mockapi.Options{})

	urgent, err := s.CreateTag(ctx, "urgent", "#ff0000")
	require.NoError(t, err)
	later, err := s.CreateTag(ctx, "later", "#00ff00")
	require.NoError(t, err)
	note, err := s.Create(ctx, model.Note{Name: "a"})
	require.NoError(t, err)

	_, err = s.AddTag(ctx, note.ID, urgent.ID)
	require.NoError(t, err)
	_, err = s.AddTag(ctx, note.ID, later.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTag(ctx, urgent.ID))
	assert.Equal(t, []model.Tag{later}, s.Tags())

	require.NoError(t, s.FetchAll(ctx))
	got, ok := s.Note(note.ID)
	require.True(t, ok)
	assert.NotPanics(t, func() {
		assert.Equal(t, []model.Tag{later}, s.ResolveTags(got))
	})
}
