package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/notekeeper/internal/model"
)

// FetchTags replaces the tag collection.
func (s *Store) FetchTags(ctx context.Context) error {
	return s.track(ctx, OpFetchTags, "", s.refreshTags)
}

func (s *Store) refreshTags(ctx context.Context) error {
	tags, err := s.tagsAPI.ListTags(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tags = slices.Clone(tags)
	s.mu.Unlock()

	s.publish(KindTag, OpFetchTags, "")
	return nil
}

// CreateTag creates a tag. Names are compared trimmed and
// case-insensitively against the loaded tags first; the check is best
// effort since other clients may create the same name meanwhile. The
// server only returns the new id, so the tag is fetched before it is
// appended.
func (s *Store) CreateTag(ctx context.Context, name, color string) (model.Tag, error) {
	name = strings.TrimSpace(name)

	var created model.Tag
	err := s.track(ctx, OpCreateTag, "", func(ctx context.Context) error {
		if name == "" {
			return ErrEmptyName
		}
		if _, exists := s.TagByName(name); exists {
			return ErrDuplicateTag
		}
		id, err := s.tagsAPI.CreateTag(ctx, name, color)
		if err != nil {
			return err
		}

		tag, err := s.tagsAPI.GetTag(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching created tag %s: %w", id, err)
		}
		if tag == nil {
			return ErrNoEntity
		}

		created = *tag
		s.mu.Lock()
		if i := s.tagIndexLocked(id); i >= 0 {
			s.tags[i] = created
		} else {
			s.tags = append(s.tags, created)
		}
		s.mu.Unlock()

		s.publish(KindTag, OpCreateTag, id)
		return nil
	})
	return created, err
}

// UpdateTag changes a tag and then reloads the whole tag list.
func (s *Store) UpdateTag(ctx context.Context, id model.ID, name, color string) error {
	name = strings.TrimSpace(name)

	return s.track(ctx, OpUpdateTag, id, func(ctx context.Context) error {
		if name == "" {
			return ErrEmptyName
		}
		if err := s.tagsAPI.UpdateTag(ctx, id, name, color); err != nil {
			return err
		}

		s.mu.Lock()
		if i := s.tagIndexLocked(id); i >= 0 {
			s.tags[i].Name = name
			s.tags[i].Color = color
		}
		s.mu.Unlock()

		return s.refreshTags(ctx)
	})
}

// DeleteTag deletes a tag, drops it locally, and reloads the list. Notes
// keep the id; ResolveTags hides it.
func (s *Store) DeleteTag(ctx context.Context, id model.ID) error {
	return s.track(ctx, OpDeleteTag, id, func(ctx context.Context) error {
		if err := s.tagsAPI.DeleteTag(ctx, id); err != nil {
			return err
		}

		s.mu.Lock()
		s.tags = slices.DeleteFunc(s.tags, func(t model.Tag) bool { return t.ID == id })
		s.mu.Unlock()
		s.publish(KindTag, OpDeleteTag, id)

		return s.refreshTags(ctx)
	})
}

// Tags returns a copy of the tag collection.
func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

// Tag looks up a loaded tag.
func (s *Store) Tag(id model.ID) (model.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.tagIndexLocked(id); i >= 0 {
		return s.tags[i], true
	}
	return model.Tag{}, false
}

// TagByName finds a loaded tag by trimmed, case-insensitive name.
func (s *Store) TagByName(name string) (model.Tag, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if strings.EqualFold(strings.TrimSpace(t.Name), name) {
			return t, true
		}
	}
	return model.Tag{}, false
}

// ResolveTags returns the tag objects for a note, in the note's order,
// silently skipping ids that are not loaded.
func (s *Store) ResolveTags(note model.Note) []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Tag, 0, len(note.Tags))
	for _, id := range model.DedupTags(note.Tags) {
		if i := s.tagIndexLocked(id); i >= 0 {
			out = append(out, s.tags[i])
		}
	}
	return out
}

func (s *Store) tagIndexLocked(id model.ID) int {
	return slices.IndexFunc(s.tags, func(t model.Tag) bool { return t.ID == id })
}
