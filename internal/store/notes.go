package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/model"
)

// FetchAll replaces the active collection with the server listing. The
// listing is kept as sent; ActiveNotes filters flagged entries for display.
func (s *Store) FetchAll(ctx context.Context) error {
	return s.fetchNotes(ctx, OpFetchNotes, model.LocationActive, s.notesAPI.ListNotes)
}

// FetchTrash replaces the trashed collection.
func (s *Store) FetchTrash(ctx context.Context) error {
	return s.fetchNotes(ctx, OpFetchTrash, model.LocationTrashed, s.notesAPI.ListTrash)
}

// FetchArchive replaces the archived collection.
func (s *Store) FetchArchive(ctx context.Context) error {
	return s.fetchNotes(ctx, OpFetchArchive, model.LocationArchived, s.notesAPI.ListArchive)
}

func (s *Store) fetchNotes(
	ctx context.Context,
	kind string,
	loc model.Location,
	list func(context.Context) ([]model.Note, error),
) error {
	return s.track(ctx, kind, "", func(ctx context.Context) error {
		seq := s.issue()
		notes, err := list(ctx)
		if err != nil {
			return err
		}

		s.mu.Lock()
		*s.collectionLocked(loc) = s.mergeListingLocked(notes, seq)
		s.mu.Unlock()

		warnConflicts(ctx, notes...)
		s.publish(KindNote, kind, "")
		return nil
	})
}

// Create sends a new note and, once the server assigned an id, appends the
// stored representation to the active collection.
func (s *Store) Create(ctx context.Context, note model.Note) (model.Note, error) {
	var created model.Note
	err := s.track(ctx, OpCreateNote, "", func(ctx context.Context) error {
		resp, err := s.notesAPI.CreateNote(ctx, note)
		if err != nil {
			return err
		}
		if resp == nil {
			return ErrNoEntity
		}

		created = normalize(*resp)
		s.mu.Lock()
		s.placeLocked(created)
		s.mu.Unlock()

		s.publish(KindNote, OpCreateNote, created.ID)
		return nil
	})
	return created, err
}

// Update sends the patch and replaces the local entry with the server's
// representation, refetching the note when the response has no body.
func (s *Store) Update(ctx context.Context, id model.ID, patch model.NotePatch) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpUpdateNote,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.UpdateNote(ctx, id, patch)
		},
	})
}

// MoveToTrash flags the note deleted and moves it to the trash.
func (s *Store) MoveToTrash(ctx context.Context, id model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpMoveToTrash,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.MoveToTrash(ctx, id)
		},
		local: func(n *model.Note) { n.IsDeleted = true },
		flip:  true,
	})
}

// RestoreFromTrash clears the deleted flag. The note lands in the archive
// when it is still archived, otherwise among the active notes.
func (s *Store) RestoreFromTrash(ctx context.Context, id model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpRestoreFromTrash,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.RestoreFromTrash(ctx, id)
		},
		local: func(n *model.Note) { n.IsDeleted = false },
		flip:  true,
	})
}

// MoveToArchive flags the note archived and moves it to the archive.
func (s *Store) MoveToArchive(ctx context.Context, id model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpMoveToArchive,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.MoveToArchive(ctx, id)
		},
		local: func(n *model.Note) { n.IsArchived = true },
		flip:  true,
	})
}

// RestoreFromArchive clears the archived flag.
func (s *Store) RestoreFromArchive(ctx context.Context, id model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpRestoreFromArchive,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.RestoreFromArchive(ctx, id)
		},
		local: func(n *model.Note) { n.IsArchived = false },
		flip:  true,
	})
}

// ChangeNotebook files the note under notebookID, taking the full note
// from the response or a refetch.
func (s *Store) ChangeNotebook(ctx context.Context, id, notebookID model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpChangeNotebook,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.ChangeNotebook(ctx, id, notebookID)
		},
	})
}

// AddTag attaches tagID. The note never carries the same tag twice.
func (s *Store) AddTag(ctx context.Context, id, tagID model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpAddTag,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.AddTagToNote(ctx, id, tagID)
		},
		local: func(n *model.Note) { n.Tags = append(n.Tags, tagID) },
	})
}

// RemoveTag detaches tagID.
func (s *Store) RemoveTag(ctx context.Context, id, tagID model.ID) (model.Note, error) {
	return s.mutateNote(ctx, id, noteMutation{
		kind: OpRemoveTag,
		call: func(ctx context.Context) (*model.Note, error) {
			return s.notesAPI.RemoveTagFromNote(ctx, id, tagID)
		},
		local: func(n *model.Note) {
			n.Tags = slices.DeleteFunc(n.Tags, func(t model.ID) bool { return t == tagID })
		},
	})
}

// DeleteForever removes the note on the server and from every local
// collection. A note the server no longer knows counts as deleted, so
// repeated calls succeed.
func (s *Store) DeleteForever(ctx context.Context, id model.ID) error {
	return s.track(ctx, OpDeleteNote, id, func(ctx context.Context) error {
		seq := s.issue()
		err := s.notesAPI.DeleteNote(ctx, id)
		if err != nil && !errors.Is(err, api.ErrNotFound) {
			return err
		}

		s.mu.Lock()
		s.acceptLocked(id, seq)
		s.removeLocked(id)
		s.mu.Unlock()

		s.publish(KindNote, OpDeleteNote, id)
		return nil
	})
}

// noteMutation describes one single-note endpoint.
type noteMutation struct {
	kind string
	call func(ctx context.Context) (*model.Note, error)

	// local derives the result from the local copy when the server sent
	// no body. Nil means the note is always refetched.
	local func(n *model.Note)

	// flip marks local as the confirmed lifecycle change. It is applied
	// over whatever note settle picked, so a body echoing the note as it
	// was before the call cannot undo it.
	flip bool
}

func (s *Store) mutateNote(ctx context.Context, id model.ID, m noteMutation) (model.Note, error) {
	var result model.Note
	err := s.track(ctx, m.kind, id, func(ctx context.Context) error {
		seq := s.issue()
		resp, err := m.call(ctx)
		if err != nil {
			return err
		}

		note, err := s.settle(ctx, id, resp, m.local)
		if err != nil {
			return err
		}
		if m.flip {
			m.local(&note)
		}
		note = normalize(note)

		s.mu.Lock()
		if !s.acceptLocked(id, seq) {
			s.mu.Unlock()
			return ErrStaleResponse
		}
		s.placeLocked(note)
		s.mu.Unlock()

		result = note
		warnConflicts(ctx, note)
		s.publish(KindNote, m.kind, id)
		return nil
	})
	return result, err
}

// settle picks the authoritative note after a confirmed mutation: the
// response body, else the patched local copy, else a fresh GET.
func (s *Store) settle(ctx context.Context, id model.ID, resp *model.Note, local func(*model.Note)) (model.Note, error) {
	if resp != nil {
		return *resp, nil
	}

	if local != nil {
		s.mu.RLock()
		n, ok := s.findLocked(id)
		s.mu.RUnlock()
		if ok {
			local(&n)
			return n, nil
		}
	}

	fetched, err := s.notesAPI.GetNote(ctx, id)
	if err != nil {
		return model.Note{}, fmt.Errorf("refetching note %s: %w", id, err)
	}
	if fetched == nil {
		return model.Note{}, ErrNoEntity
	}
	return *fetched, nil
}

// SetActiveNote selects a note. It is looked up locally first and fetched
// when unknown. An empty id clears the selection.
func (s *Store) SetActiveNote(ctx context.Context, id model.ID) (model.Note, error) {
	if id.IsZero() {
		s.mu.Lock()
		s.activeNote = nil
		s.mu.Unlock()
		s.publish(KindNote, OpSelectNote, "")
		return model.Note{}, nil
	}

	s.mu.Lock()
	if n, ok := s.findLocked(id); ok {
		s.activeNote = &n
		s.mu.Unlock()
		s.publish(KindNote, OpSelectNote, id)
		return n.Clone(), nil
	}
	s.mu.Unlock()

	var selected model.Note
	err := s.track(ctx, OpSelectNote, id, func(ctx context.Context) error {
		fetched, err := s.notesAPI.GetNote(ctx, id)
		if err != nil {
			return err
		}
		if fetched == nil {
			return ErrNoEntity
		}

		selected = normalize(*fetched)
		c := selected.Clone()
		s.mu.Lock()
		s.activeNote = &c
		s.mu.Unlock()

		s.publish(KindNote, OpSelectNote, id)
		return nil
	})
	return selected, err
}

// ActiveNote returns the selected note.
func (s *Store) ActiveNote() (model.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeNote == nil {
		return model.Note{}, false
	}
	return s.activeNote.Clone(), true
}

// NotesByNotebook returns the server's listing for a notebook without
// touching the local collections.
func (s *Store) NotesByNotebook(ctx context.Context, notebookID model.ID) ([]model.Note, error) {
	var notes []model.Note
	err := s.track(ctx, OpNotesByNotebook, notebookID, func(ctx context.Context) error {
		var err error
		notes, err = s.notesAPI.ListNotesByNotebook(ctx, notebookID)
		return err
	})
	return notes, err
}

// NotesByTags returns the server's listing for a tag set without touching
// the local collections.
func (s *Store) NotesByTags(ctx context.Context, tagIDs []model.ID) ([]model.Note, error) {
	var notes []model.Note
	err := s.track(ctx, OpNotesByTags, "", func(ctx context.Context) error {
		var err error
		notes, err = s.notesAPI.ListNotesByTags(ctx, tagIDs)
		return err
	})
	return notes, err
}

// Notes returns a copy of the active collection.
func (s *Store) Notes() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.active)
}

// Archived returns a copy of the archived collection.
func (s *Store) Archived() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.archived)
}

// Trashed returns a copy of the trashed collection.
func (s *Store) Trashed() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.trashed)
}

// Note looks a note up in the local collections.
func (s *Store) Note(id model.ID) (model.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}
