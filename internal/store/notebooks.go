package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nhle/notekeeper/internal/model"
)

// FetchNotebooks replaces the notebook collection. The active notebook
// follows the listing and is cleared when it disappeared.
func (s *Store) FetchNotebooks(ctx context.Context) error {
	return s.track(ctx, OpFetchNotebooks, "", s.refreshNotebooks)
}

func (s *Store) refreshNotebooks(ctx context.Context) error {
	notebooks, err := s.notebooksAPI.ListNotebooks(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.notebooks = slices.Clone(notebooks)
	if s.activeNotebook != nil {
		s.activeNotebook = s.notebookLocked(s.activeNotebook.ID)
	}
	s.mu.Unlock()

	s.publish(KindNotebook, OpFetchNotebooks, "")
	return nil
}

// CreateNotebook creates a notebook and appends the server's
// representation. When the server answers without a body the list is
// refetched and the newest notebook with that name is returned.
func (s *Store) CreateNotebook(ctx context.Context, name, description string) (model.Notebook, error) {
	name = strings.TrimSpace(name)

	var created model.Notebook
	err := s.track(ctx, OpCreateNotebook, "", func(ctx context.Context) error {
		if name == "" {
			return ErrEmptyName
		}
		nb, err := s.notebooksAPI.CreateNotebook(ctx, name, description)
		if err != nil {
			return err
		}

		if nb == nil {
			if err := s.refreshNotebooks(ctx); err != nil {
				return err
			}
			s.mu.RLock()
			defer s.mu.RUnlock()
			for i := len(s.notebooks) - 1; i >= 0; i-- {
				if s.notebooks[i].Name == name {
					created = s.notebooks[i]
					return nil
				}
			}
			return ErrNoEntity
		}

		created = *nb
		s.mu.Lock()
		if i := s.notebookIndexLocked(nb.ID); i >= 0 {
			s.notebooks[i] = created
		} else {
			s.notebooks = append(s.notebooks, created)
		}
		s.mu.Unlock()

		s.publish(KindNotebook, OpCreateNotebook, created.ID)
		return nil
	})
	return created, err
}

// RenameNotebook changes a notebook's name and description. Notes keep
// referencing it by id.
func (s *Store) RenameNotebook(ctx context.Context, id model.ID, name, description string) (model.Notebook, error) {
	name = strings.TrimSpace(name)

	var renamed model.Notebook
	err := s.track(ctx, OpRenameNotebook, id, func(ctx context.Context) error {
		if name == "" {
			return ErrEmptyName
		}
		nb, err := s.notebooksAPI.UpdateNotebook(ctx, id, name, description)
		if err != nil {
			return err
		}

		if nb == nil {
			if err := s.refreshNotebooks(ctx); err != nil {
				return err
			}
			s.mu.RLock()
			defer s.mu.RUnlock()
			if found := s.notebookLocked(id); found != nil {
				renamed = *found
				return nil
			}
			return ErrNoEntity
		}

		renamed = *nb
		s.mu.Lock()
		if i := s.notebookIndexLocked(id); i >= 0 {
			s.notebooks[i] = renamed
		} else {
			s.notebooks = append(s.notebooks, renamed)
		}
		if s.activeNotebook != nil && s.activeNotebook.ID == id {
			c := renamed
			s.activeNotebook = &c
		}
		s.mu.Unlock()

		s.publish(KindNotebook, OpRenameNotebook, id)
		return nil
	})
	return renamed, err
}

// DeleteNotebook moves every note of the notebook to the trash, then
// deletes the notebook. The notes are the server's listing for the
// notebook plus any local active note filed under it. If any note cannot
// be trashed the notebook is kept and the error returned; notes already
// trashed stay in the trash.
func (s *Store) DeleteNotebook(ctx context.Context, id model.ID) error {
	return s.track(ctx, OpDeleteNotebook, id, func(ctx context.Context) error {
		listing, err := s.notesAPI.ListNotesByNotebook(ctx, id)
		if err != nil {
			return fmt.Errorf("listing notes of notebook %s: %w", id, err)
		}

		for _, noteID := range s.cascadeTargets(id, listing) {
			// A stale response still means the server trashed the note.
			if _, err := s.MoveToTrash(ctx, noteID); err != nil && !errors.Is(err, ErrStaleResponse) {
				return fmt.Errorf("trashing note %s: %w", noteID, err)
			}
		}

		if err := s.notebooksAPI.DeleteNotebook(ctx, id); err != nil {
			return err
		}

		s.mu.Lock()
		s.notebooks = slices.DeleteFunc(s.notebooks, func(nb model.Notebook) bool { return nb.ID == id })
		if s.activeNotebook != nil && s.activeNotebook.ID == id {
			s.activeNotebook = nil
		}
		s.mu.Unlock()

		s.publish(KindNotebook, OpDeleteNotebook, id)
		return nil
	})
}

// cascadeTargets merges the server listing with local active notes of the
// notebook, skipping notes already in the trash.
func (s *Store) cascadeTargets(notebookID model.ID, listing []model.Note) []model.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []model.ID
	add := func(n model.Note) {
		if n.IsDeleted || slices.Contains(ids, n.ID) {
			return
		}
		if indexOf(s.trashed, n.ID) >= 0 {
			return
		}
		ids = append(ids, n.ID)
	}

	for _, n := range listing {
		add(n)
	}
	for _, n := range s.active {
		if n.NotebookID == notebookID {
			add(n)
		}
	}
	return ids
}

// SetActiveNotebook selects a loaded notebook. An unknown or empty id
// leaves no notebook selected; nothing is fetched.
func (s *Store) SetActiveNotebook(id model.ID) (model.Notebook, bool) {
	s.mu.Lock()
	s.activeNotebook = s.notebookLocked(id)
	nb := s.activeNotebook
	s.mu.Unlock()

	s.publish(KindNotebook, "notebooks.select", id)
	if nb == nil {
		return model.Notebook{}, false
	}
	return *nb, true
}

// ActiveNotebook returns the selected notebook.
func (s *Store) ActiveNotebook() (model.Notebook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeNotebook == nil {
		return model.Notebook{}, false
	}
	return *s.activeNotebook, true
}

// Notebooks returns a copy of the notebook collection.
func (s *Store) Notebooks() []model.Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notebooks)
}

// NotebookFor resolves a note's notebook. Dangling references resolve to
// nothing.
func (s *Store) NotebookFor(note model.Note) (model.Notebook, bool) {
	if note.NotebookID.IsZero() {
		return model.Notebook{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if nb := s.notebookLocked(note.NotebookID); nb != nil {
		return *nb, true
	}
	return model.Notebook{}, false
}

// notebookLocked returns a copy of the loaded notebook with id, or nil.
func (s *Store) notebookLocked(id model.ID) *model.Notebook {
	if i := s.notebookIndexLocked(id); i >= 0 {
		nb := s.notebooks[i]
		return &nb
	}
	return nil
}

func (s *Store) notebookIndexLocked(id model.ID) int {
	if id.IsZero() {
		return -1
	}
	return slices.IndexFunc(s.notebooks, func(nb model.Notebook) bool { return nb.ID == id })
}
