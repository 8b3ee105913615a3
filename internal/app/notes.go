package app

import (
	"context"
	"errors"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/ui/noteform"
)

// Collections fetched from the server.
const (
	fetchNotes     = "notes"
	fetchArchive   = "archive"
	fetchTrash     = "trash"
	fetchNotebooks = "notebooks"
	fetchTags      = "tags"
)

// fetchedMsg reports the outcome of one collection fetch.
type fetchedMsg struct {
	what string
	err  error
}

// noteOpenedMsg carries the note selected for the editor or detail view.
type noteOpenedMsg struct {
	note model.Note
	err  error
}

// noteSavedMsg reports a lifecycle or form mutation of one note.
type noteSavedMsg struct {
	verb string
	note model.Note
	// open asks for the editor on success.
	open bool
	err  error
}

type trashEmptiedMsg struct {
	deleted int
	err     error
}

func (m Model) fetch(what string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch what {
		case fetchNotes:
			err = s.FetchAll(ctx)
		case fetchArchive:
			err = s.FetchArchive(ctx)
		case fetchTrash:
			err = s.FetchTrash(ctx)
		case fetchNotebooks:
			err = s.FetchNotebooks(ctx)
		case fetchTags:
			err = s.FetchTags(ctx)
		}
		return fetchedMsg{what: what, err: err}
	}
}

// fetchAll loads every collection concurrently.
func (m Model) fetchAll() tea.Cmd {
	return tea.Batch(
		m.fetch(fetchNotes),
		m.fetch(fetchArchive),
		m.fetch(fetchTrash),
		m.fetch(fetchNotebooks),
		m.fetch(fetchTags),
	)
}

func (m Model) openNote(id model.ID) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		n, err := s.SetActiveNote(context.Background(), id)
		return noteOpenedMsg{note: n, err: err}
	}
}

// noteOp runs one single-note store mutation.
func (m Model) noteOp(verb string, id model.ID, op func(context.Context, model.ID) (model.Note, error)) tea.Cmd {
	return func() tea.Msg {
		n, err := op(context.Background(), id)
		return noteSavedMsg{verb: verb, note: n, err: err}
	}
}

func (m Model) moveToTrash(id model.ID) tea.Cmd {
	return m.noteOp("Moved to trash", id, m.store.MoveToTrash)
}

func (m Model) moveToArchive(id model.ID) tea.Cmd {
	return m.noteOp("Archived", id, m.store.MoveToArchive)
}

func (m Model) restore(n model.Note) tea.Cmd {
	switch n.Location() {
	case model.LocationTrashed:
		return m.noteOp("Restored from trash", n.ID, m.store.RestoreFromTrash)
	case model.LocationArchived:
		return m.noteOp("Restored from archive", n.ID, m.store.RestoreFromArchive)
	default:
		return nil
	}
}

func (m Model) deleteForever(id model.ID) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteForever(context.Background(), id)
		return noteSavedMsg{verb: "Deleted forever", err: err}
	}
}

// emptyTrash deletes every trashed note, stopping at the first failure.
func (m Model) emptyTrash() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		deleted := 0
		for _, n := range s.Trashed() {
			if err := s.DeleteForever(ctx, n.ID); err != nil {
				return trashEmptiedMsg{deleted: deleted, err: err}
			}
			deleted++
		}
		return trashEmptiedMsg{deleted: deleted}
	}
}

// saveForm applies a note form submission. A new note is created with
// every field set; an edit sends the details update, then a notebook
// move, then one request per added or removed tag.
func (m Model) saveForm(msg noteform.SubmitMsg) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		if msg.IsNew() {
			n, err := s.Create(ctx, msg.Note)
			return noteSavedMsg{verb: "Created", note: n, open: err == nil, err: err}
		}

		n, err := applyEdit(ctx, s, msg.Original, msg.Note)
		return noteSavedMsg{verb: "Saved", note: n, err: err}
	}
}

func applyEdit(ctx context.Context, s *store.Store, orig, edited model.Note) (model.Note, error) {
	current := orig
	id := orig.ID

	patch := model.PatchOf(orig)
	patch.Name = edited.Name
	patch.Color = edited.Color
	patch.Order = edited.Order
	if patch.Name != orig.Name || patch.Color != orig.Color || patch.Order != orig.Order {
		n, err := s.Update(ctx, id, patch)
		if err != nil {
			return current, err
		}
		current = n
	}

	if edited.NotebookID != orig.NotebookID {
		n, err := s.ChangeNotebook(ctx, id, edited.NotebookID)
		if err != nil {
			return current, err
		}
		current = n
	}

	var errs []error
	for _, tagID := range edited.Tags {
		if slices.Contains(orig.Tags, tagID) {
			continue
		}
		n, err := s.AddTag(ctx, id, tagID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		current = n
	}
	for _, tagID := range orig.Tags {
		if slices.Contains(edited.Tags, tagID) {
			continue
		}
		n, err := s.RemoveTag(ctx, id, tagID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		current = n
	}
	return current, errors.Join(errs...)
}
