// Package mockapi is an in-memory implementation of the notes backend.
// It serves the same routes and {data, error} envelope as the real server
// and backs local development and the integration tests.
package mockapi

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nhle/notekeeper/internal/model"
)

var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrNotebookNotFound = errors.New("notebook not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrNameRequired     = errors.New("name is required")
)

// Backend holds notes, notebooks and tags in memory. Listings keep
// insertion order.
type Backend struct {
	mu        sync.Mutex
	notes     map[model.ID]*model.Note
	notebooks map[model.ID]*model.Notebook
	tags      map[model.ID]*model.Tag
	order     []model.ID
	nbOrder   []model.ID
	tagOrder  []model.ID
	newID     func() model.ID
}

// NewBackend returns an empty backend.
func NewBackend() *Backend {
	return &Backend{
		notes:     make(map[model.ID]*model.Note),
		notebooks: make(map[model.ID]*model.Notebook),
		tags:      make(map[model.ID]*model.Tag),
		newID:     func() model.ID { return model.ID(uuid.NewString()) },
	}
}

// ListNotes returns notes matching keep, in creation order.
func (b *Backend) ListNotes(keep func(model.Note) bool) []model.Note {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Note, 0, len(b.order))
	for _, id := range b.order {
		n := b.notes[id]
		if keep == nil || keep(*n) {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Active reports whether the note is neither trashed nor archived.
func Active(n model.Note) bool { return !n.IsDeleted && !n.IsArchived }

// Trashed reports whether the note is in the trash.
func Trashed(n model.Note) bool { return n.IsDeleted }

// Archived reports whether the note is archived and not trashed.
func Archived(n model.Note) bool { return n.IsArchived && !n.IsDeleted }

func (b *Backend) GetNote(id model.ID) (model.Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.notes[id]
	if !ok {
		return model.Note{}, ErrNoteNotFound
	}
	return n.Clone(), nil
}

// CreateNote stores a new note with a fresh id. Lifecycle flags from the
// input are ignored.
func (b *Backend) CreateNote(n model.Note) model.Note {
	b.mu.Lock()
	defer b.mu.Unlock()

	n = n.Clone()
	n.ID = b.newID()
	n.IsDeleted = false
	n.IsArchived = false
	n.Tags = model.DedupTags(n.Tags)
	if n.Tags == nil {
		n.Tags = []model.ID{}
	}
	b.notes[n.ID] = &n
	b.order = append(b.order, n.ID)
	return n.Clone()
}

// UpdateNote applies fn to the stored note and returns the result.
func (b *Backend) UpdateNote(id model.ID, fn func(*model.Note)) (model.Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.notes[id]
	if !ok {
		return model.Note{}, ErrNoteNotFound
	}
	fn(n)
	return n.Clone(), nil
}

func (b *Backend) DeleteNote(id model.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.notes[id]; !ok {
		return ErrNoteNotFound
	}
	delete(b.notes, id)
	b.order = slices.DeleteFunc(b.order, func(x model.ID) bool { return x == id })
	return nil
}

func (b *Backend) ListNotebooks() []model.Notebook {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Notebook, 0, len(b.nbOrder))
	for _, id := range b.nbOrder {
		out = append(out, *b.notebooks[id])
	}
	return out
}

func (b *Backend) GetNotebook(id model.ID) (model.Notebook, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	nb, ok := b.notebooks[id]
	if !ok {
		return model.Notebook{}, ErrNotebookNotFound
	}
	return *nb, nil
}

func (b *Backend) CreateNotebook(name, description string) (model.Notebook, error) {
	if strings.TrimSpace(name) == "" {
		return model.Notebook{}, ErrNameRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	nb := &model.Notebook{ID: b.newID(), Name: name, Description: description, IsActive: true}
	b.notebooks[nb.ID] = nb
	b.nbOrder = append(b.nbOrder, nb.ID)
	return *nb, nil
}

func (b *Backend) UpdateNotebook(id model.ID, name, description string) (model.Notebook, error) {
	if strings.TrimSpace(name) == "" {
		return model.Notebook{}, ErrNameRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	nb, ok := b.notebooks[id]
	if !ok {
		return model.Notebook{}, ErrNotebookNotFound
	}
	nb.Name = name
	nb.Description = description
	return *nb, nil
}

// DeleteNotebook removes the notebook only; notes keep their notebook id.
func (b *Backend) DeleteNotebook(id model.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.notebooks[id]; !ok {
		return ErrNotebookNotFound
	}
	delete(b.notebooks, id)
	b.nbOrder = slices.DeleteFunc(b.nbOrder, func(x model.ID) bool { return x == id })
	return nil
}

func (b *Backend) ListTags() []model.Tag {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Tag, 0, len(b.tagOrder))
	for _, id := range b.tagOrder {
		out = append(out, *b.tags[id])
	}
	return out
}

func (b *Backend) GetTag(id model.ID) (model.Tag, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tags[id]
	if !ok {
		return model.Tag{}, ErrTagNotFound
	}
	return *t, nil
}

// CreateTag stores a tag and returns its id. Names are not unique.
func (b *Backend) CreateTag(name, color string) (model.ID, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrNameRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t := &model.Tag{ID: b.newID(), Name: name, Color: color}
	b.tags[t.ID] = t
	b.tagOrder = append(b.tagOrder, t.ID)
	return t.ID, nil
}

func (b *Backend) UpdateTag(id model.ID, name, color string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tags[id]
	if !ok {
		return ErrTagNotFound
	}
	t.Name = name
	t.Color = color
	return nil
}

// DeleteTag removes the tag without detaching it from notes.
func (b *Backend) DeleteTag(id model.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tags[id]; !ok {
		return ErrTagNotFound
	}
	delete(b.tags, id)
	b.tagOrder = slices.DeleteFunc(b.tagOrder, func(x model.ID) bool { return x == id })
	return nil
}
