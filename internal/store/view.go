package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nhle/notekeeper/internal/model"
)

// Filter scopes the note list view.
type Filter struct {
	// NotebookID keeps notes filed under this notebook. Empty keeps all.
	NotebookID model.ID

	// TagIDs keeps notes carrying at least one of these tags.
	TagIDs []model.ID

	// Query matches name or text, case-insensitively.
	Query string

	// ByPriority sorts high priority first; ties keep server order.
	ByPriority bool
}

func (f Filter) match(n model.Note) bool {
	if !f.NotebookID.IsZero() && n.NotebookID != f.NotebookID {
		return false
	}
	if len(f.TagIDs) > 0 && !slices.ContainsFunc(f.TagIDs, n.HasTag) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(n.Name), q) && !strings.Contains(strings.ToLower(n.Text), q) {
			return false
		}
	}
	return true
}

// ActiveNotes returns the active collection as the list view shows it:
// flagged notes the server left in the listing are dropped, then the
// filter applies.
func (s *Store) ActiveNotes(f Filter) []model.Note {
	return s.view(s.Notes(), model.LocationActive, f)
}

// ArchivedNotes is ActiveNotes for the archive.
func (s *Store) ArchivedNotes(f Filter) []model.Note {
	return s.view(s.Archived(), model.LocationArchived, f)
}

// TrashedNotes is ActiveNotes for the trash.
func (s *Store) TrashedNotes(f Filter) []model.Note {
	return s.view(s.Trashed(), model.LocationTrashed, f)
}

func (s *Store) view(notes []model.Note, loc model.Location, f Filter) []model.Note {
	out := notes[:0]
	for _, n := range notes {
		if n.Location() == loc && f.match(n) {
			out = append(out, n)
		}
	}
	if f.ByPriority {
		slices.SortStableFunc(out, func(a, b model.Note) int {
			return cmp.Compare(model.NormalizePriority(b.Order), model.NormalizePriority(a.Order))
		})
	}
	return out
}

// Snapshot is a copy of the collections, used to persist and restore the
// store between runs.
type Snapshot struct {
	Notes     []model.Note     `json:"notes"`
	Archived  []model.Note     `json:"archived"`
	Trashed   []model.Note     `json:"trashed"`
	Notebooks []model.Notebook `json:"notebooks"`
	Tags      []model.Tag      `json:"tags"`
}

// Snapshot copies the current collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Notes:     cloneNotes(s.active),
		Archived:  cloneNotes(s.archived),
		Trashed:   cloneNotes(s.trashed),
		Notebooks: slices.Clone(s.notebooks),
		Tags:      slices.Clone(s.tags),
	}
}

// Hydrate loads a snapshot into the store so views can paint before the
// first fetch completes. Collections that already hold data are kept.
func (s *Store) Hydrate(snap Snapshot) {
	s.mu.Lock()
	if len(s.active) == 0 {
		s.active = cloneNotes(snap.Notes)
	}
	if len(s.archived) == 0 {
		s.archived = cloneNotes(snap.Archived)
	}
	if len(s.trashed) == 0 {
		s.trashed = cloneNotes(snap.Trashed)
	}
	if len(s.notebooks) == 0 {
		s.notebooks = slices.Clone(snap.Notebooks)
	}
	if len(s.tags) == 0 {
		s.tags = slices.Clone(snap.Tags)
	}
	s.mu.Unlock()

	s.publish(KindNote, "hydrate", "")
}
