package store

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
	"github.com/nhle/notekeeper/internal/model"
)

// normalize returns a private copy of n with duplicate tag ids removed.
func normalize(n model.Note) model.Note {
	n = n.Clone()
	n.Tags = model.DedupTags(n.Tags)
	return n
}

func cloneNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

func indexOf(notes []model.Note, id model.ID) int {
	return slices.IndexFunc(notes, func(n model.Note) bool { return n.ID == id })
}

func without(notes []model.Note, id model.ID) []model.Note {
	return slices.DeleteFunc(notes, func(n model.Note) bool { return n.ID == id })
}

// collectionLocked returns the slice backing a location.
func (s *Store) collectionLocked(loc model.Location) *[]model.Note {
	switch loc {
	case model.LocationArchived:
		return &s.archived
	case model.LocationTrashed:
		return &s.trashed
	default:
		return &s.active
	}
}

// findLocked looks a note up in every local collection, then the active
// note pointer.
func (s *Store) findLocked(id model.ID) (model.Note, bool) {
	for _, coll := range [][]model.Note{s.active, s.archived, s.trashed} {
		if i := indexOf(coll, id); i >= 0 {
			return coll[i].Clone(), true
		}
	}
	if s.activeNote != nil && s.activeNote.ID == id {
		return s.activeNote.Clone(), true
	}
	return model.Note{}, false
}

// placeLocked puts n into the collection matching its flags, replacing it
// in place when already there and removing it from the other two. The
// active note pointer follows.
func (s *Store) placeLocked(n model.Note) {
	n = normalize(n)
	target := n.Location()

	for _, loc := range []model.Location{model.LocationActive, model.LocationArchived, model.LocationTrashed} {
		coll := s.collectionLocked(loc)
		if loc != target {
			*coll = without(*coll, n.ID)
			continue
		}
		if i := indexOf(*coll, n.ID); i >= 0 {
			(*coll)[i] = n
		} else {
			*coll = append(*coll, n)
		}
	}

	if s.activeNote != nil && s.activeNote.ID == n.ID {
		c := n.Clone()
		s.activeNote = &c
	}
}

// removeLocked drops id from all three collections and the active note
// pointer, regardless of where it was.
func (s *Store) removeLocked(id model.ID) {
	s.active = without(s.active, id)
	s.archived = without(s.archived, id)
	s.trashed = without(s.trashed, id)
	if s.activeNote != nil && s.activeNote.ID == id {
		s.activeNote = nil
	}
}

// mergeListingLocked turns a server listing issued at seq into a
// collection. Under last_issued ordering, entries older than a mutation
// applied since are replaced by the local copy.
func (s *Store) mergeListingLocked(listing []model.Note, seq uint64) []model.Note {
	out := make([]model.Note, 0, len(listing))
	for _, n := range listing {
		if s.supersededLocked(n.ID, seq) {
			if local, ok := s.findLocked(n.ID); ok {
				if local.Location() == n.Location() {
					out = append(out, normalize(local))
				}
				continue
			}
		}
		out = append(out, normalize(n))
	}

	if s.activeNote != nil {
		if i := indexOf(out, s.activeNote.ID); i >= 0 {
			c := out[i].Clone()
			s.activeNote = &c
		}
	}
	return out
}

// warnConflicts logs notes carrying both lifecycle flags. They are placed
// in the trash until the backend contract says otherwise.
func warnConflicts(ctx context.Context, notes ...model.Note) {
	for _, n := range notes {
		if n.Conflicted() {
			logger.Log(ctx).Warn(ctx, "note is both archived and trashed",
				zap.String(logger.EntityID, n.ID.String()))
		}
	}
}
