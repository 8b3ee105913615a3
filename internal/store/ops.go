package store

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/model"
)

// Operation kinds.
const (
	OpFetchNotes         = "notes.fetch"
	OpFetchTrash         = "notes.fetch_trash"
	OpFetchArchive       = "notes.fetch_archive"
	OpCreateNote         = "notes.create"
	OpUpdateNote         = "notes.update"
	OpMoveToTrash        = "notes.trash"
	OpRestoreFromTrash   = "notes.restore_trash"
	OpMoveToArchive      = "notes.archive"
	OpRestoreFromArchive = "notes.restore_archive"
	OpDeleteNote         = "notes.delete"
	OpChangeNotebook     = "notes.change_notebook"
	OpAddTag             = "notes.add_tag"
	OpRemoveTag          = "notes.remove_tag"
	OpSelectNote         = "notes.select"
	OpNotesByNotebook    = "notes.by_notebook"
	OpNotesByTags        = "notes.by_tags"
	OpFetchNotebooks     = "notebooks.fetch"
	OpCreateNotebook     = "notebooks.create"
	OpRenameNotebook     = "notebooks.rename"
	OpDeleteNotebook     = "notebooks.delete"
	OpFetchTags          = "tags.fetch"
	OpCreateTag          = "tags.create"
	OpUpdateTag          = "tags.update"
	OpDeleteTag          = "tags.delete"
)

// Op is one store call, pending or finished.
type Op struct {
	ID       string
	Kind     string
	EntityID model.ID
	Started  time.Time
	Finished time.Time
	Err      error
}

// Done reports whether the operation has finished.
func (o Op) Done() bool { return !o.Finished.IsZero() }

// Message is the user-facing error text, empty on success.
func (o Op) Message() string { return api.Message(o.Err) }

// Operations tracks in-flight and finished store operations, keyed by id.
// Concurrent operations never overwrite each other's status.
type Operations struct {
	mu      sync.Mutex
	pending map[string]Op
	last    map[string]Op
	now     func() time.Time
}

// NewOperations returns an empty tracker.
func NewOperations() *Operations {
	return &Operations{
		pending: make(map[string]Op),
		last:    make(map[string]Op),
		now:     time.Now,
	}
}

func (o *Operations) begin(kind string, entityID model.ID) Op {
	o.mu.Lock()
	defer o.mu.Unlock()

	op := Op{
		ID:       uuid.NewString(),
		Kind:     kind,
		EntityID: entityID,
		Started:  o.now(),
	}
	o.pending[op.ID] = op
	return op
}

func (o *Operations) end(id string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	op, ok := o.pending[id]
	if !ok {
		return
	}
	delete(o.pending, id)
	op.Finished = o.now()
	op.Err = err

	// A slower, older operation must not replace a newer outcome.
	if prev, ok := o.last[op.Kind]; ok && prev.Started.After(op.Started) {
		return
	}
	o.last[op.Kind] = op
}

// Busy reports whether any operation is still in flight.
func (o *Operations) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending) > 0
}

// BusyWith reports whether an operation of the given kind is in flight.
func (o *Operations) BusyWith(kind string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, op := range o.pending {
		if op.Kind == kind {
			return true
		}
	}
	return false
}

// Pending lists in-flight operations, oldest first.
func (o *Operations) Pending() []Op {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Op, 0, len(o.pending))
	for _, op := range o.pending {
		out = append(out, op)
	}
	slices.SortFunc(out, func(a, b Op) int { return a.Started.Compare(b.Started) })
	return out
}

// Last returns the most recently started finished operation of a kind.
func (o *Operations) Last(kind string) (Op, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	op, ok := o.last[kind]
	return op, ok
}

// LastError returns the error of the latest finished operation of a kind,
// or nil when it succeeded or never ran.
func (o *Operations) LastError(kind string) error {
	op, ok := o.Last(kind)
	if !ok {
		return nil
	}
	return op.Err
}
