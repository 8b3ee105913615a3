// Package store holds the client-side entity collections and reconciles
// them with the backend after each round trip.
//
// A Store owns five collections (active, archived and trashed notes,
// notebooks, tags) plus one selection pointer per entity type. Every
// mutation calls the backend first and changes local state only after the
// server confirmed. Each state update is atomic; multi-step sequences such
// as a notebook cascade are not.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
	"github.com/nhle/notekeeper/internal/model"
)

var (
	// ErrDuplicateTag is returned by CreateTag when a tag with the same
	// trimmed, case-insensitive name is already loaded.
	ErrDuplicateTag = errors.New("a tag with this name already exists")

	// ErrEmptyName rejects blank notebook and tag names before any request.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrStaleResponse is returned under last_issued ordering when a
	// response arrives after a newer mutation of the same entity was
	// applied. Local state is left as the newer response set it.
	ErrStaleResponse = errors.New("response superseded by a newer change")

	// ErrNoEntity means the server confirmed a mutation but the entity
	// could not be obtained afterwards.
	ErrNoEntity = errors.New("server returned no entity")
)

// NotesAPI is the subset of the REST client the store needs for notes.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]model.Note, error)
	GetNote(ctx context.Context, id model.ID) (*model.Note, error)
	ListTrash(ctx context.Context) ([]model.Note, error)
	ListArchive(ctx context.Context) ([]model.Note, error)
	ListNotesByNotebook(ctx context.Context, notebookID model.ID) ([]model.Note, error)
	ListNotesByTags(ctx context.Context, tagIDs []model.ID) ([]model.Note, error)
	CreateNote(ctx context.Context, note model.Note) (*model.Note, error)
	UpdateNote(ctx context.Context, id model.ID, patch model.NotePatch) (*model.Note, error)
	ChangeNotebook(ctx context.Context, id, notebookID model.ID) (*model.Note, error)
	AddTagToNote(ctx context.Context, id, tagID model.ID) (*model.Note, error)
	RemoveTagFromNote(ctx context.Context, id, tagID model.ID) (*model.Note, error)
	DeleteNote(ctx context.Context, id model.ID) error
	MoveToTrash(ctx context.Context, id model.ID) (*model.Note, error)
	RestoreFromTrash(ctx context.Context, id model.ID) (*model.Note, error)
	MoveToArchive(ctx context.Context, id model.ID) (*model.Note, error)
	RestoreFromArchive(ctx context.Context, id model.ID) (*model.Note, error)
}

// NotebooksAPI is the subset of the REST client the store needs for notebooks.
type NotebooksAPI interface {
	ListNotebooks(ctx context.Context) ([]model.Notebook, error)
	CreateNotebook(ctx context.Context, name, description string) (*model.Notebook, error)
	UpdateNotebook(ctx context.Context, id model.ID, name, description string) (*model.Notebook, error)
	DeleteNotebook(ctx context.Context, id model.ID) error
}

// TagsAPI is the subset of the REST client the store needs for tags.
type TagsAPI interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id model.ID) (*model.Tag, error)
	CreateTag(ctx context.Context, name, color string) (model.ID, error)
	UpdateTag(ctx context.Context, id model.ID, name, color string) error
	DeleteTag(ctx context.Context, id model.ID) error
}

// Options configures a Store.
type Options struct {
	// Ordering is model.OrderingLastResolved (default) or
	// model.OrderingLastIssued.
	Ordering string
}

// Kind names the entity type a Change refers to.
type Kind string

const (
	KindNote     Kind = "note"
	KindNotebook Kind = "notebook"
	KindTag      Kind = "tag"
)

// Change is published to subscribers after every state update.
type Change struct {
	Kind Kind
	Op   string
	ID   model.ID
}

// Store is the client-side entity store. Construct it once with New and
// pass it to every consumer.
type Store struct {
	notesAPI     NotesAPI
	notebooksAPI NotebooksAPI
	tagsAPI      TagsAPI
	lastIssued   bool
	ops          *Operations

	mu             sync.RWMutex
	active         []model.Note
	archived       []model.Note
	trashed        []model.Note
	activeNote     *model.Note
	notebooks      []model.Notebook
	activeNotebook *model.Notebook
	tags           []model.Tag

	seq     atomic.Uint64
	applied map[model.ID]uint64

	subMu sync.Mutex
	subs  map[chan Change]struct{}
}

// New creates a Store backed by the given API implementations.
func New(notes NotesAPI, notebooks NotebooksAPI, tags TagsAPI, opts Options) *Store {
	return &Store{
		notesAPI:     notes,
		notebooksAPI: notebooks,
		tagsAPI:      tags,
		lastIssued:   opts.Ordering == model.OrderingLastIssued,
		ops:          NewOperations(),
		applied:      make(map[model.ID]uint64),
		subs:         make(map[chan Change]struct{}),
	}
}

// Operations exposes the per-operation status tracker.
func (s *Store) Operations() *Operations {
	return s.ops
}

// Subscribe returns a channel receiving every Change, and a function that
// unsubscribes and closes it. Slow subscribers miss events rather than
// blocking the store.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 64)

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(kind Kind, op string, id model.ID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	c := Change{Kind: kind, Op: op, ID: id}
	for ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// track registers an operation, runs fn, and records its outcome. The
// operation id doubles as request id unless ctx already carries one.
func (s *Store) track(ctx context.Context, kind string, id model.ID, fn func(ctx context.Context) error) error {
	op := s.ops.begin(kind, id)
	if _, ok := logger.GetRequestID(ctx); !ok {
		ctx = logger.NewRequestIDContext(ctx, op.ID)
	}

	log := logger.Log(ctx)
	fields := []zap.Field{zap.String(logger.Operation, kind)}
	if !id.IsZero() {
		fields = append(fields, zap.String(logger.EntityID, id.String()))
	}
	log.Debug(ctx, "store operation started", fields...)

	err := fn(ctx)
	s.ops.end(op.ID, err)

	if err != nil {
		log.Warn(ctx, "store operation failed", append(fields, zap.Error(err))...)
		return err
	}
	log.Debug(ctx, "store operation finished", fields...)
	return nil
}

// issue returns the sequence number for a mutation about to be sent.
func (s *Store) issue() uint64 {
	return s.seq.Add(1)
}

// acceptLocked decides whether a response for entity id, issued with seq,
// may be applied. Callers hold s.mu.
func (s *Store) acceptLocked(id model.ID, seq uint64) bool {
	if !s.lastIssued {
		return true
	}
	if seq < s.applied[id] {
		return false
	}
	s.applied[id] = seq
	return true
}

// supersededLocked reports whether a listing issued at seq is older than
// a mutation already applied to id. Callers hold s.mu.
func (s *Store) supersededLocked(id model.ID, seq uint64) bool {
	return s.lastIssued && s.applied[id] > seq
}
