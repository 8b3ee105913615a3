package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/mockapi"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
	"github.com/nhle/notekeeper/internal/testutil"
)

// gatedNotes lets the server apply an update right away but holds the
// response until the test releases it, keyed by the patched name.
type gatedNotes struct {
	store.NotesAPI
	arrived chan string
	release map[string]chan struct{}
}

func (g *gatedNotes) UpdateNote(ctx context.Context, id model.ID, patch model.NotePatch) (*model.Note, error) {
	n, err := g.NotesAPI.UpdateNote(ctx, id, patch)
	g.arrived <- patch.Name
	<-g.release[patch.Name]
	return n, err
}

type overlap struct {
	store   *store.Store
	noteID  model.ID
	gate    *gatedNotes
	results map[string]chan error
}

// startOverlap issues update "first", waits until its server call is done,
// then issues update "second". Neither response is delivered yet.
func startOverlap(t *testing.T, ordering string) *overlap {
	t.Helper()
	ctx := context.Background()
	srv := testutil.NewMockServer(t, mockapi.Options{})

	gate := &gatedNotes{
		NotesAPI: srv.Client,
		arrived:  make(chan string),
		release: map[string]chan struct{}{
			"first":  make(chan struct{}),
			"second": make(chan struct{}),
		},
	}
	s := store.New(gate, srv.Client, srv.Client, store.Options{Ordering: ordering})
	note, err := s.Create(ctx, model.Note{Name: "draft"})
	require.NoError(t, err)

	o := &overlap{
		store:   s,
		noteID:  note.ID,
		gate:    gate,
		results: map[string]chan error{"first": make(chan error, 1), "second": make(chan error, 1)},
	}
	for _, name := range []string{"first", "second"} {
		go func() {
			_, err := s.Update(ctx, note.ID, model.NotePatch{Name: name})
			o.results[name] <- err
		}()
		require.Equal(t, name, <-gate.arrived)
	}
	return o
}

func (o *overlap) resolve(name string) error {
	close(o.gate.release[name])
	return <-o.results[name]
}

func TestLastResolvedWins(t *testing.T) {
	o := startOverlap(t, model.OrderingLastResolved)
	assert.Len(t, o.store.Operations().Pending(), 2)

	require.NoError(t, o.resolve("second"))
	assert.True(t, o.store.Operations().Busy(), "first update still in flight")

	require.NoError(t, o.resolve("first"))
	assert.False(t, o.store.Operations().Busy())

	got, ok := o.store.Note(o.noteID)
	require.True(t, ok)
	assert.Equal(t, "first", got.Name)
}

func TestLastIssuedWins(t *testing.T) {
	o := startOverlap(t, model.OrderingLastIssued)

	require.NoError(t, o.resolve("second"))
	err := o.resolve("first")
	assert.ErrorIs(t, err, store.ErrStaleResponse)

	got, ok := o.store.Note(o.noteID)
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)
}

func TestLastIssuedKeepsNewerMutationOverOlderListing(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewMockServer(t, mockapi.Options{})
	n := srv.Backend.CreateNote(model.Note{Name: "old"})

	gate := &gatedList{NotesAPI: srv.Client, arrived: make(chan struct{}), release: make(chan struct{})}
	s := store.New(gate, srv.Client, srv.Client, store.Options{Ordering: model.OrderingLastIssued})

	done := make(chan error, 1)
	go func() { done <- s.FetchAll(ctx) }()
	<-gate.arrived

	_, err := s.Update(ctx, n.ID, model.NotePatch{Name: "new"})
	require.NoError(t, err)

	close(gate.release)
	require.NoError(t, <-done)

	got, ok := s.Note(n.ID)
	require.True(t, ok)
	assert.Equal(t, "new", got.Name)
}

// gatedList holds the active listing until released.
type gatedList struct {
	store.NotesAPI
	arrived chan struct{}
	release chan struct{}
}

func (g *gatedList) ListNotes(ctx context.Context) ([]model.Note, error) {
	notes, err := g.NotesAPI.ListNotes(ctx)
	close(g.arrived)
	<-g.release
	return notes, err
}
