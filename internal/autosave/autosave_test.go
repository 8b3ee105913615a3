package autosave

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
)

type fakeSaver struct {
	mu    gosync.Mutex
	calls []model.NotePatch
	gate  chan struct{}
	err   error
}

func (f *fakeSaver) Update(ctx context.Context, id model.ID, patch model.NotePatch) (model.Note, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, patch)
	if f.err != nil {
		return model.Note{}, f.err
	}
	return patch.Apply(model.Note{ID: id}), nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestTimedSaveOnlyWhenDirty(t *testing.T) {
	saver := &fakeSaver{}
	a := New(saver, 10*time.Millisecond)
	wait := a.Start()
	defer a.Stop()

	a.SetDraft("n1", model.NotePatch{Name: "draft", Text: "hello"})
	msg, ok := wait().(ResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, model.ID("n1"), msg.NoteID)
	assert.Equal(t, "hello", msg.Note.Text)
	assert.False(t, msg.Manual)

	// Clean drafts are not resent.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, saver.count())
	assert.False(t, a.Dirty())
}

func TestStopPreventsNewSaves(t *testing.T) {
	saver := &fakeSaver{}
	a := New(saver, 10*time.Millisecond)
	a.Start()
	a.Stop()
	a.Stop()

	a.SetDraft("n1", model.NotePatch{Name: "late"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, saver.count())
	assert.True(t, a.Dirty())
}

func TestRestartResumesTimedSaves(t *testing.T) {
	saver := &fakeSaver{}
	a := New(saver, 10*time.Millisecond)
	a.Start()
	a.Stop()

	wait := a.Start()
	require.NotNil(t, wait)
	defer a.Stop()

	a.SetDraft("n1", model.NotePatch{Name: "again"})
	msg, ok := wait().(ResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "again", msg.Note.Name)
	assert.Equal(t, 1, saver.count())
}

func TestInFlightSaveSettlesAfterStop(t *testing.T) {
	saver := &fakeSaver{gate: make(chan struct{})}
	a := New(saver, 10*time.Millisecond)
	wait := a.Start()

	a.SetDraft("n1", model.NotePatch{Name: "x"})
	require.Eventually(t, func() bool { return a.Status().State == Saving }, time.Second, 5*time.Millisecond)

	a.Stop()
	close(saver.gate)

	msg, ok := wait().(ResultMsg)
	require.True(t, ok)
	assert.NoError(t, msg.Err)
	assert.Equal(t, 1, saver.count())
	assert.Equal(t, Idle, a.Status().State)
}

func TestFlush(t *testing.T) {
	saver := &fakeSaver{}
	a := New(saver, time.Hour)

	_, ok := a.Flush()
	assert.False(t, ok, "nothing to save")

	a.SetDraft("n1", model.NotePatch{Name: "a"})
	a.SetDraft("n1", model.NotePatch{Name: "b"})
	msg, ok := a.Flush()
	require.True(t, ok)
	assert.True(t, msg.Manual)
	assert.Equal(t, "b", msg.Note.Name)
	assert.Equal(t, 1, saver.count())
	assert.Nil(t, a.FlushCmd()())
}

func TestFailedSaveStaysDirty(t *testing.T) {
	saver := &fakeSaver{err: errors.New("offline")}
	a := New(saver, time.Hour)

	a.SetDraft("n1", model.NotePatch{Name: "a"})
	msg, ok := a.Flush()
	require.True(t, ok)
	assert.Error(t, msg.Err)

	status := a.Status()
	assert.Equal(t, Failed, status.State)
	assert.True(t, status.Dirty)
	assert.EqualError(t, status.Err, "offline")
}

func TestSwitchingNotesResetsDirtyState(t *testing.T) {
	saver := &fakeSaver{}
	a := New(saver, time.Hour)

	a.SetDraft("n1", model.NotePatch{Name: "a"})
	_, ok := a.Flush()
	require.True(t, ok)
	assert.False(t, a.Dirty())

	a.SetDraft("n2", model.NotePatch{Name: "b"})
	assert.True(t, a.Dirty())

	a.Discard()
	assert.False(t, a.Dirty())
}
