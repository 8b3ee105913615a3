// Package autosave periodically flushes the editor draft to the store.
package autosave

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
	"github.com/nhle/notekeeper/internal/model"
)

// State is the current state of the autosaver.
type State int

const (
	Idle State = iota
	Saving
	Failed
)

// Status is a snapshot of the autosaver for the status bar.
type Status struct {
	State     State
	Dirty     bool
	LastSaved time.Time
	Err       error
}

// ResultMsg is a tea.Msg sent when a save completes.
type ResultMsg struct {
	NoteID model.ID
	Note   model.Note
	Err    error
	Manual bool
}

// Saver persists a note patch. *store.Store satisfies it.
type Saver interface {
	Update(ctx context.Context, id model.ID, patch model.NotePatch) (model.Note, error)
}

// saveTimeout bounds a single save. Stop never cancels a save in flight.
const saveTimeout = 30 * time.Second

type draft struct {
	id      model.ID
	patch   model.NotePatch
	version uint64
}

// Autosaver saves the dirty draft on a fixed interval.
type Autosaver struct {
	saver    Saver
	interval time.Duration
	resultCh chan ResultMsg
	stopCh   chan struct{}

	mu        gosync.Mutex
	running   bool
	current   *draft
	seq       uint64
	saved     uint64
	state     State
	lastSaved time.Time
	lastErr   error
}

// New creates an Autosaver. A non-positive interval means 5 seconds.
func New(saver Saver, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Autosaver{
		saver:    saver,
		interval: interval,
		resultCh: make(chan ResultMsg, 16),
	}
}

// Start launches the timer goroutine and returns a tea.Cmd that waits for
// the first result. A stopped Autosaver can be started again.
func (a *Autosaver) Start() tea.Cmd {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = true
	stop := make(chan struct{})
	a.stopCh = stop
	a.mu.Unlock()

	go a.loop(stop)
	return a.waitForResult()
}

// Stop prevents further timed saves. A save already in flight settles
// normally and still delivers its result.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	close(a.stopCh)
	a.running = false
}

// SetDraft records the latest editor content for a note.
func (a *Autosaver) SetDraft(id model.ID, patch model.NotePatch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	if a.current == nil || a.current.id != id {
		a.saved = 0
	}
	a.current = &draft{id: id, patch: patch, version: a.seq}
}

// Discard forgets the draft without saving it.
func (a *Autosaver) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
	a.saved = 0
}

// Dirty reports whether the draft has unsaved changes.
func (a *Autosaver) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirtyLocked()
}

func (a *Autosaver) dirtyLocked() bool {
	return a.current != nil && a.current.version > a.saved
}

// Status returns the current state.
func (a *Autosaver) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		State:     a.state,
		Dirty:     a.dirtyLocked(),
		LastSaved: a.lastSaved,
		Err:       a.lastErr,
	}
}

// Flush saves the draft now if it is dirty. It returns the zero ResultMsg
// and false when there was nothing to save.
func (a *Autosaver) Flush() (ResultMsg, bool) {
	return a.save(true)
}

// FlushCmd is Flush as a tea.Cmd. It yields nil when nothing was saved.
func (a *Autosaver) FlushCmd() tea.Cmd {
	return func() tea.Msg {
		msg, ok := a.Flush()
		if !ok {
			return nil
		}
		return msg
	}
}

func (a *Autosaver) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if msg, ok := a.save(false); ok {
				a.sendResult(msg)
			}
		}
	}
}

// save writes the current draft through the saver.
func (a *Autosaver) save(manual bool) (ResultMsg, bool) {
	a.mu.Lock()
	if !a.dirtyLocked() {
		a.mu.Unlock()
		return ResultMsg{}, false
	}
	d := *a.current
	a.state = Saving
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	note, err := a.saver.Update(ctx, d.id, d.patch)

	a.mu.Lock()
	if err != nil {
		a.state = Failed
		a.lastErr = err
	} else {
		a.state = Idle
		a.lastErr = nil
		a.lastSaved = time.Now()
		if a.current != nil && a.current.id == d.id && d.version > a.saved {
			a.saved = d.version
		}
	}
	a.mu.Unlock()

	if err != nil {
		logger.Log(ctx).Warn(ctx, "autosave failed",
			zap.String(logger.EntityID, d.id.String()), zap.Error(err))
	}
	return ResultMsg{NoteID: d.id, Note: note, Err: err, Manual: manual}, true
}

// sendResult sends a ResultMsg on the result channel without blocking.
func (a *Autosaver) sendResult(msg ResultMsg) {
	select {
	case a.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the timer
	}
}

func (a *Autosaver) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-a.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next timed save.
// Call it after handling a ResultMsg to keep listening.
func (a *Autosaver) WaitForNextResult() tea.Cmd {
	return a.waitForResult()
}
