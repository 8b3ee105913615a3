package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
	"github.com/nhle/notekeeper/internal/model"
	"github.com/nhle/notekeeper/internal/store"
)

// changeMsg wraps a store change notification.
type changeMsg struct {
	change store.Change
}

// prefSavedMsg reports a failed preference or snapshot write. Successful
// writes produce no message.
type prefSavedMsg struct {
	what string
	err  error
}

// waitForChange blocks on the store subscription. Call it again after
// each changeMsg to keep listening.
func waitForChange(ch <-chan store.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg{change: c}
	}
}

// saveSnapshot writes the current collections to the local cache.
func (m Model) saveSnapshot() tea.Cmd {
	if m.cache == nil {
		return nil
	}
	c, snap := m.cache, m.store.Snapshot()
	return func() tea.Msg {
		if err := c.SaveSnapshot(context.Background(), snap); err != nil {
			return prefSavedMsg{what: "snapshot", err: err}
		}
		return nil
	}
}

func (m Model) saveTheme(name string) tea.Cmd {
	if m.cache == nil {
		return nil
	}
	c := m.cache
	return func() tea.Msg {
		if err := c.SetTheme(context.Background(), name); err != nil {
			return prefSavedMsg{what: "theme", err: err}
		}
		return nil
	}
}

func (m Model) saveLastNotebook(id model.ID) tea.Cmd {
	if m.cache == nil {
		return nil
	}
	c := m.cache
	return func() tea.Msg {
		if err := c.SetLastNotebook(context.Background(), id); err != nil {
			return prefSavedMsg{what: "last notebook", err: err}
		}
		return nil
	}
}

// logPrefError records a local cache failure. The cache is best effort,
// so the user only sees it in the log.
func logPrefError(msg prefSavedMsg) {
	ctx := context.Background()
	logger.Log(ctx).Warn(ctx, "local cache write failed",
		zap.String("what", msg.what), zap.Error(msg.err))
}
