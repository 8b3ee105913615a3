package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/notekeeper/internal/store"
)

// Snapshot kinds, one row each.
const (
	KindNotes     = "notes"
	KindArchive   = "archive"
	KindTrash     = "trash"
	KindNotebooks = "notebooks"
	KindTags      = "tags"
)

type snapshotRow struct {
	Kind    string    `db:"kind"`
	Payload string    `db:"payload"`
	SavedAt time.Time `db:"saved_at"`
}

// SaveSnapshot stores every collection of snap in one transaction.
func (c *Cache) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	parts := map[string]interface{}{
		KindNotes:     snap.Notes,
		KindArchive:   snap.Archived,
		KindTrash:     snap.Trashed,
		KindNotebooks: snap.Notebooks,
		KindTags:      snap.Tags,
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO snapshots (kind, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing snapshot statement: %w", err)
	}
	defer stmt.Close()

	savedAt := c.now().UTC()
	for kind, v := range parts {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling %s snapshot: %w", kind, err)
		}
		if _, err := stmt.ExecContext(ctx, kind, string(payload), savedAt); err != nil {
			return fmt.Errorf("saving %s snapshot: %w", kind, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored collections. ok is false when nothing was
// saved yet. Rows that fail to decode are skipped.
func (c *Cache) LoadSnapshot(ctx context.Context) (snap store.Snapshot, savedAt time.Time, ok bool, err error) {
	var rows []snapshotRow
	if err := c.db.SelectContext(ctx, &rows, "SELECT kind, payload, saved_at FROM snapshots"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, savedAt, false, nil
		}
		return snap, savedAt, false, fmt.Errorf("reading snapshots: %w", err)
	}

	for _, row := range rows {
		var target interface{}
		switch row.Kind {
		case KindNotes:
			target = &snap.Notes
		case KindArchive:
			target = &snap.Archived
		case KindTrash:
			target = &snap.Trashed
		case KindNotebooks:
			target = &snap.Notebooks
		case KindTags:
			target = &snap.Tags
		default:
			continue
		}
		if err := json.Unmarshal([]byte(row.Payload), target); err != nil {
			continue
		}
		ok = true
		if row.SavedAt.After(savedAt) {
			savedAt = row.SavedAt
		}
	}
	return snap, savedAt, ok, nil
}
