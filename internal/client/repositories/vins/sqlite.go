package vins

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/client/models"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/dbx"
	"github.com/dmitrijs2005/vinscanner/internal/vin"
)

// timeLayout is fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// WithClock replaces the capture clock.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

// Enqueue validates v and stores it as an unsynced record. The record is
// committed when Enqueue returns without error.
func (r *SQLiteRepository) Enqueue(ctx context.Context, v string) (int64, error) {
	normalized, err := vin.Validate(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrEnqueueFailed, err)
	}

	capturedAt := r.now().UTC().Format(timeLayout)

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO vin_records (vin, captured_at, synced)
		VALUES (?, ?, 0)
		RETURNING local_id
	`, normalized, capturedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrEnqueueFailed, err)
	}

	return id, nil
}

const selectColumns = `SELECT local_id, vin, captured_at, synced, synced_at FROM vin_records`

// ListUnsynced returns unsynced records, oldest first.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]*models.VinRecord, error) {
	items, err := dbx.QueryAll(ctx, r.db, scanRecord, selectColumns+` WHERE synced = 0 ORDER BY local_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced records: %w", err)
	}
	return items, nil
}

// ListAll returns every record, newest first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.VinRecord, error) {
	items, err := dbx.QueryAll(ctx, r.db, scanRecord, selectColumns+` ORDER BY local_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return items, nil
}

// MarkSynced flips the synced flag. Marking an already synced record is a
// no-op; an unknown id yields common.ErrNotFound.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID int64) error {
	n, err := dbx.ExecAffected(ctx, r.db, `
		UPDATE vin_records
		SET synced = 1, synced_at = COALESCE(synced_at, ?)
		WHERE local_id = ?
	`, r.now().UTC().Format(timeLayout), localID)
	if err != nil {
		return fmt.Errorf("failed to mark record %d synced: %w", localID, err)
	}
	if n == 0 {
		return fmt.Errorf("record %d: %w", localID, common.ErrNotFound)
	}
	return nil
}

// Count returns the number of unsynced records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vin_records WHERE synced = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsynced records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localID int64) error {
	n, err := dbx.ExecAffected(ctx, r.db, `DELETE FROM vin_records WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", localID, err)
	}
	if n == 0 {
		return fmt.Errorf("record %d: %w", localID, common.ErrNotFound)
	}
	return nil
}

// PurgeSynced deletes synced records captured before the given time and
// returns how many were removed. Unsynced records are never purged.
func (r *SQLiteRepository) PurgeSynced(ctx context.Context, before time.Time) (int64, error) {
	n, err := dbx.ExecAffected(ctx, r.db, `
		DELETE FROM vin_records WHERE synced = 1 AND captured_at < ?
	`, before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to purge synced records: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (*models.VinRecord, error) {
	var (
		rec        models.VinRecord
		capturedAt string
		synced     int
		syncedAt   sql.NullString
	)
	if err := rows.Scan(&rec.LocalID, &rec.VIN, &capturedAt, &synced, &syncedAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("captured_at of record %d: %w", rec.LocalID, err)
	}
	rec.CapturedAt = t
	rec.Synced = synced == 1

	if syncedAt.Valid {
		st, err := time.Parse(timeLayout, syncedAt.String)
		if err != nil {
			return nil, fmt.Errorf("synced_at of record %d: %w", rec.LocalID, err)
		}
		rec.SyncedAt = &st
	}

	return &rec, nil
}
