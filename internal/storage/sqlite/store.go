// Package sqlite provides a SQLite-backed snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	sqlitemigrate "github.com/louisbranch/morphsheet/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/morphsheet/internal/storage"
	"github.com/louisbranch/morphsheet/internal/storage/sqlite/migrations"
)

// Store persists character snapshots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.New(apperrors.CodeSnapshotStoreFailed, "storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "open sqlite db", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "ping sqlite db", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "run migrations", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveSnapshot inserts or replaces one snapshot row. The write is a single
// upsert statement, so a failed save leaves any previous row untouched.
func (s *Store) SaveSnapshot(ctx context.Context, snap storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return apperrors.New(apperrors.CodeSnapshotStoreFailed, "storage is not configured")
	}
	id := strings.TrimSpace(snap.ID)
	if id == "" {
		return apperrors.New(apperrors.CodeSnapshotStoreFailed, "snapshot id is required")
	}
	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO snapshots (id, name, level, data, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   level = excluded.level,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		id,
		snap.Name,
		snap.Level,
		snap.Data,
		toMillis(updatedAt),
	)
	if err != nil {
		if isQuotaError(err) {
			return apperrors.Wrap(apperrors.CodeSnapshotQuotaExceeded, "storage is full", err)
		}
		return apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "save snapshot", err)
	}
	return nil
}

// LoadSnapshot returns one snapshot by ID.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Snapshot{}, apperrors.New(apperrors.CodeSnapshotStoreFailed, "storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Snapshot{}, apperrors.New(apperrors.CodeSnapshotStoreFailed, "snapshot id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, level, data, updated_at FROM snapshots WHERE id = ?`,
		id,
	)

	var snap storage.Snapshot
	var updatedAt int64
	err := row.Scan(&snap.ID, &snap.Name, &snap.Level, &snap.Data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, apperrors.WithMetadata(apperrors.CodeSnapshotNotFound,
				"snapshot not found", map[string]string{"ID": id})
		}
		return storage.Snapshot{}, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "load snapshot", err)
	}
	snap.UpdatedAt = fromMillis(updatedAt)
	return snap, nil
}

// ListSnapshots returns every snapshot, most recently updated first.
func (s *Store) ListSnapshots(ctx context.Context) ([]storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, apperrors.New(apperrors.CodeSnapshotStoreFailed, "storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, level, data, updated_at
		   FROM snapshots
		  ORDER BY updated_at DESC, id ASC`,
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "list snapshots", err)
	}
	defer rows.Close()

	var snaps []storage.Snapshot
	for rows.Next() {
		var snap storage.Snapshot
		var updatedAt int64
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Level, &snap.Data, &updatedAt); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "list snapshots", err)
		}
		snap.UpdatedAt = fromMillis(updatedAt)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "list snapshots", err)
	}
	return snaps, nil
}

// DeleteSnapshot removes one snapshot by ID.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return apperrors.New(apperrors.CodeSnapshotStoreFailed, "storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.New(apperrors.CodeSnapshotStoreFailed, "snapshot id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "delete snapshot", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeSnapshotStoreFailed, "delete snapshot", err)
	}
	if affected == 0 {
		return apperrors.WithMetadata(apperrors.CodeSnapshotNotFound,
			"snapshot not found", map[string]string{"ID": id})
	}
	return nil
}

// isQuotaError reports whether a write failed because the database or the
// disk underneath it ran out of room.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_FULL {
		return true
	}
	if errors.Is(err, syscall.ENOSPC) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "database or disk is full")
}

var _ storage.Store = (*Store)(nil)
