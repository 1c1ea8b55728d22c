// Package ledger records completed conversions in SQLite so scripts can be
// regenerated and past batches listed without re-running the pipeline.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// FileName is the ledger database name inside the log directory.
const FileName = "autovideo.db"

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one converted video.
type Entry struct {
	ID          int64
	RunID       string
	ModID       string
	ModName     string
	VideoID     string
	VideoName   string
	SourcePath  string
	Atlases     int
	HoldSeconds float64
	AudioFile   string
	DriveIn     bool
	FrameSize   int
	FPS         int
	CreatedAt   time.Time
}

// Store persists entries.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record inserts e, replacing any earlier entry for the same mod and video.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.ModID) == "" || strings.TrimSpace(e.VideoID) == "" {
		return errors.New("ledger entry requires mod and video ids")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (
            run_id, mod_id, mod_name, video_id, video_name, source_path,
            atlases, hold_seconds, audio_file, drive_in, frame_size, framerate, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(mod_id, video_id) DO UPDATE SET
            run_id = excluded.run_id,
            mod_name = excluded.mod_name,
            video_name = excluded.video_name,
            source_path = excluded.source_path,
            atlases = excluded.atlases,
            hold_seconds = excluded.hold_seconds,
            audio_file = excluded.audio_file,
            drive_in = excluded.drive_in,
            frame_size = excluded.frame_size,
            framerate = excluded.framerate,
            created_at = excluded.created_at`,
		e.RunID, e.ModID, e.ModName, e.VideoID, e.VideoName, e.SourcePath,
		e.Atlases, e.HoldSeconds, nullableString(e.AudioFile), boolToInt(e.DriveIn),
		e.FrameSize, e.FPS, created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record conversion %s/%s: %w", e.ModID, e.VideoID, err)
	}
	return nil
}

const entryColumns = "id, run_id, mod_id, mod_name, video_id, video_name, source_path, atlases, hold_seconds, audio_file, drive_in, frame_size, framerate, created_at"

// List returns the most recent entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT " + entryColumns + " FROM conversions ORDER BY created_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ListByMod returns a mod's entries in conversion order.
func (s *Store) ListByMod(ctx context.Context, modID string) ([]Entry, error) {
	return s.query(ctx,
		"SELECT "+entryColumns+" FROM conversions WHERE mod_id = ? ORDER BY created_at ASC, id ASC",
		modID,
	)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		e          Entry
		audio      sql.NullString
		driveIn    int64
		createdRaw string
	)
	if err := scanner.Scan(
		&e.ID, &e.RunID, &e.ModID, &e.ModName, &e.VideoID, &e.VideoName, &e.SourcePath,
		&e.Atlases, &e.HoldSeconds, &audio, &driveIn, &e.FrameSize, &e.FPS, &createdRaw,
	); err != nil {
		return Entry{}, err
	}
	e.AudioFile = audio.String
	e.DriveIn = driveIn != 0
	if ts, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		e.CreatedAt = ts
	}
	return e, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
