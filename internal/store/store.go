package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/simonhull/mediameta/internal/types"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("attachment not found")

const lockRetry = 50 * time.Millisecond

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one saved analysis.
type Record struct {
	ID         string
	Path       string
	Size       int64
	ModTime    time.Time
	FileFormat string
	MIMEType   string
	Playtime   float64
	Bitrate    float64
	Warnings   int
	Errors     int
	Result     json.RawMessage
	CreatedAt  time.Time
}

// Info decodes the saved analysis record.
func (r *Record) Info() (*types.Info, error) {
	var info types.Info
	if err := json.Unmarshal(r.Result, &info); err != nil {
		return nil, fmt.Errorf("decode saved result %s: %w", r.ID, err)
	}
	return &info, nil
}

// Store manages result persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// Open creates or connects to the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
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

	s := &Store{db: db, path: path, lock: flock.New(path + ".lock")}
	if err := s.withLock(ctx, s.applyMigrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withLock runs fn while holding the writer lock.
func (s *Store) withLock(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire store lock: %s is held by another process", s.lock.Path())
	}
	defer func() {
		_ = s.lock.Unlock()
	}()
	return fn(ctx)
}

// Save stores info as a new row. modTime is the file modification time,
// zero when unknown.
func (s *Store) Save(ctx context.Context, info *types.Info, modTime time.Time) (*Record, error) {
	if info == nil {
		return nil, errors.New("info is nil")
	}
	result, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	rec := &Record{
		ID:         uuid.NewString(),
		Path:       info.FilenamePath,
		Size:       info.FileSize,
		ModTime:    modTime.UTC(),
		FileFormat: info.FileFormat,
		MIMEType:   info.MIMEType,
		Playtime:   info.PlaytimeSeconds,
		Bitrate:    info.Bitrate,
		Warnings:   len(info.Warnings),
		Errors:     len(info.Errors),
		Result:     result,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.withLock(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO attachments (
                id, path, size, mtime, fileformat, mime_type, playtime, bitrate,
                warning_count, error_count, result_json, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			rec.Path,
			rec.Size,
			nullableTime(rec.ModTime),
			nullableString(rec.FileFormat),
			nullableString(rec.MIMEType),
			rec.Playtime,
			rec.Bitrate,
			rec.Warnings,
			rec.Errors,
			string(rec.Result),
			rec.CreatedAt.Format(timeLayout),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	return rec, nil
}

const recordColumns = `id, path, size, mtime, fileformat, mime_type, playtime, bitrate,
    warning_count, error_count, result_json, created_at`

// Get fetches a row by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM attachments WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return rec, nil
}

// Latest returns the newest row for path.
func (s *Store) Latest(ctx context.Context, path string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM attachments WHERE path = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		path,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest attachment: %w", err)
	}
	return rec, nil
}

// List returns up to limit rows, newest first. A limit of zero or less
// returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM attachments ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a row by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.withLock(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete attachment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete attachment: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec        Record
		mtime      sql.NullString
		fileFormat sql.NullString
		mimeType   sql.NullString
		result     string
		createdAt  string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Path,
		&rec.Size,
		&mtime,
		&fileFormat,
		&mimeType,
		&rec.Playtime,
		&rec.Bitrate,
		&rec.Warnings,
		&rec.Errors,
		&result,
		&createdAt,
	); err != nil {
		return nil, err
	}
	rec.FileFormat = fileFormat.String
	rec.MIMEType = mimeType.String
	rec.Result = json.RawMessage(result)
	rec.ModTime = parseTime(mtime.String)
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(timeLayout)
}
