package buildcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/qtpi-bonding/folio/internal/db"
)

// Store reads and writes the build cache of one output directory.
type Store struct {
	db        *db.DB
	outputDir string
	now       func() time.Time
}

// NewStore creates a Store backed by the given database. Output paths are
// scoped to outputDir so several sites can share one cache file.
func NewStore(database *db.DB, outputDir string) *Store {
	if abs, err := filepath.Abs(outputDir); err == nil {
		outputDir = abs
	}
	return &Store{db: database, outputDir: filepath.ToSlash(outputDir), now: time.Now}
}

// StartBuild inserts a running build and returns it.
func (s *Store) StartBuild(ctx context.Context, environment string) (*Build, error) {
	b := &Build{
		ID:          uuid.New().String(),
		Environment: environment,
		StartedAt:   s.now().UTC().Truncate(time.Second),
		Status:      StatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, environment, started_at, status) VALUES (?, ?, ?, ?)`,
		b.ID, b.Environment, b.StartedAt.Format(time.DateTime), string(b.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting build: %w", err)
	}
	return b, nil
}

// FinishBuild stores the counters of b and marks it succeeded, or failed
// when buildErr is non-nil.
func (s *Store) FinishBuild(ctx context.Context, b *Build, buildErr error) error {
	b.FinishedAt = s.now().UTC().Truncate(time.Second)
	b.Status = StatusSucceeded
	b.Error = ""
	if buildErr != nil {
		b.Status = StatusFailed
		b.Error = buildErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE builds SET finished_at = ?, status = ?, pages = ?, written = ?, skipped = ?, error = ?
		WHERE id = ?`,
		b.FinishedAt.Format(time.DateTime), string(b.Status), b.Pages, b.Written, b.Skipped, b.Error, b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating build %s: %w", b.ID, err)
	}
	return nil
}

// GetBuild retrieves a single build.
func (s *Store) GetBuild(ctx context.Context, id string) (*Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, environment, started_at, finished_at, status, pages, written, skipped, error
		FROM builds WHERE id = ?`, id)
	return scanBuild(row)
}

// RecentBuilds returns up to limit builds, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, environment, started_at, finished_at, status, pages, written, skipped, error
		FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, *b)
	}
	return builds, rows.Err()
}

// Lookup returns the recorded output for path, or nil when none exists.
func (s *Store) Lookup(ctx context.Context, path string) (*Output, error) {
	var (
		o  Output
		ts string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT path, hash, size, build_id, updated_at FROM outputs
		WHERE output_dir = ? AND path = ?`, s.outputDir, path,
	).Scan(&o.Path, &o.Hash, &o.Size, &o.BuildID, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", path, err)
	}
	o.UpdatedAt = parseTime(ts)
	return &o, nil
}

// Record upserts the hash and size written for path by buildID.
func (s *Store) Record(ctx context.Context, buildID, path, hash string, size int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outputs (output_dir, path, hash, size, build_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(output_dir, path) DO UPDATE SET
			hash = excluded.hash, size = excluded.size,
			build_id = excluded.build_id, updated_at = excluded.updated_at`,
		s.outputDir, path, hash, size, buildID, s.now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", path, err)
	}
	return nil
}

// Reset forgets every output of this store's directory. Used by clean builds.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outputs WHERE output_dir = ?`, s.outputDir)
	if err != nil {
		return 0, fmt.Errorf("resetting output cache: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(sc scanner) (*Build, error) {
	var (
		b        Build
		started  string
		finished sql.NullString
		status   string
	)
	err := sc.Scan(&b.ID, &b.Environment, &started, &finished, &status,
		&b.Pages, &b.Written, &b.Skipped, &b.Error)
	if err != nil {
		return nil, err
	}
	b.Status = Status(status)
	b.StartedAt = parseTime(started)
	if finished.Valid {
		b.FinishedAt = parseTime(finished.String)
	}
	return &b, nil
}

// parseTime accepts the stored layout and the RFC 3339 form the driver
// produces for DATETIME columns.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
