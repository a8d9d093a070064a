// Package catalog keeps a small SQLite journal of produced videos. It is an
// additive index only: coverage reconciliation always derives from the
// filesystem, and a catalog failure is never fatal to an encode.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Movie is one encoded daily video.
type Movie struct {
	Date       string // YYYY-MM-DD
	Path       string
	FrameCount int
	Width      int
	Height     int
	EncodedAt  time.Time
}

// Stats holds aggregate statistics about the catalog.
type Stats struct {
	TotalMovies int64
	TotalFrames int64
	LatestDate  string
	LatestPath  string
}

// Store wraps the catalog database.
type Store struct {
	db *sql.DB

	insertMovie *sql.Stmt
	getMovie    *sql.Stmt
}

// Open opens (creating if needed) the catalog database at path, runs
// migrations, and returns a ready-to-use store.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore runs migrations against an already-opened database and prepares
// statements. Tests use this with an in-memory database.
func NewStore(db *sql.DB) (*Store, error) {
	runner := NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db}
	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *Store) prepareStatements() error {
	var err error

	s.insertMovie, err = s.db.Prepare(`
		INSERT INTO movies (date, path, frame_count, width, height, encoded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			path = excluded.path,
			frame_count = excluded.frame_count,
			width = excluded.width,
			height = excluded.height,
			encoded_at = excluded.encoded_at
	`)
	if err != nil {
		return err
	}

	s.getMovie, err = s.db.Prepare(`
		SELECT date, path, frame_count, width, height, encoded_at
		FROM movies WHERE date = ?
	`)
	return err
}

// RecordMovie upserts the journal entry for one date.
func (s *Store) RecordMovie(ctx context.Context, m *Movie) error {
	encodedAt := m.EncodedAt
	if encodedAt.IsZero() {
		encodedAt = time.Now()
	}
	_, err := s.insertMovie.ExecContext(ctx,
		m.Date, m.Path, m.FrameCount, m.Width, m.Height, encodedAt)
	if err != nil {
		return fmt.Errorf("record movie %s: %w", m.Date, err)
	}
	return nil
}

// GetMovie returns the journal entry for a date, or sql.ErrNoRows.
func (s *Store) GetMovie(ctx context.Context, date string) (*Movie, error) {
	var m Movie
	err := s.getMovie.QueryRowContext(ctx, date).Scan(
		&m.Date, &m.Path, &m.FrameCount, &m.Width, &m.Height, &m.EncodedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetStats returns aggregate catalog statistics.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(frame_count), 0) FROM movies",
	).Scan(&st.TotalMovies, &st.TotalFrames)
	if err != nil {
		return nil, fmt.Errorf("aggregate movies: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT date, path FROM movies ORDER BY date DESC LIMIT 1",
	).Scan(&st.LatestDate, &st.LatestPath)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("latest movie: %w", err)
	}

	return &st, nil
}

// Close releases prepared statements and the underlying database.
func (s *Store) Close() error {
	if s.insertMovie != nil {
		s.insertMovie.Close()
	}
	if s.getMovie != nil {
		s.getMovie.Close()
	}
	return s.db.Close()
}
