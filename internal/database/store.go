package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gianlucabassani/browsint/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("database: record not found")

// Store provides SQLite-backed persistence for crawl runs and target
// profiles.
//
// Design decision: We store each record as a JSON document plus a few
// indexed columns because:
//  1. The result types evolve; a JSON column never needs a migration
//  2. Lookups are by seed/target and recency only, never by inner fields
//  3. The loaded value round-trips through the exact model types
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the given database file path.
func Open(dbPath string, opts Options) (*Store, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rwc allows creation, mode=rw requires the
	// file to exist.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Crawl runs store one finalized run result as JSON
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		termination TEXT NOT NULL,
		pages_visited INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON crawl_runs(seed_url);
	CREATE INDEX IF NOT EXISTS idx_runs_finished ON crawl_runs(finished_at);

	-- Target profiles store one enrichment profile as JSON
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		target_type TEXT NOT NULL,
		completed_at DATETIME NOT NULL,
		profile_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_target ON profiles(target, target_type);
	CREATE INDEX IF NOT EXISTS idx_profiles_completed ON profiles(completed_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRunResult stores a finalized crawl run and returns its row ID.
func (s *Store) SaveRunResult(ctx context.Context, result *model.CrawlRunResult) (int64, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO crawl_runs (seed_url, started_at, finished_at, termination, pages_visited, pages_failed, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.SeedURL,
		result.StartedAt.UTC(),
		result.FinishedAt.UTC(),
		string(result.TerminationReason),
		result.PagesVisited,
		result.PagesFailed,
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run result: %w", err)
	}
	return res.LastInsertId()
}

// LoadRunResult loads one run by row ID.
func (s *Store) LoadRunResult(ctx context.Context, id int64) (*model.CrawlRunResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM crawl_runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run result: %w", err)
	}

	var result model.CrawlRunResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize run result: %w", err)
	}
	return &result, nil
}

// LatestRunResult loads the most recent run for a seed URL.
func (s *Store) LatestRunResult(ctx context.Context, seedURL string) (*model.CrawlRunResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
	SELECT result_json FROM crawl_runs
	WHERE seed_url = ?
	ORDER BY finished_at DESC, id DESC
	LIMIT 1`, seedURL).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}

	var result model.CrawlRunResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize run result: %w", err)
	}
	return &result, nil
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID           int64
	SeedURL      string
	FinishedAt   time.Time
	Termination  string
	PagesVisited int
	PagesFailed  int
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, seed_url, finished_at, termination, pages_visited, pages_failed
	FROM crawl_runs
	ORDER BY finished_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.SeedURL, &r.FinishedAt, &r.Termination, &r.PagesVisited, &r.PagesFailed); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveProfile stores a target profile and returns its row ID.
func (s *Store) SaveProfile(ctx context.Context, profile *model.TargetProfile) (int64, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize profile: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
	INSERT INTO profiles (target, target_type, completed_at, profile_json)
	VALUES (?, ?, ?, ?)`,
		profile.Target,
		string(profile.Type),
		profile.CompletedAt.UTC(),
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert profile: %w", err)
	}
	return res.LastInsertId()
}

// LoadProfile loads the most recent profile for a target.
func (s *Store) LoadProfile(ctx context.Context, target string, targetType model.TargetType) (*model.TargetProfile, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
	SELECT profile_json FROM profiles
	WHERE target = ? AND target_type = ?
	ORDER BY completed_at DESC, id DESC
	LIMIT 1`, target, string(targetType)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile model.TargetProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, fmt.Errorf("failed to deserialize profile: %w", err)
	}
	return &profile, nil
}
