// Package ledger persists a history of dataset extraction runs in SQLite.
//
// The database is an append-mostly archive: each finished run is recorded
// once, together with its per-category outcomes, and queried by the history
// command. Schema changes bump the version in this file; users delete the
// database to adopt a new schema.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"partwise/internal/config"
	"partwise/internal/dataset"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// schema version.
var ErrSchemaMismatch = errors.New("ledger schema version mismatch")

// Store manages extraction-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded dataset extraction.
type Run struct {
	ID           string
	Dataset      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
	Success      bool
	ErrorMessage string
	TotalFiles   int
	TotalBytes   int64
	Categories   int
}

// CategoryRecord is one category outcome within a recorded run.
type CategoryRecord struct {
	RunID          string
	Category       string
	PartsConsumed  int
	FilesExtracted int
	Destination    string
	Success        bool
	ErrorMessage   string
}

// Open initializes or connects to the ledger database at the configured
// path.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
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
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
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

// RecordRun stores one finished extraction result and returns the generated
// run id.
func (s *Store) RecordRun(ctx context.Context, result *dataset.Result) (string, error) {
	if result == nil {
		return "", errors.New("nil result")
	}

	runID := uuid.NewString()
	finished := time.Now().UTC()
	started := finished.Add(-result.Duration)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, dataset, started_at, finished_at, duration_ms, success,
            error_message, total_files, total_bytes, category_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		result.DatasetName,
		started.Format(time.RFC3339Nano),
		finished.Format(time.RFC3339Nano),
		result.Duration.Milliseconds(),
		boolToInt(result.Success),
		nullableString(result.ErrorMessage),
		result.TotalFilesExtracted,
		result.TotalBytesExtracted,
		len(result.Categories),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, outcome := range result.Categories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_categories (
                run_id, position, category, parts_consumed, files_extracted,
                destination, success, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			i,
			outcome.Category,
			outcome.PartsConsumed,
			len(outcome.ExtractedFiles),
			outcome.Destination,
			boolToInt(outcome.Success),
			nullableString(outcome.ErrorMessage),
		)
		if err != nil {
			return "", fmt.Errorf("insert category %s: %w", outcome.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns recorded runs newest first, up to limit (<= 0 means all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, dataset, started_at, finished_at, duration_ms, success,
        error_message, total_files, total_bytes, category_count
        FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, dataset, started_at, finished_at, duration_ms, success,
        error_message, total_files, total_bytes, category_count
        FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindRun fetches a run by full id or unique id prefix.
func (s *Store) FindRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset, started_at, finished_at, duration_ms, success,
        error_message, total_files, total_bytes, category_count
        FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`,
		idOrPrefix, idOrPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s not found", idOrPrefix)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("run id %s is ambiguous", idOrPrefix)
	}
}

// CategoriesForRun returns the per-category outcomes of one run in their
// original processing order.
func (s *Store) CategoriesForRun(ctx context.Context, runID string) ([]CategoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, category, parts_consumed, files_extracted, destination,
        success, error_message
        FROM run_categories WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var records []CategoryRecord
	for rows.Next() {
		var (
			rec      CategoryRecord
			success  int
			errorMsg sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Category, &rec.PartsConsumed,
			&rec.FilesExtracted, &rec.Destination, &success, &errorMsg); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		rec.Success = success != 0
		rec.ErrorMessage = errorMsg.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt string
		durationMS int64
		success    int
		errorMsg   sql.NullString
	)
	err := row.Scan(&run.ID, &run.Dataset, &startedAt, &finishedAt, &durationMS,
		&success, &errorMsg, &run.TotalFiles, &run.TotalBytes, &run.Categories)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Success = success != 0
	run.ErrorMessage = errorMsg.String
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
