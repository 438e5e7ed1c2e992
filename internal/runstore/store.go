package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

const runColumns = "id, command, input, output, started_at, finished_at, rows_in, rows_out, dropped_json, violations, status, error"

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

// Store persists run records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the ledger at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create run ledger directory", err).WithContext("path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorageError("open sqlite db", err).WithContext("path", path)
	}
	// A single connection keeps the pragmas and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, apperrors.NewStorageError(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.NewStorageError("migrate run ledger", err).WithContext("path", path)
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run. An empty ID is filled with a new UUID and an empty
// status with succeeded. The stored record is returned.
func (s *Store) Record(ctx context.Context, run domain.RunRecord) (domain.RunRecord, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = domain.RunStatusSucceeded
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	var dropped sql.NullString
	if len(run.Dropped) > 0 {
		data, err := json.Marshal(run.Dropped)
		if err != nil {
			return run, apperrors.NewStorageError("marshal dropped counts", err)
		}
		dropped = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Command,
		run.Input,
		nullableString(run.Output),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.RowsIn,
		run.RowsOut,
		dropped,
		run.Violations,
		string(run.Status),
		nullableString(run.Error),
	)
	if err != nil {
		return run, apperrors.NewStorageError("insert run", err).WithContext("id", run.ID)
	}
	return run, nil
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id string) (domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return domain.RunRecord{}, apperrors.NewNotFoundError("run " + id)
	}
	if err != nil {
		return domain.RunRecord{}, apperrors.NewStorageError("get run", err).WithContext("id", id)
	}
	return run, nil
}

// List returns the most recent runs first. command filters when non-empty;
// limit <= 0 uses DefaultListLimit.
func (s *Store) List(ctx context.Context, command string, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if command != "" {
		query += ` WHERE command = ?`
		args = append(args, command)
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	defer rows.Close()

	runs := make([]domain.RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scan run", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate runs", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (domain.RunRecord, error) {
	var (
		run         domain.RunRecord
		output      sql.NullString
		startedRaw  string
		finishedRaw string
		dropped     sql.NullString
		status      string
		errMsg      sql.NullString
	)

	if err := scanner.Scan(
		&run.ID,
		&run.Command,
		&run.Input,
		&output,
		&startedRaw,
		&finishedRaw,
		&run.RowsIn,
		&run.RowsOut,
		&dropped,
		&run.Violations,
		&status,
		&errMsg,
	); err != nil {
		return domain.RunRecord{}, err
	}

	run.Output = output.String
	run.Status = domain.RunStatus(status)
	run.Error = errMsg.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)

	if dropped.Valid && dropped.String != "" {
		if err := json.Unmarshal([]byte(dropped.String), &run.Dropped); err != nil {
			return domain.RunRecord{}, fmt.Errorf("decode dropped counts: %w", err)
		}
	}
	return run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
