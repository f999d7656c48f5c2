package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound reports a run ID with no journal row.
var ErrRunNotFound = errors.New("run not found")

// Journal persists run history in SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

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

	j := &Journal{db: db, path: path}
	if err := j.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginRun inserts run in the running state. StartedAt defaults to now.
func (j *Journal) BeginRun(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		return Run{}, errors.New("run id is empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunRunning

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, source_root, dest_root, index_path, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Mode,
		run.SourceRoot,
		nullableString(run.DestRoot),
		nullableString(run.IndexPath),
		run.Status,
		run.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordLink appends the outcome for one file to runID.
func (j *Journal) RecordLink(ctx context.Context, runID string, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO link_entries (run_id, source, destination, renamed, status, size, error_message, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		entry.Source,
		entry.Destination,
		boolToInt(entry.Renamed),
		entry.Status,
		entry.Size,
		nullableString(entry.Error),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert link entry: %w", err)
	}
	return nil
}

// FinishRun stores the final counters and status of runID.
func (j *Journal) FinishRun(ctx context.Context, runID string, summary Summary) error {
	if summary.Status == "" {
		summary.Status = RunCompleted
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, new_files = ?, linked = ?, skipped = ?,
             failed = ?, bytes_linked = ?, error_message = ?
         WHERE id = ?`,
		summary.Status,
		time.Now().UTC().Format(timeLayout),
		summary.NewFiles,
		summary.Linked,
		summary.Skipped,
		summary.Failed,
		summary.BytesLinked,
		nullableString(summary.Error),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = "id, mode, source_root, dest_root, index_path, status, started_at, finished_at, new_files, linked, skipped, failed, bytes_linked, error_message"

// RecentRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun returns the run whose ID equals or uniquely starts with idPrefix.
func (j *Journal) FindRun(ctx context.Context, idPrefix string) (Run, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY (id = ?) DESC, started_at DESC LIMIT 2`,
		idPrefix, stripLikeWildcards(idPrefix)+"%", idPrefix)
	if err != nil {
		return Run{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == idPrefix {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", idPrefix)
	}
}

// RunEntries returns the file outcomes recorded for runID in insertion order.
func (j *Journal) RunEntries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, run_id, source, destination, renamed, status, size, error_message, created_at
         FROM link_entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			renamed   int
			status    string
			errMsg    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Source, &e.Destination, &renamed, &status, &e.Size, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Renamed = renamed != 0
		e.Status = EntryStatus(status)
		e.Error = errMsg.String
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes runs that started before cutoff along with their entries and
// returns the number of runs removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	stamp := cutoff.UTC().Format(timeLayout)
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM link_entries WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, stamp); err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, stamp)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		destRoot   sql.NullString
		indexPath  sql.NullString
		status     string
		startedAt  string
		finishedAt sql.NullString
		errMsg     sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Mode,
		&run.SourceRoot,
		&destRoot,
		&indexPath,
		&status,
		&startedAt,
		&finishedAt,
		&run.NewFiles,
		&run.Linked,
		&run.Skipped,
		&run.Failed,
		&run.BytesLinked,
		&errMsg,
	); err != nil {
		return Run{}, err
	}
	run.DestRoot = destRoot.String
	run.IndexPath = indexPath.String
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	run.Error = errMsg.String
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
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

func stripLikeWildcards(value string) string {
	r := strings.NewReplacer("%", "", "_", "")
	return r.Replace(value)
}
