package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var (
	// ErrNotFound is returned when a run id is not in the ledger.
	ErrNotFound = errors.New("run not found")
	// ErrAmbiguousID is returned when an id prefix matches several runs.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
)

// Run is one trainer invocation.
type Run struct {
	ID         string
	Tagger     string
	Config     string
	Dataset    string
	LogPath    string
	StartedAt  time.Time
	FinishedAt *time.Time
	ExitCode   *int
	Status     Status
}

// Target renders the run's tagger/config identifier.
func (r Run) Target() string {
	return r.Tagger + "/" + r.Config
}

// Duration returns the run's wall time, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// timeLayout keeps a fixed fraction width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, tagger, config, dataset, log_path, started_at, finished_at, exit_code, status"

// Begin records run as running. An empty ID is replaced with a new UUID.
func (s *Store) Begin(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	run.Status = StatusRunning
	run.FinishedAt = nil
	run.ExitCode = nil

	_, err := s.execWithRetry(ctx,
		"INSERT INTO runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?)",
		run.ID, run.Tagger, run.Config, run.Dataset, run.LogPath,
		run.StartedAt.Format(timeLayout), string(run.Status),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish records the exit code of run id. Exit code zero marks the run
// succeeded; anything else marks it failed.
func (s *Store) Finish(ctx context.Context, id string, exitCode int, finishedAt time.Time) error {
	status := StatusSucceeded
	if exitCode != 0 {
		status = StatusFailed
	}
	res, err := s.execWithRetry(ctx,
		"UPDATE runs SET finished_at = ?, exit_code = ?, status = ? WHERE id = ?",
		finishedAt.UTC().Format(timeLayout), exitCode, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get returns the run whose id is id or starts with id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, fmt.Errorf("get run: %w", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id LIKE ? ESCAPE '\\' ORDER BY id LIMIT 2",
		likeEscaper.Replace(id)+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrAmbiguousID)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC"
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recent run of every tagger/config pair, keyed by
// "tagger/config".
func (s *Store) Latest(ctx context.Context) (map[string]Run, error) {
	runs, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]Run)
	for _, run := range runs {
		if _, ok := latest[run.Target()]; !ok {
			latest[run.Target()] = run
		}
	}
	return latest, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		exitCode    sql.NullInt64
		status      string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Tagger,
		&run.Config,
		&run.Dataset,
		&run.LogPath,
		&startedRaw,
		&finishedRaw,
		&exitCode,
		&status,
	); err != nil {
		return Run{}, err
	}
	started, err := time.Parse(time.RFC3339Nano, startedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at for %s: %w", run.ID, err)
	}
	run.StartedAt = started
	if finishedRaw.Valid {
		finished, err := time.Parse(time.RFC3339Nano, finishedRaw.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at for %s: %w", run.ID, err)
		}
		run.FinishedAt = &finished
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	run.Status = Status(status)
	return run, nil
}
