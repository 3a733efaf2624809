package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"renderrob/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages render history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the history database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
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
func (s *Store) Path() string { return s.path }

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

// BeginSession inserts a session row.
func (s *Store) BeginSession(ctx context.Context, sess Session) error {
	return s.exec(ctx,
		`INSERT INTO sessions (id, job_file, started_at, jobs, active_jobs, progress)
         VALUES (?, ?, ?, ?, ?, 0)`,
		sess.ID,
		nullableString(sess.JobFile),
		formatTime(sess.StartedAt),
		sess.Jobs,
		sess.Active,
	)
}

// RecordOutcome appends a job outcome to a session.
func (s *Store) RecordOutcome(ctx context.Context, o Outcome) error {
	var exitCode any
	if o.ExitCode != nil {
		exitCode = *o.ExitCode
	}
	return s.exec(ctx,
		`INSERT INTO outcomes (
            session_id, job_index, job_key, label, source_file, status, exit_code,
            shot_name, frame_path, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.SessionID,
		o.Index,
		o.Key,
		nullableString(o.Label),
		nullableString(o.SourceFile),
		o.Status,
		exitCode,
		nullableString(o.ShotName),
		nullableString(o.FramePath),
		nullableString(o.Error),
		nullableTime(o.StartedAt),
		nullableTime(o.FinishedAt),
	)
}

// FinishSession stamps the session's final state.
func (s *Store) FinishSession(ctx context.Context, id string, finished time.Time, progress int, cancelled bool, errMsg string) error {
	return s.exec(ctx,
		`UPDATE sessions SET finished_at = ?, progress = ?, cancelled = ?, error_message = ? WHERE id = ?`,
		formatTime(finished),
		progress,
		boolToInt(cancelled),
		nullableString(errMsg),
		id,
	)
}

const sessionColumns = `s.id, s.job_file, s.started_at, s.finished_at, s.jobs, s.active_jobs, s.progress, s.cancelled, s.error_message,
    COALESCE(SUM(CASE WHEN o.status = 'green' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN o.status = 'yellow' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN o.status = 'red' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN o.status = 'skipped' THEN 1 ELSE 0 END), 0)`

// RecentSessions lists the newest sessions first. A limit <= 0 returns all.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + `
        FROM sessions s LEFT JOIN outcomes o ON o.session_id = s.id
        GROUP BY s.id
        ORDER BY s.started_at DESC, s.rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSession fetches one session by ID or unique ID prefix. It returns nil
// when nothing matches.
func (s *Store) GetSession(ctx context.Context, idOrPrefix string) (*Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+`
        FROM sessions s LEFT JOIN outcomes o ON o.session_id = s.id
        WHERE s.id LIKE ? || '%'
        GROUP BY s.id
        LIMIT 2`, strings.TrimSpace(idOrPrefix))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer rows.Close()

	var found []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		found = append(found, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("session prefix %q is ambiguous", idOrPrefix)
	}
}

// Outcomes lists a session's outcomes in recorded order.
func (s *Store) Outcomes(ctx context.Context, sessionID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, job_index, job_key, label, source_file, status, exit_code,
                shot_name, frame_path, error_message, started_at, finished_at
         FROM outcomes WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o          Outcome
			label      sql.NullString
			source     sql.NullString
			exitCode   sql.NullInt64
			shot       sql.NullString
			framePath  sql.NullString
			errMsg     sql.NullString
			startedRaw sql.NullString
			finishRaw  sql.NullString
		)
		if err := rows.Scan(&o.SessionID, &o.Index, &o.Key, &label, &source, &o.Status, &exitCode,
			&shot, &framePath, &errMsg, &startedRaw, &finishRaw); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Label = label.String
		o.SourceFile = source.String
		o.ShotName = shot.String
		o.FramePath = framePath.String
		o.Error = errMsg.String
		if exitCode.Valid {
			code := int(exitCode.Int64)
			o.ExitCode = &code
		}
		o.StartedAt = parseTime(startedRaw)
		o.FinishedAt = parseTime(finishRaw)
		out = append(out, o)
	}
	return out, rows.Err()
}

// LatestStatuses returns the most recent recorded status per job key.
func (s *Store) LatestStatuses(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_key, status FROM outcomes
         WHERE id IN (SELECT MAX(id) FROM outcomes WHERE job_key IN (`+placeholders+`) AND status != 'skipped' GROUP BY job_key)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("latest statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, status string
		if err := rows.Scan(&key, &status); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		result[key] = status
	}
	return result, rows.Err()
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (Session, error) {
	var (
		sess        Session
		jobFile     sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
		cancelled   int
		errMsg      sql.NullString
	)
	if err := scanner.Scan(&sess.ID, &jobFile, &startedRaw, &finishedRaw, &sess.Jobs, &sess.Active,
		&sess.Progress, &cancelled, &errMsg, &sess.Green, &sess.Yellow, &sess.Red, &sess.Skipped); err != nil {
		return Session{}, err
	}
	sess.JobFile = jobFile.String
	sess.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		t := parseTime(finishedRaw)
		sess.FinishedAt = &t
	}
	sess.Cancelled = cancelled != 0
	sess.Error = errMsg.String
	return sess, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
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
	return formatTime(value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
