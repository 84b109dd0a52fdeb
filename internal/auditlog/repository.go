package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/database"
)

// Filter selects entries for List. Zero fields match everything, RunID
// matches by prefix and Limit must be positive.
type Filter struct {
	Domain  string
	Outcome string
	RunID   string
	Since   time.Time
	Limit   int
}

// Repository stores audit entries.
type Repository interface {
	Save(ctx context.Context, entries ...*AuditEntry) error
	List(ctx context.Context, f Filter) ([]AuditEntry, error)
	Prune(ctx context.Context, before time.Time, dryRun bool) (int64, error)
	Close() error
}

// migrations are applied in order by database.Open. Append, never edit.
var migrations = []string{
	`CREATE TABLE audit_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp   TEXT    NOT NULL,
		command     TEXT    NOT NULL,
		args        TEXT    NOT NULL DEFAULT '',
		domain      TEXT    NOT NULL DEFAULT '',
		name        TEXT    NOT NULL DEFAULT '',
		type        TEXT    NOT NULL DEFAULT '',
		old_content TEXT    NOT NULL DEFAULT '',
		new_content TEXT    NOT NULL DEFAULT '',
		outcome     TEXT    NOT NULL DEFAULT '',
		detail      TEXT    NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_audit_log_timestamp ON audit_log(timestamp);
	CREATE INDEX idx_audit_log_record ON audit_log(domain, name, type);`,

	`ALTER TABLE audit_log ADD COLUMN run_id TEXT NOT NULL DEFAULT '';
	CREATE INDEX idx_audit_log_run ON audit_log(run_id);`,
}

// tsLayout is fixed width so timestamps compare correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

const columns = `id, timestamp, run_id, command, args, domain, name, type,
	old_content, new_content, outcome, detail, duration_ms`

// SQLiteRepository is the Repository backed by the local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// Open opens the audit log at the default path.
func Open(ctx context.Context) (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("auditlog: %w", err)
	}
	return OpenAt(ctx, path)
}

// OpenAt opens the audit log stored at path.
func OpenAt(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := database.Open(ctx, path, migrations)
	if err != nil {
		return nil, fmt.Errorf("auditlog: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Save inserts entries in one transaction, filling in ID and any missing
// Timestamp. Either every entry is stored or none is.
func (r *SQLiteRepository) Save(ctx context.Context, entries ...*AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("auditlog: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_log (timestamp, run_id, command, args, domain, name, type,
			old_content, new_content, outcome, detail, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("auditlog: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		ts := e.Timestamp
		if ts.IsZero() {
			ts = now
		}
		res, err := stmt.ExecContext(ctx,
			ts.UTC().Format(tsLayout), e.RunID, e.Command, e.Args, e.Domain, e.Name, e.Type,
			e.OldContent, e.NewContent, e.Outcome, e.Detail, e.DurationMs,
		)
		if err != nil {
			return fmt.Errorf("auditlog: insert %s %s: %w", e.Domain, e.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("auditlog: insert id: %w", err)
		}
		e.ID, e.Timestamp = id, ts
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("auditlog: commit: %w", err)
	}
	return nil
}

// List returns the newest entries matching f, newest first.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]AuditEntry, error) {
	if f.Limit <= 0 {
		return nil, fmt.Errorf("auditlog: limit must be positive, got %d", f.Limit)
	}

	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		where = append(where, cond)
		args = append(args, v)
	}
	if f.Domain != "" {
		add("domain = ?", f.Domain)
	}
	if f.Outcome != "" {
		add("outcome = ?", f.Outcome)
	}
	if f.RunID != "" {
		add("run_id LIKE ? ESCAPE '\\'", escapeLike(f.RunID)+"%")
	}
	if !f.Since.IsZero() {
		add("timestamp >= ?", f.Since.UTC().Format(tsLayout))
	}

	query := "SELECT " + columns + " FROM audit_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditlog: query: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e  AuditEntry
			ts string
		)
		if err := rows.Scan(&e.ID, &ts, &e.RunID, &e.Command, &e.Args, &e.Domain, &e.Name, &e.Type,
			&e.OldContent, &e.NewContent, &e.Outcome, &e.Detail, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("auditlog: scan: %w", err)
		}
		if e.Timestamp, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("auditlog: entry %d: bad timestamp %q", e.ID, ts)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries recorded before the cutoff and reports how many.
// With dryRun set nothing is deleted and the count is what would go.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time, dryRun bool) (int64, error) {
	cutoff := before.UTC().Format(tsLayout)
	if dryRun {
		var n int64
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log WHERE timestamp < ?`, cutoff).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("auditlog: count: %w", err)
		}
		return n, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_log WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("auditlog: delete: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
