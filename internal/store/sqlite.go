package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"edgeaudit/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores audit rows in a local sqlite database. Timestamps are kept as
// UTC unix milliseconds assigned by the store clock.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at dbPath and ensures the schema.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		dbPath = "edgeaudit.db"
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// one writer at a time; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	auditTable := `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		brand_url TEXT NOT NULL,
		region TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		status INTEGER NOT NULL,
		ttfb INTEGER NOT NULL,
		headers TEXT NOT NULL,
		error_message TEXT
	);
	`
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_request_id ON audit_logs(request_id);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_region ON audit_logs(region);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_batch_id ON audit_logs(batch_id);`,
	}

	if _, err := s.db.Exec(auditTable); err != nil {
		return fmt.Errorf("create audit_logs: %w", err)
	}
	for _, stmt := range indexes {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Insert writes all rows in one transaction.
func (s *SQLite) Insert(ctx context.Context, rows []model.AuditLogEntry) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO audit_logs
		(batch_id, request_id, brand_url, region, timestamp, status, ttfb, headers, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	ts := s.now().UTC().UnixMilli()
	for _, r := range rows {
		headersJSON, err := encodeHeaders(r.Headers)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, r.BatchID, r.RequestID, r.BrandURL, r.Region,
			ts, r.Status, r.TTFB, string(headersJSON), r.ErrorMessage); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Rows returns rows at or after q.Since, oldest first.
func (s *SQLite) Rows(ctx context.Context, q RowQuery) ([]model.AuditLogEntry, error) {
	query := `SELECT id, batch_id, request_id, brand_url, region, timestamp, status, ttfb, headers, error_message
		FROM audit_logs WHERE 1=1`
	var args []interface{}

	if !q.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, q.Since.UTC().UnixMilli())
	}
	if len(q.BrandURLs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.BrandURLs)), ",")
		query += ` AND brand_url IN (` + placeholders + `)`
		for _, b := range q.BrandURLs {
			args = append(args, b)
		}
	}
	query += ` ORDER BY timestamp ASC, id ASC`

	return s.query(ctx, query, args...)
}

// Recent returns the newest rows first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx, `SELECT id, batch_id, request_id, brand_url, region, timestamp, status, ttfb, headers, error_message
		FROM audit_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// Batches groups rows by batch_id in the database and returns at most q.Limit
// runs, newest first.
func (s *SQLite) Batches(ctx context.Context, q BatchQuery) ([]model.BatchSummary, error) {
	query := `SELECT batch_id, MIN(timestamp) AS run_time, COUNT(*),
		COUNT(DISTINCT brand_url), COUNT(error_message)
		FROM audit_logs WHERE timestamp >= ?
		GROUP BY batch_id
		ORDER BY run_time DESC, batch_id ASC
		LIMIT ?`
	var since int64
	if !q.Since.IsZero() {
		since = q.Since.UTC().UnixMilli()
	}

	rows, err := s.db.QueryContext(ctx, query, since, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BatchSummary
	for rows.Next() {
		var b model.BatchSummary
		var runMillis int64
		if err := rows.Scan(&b.BatchID, &runMillis, &b.ProbeCount, &b.BrandsCount, &b.ErrorCount); err != nil {
			return nil, err
		}
		b.RunTime = time.UnixMilli(runMillis).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLite) query(ctx context.Context, query string, args ...interface{}) ([]model.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditLogEntry
	for rows.Next() {
		var e model.AuditLogEntry
		var tsMillis int64
		var headersJSON string
		var errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.BatchID, &e.RequestID, &e.BrandURL, &e.Region,
			&tsMillis, &e.Status, &e.TTFB, &headersJSON, &errMsg); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(tsMillis).UTC()
		if e.Headers, err = decodeHeaders([]byte(headersJSON)); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			msg := errMsg.String
			e.ErrorMessage = &msg
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
