package store

import (
	"context"
	"fmt"

	"edgeaudit/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores audit rows in a Postgres audit_logs table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects with a pgx pool and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: empty DATABASE_URL")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id SERIAL PRIMARY KEY,
			batch_id UUID NOT NULL,
			request_id UUID NOT NULL,
			brand_url TEXT NOT NULL,
			region TEXT NOT NULL,
			timestamp TIMESTAMPTZ DEFAULT NOW(),
			status INT NOT NULL,
			ttfb INT NOT NULL,
			headers JSONB NOT NULL,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_request_id ON audit_logs(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_region ON audit_logs(region)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_batch_id ON audit_logs(batch_id)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init schema: %w", err)
		}
	}
	return nil
}

// Insert queues all rows in one pgx batch inside a transaction.
func (p *Postgres) Insert(ctx context.Context, rows []model.AuditLogEntry) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for _, r := range rows {
		headersJSON, err := encodeHeaders(r.Headers)
		if err != nil {
			return 0, err
		}
		b.Queue(`INSERT INTO audit_logs
			(batch_id, request_id, brand_url, region, status, ttfb, headers, error_message)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.BatchID, r.RequestID, r.BrandURL, r.Region, r.Status, r.TTFB, string(headersJSON), r.ErrorMessage)
	}

	br := tx.SendBatch(ctx, b)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, err
		}
	}
	if err := br.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(rows), nil
}

const pgSelect = `SELECT id, batch_id::text, request_id::text, brand_url, region, timestamp, status, ttfb, headers::text, error_message
	FROM audit_logs`

// Rows returns rows at or after q.Since, oldest first.
func (p *Postgres) Rows(ctx context.Context, q RowQuery) ([]model.AuditLogEntry, error) {
	query := pgSelect + ` WHERE ($1::timestamptz IS NULL OR timestamp >= $1)
		AND (cardinality($2::text[]) = 0 OR brand_url = ANY($2))
		ORDER BY timestamp ASC, id ASC`

	var since interface{}
	if !q.Since.IsZero() {
		since = q.Since.UTC()
	}
	brands := q.BrandURLs
	if brands == nil {
		brands = []string{}
	}
	return p.query(ctx, query, since, brands)
}

// Recent returns the newest rows first.
func (p *Postgres) Recent(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return p.query(ctx, pgSelect+` ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
}

// Batches groups rows by batch_id in the database and returns at most q.Limit
// runs, newest first.
func (p *Postgres) Batches(ctx context.Context, q BatchQuery) ([]model.BatchSummary, error) {
	query := `SELECT batch_id::text, MIN(timestamp) AS run_time, COUNT(*),
		COUNT(DISTINCT brand_url), COUNT(error_message)
		FROM audit_logs WHERE ($1::timestamptz IS NULL OR timestamp >= $1)
		GROUP BY batch_id
		ORDER BY run_time DESC, batch_id ASC
		LIMIT $2`
	var since interface{}
	if !q.Since.IsZero() {
		since = q.Since.UTC()
	}

	rows, err := p.pool.Query(ctx, query, since, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BatchSummary
	for rows.Next() {
		var b model.BatchSummary
		var probes, brands, errs int64
		if err := rows.Scan(&b.BatchID, &b.RunTime, &probes, &brands, &errs); err != nil {
			return nil, err
		}
		b.RunTime = b.RunTime.UTC()
		b.ProbeCount, b.BrandsCount, b.ErrorCount = int(probes), int(brands), int(errs)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) query(ctx context.Context, query string, args ...interface{}) ([]model.AuditLogEntry, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditLogEntry
	for rows.Next() {
		var e model.AuditLogEntry
		var id int32
		var headersJSON string
		if err := rows.Scan(&id, &e.BatchID, &e.RequestID, &e.BrandURL, &e.Region,
			&e.Timestamp, &e.Status, &e.TTFB, &headersJSON, &e.ErrorMessage); err != nil {
			return nil, err
		}
		e.ID = int64(id)
		e.Timestamp = e.Timestamp.UTC()
		if e.Headers, err = decodeHeaders([]byte(headersJSON)); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close shuts the pool down.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
