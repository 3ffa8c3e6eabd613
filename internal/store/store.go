package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edgeaudit/internal/model"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// RowQuery selects audit rows for analytics.
type RowQuery struct {
	Since     time.Time // inclusive lower bound on timestamp; zero means no bound
	BrandURLs []string  // empty means all brands
}

// BatchQuery selects run summaries.
type BatchQuery struct {
	Since time.Time // rows before Since are ignored; zero means no bound
	Limit int       // newest runs to return; must be positive
}

// Writer is the insert side of the persistence gateway.
type Writer interface {
	// Insert stores rows in one transaction and returns the committed count.
	Insert(ctx context.Context, rows []model.AuditLogEntry) (int, error)
}

// Reader is the read-only side used by analytics.
type Reader interface {
	Rows(ctx context.Context, q RowQuery) ([]model.AuditLogEntry, error)
	Recent(ctx context.Context, limit int) ([]model.AuditLogEntry, error)
	// Batches summarises rows per batch_id, newest run first.
	Batches(ctx context.Context, q BatchQuery) ([]model.BatchSummary, error)
}

// Store is a full audit_logs backend.
type Store interface {
	Writer
	Reader
	Close() error
}

// Open connects to the configured backend and bootstraps the schema.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite3", "sqlite", "":
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "pgx":
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

func encodeHeaders(h model.Headers) ([]byte, error) {
	if h == nil {
		h = model.Headers{}
	}
	return json.Marshal(h)
}

func decodeHeaders(raw []byte) (model.Headers, error) {
	h := model.Headers{}
	if len(raw) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode headers: %w", err)
	}
	return h, nil
}
