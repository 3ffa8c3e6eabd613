package analytics

import (
	"context"
	"time"

	"edgeaudit/internal/model"
	"edgeaudit/internal/store"
)

// DefaultRunLimit caps RunHistory when no limit is given.
const DefaultRunLimit = 20

// RunHistoryQuery filters RunHistory. A nil Since means all rows.
type RunHistoryQuery struct {
	Limit int
	Since *time.Time
}

// RunHistory summarises runs by batch_id, newest run first. Grouping and the
// limit are applied by the store.
func (a *Aggregator) RunHistory(ctx context.Context, q RunHistoryQuery) ([]model.BatchSummary, error) {
	bq := store.BatchQuery{Limit: q.Limit}
	if bq.Limit <= 0 {
		bq.Limit = DefaultRunLimit
	}
	if q.Since != nil {
		bq.Since = *q.Since
	}
	runs, err := a.rows.Batches(ctx, bq)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []model.BatchSummary{}
	}
	return runs, nil
}

// LatestRun returns the newest run that started within the given duration,
// or nil when there is none. within defaults to two hours.
func (a *Aggregator) LatestRun(ctx context.Context, within time.Duration) (*model.BatchSummary, error) {
	if within <= 0 {
		within = 2 * time.Hour
	}
	since := a.now().Add(-within)
	runs, err := a.RunHistory(ctx, RunHistoryQuery{Limit: 1, Since: &since})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
