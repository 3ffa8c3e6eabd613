package audit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"edgeaudit/internal/model"

	"github.com/google/uuid"
)

// DefaultBatchSize caps how many brands are probed at the same time.
const DefaultBatchSize = 5

// Inserter persists audit rows and reports how many were committed.
type Inserter interface {
	Insert(ctx context.Context, rows []model.AuditLogEntry) (int, error)
}

// Orchestrator runs audits over the configured brand list.
type Orchestrator struct {
	Auditor   *Auditor
	Store     Inserter
	Brands    []string
	BatchSize int
	newID     func() string
}

// NewOrchestrator wires an Orchestrator. A non-positive batchSize falls back
// to DefaultBatchSize.
func NewOrchestrator(a *Auditor, store Inserter, brands []string, batchSize int) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Orchestrator{
		Auditor:   a,
		Store:     store,
		Brands:    brands,
		BatchSize: batchSize,
		newID:     func() string { return uuid.New().String() },
	}
}

// RunFullAudit audits every configured brand under one batch_id.
func (o *Orchestrator) RunFullAudit(ctx context.Context) model.RunResult {
	brands := make([]string, len(o.Brands))
	copy(brands, o.Brands)
	auditRuns.WithLabelValues("full").Inc()
	return o.run(ctx, brands)
}

// RunSingleBrandAudit audits one brand under its own batch_id.
func (o *Orchestrator) RunSingleBrandAudit(ctx context.Context, brandURL string) model.RunResult {
	auditRuns.WithLabelValues("single").Inc()
	return o.run(ctx, []string{brandURL})
}

func (o *Orchestrator) run(ctx context.Context, brands []string) model.RunResult {
	start := time.Now()
	batchID := o.newID()
	batches := Partition(brands, o.BatchSize)

	log.Printf("🚀 Starting audit %s: %d brands, %d regions, %d batches",
		batchID, len(brands), len(o.Auditor.Regions), len(batches))

	result := model.RunResult{
		BatchID:       batchID,
		BrandsAudited: len(brands),
	}

	for i, batch := range batches {
		attempted, inserted, err := o.runBatch(ctx, batchID, batch)
		result.RowsAttempted += attempted
		result.RowsInserted += inserted
		if err != nil {
			msg := fmt.Sprintf("Batch %d failed: %v", i+1, err)
			result.Errors = append(result.Errors, msg)
			batchFailures.Inc()
			log.Printf("❌ Audit %s: %s", batchID, msg)
			continue
		}
		log.Printf("✅ Audit %s: batch %d/%d stored %d rows", batchID, i+1, len(batches), inserted)
	}

	result.Success = len(result.Errors) == 0
	rowsInserted.Add(float64(result.RowsInserted))

	log.Printf("🏁 Audit %s finished in %v: %d/%d rows inserted, %d errors",
		batchID, time.Since(start).Round(time.Millisecond), result.RowsInserted, result.RowsAttempted, len(result.Errors))
	return result
}

// runBatch fans out every brand of the batch concurrently, then inserts the
// rows. Any panic escaping a fan-out or an insert error fails the whole batch.
func (o *Orchestrator) runBatch(ctx context.Context, batchID string, brands []string) (attempted, inserted int, err error) {
	perBrand := make([][]model.AuditLogEntry, len(brands))
	panics := make([]error, len(brands))

	var wg sync.WaitGroup
	for i, brand := range brands {
		wg.Add(1)
		go func(i int, brand string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panics[i] = fmt.Errorf("fan-out for %s panicked: %v", brand, r)
				}
			}()
			perBrand[i] = o.Auditor.AuditBrand(ctx, brand, batchID)
		}(i, brand)
	}
	wg.Wait()

	for _, p := range panics {
		if p != nil {
			return 0, 0, p
		}
	}

	var rows []model.AuditLogEntry
	for _, entries := range perBrand {
		rows = append(rows, entries...)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}

	n, err := o.Store.Insert(ctx, rows)
	if err != nil {
		return len(rows), n, fmt.Errorf("insert %d rows: %w", len(rows), err)
	}
	return len(rows), n, nil
}

// Partition splits brands into consecutive chunks of at most size.
func Partition(brands []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]string
	for i := 0; i < len(brands); i += size {
		end := i + size
		if end > len(brands) {
			end = len(brands)
		}
		out = append(out, brands[i:end])
	}
	return out
}
