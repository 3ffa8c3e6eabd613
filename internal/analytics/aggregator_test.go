package analytics

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"edgeaudit/internal/model"
	"edgeaudit/internal/store"
)

// memReader serves rows from memory, applying the same filters as the stores.
type memReader struct {
	rows         []model.AuditLogEntry
	err          error
	batchQueries []store.BatchQuery
}

func (m *memReader) Rows(ctx context.Context, q store.RowQuery) ([]model.AuditLogEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	brands := map[string]bool{}
	for _, b := range q.BrandURLs {
		brands[b] = true
	}
	var out []model.AuditLogEntry
	for _, r := range m.rows {
		if !q.Since.IsZero() && r.Timestamp.Before(q.Since) {
			continue
		}
		if len(brands) > 0 && !brands[r.BrandURL] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memReader) Recent(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	var out []model.AuditLogEntry
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

// Batches groups the filtered rows the way the stores' GROUP BY does.
func (m *memReader) Batches(ctx context.Context, q store.BatchQuery) ([]model.BatchSummary, error) {
	rows, err := m.Rows(ctx, store.RowQuery{Since: q.Since})
	if err != nil {
		return nil, err
	}
	m.batchQueries = append(m.batchQueries, q)

	index := map[string]int{}
	brands := map[string]map[string]bool{}
	var out []model.BatchSummary
	for _, r := range rows {
		i, ok := index[r.BatchID]
		if !ok {
			i = len(out)
			index[r.BatchID] = i
			brands[r.BatchID] = map[string]bool{}
			out = append(out, model.BatchSummary{BatchID: r.BatchID, RunTime: r.Timestamp})
		}
		if r.Timestamp.Before(out[i].RunTime) {
			out[i].RunTime = r.Timestamp
		}
		out[i].ProbeCount++
		if r.HasError() {
			out[i].ErrorCount++
		}
		brands[r.BatchID][r.BrandURL] = true
		out[i].BrandsCount = len(brands[r.BatchID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RunTime.Equal(out[j].RunTime) {
			return out[i].RunTime.After(out[j].RunTime)
		}
		return out[i].BatchID < out[j].BatchID
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

var testNow = time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)

func newTestAggregator(rows ...model.AuditLogEntry) *Aggregator {
	a := NewAggregator(&memReader{rows: rows})
	a.now = func() time.Time { return testNow }
	return a
}

type rowOpt func(*model.AuditLogEntry)

func at(t time.Time) rowOpt { return func(e *model.AuditLogEntry) { e.Timestamp = t } }

func batch(id string) rowOpt { return func(e *model.AuditLogEntry) { e.BatchID = id } }

func failed(msg string) rowOpt {
	return func(e *model.AuditLogEntry) {
		e.ErrorMessage = &msg
		e.Status = 0
		e.TTFB = 0
	}
}

func hdr(name model.HeaderName, v string) rowOpt {
	return func(e *model.AuditLogEntry) { e.Headers[name] = v }
}

func row(brand, region string, ttfb int, opts ...rowOpt) model.AuditLogEntry {
	e := model.AuditLogEntry{
		BatchID:   "b1",
		RequestID: "r-" + brand,
		BrandURL:  brand,
		Region:    region,
		Timestamp: testNow.Add(-time.Minute),
		Status:    200,
		TTFB:      ttfb,
		Headers:   model.Headers{},
	}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func TestRegionalMetrics(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 100),
		row("https://apple.com", "iad1", 200),
		row("https://nike.com", "iad1", 0, failed("Timeout after 6000ms")),
		row("https://nike.com", "syd1", 50),
		row("https://nike.com", "lhr1", 0, failed("boom")),
		row("https://nike.com", "fra1", 999, at(testNow.Add(-48*time.Hour))),
	)

	got, err := a.RegionalMetrics(context.Background(), RegionQuery{Window: Window24h})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d regions: %+v", len(got), got)
	}
	// lhr1 has only errors so averages 0 and sorts first
	want := []RegionMetric{
		{Region: "lhr1", AvgTTFB: 0, P50TTFB: 0, P95TTFB: 0, ProbeCount: 1, ErrorCount: 1},
		{Region: "syd1", AvgTTFB: 50, P50TTFB: 50, P95TTFB: 50, ProbeCount: 1, ErrorCount: 0},
		{Region: "iad1", AvgTTFB: 150, P50TTFB: 100, P95TTFB: 200, ProbeCount: 3, ErrorCount: 1},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("region %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRegionalMetrics_BrandFilter(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 100),
		row("https://apple.com", "iad1", 300),
	)
	got, err := a.RegionalMetrics(context.Background(), RegionQuery{BrandURL: "https://apple.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].AvgTTFB != 300 || got[0].ProbeCount != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestRegionalMetrics_UnknownWindow(t *testing.T) {
	_, err := newTestAggregator().RegionalMetrics(context.Background(), RegionQuery{Window: "2d"})
	if !errors.Is(err, ErrUnknownWindow) {
		t.Errorf("err = %v, want ErrUnknownWindow", err)
	}
}

func TestRegionalMetrics_ReaderError(t *testing.T) {
	a := NewAggregator(&memReader{err: errors.New("db down")})
	if _, err := a.RegionalMetrics(context.Background(), RegionQuery{}); err == nil {
		t.Error("expected error")
	}
}

func TestCacheHitRates(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 10, hdr(model.HeaderCFCacheStatus, "HIT")),
		row("https://apple.com", "iad1", 10, hdr(model.HeaderCFCacheStatus, "MISS")),
		row("https://nike.com", "iad1", 0, failed("x")),
		row("https://nike.com", "syd1", 10, hdr(model.HeaderVercelCache, "HIT")),
		row("https://apple.com", "syd1", 10, hdr(model.HeaderXCache, "Hit from cloudfront")),
	)

	byRegion, err := a.CacheHitRates(context.Background(), CacheHitQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(byRegion) != 2 {
		t.Fatalf("got %+v", byRegion)
	}
	// error rows are excluded from the denominator
	if byRegion[0].GroupKey != "iad1" || byRegion[0].TotalProbes != 2 || byRegion[0].HitCount != 1 || byRegion[0].HitRate != 0.5 {
		t.Errorf("iad1 = %+v", byRegion[0])
	}
	if byRegion[1].GroupKey != "syd1" || byRegion[1].HitRate != 1 {
		t.Errorf("syd1 = %+v", byRegion[1])
	}

	byBrand, err := a.CacheHitRates(context.Background(), CacheHitQuery{GroupBy: GroupByBrand})
	if err != nil {
		t.Fatal(err)
	}
	if len(byBrand) != 2 || byBrand[0].GroupKey != "https://apple.com" || byBrand[1].GroupKey != "https://nike.com" {
		t.Errorf("by brand = %+v", byBrand)
	}
}

func TestBrandSummaries(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 300, hdr(model.HeaderCFCacheStatus, "HIT")),
		row("https://nike.com", "syd1", 100),
		row("https://nike.com", "lhr1", 0, failed("x")),
		row("https://apple.com", "iad1", 50, hdr(model.HeaderCFCacheStatus, "REVALIDATED")),
		row("https://amazon.com", "iad1", 10),
	)

	got, err := a.BrandSummaries(context.Background(), BrandQuery{BrandURLs: []string{"https://nike.com", "https://apple.com"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].BrandURL != "https://apple.com" || got[0].AvgTTFB != 50 || got[0].CacheHitRate != 1 {
		t.Errorf("apple = %+v", got[0])
	}
	nike := got[1]
	if nike.AvgTTFB != 200 || nike.ProbeCount != 3 || nike.ErrorCount != 1 || nike.CacheHitRate != 0.5 {
		t.Errorf("nike = %+v", nike)
	}
}

func TestRecent(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 1),
		row("https://nike.com", "iad1", 2),
	)
	got, err := a.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].TTFB != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestWindowRows(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 1),
		row("https://nike.com", "iad1", 2, at(testNow.Add(-2*time.Hour))),
	)
	got, err := a.WindowRows(context.Background(), Window1h)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TTFB != 1 {
		t.Errorf("got %+v", got)
	}
}
