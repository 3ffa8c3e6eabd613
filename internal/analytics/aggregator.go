package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"edgeaudit/internal/model"
	"edgeaudit/internal/store"

	"gonum.org/v1/gonum/stat"
)

// Aggregator computes windowed metrics over persisted audit rows.
type Aggregator struct {
	rows store.Reader
	now  func() time.Time
}

// NewAggregator reads rows from r.
func NewAggregator(r store.Reader) *Aggregator {
	return &Aggregator{rows: r, now: time.Now}
}

// RegionMetric is the latency profile of one region.
type RegionMetric struct {
	Region     string `json:"region"`
	AvgTTFB    int    `json:"avg_ttfb"`
	P50TTFB    int    `json:"p50_ttfb"`
	P95TTFB    int    `json:"p95_ttfb"`
	ProbeCount int    `json:"probe_count"`
	ErrorCount int    `json:"error_count"`
}

// CacheHitMetric is the cache-hit proxy for one region or brand.
type CacheHitMetric struct {
	GroupKey    string  `json:"group_key"`
	TotalProbes int     `json:"total_probes"`
	HitCount    int     `json:"hit_count"`
	HitRate     float64 `json:"hit_rate"`
}

// BrandSummary is the per-brand overview.
type BrandSummary struct {
	BrandURL     string  `json:"brand_url"`
	AvgTTFB      int     `json:"avg_ttfb"`
	P95TTFB      int     `json:"p95_ttfb"`
	ProbeCount   int     `json:"probe_count"`
	ErrorCount   int     `json:"error_count"`
	CacheHitRate float64 `json:"cache_hit_rate"`
}

// RegionQuery filters RegionalMetrics.
type RegionQuery struct {
	Window   Window
	BrandURL string
}

// GroupBy selects the cache-hit grouping.
type GroupBy string

const (
	GroupByRegion GroupBy = "region"
	GroupByBrand  GroupBy = "brand"
)

// CacheHitQuery filters CacheHitRates.
type CacheHitQuery struct {
	Window  Window
	GroupBy GroupBy
}

// BrandQuery filters BrandSummaries.
type BrandQuery struct {
	Window    Window
	BrandURLs []string
}

// groupStats accumulates one group of rows. Errored rows count towards the
// totals only.
type groupStats struct {
	key    string
	total  int
	errors int
	hits   int
	ttfbs  []float64
}

func (g *groupStats) add(e model.AuditLogEntry) {
	g.total++
	if e.HasError() {
		g.errors++
		return
	}
	g.ttfbs = append(g.ttfbs, float64(e.TTFB))
	if IsCacheHit(e.Headers) {
		g.hits++
	}
}

func (g *groupStats) avgTTFB() int {
	if len(g.ttfbs) == 0 {
		return 0
	}
	return int(math.Round(stat.Mean(g.ttfbs, nil)))
}

func (g *groupStats) quantile(p float64) int {
	if len(g.ttfbs) == 0 {
		return 0
	}
	sorted := make([]float64, len(g.ttfbs))
	copy(sorted, g.ttfbs)
	sort.Float64s(sorted)
	return int(math.Round(stat.Quantile(p, stat.Empirical, sorted, nil)))
}

func (g *groupStats) hitRate() float64 {
	return hitRate(g.hits, len(g.ttfbs))
}

func groupRows(rows []model.AuditLogEntry, key func(model.AuditLogEntry) string) []*groupStats {
	index := make(map[string]*groupStats)
	var groups []*groupStats
	for _, r := range rows {
		k := key(r)
		g, ok := index[k]
		if !ok {
			g = &groupStats{key: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.add(r)
	}
	return groups
}

func (a *Aggregator) since(w Window) time.Time {
	return a.now().Add(-w.Duration())
}

func (a *Aggregator) windowRows(ctx context.Context, w Window, brands []string) ([]model.AuditLogEntry, error) {
	if w == "" {
		w = DefaultWindow
	}
	if _, err := ParseWindow(string(w)); err != nil {
		return nil, err
	}
	return a.rows.Rows(ctx, store.RowQuery{Since: a.since(w), BrandURLs: brands})
}

// WindowRows returns every row of the window, oldest first.
func (a *Aggregator) WindowRows(ctx context.Context, w Window) ([]model.AuditLogEntry, error) {
	return a.windowRows(ctx, w, nil)
}

// RegionalMetrics groups the window by region, fastest region first.
func (a *Aggregator) RegionalMetrics(ctx context.Context, q RegionQuery) ([]RegionMetric, error) {
	var brands []string
	if q.BrandURL != "" {
		brands = []string{q.BrandURL}
	}
	rows, err := a.windowRows(ctx, q.Window, brands)
	if err != nil {
		return nil, err
	}

	groups := groupRows(rows, func(e model.AuditLogEntry) string { return e.Region })
	out := make([]RegionMetric, 0, len(groups))
	for _, g := range groups {
		out = append(out, RegionMetric{
			Region:     g.key,
			AvgTTFB:    g.avgTTFB(),
			P50TTFB:    g.quantile(0.5),
			P95TTFB:    g.quantile(0.95),
			ProbeCount: g.total,
			ErrorCount: g.errors,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgTTFB != out[j].AvgTTFB {
			return out[i].AvgTTFB < out[j].AvgTTFB
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}

// CacheHitRates computes the hit proxy over non-error rows, worst group first.
func (a *Aggregator) CacheHitRates(ctx context.Context, q CacheHitQuery) ([]CacheHitMetric, error) {
	rows, err := a.windowRows(ctx, q.Window, nil)
	if err != nil {
		return nil, err
	}

	key := func(e model.AuditLogEntry) string { return e.Region }
	if q.GroupBy == GroupByBrand {
		key = func(e model.AuditLogEntry) string { return e.BrandURL }
	}

	var ok []model.AuditLogEntry
	for _, r := range rows {
		if !r.HasError() {
			ok = append(ok, r)
		}
	}

	groups := groupRows(ok, key)
	out := make([]CacheHitMetric, 0, len(groups))
	for _, g := range groups {
		out = append(out, CacheHitMetric{
			GroupKey:    g.key,
			TotalProbes: g.total,
			HitCount:    g.hits,
			HitRate:     g.hitRate(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HitRate != out[j].HitRate {
			return out[i].HitRate < out[j].HitRate
		}
		return out[i].GroupKey < out[j].GroupKey
	})
	return out, nil
}

// BrandSummaries groups the window by brand, fastest brand first.
func (a *Aggregator) BrandSummaries(ctx context.Context, q BrandQuery) ([]BrandSummary, error) {
	rows, err := a.windowRows(ctx, q.Window, q.BrandURLs)
	if err != nil {
		return nil, err
	}

	groups := groupRows(rows, func(e model.AuditLogEntry) string { return e.BrandURL })
	out := make([]BrandSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, BrandSummary{
			BrandURL:     g.key,
			AvgTTFB:      g.avgTTFB(),
			P95TTFB:      g.quantile(0.95),
			ProbeCount:   g.total,
			ErrorCount:   g.errors,
			CacheHitRate: g.hitRate(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgTTFB != out[j].AvgTTFB {
			return out[i].AvgTTFB < out[j].AvgTTFB
		}
		return out[i].BrandURL < out[j].BrandURL
	})
	return out, nil
}

// Recent returns the newest audit rows, 50 by default.
func (a *Aggregator) Recent(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return a.rows.Recent(ctx, limit)
}
