package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"edgeaudit/internal/model"
)

// Metric is the value computed per trend bucket.
type Metric string

const (
	MetricTTFB       Metric = "ttfb"
	MetricErrorRate  Metric = "error_rate"
	MetricProbeCount Metric = "probe_count"
)

// TrendQuery configures TrendSeries. Bucket and Metric are optional.
type TrendQuery struct {
	Window Window
	Bucket Bucket
	Metric Metric
}

// TrendPoint is one non-empty bucket. Value is nil when undefined.
type TrendPoint struct {
	BucketStart time.Time `json:"bucket_start"`
	Value       *float64  `json:"value"`
	ProbeCount  int       `json:"probe_count"`
}

// TrendSeries buckets the window in ascending time order. Buckets without
// rows are not emitted.
func (a *Aggregator) TrendSeries(ctx context.Context, q TrendQuery) ([]TrendPoint, error) {
	if q.Window == "" {
		q.Window = DefaultWindow
	}
	bucket := q.Bucket
	if bucket == "" {
		bucket = q.Window.DefaultBucket()
	}
	if bucket != BucketHour && bucket != BucketDay {
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
	metric := q.Metric
	if metric == "" {
		metric = MetricTTFB
	}
	if metric != MetricTTFB && metric != MetricErrorRate && metric != MetricProbeCount {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	rows, err := a.windowRows(ctx, q.Window, nil)
	if err != nil {
		return nil, err
	}

	groups := groupRows(rows, func(e model.AuditLogEntry) string {
		return bucket.Truncate(e.Timestamp).Format(time.RFC3339)
	})

	out := make([]TrendPoint, 0, len(groups))
	for _, g := range groups {
		start, err := time.Parse(time.RFC3339, g.key)
		if err != nil {
			return nil, err
		}
		out = append(out, TrendPoint{
			BucketStart: start,
			Value:       trendValue(g, metric),
			ProbeCount:  g.total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BucketStart.Before(out[j].BucketStart)
	})
	return out, nil
}

func trendValue(g *groupStats, metric Metric) *float64 {
	var v float64
	switch metric {
	case MetricErrorRate:
		if g.total == 0 {
			return nil
		}
		v = float64(g.errors) / float64(g.total)
	case MetricProbeCount:
		v = float64(g.total)
	default:
		v = float64(g.avgTTFB())
	}
	return &v
}
