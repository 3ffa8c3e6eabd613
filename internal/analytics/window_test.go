package analytics

import (
	"errors"
	"testing"
	"time"

	"edgeaudit/internal/model"
)

func TestParseWindow(t *testing.T) {
	for _, s := range []string{"1h", "24h", "7d", "30d"} {
		if w, err := ParseWindow(s); err != nil || string(w) != s {
			t.Errorf("ParseWindow(%q) = %q, %v", s, w, err)
		}
	}
	if w, err := ParseWindow(""); err != nil || w != DefaultWindow {
		t.Errorf("ParseWindow(\"\") = %q, %v", w, err)
	}
	if _, err := ParseWindow("90d"); !errors.Is(err, ErrUnknownWindow) {
		t.Errorf("err = %v", err)
	}
}

func TestBucketTruncate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2026, 3, 10, 2, 45, 12, 0, loc) // 2026-03-09 21:45:12 UTC

	if got := BucketHour.Truncate(ts); !got.Equal(time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC)) {
		t.Errorf("hour = %v", got)
	}
	if got := BucketDay.Truncate(ts); !got.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day = %v", got)
	}
	if Window24h.DefaultBucket() != BucketHour || Window30d.DefaultBucket() != BucketDay {
		t.Error("wrong default buckets")
	}
}

func TestIsCacheHit(t *testing.T) {
	tests := []struct {
		h    model.Headers
		want bool
	}{
		{model.Headers{model.HeaderCFCacheStatus: "HIT"}, true},
		{model.Headers{model.HeaderCFCacheStatus: "REVALIDATED"}, true},
		{model.Headers{model.HeaderCFCacheStatus: "MISS"}, false},
		{model.Headers{model.HeaderVercelCache: "HIT"}, true},
		{model.Headers{model.HeaderVercelCache: "STALE"}, false},
		{model.Headers{model.HeaderXCache: "Hit from cloudfront"}, true},
		{model.Headers{model.HeaderXCache: "TCP_MISS"}, false},
		{model.Headers{model.HeaderAge: "300"}, false},
		{model.Headers{}, false},
	}
	for _, tt := range tests {
		if got := IsCacheHit(tt.h); got != tt.want {
			t.Errorf("IsCacheHit(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}
