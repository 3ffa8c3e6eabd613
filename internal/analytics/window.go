package analytics

import (
	"errors"
	"fmt"
	"time"
)

// Window is a trailing time range ending now.
type Window string

const (
	Window1h  Window = "1h"
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

// DefaultWindow is used when a query leaves the window empty.
const DefaultWindow = Window24h

// ErrUnknownWindow is returned for a window outside 1h, 24h, 7d and 30d.
var ErrUnknownWindow = errors.New("unknown window")

var windowDurations = map[Window]time.Duration{
	Window1h:  time.Hour,
	Window24h: 24 * time.Hour,
	Window7d:  7 * 24 * time.Hour,
	Window30d: 30 * 24 * time.Hour,
}

// ParseWindow validates s; the empty string maps to DefaultWindow.
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return DefaultWindow, nil
	}
	w := Window(s)
	if _, ok := windowDurations[w]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
	return w, nil
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	if d, ok := windowDurations[w]; ok {
		return d
	}
	return windowDurations[DefaultWindow]
}

// Bucket is a trend series granularity.
type Bucket string

const (
	BucketHour Bucket = "hour"
	BucketDay  Bucket = "day"
)

// DefaultBucket is day for the 7d and 30d windows, hour otherwise.
func (w Window) DefaultBucket() Bucket {
	if w == Window7d || w == Window30d {
		return BucketDay
	}
	return BucketHour
}

// Truncate returns the UTC start of the bucket containing t.
func (b Bucket) Truncate(t time.Time) time.Time {
	t = t.UTC()
	if b == BucketDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t.Truncate(time.Hour)
}
