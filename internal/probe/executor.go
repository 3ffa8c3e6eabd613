package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"edgeaudit/internal/model"
)

// DefaultTimeout bounds a single probe request.
const DefaultTimeout = 6000 * time.Millisecond

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Executor issues HEAD probes against a target URL.
type Executor struct {
	Timeout time.Duration
	client  *http.Client
}

// NewExecutor returns an Executor using DefaultTimeout.
func NewExecutor() *Executor {
	return NewExecutorWithTimeout(DefaultTimeout)
}

// NewExecutorWithTimeout returns an Executor with a custom per-probe timeout.
func NewExecutorWithTimeout(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		Timeout: timeout,
		client: &http.Client{
			// redirects are measured, not followed
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe runs one HEAD request and never returns an error: every failure is
// folded into a ProbeResult with Status 0 and Error set.
func (e *Executor) Probe(ctx context.Context, target, region string) model.ProbeResult {
	start := time.Now()

	if err := validateTarget(target); err != nil {
		return e.failed(region, start, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return e.failed(region, start, err.Error())
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return e.failed(region, start, fmt.Sprintf("Timeout after %dms", e.Timeout.Milliseconds()))
		}
		return e.failed(region, start, err.Error())
	}
	ttfb := elapsedMillis(start)
	resp.Body.Close()

	result := model.ProbeResult{
		Region:  region,
		TTFB:    ttfb,
		Status:  resp.StatusCode,
		Headers: model.ExtractHeaders(resp.Header),
	}
	observe(result)
	return result
}

func (e *Executor) failed(region string, start time.Time, msg string) model.ProbeResult {
	result := model.ProbeResult{
		Region:  region,
		TTFB:    elapsedMillis(start),
		Status:  0,
		Headers: model.Headers{},
		Error:   msg,
	}
	observe(result)
	return result
}

func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", target)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: missing host", target)
	}
	return nil
}

func elapsedMillis(start time.Time) int {
	return int(math.Round(float64(time.Since(start)) / float64(time.Millisecond)))
}
