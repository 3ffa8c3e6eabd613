package audit

import (
	"context"
	"fmt"
	"sync"

	"edgeaudit/internal/model"

	"github.com/google/uuid"
)

// DefaultRegions are the vantage points every brand is probed from.
var DefaultRegions = []string{"iad1", "lhr1", "sfo1", "fra1", "syd1"}

// Prober runs one probe of url from region. An error means the probe
// capability itself could not be reached.
type Prober interface {
	Probe(ctx context.Context, url, region string) (model.ProbeResult, error)
}

// Auditor fans a brand out across all regions.
type Auditor struct {
	Prober  Prober
	Regions []string
	newID   func() string
}

// NewAuditor returns an Auditor probing from regions (DefaultRegions when empty).
func NewAuditor(p Prober, regions []string) *Auditor {
	if len(regions) == 0 {
		regions = DefaultRegions
	}
	return &Auditor{
		Prober:  p,
		Regions: regions,
		newID:   func() string { return uuid.New().String() },
	}
}

// AuditBrand probes brandURL from every region concurrently. The result always
// holds exactly one entry per region, in region order, all sharing one request_id.
func (a *Auditor) AuditBrand(ctx context.Context, brandURL, batchID string) []model.AuditLogEntry {
	requestID := a.newID()
	entries := make([]model.AuditLogEntry, len(a.Regions))

	var wg sync.WaitGroup
	for i, region := range a.Regions {
		wg.Add(1)
		go func(i int, region string) {
			defer wg.Done()
			result := a.probeRegion(ctx, brandURL, region)
			entries[i] = model.NewAuditLogEntry(batchID, requestID, brandURL, result)
		}(i, region)
	}
	wg.Wait()

	return entries
}

// probeRegion isolates one region: errors and panics become a failed result.
func (a *Auditor) probeRegion(ctx context.Context, brandURL, region string) (result model.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = degraded(region, fmt.Sprintf("probe panicked: %v", r))
		}
	}()

	res, err := a.Prober.Probe(ctx, brandURL, region)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Probe failed"
		}
		return degraded(region, msg)
	}
	if res.Region == "" {
		res.Region = region
	}
	if res.Headers == nil {
		res.Headers = model.Headers{}
	}
	return res
}

func degraded(region, msg string) model.ProbeResult {
	return model.ProbeResult{
		Region:  region,
		TTFB:    0,
		Status:  0,
		Headers: model.Headers{},
		Error:   msg,
	}
}
