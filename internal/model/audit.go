package model

import "time"

// ProbeResult is the outcome of a single probe from one region.
// Status 0 means the probe failed before any response was received.
type ProbeResult struct {
	Region  string  `json:"region"`
	TTFB    int     `json:"ttfb"`
	Status  int     `json:"status"`
	Headers Headers `json:"headers"`
	Error   string  `json:"error,omitempty"`
}

// Failed reports whether the probe carries an error message.
func (p ProbeResult) Failed() bool {
	return p.Error != ""
}

// AuditLogEntry is one persisted probe row.
type AuditLogEntry struct {
	ID           int64     `json:"id"`
	BatchID      string    `json:"batch_id"`
	RequestID    string    `json:"request_id"`
	BrandURL     string    `json:"brand_url"`
	Region       string    `json:"region"`
	Timestamp    time.Time `json:"timestamp"`
	Status       int       `json:"status"`
	TTFB         int       `json:"ttfb"`
	Headers      Headers   `json:"headers"`
	ErrorMessage *string   `json:"error_message"`
}

// NewAuditLogEntry tags a probe result with its batch, fan-out and brand.
func NewAuditLogEntry(batchID, requestID, brandURL string, p ProbeResult) AuditLogEntry {
	headers := p.Headers
	if headers == nil {
		headers = Headers{}
	}
	e := AuditLogEntry{
		BatchID:   batchID,
		RequestID: requestID,
		BrandURL:  brandURL,
		Region:    p.Region,
		Status:    p.Status,
		TTFB:      p.TTFB,
		Headers:   headers,
	}
	if p.Error != "" {
		msg := p.Error
		e.ErrorMessage = &msg
	}
	return e
}

// HasError reports whether the row was recorded with an error message.
func (e AuditLogEntry) HasError() bool {
	return e.ErrorMessage != nil
}

// RunResult is returned by both orchestration entry points.
type RunResult struct {
	Success       bool     `json:"success"`
	BatchID       string   `json:"batch_id"`
	BrandsAudited int      `json:"brands_audited"`
	RowsInserted  int      `json:"rows_inserted"`
	RowsAttempted int      `json:"rows_attempted"`
	Errors        []string `json:"errors,omitempty"`
}

// BatchSummary describes all rows sharing one batch_id.
type BatchSummary struct {
	BatchID     string    `json:"batch_id"`
	RunTime     time.Time `json:"run_time"`
	ProbeCount  int       `json:"probe_count"`
	BrandsCount int       `json:"brands_count"`
	ErrorCount  int       `json:"error_count"`
}
