package analytics

import (
	"strings"

	"edgeaudit/internal/model"
)

// IsCacheHit applies the CDN header heuristic: cf-cache-status HIT or
// REVALIDATED, x-vercel-cache HIT, or x-cache containing "hit" in any case.
func IsCacheHit(h model.Headers) bool {
	if v, ok := h.Get(model.HeaderCFCacheStatus); ok && (v == "HIT" || v == "REVALIDATED") {
		return true
	}
	if v, ok := h.Get(model.HeaderVercelCache); ok && v == "HIT" {
		return true
	}
	if v, ok := h.Get(model.HeaderXCache); ok && strings.Contains(strings.ToUpper(v), "HIT") {
		return true
	}
	return false
}

// hitRate is hits/total, 0 for an empty group.
func hitRate(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
