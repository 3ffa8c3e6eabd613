package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"edgeaudit/internal/analytics"
	"edgeaudit/internal/audit"
	"edgeaudit/internal/export"
	"edgeaudit/internal/probe"
	"edgeaudit/pkg/router"
)

// Handler carries the dependencies of every HTTP endpoint.
type Handler struct {
	Orchestrator   *audit.Orchestrator
	Analytics      *analytics.Aggregator
	Exports        *export.Manager
	Executor       *probe.Executor
	Auth           Auth
	SingleBrandURL string
	// Regions lists the regions a probe may be requested for. Empty means
	// audit.DefaultRegions.
	Regions []string
}

func (h *Handler) knownRegion(region string) bool {
	regions := h.Regions
	if len(regions) == 0 {
		regions = audit.DefaultRegions
	}
	return slices.Contains(regions, region)
}

// Auth is the shared-secret check in front of the probe and trigger endpoints.
type Auth struct {
	Secret string
	// SchedulerHeader, when non-empty, names a header whose presence marks a
	// request from the trusted scheduler.
	SchedulerHeader string
}

// RequireBearer rejects requests without "Authorization: Bearer <secret>".
// It answers 500 when no secret is configured.
func (a Auth) RequireBearer(next router.HandlerFunc) router.HandlerFunc {
	return a.guard(next, false)
}

// RequireBearerOrScheduler also admits requests carrying the scheduler header.
func (a Auth) RequireBearerOrScheduler(next router.HandlerFunc) router.HandlerFunc {
	return a.guard(next, true)
}

func (a Auth) guard(next router.HandlerFunc, allowScheduler bool) router.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Secret == "" {
			writeError(w, http.StatusInternalServerError, "CRON_SECRET not configured")
			return
		}
		if allowScheduler && a.SchedulerHeader != "" && r.Header.Get(a.SchedulerHeader) != "" {
			next(w, r)
			return
		}
		if !a.validBearer(r.Header.Get("Authorization")) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func (a Auth) validBearer(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.Secret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
