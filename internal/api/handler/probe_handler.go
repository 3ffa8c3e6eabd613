package handler

import (
	"net/http"
	"strings"
)

// Probe runs one probe from the region named in the path.
// @Summary Run a probe
// @Description Issue a HEAD probe against the target URL from this region and return timing, status and cache headers
// @Tags probes
// @Produce json
// @Param region path string true "Region identifier"
// @Param url query string true "Target URL"
// @Security BearerAuth
// @Success 200 {object} model.ProbeResult "Probe result"
// @Failure 400 {object} map[string]interface{} "Missing url parameter"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Unknown region"
// @Failure 500 {object} map[string]interface{} "Secret not configured"
// @Router /probes/{region} [get]
func (h *Handler) Probe(w http.ResponseWriter, r *http.Request) {
	region := regionFromPath(r.URL.Path)
	if region == "" {
		writeError(w, http.StatusBadRequest, "Missing region")
		return
	}
	h.ProbeRegion(region)(w, r)
}

// ProbeRegion serves probes for a region taken from the request, answering
// 404 for regions outside the configured set.
func (h *Handler) ProbeRegion(region string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.knownRegion(region) {
			writeError(w, http.StatusNotFound, "Unknown region")
			return
		}
		h.probeRegion(w, r, region)
	}
}

// ProbeFixedRegion serves probes for a worker pinned to one region.
func (h *Handler) ProbeFixedRegion(region string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.probeRegion(w, r, region)
	}
}

func (h *Handler) probeRegion(w http.ResponseWriter, r *http.Request, region string) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}

	result := h.Executor.Probe(r.Context(), target, region)
	writeJSON(w, http.StatusOK, result)
}

// regionFromPath extracts {region} from /api/probes/{region}.
func regionFromPath(path string) string {
	const prefix = "/api/probes/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	region := strings.Trim(path[len(prefix):], "/")
	if strings.Contains(region, "/") {
		return ""
	}
	return region
}
