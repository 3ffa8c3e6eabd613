package handler

import (
	"net/http"
	"time"

	"edgeaudit/internal/analytics"
	"edgeaudit/pkg/utils"
)

func parseWindowParam(w http.ResponseWriter, r *http.Request) (analytics.Window, bool) {
	window, err := analytics.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return window, true
}

// GetRegionalMetrics returns latency per region.
// @Summary Regional metrics
// @Description Average and percentile TTFB, probe and error counts per region, fastest first
// @Tags analytics
// @Produce json
// @Param window query string false "1h, 24h, 7d or 30d" default(24h)
// @Param brand query string false "Restrict to one brand URL"
// @Success 200 {object} map[string]interface{} "Regional metrics"
// @Failure 400 {object} map[string]interface{} "Invalid window"
// @Router /v1/analytics/regions [get]
func (h *Handler) GetRegionalMetrics(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindowParam(w, r)
	if !ok {
		return
	}
	metrics, err := h.Analytics.RegionalMetrics(r.Context(), analytics.RegionQuery{
		Window:   window,
		BrandURL: r.URL.Query().Get("brand"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute regional metrics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window":  window,
		"regions": metrics,
		"count":   len(metrics),
	})
}

// GetCacheHitRates returns the cache-hit proxy per region or brand.
// @Summary Cache hit rates
// @Description Cache-hit proxy derived from CDN headers over non-error probes, worst first
// @Tags analytics
// @Produce json
// @Param window query string false "1h, 24h, 7d or 30d" default(24h)
// @Param group_by query string false "region or brand" default(region)
// @Success 200 {object} map[string]interface{} "Cache hit rates"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Router /v1/analytics/cache-hits [get]
func (h *Handler) GetCacheHitRates(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindowParam(w, r)
	if !ok {
		return
	}
	groupBy := analytics.GroupBy(r.URL.Query().Get("group_by"))
	switch groupBy {
	case "":
		groupBy = analytics.GroupByRegion
	case analytics.GroupByRegion, analytics.GroupByBrand:
	default:
		writeError(w, http.StatusBadRequest, "group_by must be region or brand")
		return
	}

	rates, err := h.Analytics.CacheHitRates(r.Context(), analytics.CacheHitQuery{Window: window, GroupBy: groupBy})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute cache hit rates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window":   window,
		"group_by": groupBy,
		"groups":   rates,
		"count":    len(rates),
	})
}

// GetTrends returns a bucketed time series.
// @Summary Trend series
// @Description Hourly or daily buckets of average TTFB, error rate or probe count, oldest first
// @Tags analytics
// @Produce json
// @Param window query string false "1h, 24h, 7d or 30d" default(24h)
// @Param bucket query string false "hour or day"
// @Param metric query string false "ttfb, error_rate or probe_count" default(ttfb)
// @Success 200 {object} map[string]interface{} "Trend points"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Router /v1/analytics/trends [get]
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindowParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	bucket := analytics.Bucket(q.Get("bucket"))
	if bucket != "" && bucket != analytics.BucketHour && bucket != analytics.BucketDay {
		writeError(w, http.StatusBadRequest, "bucket must be hour or day")
		return
	}
	metric := analytics.Metric(q.Get("metric"))
	switch metric {
	case "", analytics.MetricTTFB, analytics.MetricErrorRate, analytics.MetricProbeCount:
	default:
		writeError(w, http.StatusBadRequest, "metric must be ttfb, error_rate or probe_count")
		return
	}

	points, err := h.Analytics.TrendSeries(r.Context(), analytics.TrendQuery{Window: window, Bucket: bucket, Metric: metric})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute trend series")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window": window,
		"points": points,
		"count":  len(points),
	})
}

// GetBrandSummaries returns per-brand overviews.
// @Summary Brand summaries
// @Description Average TTFB, probe and error counts and cache hit rate per brand, fastest first
// @Tags analytics
// @Produce json
// @Param window query string false "1h, 24h, 7d or 30d" default(24h)
// @Param brands query string false "Comma separated brand URLs"
// @Success 200 {object} map[string]interface{} "Brand summaries"
// @Failure 400 {object} map[string]interface{} "Invalid window"
// @Router /v1/analytics/brands [get]
func (h *Handler) GetBrandSummaries(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindowParam(w, r)
	if !ok {
		return
	}
	summaries, err := h.Analytics.BrandSummaries(r.Context(), analytics.BrandQuery{
		Window:    window,
		BrandURLs: utils.SplitList(r.URL.Query().Get("brands")),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute brand summaries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window": window,
		"brands": summaries,
		"count":  len(summaries),
	})
}

// GetRunHistory lists recent audit runs.
// @Summary Run history
// @Description Audit runs grouped by batch id, newest first
// @Tags analytics
// @Produce json
// @Param limit query int false "Maximum runs" default(20)
// @Param since query string false "RFC3339 lower bound"
// @Success 200 {object} map[string]interface{} "Runs"
// @Failure 400 {object} map[string]interface{} "Invalid since"
// @Router /v1/analytics/runs [get]
func (h *Handler) GetRunHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := analytics.RunHistoryQuery{Limit: utils.ParseLimit(q.Get("limit"), analytics.DefaultRunLimit)}
	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		query.Since = &since
	}

	runs, err := h.Analytics.RunHistory(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch run history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
		"limit": query.Limit,
	})
}

// GetLatestRun returns the newest run within a lookback window.
// @Summary Latest run
// @Description Newest audit run that started within the lookback window
// @Tags analytics
// @Produce json
// @Param within query string false "Go duration" default(2h)
// @Success 200 {object} model.BatchSummary "Latest run"
// @Failure 404 {object} map[string]interface{} "No recent run"
// @Router /v1/analytics/runs/latest [get]
func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	within := utils.ParseDuration(r.URL.Query().Get("within"), 2*time.Hour)
	run, err := h.Analytics.LatestRun(r.Context(), within)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch latest run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "No run within "+within.String())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetRecentLogs returns the newest audit rows.
// @Summary Recent audit logs
// @Description Newest audit log rows
// @Tags analytics
// @Produce json
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {object} map[string]interface{} "Audit rows"
// @Router /v1/analytics/logs [get]
func (h *Handler) GetRecentLogs(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseLimit(r.URL.Query().Get("limit"), 50)
	logs, err := h.Analytics.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
		"limit": limit,
	})
}
