package api

import (
	"edgeaudit/internal/api/handler"
	"edgeaudit/pkg/router"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	bearer := h.Auth.RequireBearer
	cron := h.Auth.RequireBearerOrScheduler

	r.GET("/healthz", handler.Health)

	// Probe service
	r.GET("/api/probes/*", h.Probe, bearer)

	// Triggers
	r.GET("/api/cron/run-audit", h.RunAudit, cron)
	r.POST("/api/cron/run-audit", h.RunAudit, cron)
	r.GET("/api/audit/single-brand", h.RunSingleBrand, bearer)
	r.POST("/api/audit/single-brand", h.RunSingleBrand, bearer)

	// Analytics, more specific routes first
	r.GET("/api/v1/analytics/regions", h.GetRegionalMetrics)
	r.GET("/api/v1/analytics/cache-hits", h.GetCacheHitRates)
	r.GET("/api/v1/analytics/trends", h.GetTrends)
	r.GET("/api/v1/analytics/brands", h.GetBrandSummaries)
	r.GET("/api/v1/analytics/runs/latest", h.GetLatestRun)
	r.GET("/api/v1/analytics/runs", h.GetRunHistory)
	r.GET("/api/v1/analytics/logs", h.GetRecentLogs)

	// Exports
	r.POST("/api/v1/exports", h.CreateExport)
	r.GET("/api/v1/download/*/*", h.DownloadFile)

	r.Mount("/metrics", promhttp.Handler())
	r.Mount("/swagger/", httpSwagger.WrapHandler)
}
