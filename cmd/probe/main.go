package main

import (
	"log"
	"net/http"
	"os"

	"edgeaudit/internal/api"
	"edgeaudit/internal/api/handler"
	"edgeaudit/internal/config"
	"edgeaudit/internal/probe"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalf("❌ Failed to set up logging: %v", err)
	}
	if cfg.CronSecret == "" {
		log.Printf("⚠️  CRON_SECRET is not set, probes will answer 500")
	}

	probe.RegisterMetrics(prometheus.DefaultRegisterer)

	h := &handler.Handler{
		Executor: probe.NewExecutor(),
		Auth:     handler.Auth{Secret: cfg.CronSecret},
		Regions:  cfg.Targets.Regions,
	}
	r := api.NewProbeServer(h, cfg.ProbeRegion)

	addr := ":" + cfg.Port
	region := cfg.ProbeRegion
	if region == "" {
		region = "any"
	}
	log.Printf("🚀 Probe worker for region %s listening on %s", region, addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Printf("❌ Probe worker stopped: %v", err)
		os.Exit(1)
	}
}
