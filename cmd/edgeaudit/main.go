package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"edgeaudit/docs"
	"edgeaudit/internal/analytics"
	"edgeaudit/internal/api"
	"edgeaudit/internal/api/handler"
	"edgeaudit/internal/audit"
	"edgeaudit/internal/config"
	"edgeaudit/internal/export"
	"edgeaudit/internal/probe"
	"edgeaudit/internal/store"
	"edgeaudit/pkg/router"

	"github.com/prometheus/client_golang/prometheus"
)

const usage = `usage: edgeaudit <command>

commands:
  serve            start the API server (default)
  run              run a full audit once and print the result
  run-brand <url>  audit a single brand once and print the result`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code.
func run(args []string) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	if err := cfg.SetupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	ctx := context.Background()

	switch cmd {
	case "serve":
		return serve(ctx, cfg)
	case "run":
		return runOnce(ctx, cfg, func(o *audit.Orchestrator) interface{} {
			return o.RunFullAudit(ctx)
		})
	case "run-brand":
		brandURL := cfg.SingleBrandURL
		if len(args) > 1 {
			brandURL = args[1]
		}
		if err := config.ValidateBrandURL(brandURL); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 2
		}
		return runOnce(ctx, cfg, func(o *audit.Orchestrator) interface{} {
			return o.RunSingleBrandAudit(ctx, brandURL)
		})
	case "help", "-h", "--help":
		fmt.Println(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		return 2
	}
}

func serve(ctx context.Context, cfg *config.Config) int {
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Printf("❌ Failed to open %s store: %v", cfg.DBDriver, err)
		return 1
	}
	defer st.Close()

	exports := export.NewManager(cfg.OutputDir)
	if err := exports.Outputs().EnsureOutputDirExists(); err != nil {
		log.Printf("❌ Failed to create output dir: %v", err)
		return 1
	}

	registerMetrics()
	executor := probe.NewExecutor()
	h := &handler.Handler{
		Orchestrator:   newOrchestrator(cfg, st, executor),
		Analytics:      analytics.NewAggregator(st),
		Exports:        exports,
		Executor:       executor,
		Auth:           handler.Auth{Secret: cfg.CronSecret, SchedulerHeader: cfg.SchedulerHeader},
		SingleBrandURL: cfg.SingleBrandURL,
		Regions:        cfg.Targets.Regions,
	}

	if cfg.CronSecret == "" {
		log.Printf("⚠️  CRON_SECRET is not set, probe and trigger endpoints will answer 500")
	}
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	r := router.New()
	api.RegisterRoutes(r, h)
	if err := r.Start(":" + cfg.Port); err != nil {
		log.Printf("❌ Server stopped: %v", err)
		return 1
	}
	return 0
}

func runOnce(ctx context.Context, cfg *config.Config, do func(*audit.Orchestrator) interface{}) int {
	st, err := store.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Printf("❌ Failed to open %s store: %v", cfg.DBDriver, err)
		return 1
	}
	defer st.Close()

	registerMetrics()
	result := do(newOrchestrator(cfg, st, probe.NewExecutor()))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Printf("❌ Failed to encode result: %v", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

// newOrchestrator probes in-process in local mode and through the regional
// probe services in remote mode.
func newOrchestrator(cfg *config.Config, st store.Store, executor *probe.Executor) *audit.Orchestrator {
	var prober audit.Prober = probe.NewLocal(executor)
	if cfg.ProbeMode == "remote" {
		prober = probe.NewRemote(cfg.BaseURL, cfg.CronSecret, cfg.Targets.Endpoints)
		log.Printf("🌐 Probing through regional services at %s", cfg.BaseURL)
	}
	auditor := audit.NewAuditor(prober, cfg.Targets.Regions)
	return audit.NewOrchestrator(auditor, st, cfg.Targets.Brands, cfg.Targets.BatchSize)
}

func registerMetrics() {
	probe.RegisterMetrics(prometheus.DefaultRegisterer)
	audit.RegisterMetrics(prometheus.DefaultRegisterer)
}
