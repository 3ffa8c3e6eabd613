package config

import (
	"os"
	"strconv"
)

// Config holds process configuration loaded from environment variables.
type Config struct {
	Port            string
	BaseURL         string
	CronSecret      string
	SchedulerHeader string
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	BrandsFile      string
	SingleBrandURL  string
	ProbeMode       string
	ProbeRegion     string
	LogFile         string
	OutputDir       string

	Targets Targets
}

// NewFromEnv reads environment variables, applies defaults and loads the
// brand file when BRANDS_FILE is set.
func NewFromEnv() (*Config, error) {
	c := &Config{}
	c.Port = getenv("PORT", "8080")

	// BASE_URL is where this deployment's own probe endpoints are reachable
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	} else {
		c.BaseURL = "http://localhost:" + c.Port
	}

	c.CronSecret = os.Getenv("CRON_SECRET")
	c.SchedulerHeader = getenv("SCHEDULER_HEADER", "X-Vercel-Cron")
	c.DBDriver = getenv("DB_DRIVER", "sqlite3")
	c.DBPath = getenv("DB_PATH", "edgeaudit.db")
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.BrandsFile = os.Getenv("BRANDS_FILE")
	c.ProbeMode = getenv("PROBE_MODE", "local")
	c.ProbeRegion = os.Getenv("PROBE_REGION")
	c.LogFile = os.Getenv("LOG_FILE")
	c.OutputDir = getenv("OUTPUT_DIR", "outputs")

	targets := DefaultTargets()
	if c.BrandsFile != "" {
		t, err := LoadTargets(c.BrandsFile)
		if err != nil {
			return nil, err
		}
		targets = t
	}
	if n := getenvInt("BATCH_SIZE", 0); n > 0 {
		targets.BatchSize = n
	}
	c.Targets = targets

	c.SingleBrandURL = getenv("SINGLE_BRAND_URL", targets.SingleBrand)
	return c, nil
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" || c.DBDriver == "pgx" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
