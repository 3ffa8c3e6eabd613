package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// SetupLogging configures the standard logger. When LogFile is set, output is
// written to both stdout and that file.
func (c *Config) SetupLogging() error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if c.LogFile == "" {
		log.SetOutput(os.Stdout)
		return nil
	}

	dir := filepath.Dir(c.LogFile)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}
