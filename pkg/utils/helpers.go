package utils

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses a duration string like "2h", falling back to def.
func ParseDuration(d string, def time.Duration) time.Duration {
	d = strings.TrimSpace(d)
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return def
	}
	return duration
}

// ParseLimit parses a positive integer, falling back to def.
func ParseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
		return n
	}
	return def
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
