package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoBrands is returned when a brand file lists no brands.
var ErrNoBrands = errors.New("no brands configured")

// Targets is the monitored brand list plus probe topology.
type Targets struct {
	Brands      []string          `yaml:"brands"`
	SingleBrand string            `yaml:"single_brand"`
	Regions     []string          `yaml:"regions"`
	BatchSize   int               `yaml:"batch_size"`
	Endpoints   map[string]string `yaml:"endpoints,omitempty"` // region -> probe URL override
}

var defaultBrands = []string{
	"https://nike.com",
	"https://apple.com",
	"https://amazon.com",
	"https://google.com",
	"https://microsoft.com",
	"https://facebook.com",
	"https://netflix.com",
	"https://spotify.com",
	"https://adobe.com",
	"https://salesforce.com",
}

var defaultRegions = []string{"iad1", "lhr1", "sfo1", "fra1", "syd1"}

// DefaultTargets is the built-in brand list used without a brand file.
func DefaultTargets() Targets {
	brands := make([]string, len(defaultBrands))
	copy(brands, defaultBrands)
	regions := make([]string, len(defaultRegions))
	copy(regions, defaultRegions)
	return Targets{
		Brands:      brands,
		SingleBrand: brands[0],
		Regions:     regions,
		BatchSize:   5,
	}
}

// LoadTargets reads and validates a YAML brand file.
func LoadTargets(path string) (Targets, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Targets{}, fmt.Errorf("failed to read brand file: %w", err)
	}
	return ParseTargets(content)
}

// ParseTargets parses YAML content, fills defaults and validates every URL.
func ParseTargets(content []byte) (Targets, error) {
	var t Targets
	if err := yaml.Unmarshal(content, &t); err != nil {
		return Targets{}, fmt.Errorf("invalid YAML: %w", err)
	}

	brands, err := normalizeBrands(t.Brands)
	if err != nil {
		return Targets{}, err
	}
	if len(brands) == 0 {
		return Targets{}, ErrNoBrands
	}
	t.Brands = brands

	if t.SingleBrand == "" {
		t.SingleBrand = brands[0]
	} else if err := ValidateBrandURL(t.SingleBrand); err != nil {
		return Targets{}, err
	}
	if len(t.Regions) == 0 {
		t.Regions = append([]string(nil), defaultRegions...)
	}
	for _, r := range t.Regions {
		if strings.TrimSpace(r) == "" {
			return Targets{}, fmt.Errorf("empty region name")
		}
	}
	if t.BatchSize <= 0 {
		t.BatchSize = 5
	}
	for region, ep := range t.Endpoints {
		if err := ValidateBrandURL(ep); err != nil {
			return Targets{}, fmt.Errorf("endpoint for region %s: %w", region, err)
		}
	}
	return t, nil
}

// normalizeBrands trims, validates and de-duplicates brand URLs, keeping order.
func normalizeBrands(in []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, b := range in {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if err := ValidateBrandURL(b); err != nil {
			return nil, err
		}
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out, nil
}

// ValidateBrandURL requires an absolute http or https URL with a host.
func ValidateBrandURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: missing host", s)
	}
	return nil
}
