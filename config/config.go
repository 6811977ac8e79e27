// Package config holds the provider list for batch report fetching. A
// config file enumerates SUSHI endpoints with their credentials, so monthly
// harvesting runs do not need one invocation per vendor.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/segmentio/encoding/json"
)

// Provider is one SUSHI endpoint with the credentials it expects.
type Provider struct {
	// Name identifies the provider; used for output file names.
	Name string `json:"name"`
	// URL of the service: SOAP endpoint for release 4, REST base URL for
	// release 5.
	URL string `json:"url"`
	// Report code to request, e.g. "JR1" or "TR_J1".
	Report string `json:"report"`
	// Release is the COUNTER release, 4 or 5.
	Release int `json:"release"`

	RequestorID    string `json:"requestor_id,omitempty"`
	RequestorName  string `json:"requestor_name,omitempty"`
	RequestorEmail string `json:"requestor_email,omitempty"`
	CustomerID     string `json:"customer_id,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`

	// Insecure skips TLS certificate verification for this provider.
	Insecure bool `json:"insecure,omitempty"`
}

// Config for report harvesting runs.
type Config struct {
	// OutputDir receives one report file per provider.
	OutputDir string `json:"output_dir,omitempty"`
	// MaxRetries bounds the queued report retry loop per provider; zero
	// means retry until the report arrives.
	MaxRetries int `json:"max_retries,omitempty"`
	// RetryDelay between queued report retries, e.g. "60s".
	RetryDelay string     `json:"retry_delay,omitempty"`
	Providers  []Provider `json:"providers"`
}

// Delay returns the configured retry delay, or zero when unset or
// unparseable, leaving the client default in place.
func (c *Config) Delay() time.Duration {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return 0
	}
	return d
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(c.Providers) == 0 {
		return nil, fmt.Errorf("config: no providers in %s", path)
	}
	for i, p := range c.Providers {
		if p.Name == "" {
			return nil, fmt.Errorf("config: provider %d has no name", i)
		}
		if p.URL == "" {
			return nil, fmt.Errorf("config: provider %s has no url", p.Name)
		}
		if p.Release != 4 && p.Release != 5 {
			return nil, fmt.Errorf("config: provider %s has unsupported release %d", p.Name, p.Release)
		}
	}
	return &c, nil
}
