package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/services"
)

// Config holds runtime settings for the cookquest CLI.
//
// Fields:
//   - BaseURL: scheme://host[:port] of the REST backend.
//   - RefreshPath: path of the token refresh endpoint.
//   - Timeout, MaxAttempts, RetryDelay: executor policy per logical call.
//   - CacheTTL: freshness window of cached reads.
//   - XPCooldown: minimum gap between identical XP awards.
//   - HealthCheckInterval: how often the CLI probes server reachability.
//   - DataDir: local state directory; empty means the per-user config dir.
//   - DeviceSecret: passphrase for the at-rest key; empty disables encryption.
//   - LogLevel, LogFormat: see logging.New.
//   - MetricsAddr: host:port for the Prometheus endpoint; empty disables it.
type Config struct {
	BaseURL             string
	RefreshPath         string
	Timeout             time.Duration
	MaxAttempts         int
	RetryDelay          time.Duration
	CacheTTL            time.Duration
	XPCooldown          time.Duration
	HealthCheckInterval time.Duration
	DataDir             string
	DeviceSecret        string
	LogLevel            string
	LogFormat           string
	MetricsAddr         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.RefreshPath = client.DefaultRefreshPath
	c.Timeout = client.DefaultTimeout
	c.MaxAttempts = client.DefaultMaxAttempts
	c.RetryDelay = client.DefaultRetryDelay
	c.CacheTTL = services.DefaultCacheTTL
	c.XPCooldown = services.DefaultXPCooldown
	c.HealthCheckInterval = 3 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("base url %q: want http(s)://host", c.BaseURL)
	}

	var errs []error
	if c.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.RetryDelay <= 0 {
		errs = append(errs, errors.New("retry delay must be positive"))
	}
	if c.HealthCheckInterval <= 0 {
		errs = append(errs, errors.New("health check interval must be positive"))
	}
	if c.CacheTTL < 0 || c.XPCooldown < 0 {
		errs = append(errs, errors.New("cache ttl and xp cooldown must not be negative"))
	}
	return errors.Join(errs...)
}

// ExecutorOptions maps the settings onto the request executor.
func (c *Config) ExecutorOptions() client.Options {
	return client.Options{
		BaseURL:     c.BaseURL,
		RefreshPath: c.RefreshPath,
		Timeout:     c.Timeout,
		MaxAttempts: c.MaxAttempts,
		RetryDelay:  c.RetryDelay,
	}
}
