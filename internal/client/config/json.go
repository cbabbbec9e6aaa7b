package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/flagx"
	"github.com/dmitrijs2005/cookquest/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations use timex.Duration so the file may say "3s" or give integer
// nanoseconds. Absent keys leave the current value untouched.
type JsonConfig struct {
	BaseURL             *string         `json:"base_url"`
	RefreshPath         *string         `json:"refresh_path"`
	Timeout             *timex.Duration `json:"timeout"`
	MaxAttempts         *int            `json:"max_attempts"`
	RetryDelay          *timex.Duration `json:"retry_delay"`
	CacheTTL            *timex.Duration `json:"cache_ttl"`
	XPCooldown          *timex.Duration `json:"xp_cooldown"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	DataDir             *string         `json:"data_dir"`
	DeviceSecret        *string         `json:"device_secret"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	MetricsAddr         *string         `json:"metrics_addr"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Without
// the flag nothing is loaded. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	setString(&cfg.BaseURL, jc.BaseURL)
	setString(&cfg.RefreshPath, jc.RefreshPath)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DeviceSecret, jc.DeviceSecret)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	if jc.MaxAttempts != nil {
		cfg.MaxAttempts = *jc.MaxAttempts
	}

	setDuration(&cfg.Timeout, jc.Timeout)
	setDuration(&cfg.RetryDelay, jc.RetryDelay)
	setDuration(&cfg.CacheTTL, jc.CacheTTL)
	setDuration(&cfg.XPCooldown, jc.XPCooldown)
	setDuration(&cfg.HealthCheckInterval, jc.HealthCheckInterval)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
