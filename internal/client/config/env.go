package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/flagx"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "COOKQUEST_"

// envConfig mirrors Config for envdecode. Zero values mean "not set".
type envConfig struct {
	BaseURL             string        `env:"COOKQUEST_BASE_URL"`
	RefreshPath         string        `env:"COOKQUEST_REFRESH_PATH"`
	Timeout             time.Duration `env:"COOKQUEST_TIMEOUT"`
	MaxAttempts         int           `env:"COOKQUEST_MAX_ATTEMPTS"`
	RetryDelay          time.Duration `env:"COOKQUEST_RETRY_DELAY"`
	CacheTTL            time.Duration `env:"COOKQUEST_CACHE_TTL"`
	XPCooldown          time.Duration `env:"COOKQUEST_XP_COOLDOWN"`
	HealthCheckInterval time.Duration `env:"COOKQUEST_HEALTH_CHECK_INTERVAL"`
	DataDir             string        `env:"COOKQUEST_DATA_DIR"`
	DeviceSecret        string        `env:"COOKQUEST_DEVICE_SECRET"`
	LogLevel            string        `env:"COOKQUEST_LOG_LEVEL"`
	LogFormat           string        `env:"COOKQUEST_LOG_FORMAT"`
	MetricsAddr         string        `env:"COOKQUEST_METRICS_ADDR"`
}

// parseEnv overlays cfg with COOKQUEST_* variables. A dotenv file given with
// -e or -env is loaded first; variables already present in the process
// environment win over the file. Malformed values panic.
func parseEnv(cfg *Config) {
	if envFile := flagx.EnvFileFlags(); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	var ec envConfig
	if err := envdecode.Decode(&ec); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return
		}
		panic(err)
	}
	ec.apply(cfg)
}

func (ec envConfig) apply(cfg *Config) {
	for dst, src := range map[*string]string{
		&cfg.BaseURL:      ec.BaseURL,
		&cfg.RefreshPath:  ec.RefreshPath,
		&cfg.DataDir:      ec.DataDir,
		&cfg.DeviceSecret: ec.DeviceSecret,
		&cfg.LogLevel:     ec.LogLevel,
		&cfg.LogFormat:    ec.LogFormat,
		&cfg.MetricsAddr:  ec.MetricsAddr,
	} {
		if src != "" {
			*dst = src
		}
	}

	for dst, src := range map[*time.Duration]time.Duration{
		&cfg.Timeout:             ec.Timeout,
		&cfg.RetryDelay:          ec.RetryDelay,
		&cfg.CacheTTL:            ec.CacheTTL,
		&cfg.XPCooldown:          ec.XPCooldown,
		&cfg.HealthCheckInterval: ec.HealthCheckInterval,
	} {
		if src != 0 {
			*dst = src
		}
	}

	if ec.MaxAttempts != 0 {
		cfg.MaxAttempts = ec.MaxAttempts
	}
}
