// Package config loads runtime configuration for the cookquest CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with COOKQUEST_ (see parseEnv), after
//     loading an optional dotenv file given with -e or -env.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://api.cookquest.app",
//	  "timeout": "30s",
//	  "max_attempts": 3,
//	  "retry_delay": "1s",
//	  "cache_ttl": "5m",
//	  "xp_cooldown": "3s",
//	  "health_check_interval": "3s",
//	  "data_dir": "/home/me/.config/cookquest",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "metrics_addr": "127.0.0.1:9464"
//	}
//
// # Environment
//
// COOKQUEST_BASE_URL, COOKQUEST_TIMEOUT, COOKQUEST_MAX_ATTEMPTS,
// COOKQUEST_RETRY_DELAY, COOKQUEST_CACHE_TTL, COOKQUEST_XP_COOLDOWN,
// COOKQUEST_HEALTH_CHECK_INTERVAL, COOKQUEST_DATA_DIR,
// COOKQUEST_DEVICE_SECRET, COOKQUEST_LOG_LEVEL, COOKQUEST_LOG_FORMAT,
// COOKQUEST_METRICS_ADDR, COOKQUEST_REFRESH_PATH.
//
// The device secret has no flag.
package config
