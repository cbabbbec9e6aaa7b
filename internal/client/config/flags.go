package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     backend base URL
//	-t duration   per-attempt timeout
//	-r int        max attempts per call
//	-d string     data directory
//	-l string     log level
//	-m string     metrics listen address
//	-i int        online check interval in seconds
//
// Only the flags above are taken from os.Args (see flagx.FilterArgs), so
// other layers can own theirs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-d", "-l", "-m", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "backend base URL")
	fs.DurationVar(&cfg.Timeout, "t", cfg.Timeout, "per-attempt request timeout")
	fs.IntVar(&cfg.MaxAttempts, "r", cfg.MaxAttempts, "max attempts per request")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory for local state")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "address to serve /metrics on")
	onlineCheckInterval := fs.Int("i", int(cfg.HealthCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.HealthCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
}
