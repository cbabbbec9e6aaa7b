package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/config"
	"github.com/dmitrijs2005/cookquest/internal/client/services"
	"github.com/dmitrijs2005/cookquest/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	services *services.Services
	logger   logging.Logger
	registry *prometheus.Registry
	closers  []func() error

	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	mode     Mode
	loggedIn bool
	userName string
}

func newApp(cfg *config.Config, svc *services.Services, logger logging.Logger) *App {
	return &App{
		config:   cfg,
		services: svc,
		logger:   logging.Safe(logger),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Mode returns the last connectivity state seen by the watcher.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggedIn
}

func (a *App) setSession(loggedIn bool, userName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loggedIn = loggedIn
	a.userName = userName
}

// Run starts the optional metrics endpoint and the REPL. It returns when the
// user exits; local resources are closed afterwards.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	if a.config.MetricsAddr != "" && a.registry != nil {
		go a.serveMetrics(ctx, a.config.MetricsAddr)
	}
	a.Root(ctx)
}

// Close releases the database and other resources in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info(ctx, "serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error(ctx, "metrics server stopped", "error", err)
	}
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// mode between online and offline. It blocks until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.services.Auth.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
