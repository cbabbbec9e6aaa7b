// Package metrics records client-side counters: request outcomes, retries,
// token refreshes, cache lookups and cooldown rejections.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives client events. Implementations must be safe for
// concurrent use and must never block the caller.
type Recorder interface {
	// Request counts one finished executor call by method and outcome code
	// ("ok", "timeout", "server", ...).
	Request(method, outcome string)
	// Retry counts a scheduled retry attempt.
	Retry(method string)
	// Refresh counts a token refresh by result.
	Refresh(ok bool)
	// CacheLookup counts a cache read as hit or miss.
	CacheLookup(hit bool)
	// CooldownRejected counts an action turned away by the cooldown gate.
	CooldownRejected(action string)
}

type nop struct{}

// Nop returns a Recorder that drops every event.
func Nop() Recorder { return nop{} }

func (nop) Request(string, string)  {}
func (nop) Retry(string)            {}
func (nop) Refresh(bool)            {}
func (nop) CacheLookup(bool)        {}
func (nop) CooldownRejected(string) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop()
	}
	return r
}

const namespace = "cookquest_client"

// Prometheus is a Recorder backed by prometheus counters.
type Prometheus struct {
	requests  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	cache     *prometheus.CounterVec
	cooldowns *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them on reg. A counter
// already registered under the same name is reused.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Executor calls by HTTP method and outcome.",
		}, []string{"method", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retry attempts scheduled by the executor.",
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes by result.",
		}, []string{"result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache reads by result.",
		}, []string{"result"}),
		cooldowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cooldown_rejections_total",
			Help:      "Actions rejected by the cooldown gate.",
		}, []string{"action"}),
	}

	var err error
	p.requests, err = register(reg, p.requests)
	if err != nil {
		return nil, err
	}
	p.retries, err = register(reg, p.retries)
	if err != nil {
		return nil, err
	}
	p.refreshes, err = register(reg, p.refreshes)
	if err != nil {
		return nil, err
	}
	p.cache, err = register(reg, p.cache)
	if err != nil {
		return nil, err
	}
	p.cooldowns, err = register(reg, p.cooldowns)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (p *Prometheus) Request(method, outcome string) {
	p.requests.WithLabelValues(method, outcome).Inc()
}

func (p *Prometheus) Retry(method string) {
	p.retries.WithLabelValues(method).Inc()
}

func (p *Prometheus) Refresh(ok bool) {
	p.refreshes.WithLabelValues(result(ok, "ok", "failed")).Inc()
}

func (p *Prometheus) CacheLookup(hit bool) {
	p.cache.WithLabelValues(result(hit, "hit", "miss")).Inc()
}

func (p *Prometheus) CooldownRejected(action string) {
	p.cooldowns.WithLabelValues(action).Inc()
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
