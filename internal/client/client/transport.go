package client

import (
	"net"
	"net/http"
	"time"
)

// Transport performs a single HTTP exchange. *http.Client satisfies it; the
// request context carries the attempt timeout and caller cancellation.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(req *http.Request) (*http.Response, error)

func (f TransportFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// NewHTTPTransport returns an *http.Client suited to the executor. It sets
// no overall client timeout: the executor bounds every attempt through the
// request context instead.
func NewHTTPTransport() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}
