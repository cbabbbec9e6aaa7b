package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/client/cache"
	"github.com/dmitrijs2005/cookquest/internal/client/client"
	"github.com/dmitrijs2005/cookquest/internal/client/cooldown"
	"github.com/dmitrijs2005/cookquest/internal/client/securestore"
	"github.com/dmitrijs2005/cookquest/internal/client/tokens"
)

// reply is a scripted response for one route.
type reply struct {
	status int
	body   string
	err    error
}

// fakeClient implements client.Client for service tests. Routes are keyed by
// "METHOD path"; unknown routes answer 404.
type fakeClient struct {
	mu       sync.Mutex
	routes   map[string][]reply
	requests []client.Request

	PingErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{routes: make(map[string][]reply)}
}

// on queues replies for a route. The last reply repeats once the queue is
// drained.
func (f *fakeClient) on(method client.Method, path string, replies ...reply) *fakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[string(method)+" "+path] = replies
	return f
}

func (f *fakeClient) Do(_ context.Context, req client.Request) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	key := string(req.Method) + " " + req.Path
	queue := f.routes[key]
	if len(queue) == 0 {
		return nil, &client.APIError{Status: http.StatusNotFound, Code: client.CodeClient, Message: "no route " + key}
	}
	r := queue[0]
	if len(queue) > 1 {
		f.routes[key] = queue[1:]
	}

	if r.err != nil {
		return nil, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	resp := &client.Response{Status: status, Body: []byte(r.body)}
	if r.body != "" && json.Valid([]byte(r.body)) {
		resp.Data = json.RawMessage(r.body)
	}
	return resp, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.PingErr }

func (f *fakeClient) count(method client.Method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeClient) last() client.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	client *fakeClient
	tokens *tokens.Store
	cache  *cache.Cache
	gate   *cooldown.Gate
	clock  *fakeClock
	svc    *Services
}

func newFixture() *fixture {
	clock := newClock()
	f := &fixture{
		client: newFakeClient(),
		tokens: tokens.NewStore(securestore.NewMemoryStore()),
		cache:  cache.New(cache.NewMemoryBackend(), cache.WithClock(clock.Now)),
		gate:   cooldown.NewGateWithClock(clock.Now),
		clock:  clock,
	}
	f.svc = New(Deps{
		Client:     f.client,
		Tokens:     f.tokens,
		Cache:      f.cache,
		Gate:       f.gate,
		CacheTTL:   time.Minute,
		XPCooldown: 3 * time.Second,
		Now:        clock.Now,
	})
	return f
}
