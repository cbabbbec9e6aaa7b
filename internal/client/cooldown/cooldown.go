// Package cooldown throttles repeated client actions such as XP awards.
//
// The gate is a local UX throttle, not a rate limit: it lives in process
// memory, is reset on logout or restart and is not shared between devices.
package cooldown

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrOnCooldown reports that an action was rejected by the gate. It is an
// expected outcome, not a failure.
var ErrOnCooldown = errors.New("action is on cooldown")

// Gate remembers when each action key was last accepted.
type Gate struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewGate() *Gate {
	return NewGateWithClock(time.Now)
}

// NewGateWithClock is NewGate with an injected clock.
func NewGateWithClock(now func() time.Time) *Gate {
	return &Gate{last: make(map[string]time.Time), now: now}
}

// TryAcquire accepts key when at least window has passed since its last
// acceptance. Accepting records the current time before the guarded call
// runs, so a call that later fails still consumes the window.
func (g *Gate) TryAcquire(key string, window time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.last[key]; ok && now.Sub(last) < window {
		return false
	}
	g.last[key] = now
	return true
}

// Remaining reports how long key stays on cooldown; 0 when it is free.
func (g *Gate) Remaining(key string, window time.Duration) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[key]
	if !ok {
		return 0
	}
	if left := window - g.now().Sub(last); left > 0 {
		return left
	}
	return 0
}

// Reset forgets every key.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.last)
}

// Key builds an action key from an action name and its distinguishing parts,
// e.g. Key("add_xp", "cook", 50) == "add_xp:cook:50".
func Key(action string, parts ...any) string {
	var b strings.Builder
	b.WriteString(action)
	for _, p := range parts {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}
