package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with the API group name it throttles
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a new rate limiter.
// perSecond is the number of requests allowed per second; zero or less disables limiting.
func NewLimiter(name string, perSecond int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 0),
			name:    name,
		}
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		name:    name,
	}
}

// Wait blocks until a token is available or context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}

// Unlimited reports whether the limiter lets every request through
func (l *Limiter) Unlimited() bool {
	return l.limiter.Limit() == rate.Inf
}

// MultiLimiter keeps one limiter per broker API group
type MultiLimiter struct {
	limiters map[string]*Limiter
	mu       sync.RWMutex
}

// NewMultiLimiter creates a new multi-limiter
func NewMultiLimiter() *MultiLimiter {
	return &MultiLimiter{
		limiters: make(map[string]*Limiter),
	}
}

// Add adds a new limiter
func (m *MultiLimiter) Add(name string, perSecond int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[name] = NewLimiter(name, perSecond)
}

// Get returns a limiter by name
func (m *MultiLimiter) Get(name string) *Limiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limiters[name]
}

// Wait waits on the specified limiter
func (m *MultiLimiter) Wait(ctx context.Context, name string) error {
	limiter := m.Get(name)
	if limiter == nil {
		return nil // No limiter, proceed immediately
	}
	return limiter.Wait(ctx)
}
