package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles check sessions per model, so a batch does not burst
// past the provider's request quota for any one model
type Limiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	perModel map[string]*rate.Limiter
}

// NewLimiter allows sessionsPerSecond session starts per model.
// A non-positive rate disables limiting.
func NewLimiter(sessionsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if sessionsPerSecond > 0 {
		limit = rate.Limit(sessionsPerSecond)
	}
	return &Limiter{
		limit:    limit,
		burst:    burst,
		perModel: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a session for modelID may start or ctx is done
func (l *Limiter) Wait(ctx context.Context, modelID string) error {
	return l.forModel(modelID).Wait(ctx)
}

// allow reports whether a session for modelID may start now
func (l *Limiter) allow(modelID string) bool {
	return l.forModel(modelID).Allow()
}

func (l *Limiter) forModel(modelID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.perModel[modelID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.perModel[modelID] = lim
	}
	return lim
}
