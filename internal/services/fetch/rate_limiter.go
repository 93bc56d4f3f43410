package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"autoscraper/internal/common"
)

// RateLimiter enforces a per-domain request rate so repeated analyst and
// validator fetches against the same site stay polite
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a per-domain rate limiter
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the domain's rate limit permits another request
func (rl *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	domain, err := common.DomainFromURL(rawURL)
	if err != nil {
		// No domain, no rate limiting
		return nil
	}

	rl.mu.Lock()
	limiter, ok := rl.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[domain] = limiter
	}
	rl.mu.Unlock()

	return limiter.Wait(ctx)
}
