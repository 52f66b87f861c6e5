package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a politeness delay per domain using token buckets.
type RateLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultDelay time.Duration
}

// NewRateLimiter creates a rate limiter with the specified default delay
// between requests to the same domain.
func NewRateLimiter(defaultDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultDelay: defaultDelay,
	}
}

// Wait blocks until a request to the URL's domain is allowed, or the context
// is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	domain := extractDomain(rawURL)
	if domain == "" {
		return nil // No domain, no rate limiting
	}
	return rl.limiterFor(domain).Wait(ctx)
}

func (rl *RateLimiter) limiterFor(domain string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[domain]
	if !exists {
		if rl.defaultDelay <= 0 {
			limiter = rate.NewLimiter(rate.Inf, 1)
		} else {
			limiter = rate.NewLimiter(rate.Every(rl.defaultDelay), 1)
		}
		rl.limiters[domain] = limiter
	}
	return limiter
}

// extractDomain parses the domain from a URL
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
