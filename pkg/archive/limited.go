package archive

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited wraps a Store with a token bucket. Captures over budget are
// dropped with ErrRateLimited rather than queued.
type Limited struct {
	store   Store
	limiter *rate.Limiter
}

// NewLimited allows perSecond captures per second with the given burst.
// A non-positive perSecond disables limiting.
func NewLimited(store Store, perSecond float64, burst int) *Limited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{store: store, limiter: rate.NewLimiter(limit, burst)}
}

// Put forwards c to the wrapped Store if a token is available.
func (l *Limited) Put(ctx context.Context, c Capture) (string, error) {
	if !l.limiter.Allow() {
		return "", ErrRateLimited
	}
	return l.store.Put(ctx, c)
}
