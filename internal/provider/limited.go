package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// limited wraps a Client with a per-provider requests-per-second token
// bucket, per spec.md §4.2.
type limited struct {
	Client
	limiter *rate.Limiter
}

// WithRateLimit enforces rps requests per second against calls to Fetch,
// blocking (respecting ctx cancellation) rather than rejecting, since
// provider fan-out already bounds concurrency by provider count.
func WithRateLimit(c Client, rps float64, burst int) Client {
	return &limited{Client: c, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *limited) Fetch(ctx context.Context, word string) (*Fetched, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.Client.Fetch(ctx, word)
}
