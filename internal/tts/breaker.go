package tts

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerProvider wraps a Provider with a circuit breaker. Once the
// synthesis endpoint starts failing consistently the breaker opens and the
// remaining rows in a batch fail fast instead of each waiting out a doomed
// network call.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps inner with a circuit breaker tuned for a paced,
// sequential batch: five consecutive failures open the circuit, which
// half-opens again after 30 seconds.
func NewBreakerProvider(inner Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:    inner.Name(),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &BreakerProvider{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Fetch delegates to the wrapped provider through the circuit breaker
func (p *BreakerProvider) Fetch(ctx context.Context, text, lang string) (io.ReadCloser, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.Fetch(ctx, text, lang)
	})
	if err != nil {
		return nil, fmt.Errorf("speech fetch via %s: %w", p.inner.Name(), err)
	}

	return result.(io.ReadCloser), nil
}

// Name returns the provider name
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable checks the wrapped provider
func (p *BreakerProvider) IsAvailable() error {
	return p.inner.IsAvailable()
}
