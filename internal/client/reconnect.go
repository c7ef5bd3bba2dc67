package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 60 * time.Second
	jitter     = 0.25
)

// Reconnector implements exponential backoff with jitter.
type Reconnector struct {
	b *backoff.ExponentialBackOff
}

// NewReconnector creates a Reconnector with the default bounds.
func NewReconnector() *Reconnector {
	return newReconnector(minBackoff, maxBackoff)
}

func newReconnector(min, max time.Duration) *Reconnector {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min
	b.MaxInterval = max
	b.RandomizationFactor = jitter
	b.Multiplier = 2
	b.MaxElapsedTime = 0 // retry forever
	b.Reset()
	return &Reconnector{b: b}
}

// Wait blocks for the next backoff duration and returns false if ctx ends
// first.
func (r *Reconnector) Wait(ctx context.Context) bool {
	t := time.NewTimer(r.nextDelay())
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Reset resets the backoff (call after a successful connection).
func (r *Reconnector) Reset() {
	r.b.Reset()
}

func (r *Reconnector) nextDelay() time.Duration {
	d := r.b.NextBackOff()
	if d == backoff.Stop {
		d = r.b.MaxInterval
	}
	return d
}
