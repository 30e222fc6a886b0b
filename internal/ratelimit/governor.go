// Package ratelimit provides a shared request budget for external providers
// using a token bucket. One Governor is created per provider and injected
// into every client, so the limit applies across concurrent pipeline runs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Governor is a token-bucket request budget. Safe for concurrent use.
type Governor struct {
	capacity   float64 // burst capacity
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewGovernor creates a governor allowing requestsPerMinute sustained
// throughput with the given burst capacity. The bucket starts full.
func NewGovernor(requestsPerMinute, burst int) *Governor {
	if burst < 1 {
		burst = 1
	}
	return &Governor{
		capacity:   float64(burst),
		refillRate: float64(requestsPerMinute) / 60.0,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available. It returns whether the request
// may proceed and, when it may not, how long until a token refills.
func (g *Governor) Allow() (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refill(time.Now())

	if g.tokens >= 1.0 {
		g.tokens -= 1.0
		return true, 0
	}

	needed := 1.0 - g.tokens
	wait := time.Duration(needed / g.refillRate * float64(time.Second))
	return false, wait
}

// Wait blocks until a token is available or the context is done.
func (g *Governor) Wait(ctx context.Context) error {
	for {
		ok, wait := g.Allow()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill adds tokens for the elapsed time. Caller holds the mutex.
func (g *Governor) refill(now time.Time) {
	elapsed := now.Sub(g.lastRefill)
	g.lastRefill = now

	g.tokens += elapsed.Seconds() * g.refillRate
	if g.tokens > g.capacity {
		g.tokens = g.capacity
	}
}
