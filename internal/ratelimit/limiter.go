// Package ratelimit paces outgoing requests with a leaky bucket.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Limiter implements the leaky bucket algorithm for request pacing.
//
// The bucket keeps a virtual "drip" time that advances at a fixed rate.
// Each Reserve returns when the caller may start; callers that arrive while
// the bucket is behind schedule are queued one interval apart, so concurrent
// senders never share a slot.
//
// Up to burst requests may start back to back after an idle period.
//
// Limiter is safe for concurrent use from multiple goroutines.
type Limiter struct {
	clock clock.Clock

	mu          sync.Mutex
	rate        float64   // requests per second
	maxBurst    float64   // accumulated requests allowed while idle
	accumulated float64   // requests that may start now (fractional)
	lastDrip    time.Time // time accumulated was last brought up to date

	granted   atomic.Int64
	totalWait atomic.Int64 // nanoseconds
}

// New returns a limiter allowing rate requests per second with bursts of up
// to burst. A non-positive rate is treated as 1 and a burst below 1 as 1.
// The bucket starts full.
func New(rate float64, burst int, clk clock.Clock) *Limiter {
	if rate <= 0 {
		rate = 1.0
	}
	if burst < 1 {
		burst = 1
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Limiter{
		clock:       clk,
		rate:        rate,
		maxBurst:    float64(burst),
		accumulated: float64(burst),
		lastDrip:    clk.Now(),
	}
}

// Reserve claims the next slot and returns when it starts. The returned time
// is now when the caller may proceed immediately.
func (l *Limiter) Reserve() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.lastDrip) {
		l.accumulated += now.Sub(l.lastDrip).Seconds() * l.rate
		if l.accumulated > l.maxBurst {
			l.accumulated = l.maxBurst
		}
		l.lastDrip = now
	}

	l.granted.Add(1)
	if l.accumulated >= 1.0 {
		l.accumulated -= 1.0
		return now
	}

	deficit := 1.0 - l.accumulated
	l.accumulated = 0
	next := l.lastDrip.Add(time.Duration(deficit / l.rate * float64(time.Second)))

	// lastDrip moves to the slot just handed out so the next caller queues
	// behind it instead of counting the same interval twice.
	l.lastDrip = next
	l.totalWait.Add(int64(next.Sub(now)))
	return next
}

// Wait blocks until the caller's slot starts. It returns ctx.Err() when ctx
// is done first; a context that is already done claims no slot.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wait := l.Reserve().Sub(l.clock.Now())
	if wait <= 0 {
		return nil
	}

	timer := l.clock.Timer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetRate changes the rate. Accumulated requests are dropped so lowering the
// rate does not release a burst.
func (l *Limiter) SetRate(rate float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rate <= 0 {
		rate = 1.0
	}
	l.rate = rate
	l.accumulated = 0
	if now := l.clock.Now(); now.After(l.lastDrip) {
		l.lastDrip = now
	}
}

// Stats is a snapshot of a Limiter.
type Stats struct {
	Rate      float64       `json:"rate"`
	Burst     int           `json:"burst"`
	Granted   int64         `json:"granted"`
	TotalWait time.Duration `json:"totalWait"`
}

// Stats returns the current rate and counters.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	rate, burst := l.rate, l.maxBurst
	l.mu.Unlock()

	return Stats{
		Rate:      rate,
		Burst:     int(burst),
		Granted:   l.granted.Load(),
		TotalWait: time.Duration(l.totalWait.Load()),
	}
}
