package httputil

import (
	"context"
	"time"
)

// Pacer spaces calls so that a process stays under an hourly request budget.
//
// Before each request, call [Pacer.Wait]; after each successful request, call
// [Pacer.Mark]. Wait blocks until at least one interval (3600s / hourly
// limit) has elapsed since the last Mark. A Pacer is owned by exactly one
// client instance and is not goroutine-safe; the collection flow is
// single-threaded by design.
type Pacer struct {
	interval time.Duration
	last     time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewPacer creates a Pacer for the given hourly request budget.
// A non-positive limit is treated as 1 request per hour.
func NewPacer(hourlyLimit int) *Pacer {
	if hourlyLimit <= 0 {
		hourlyLimit = 1
	}
	return &Pacer{
		interval: time.Hour / time.Duration(hourlyLimit),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Interval returns the minimum spacing between two calls.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks until the interval since the last marked call has elapsed.
// It returns early with ctx.Err() if the context is cancelled while waiting.
// A Pacer that has never been marked does not wait.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.last.IsZero() {
		return nil
	}
	if remaining := p.interval - p.now().Sub(p.last); remaining > 0 {
		return p.sleep(ctx, remaining)
	}
	return nil
}

// Mark records the current time as the moment of the last completed call.
// Only successful requests should be marked.
func (p *Pacer) Mark() { p.last = p.now() }

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
