package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPacer_Interval(t *testing.T) {
	tests := []struct {
		limit int
		want  time.Duration
	}{
		{3600, time.Second},
		{7200, 500 * time.Millisecond},
		{1, time.Hour},
		{0, time.Hour}, // non-positive treated as 1/hour
	}
	for _, tt := range tests {
		if got := NewPacer(tt.limit).Interval(); got != tt.want {
			t.Errorf("NewPacer(%d).Interval() = %v, want %v", tt.limit, got, tt.want)
		}
	}
}

func TestPacer_WaitSpacing(t *testing.T) {
	now := time.Unix(1000, 0)
	var slept time.Duration

	p := NewPacer(3600) // 1s interval
	p.now = func() time.Time { return now }
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept += d
		now = now.Add(d)
		return nil
	}

	// First call: never marked, no wait.
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if slept != 0 {
		t.Fatalf("first Wait() slept %v, want 0", slept)
	}
	p.Mark()

	// Immediate second call must wait the full interval.
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if slept != time.Second {
		t.Errorf("second Wait() slept %v, want 1s", slept)
	}
	p.Mark()

	// Partial elapsed time only waits the remainder.
	now = now.Add(300 * time.Millisecond)
	slept = 0
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if slept != 700*time.Millisecond {
		t.Errorf("Wait() slept %v, want 700ms", slept)
	}

	// More than one interval elapsed: no wait at all.
	now = now.Add(5 * time.Second)
	slept = 0
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if slept != 0 {
		t.Errorf("Wait() slept %v, want 0", slept)
	}
}

func TestPacer_WaitCancelled(t *testing.T) {
	p := NewPacer(1) // 1h interval, forces a real wait
	p.Mark()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}
