package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

type countingHarvester struct {
	calls atomic.Int32
	err   error
}

func (h *countingHarvester) RunOnce(_ context.Context) ([]model.Job, error) {
	h.calls.Add(1)
	return nil, h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClampWindow(t *testing.T) {
	tests := []struct {
		min, max           int
		wantLow, wantHigh  time.Duration
	}{
		{120, 300, 120 * time.Second, 300 * time.Second},
		{10, 300, 120 * time.Second, 300 * time.Second},   // low floored at 120
		{120, 9000, 120 * time.Second, 600 * time.Second}, // high capped at 600
		{400, 200, 400 * time.Second, 400 * time.Second},  // high floored at low
		{700, 800, 700 * time.Second, 700 * time.Second},  // low above cap wins
		{0, 0, 120 * time.Second, 120 * time.Second},
	}

	for _, tt := range tests {
		low, high := clampWindow(tt.min, tt.max)
		if low != tt.wantLow || high != tt.wantHigh {
			t.Errorf("clampWindow(%d, %d) = (%v, %v), want (%v, %v)",
				tt.min, tt.max, low, high, tt.wantLow, tt.wantHigh)
		}
	}
}

func TestJitterStaysInWindow(t *testing.T) {
	s := New(&countingHarvester{}, 120, 300, discardLogger())
	for i := 0; i < 100; i++ {
		d := s.jitter()
		if d < 120*time.Second || d > 300*time.Second {
			t.Fatalf("jitter %v outside [120s, 300s]", d)
		}
	}
}

func TestRunReturnsNilOnCancellation(t *testing.T) {
	harvester := &countingHarvester{}
	s := New(harvester, 120, 600, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let the first cycle run, then cancel during the sleep.
	deadline := time.After(2 * time.Second)
	for harvester.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first cycle never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if harvester.calls.Load() != 1 {
		t.Errorf("expected exactly 1 cycle before cancellation, got %d", harvester.calls.Load())
	}
}

func TestRunContinuesAfterCycleFailure(t *testing.T) {
	harvester := &countingHarvester{err: errors.New("cycle blew up")}
	s := New(harvester, 120, 600, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for harvester.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("cycle never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
	// The loop survived the failure and is sleeping; cancellation still exits cleanly.
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("expected nil after cancellation, got %v", err)
	}
}
