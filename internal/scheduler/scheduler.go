// Package scheduler owns the continuous poll loop: run a cycle, sleep for a
// jittered interval, repeat until cancelled.
package scheduler

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

const (
	// The sleep window is clamped to these bounds regardless of configuration,
	// keeping the loop polite to upstream boards without going stale.
	floorSeconds = 120
	capSeconds   = 600
)

// Scheduler repeatedly runs poll cycles with a randomized pause between them.
type Scheduler struct {
	harvester model.Harvester
	low       time.Duration
	high      time.Duration
	logger    *slog.Logger
}

// New creates a scheduler sleeping a uniformly random duration from the
// clamped [minSeconds, maxSeconds] window between cycles.
func New(harvester model.Harvester, minSeconds, maxSeconds int, logger *slog.Logger) *Scheduler {
	low, high := clampWindow(minSeconds, maxSeconds)
	return &Scheduler{
		harvester: harvester,
		low:       low,
		high:      high,
		logger:    logger,
	}
}

// clampWindow floors the low bound at 120s and keeps the high bound within
// [low, 600s].
func clampWindow(minSeconds, maxSeconds int) (low, high time.Duration) {
	if minSeconds < floorSeconds {
		minSeconds = floorSeconds
	}
	if maxSeconds > capSeconds {
		maxSeconds = capSeconds
	}
	if maxSeconds < minSeconds {
		maxSeconds = minSeconds
	}
	return time.Duration(minSeconds) * time.Second, time.Duration(maxSeconds) * time.Second
}

// Run starts the poll loop. Cycle failures are logged and never stop the
// loop. The jittered sleep is the sole cancellation point: cancelling ctx
// interrupts the sleep and Run returns nil, leaving any in-flight cycle to
// finish first.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting poll loop",
		"min_sleep", s.low.String(),
		"max_sleep", s.high.String(),
	)

	for {
		jobs, err := s.harvester.RunOnce(ctx)
		switch {
		case err != nil:
			s.logger.Error("poll cycle failed", "error", err)
		case len(jobs) > 0:
			s.logger.Info("stored new internship postings", "count", len(jobs))
		}

		sleep := s.jitter()
		s.logger.Debug("sleeping before next poll", "duration", sleep.String())

		select {
		case <-ctx.Done():
			s.logger.Info("poll loop stopped")
			return nil
		case <-time.After(sleep):
		}
	}
}

// jitter draws a uniformly random sleep from [low, high] at second
// granularity, desynchronizing load against the upstream APIs.
func (s *Scheduler) jitter() time.Duration {
	if s.high <= s.low {
		return s.low
	}
	spread := int64((s.high - s.low) / time.Second)
	return s.low + time.Duration(rand.Int63n(spread+1))*time.Second
}
