// Package poller drives one complete harvest cycle: fetch every source,
// persist what is new, broadcast the newly stored jobs.
package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

// Poller owns the pipeline for a single poll cycle across all sources.
type Poller struct {
	sources []model.JobSource
	store   model.JobStore
	pub     model.Publisher
	logger  *slog.Logger
}

// New creates a poller wired with its sources, the persistence gateway, and
// the broadcast publisher. Source order is fixed and determines candidate
// order into the store.
func New(sources []model.JobSource, store model.JobStore, pub model.Publisher, logger *slog.Logger) *Poller {
	return &Poller{
		sources: sources,
		store:   store,
		pub:     pub,
		logger:  logger,
	}
}

// RunOnce runs one poll cycle and returns the newly stored jobs. A failing
// source is logged and skipped; its postings are simply missing until a later
// cycle. An empty harvest returns immediately without touching the store.
// Newly stored jobs are broadcast in insertion order.
func (p *Poller) RunOnce(ctx context.Context) ([]model.Job, error) {
	var harvested []model.Posting
	for _, src := range p.sources {
		postings, err := src.Fetch(ctx)
		if err != nil {
			p.logger.Error("source fetch failed", "source", src.Name(), "error", err)
			continue
		}
		harvested = append(harvested, postings...)
	}

	if len(harvested) == 0 {
		return nil, nil
	}

	inserted, err := p.store.InsertNew(ctx, harvested)
	if err != nil {
		return nil, fmt.Errorf("persisting harvested postings: %w", err)
	}

	for _, job := range inserted {
		p.pub.PublishJob(job)
	}

	p.logger.Info("poll cycle complete",
		"harvested", len(harvested),
		"new", len(inserted),
	)

	return inserted, nil
}
