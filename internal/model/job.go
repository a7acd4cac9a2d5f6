package model

import (
	"context"
	"time"
)

// Source identifies the job board platform a posting was harvested from.
type Source string

const (
	SourceGreenhouse      Source = "greenhouse"
	SourceLever           Source = "lever"
	SourceAshby           Source = "ashby"
	SourceSmartRecruiters Source = "smartrecruiters"
	SourceRecruitee       Source = "recruitee"
)

// Posting is the canonical, source-agnostic representation of one harvested
// job listing. Adapters produce Postings; they live for a single poll cycle.
type Posting struct {
	Title    string
	Company  string
	Location string     // raw provider formatting, empty when absent
	URL      string
	PostedAt *time.Time // UTC; nil when the provider supplies no timestamp
	ReqID    string     // provider-scoped id; (Source, ReqID) is the natural key
	Source   Source
}

// Job is the stored form of an accepted Posting. The JSON field names are the
// wire contract for both the listing endpoint and the broadcast payload.
type Job struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Company   string     `json:"company"`
	Location  string     `json:"location"`
	URL       string     `json:"url"`
	PostedAt  *time.Time `json:"posted_at"`
	ReqID     string     `json:"req_id"`
	Source    Source     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
}

// Envelope wraps a Job for delivery to live subscribers.
type Envelope struct {
	Type string `json:"type"`
	Data Job    `json:"data"`
}

// NewJobEnvelope builds the broadcast envelope for a newly stored job.
func NewJobEnvelope(job Job) Envelope {
	return Envelope{Type: "job", Data: job}
}

// JobSource harvests candidate postings from one platform. Per-identifier
// upstream failures are absorbed inside Fetch; a returned error means the
// whole source could not run.
type JobSource interface {
	Name() string
	Fetch(ctx context.Context) ([]Posting, error)
}

// JobStore is the dedup persistence gateway.
type JobStore interface {
	// InsertNew stores the candidates that are not already present, skipping
	// any with a missing ReqID or URL, and returns the newly inserted jobs in
	// candidate order. Natural-key conflicts are silent.
	InsertNew(ctx context.Context, candidates []Posting) ([]Job, error)
	// ListRecent returns stored jobs ordered by posted_at descending (nulls
	// last), then created_at descending. limit is clamped to [1, 200].
	ListRecent(ctx context.Context, limit int) ([]Job, error)
}

// Publisher fans a newly stored job out to live subscribers.
type Publisher interface {
	PublishJob(job Job)
}

// Subscriber is one live delivery target. A failed Send drops the subscriber.
type Subscriber interface {
	Send(data []byte) error
}

// Harvester runs one complete poll cycle and returns the newly stored jobs.
type Harvester interface {
	RunOnce(ctx context.Context) ([]Job, error)
}
