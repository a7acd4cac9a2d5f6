package notifier

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

type recordingSubscriber struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingSubscriber) Send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, data)
	return nil
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

type failingSubscriber struct {
	calls int
}

func (f *failingSubscriber) Send([]byte) error {
	f.calls++
	return errors.New("transport closed")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishJobDeliversEnvelope(t *testing.T) {
	hub := NewHub(discardLogger())
	sub := &recordingSubscriber{}
	hub.Subscribe(sub)

	hub.PublishJob(model.Job{ID: 7, Title: "Data Intern", ReqID: "7", Source: model.SourceLever})

	if sub.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", sub.count())
	}

	var envelope model.Envelope
	if err := json.Unmarshal(sub.payloads[0], &envelope); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if envelope.Type != "job" {
		t.Errorf("expected envelope type job, got %q", envelope.Type)
	}
	if envelope.Data.ID != 7 || envelope.Data.ReqID != "7" {
		t.Errorf("unexpected envelope data: %+v", envelope.Data)
	}
}

func TestPublishJobDropsFailingSubscriberOnly(t *testing.T) {
	hub := NewHub(discardLogger())
	healthy := &recordingSubscriber{}
	broken := &failingSubscriber{}
	hub.Subscribe(healthy)
	hub.Subscribe(broken)

	hub.PublishJob(model.Job{ID: 1, ReqID: "1", Source: model.SourceGreenhouse})

	if healthy.count() != 1 {
		t.Errorf("expected healthy subscriber to receive the job, got %d deliveries", healthy.count())
	}
	if broken.calls != 1 {
		t.Errorf("expected one attempt on the broken subscriber, got %d", broken.calls)
	}

	// The broken subscriber is gone; only the healthy one receives more.
	hub.PublishJob(model.Job{ID: 2, ReqID: "2", Source: model.SourceGreenhouse})

	if healthy.count() != 2 {
		t.Errorf("expected 2 deliveries to healthy subscriber, got %d", healthy.count())
	}
	if broken.calls != 1 {
		t.Errorf("expected broken subscriber to be unsubscribed, got %d attempts", broken.calls)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(discardLogger())
	sub := &recordingSubscriber{}
	hub.Subscribe(sub)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	hub.PublishJob(model.Job{ID: 3, ReqID: "3", Source: model.SourceAshby})
	if sub.count() != 0 {
		t.Errorf("expected no deliveries after unsubscribe, got %d", sub.count())
	}
}
