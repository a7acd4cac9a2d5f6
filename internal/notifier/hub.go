// Package notifier fans newly stored jobs out to live subscribers.
package notifier

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

// Hub maintains the set of live subscribers and broadcasts job payloads to
// them. The transport behind each subscriber is opaque; a failed delivery
// drops that subscriber and nothing else.
type Hub struct {
	mu     sync.Mutex
	subs   map[model.Subscriber]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[model.Subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers a subscriber that has completed its own handshake.
func (h *Hub) Subscribe(sub model.Subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()
	h.logger.Info("subscriber connected", "subscribers", count)
}

// Unsubscribe removes a subscriber. Removing an absent subscriber is a no-op.
func (h *Hub) Unsubscribe(sub model.Subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	count := len(h.subs)
	h.mu.Unlock()
	h.logger.Info("subscriber disconnected", "subscribers", count)
}

// PublishJob broadcasts a newly stored job to every live subscriber. The
// subscriber set is snapshotted under the lock and deliveries happen outside
// it, so a slow or dead subscriber never blocks registration. Delivery
// failures unsubscribe the failing subscriber and are not surfaced.
func (h *Hub) PublishJob(job model.Job) {
	payload, err := json.Marshal(model.NewJobEnvelope(job))
	if err != nil {
		h.logger.Error("failed to encode broadcast payload", "job_id", job.ID, "error", err)
		return
	}

	h.mu.Lock()
	snapshot := make([]model.Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.Unlock()

	for _, sub := range snapshot {
		if err := sub.Send(payload); err != nil {
			h.logger.Warn("dropping subscriber after failed delivery", "error", err)
			h.Unsubscribe(sub)
		}
	}
}
