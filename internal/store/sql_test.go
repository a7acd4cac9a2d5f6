package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func posting(source model.Source, reqID string) model.Posting {
	return model.Posting{
		Title:   "Software Engineering Intern",
		Company: "Acme",
		URL:     "https://example.com/jobs/" + reqID,
		ReqID:   reqID,
		Source:  source,
	}
}

func TestInsertNewStoresCandidates(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertNew(context.Background(), []model.Posting{
		posting(model.SourceGreenhouse, "1"),
		posting(model.SourceLever, "2"),
	})
	if err != nil {
		t.Fatalf("InsertNew: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 inserted, got %d", len(inserted))
	}
	if inserted[0].ID == 0 || inserted[1].ID == 0 {
		t.Error("expected store-assigned ids")
	}
	if inserted[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestInsertNewIsIdempotentOnNaturalKey(t *testing.T) {
	s := newTestStore(t)
	candidates := []model.Posting{posting(model.SourceAshby, "abc-123")}

	first, err := s.InsertNew(context.Background(), candidates)
	if err != nil {
		t.Fatalf("first InsertNew: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 inserted on first attempt, got %d", len(first))
	}

	second, err := s.InsertNew(context.Background(), candidates)
	if err != nil {
		t.Fatalf("second InsertNew: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected 0 inserted on second attempt, got %d", len(second))
	}

	jobs, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected exactly 1 stored job, got %d", len(jobs))
	}
}

func TestInsertNewSameReqIDDifferentSource(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertNew(context.Background(), []model.Posting{
		posting(model.SourceGreenhouse, "77"),
		posting(model.SourceLever, "77"),
	})
	if err != nil {
		t.Fatalf("InsertNew: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 inserted (distinct sources), got %d", len(inserted))
	}
}

func TestInsertNewSkipsIncompleteCandidates(t *testing.T) {
	s := newTestStore(t)

	noReq := posting(model.SourceRecruitee, "")
	noURL := posting(model.SourceRecruitee, "9")
	noURL.URL = ""

	inserted, err := s.InsertNew(context.Background(), []model.Posting{noReq, noURL})
	if err != nil {
		t.Fatalf("InsertNew: %v", err)
	}
	if len(inserted) != 0 {
		t.Fatalf("expected 0 inserted, got %d", len(inserted))
	}
}

func TestInsertNewPreservesCandidateOrder(t *testing.T) {
	s := newTestStore(t)

	// Seed "b" so it is a duplicate on the second call.
	if _, err := s.InsertNew(context.Background(), []model.Posting{posting(model.SourceLever, "b")}); err != nil {
		t.Fatalf("seed InsertNew: %v", err)
	}

	inserted, err := s.InsertNew(context.Background(), []model.Posting{
		posting(model.SourceLever, "a"),
		posting(model.SourceLever, "b"),
		posting(model.SourceLever, "c"),
	})
	if err != nil {
		t.Fatalf("InsertNew: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 inserted, got %d", len(inserted))
	}
	if inserted[0].ReqID != "a" || inserted[1].ReqID != "c" {
		t.Errorf("expected order [a c], got [%s %s]", inserted[0].ReqID, inserted[1].ReqID)
	}
}

func TestInsertNewDefaultsCompany(t *testing.T) {
	s := newTestStore(t)

	p := posting(model.SourceGreenhouse, "55")
	p.Company = ""
	inserted, err := s.InsertNew(context.Background(), []model.Posting{p})
	if err != nil {
		t.Fatalf("InsertNew: %v", err)
	}
	if len(inserted) != 1 || inserted[0].Company != "Unknown" {
		t.Fatalf("expected company Unknown, got %+v", inserted)
	}
}

func TestListRecentOrdersByPostedAtNullsLast(t *testing.T) {
	s := newTestStore(t)

	older := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	withOlder := posting(model.SourceGreenhouse, "older")
	withOlder.PostedAt = &older
	withNewer := posting(model.SourceGreenhouse, "newer")
	withNewer.PostedAt = &newer
	withoutDate := posting(model.SourceAshby, "undated")

	// Insert out of order on purpose.
	if _, err := s.InsertNew(context.Background(), []model.Posting{withoutDate, withOlder, withNewer}); err != nil {
		t.Fatalf("InsertNew: %v", err)
	}

	jobs, err := s.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	if jobs[0].ReqID != "newer" || jobs[1].ReqID != "older" || jobs[2].ReqID != "undated" {
		t.Errorf("unexpected order: [%s %s %s]", jobs[0].ReqID, jobs[1].ReqID, jobs[2].ReqID)
	}
	if jobs[1].PostedAt == nil || !jobs[1].PostedAt.Equal(older) {
		t.Errorf("expected posted_at %v to round-trip, got %v", older, jobs[1].PostedAt)
	}
}

func TestListRecentClampsLimit(t *testing.T) {
	s := newTestStore(t)

	var candidates []model.Posting
	for _, id := range []string{"1", "2", "3"} {
		candidates = append(candidates, posting(model.SourceLever, id))
	}
	if _, err := s.InsertNew(context.Background(), candidates); err != nil {
		t.Fatalf("InsertNew: %v", err)
	}

	jobs, err := s.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected limit 0 to clamp to 1, got %d jobs", len(jobs))
	}

	jobs, err = s.ListRecent(context.Background(), 500)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(jobs) != 3 {
		t.Errorf("expected all 3 jobs under clamped limit, got %d", len(jobs))
	}
}
