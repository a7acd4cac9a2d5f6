package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

func TestAshbyFetch_FiltersAndMaps(t *testing.T) {
	payload := `{
		"data": {
			"jobBoardWithTeams": {
				"jobPostings": [
					{
						"id": "post-1",
						"title": "Machine Learning Intern",
						"locationName": "San Francisco, CA",
						"teamId": "team-ml"
					},
					{
						"id": "post-2",
						"title": "Machine Learning Engineer",
						"locationName": "San Francisco, CA",
						"teamId": "team-ml"
					},
					{
						"id": "post-3",
						"title": "Research Intern",
						"locationName": "Paris, France",
						"teamId": "team-research"
					}
				],
				"teams": [
					{"id": "team-ml", "name": "ML Platform"},
					{"id": "team-research", "name": "Research"}
				]
			}
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body ashbyRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if body.OperationName != "JobBoardWithTeams" {
			t.Errorf("unexpected operation name: %s", body.OperationName)
		}
		if body.Variables.OrganizationHostedJobsPageName != "acme" {
			t.Errorf("unexpected organization: %s", body.Variables.OrganizationHostedJobsPageName)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	source := NewAshbySource([]string{"acme"}, newTestClient(srv), discardLogger())

	postings, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.ReqID != "post-1" {
		t.Errorf("unexpected req id: %s", p.ReqID)
	}
	if p.Company != "ML Platform" {
		t.Errorf("expected team name as company, got %s", p.Company)
	}
	if p.URL != "https://jobs.ashbyhq.com/acme/post-1" {
		t.Errorf("unexpected url: %s", p.URL)
	}
	if p.PostedAt != nil {
		t.Errorf("expected nil PostedAt, got %v", p.PostedAt)
	}
	if p.Source != model.SourceAshby {
		t.Errorf("unexpected source: %s", p.Source)
	}
}

func TestAshbyFetch_UnknownTeamFallsBackToSlug(t *testing.T) {
	payload := `{
		"data": {
			"jobBoardWithTeams": {
				"jobPostings": [
					{
						"id": "post-9",
						"title": "Product Intern",
						"locationName": "Remote",
						"teamId": "missing-team"
					}
				],
				"teams": []
			}
		}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	source := NewAshbySource([]string{"acme"}, newTestClient(srv), discardLogger())

	postings, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Company != "Acme" {
		t.Errorf("expected slug fallback company, got %s", postings[0].Company)
	}
}

func TestAshbyFetch_NullBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"jobBoardWithTeams": null}}`))
	}))
	defer srv.Close()

	source := NewAshbySource([]string{"gone"}, newTestClient(srv), discardLogger())

	postings, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}
