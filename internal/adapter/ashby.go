package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/karthikkallam/Internship-Tracker/internal/filter"
	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

const (
	ashbyGraphQLURL = "https://jobs.ashbyhq.com/api/non-user-graphql"

	// ashbyBoardQuery is the fixed job-board query. Ashby's public board API is
	// GraphQL-only; it exposes neither a listing URL nor a posting timestamp.
	ashbyBoardQuery = "query JobBoardWithTeams($organizationHostedJobsPageName: String!) { " +
		"jobBoardWithTeams(organizationHostedJobsPageName: $organizationHostedJobsPageName) { " +
		"jobPostings { id title locationName employmentType teamId } " +
		"teams { id name } " +
		"} }"
)

type ashbyRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     ashbyVariables `json:"variables"`
}

type ashbyVariables struct {
	OrganizationHostedJobsPageName string `json:"organizationHostedJobsPageName"`
}

type ashbyResponse struct {
	Data struct {
		JobBoardWithTeams *ashbyBoard `json:"jobBoardWithTeams"`
	} `json:"data"`
}

type ashbyBoard struct {
	JobPostings []ashbyPosting `json:"jobPostings"`
	Teams       []ashbyTeam    `json:"teams"`
}

type ashbyPosting struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	LocationName    string `json:"locationName"`
	LocationAddress string `json:"locationAddress"`
	TeamID          string `json:"teamId"`
}

type ashbyTeam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AshbySource harvests internship postings from Ashby hosted job boards via a
// single GraphQL call per organization.
type AshbySource struct {
	orgs   []string
	client *http.Client
	logger *slog.Logger
}

// NewAshbySource creates a source for the given organization slugs.
func NewAshbySource(orgs []string, client *http.Client, logger *slog.Logger) *AshbySource {
	return &AshbySource{orgs: orgs, client: client, logger: logger}
}

func (s *AshbySource) Name() string { return string(model.SourceAshby) }

// Fetch harvests all configured organizations, isolating failures per slug.
func (s *AshbySource) Fetch(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	for _, org := range s.orgs {
		slug := strings.TrimSpace(org)
		if slug == "" {
			continue
		}
		found, err := s.fetchBoard(ctx, slug)
		if err != nil {
			s.logger.Warn("ashby request failed", "organization", slug, "error", err)
			continue
		}
		postings = append(postings, found...)
	}
	return postings, nil
}

func (s *AshbySource) fetchBoard(ctx context.Context, slug string) ([]model.Posting, error) {
	body, err := json.Marshal(ashbyRequest{
		OperationName: "JobBoardWithTeams",
		Query:         ashbyBoardQuery,
		Variables:     ashbyVariables{OrganizationHostedJobsPageName: slug},
	})
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", slug, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ashbyGraphQLURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", slug, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ashby fetch for %s: unexpected status %d", slug, resp.StatusCode)
	}

	var ashbyResp ashbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: invalid JSON: %w", slug, err)
	}

	board := ashbyResp.Data.JobBoardWithTeams
	if board == nil {
		return nil, nil
	}

	teams := make(map[string]string, len(board.Teams))
	for _, team := range board.Teams {
		teams[team.ID] = team.Name
	}

	var postings []model.Posting
	for _, ap := range board.JobPostings {
		if !filter.IsInternship(ap.Title) {
			continue
		}
		location := ap.LocationName
		if location == "" {
			location = ap.LocationAddress
		}
		if !filter.IsUSLocation(location) {
			continue
		}
		if ap.ID == "" {
			continue
		}

		company := teams[ap.TeamID]
		if company == "" {
			company = capitalize(slug)
		}

		postings = append(postings, model.Posting{
			Title:    ap.Title,
			Company:  company,
			Location: location,
			// The board API exposes no listing URL; hosted boards follow a
			// fixed slug/posting-id scheme.
			URL: fmt.Sprintf("https://jobs.ashbyhq.com/%s/%s", slug, ap.ID),
			// No timestamp is available from this API, so PostedAt stays nil
			// and these rows sort by insertion time downstream.
			PostedAt: nil,
			ReqID:    ap.ID,
			Source:   model.SourceAshby,
		})
	}
	return postings, nil
}
