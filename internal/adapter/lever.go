package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/karthikkallam/Internship-Tracker/internal/filter"
	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// errCompanyNotFound marks an HTTP 404 for a company slug: the board does not
// exist, which is a skip rather than a failure.
var errCompanyNotFound = errors.New("company not found")

// leverCategories represents the categories object in a Lever posting.
type leverCategories struct {
	Location     string   `json:"location"`
	AllLocations []string `json:"allLocations"`
	Country      string   `json:"country"`
}

// leverLocation accepts both shapes Lever uses for the location field:
// a nested object with city/state/country, or a bare string.
type leverLocation struct {
	City    string
	State   string
	Country string
	Raw     string
}

func (l *leverLocation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &l.Raw)
	}
	var obj struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.City, l.State, l.Country = obj.City, obj.State, obj.Country
	return nil
}

// leverPosting represents a single posting in the Lever API response.
type leverPosting struct {
	ID         string          `json:"id"`
	LeverID    string          `json:"leverId"`
	PostingID  string          `json:"postingId"`
	Text       string          `json:"text"`
	Title      string          `json:"title"`
	Company    string          `json:"company"`
	Categories leverCategories `json:"categories"`
	Location   leverLocation   `json:"location"`
	CreatedAt  int64           `json:"createdAt"`
	HostedURL  string          `json:"hostedUrl"`
	ApplyURL   string          `json:"applyUrl"`
}

// LeverSource harvests internship postings from the Lever public postings API.
type LeverSource struct {
	companies []string
	client    *http.Client
	logger    *slog.Logger
}

// NewLeverSource creates a source for the given company slugs.
func NewLeverSource(companies []string, client *http.Client, logger *slog.Logger) *LeverSource {
	return &LeverSource{companies: companies, client: client, logger: logger}
}

func (s *LeverSource) Name() string { return string(model.SourceLever) }

// Fetch harvests all configured companies. A 404 means the company has no
// Lever board and is skipped quietly; any other failure is logged and the
// remaining companies still run.
func (s *LeverSource) Fetch(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	for _, company := range s.companies {
		slug := strings.TrimSpace(company)
		if slug == "" {
			continue
		}
		found, err := s.fetchCompany(ctx, slug)
		if errors.Is(err, errCompanyNotFound) {
			s.logger.Debug("lever company not found", "company", slug)
			continue
		}
		if err != nil {
			s.logger.Warn("lever request failed", "company", slug, "error", err)
			continue
		}
		postings = append(postings, found...)
	}
	return postings, nil
}

func (s *LeverSource) fetchCompany(ctx context.Context, slug string) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errCompanyNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lever fetch for %s: unexpected status %d", slug, resp.StatusCode)
	}

	// Error responses come back as a JSON object instead of the posting list,
	// so they fail decoding and are skipped with the malformed-JSON path.
	var leverPostings []leverPosting
	if err := json.NewDecoder(resp.Body).Decode(&leverPostings); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: invalid JSON: %w", slug, err)
	}

	var postings []model.Posting
	for _, lp := range leverPostings {
		title := lp.Text
		if title == "" {
			title = lp.Title
		}
		if !filter.IsInternship(title) {
			continue
		}

		location := s.resolveLocation(lp)
		if !filter.IsUSLocation(location) {
			continue
		}

		company := lp.Company
		if company == "" {
			company = capitalize(slug)
		}

		var postedAt *time.Time
		if lp.CreatedAt > 0 {
			t := time.UnixMilli(lp.CreatedAt).UTC()
			postedAt = &t
		}

		reqID := lp.ID
		if reqID == "" {
			reqID = lp.LeverID
		}
		if reqID == "" {
			reqID = lp.PostingID
		}

		url := lp.HostedURL
		if url == "" {
			url = lp.ApplyURL
		}

		if url == "" || reqID == "" {
			continue
		}

		postings = append(postings, model.Posting{
			Title:    title,
			Company:  company,
			Location: location,
			URL:      url,
			PostedAt: postedAt,
			ReqID:    reqID,
			Source:   model.SourceLever,
		})
	}
	return postings, nil
}

// resolveLocation applies Lever's location precedence: the structured
// category, the aggregate allLocations list, the nested location object, the
// bare string form, and finally a country-only fallback for US boards.
func (s *LeverSource) resolveLocation(lp leverPosting) string {
	location := lp.Categories.Location
	if location == "" && len(lp.Categories.AllLocations) > 0 {
		location = strings.Join(lp.Categories.AllLocations, ", ")
	}
	if location == "" {
		location = joinNonEmpty(lp.Location.City, lp.Location.State, lp.Location.Country)
	}
	if location == "" {
		location = lp.Location.Raw
	}
	if location == "" && (lp.Categories.Country == "United States" || lp.Categories.Country == "USA") {
		location = lp.Categories.Country
	}
	return location
}
