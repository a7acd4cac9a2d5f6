package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/karthikkallam/Internship-Tracker/internal/filter"
	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

const smartRecruitersBaseURL = "https://api.smartrecruiters.com/v1/companies"

type smartRecruitersLocation struct {
	City         string `json:"city"`
	FullLocation string `json:"fullLocation"`
	Country      string `json:"country"`
	CountryCode  string `json:"countryCode"`
}

type smartRecruitersCompany struct {
	Name string `json:"name"`
}

// smartRecruitersPosting represents one entry in the postings list response.
type smartRecruitersPosting struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Ref          string                  `json:"ref"`
	JobAdID      string                  `json:"jobAdId"`
	ReleasedDate string                  `json:"releasedDate"`
	Company      smartRecruitersCompany  `json:"company"`
	Location     smartRecruitersLocation `json:"location"`
}

type smartRecruitersResponse struct {
	Content []smartRecruitersPosting `json:"content"`
}

// smartRecruitersDetail is the posting detail response, fetched only to
// resolve the real apply URL.
type smartRecruitersDetail struct {
	ApplyURL string `json:"applyUrl"`
	JobAd    struct {
		ApplyURL string `json:"applyUrl"`
	} `json:"jobAd"`
}

// SmartRecruitersSource harvests internship postings from the SmartRecruiters
// public postings API: one listing GET per company (up to 100 results), plus
// one detail GET per matching posting to resolve the apply URL.
//
// The detail round-trip has no retry or backoff; under high posting volume it
// amplifies one listing call into N+1 calls. Known scaling risk, kept as-is.
type SmartRecruitersSource struct {
	companies []string
	client    *http.Client
	logger    *slog.Logger
}

// NewSmartRecruitersSource creates a source for the given company slugs.
func NewSmartRecruitersSource(companies []string, client *http.Client, logger *slog.Logger) *SmartRecruitersSource {
	return &SmartRecruitersSource{companies: companies, client: client, logger: logger}
}

func (s *SmartRecruitersSource) Name() string { return string(model.SourceSmartRecruiters) }

// Fetch harvests all configured companies, isolating failures per slug.
func (s *SmartRecruitersSource) Fetch(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	for _, company := range s.companies {
		slug := strings.TrimSpace(company)
		if slug == "" {
			continue
		}
		found, err := s.fetchCompany(ctx, slug)
		if err != nil {
			s.logger.Warn("smartrecruiters request failed", "company", slug, "error", err)
			continue
		}
		postings = append(postings, found...)
	}
	return postings, nil
}

func (s *SmartRecruitersSource) fetchCompany(ctx context.Context, slug string) ([]model.Posting, error) {
	listURL := fmt.Sprintf("%s/%s/postings?limit=100", smartRecruitersBaseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: unexpected status %d", slug, resp.StatusCode)
	}

	var srResp smartRecruitersResponse
	if err := json.NewDecoder(resp.Body).Decode(&srResp); err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: invalid JSON: %w", slug, err)
	}

	var postings []model.Posting
	for _, sp := range srResp.Content {
		if !filter.IsInternship(sp.Name) {
			continue
		}

		location, ok := s.resolveLocation(sp)
		if !ok {
			continue
		}

		detailURL := sp.Ref
		if detailURL == "" {
			detailURL = fmt.Sprintf("%s/%s/postings/%s", smartRecruitersBaseURL, slug, sp.ID)
		}
		applyURL := s.fetchApplyURL(ctx, detailURL, sp.ID)

		url := applyURL
		if url == "" {
			url = sp.Ref
		}
		if url == "" {
			url = sp.JobAdID
		}
		if url == "" || sp.ID == "" {
			continue
		}

		company := sp.Company.Name
		if company == "" {
			company = capitalize(slug)
		}

		postings = append(postings, model.Posting{
			Title:    sp.Name,
			Company:  company,
			Location: location,
			URL:      url,
			PostedAt: parseTime(sp.ReleasedDate),
			ReqID:    sp.ID,
			Source:   model.SourceSmartRecruiters,
		})
	}
	return postings, nil
}

// resolveLocation returns the US location for a posting, synthesizing
// "United States" from the country code when the structured field is missing
// or fails the US test on its own.
func (s *SmartRecruitersSource) resolveLocation(sp smartRecruitersPosting) (string, bool) {
	location := sp.Location.FullLocation
	if location == "" {
		location = sp.Location.City
	}

	countryCode := sp.Location.Country
	if countryCode == "" {
		countryCode = sp.Location.CountryCode
	}
	countryCode = strings.ToLower(countryCode)
	isUSCode := countryCode == "us" || countryCode == "usa"

	if location == "" && isUSCode {
		location = "United States"
	}
	if location != "" && !filter.IsUSLocation(location) {
		if isUSCode && !strings.Contains(strings.ToLower(location), "united states") {
			location = location + ", United States"
		} else {
			location = ""
		}
	}
	if location == "" || !filter.IsUSLocation(location) {
		return "", false
	}
	return location, true
}

// fetchApplyURL resolves the apply URL from the posting detail endpoint.
// Failures only cost the apply link, never the posting.
func (s *SmartRecruitersSource) fetchApplyURL(ctx context.Context, detailURL, postingID string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		s.logger.Debug("smartrecruiters detail fetch failed", "posting", postingID, "error", err)
		return ""
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("smartrecruiters detail fetch failed", "posting", postingID, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var detail smartRecruitersDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		s.logger.Debug("smartrecruiters detail fetch failed", "posting", postingID, "error", err)
		return ""
	}

	if detail.ApplyURL != "" {
		return detail.ApplyURL
	}
	return detail.JobAd.ApplyURL
}
