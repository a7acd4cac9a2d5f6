package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/karthikkallam/Internship-Tracker/internal/filter"
	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

// recruiteeLocation accepts both shapes Recruitee uses for the location
// field: a structured object or a bare string.
type recruiteeLocation struct {
	City        string
	Region      string
	Country     string
	CountryCode string
	Raw         string
}

func (l *recruiteeLocation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &l.Raw)
	}
	var obj struct {
		City        string `json:"city"`
		Region      string `json:"region"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.City, l.Region, l.Country, l.CountryCode = obj.City, obj.Region, obj.Country, obj.CountryCode
	return nil
}

// recruiteeOffer represents a single offer in the Recruitee API response.
type recruiteeOffer struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	CompanyName   string            `json:"company_name"`
	Location      recruiteeLocation `json:"location"`
	LocationLabel string            `json:"location_label"`
	CareersURL    string            `json:"careers_url"`
	URL           string            `json:"url"`
	PublishedAt   string            `json:"published_at"`
}

type recruiteeResponse struct {
	Offers []recruiteeOffer `json:"offers"`
}

// RecruiteeSource harvests internship postings from per-company Recruitee
// career sites, one GET per company (up to 100 offers).
type RecruiteeSource struct {
	companies []string
	client    *http.Client
	logger    *slog.Logger
}

// NewRecruiteeSource creates a source for the given company slugs.
func NewRecruiteeSource(companies []string, client *http.Client, logger *slog.Logger) *RecruiteeSource {
	return &RecruiteeSource{companies: companies, client: client, logger: logger}
}

func (s *RecruiteeSource) Name() string { return string(model.SourceRecruitee) }

// Fetch harvests all configured companies, isolating failures per slug.
func (s *RecruiteeSource) Fetch(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	for _, company := range s.companies {
		slug := strings.TrimSpace(company)
		if slug == "" {
			continue
		}
		found, err := s.fetchCompany(ctx, slug)
		if err != nil {
			s.logger.Warn("recruitee request failed", "company", slug, "error", err)
			continue
		}
		postings = append(postings, found...)
	}
	return postings, nil
}

func (s *RecruiteeSource) fetchCompany(ctx context.Context, slug string) ([]model.Posting, error) {
	url := fmt.Sprintf("https://%s.recruitee.com/api/offers/?limit=100", slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("recruitee fetch for %s: %w", slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recruitee fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recruitee fetch for %s: unexpected status %d", slug, resp.StatusCode)
	}

	var rResp recruiteeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return nil, fmt.Errorf("recruitee fetch for %s: invalid JSON: %w", slug, err)
	}

	var postings []model.Posting
	for _, offer := range rResp.Offers {
		if !filter.IsInternship(offer.Title) {
			continue
		}

		location := resolveRecruiteeLocation(offer)
		if !filter.IsUSLocation(location) {
			continue
		}

		listingURL := offer.CareersURL
		if listingURL == "" {
			listingURL = offer.URL
		}
		if listingURL == "" {
			continue
		}

		company := offer.CompanyName
		if company == "" {
			company = capitalize(slug)
		}

		postings = append(postings, model.Posting{
			Title:    offer.Title,
			Company:  company,
			Location: location,
			URL:      listingURL,
			PostedAt: parseTime(offer.PublishedAt),
			ReqID:    strconv.FormatInt(offer.ID, 10),
			Source:   model.SourceRecruitee,
		})
	}
	return postings, nil
}

// resolveRecruiteeLocation builds the location text from the structured
// object, the bare string, or the label, then synthesizes "United States"
// when the country code is US but the text does not say so.
func resolveRecruiteeLocation(offer recruiteeOffer) string {
	loc := offer.Location

	countryCode := loc.Country
	if countryCode == "" {
		countryCode = loc.CountryCode
	}
	countryCode = strings.ToLower(countryCode)

	var location string
	switch {
	case loc.Raw != "":
		location = loc.Raw
	case loc.City != "" || loc.Region != "" || loc.Country != "":
		location = joinNonEmpty(loc.City, loc.Region, loc.Country)
	default:
		location = offer.LocationLabel
	}
	if location == "" {
		location = offer.LocationLabel
	}

	if countryCode == "us" || countryCode == "usa" {
		if location != "" && !strings.Contains(strings.ToLower(location), "united states") {
			location = location + ", United States"
		} else if location == "" {
			location = "United States"
		}
	}
	return location
}
