package adapter

import (
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

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse board API response.
type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	Offices        []greenhouseOffice `json:"offices"`
	AbsoluteURL    string             `json:"absolute_url"`
	UpdatedAt      string             `json:"updated_at"`
	FirstPublished string             `json:"first_published"`
	CompanyName    string             `json:"company_name"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseOffice struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseSource harvests internship postings from the Greenhouse public
// boards API, one GET per board slug.
type GreenhouseSource struct {
	boards []string
	client *http.Client
	logger *slog.Logger
}

// NewGreenhouseSource creates a source for the given board slugs.
func NewGreenhouseSource(boards []string, client *http.Client, logger *slog.Logger) *GreenhouseSource {
	return &GreenhouseSource{boards: boards, client: client, logger: logger}
}

func (s *GreenhouseSource) Name() string { return string(model.SourceGreenhouse) }

// Fetch harvests all configured boards. A failing board is logged and skipped
// so it never prevents harvesting from the remaining boards.
func (s *GreenhouseSource) Fetch(ctx context.Context) ([]model.Posting, error) {
	var postings []model.Posting
	for _, board := range s.boards {
		slug := strings.TrimSpace(board)
		if slug == "" {
			continue
		}
		found, err := s.fetchBoard(ctx, slug)
		if err != nil {
			s.logger.Warn("greenhouse request failed", "board", slug, "error", err)
			continue
		}
		postings = append(postings, found...)
	}
	return postings, nil
}

func (s *GreenhouseSource) fetchBoard(ctx context.Context, slug string) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("greenhouse fetch for %s: unexpected status %d", slug, resp.StatusCode)
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: invalid JSON: %w", slug, err)
	}

	var postings []model.Posting
	for _, gj := range ghResp.Jobs {
		if !filter.IsInternship(gj.Title) {
			continue
		}

		// Primary office first; when it fails the US test, fall back to the
		// concatenation of all office names before deciding.
		location := gj.Location.Name
		if location != "" && !filter.IsUSLocation(location) {
			names := make([]string, 0, len(gj.Offices))
			for _, office := range gj.Offices {
				if office.Name != "" {
					names = append(names, office.Name)
				}
			}
			if len(names) > 0 {
				location = strings.Join(names, ", ")
			}
		}
		if !filter.IsUSLocation(location) {
			continue
		}

		if gj.AbsoluteURL == "" {
			continue
		}

		company := gj.CompanyName
		if company == "" {
			company = capitalize(slug)
		}

		posted := gj.UpdatedAt
		if posted == "" {
			posted = gj.FirstPublished
		}

		postings = append(postings, model.Posting{
			Title:    gj.Title,
			Company:  company,
			Location: location,
			URL:      gj.AbsoluteURL,
			PostedAt: parseTime(posted),
			ReqID:    strconv.FormatInt(gj.ID, 10),
			Source:   model.SourceGreenhouse,
		})
	}
	return postings, nil
}
