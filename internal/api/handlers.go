package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

const defaultListLimit = 50

// listJobs returns the most recent stored jobs. The limit query parameter
// defaults to 50; the store clamps it to [1, 200].
func (s *Server) listJobs(c echo.Context) error {
	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	jobs, err := s.store.ListRecent(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error("listing jobs failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "listing jobs failed")
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return c.JSON(http.StatusOK, jobs)
}

// triggerPoll runs one poll cycle synchronously and reports only the count of
// newly ingested jobs; which providers failed stays in the logs.
func (s *Server) triggerPoll(c echo.Context) error {
	jobs, err := s.harvester.RunOnce(c.Request().Context())
	if err != nil {
		s.logger.Error("manual poll failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "poll failed")
	}
	return c.JSON(http.StatusOK, map[string]int{"ingested": len(jobs)})
}
