// Package api exposes the HTTP boundary: the listing endpoint, the manual
// poll trigger, and the live WebSocket feed.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/karthikkallam/Internship-Tracker/internal/model"
	"github.com/karthikkallam/Internship-Tracker/internal/notifier"
)

// Server wires the HTTP routes to the pipeline's boundary operations.
type Server struct {
	echo      *echo.Echo
	store     model.JobStore
	harvester model.Harvester
	hub       *notifier.Hub
	logger    *slog.Logger
}

// NewServer builds the echo application with its routes and middleware.
func NewServer(store model.JobStore, harvester model.Harvester, hub *notifier.Hub, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s := &Server{
		echo:      e,
		store:     store,
		harvester: harvester,
		hub:       hub,
		logger:    logger,
	}

	e.GET("/health", s.health)
	e.GET("/jobs", s.listJobs)
	e.POST("/poll", s.triggerPoll)
	e.GET("/ws", s.subscribe)

	return s
}

// Start serves HTTP on addr, blocking until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
