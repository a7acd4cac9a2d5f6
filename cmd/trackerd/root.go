package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/karthikkallam/Internship-Tracker/internal/adapter"
	"github.com/karthikkallam/Internship-Tracker/internal/config"
	"github.com/karthikkallam/Internship-Tracker/internal/model"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "trackerd",
	Short: "Internship tracker backend",
	Long:  "trackerd harvests US internship postings from recruiting platforms and pushes new ones to live subscribers.",
	// Default to `serve` so that `trackerd` with no args runs the daemon.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// loadConfig pulls in a .env file when present, then reads the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

// buildSources constructs one source per provider with a configured board
// list, in the fixed harvest order.
func buildSources(cfg *config.Config, client *http.Client, logger *slog.Logger) []model.JobSource {
	var sources []model.JobSource
	if len(cfg.Boards.Greenhouse) > 0 {
		sources = append(sources, adapter.NewGreenhouseSource(cfg.Boards.Greenhouse, client, logger))
	}
	if len(cfg.Boards.Lever) > 0 {
		sources = append(sources, adapter.NewLeverSource(cfg.Boards.Lever, client, logger))
	}
	if len(cfg.Boards.Ashby) > 0 {
		sources = append(sources, adapter.NewAshbySource(cfg.Boards.Ashby, client, logger))
	}
	if len(cfg.Boards.SmartRecruiters) > 0 {
		sources = append(sources, adapter.NewSmartRecruitersSource(cfg.Boards.SmartRecruiters, client, logger))
	}
	if len(cfg.Boards.Recruitee) > 0 {
		sources = append(sources, adapter.NewRecruiteeSource(cfg.Boards.Recruitee, client, logger))
	}
	for _, src := range sources {
		logger.Info("registered source", "source", src.Name())
	}
	return sources
}
