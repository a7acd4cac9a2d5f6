package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/karthikkallam/Internship-Tracker/internal/notifier"
	"github.com/karthikkallam/Internship-Tracker/internal/poller"
	"github.com/karthikkallam/Internship-Tracker/internal/store"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run a single harvest cycle and exit",
	RunE:  runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobStore, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer jobStore.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no providers configured")
		os.Exit(1)
	}

	harvester := poller.New(sources, jobStore, notifier.NewHub(logger), logger)
	jobs, err := harvester.RunOnce(ctx)
	if err != nil {
		logger.Error("poll cycle failed", "error", err)
		os.Exit(1)
	}

	logger.Info("poll cycle complete", "ingested", len(jobs))
	return nil
}
