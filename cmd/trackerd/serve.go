package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/karthikkallam/Internship-Tracker/internal/api"
	"github.com/karthikkallam/Internship-Tracker/internal/notifier"
	"github.com/karthikkallam/Internship-Tracker/internal/poller"
	"github.com/karthikkallam/Internship-Tracker/internal/scheduler"
	"github.com/karthikkallam/Internship-Tracker/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the harvesting daemon and HTTP API",
	Long:  "Runs the continuous poll loop and serves /jobs, /poll and /ws; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"addr", cfg.Addr,
		"poll_window", [2]int{cfg.PollMinSeconds, cfg.PollMaxSeconds},
		"greenhouse", len(cfg.Boards.Greenhouse),
		"lever", len(cfg.Boards.Lever),
		"ashby", len(cfg.Boards.Ashby),
		"smartrecruiters", len(cfg.Boards.SmartRecruiters),
		"recruitee", len(cfg.Boards.Recruitee),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	hub := notifier.NewHub(logger)
	harvester := poller.New(sources, jobStore, hub, logger)
	sched := scheduler.New(harvester, cfg.PollMinSeconds, cfg.PollMaxSeconds, logger)
	srv := api.NewServer(jobStore, harvester, hub, logger)

	loopDone := make(chan error, 1)
	go func() { loopDone <- sched.Run(ctx) }()

	go func() {
		logger.Info("http server listening", "addr", cfg.Addr)
		if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	<-loopDone

	logger.Info("goodbye")
	return nil
}
