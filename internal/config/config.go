// Package config loads and validates the runtime configuration.
// Environment variables are the primary surface; an optional YAML boards file
// can supply the per-provider slug lists, with the environment winning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the tracker backend.
type Config struct {
	DatabaseURL    string
	Addr           string
	HTTPTimeout    time.Duration
	PollMinSeconds int
	PollMaxSeconds int
	Boards         Boards
}

// Boards lists the organization/company identifiers polled per provider.
type Boards struct {
	Greenhouse      []string `yaml:"greenhouse"`
	Lever           []string `yaml:"lever"`
	Ashby           []string `yaml:"ashby"`
	SmartRecruiters []string `yaml:"smartrecruiters"`
	Recruitee       []string `yaml:"recruitee"`
}

// Load reads the environment and returns a validated Config. Invalid numeric
// values fail fast rather than silently falling back.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    "file:tracker.db",
		Addr:           ":8080",
		HTTPTimeout:    20 * time.Second,
		PollMinSeconds: 120,
		PollMaxSeconds: 300,
		Boards: Boards{
			Greenhouse:      []string{"airbnb", "databricks"},
			Lever:           []string{"lever"},
			SmartRecruiters: []string{"smartrecruiters"},
		},
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("TRACKER_ADDR"); v != "" {
		cfg.Addr = v
	}

	var err error
	if cfg.PollMinSeconds, err = intEnv("POLL_INTERVAL_MIN_SECONDS", cfg.PollMinSeconds); err != nil {
		return nil, err
	}
	if cfg.PollMaxSeconds, err = intEnv("POLL_INTERVAL_MAX_SECONDS", cfg.PollMaxSeconds); err != nil {
		return nil, err
	}

	timeoutSeconds, err := intEnv("HTTP_TIMEOUT_SECONDS", int(cfg.HTTPTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	if timeoutSeconds < 1 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", timeoutSeconds)
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	if path := os.Getenv("TRACKER_BOARDS_FILE"); path != "" {
		boards, err := loadBoardsFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Boards = boards
	}

	// Environment lists override whatever the file (or the defaults) supplied.
	if v, ok := os.LookupEnv("GREENHOUSE_BOARDS"); ok {
		cfg.Boards.Greenhouse = splitList(v)
	}
	if v, ok := os.LookupEnv("LEVER_COMPANIES"); ok {
		cfg.Boards.Lever = splitList(v)
	}
	if v, ok := os.LookupEnv("ASHBY_ORGANIZATIONS"); ok {
		cfg.Boards.Ashby = splitList(v)
	}
	if v, ok := os.LookupEnv("SMARTRECRUITERS_COMPANIES"); ok {
		cfg.Boards.SmartRecruiters = splitList(v)
	}
	if v, ok := os.LookupEnv("RECRUITEE_COMPANIES"); ok {
		cfg.Boards.Recruitee = splitList(v)
	}

	return cfg, nil
}

// loadBoardsFile reads the YAML boards file at path.
func loadBoardsFile(path string) (Boards, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Boards{}, fmt.Errorf("read boards file: %w", err)
	}

	var boards Boards
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &boards); err != nil {
		return Boards{}, fmt.Errorf("parse boards file %s: %w", path, err)
	}
	return boards, nil
}

// intEnv parses an integer environment variable, returning fallback when the
// variable is unset and an error when it is set but not a number.
func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// splitList splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
