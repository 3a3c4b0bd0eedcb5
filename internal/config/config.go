package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	GitHubToken  string
	GitHubAPIURL string

	Target         int
	PerPage        int
	MaxPages       int
	Delay          time.Duration
	RequestTimeout time.Duration

	RateLimitRetries int
	RateLimitMaxWait time.Duration

	CSVOutput     string
	SummaryOutput string
	ChartOutput   string

	// Publishing is disabled when NATSUrl is empty
	NATSUrl     string
	NATSSubject string
}

const (
	defaultTarget        = 1200
	defaultPerPage       = 100
	defaultMaxPages      = 10
	defaultDelaySeconds  = 2.0
	defaultCSVOutput     = "data/github_healthcare_repositories.csv"
	defaultSummaryOutput = "data/github_healthcare_summary.md"
	defaultNATSSubject   = "healthcare.repositories"

	// GitHub search never returns more than 100 items per page.
	maxPerPage = 100
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL:  os.Getenv("GITHUB_API_URL"),
		CSVOutput:     os.Getenv("CSV_OUTPUT"),
		SummaryOutput: os.Getenv("SUMMARY_OUTPUT"),
		ChartOutput:   os.Getenv("CHART_OUTPUT"),
		NATSUrl:       os.Getenv("NATS_URL"),
		NATSSubject:   os.Getenv("NATS_SUBJECT"),
	}

	var err error
	if cfg.Target, err = envInt("COLLECT_TARGET", defaultTarget); err != nil {
		return nil, err
	}
	if cfg.PerPage, err = envInt("COLLECT_PER_PAGE", defaultPerPage); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = envInt("COLLECT_MAX_PAGES", defaultMaxPages); err != nil {
		return nil, err
	}
	if cfg.RateLimitRetries, err = envInt("RATE_LIMIT_RETRIES", 2); err != nil {
		return nil, err
	}

	sleep, err := envFloat("COLLECT_SLEEP", defaultDelaySeconds)
	if err != nil {
		return nil, err
	}
	cfg.Delay = Seconds(sleep)

	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 45*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitMaxWait, err = envDuration("RATE_LIMIT_MAX_WAIT", 90*time.Second); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.CSVOutput == "" {
		cfg.CSVOutput = defaultCSVOutput
	}
	if cfg.SummaryOutput == "" {
		cfg.SummaryOutput = defaultSummaryOutput
	}
	if cfg.NATSSubject == "" {
		cfg.NATSSubject = defaultNATSSubject
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges. It is called again after command-line overrides,
// so errors name the environment variable behind each field.
func (c *Config) Validate() error {
	if c.Target <= 0 {
		return fmt.Errorf("COLLECT_TARGET must be positive, got %d", c.Target)
	}
	if c.PerPage <= 0 || c.PerPage > maxPerPage {
		return fmt.Errorf("COLLECT_PER_PAGE must be between 1 and %d, got %d", maxPerPage, c.PerPage)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("COLLECT_MAX_PAGES must be positive, got %d", c.MaxPages)
	}
	if c.Delay < 0 {
		return fmt.Errorf("COLLECT_SLEEP must not be negative, got %s", c.Delay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitRetries < 0 {
		return fmt.Errorf("RATE_LIMIT_RETRIES must not be negative, got %d", c.RateLimitRetries)
	}
	if c.RateLimitMaxWait <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_WAIT must be positive, got %s", c.RateLimitMaxWait)
	}
	if c.CSVOutput == "" {
		return fmt.Errorf("CSV_OUTPUT must not be empty")
	}
	if c.SummaryOutput == "" {
		return fmt.Errorf("SUMMARY_OUTPUT must not be empty")
	}
	return nil
}

// Seconds converts a fractional number of seconds into a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number of seconds: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 45s: %w", key, err)
	}
	return d, nil
}
