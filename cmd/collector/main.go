package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/klimeurt/healthrepo-collector/internal/collector"
	"github.com/klimeurt/healthrepo-collector/internal/config"
	"github.com/klimeurt/healthrepo-collector/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// A missing .env file is fine; real environment variables take precedence
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:]))
}

// run executes one collection and returns the process exit code.
func run(args []string) int {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		return 1
	}

	fs := flag.NewFlagSet("collector", flag.ContinueOnError)
	bindFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("Invalid arguments: %v", err)
		return 1
	}

	// Create scanner
	scanner, err := collector.New(cfg, log)
	if err != nil {
		log.Errorf("Failed to create scanner: %v", err)
		return 1
	}
	defer scanner.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coll, stats := scanner.Collect(ctx, collector.DefaultQueries)

	// Whatever was collected is written, even after failed queries
	if err := storage.WriteCSV(cfg.CSVOutput, coll.Sorted()); err != nil {
		log.WithError(err).Error("Failed to write CSV export")
		return 1
	}

	summary := storage.Summarize(coll, stats)
	if err := storage.WriteSummary(cfg.SummaryOutput, summary); err != nil {
		log.WithError(err).Error("Failed to write summary")
		return 1
	}

	if cfg.ChartOutput != "" {
		if err := storage.WriteChart(cfg.ChartOutput, summary); err != nil {
			log.WithError(err).Error("Failed to write chart")
			return 1
		}
		log.Infof("Chart: %s", cfg.ChartOutput)
	}

	log.Infof("Collected %d repositories", summary.Total)
	log.Infof("CSV: %s", cfg.CSVOutput)
	log.Infof("Summary: %s", cfg.SummaryOutput)

	if len(stats.Failures) > 0 {
		log.Warnf("%d queries failed; the export holds partial results", len(stats.Failures))
	}
	if summary.Total < cfg.Target {
		log.Warn("Target not reached. Add more queries or rerun with broader keywords.")
	}
	return 0
}

// bindFlags registers command-line overrides for the environment configuration.
func bindFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.IntVar(&cfg.Target, "target", cfg.Target, "Target number of unique repositories")
	fs.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Max pages per query (GitHub cap: 10)")
	fs.IntVar(&cfg.PerPage, "per-page", cfg.PerPage, "Items per page")
	fs.Func("sleep", "Sleep between requests in seconds (default "+cfg.Delay.String()+")", func(s string) error {
		d, err := parseSeconds(s)
		if err != nil {
			return err
		}
		cfg.Delay = d
		return nil
	})
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "HTTP request timeout")
	fs.StringVar(&cfg.CSVOutput, "csv-output", cfg.CSVOutput, "Output CSV path")
	fs.StringVar(&cfg.SummaryOutput, "summary-output", cfg.SummaryOutput, "Output summary markdown path")
	fs.StringVar(&cfg.ChartOutput, "chart-output", cfg.ChartOutput, "Optional output HTML chart path")
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("sleep must be a number of seconds: %w", err)
	}
	return config.Seconds(f), nil
}
