// Package main refreshes competitor prices by scraping all active tracked
// URLs and upserting the extracted prices into Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/config"
	"dynamic-price-optimizer/internal/observability"
	"dynamic-price-optimizer/internal/pipeline"
	"dynamic-price-optimizer/internal/scraper"
	"dynamic-price-optimizer/internal/storage/migrations"
	"dynamic-price-optimizer/internal/storage/postgres"
)

func main() {
	flag.Parse()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("cancelling collection")
		cancel()
	}()

	if cfg.PostgresDSN == "" {
		err := &apperr.ConfigError{Key: "POSTGRES_DSN", Reason: "must be set"}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying migrations: %v\n", err)
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		metrics = observability.NewMetrics("")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	fetcher := scraper.New(scraper.Options{
		Timeout:         time.Duration(cfg.ScrapeTimeoutSeconds) * time.Second,
		RequestDelay:    time.Duration(cfg.ScrapeDelaySeconds) * time.Second,
		MaxRetryElapsed: time.Duration(cfg.ScrapeMaxRetrySeconds) * time.Second,
	})

	collector := pipeline.NewCollector(pipeline.CollectorOptions{
		URLStore:   postgres.NewCompetitorURLStore(pool),
		PriceStore: postgres.NewCompetitorPriceStore(pool),
		Fetcher:    fetcher,
		Metrics:    metrics,
		Logger:     log,
	})

	result, err := collector.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Collection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Collection completed:\n")
	fmt.Printf("  URLs visited:   %d\n", result.URLsVisited)
	fmt.Printf("  Prices stored:  %d\n", result.PricesStored)
	fmt.Printf("  Prices missing: %d\n", result.PricesMissing)
	fmt.Printf("  Fetch failures: %d\n", result.FetchFailures)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
