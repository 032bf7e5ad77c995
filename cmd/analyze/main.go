// Package main runs the batch analysis: derive features from stored
// observations, score risk and market opportunity, and write reports.
//
// With -csv the run is self-contained: observations come from CSV exports
// and results stay in memory, which is useful for one-off analysis without
// a database. Otherwise observations are read from Postgres and feature
// vectors are written to ClickHouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"dynamic-price-optimizer/internal/config"
	"dynamic-price-optimizer/internal/dataset"
	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/observability"
	"dynamic-price-optimizer/internal/pipeline"
	"dynamic-price-optimizer/internal/reporting"
	"dynamic-price-optimizer/internal/storage"
	"dynamic-price-optimizer/internal/storage/clickhouse"
	"dynamic-price-optimizer/internal/storage/memory"
	"dynamic-price-optimizer/internal/storage/migrations"
	"dynamic-price-optimizer/internal/storage/postgres"
)

type stores struct {
	observations storage.ObservationStore
	features     storage.DerivedFeatureStore
	riskScores   storage.RiskScoreStore
	marketRows   storage.MarketAnalysisStore
}

func main() {
	csvDir := flag.String("csv", "", "Run from CSV exports in this directory instead of the databases")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated reports")
	startDate := flag.String("start", "", "Only persist scores on or after this date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "Only persist scores on or before this date (YYYY-MM-DD)")
	flag.Parse()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	from, err := parseDateFlag(*startDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -start: %v\n", err)
		os.Exit(1)
	}
	to, err := parseDateFlag(*endDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -end: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("cancelling analysis")
		cancel()
	}()

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

	st, closeStores, err := openStores(ctx, cfg, *csvDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stores: %v\n", err)
		os.Exit(1)
	}
	defer closeStores()

	p := pipeline.New(pipeline.Options{
		ObservationStore:    st.observations,
		DerivedFeatureStore: st.features,
		RiskScoreStore:      st.riskScores,
		MarketAnalysisStore: st.marketRows,
		From:                from,
		To:                  to,
		Metrics:             metrics,
		Logger:              log,
	})

	result, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Analysis completed:\n")
	fmt.Printf("  Observations: %d\n", result.ObservationsProcessed)
	fmt.Printf("  Feature rows: %d\n", result.FeatureRows)
	fmt.Printf("  Risk rows:    %d\n", result.RiskRows)
	fmt.Printf("  Market rows:  %d\n", result.MarketRows)

	if err := writeReports(ctx, st, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing reports: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Reports:      %s\n", *outputDir)
}

// openStores wires either the in-memory CSV path or the database-backed path.
func openStores(ctx context.Context, cfg *config.Config, csvDir string, log zerolog.Logger) (*stores, func(), error) {
	if csvDir != "" {
		rows, err := dataset.Load(csvDir)
		if err != nil {
			return nil, nil, err
		}

		observations := memory.NewObservationStore()
		if err := observations.InsertBulk(ctx, dataset.Observations(rows)); err != nil {
			return nil, nil, err
		}
		log.Info().Int("rows", len(rows)).Str("csv", csvDir).Msg("loaded observations from csv")

		return &stores{
			observations: observations,
			features:     memory.NewDerivedFeatureStore(),
			riskScores:   memory.NewRiskScoreStore(),
			marketRows:   memory.NewMarketAnalysisStore(),
		}, func() {}, nil
	}

	if err := cfg.RequireDatabases(); err != nil {
		return nil, nil, err
	}

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return &stores{
		observations: postgres.NewObservationStore(pool),
		features:     clickhouse.NewDerivedFeatureStore(conn),
		riskScores:   postgres.NewRiskScoreStore(pool),
		marketRows:   postgres.NewMarketAnalysisStore(pool),
	}, cleanup, nil
}

// writeReports renders the Markdown and CSV summaries from stored scores.
func writeReports(ctx context.Context, st *stores, outputDir string) error {
	var riskRecords []*domain.RiskScoreRecord
	for _, level := range []domain.RiskLevel{domain.RiskLevelLow, domain.RiskLevelMedium, domain.RiskLevelHigh} {
		records, err := st.riskScores.GetByLevel(ctx, level)
		if err != nil {
			return err
		}
		riskRecords = append(riskRecords, records...)
	}

	productIDs := make(map[string]struct{})
	for _, r := range riskRecords {
		productIDs[r.ProductID] = struct{}{}
	}

	var marketRecords []*domain.MarketAnalysisRecord
	for id := range productIDs {
		records, err := st.marketRows.GetByProductID(ctx, id)
		if err != nil {
			return err
		}
		marketRecords = append(marketRecords, records...)
	}

	report := reporting.Build(riskRecords, marketRecords)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "analysis.md"), []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, "analysis.csv"), []byte(reporting.RenderCSV(report.ProductRows)), 0o644)
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", value)
	}
	return d.UTC(), nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
