// Package pipeline coordinates the batch analysis run:
// observations → derived features → risk scores → market analysis.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/feature"
	"dynamic-price-optimizer/internal/market"
	"dynamic-price-optimizer/internal/observability"
	"dynamic-price-optimizer/internal/risk"
	"dynamic-price-optimizer/internal/storage"
)

// Pipeline runs the analysis over all stored observations.
type Pipeline struct {
	observations storage.ObservationStore
	features     storage.DerivedFeatureStore
	riskScores   storage.RiskScoreStore
	marketRows   storage.MarketAnalysisStore

	from time.Time
	to   time.Time

	riskEngine   *risk.Engine
	marketEngine *market.Engine

	metrics *observability.Metrics
	log     zerolog.Logger
}

// Options for creating a Pipeline.
type Options struct {
	ObservationStore    storage.ObservationStore
	DerivedFeatureStore storage.DerivedFeatureStore
	RiskScoreStore      storage.RiskScoreStore
	MarketAnalysisStore storage.MarketAnalysisStore

	// From and To bound the dates whose scores are persisted, inclusive.
	// Zero values leave the corresponding side unbounded. Rolling features
	// are always computed over the full history so windowed runs see the
	// same moving averages as full runs.
	From time.Time
	To   time.Time

	// Metrics is optional; nil disables instrumentation.
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// New creates a new Pipeline with default scoring weights.
func New(opts Options) *Pipeline {
	return &Pipeline{
		observations: opts.ObservationStore,
		features:     opts.DerivedFeatureStore,
		riskScores:   opts.RiskScoreStore,
		marketRows:   opts.MarketAnalysisStore,
		from:         opts.From,
		to:           opts.To,
		riskEngine:   risk.NewEngine(risk.DefaultWeights()),
		marketEngine: market.NewEngine(market.DefaultWeights()),
		metrics:      opts.Metrics,
		log:          opts.Logger,
	}
}

// Result contains counts from a pipeline run.
type Result struct {
	ObservationsProcessed int
	FeatureRows           int
	RiskRows              int
	MarketRows            int
}

// Run executes the full analysis over all stored observations.
//
// All three outputs are computed in memory first; nothing is persisted until
// every stage has succeeded, so a failing stage leaves the stores untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	result, err := p.run(ctx)

	if p.metrics != nil {
		p.metrics.PipelineDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			p.metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		} else {
			p.metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
			p.metrics.LastSuccessfulAnalysis.SetToCurrentTime()
		}
	}
	return result, err
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	observations, err := p.observations.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	p.log.Info().Int("observations", len(observations)).Msg("loaded observations")

	result := &Result{ObservationsProcessed: len(observations)}
	if len(observations) == 0 {
		return result, nil
	}

	vectors, err := feature.Transform(observations)
	if err != nil {
		return nil, fmt.Errorf("derive features: %w", err)
	}

	riskRecords, err := p.riskEngine.Score(observations, vectors)
	if err != nil {
		return nil, fmt.Errorf("score risk: %w", err)
	}

	marketRecords, err := p.marketEngine.Score(observations, vectors)
	if err != nil {
		return nil, fmt.Errorf("analyze market: %w", err)
	}

	vectors = filterWindow(vectors, p.from, p.to, func(v *domain.DerivedFeatureVector) time.Time { return v.Date })
	riskRecords = filterWindow(riskRecords, p.from, p.to, func(r *domain.RiskScoreRecord) time.Time { return r.Date })
	marketRecords = filterWindow(marketRecords, p.from, p.to, func(r *domain.MarketAnalysisRecord) time.Time { return r.Date })

	if err := p.persist(ctx, vectors, riskRecords, marketRecords, result); err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.ObservationsProcessed.Add(float64(len(observations)))
		p.metrics.FeatureRowsStored.Add(float64(result.FeatureRows))
		p.metrics.RiskScoresStored.Add(float64(result.RiskRows))
		p.metrics.MarketRowsStored.Add(float64(result.MarketRows))
	}

	p.log.Info().
		Int("feature_rows", result.FeatureRows).
		Int("risk_rows", result.RiskRows).
		Int("market_rows", result.MarketRows).
		Msg("analysis run complete")

	return result, nil
}

// filterWindow keeps records whose date falls within [from, to] inclusive.
// A zero bound leaves that side open.
func filterWindow[T any](records []T, from, to time.Time, date func(T) time.Time) []T {
	if from.IsZero() && to.IsZero() {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		d := date(r)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (p *Pipeline) persist(
	ctx context.Context,
	vectors []*domain.DerivedFeatureVector,
	riskRecords []*domain.RiskScoreRecord,
	marketRecords []*domain.MarketAnalysisRecord,
	result *Result,
) error {
	// Features are append-only and the store rejects a batch containing any
	// stored (product_id, date) key. A rerun recomputes rows for days that
	// are already persisted, so those rows are dropped up front and only the
	// genuinely new ones are inserted.
	newVectors, err := p.unstoredVectors(ctx, vectors)
	if err != nil {
		return fmt.Errorf("check stored features: %w", err)
	}
	if skipped := len(vectors) - len(newVectors); skipped > 0 {
		p.log.Debug().Int("rows", skipped).Msg("feature rows already stored, skipping")
	}
	if len(newVectors) > 0 {
		if err := p.features.InsertBulk(ctx, newVectors); err != nil {
			return fmt.Errorf("store derived features: %w", err)
		}
	}
	result.FeatureRows = len(newVectors)

	if err := p.riskScores.UpsertBulk(ctx, riskRecords); err != nil {
		return fmt.Errorf("store risk scores: %w", err)
	}
	result.RiskRows = len(riskRecords)

	if err := p.marketRows.UpsertBulk(ctx, marketRecords); err != nil {
		return fmt.Errorf("store market analysis: %w", err)
	}
	result.MarketRows = len(marketRecords)

	return nil
}

// unstoredVectors drops vectors whose (product_id, date) key exists in the
// feature store. A stored row is a recomputation of the same inputs, so the
// kept slice is exactly what an incremental rerun still has to persist.
func (p *Pipeline) unstoredVectors(ctx context.Context, vectors []*domain.DerivedFeatureVector) ([]*domain.DerivedFeatureVector, error) {
	storedDates := make(map[string]map[string]struct{})
	kept := make([]*domain.DerivedFeatureVector, 0, len(vectors))
	for _, v := range vectors {
		dates, ok := storedDates[v.ProductID]
		if !ok {
			existing, err := p.features.GetByProductID(ctx, v.ProductID)
			if err != nil {
				return nil, err
			}
			dates = make(map[string]struct{}, len(existing))
			for _, e := range existing {
				dates[e.Date.UTC().Format("2006-01-02")] = struct{}{}
			}
			storedDates[v.ProductID] = dates
		}
		if _, exists := dates[v.Date.UTC().Format("2006-01-02")]; exists {
			continue
		}
		kept = append(kept, v)
	}
	return kept, nil
}
