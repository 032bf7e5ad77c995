package storage

import (
	"context"
	"time"

	"dynamic-price-optimizer/internal/domain"
)

// ObservationStore provides access to observations storage.
// Observations are append-only: one immutable row per (product_id, date).
type ObservationStore interface {
	// Insert adds a new observation. Returns ErrDuplicateKey if (product_id, date) exists.
	Insert(ctx context.Context, o *domain.Observation) error

	// InsertBulk adds multiple observations atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, observations []*domain.Observation) error

	// GetByProductID retrieves all observations for a product, ordered by date ASC.
	GetByProductID(ctx context.Context, productID string) ([]*domain.Observation, error)

	// GetByDateRange retrieves observations for a product within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, productID string, start, end time.Time) ([]*domain.Observation, error)

	// GetAll retrieves all observations, ordered by product_id ASC, date ASC.
	GetAll(ctx context.Context) ([]*domain.Observation, error)
}

// RiskScoreStore provides access to risk_scores storage.
// Scores are recomputable, so writes replace any existing row for the key.
type RiskScoreStore interface {
	// Upsert writes a score, replacing any existing row for (product_id, date).
	Upsert(ctx context.Context, r *domain.RiskScoreRecord) error

	// UpsertBulk writes multiple scores atomically.
	UpsertBulk(ctx context.Context, records []*domain.RiskScoreRecord) error

	// GetByKey retrieves the score for (product_id, date). Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, productID string, date time.Time) (*domain.RiskScoreRecord, error)

	// GetByProductID retrieves all scores for a product, ordered by date ASC.
	GetByProductID(ctx context.Context, productID string) ([]*domain.RiskScoreRecord, error)

	// GetByLevel retrieves all scores at a given risk level, ordered by product_id ASC, date ASC.
	GetByLevel(ctx context.Context, level domain.RiskLevel) ([]*domain.RiskScoreRecord, error)
}

// MarketAnalysisStore provides access to market_analysis storage.
// Same upsert lifecycle as RiskScoreStore.
type MarketAnalysisStore interface {
	// Upsert writes a record, replacing any existing row for (product_id, date).
	Upsert(ctx context.Context, m *domain.MarketAnalysisRecord) error

	// UpsertBulk writes multiple records atomically.
	UpsertBulk(ctx context.Context, records []*domain.MarketAnalysisRecord) error

	// GetByKey retrieves the record for (product_id, date). Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, productID string, date time.Time) (*domain.MarketAnalysisRecord, error)

	// GetByProductID retrieves all records for a product, ordered by date ASC.
	GetByProductID(ctx context.Context, productID string) ([]*domain.MarketAnalysisRecord, error)
}

// DerivedFeatureStore provides access to derived_features storage.
type DerivedFeatureStore interface {
	// InsertBulk adds multiple vectors. Fails entire batch on duplicate (product_id, date).
	InsertBulk(ctx context.Context, vectors []*domain.DerivedFeatureVector) error

	// GetByProductID retrieves all vectors for a product, ordered by date ASC.
	GetByProductID(ctx context.Context, productID string) ([]*domain.DerivedFeatureVector, error)

	// GetByDateRange retrieves vectors for a product within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, productID string, start, end time.Time) ([]*domain.DerivedFeatureVector, error)
}

// CompetitorURLStore provides access to competitor_urls storage.
type CompetitorURLStore interface {
	// Insert adds a tracked URL. Returns ErrDuplicateKey if (product_id, competitor_url) exists.
	Insert(ctx context.Context, u *domain.CompetitorURL) error

	// GetByProductID retrieves all tracked URLs for a product.
	GetByProductID(ctx context.Context, productID string) ([]*domain.CompetitorURL, error)

	// GetActive retrieves all active URLs across products, ordered by product_id ASC.
	GetActive(ctx context.Context) ([]*domain.CompetitorURL, error)
}

// CompetitorPriceStore provides access to competitor_prices storage.
// Prices are rewritten in place per (product_id, competitor_url) on each
// collection run.
type CompetitorPriceStore interface {
	// Upsert writes a price sample, replacing any existing row for (product_id, competitor_url).
	Upsert(ctx context.Context, p *domain.CompetitorPrice) error

	// GetByProductID retrieves all price samples for a product.
	GetByProductID(ctx context.Context, productID string) ([]*domain.CompetitorPrice, error)
}
