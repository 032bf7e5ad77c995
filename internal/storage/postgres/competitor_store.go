package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// CompetitorURLStore implements storage.CompetitorURLStore using PostgreSQL.
type CompetitorURLStore struct {
	pool *Pool
}

// NewCompetitorURLStore creates a new CompetitorURLStore.
func NewCompetitorURLStore(pool *Pool) *CompetitorURLStore {
	return &CompetitorURLStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CompetitorURLStore = (*CompetitorURLStore)(nil)

// Insert adds a tracked URL. Returns ErrDuplicateKey if (product_id, competitor_url) exists.
func (s *CompetitorURLStore) Insert(ctx context.Context, u *domain.CompetitorURL) error {
	query := `
		INSERT INTO competitor_urls (product_id, competitor_url, is_active)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, u.ProductID, u.CompetitorURL, u.IsActive)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert competitor url: %w", err)
	}
	return nil
}

// GetByProductID retrieves all tracked URLs for a product.
func (s *CompetitorURLStore) GetByProductID(ctx context.Context, productID string) ([]*domain.CompetitorURL, error) {
	query := `
		SELECT product_id, competitor_url, is_active
		FROM competitor_urls
		WHERE product_id = $1
		ORDER BY competitor_url ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get competitor urls by product id: %w", err)
	}
	defer rows.Close()

	return scanCompetitorURLs(rows)
}

// GetActive retrieves all active URLs across products, ordered by product_id ASC.
func (s *CompetitorURLStore) GetActive(ctx context.Context) ([]*domain.CompetitorURL, error) {
	query := `
		SELECT product_id, competitor_url, is_active
		FROM competitor_urls
		WHERE is_active
		ORDER BY product_id ASC, competitor_url ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active competitor urls: %w", err)
	}
	defer rows.Close()

	return scanCompetitorURLs(rows)
}

func scanCompetitorURLs(rows pgx.Rows) ([]*domain.CompetitorURL, error) {
	var urls []*domain.CompetitorURL

	for rows.Next() {
		var u domain.CompetitorURL
		if err := rows.Scan(&u.ProductID, &u.CompetitorURL, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scan competitor url row: %w", err)
		}
		urls = append(urls, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitor url rows: %w", err)
	}

	return urls, nil
}

// CompetitorPriceStore implements storage.CompetitorPriceStore using PostgreSQL.
type CompetitorPriceStore struct {
	pool *Pool
}

// NewCompetitorPriceStore creates a new CompetitorPriceStore.
func NewCompetitorPriceStore(pool *Pool) *CompetitorPriceStore {
	return &CompetitorPriceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CompetitorPriceStore = (*CompetitorPriceStore)(nil)

// Upsert writes a price sample, replacing any existing row for (product_id, competitor_url).
func (s *CompetitorPriceStore) Upsert(ctx context.Context, p *domain.CompetitorPrice) error {
	query := `
		INSERT INTO competitor_prices (product_id, competitor_url, price, observed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, competitor_url) DO UPDATE SET
			price = EXCLUDED.price,
			observed_at = EXCLUDED.observed_at
	`

	_, err := s.pool.Exec(ctx, query, p.ProductID, p.CompetitorURL, p.Price, p.ObservedAt)
	if err != nil {
		return fmt.Errorf("upsert competitor price: %w", err)
	}
	return nil
}

// GetByProductID retrieves all price samples for a product.
func (s *CompetitorPriceStore) GetByProductID(ctx context.Context, productID string) ([]*domain.CompetitorPrice, error) {
	query := `
		SELECT product_id, competitor_url, price, observed_at
		FROM competitor_prices
		WHERE product_id = $1
		ORDER BY competitor_url ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get competitor prices by product id: %w", err)
	}
	defer rows.Close()

	var prices []*domain.CompetitorPrice
	for rows.Next() {
		var p domain.CompetitorPrice
		if err := rows.Scan(&p.ProductID, &p.CompetitorURL, &p.Price, &p.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan competitor price row: %w", err)
		}
		p.ObservedAt = p.ObservedAt.UTC()
		prices = append(prices, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitor price rows: %w", err)
	}
	return prices, nil
}
