package memory

import (
	"context"
	"sort"
	"sync"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

func urlKey(productID, competitorURL string) string {
	return productID + "|" + competitorURL
}

// CompetitorURLStore is an in-memory implementation of storage.CompetitorURLStore.
type CompetitorURLStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CompetitorURL // keyed by (product_id, competitor_url)
}

// NewCompetitorURLStore creates a new in-memory competitor URL store.
func NewCompetitorURLStore() *CompetitorURLStore {
	return &CompetitorURLStore{
		data: make(map[string]*domain.CompetitorURL),
	}
}

// Insert adds a tracked URL. Returns ErrDuplicateKey if (product_id, competitor_url) exists.
func (s *CompetitorURLStore) Insert(_ context.Context, u *domain.CompetitorURL) error {
	if u == nil || u.ProductID == "" || u.CompetitorURL == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := urlKey(u.ProductID, u.CompetitorURL)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *u
	s.data[key] = &copy
	return nil
}

// GetByProductID retrieves all tracked URLs for a product.
func (s *CompetitorURLStore) GetByProductID(_ context.Context, productID string) ([]*domain.CompetitorURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CompetitorURL
	for _, u := range s.data {
		if u.ProductID == productID {
			copy := *u
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CompetitorURL < result[j].CompetitorURL
	})
	return result, nil
}

// GetActive retrieves all active URLs across products, ordered by product_id ASC.
func (s *CompetitorURLStore) GetActive(_ context.Context) ([]*domain.CompetitorURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CompetitorURL
	for _, u := range s.data {
		if u.IsActive {
			copy := *u
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ProductID != result[j].ProductID {
			return result[i].ProductID < result[j].ProductID
		}
		return result[i].CompetitorURL < result[j].CompetitorURL
	})
	return result, nil
}

var _ storage.CompetitorURLStore = (*CompetitorURLStore)(nil)

// CompetitorPriceStore is an in-memory implementation of storage.CompetitorPriceStore.
type CompetitorPriceStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CompetitorPrice // keyed by (product_id, competitor_url)
}

// NewCompetitorPriceStore creates a new in-memory competitor price store.
func NewCompetitorPriceStore() *CompetitorPriceStore {
	return &CompetitorPriceStore{
		data: make(map[string]*domain.CompetitorPrice),
	}
}

// Upsert writes a price sample, replacing any existing row for (product_id, competitor_url).
func (s *CompetitorPriceStore) Upsert(_ context.Context, p *domain.CompetitorPrice) error {
	if p == nil || p.ProductID == "" || p.CompetitorURL == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *p
	s.data[urlKey(p.ProductID, p.CompetitorURL)] = &copy
	return nil
}

// GetByProductID retrieves all price samples for a product.
func (s *CompetitorPriceStore) GetByProductID(_ context.Context, productID string) ([]*domain.CompetitorPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CompetitorPrice
	for _, p := range s.data {
		if p.ProductID == productID {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CompetitorURL < result[j].CompetitorURL
	})
	return result, nil
}

var _ storage.CompetitorPriceStore = (*CompetitorPriceStore)(nil)
