package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// MarketAnalysisStore is an in-memory implementation of storage.MarketAnalysisStore.
type MarketAnalysisStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MarketAnalysisRecord // keyed by (product_id, date)
}

// NewMarketAnalysisStore creates a new in-memory market analysis store.
func NewMarketAnalysisStore() *MarketAnalysisStore {
	return &MarketAnalysisStore{
		data: make(map[string]*domain.MarketAnalysisRecord),
	}
}

// Upsert writes a record, replacing any existing row for (product_id, date).
func (s *MarketAnalysisStore) Upsert(_ context.Context, m *domain.MarketAnalysisRecord) error {
	if m == nil || m.ProductID == "" || m.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *m
	s.data[dayKey(m.ProductID, m.Date)] = &copy
	return nil
}

// UpsertBulk writes multiple records atomically.
func (s *MarketAnalysisStore) UpsertBulk(_ context.Context, records []*domain.MarketAnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range records {
		if m == nil || m.ProductID == "" || m.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}
	for _, m := range records {
		copy := *m
		s.data[dayKey(m.ProductID, m.Date)] = &copy
	}
	return nil
}

// GetByKey retrieves the record for (product_id, date). Returns ErrNotFound if not exists.
func (s *MarketAnalysisStore) GetByKey(_ context.Context, productID string, date time.Time) (*domain.MarketAnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[dayKey(productID, date)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *m
	return &copy, nil
}

// GetByProductID retrieves all records for a product, ordered by date ASC.
func (s *MarketAnalysisStore) GetByProductID(_ context.Context, productID string) ([]*domain.MarketAnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketAnalysisRecord
	for _, m := range s.data {
		if m.ProductID == productID {
			copy := *m
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

var _ storage.MarketAnalysisStore = (*MarketAnalysisStore)(nil)
