package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// RiskScoreStore is an in-memory implementation of storage.RiskScoreStore.
type RiskScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RiskScoreRecord // keyed by (product_id, date)
}

// NewRiskScoreStore creates a new in-memory risk score store.
func NewRiskScoreStore() *RiskScoreStore {
	return &RiskScoreStore{
		data: make(map[string]*domain.RiskScoreRecord),
	}
}

// Upsert writes a score, replacing any existing row for (product_id, date).
func (s *RiskScoreStore) Upsert(_ context.Context, r *domain.RiskScoreRecord) error {
	if r == nil || r.ProductID == "" || r.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *r
	s.data[dayKey(r.ProductID, r.Date)] = &copy
	return nil
}

// UpsertBulk writes multiple scores atomically.
func (s *RiskScoreStore) UpsertBulk(_ context.Context, records []*domain.RiskScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil || r.ProductID == "" || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}
	for _, r := range records {
		copy := *r
		s.data[dayKey(r.ProductID, r.Date)] = &copy
	}
	return nil
}

// GetByKey retrieves the score for (product_id, date). Returns ErrNotFound if not exists.
func (s *RiskScoreStore) GetByKey(_ context.Context, productID string, date time.Time) (*domain.RiskScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[dayKey(productID, date)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

// GetByProductID retrieves all scores for a product, ordered by date ASC.
func (s *RiskScoreStore) GetByProductID(_ context.Context, productID string) ([]*domain.RiskScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RiskScoreRecord
	for _, r := range s.data {
		if r.ProductID == productID {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetByLevel retrieves all scores at a given risk level, ordered by product_id ASC, date ASC.
func (s *RiskScoreStore) GetByLevel(_ context.Context, level domain.RiskLevel) ([]*domain.RiskScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RiskScoreRecord
	for _, r := range s.data {
		if r.RiskLevel == level {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ProductID != result[j].ProductID {
			return result[i].ProductID < result[j].ProductID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

var _ storage.RiskScoreStore = (*RiskScoreStore)(nil)
