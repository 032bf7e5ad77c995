package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// DerivedFeatureStore is an in-memory implementation of storage.DerivedFeatureStore.
type DerivedFeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DerivedFeatureVector // keyed by (product_id, date)
}

// NewDerivedFeatureStore creates a new in-memory derived feature store.
func NewDerivedFeatureStore() *DerivedFeatureStore {
	return &DerivedFeatureStore{
		data: make(map[string]*domain.DerivedFeatureVector),
	}
}

// InsertBulk adds multiple vectors. Fails entire batch on duplicate (product_id, date).
func (s *DerivedFeatureStore) InsertBulk(_ context.Context, vectors []*domain.DerivedFeatureVector) error {
	if len(vectors) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(vectors))
	for _, v := range vectors {
		if v == nil || v.ProductID == "" || v.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := dayKey(v.ProductID, v.Date)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, v := range vectors {
		copy := *v
		s.data[dayKey(v.ProductID, v.Date)] = &copy
	}
	return nil
}

// GetByProductID retrieves all vectors for a product, ordered by date ASC.
func (s *DerivedFeatureStore) GetByProductID(_ context.Context, productID string) ([]*domain.DerivedFeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DerivedFeatureVector
	for _, v := range s.data {
		if v.ProductID == productID {
			copy := *v
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetByDateRange retrieves vectors for a product within [start, end] (inclusive).
func (s *DerivedFeatureStore) GetByDateRange(_ context.Context, productID string, start, end time.Time) ([]*domain.DerivedFeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DerivedFeatureVector
	for _, v := range s.data {
		if v.ProductID != productID {
			continue
		}
		if v.Date.Before(start) || v.Date.After(end) {
			continue
		}
		copy := *v
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

var _ storage.DerivedFeatureStore = (*DerivedFeatureStore)(nil)
