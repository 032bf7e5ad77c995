// Package memory provides in-memory store implementations backed by
// mutex-guarded maps. Used in unit tests and for single-shot CLI runs
// that operate purely on CSV input.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

// dayKey keys per-day records by product and calendar day.
func dayKey(productID string, date time.Time) string {
	return productID + "|" + date.UTC().Format("2006-01-02")
}

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Observation // keyed by (product_id, date)
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[string]*domain.Observation),
	}
}

// Insert adds a new observation. Returns ErrDuplicateKey if (product_id, date) exists.
func (s *ObservationStore) Insert(_ context.Context, o *domain.Observation) error {
	if o == nil || o.ProductID == "" || o.Date.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(o.ProductID, o.Date)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *o
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple observations atomically. Fails entire batch on any duplicate.
func (s *ObservationStore) InsertBulk(_ context.Context, observations []*domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(observations))
	for _, o := range observations {
		if o == nil || o.ProductID == "" || o.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := dayKey(o.ProductID, o.Date)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, o := range observations {
		copy := *o
		s.data[dayKey(o.ProductID, o.Date)] = &copy
	}
	return nil
}

// GetByProductID retrieves all observations for a product, ordered by date ASC.
func (s *ObservationStore) GetByProductID(_ context.Context, productID string) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.ProductID == productID {
			copy := *o
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetByDateRange retrieves observations for a product within [start, end] (inclusive).
func (s *ObservationStore) GetByDateRange(_ context.Context, productID string, start, end time.Time) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Observation
	for _, o := range s.data {
		if o.ProductID != productID {
			continue
		}
		if o.Date.Before(start) || o.Date.After(end) {
			continue
		}
		copy := *o
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetAll retrieves all observations, ordered by product_id ASC, date ASC.
func (s *ObservationStore) GetAll(_ context.Context) ([]*domain.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Observation, 0, len(s.data))
	for _, o := range s.data {
		copy := *o
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ProductID != result[j].ProductID {
			return result[i].ProductID < result[j].ProductID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

var _ storage.ObservationStore = (*ObservationStore)(nil)
