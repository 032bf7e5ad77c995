package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func TestObservationStore_InsertAndGet(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	o := &domain.Observation{
		ProductID:     "sku-1",
		Date:          day("2024-03-01"),
		Sales:         5,
		Revenue:       100,
		AvgOrderValue: 20,
	}

	if err := store.Insert(ctx, o); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByProductID(ctx, "sku-1")
	if err != nil {
		t.Fatalf("GetByProductID failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(got))
	}
	if got[0].Revenue != 100 {
		t.Errorf("Revenue mismatch: got %v, want 100", got[0].Revenue)
	}
}

func TestObservationStore_DuplicateKey(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	o := &domain.Observation{ProductID: "sku-1", Date: day("2024-03-01")}

	if err := store.Insert(ctx, o); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, o); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestObservationStore_InsertBulkAtomic(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	batch := []*domain.Observation{
		{ProductID: "sku-1", Date: day("2024-03-01")},
		{ProductID: "sku-1", Date: day("2024-03-02")},
		{ProductID: "sku-1", Date: day("2024-03-01")}, // intra-batch duplicate
	}

	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// Nothing from the failed batch should be visible.
	got, err := store.GetByProductID(ctx, "sku-1")
	if err != nil {
		t.Fatalf("GetByProductID failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty store after failed batch, got %d rows", len(got))
	}
}

func TestObservationStore_DateRangeAndOrdering(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	for _, d := range []string{"2024-03-03", "2024-03-01", "2024-03-02", "2024-03-05"} {
		if err := store.Insert(ctx, &domain.Observation{ProductID: "sku-1", Date: day(d)}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByDateRange(ctx, "sku-1", day("2024-03-02"), day("2024-03-05"))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 observations in range, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date) {
			t.Errorf("results not sorted by date: %v before %v", got[i-1].Date, got[i].Date)
		}
	}
}

func TestObservationStore_ConcurrentInsert(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := &domain.Observation{
				ProductID: "sku-1",
				Date:      day("2024-03-01").AddDate(0, 0, i),
			}
			if err := store.Insert(ctx, o); err != nil {
				t.Errorf("Insert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetByProductID(ctx, "sku-1")
	if err != nil {
		t.Fatalf("GetByProductID failed: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("expected 20 observations, got %d", len(got))
	}
}
