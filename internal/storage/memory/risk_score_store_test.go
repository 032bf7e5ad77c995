package memory

import (
	"context"
	"errors"
	"testing"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/storage"
)

func TestRiskScoreStore_UpsertReplaces(t *testing.T) {
	store := NewRiskScoreStore()
	ctx := context.Background()

	r := &domain.RiskScoreRecord{
		ProductID:   "sku-1",
		Date:        day("2024-03-01"),
		OverallRisk: 0.5,
		RiskLevel:   domain.RiskLevelMedium,
	}
	if err := store.Upsert(ctx, r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Rewriting the same key must not error and must replace the row.
	r.OverallRisk = 0.7
	r.RiskLevel = domain.RiskLevelHigh
	if err := store.Upsert(ctx, r); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := store.GetByKey(ctx, "sku-1", day("2024-03-01"))
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if got.OverallRisk != 0.7 {
		t.Errorf("OverallRisk not replaced: got %v, want 0.7", got.OverallRisk)
	}
	if got.RiskLevel != domain.RiskLevelHigh {
		t.Errorf("RiskLevel not replaced: got %s", got.RiskLevel)
	}
}

func TestRiskScoreStore_NotFound(t *testing.T) {
	store := NewRiskScoreStore()

	_, err := store.GetByKey(context.Background(), "sku-1", day("2024-03-01"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRiskScoreStore_GetByLevel(t *testing.T) {
	store := NewRiskScoreStore()
	ctx := context.Background()

	records := []*domain.RiskScoreRecord{
		{ProductID: "sku-2", Date: day("2024-03-01"), RiskLevel: domain.RiskLevelHigh},
		{ProductID: "sku-1", Date: day("2024-03-02"), RiskLevel: domain.RiskLevelHigh},
		{ProductID: "sku-1", Date: day("2024-03-01"), RiskLevel: domain.RiskLevelLow},
	}
	if err := store.UpsertBulk(ctx, records); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	high, err := store.GetByLevel(ctx, domain.RiskLevelHigh)
	if err != nil {
		t.Fatalf("GetByLevel failed: %v", err)
	}
	if len(high) != 2 {
		t.Fatalf("expected 2 high-risk rows, got %d", len(high))
	}
	if high[0].ProductID != "sku-1" || high[1].ProductID != "sku-2" {
		t.Errorf("results not ordered by product_id: %s, %s", high[0].ProductID, high[1].ProductID)
	}
}

func TestRiskScoreStore_InvalidInput(t *testing.T) {
	store := NewRiskScoreStore()

	err := store.Upsert(context.Background(), &domain.RiskScoreRecord{ProductID: ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
