package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/edge-engine/internal/models"
)

func TestMemoryOutcomeRepositoryWindow(t *testing.T) {
	repo := NewMemoryOutcomeRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, models.RealizedOutcome{
			MatchID:    uuid.New(),
			Raw:        models.ModelPrediction{Home: 0.5, Draw: 0.25, Away: 0.25},
			Result:     models.OutcomeHome,
			RecordedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 outcomes, got %d", count)
	}

	window, err := repo.Window(ctx, 3)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if len(window) != 3 {
		t.Errorf("expected window of 3, got %d", len(window))
	}

	full, err := repo.Window(ctx, 100)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if len(full) != 5 {
		t.Errorf("expected full window of 5, got %d", len(full))
	}
}

func TestMemoryReportRepositoryRecent(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	for v := int64(1); v <= 3; v++ {
		err := repo.Save(ctx, models.RefitReport{Version: v, Committed: true, SampleSize: 100})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(recent))
	}
	if recent[0].Version != 3 || recent[1].Version != 2 {
		t.Errorf("expected newest first, got versions %d, %d", recent[0].Version, recent[1].Version)
	}
}
