package ensemble

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourusername/edge-engine/internal/models"
)

func countingModel(name string, pred models.ModelPrediction, calls *int64) Model {
	return &StaticModel{
		ModelName: name,
		Fn: func(ctx context.Context, features models.FeatureVector) (models.ModelPrediction, error) {
			atomic.AddInt64(calls, 1)
			return pred, nil
		},
	}
}

func TestCachedCombinerReturnsIdenticalEnsemble(t *testing.T) {
	var calls int64
	modelSet := []Model{
		countingModel("forest", models.ModelPrediction{Home: 0.50, Draw: 0.25, Away: 0.25}, &calls),
		countingModel("boosted", models.ModelPrediction{Home: 0.55, Draw: 0.20, Away: 0.25}, &calls),
	}
	weights := map[string]float64{"forest": 0.6, "boosted": 0.4}

	combiner, err := NewCombiner(modelSet, weights, 2, quietLogger())
	if err != nil {
		t.Fatalf("NewCombiner failed: %v", err)
	}
	cached := NewCachedCombiner(combiner, time.Minute)

	features := models.FeatureVector{0.1, 0.2, 0.3}
	first, err := cached.Combine(context.Background(), features)
	if err != nil {
		t.Fatalf("first Combine failed: %v", err)
	}
	second, err := cached.Combine(context.Background(), features)
	if err != nil {
		t.Fatalf("second Combine failed: %v", err)
	}

	if first != second {
		t.Error("expected cached Combine to return the identical ensemble")
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("expected 2 model calls (one per model, once), got %d", got)
	}
}

func TestCachedCombinerDistinctVectorsMiss(t *testing.T) {
	var calls int64
	modelSet := []Model{
		countingModel("forest", models.ModelPrediction{Home: 0.50, Draw: 0.25, Away: 0.25}, &calls),
		countingModel("boosted", models.ModelPrediction{Home: 0.55, Draw: 0.20, Away: 0.25}, &calls),
	}
	weights := map[string]float64{"forest": 0.6, "boosted": 0.4}

	combiner, err := NewCombiner(modelSet, weights, 2, quietLogger())
	if err != nil {
		t.Fatalf("NewCombiner failed: %v", err)
	}
	cached := NewCachedCombiner(combiner, time.Minute)

	if _, err := cached.Combine(context.Background(), models.FeatureVector{1}); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if _, err := cached.Combine(context.Background(), models.FeatureVector{2}); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	if got := atomic.LoadInt64(&calls); got != 4 {
		t.Errorf("expected 4 model calls for two distinct vectors, got %d", got)
	}
}

func TestCachedCombinerSkipsDegradedEnsembles(t *testing.T) {
	var calls int64
	modelSet := []Model{
		countingModel("forest", models.ModelPrediction{Home: 0.50, Draw: 0.25, Away: 0.25}, &calls),
		countingModel("boosted", models.ModelPrediction{Home: 0.55, Draw: 0.20, Away: 0.25}, &calls),
		failingModel("elo"),
	}
	weights := map[string]float64{"forest": 0.4, "boosted": 0.35, "elo": 0.25}

	combiner, err := NewCombiner(modelSet, weights, 2, quietLogger())
	if err != nil {
		t.Fatalf("NewCombiner failed: %v", err)
	}
	cached := NewCachedCombiner(combiner, time.Minute)

	features := models.FeatureVector{9, 9}
	if _, err := cached.Combine(context.Background(), features); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if _, err := cached.Combine(context.Background(), features); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	// Degraded ensembles are not cached, so both calls hit the models
	if got := atomic.LoadInt64(&calls); got != 4 {
		t.Errorf("expected 4 model calls with caching disabled for degraded ensembles, got %d", got)
	}
}
