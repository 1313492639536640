package calibration

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/edge-engine/internal/models"
)

// syntheticWindow builds outcomes from a model whose home probability
// sweeps the unit interval, with results drawn at that probability.
func syntheticWindow(n int, seed int64) []models.RealizedOutcome {
	rng := rand.New(rand.NewSource(seed))
	window := make([]models.RealizedOutcome, 0, n)

	for i := 0; i < n; i++ {
		pHome := 0.05 + 0.9*float64(i)/float64(n-1)
		rest := 1.0 - pHome
		raw := models.ModelPrediction{Home: pHome, Draw: rest * 0.55, Away: rest * 0.45}

		r := rng.Float64()
		var result models.Outcome
		switch {
		case r < pHome:
			result = models.OutcomeHome
		case r < pHome+raw.Draw:
			result = models.OutcomeDraw
		default:
			result = models.OutcomeAway
		}

		window = append(window, models.RealizedOutcome{
			MatchID:    uuid.New(),
			Raw:        raw,
			Result:     result,
			RecordedAt: time.Now(),
		})
	}
	return window
}

func TestFitProducesValidMonotonicState(t *testing.T) {
	fitter := NewFitter(10, 100)

	state, calErr, err := fitter.Fit(syntheticWindow(1000, 42), 3)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if state.Version != 3 {
		t.Errorf("expected version 3, got %d", state.Version)
	}
	if state.SampleSize != 1000 {
		t.Errorf("expected sample size 1000, got %d", state.SampleSize)
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("fitted state failed validation: %v", err)
	}
	if calErr < 0 {
		t.Errorf("expected non-negative calibration error, got %v", calErr)
	}
}

func TestFitFailsBelowMinSamples(t *testing.T) {
	fitter := NewFitter(10, 150)

	_, _, err := fitter.Fit(syntheticWindow(50, 1), 1)
	if !errors.Is(err, models.ErrRefitFailed) {
		t.Fatalf("expected ErrRefitFailed, got %v", err)
	}
}

func TestFitFailsOnDegenerateBins(t *testing.T) {
	// Constant model output collapses every bin onto one raw center
	window := make([]models.RealizedOutcome, 200)
	for i := range window {
		result := models.OutcomeAway
		if i%2 == 0 {
			result = models.OutcomeHome
		}
		window[i] = models.RealizedOutcome{
			MatchID:    uuid.New(),
			Raw:        models.ModelPrediction{Home: 0.5, Draw: 0.25, Away: 0.25},
			Result:     result,
			RecordedAt: time.Now(),
		}
	}

	fitter := NewFitter(10, 100)
	_, _, err := fitter.Fit(window, 1)
	if !errors.Is(err, models.ErrRefitFailed) {
		t.Fatalf("expected ErrRefitFailed for degenerate bins, got %v", err)
	}
}

func TestPoolAdjacentViolators(t *testing.T) {
	bins := []binStat{
		{rawCenter: 0.1, rate: 0.10, count: 10},
		{rawCenter: 0.3, rate: 0.40, count: 10},
		{rawCenter: 0.5, rate: 0.20, count: 10},
		{rawCenter: 0.7, rate: 0.60, count: 10},
	}

	poolAdjacentViolators(bins)

	for i := 1; i < len(bins); i++ {
		if bins[i].rate < bins[i-1].rate {
			t.Fatalf("rates not monotone after PAV: %v", bins)
		}
	}

	// The violating pair pools to its weighted mean
	if bins[1].rate != 0.30 || bins[2].rate != 0.30 {
		t.Errorf("expected pooled rate 0.30 for bins 1-2, got %v and %v", bins[1].rate, bins[2].rate)
	}
}

func TestPoolAdjacentViolatorsCascades(t *testing.T) {
	bins := []binStat{
		{rawCenter: 0.1, rate: 0.50, count: 10},
		{rawCenter: 0.3, rate: 0.40, count: 10},
		{rawCenter: 0.5, rate: 0.30, count: 20},
	}

	poolAdjacentViolators(bins)

	// All three pool into one block: (0.5*10 + 0.4*10 + 0.3*20) / 40 = 0.375
	for _, b := range bins {
		if b.rate != 0.375 {
			t.Fatalf("expected cascaded pool to 0.375, got %v", bins)
		}
	}
}

func TestEqualCountBinsMergesDuplicateCenters(t *testing.T) {
	obs := []observation{
		{raw: 0.3, hit: 1}, {raw: 0.3, hit: 0}, {raw: 0.3, hit: 1}, {raw: 0.3, hit: 0},
		{raw: 0.7, hit: 1}, {raw: 0.7, hit: 1}, {raw: 0.7, hit: 0}, {raw: 0.7, hit: 1},
	}

	bins := equalCountBins(obs, 4)
	if len(bins) != 2 {
		t.Fatalf("expected duplicate centers merged into 2 bins, got %d", len(bins))
	}
	if bins[0].rawCenter >= bins[1].rawCenter {
		t.Error("expected strictly increasing raw centers after merge")
	}
}
