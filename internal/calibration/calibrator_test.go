package calibration

import (
	"math"
	"testing"
	"time"

	"github.com/yourusername/edge-engine/internal/models"
)

func testState(version int64) *models.CalibrationState {
	state := &models.CalibrationState{
		Version:    version,
		FittedAt:   time.Now().UTC(),
		SampleSize: 500,
	}
	// Over-confident model: calibrated values pull toward the middle
	for i := range models.AllOutcomes {
		state.Curves[i] = []models.CalibrationBin{
			{RawCenter: 0.10, Calibrated: 0.14},
			{RawCenter: 0.30, Calibrated: 0.30},
			{RawCenter: 0.50, Calibrated: 0.47},
			{RawCenter: 0.70, Calibrated: 0.62},
			{RawCenter: 0.90, Calibrated: 0.80},
		}
	}
	return state
}

func ensembleWith(blended models.ModelPrediction) *models.EnsemblePrediction {
	return &models.EnsemblePrediction{Blended: blended}
}

func TestApplyColdStartPassesRawThrough(t *testing.T) {
	calibrator := NewCalibrator(NewStore())

	raw := models.ModelPrediction{Home: 0.51, Draw: 0.24, Away: 0.25}
	cp := calibrator.Apply(ensembleWith(raw))

	if !cp.Uncalibrated {
		t.Fatal("expected uncalibrated flag on cold start")
	}
	if cp.Probs != raw {
		t.Errorf("expected raw passthrough, got %+v", cp.Probs)
	}
	if cp.StateVersion != 0 {
		t.Errorf("expected state version 0 on cold start, got %d", cp.StateVersion)
	}
}

func TestApplyCalibratesAndRenormalizes(t *testing.T) {
	store := NewStore()
	store.Swap(testState(7))
	calibrator := NewCalibrator(store)

	raw := models.ModelPrediction{Home: 0.70, Draw: 0.18, Away: 0.12}
	cp := calibrator.Apply(ensembleWith(raw))

	if cp.Uncalibrated {
		t.Fatal("expected calibrated prediction")
	}
	if cp.StateVersion != 7 {
		t.Errorf("expected state version 7, got %d", cp.StateVersion)
	}
	if err := cp.Probs.Validate(); err != nil {
		t.Fatalf("calibrated triple invalid: %v", err)
	}

	// Home sits exactly on the 0.70 bin center
	if math.Abs(cp.Probs.Home-0.62) > 1e-9 {
		t.Errorf("expected calibrated home 0.62, got %v", cp.Probs.Home)
	}

	// Residual 0.38 split 0.18:0.12 between draw and away
	wantDraw := 0.38 * 0.18 / 0.30
	wantAway := 0.38 * 0.12 / 0.30
	if math.Abs(cp.Probs.Draw-wantDraw) > 1e-9 {
		t.Errorf("expected draw %v, got %v", wantDraw, cp.Probs.Draw)
	}
	if math.Abs(cp.Probs.Away-wantAway) > 1e-9 {
		t.Errorf("expected away %v, got %v", wantAway, cp.Probs.Away)
	}
}

func TestLookupInterpolatesBetweenBins(t *testing.T) {
	curve := []models.CalibrationBin{
		{RawCenter: 0.2, Calibrated: 0.1},
		{RawCenter: 0.6, Calibrated: 0.5},
	}

	// Midpoint interpolates linearly
	if got := lookup(curve, 0.4); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("expected 0.3 at midpoint, got %v", got)
	}

	// Values outside the bin centers clamp to the end bins
	if got := lookup(curve, 0.05); got != 0.1 {
		t.Errorf("expected clamp to 0.1 below range, got %v", got)
	}
	if got := lookup(curve, 0.95); got != 0.5 {
		t.Errorf("expected clamp to 0.5 above range, got %v", got)
	}
}

func TestLookupMonotoneInRawProbability(t *testing.T) {
	curve := testState(1).Curve(models.OutcomeHome)

	prev := -1.0
	for raw := 0.0; raw <= 1.0; raw += 0.01 {
		got := lookup(curve, raw)
		if got < prev {
			t.Fatalf("lookup not monotone: %v at raw %v after %v", got, raw, prev)
		}
		prev = got
	}
}

func TestApplySnapshotConsistencyAcrossSwap(t *testing.T) {
	store := NewStore()
	store.Swap(testState(1))
	calibrator := NewCalibrator(store)

	raw := models.ModelPrediction{Home: 0.50, Draw: 0.30, Away: 0.20}
	before := calibrator.Apply(ensembleWith(raw))

	store.Swap(testState(2))
	after := calibrator.Apply(ensembleWith(raw))

	if before.StateVersion != 1 || after.StateVersion != 2 {
		t.Errorf("expected versions 1 then 2, got %d then %d", before.StateVersion, after.StateVersion)
	}
}
