package edge

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func defaultDetector() *Detector {
	return NewDetector(0.05, 0.50, 0.10, quietLogger())
}

func calibrated(home, draw, away float64) models.CalibratedPrediction {
	return models.CalibratedPrediction{
		Probs:        models.ModelPrediction{Home: home, Draw: draw, Away: away},
		StateVersion: 1,
	}
}

func ensemble(disagreement float64) *models.EnsemblePrediction {
	return &models.EnsemblePrediction{Disagreement: disagreement}
}

func TestDetectEmitsValueBet(t *testing.T) {
	detector := defaultDetector()

	// Calibrated home 0.55 against 2.10: implied after de-vig ~0.476
	cp := calibrated(0.55, 0.25, 0.20)
	odds := models.MarketOdds{Bookmaker: "bet365", Home: 2.10, Draw: 3.60, Away: 4.00}

	bet, err := detector.Detect(uuid.New(), cp, ensemble(0.03), odds)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if bet == nil {
		t.Fatal("expected a value bet")
	}
	if bet.Outcome != models.OutcomeHome {
		t.Errorf("expected home outcome, got %s", bet.Outcome)
	}
	if bet.Edge < 0.05 {
		t.Errorf("expected edge above threshold, got %v", bet.Edge)
	}
	if math.Abs(bet.Edge-0.074) > 0.005 {
		t.Errorf("expected edge near 0.074, got %v", bet.Edge)
	}
	if bet.Tier != models.TierValue {
		t.Errorf("expected value tier, got %s", bet.Tier)
	}
}

func TestDetectPremiumTier(t *testing.T) {
	detector := defaultDetector()

	cp := calibrated(0.80, 0.12, 0.08)
	odds := models.MarketOdds{Bookmaker: "bet365", Home: 1.60, Draw: 5.0, Away: 8.0}

	bet, err := detector.Detect(uuid.New(), cp, ensemble(0.02), odds)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if bet == nil {
		t.Fatal("expected a value bet")
	}
	if bet.Tier != models.TierPremium {
		t.Errorf("expected premium tier for edge %v confidence %v, got %s", bet.Edge, bet.Confidence, bet.Tier)
	}
}

func TestDetectInvalidOddsIsolated(t *testing.T) {
	detector := defaultDetector()

	cp := calibrated(0.55, 0.25, 0.20)
	bad := models.MarketOdds{Bookmaker: "pinnacle", Home: 2.10, Draw: 3.60, Away: 0}

	bet, err := detector.Detect(uuid.New(), cp, ensemble(0.03), bad)
	if !errors.Is(err, models.ErrInvalidOdds) {
		t.Fatalf("expected ErrInvalidOdds, got %v", err)
	}
	if bet != nil {
		t.Error("expected no bet with invalid odds")
	}

	// The same prediction against a healthy book still works
	good := models.MarketOdds{Bookmaker: "bet365", Home: 2.10, Draw: 3.60, Away: 4.20}
	bet, err = detector.Detect(uuid.New(), cp, ensemble(0.03), good)
	if err != nil {
		t.Fatalf("Detect failed on valid odds: %v", err)
	}
	if bet == nil {
		t.Fatal("expected value bet from the unaffected bookmaker")
	}
}

func TestDetectSuppressedWhenUncalibrated(t *testing.T) {
	detector := defaultDetector()

	cp := calibrated(0.60, 0.25, 0.15)
	cp.Uncalibrated = true
	cp.StateVersion = 0
	odds := models.MarketOdds{Bookmaker: "bet365", Home: 2.10, Draw: 3.60, Away: 4.20}

	bet, err := detector.Detect(uuid.New(), cp, ensemble(0.02), odds)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if bet != nil {
		t.Error("expected no bet against uncalibrated probabilities")
	}
}

func TestDetectGates(t *testing.T) {
	detector := NewDetector(0.05, 0.60, 0.10, quietLogger())
	odds := models.MarketOdds{Bookmaker: "bet365", Home: 2.10, Draw: 3.60, Away: 4.20}

	tests := []struct {
		name string
		cp   models.CalibratedPrediction
		ep   *models.EnsemblePrediction
	}{
		{
			name: "edge below minimum",
			cp:   calibrated(0.49, 0.28, 0.23),
			ep:   ensemble(0.02),
		},
		{
			name: "confidence below minimum",
			cp:   calibrated(0.55, 0.25, 0.20),
			ep:   ensemble(0.02),
		},
		{
			name: "disagreement above maximum",
			cp:   calibrated(0.65, 0.20, 0.15),
			ep:   ensemble(0.15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bet, err := detector.Detect(uuid.New(), tt.cp, tt.ep, odds)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if bet != nil {
				t.Errorf("expected suppression, got bet %+v", bet)
			}
		})
	}
}

func TestDetectPicksHighestEdgeOutcome(t *testing.T) {
	detector := NewDetector(0.02, 0.10, 0.10, quietLogger())

	// Both home and away clear the gates; away has the bigger edge
	cp := calibrated(0.40, 0.22, 0.38)
	odds := models.MarketOdds{Bookmaker: "bet365", Home: 2.90, Draw: 3.40, Away: 3.60}

	bet, err := detector.Detect(uuid.New(), cp, ensemble(0.02), odds)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if bet == nil {
		t.Fatal("expected a value bet")
	}
	if bet.Outcome != models.OutcomeAway {
		t.Errorf("expected away (highest edge), got %s", bet.Outcome)
	}
}
