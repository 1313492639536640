package risk

import (
	"context"
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

func recommendation(odds, confidence, fraction float64) models.StakeRecommendation {
	return models.StakeRecommendation{
		Bet: models.ValueBet{
			MatchID:    uuid.New(),
			Bookmaker:  "bet365",
			Outcome:    models.OutcomeHome,
			Odds:       odds,
			Confidence: confidence,
		},
		ShouldBet: true,
		Fraction:  fraction,
		Profile:   models.ProfileConservative,
	}
}

func TestSimulateMatchesAnalyticExpectation(t *testing.T) {
	sim := NewSimulator(20000, 50, 4, 0.01, 42, quietLogger())

	// Per-bet growth factor 1 + f*(p*b - q); compounding over 50 bets
	rec := recommendation(2.10, 0.55, 0.02)
	result, err := sim.Simulate(context.Background(), rec)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	growth := 1 + 0.02*(0.55*1.10-0.45)
	want := math.Pow(growth, 50) - 1
	if math.Abs(result.MeanReturn-want) > 0.02 {
		t.Errorf("expected mean return near %v, got %v", want, result.MeanReturn)
	}

	if result.P5 > result.P50 || result.P50 > result.P95 {
		t.Errorf("percentiles out of order: p5=%v p50=%v p95=%v", result.P5, result.P50, result.P95)
	}
	if result.Trials != 20000 || result.SequenceLength != 50 {
		t.Errorf("unexpected trial metadata: %+v", result)
	}
	if result.RuinProbability != 0 {
		t.Errorf("expected no ruin at 2%% staking, got %v", result.RuinProbability)
	}
	if result.SharpeRatio <= 0 {
		t.Errorf("expected positive Sharpe-like ratio, got %v", result.SharpeRatio)
	}
}

func TestSimulateNegativeEdgeLosesMoney(t *testing.T) {
	sim := NewSimulator(10000, 50, 4, 0.01, 7, quietLogger())

	rec := recommendation(2.10, 0.40, 0.05)
	result, err := sim.Simulate(context.Background(), rec)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if result.MeanReturn >= 0 {
		t.Errorf("expected negative mean return, got %v", result.MeanReturn)
	}
}

func TestSimulateDeterministicWithSeed(t *testing.T) {
	rec := recommendation(2.10, 0.55, 0.03)

	first, err := NewSimulator(5000, 50, 4, 0.01, 99, quietLogger()).Simulate(context.Background(), rec)
	if err != nil {
		t.Fatalf("first Simulate failed: %v", err)
	}
	second, err := NewSimulator(5000, 50, 4, 0.01, 99, quietLogger()).Simulate(context.Background(), rec)
	if err != nil {
		t.Fatalf("second Simulate failed: %v", err)
	}

	if first != second {
		t.Errorf("expected identical results for identical seeds:\n%+v\n%+v", first, second)
	}
}

func TestSimulateDetectsRuin(t *testing.T) {
	sim := NewSimulator(5000, 30, 4, 0.01, 3, quietLogger())

	// Betting 90% of bankroll at 30% win probability ruins fast
	rec := recommendation(2.10, 0.30, 0.90)
	result, err := sim.Simulate(context.Background(), rec)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if result.RuinProbability < 0.9 {
		t.Errorf("expected near-certain ruin, got %v", result.RuinProbability)
	}
}

func TestSimulateRejectsVetoedRecommendation(t *testing.T) {
	sim := NewSimulator(1000, 50, 2, 0.01, 1, quietLogger())

	rec := recommendation(2.10, 0.55, 0)
	rec.ShouldBet = false

	if _, err := sim.Simulate(context.Background(), rec); err == nil {
		t.Error("expected error simulating a vetoed recommendation")
	}
}

func TestSimulateHonoursCancellation(t *testing.T) {
	sim := NewSimulator(200000, 200, 4, 0.01, 5, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sim.Simulate(ctx, recommendation(2.10, 0.55, 0.03)); err == nil {
		t.Error("expected error from cancelled context")
	}
}
