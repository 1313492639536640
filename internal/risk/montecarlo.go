// Package risk corroborates stake recommendations with a Monte Carlo
// simulation of repeated bets at the recommended fraction.
package risk

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
)

// Simulator runs independent Bernoulli trials of a staking plan. It is
// read-only: trials share no state with the prediction path and each
// worker owns its own RNG, so runs with the same seed are reproducible.
type Simulator struct {
	trials         int
	sequenceLength int
	workers        int
	ruinThreshold  float64
	seed           int64
	logger         *logrus.Logger
}

// NewSimulator creates a Monte Carlo simulator. sequenceLength is the
// number of consecutive identical bets simulated per trial;
// ruinThreshold is the bankroll fraction below which a trial counts as
// ruined.
func NewSimulator(trials, sequenceLength, workers int, ruinThreshold float64, seed int64, logger *logrus.Logger) *Simulator {
	if workers < 1 {
		workers = 1
	}
	return &Simulator{
		trials:         trials,
		sequenceLength: sequenceLength,
		workers:        workers,
		ruinThreshold:  ruinThreshold,
		seed:           seed,
		logger:         logger,
	}
}

// Simulate runs the trial set for a recommendation. Each trial starts
// from a unit bankroll, places sequenceLength bets at the recommended
// fraction with win probability equal to the bet's calibrated
// confidence, and reports the final return relative to the start.
// Compounding is applied: the fraction is taken of the current
// bankroll, not the starting one.
func (s *Simulator) Simulate(ctx context.Context, rec models.StakeRecommendation) (models.MonteCarloResult, error) {
	if !rec.ShouldBet || rec.Fraction <= 0 {
		return models.MonteCarloResult{}, fmt.Errorf("cannot simulate a vetoed recommendation")
	}
	if rec.Bet.Odds <= 1.0 {
		return models.MonteCarloResult{}, fmt.Errorf("%w: odds %v", models.ErrInvalidOdds, rec.Bet.Odds)
	}

	start := time.Now()

	p := rec.Bet.Confidence
	b := rec.Bet.Odds - 1.0
	fraction := rec.Fraction

	returns := make([]float64, s.trials)

	var wg sync.WaitGroup
	errs := make([]error, s.workers)

	perWorker := s.trials / s.workers
	for w := 0; w < s.workers; w++ {
		lo := w * perWorker
		hi := lo + perWorker
		if w == s.workers-1 {
			hi = s.trials
		}

		wg.Add(1)
		go func(worker, lo, hi int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(s.seed + int64(worker)))

			for i := lo; i < hi; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						errs[worker] = err
						return
					}
				}
				returns[i] = s.runTrial(rng, p, b, fraction)
			}
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return models.MonteCarloResult{}, err
		}
	}

	result := summarize(returns, s.ruinThreshold)
	result.Trials = s.trials
	result.SequenceLength = s.sequenceLength

	metrics.MonteCarloDuration.Observe(time.Since(start).Seconds())
	s.logger.WithFields(logrus.Fields{
		"trials":      s.trials,
		"mean_return": result.MeanReturn,
		"ruin_prob":   result.RuinProbability,
		"sharpe":      result.SharpeRatio,
	}).Debug("Monte Carlo simulation complete")

	return result, nil
}

// runTrial plays sequenceLength bets from a unit bankroll and returns
// the final bankroll minus one. A bankroll at or below the ruin
// threshold stops the sequence early.
func (s *Simulator) runTrial(rng *rand.Rand, p, b, fraction float64) float64 {
	bankroll := 1.0
	for i := 0; i < s.sequenceLength; i++ {
		stake := bankroll * fraction
		if rng.Float64() < p {
			bankroll += stake * b
		} else {
			bankroll -= stake
		}
		if bankroll <= s.ruinThreshold {
			bankroll = 0
			break
		}
	}
	return bankroll - 1.0
}

func summarize(returns []float64, ruinThreshold float64) models.MonteCarloResult {
	n := len(returns)

	var sum float64
	ruined := 0
	for _, r := range returns {
		sum += r
		if r <= ruinThreshold-1.0 {
			ruined++
		}
	}
	mean := sum / float64(n)

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(n)
	std := math.Sqrt(variance)

	sorted := make([]float64, n)
	copy(sorted, returns)
	sort.Float64s(sorted)

	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std
	}

	return models.MonteCarloResult{
		MeanReturn:      mean,
		StdReturn:       std,
		P5:              percentile(sorted, 0.05),
		P50:             percentile(sorted, 0.50),
		P95:             percentile(sorted, 0.95),
		RuinProbability: float64(ruined) / float64(n),
		SharpeRatio:     sharpe,
	}
}

// percentile reads from a sorted slice with linear interpolation
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
