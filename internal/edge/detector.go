// Package edge converts market odds into de-vigged implied
// probabilities and emits value bets where the calibrated model
// probability beats the market.
package edge

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
)

// Tier thresholds. Below the configured minimum edge no ValueBet is
// emitted at all; these only bucket bets that already cleared the gates.
const (
	premiumEdge       = 0.08
	premiumConfidence = 0.75
	valueEdge         = 0.05
	marginalEdge      = 0.02
)

// Detector evaluates one bookmaker's odds against a calibrated prediction
type Detector struct {
	minEdge         float64
	minConfidence   float64
	maxDisagreement float64
	logger          *logrus.Logger
}

// NewDetector creates an edge detector with the given gates
func NewDetector(minEdge, minConfidence, maxDisagreement float64, logger *logrus.Logger) *Detector {
	return &Detector{
		minEdge:         minEdge,
		minConfidence:   minConfidence,
		maxDisagreement: maxDisagreement,
		logger:          logger,
	}
}

// Detect returns at most one ValueBet for the bookmaker: the outcome
// with the highest positive edge that clears the confidence and
// disagreement gates. Uncalibrated predictions never produce a bet;
// edges against raw probabilities are too unreliable to act on.
func (d *Detector) Detect(matchID uuid.UUID, cp models.CalibratedPrediction,
	ep *models.EnsemblePrediction, odds models.MarketOdds) (*models.ValueBet, error) {

	if err := odds.Validate(); err != nil {
		metrics.InvalidOddsTotal.WithLabelValues(odds.Bookmaker).Inc()
		return nil, err
	}

	if cp.Uncalibrated {
		return nil, nil
	}
	if ep.Disagreement > d.maxDisagreement {
		d.logger.WithFields(logrus.Fields{
			"match_id":     matchID.String(),
			"bookmaker":    odds.Bookmaker,
			"disagreement": ep.Disagreement,
		}).Debug("Disagreement gate suppressed value bet")
		return nil, nil
	}

	implied := odds.ImpliedProbabilities()

	var best *models.ValueBet
	for _, outcome := range models.AllOutcomes {
		confidence := cp.Probs.Prob(outcome)
		edge := confidence - implied.Prob(outcome)

		if edge < d.minEdge || confidence < d.minConfidence {
			continue
		}
		if best != nil && edge <= best.Edge {
			continue
		}

		best = &models.ValueBet{
			MatchID:      matchID,
			Bookmaker:    odds.Bookmaker,
			Outcome:      outcome,
			Odds:         odds.Odds(outcome),
			Edge:         edge,
			Confidence:   confidence,
			Disagreement: ep.Disagreement,
			Tier:         tierFor(edge, confidence),
		}
	}

	if best != nil {
		metrics.RecordValueBet(string(best.Tier))
		d.logger.WithFields(logrus.Fields{
			"match_id":   matchID.String(),
			"bookmaker":  best.Bookmaker,
			"outcome":    best.Outcome.String(),
			"edge":       fmt.Sprintf("%.4f", best.Edge),
			"confidence": fmt.Sprintf("%.4f", best.Confidence),
			"tier":       string(best.Tier),
		}).Info("Value bet detected")
	}

	return best, nil
}

// tierFor buckets a gated bet by edge and confidence
func tierFor(edge, confidence float64) models.QualityTier {
	switch {
	case edge >= premiumEdge && confidence >= premiumConfidence:
		return models.TierPremium
	case edge >= valueEdge:
		return models.TierValue
	case edge >= marginalEdge:
		return models.TierMarginal
	default:
		return models.TierAvoid
	}
}
