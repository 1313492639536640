// Package staking sizes bets with a fractional Kelly rule under a hard
// bankroll cap.
package staking

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
)

// Veto reasons recorded on suppressed recommendations
const (
	vetoNoKellyEdge   = "non-positive kelly fraction"
	vetoBelowMinStake = "stake below minimum"
)

// Sizer computes stake recommendations from value bets
type Sizer struct {
	hardCap  float64
	minStake float64
	logger   *logrus.Logger
}

// NewSizer creates a stake sizer. hardCap bounds the bankroll fraction
// of any single bet regardless of the computed Kelly value; minStake
// suppresses dust bets.
func NewSizer(hardCap, minStake float64, logger *logrus.Logger) *Sizer {
	return &Sizer{
		hardCap:  hardCap,
		minStake: minStake,
		logger:   logger,
	}
}

// Size computes the fractional-Kelly stake for a value bet.
//
// Full Kelly: f = (b*p - q) / b, with b = odds - 1, p the calibrated
// probability of the backed outcome and q = 1 - p. The risk profile
// multiplier is applied, then the result clamps to [0, hardCap].
//
// A non-positive full Kelly vetoes the bet with ShouldBet = false even
// though the edge detector already signalled value; the two checks are
// deliberately independent.
func (s *Sizer) Size(bet models.ValueBet, bankroll float64, profile models.RiskProfile) (models.StakeRecommendation, error) {
	multiplier, err := profile.KellyMultiplier()
	if err != nil {
		return models.StakeRecommendation{}, err
	}
	if bankroll <= 0 {
		return models.StakeRecommendation{}, fmt.Errorf("bankroll must be positive, got %v", bankroll)
	}
	if bet.Odds <= 1.0 {
		return models.StakeRecommendation{}, fmt.Errorf("%w: odds %v", models.ErrInvalidOdds, bet.Odds)
	}

	rec := models.StakeRecommendation{
		Bet:     bet,
		Profile: profile,
		Stake:   decimal.Zero,
	}

	b := bet.Odds - 1.0
	p := bet.Confidence
	q := 1.0 - p
	kelly := (b*p - q) / b
	rec.KellyFraction = kelly

	if kelly <= 0 {
		rec.VetoReason = vetoNoKellyEdge
		metrics.StakeVetoesTotal.WithLabelValues(vetoNoKellyEdge).Inc()
		s.logger.WithFields(logrus.Fields{
			"match_id":  bet.MatchID.String(),
			"bookmaker": bet.Bookmaker,
			"odds":      bet.Odds,
			"kelly":     kelly,
		}).Debug("Negative Kelly fraction, no bet recommended")
		return rec, nil
	}

	fraction := kelly * multiplier
	if fraction > s.hardCap {
		s.logger.WithFields(logrus.Fields{
			"match_id":          bet.MatchID.String(),
			"computed_fraction": fraction,
			"hard_cap":          s.hardCap,
		}).Debug("Stake fraction capped at maximum")
		fraction = s.hardCap
	}
	rec.Fraction = fraction

	stake := decimal.NewFromFloat(bankroll).
		Mul(decimal.NewFromFloat(fraction)).
		Round(2)

	if stake.LessThan(decimal.NewFromFloat(s.minStake)) {
		rec.Fraction = 0
		rec.VetoReason = vetoBelowMinStake
		metrics.StakeVetoesTotal.WithLabelValues(vetoBelowMinStake).Inc()
		return rec, nil
	}

	rec.Stake = stake
	rec.ShouldBet = true

	stakeFloat, _ := stake.Float64()
	rec.ExpectedValue = p*(b*stakeFloat) - q*stakeFloat

	return rec, nil
}
