// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/models"
)

// BetAuditLogger records every staking decision, including vetoes, so
// the full decision trail can be reconstructed afterwards.
type BetAuditLogger struct {
	*logrus.Entry
}

// NewBetAuditLogger creates a new bet audit logger.
func NewBetAuditLogger(baseLogger *logrus.Logger) *BetAuditLogger {
	return &BetAuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogStakeDecision logs a stake recommendation, placed or vetoed.
func (al *BetAuditLogger) LogStakeDecision(rec models.StakeRecommendation, bankroll float64) {
	fields := logrus.Fields{
		"match_id":       rec.Bet.MatchID.String(),
		"bookmaker":      rec.Bet.Bookmaker,
		"outcome":        rec.Bet.Outcome.String(),
		"odds":           rec.Bet.Odds,
		"edge":           rec.Bet.Edge,
		"confidence":     rec.Bet.Confidence,
		"tier":           string(rec.Bet.Tier),
		"kelly_fraction": rec.KellyFraction,
		"fraction":       rec.Fraction,
		"stake":          rec.Stake.String(),
		"expected_value": rec.ExpectedValue,
		"profile":        string(rec.Profile),
		"bankroll":       bankroll,
	}
	if rec.ShouldBet {
		al.WithFields(fields).Info("Stake recommendation recorded")
		return
	}
	fields["veto_reason"] = rec.VetoReason
	al.WithFields(fields).Info("Stake vetoed")
}

// LogSuppressedBet logs a match where value bet emission was suppressed.
func (al *BetAuditLogger) LogSuppressedBet(matchID, bookmaker, reason string) {
	al.WithFields(logrus.Fields{
		"match_id":  matchID,
		"bookmaker": bookmaker,
		"reason":    reason,
	}).Info("Value bet suppressed")
}
