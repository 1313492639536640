package models

import "github.com/google/uuid"

// QualityTier buckets a value bet by edge and confidence
type QualityTier string

// Quality tiers from strongest to weakest signal
const (
	TierPremium  QualityTier = "premium"
	TierValue    QualityTier = "value"
	TierMarginal QualityTier = "marginal"
	TierAvoid    QualityTier = "avoid"
)

// ValueBet is a candidate betting opportunity: one outcome at one
// bookmaker where the calibrated probability exceeds the de-vigged
// market price by more than the configured minimum edge.
type ValueBet struct {
	MatchID      uuid.UUID   `json:"match_id"`
	Bookmaker    string      `json:"bookmaker"`
	Outcome      Outcome     `json:"outcome"`
	Odds         float64     `json:"odds"`
	Edge         float64     `json:"edge"`
	Confidence   float64     `json:"confidence"`
	Disagreement float64     `json:"disagreement"`
	Tier         QualityTier `json:"tier"`
}
