package engine

import (
	"github.com/google/uuid"

	"github.com/yourusername/edge-engine/internal/models"
)

// Request carries one match evaluation: the feature vector plus the
// market odds to scan for value, and the bankroll context for sizing.
type Request struct {
	MatchID  uuid.UUID            `json:"match_id"`
	Features models.FeatureVector `json:"features"`
	Odds     []models.MarketOdds  `json:"odds"`
	Bankroll float64              `json:"bankroll"`
	Profile  models.RiskProfile   `json:"profile"`
}

// BetEvaluation pairs a detected value bet with its sized
// recommendation and, when a stake is actually recommended, the Monte
// Carlo corroboration.
type BetEvaluation struct {
	Bet            models.ValueBet            `json:"bet"`
	Recommendation models.StakeRecommendation `json:"recommendation"`
	Simulation     *models.MonteCarloResult   `json:"simulation,omitempty"`
}

// Response is the full evaluation output for one match. Degraded is
// set whenever the prediction is uncalibrated (cold start) or fewer
// than the full model set responded; in degraded mode Bets is always
// empty.
type Response struct {
	MatchID       uuid.UUID                   `json:"match_id"`
	Prediction    models.CalibratedPrediction `json:"prediction"`
	Votes         []models.ModelVote          `json:"votes"`
	Disagreement  float64                     `json:"disagreement"`
	MissingModels []string                    `json:"missing_models,omitempty"`
	Degraded      bool                        `json:"degraded"`
	Bets          []BetEvaluation             `json:"bets"`
}
