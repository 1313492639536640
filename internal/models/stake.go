package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskProfile selects the fractional-Kelly multiplier
type RiskProfile string

// Supported risk profiles
const (
	ProfileConservative RiskProfile = "conservative"
	ProfileModerate     RiskProfile = "moderate"
	ProfileAggressive   RiskProfile = "aggressive"
)

// KellyMultiplier maps the profile to its fraction of full Kelly
func (p RiskProfile) KellyMultiplier() (float64, error) {
	switch p {
	case ProfileConservative:
		return 0.125, nil
	case ProfileModerate:
		return 0.25, nil
	case ProfileAggressive:
		return 0.5, nil
	default:
		return 0, fmt.Errorf("unknown risk profile %q", string(p))
	}
}

// StakeRecommendation is the sized output for one ValueBet. ShouldBet
// is an independent veto: it is false whenever the full Kelly fraction
// is non-positive, regardless of the edge detector's earlier signal.
type StakeRecommendation struct {
	Bet           ValueBet        `json:"bet"`
	ShouldBet     bool            `json:"should_bet"`
	KellyFraction float64         `json:"kelly_fraction"`
	Fraction      float64         `json:"fraction"`
	Stake         decimal.Decimal `json:"stake"`
	ExpectedValue float64         `json:"expected_value"`
	Profile       RiskProfile     `json:"profile"`
	VetoReason    string          `json:"veto_reason,omitempty"`
}

// MonteCarloResult summarizes the simulated return distribution for a
// stake recommendation. Returns are expressed as fractions of the
// starting bankroll.
type MonteCarloResult struct {
	Trials          int     `json:"trials"`
	SequenceLength  int     `json:"sequence_length"`
	MeanReturn      float64 `json:"mean_return"`
	StdReturn       float64 `json:"std_return"`
	P5              float64 `json:"p5"`
	P50             float64 `json:"p50"`
	P95             float64 `json:"p95"`
	RuinProbability float64 `json:"ruin_probability"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
}
