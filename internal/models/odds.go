package models

import "fmt"

// MarketOdds holds one bookmaker's decimal odds for the three outcomes
type MarketOdds struct {
	Bookmaker string  `json:"bookmaker" validate:"required"`
	Home      float64 `json:"home"`
	Draw      float64 `json:"draw"`
	Away      float64 `json:"away"`
}

// Odds returns the decimal price quoted for the given outcome
func (m MarketOdds) Odds(o Outcome) float64 {
	switch o {
	case OutcomeHome:
		return m.Home
	case OutcomeDraw:
		return m.Draw
	default:
		return m.Away
	}
}

// Validate checks that every quoted price is a usable decimal odd.
// Prices at or below 1.0 carry no payout and usually indicate a feed
// glitch or a suspended market.
func (m MarketOdds) Validate() error {
	for _, o := range AllOutcomes {
		if price := m.Odds(o); price <= 1.0 {
			return fmt.Errorf("%w: bookmaker %s quoted %v for %s", ErrInvalidOdds, m.Bookmaker, price, o)
		}
	}
	return nil
}

// ImpliedProbabilities removes the bookmaker margin by normalizing the
// reciprocal prices so the three implied probabilities sum to 1.
// Validate must pass before calling.
func (m MarketOdds) ImpliedProbabilities() ModelPrediction {
	raw := ModelPrediction{
		Home: 1.0 / m.Home,
		Draw: 1.0 / m.Draw,
		Away: 1.0 / m.Away,
	}
	return raw.Normalized()
}

// Overround returns the bookmaker margin built into the quoted prices,
// e.g. 0.05 for a book totalling 105% implied probability.
func (m MarketOdds) Overround() float64 {
	return 1.0/m.Home + 1.0/m.Draw + 1.0/m.Away - 1.0
}
