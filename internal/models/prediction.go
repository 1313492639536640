package models

import (
	"fmt"
	"hash/fnv"
	"math"
)

// ProbabilitySumTolerance is the maximum allowed deviation of a
// probability triple from summing to exactly 1.
const ProbabilitySumTolerance = 1e-6

// FeatureVector is the ordered numeric input for one match. It is owned
// by the caller and treated as immutable once passed in.
type FeatureVector []float64

// Digest returns a stable hash of the vector contents, used as a cache key.
func (fv FeatureVector) Digest() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range fv {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

// ModelPrediction is a three-way probability distribution over match outcomes
type ModelPrediction struct {
	Home float64 `json:"home" validate:"gte=0,lte=1"`
	Draw float64 `json:"draw" validate:"gte=0,lte=1"`
	Away float64 `json:"away" validate:"gte=0,lte=1"`
}

// Validate checks that each probability is in [0,1] and the triple sums
// to 1 within ProbabilitySumTolerance
func (p ModelPrediction) Validate() error {
	for _, o := range AllOutcomes {
		v := p.Prob(o)
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("probability for %s out of range: %v", o, v)
		}
	}
	if d := math.Abs(p.Home + p.Draw + p.Away - 1.0); d > ProbabilitySumTolerance {
		return fmt.Errorf("probabilities sum to %v, expected 1 within %v", p.Home+p.Draw+p.Away, ProbabilitySumTolerance)
	}
	return nil
}

// Prob returns the probability assigned to the given outcome
func (p ModelPrediction) Prob(o Outcome) float64 {
	switch o {
	case OutcomeHome:
		return p.Home
	case OutcomeDraw:
		return p.Draw
	default:
		return p.Away
	}
}

// Argmax returns the outcome with the highest probability. Ties resolve
// in canonical order (home, draw, away).
func (p ModelPrediction) Argmax() Outcome {
	best := OutcomeHome
	for _, o := range AllOutcomes[1:] {
		if p.Prob(o) > p.Prob(best) {
			best = o
		}
	}
	return best
}

// Normalized returns the triple scaled to sum to exactly 1. A zero
// triple is returned unchanged.
func (p ModelPrediction) Normalized() ModelPrediction {
	total := p.Home + p.Draw + p.Away
	if total <= 0 {
		return p
	}
	return ModelPrediction{
		Home: p.Home / total,
		Draw: p.Draw / total,
		Away: p.Away / total,
	}
}

// ModelVote preserves one base model's contribution to an ensemble
type ModelVote struct {
	Model      string          `json:"model"`
	Weight     float64         `json:"weight"`
	Prediction ModelPrediction `json:"prediction"`
}

// EnsemblePrediction aggregates the base-layer votes into a blended
// triple plus a disagreement score for the blended argmax outcome.
// Missing lists base models that failed to respond; the quorum check
// happens before an EnsemblePrediction is ever constructed.
type EnsemblePrediction struct {
	Blended      ModelPrediction `json:"blended"`
	Votes        []ModelVote     `json:"votes"`
	Disagreement float64         `json:"disagreement"`
	Missing      []string        `json:"missing,omitempty"`
}

// FullQuorum reports whether every registered base model contributed
func (e EnsemblePrediction) FullQuorum() bool {
	return len(e.Missing) == 0
}

// CalibratedPrediction is the result of applying a CalibrationState to
// an ensemble's blended triple. Uncalibrated marks a cold-start
// passthrough; StateVersion is 0 in that case.
type CalibratedPrediction struct {
	Probs        ModelPrediction `json:"probs"`
	Uncalibrated bool            `json:"uncalibrated"`
	StateVersion int64           `json:"state_version"`
}
