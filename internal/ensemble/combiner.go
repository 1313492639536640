package ensemble

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
)

// DefaultQuorum is the minimum number of base models that must respond
// before an ensemble is produced.
const DefaultQuorum = 2

// Combiner blends the outputs of a fixed set of base models using a
// static weight vector.
type Combiner struct {
	modelSet []Model
	weights  map[string]float64
	quorum   int
	logger   *logrus.Logger
}

// NewCombiner creates a combiner over a fixed model set. Weights are
// keyed by model name and must cover every model in the set.
func NewCombiner(modelSet []Model, weights map[string]float64, quorum int, logger *logrus.Logger) (*Combiner, error) {
	if len(modelSet) == 0 {
		return nil, fmt.Errorf("combiner requires at least one base model")
	}
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	if quorum > len(modelSet) {
		return nil, fmt.Errorf("quorum %d exceeds model count %d", quorum, len(modelSet))
	}
	total := 0.0
	for _, m := range modelSet {
		w, ok := weights[m.Name()]
		if !ok {
			return nil, fmt.Errorf("no weight configured for model %q", m.Name())
		}
		if w <= 0 {
			return nil, fmt.Errorf("weight for model %q must be positive", m.Name())
		}
		total += w
	}
	if math.Abs(total-1.0) > models.ProbabilitySumTolerance {
		return nil, fmt.Errorf("model weights sum to %v, expected 1", total)
	}

	return &Combiner{
		modelSet: modelSet,
		weights:  weights,
		quorum:   quorum,
		logger:   logger,
	}, nil
}

// Combine queries every base model and blends the responses into an
// EnsemblePrediction. Models that fail are recorded in Missing and
// their weight is redistributed over the responders. If fewer than the
// quorum respond, the whole evaluation fails with ErrInsufficientModels.
func (c *Combiner) Combine(ctx context.Context, features models.FeatureVector) (*models.EnsemblePrediction, error) {
	votes := make([]models.ModelVote, 0, len(c.modelSet))
	var missing []string

	for _, model := range c.modelSet {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		pred, err := model.Predict(ctx, features)
		metrics.BaseModelLatency.WithLabelValues(model.Name()).Observe(time.Since(start).Seconds())

		if err == nil {
			err = pred.Validate()
		}
		if err != nil {
			metrics.BaseModelFailuresTotal.WithLabelValues(model.Name()).Inc()
			c.logger.WithError(err).WithField("model", model.Name()).Warn("Base model prediction unavailable")
			missing = append(missing, model.Name())
			continue
		}

		votes = append(votes, models.ModelVote{
			Model:      model.Name(),
			Weight:     c.weights[model.Name()],
			Prediction: pred,
		})
	}

	if len(votes) < c.quorum {
		return nil, fmt.Errorf("%w: %d of %d responded, quorum %d",
			models.ErrInsufficientModels, len(votes), len(c.modelSet), c.quorum)
	}

	blended := blend(votes)
	disagreement := disagreementFor(votes, blended.Argmax())
	metrics.LastDisagreement.Set(disagreement)

	return &models.EnsemblePrediction{
		Blended:      blended,
		Votes:        votes,
		Disagreement: disagreement,
		Missing:      missing,
	}, nil
}

// blend computes the weighted sum of the votes, renormalizing the
// weights over the models that actually responded.
func blend(votes []models.ModelVote) models.ModelPrediction {
	weightTotal := 0.0
	for _, v := range votes {
		weightTotal += v.Weight
	}

	var sum models.ModelPrediction
	for _, v := range votes {
		w := v.Weight / weightTotal
		sum.Home += w * v.Prediction.Home
		sum.Draw += w * v.Prediction.Draw
		sum.Away += w * v.Prediction.Away
	}
	return sum.Normalized()
}

// disagreementFor is the population standard deviation of the
// probability each responder assigned to the blended argmax outcome.
func disagreementFor(votes []models.ModelVote, outcome models.Outcome) float64 {
	if len(votes) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range votes {
		mean += v.Prediction.Prob(outcome)
	}
	mean /= float64(len(votes))

	variance := 0.0
	for _, v := range votes {
		diff := v.Prediction.Prob(outcome) - mean
		variance += diff * diff
	}
	variance /= float64(len(votes))
	return math.Sqrt(variance)
}
