// Package ensemble blends base-model predictions into a single
// probability distribution with a disagreement score.
package ensemble

import (
	"context"

	"github.com/yourusername/edge-engine/internal/models"
)

// Model is the contract every base classifier must satisfy. The
// combiner depends only on this interface and never on a specific
// model's internals.
type Model interface {
	Name() string
	Predict(ctx context.Context, features models.FeatureVector) (models.ModelPrediction, error)
}

// StaticModel wraps a fixed prediction function as a Model. Used for
// in-process base models and for tests.
type StaticModel struct {
	ModelName string
	Fn        func(ctx context.Context, features models.FeatureVector) (models.ModelPrediction, error)
}

// Name returns the model name
func (m *StaticModel) Name() string {
	return m.ModelName
}

// Predict delegates to the wrapped function
func (m *StaticModel) Predict(ctx context.Context, features models.FeatureVector) (models.ModelPrediction, error) {
	return m.Fn(ctx, features)
}
