// Package ensemble provides caching for ensemble predictions.
package ensemble

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
)

// CachedCombiner wraps a Combiner with an in-memory TTL cache keyed by
// the feature vector digest. Identical feature vectors inside the TTL
// return the identical EnsemblePrediction, so pipeline idempotence is
// preserved.
type CachedCombiner struct {
	combiner *Combiner
	cache    *cache.Cache
	ttl      time.Duration
}

// NewCachedCombiner creates a caching wrapper around the combiner
func NewCachedCombiner(combiner *Combiner, ttl time.Duration) *CachedCombiner {
	return &CachedCombiner{
		combiner: combiner,
		cache:    cache.New(ttl, ttl*2),
		ttl:      ttl,
	}
}

// Combine returns the cached ensemble for the feature vector when
// present, otherwise delegates and stores the result. Ensembles with
// missing models are not cached so a recovered model is picked up on
// the next request.
func (cc *CachedCombiner) Combine(ctx context.Context, features models.FeatureVector) (*models.EnsemblePrediction, error) {
	key := fmt.Sprintf("%x", features.Digest())

	if cached, found := cc.cache.Get(key); found {
		if ep, ok := cached.(*models.EnsemblePrediction); ok {
			metrics.EnsembleCacheHitsTotal.Inc()
			return ep, nil
		}
	}
	metrics.EnsembleCacheMissesTotal.Inc()

	ep, err := cc.combiner.Combine(ctx, features)
	if err != nil {
		return nil, err
	}

	if ep.FullQuorum() {
		cc.cache.Set(key, ep, cc.ttl)
	}
	return ep, nil
}

// Flush clears all cached ensembles
func (cc *CachedCombiner) Flush() {
	cc.cache.Flush()
}
