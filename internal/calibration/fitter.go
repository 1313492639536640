package calibration

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/edge-engine/internal/models"
)

// Fitter builds monotonic calibration curves from realized outcomes
// using equal-count binning followed by pool-adjacent-violators.
type Fitter struct {
	binCount   int
	minSamples int
}

// NewFitter creates a fitter. binCount is the target number of bins per
// outcome class; minSamples is the minimum window size for any refit.
func NewFitter(binCount, minSamples int) *Fitter {
	if binCount < 2 {
		binCount = 2
	}
	return &Fitter{binCount: binCount, minSamples: minSamples}
}

// Fit produces a new CalibrationState from the outcome window. The
// returned calibration error is the mean absolute deviation between
// each bin's raw center and its realized hit rate, a drift signal for
// monitoring. Fails with ErrRefitFailed when the sample is too small or
// the binning degenerates.
func (f *Fitter) Fit(window []models.RealizedOutcome, version int64) (*models.CalibrationState, float64, error) {
	if len(window) < f.minSamples {
		return nil, 0, fmt.Errorf("%w: %d samples, need %d", models.ErrRefitFailed, len(window), f.minSamples)
	}

	state := &models.CalibrationState{
		Version:    version,
		FittedAt:   time.Now().UTC(),
		SampleSize: len(window),
	}

	totalDeviation := 0.0
	totalBins := 0

	for _, outcome := range models.AllOutcomes {
		curve, deviation, bins, err := f.fitClass(window, outcome)
		if err != nil {
			return nil, 0, err
		}
		state.Curves[outcome.Index()] = curve
		totalDeviation += deviation
		totalBins += bins
	}

	if err := state.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", models.ErrRefitFailed, err)
	}

	return state, totalDeviation / float64(totalBins), nil
}

// observation is one (raw probability, hit) pair for a single class
type observation struct {
	raw float64
	hit float64
}

func (f *Fitter) fitClass(window []models.RealizedOutcome, outcome models.Outcome) ([]models.CalibrationBin, float64, int, error) {
	obs := make([]observation, 0, len(window))
	for _, rec := range window {
		hit := 0.0
		if rec.Result == outcome {
			hit = 1.0
		}
		obs = append(obs, observation{raw: rec.Raw.Prob(outcome), hit: hit})
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].raw < obs[j].raw })

	bins := equalCountBins(obs, f.binCount)
	if len(bins) < 2 {
		return nil, 0, 0, fmt.Errorf("%w: degenerate binning for %s (%d usable bins)",
			models.ErrRefitFailed, outcome, len(bins))
	}

	poolAdjacentViolators(bins)

	curve := make([]models.CalibrationBin, len(bins))
	deviation := 0.0
	for i, b := range bins {
		curve[i] = models.CalibrationBin{RawCenter: b.rawCenter, Calibrated: b.rate}
		deviation += math.Abs(b.rawCenter - b.empiricalRate)
	}
	return curve, deviation, len(bins), nil
}

// binStat accumulates one bin's statistics. rate starts as the
// empirical hit rate and is adjusted by PAV; empiricalRate is preserved
// for the drift metric.
type binStat struct {
	rawCenter     float64
	rate          float64
	empiricalRate float64
	count         int
}

// equalCountBins splits sorted observations into roughly equal-count
// bins and drops bins whose raw centers collide (constant model output).
func equalCountBins(obs []observation, binCount int) []binStat {
	if len(obs) == 0 {
		return nil
	}
	size := len(obs) / binCount
	if size < 1 {
		size = 1
	}

	var bins []binStat
	for start := 0; start < len(obs); start += size {
		end := start + size
		if end > len(obs) {
			end = len(obs)
		}
		// Fold a tiny tail into the previous bin
		if len(obs)-start < size/2 && len(bins) > 0 {
			for _, o := range obs[start:] {
				last := &bins[len(bins)-1]
				last.rawCenter = (last.rawCenter*float64(last.count) + o.raw) / float64(last.count+1)
				last.rate = (last.rate*float64(last.count) + o.hit) / float64(last.count+1)
				last.count++
				last.empiricalRate = last.rate
			}
			break
		}

		rawSum, hitSum := 0.0, 0.0
		for _, o := range obs[start:end] {
			rawSum += o.raw
			hitSum += o.hit
		}
		n := float64(end - start)
		bins = append(bins, binStat{
			rawCenter:     rawSum / n,
			rate:          hitSum / n,
			empiricalRate: hitSum / n,
			count:         end - start,
		})
	}

	// Strictly increasing raw centers are required downstream; merge
	// any bin that failed to advance into its predecessor.
	merged := bins[:0]
	for _, b := range bins {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if b.rawCenter-last.rawCenter < 1e-9 {
				total := last.count + b.count
				last.rate = (last.rate*float64(last.count) + b.rate*float64(b.count)) / float64(total)
				last.empiricalRate = last.rate
				last.count = total
				continue
			}
		}
		merged = append(merged, b)
	}
	return merged
}

// poolAdjacentViolators enforces a non-decreasing rate sequence by
// pooling adjacent violating blocks, weighted by observation count.
func poolAdjacentViolators(bins []binStat) {
	type block struct {
		rate  float64
		count int
		first int
		last  int
	}

	blocks := make([]block, 0, len(bins))
	for i, b := range bins {
		blocks = append(blocks, block{rate: b.rate, count: b.count, first: i, last: i})
		for len(blocks) > 1 && blocks[len(blocks)-1].rate < blocks[len(blocks)-2].rate {
			top := blocks[len(blocks)-1]
			prev := blocks[len(blocks)-2]
			total := top.count + prev.count
			pooled := block{
				rate:  (top.rate*float64(top.count) + prev.rate*float64(prev.count)) / float64(total),
				count: total,
				first: prev.first,
				last:  top.last,
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, pooled)
		}
	}

	for _, blk := range blocks {
		for i := blk.first; i <= blk.last; i++ {
			bins[i].rate = blk.rate
		}
	}
}
