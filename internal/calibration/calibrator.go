package calibration

import (
	"github.com/yourusername/edge-engine/internal/models"
)

// Calibrator applies the current CalibrationState snapshot to ensemble
// predictions. It is safe for concurrent use; each call reads one
// consistent snapshot for its whole duration.
type Calibrator struct {
	store *Store
}

// NewCalibrator creates a calibrator reading from the given store
func NewCalibrator(store *Store) *Calibrator {
	return &Calibrator{store: store}
}

// Apply maps the ensemble's blended triple through the fitted monotonic
// curves. On cold start (no snapshot yet) the raw triple passes through
// unchanged with Uncalibrated set, so downstream consumers can apply
// stricter gates.
//
// Renormalization policy: the highest-probability outcome is calibrated
// directly and the remaining two share the residual mass proportionally
// to their raw relative weights.
func (c *Calibrator) Apply(ep *models.EnsemblePrediction) models.CalibratedPrediction {
	state := c.store.Current()
	if state == nil {
		return models.CalibratedPrediction{
			Probs:        ep.Blended,
			Uncalibrated: true,
		}
	}

	raw := ep.Blended
	top := raw.Argmax()
	topCalibrated := lookup(state.Curve(top), raw.Prob(top))

	residual := 1.0 - topCalibrated
	var others [2]models.Outcome
	idx := 0
	for _, o := range models.AllOutcomes {
		if o != top {
			others[idx] = o
			idx++
		}
	}

	otherRawTotal := raw.Prob(others[0]) + raw.Prob(others[1])

	probs := models.ModelPrediction{}
	set := func(o models.Outcome, v float64) {
		switch o {
		case models.OutcomeHome:
			probs.Home = v
		case models.OutcomeDraw:
			probs.Draw = v
		default:
			probs.Away = v
		}
	}

	set(top, topCalibrated)
	if otherRawTotal > 0 {
		set(others[0], residual*raw.Prob(others[0])/otherRawTotal)
		set(others[1], residual*raw.Prob(others[1])/otherRawTotal)
	} else {
		set(others[0], residual/2)
		set(others[1], residual/2)
	}

	return models.CalibratedPrediction{
		Probs:        probs.Normalized(),
		Uncalibrated: false,
		StateVersion: state.Version,
	}
}

// lookup interpolates the calibrated value for a raw probability along
// the fitted bins. Values beyond the outermost bin centers clamp to the
// end bins, preserving monotonicity.
func lookup(curve []models.CalibrationBin, raw float64) float64 {
	if len(curve) == 0 {
		return raw
	}
	if raw <= curve[0].RawCenter {
		return curve[0].Calibrated
	}
	last := curve[len(curve)-1]
	if raw >= last.RawCenter {
		return last.Calibrated
	}

	for i := 1; i < len(curve); i++ {
		if raw <= curve[i].RawCenter {
			lo, hi := curve[i-1], curve[i]
			span := hi.RawCenter - lo.RawCenter
			t := (raw - lo.RawCenter) / span
			return lo.Calibrated + t*(hi.Calibrated-lo.Calibrated)
		}
	}
	return last.Calibrated
}
