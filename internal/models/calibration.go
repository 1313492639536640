package models

import (
	"fmt"
	"time"
)

// CalibrationBin is one point of a monotonic raw-to-calibrated mapping
type CalibrationBin struct {
	RawCenter  float64 `json:"raw_center"`
	Calibrated float64 `json:"calibrated"`
}

// CalibrationState is a versioned, immutable snapshot of the fitted
// monotonic mapping for each outcome class. It is created whole by the
// calibration loop and replaced by a single reference swap; consumers
// must never mutate it.
type CalibrationState struct {
	Version    int64               `json:"version"`
	FittedAt   time.Time           `json:"fitted_at"`
	SampleSize int                 `json:"sample_size"`
	Curves     [3][]CalibrationBin `json:"curves"`
}

// Curve returns the fitted bins for the given outcome class
func (s *CalibrationState) Curve(o Outcome) []CalibrationBin {
	return s.Curves[o.Index()]
}

// Validate enforces the structural invariants of a snapshot: at least
// two bins per class, raw centers strictly increasing, calibrated
// values in [0,1] and non-decreasing.
func (s *CalibrationState) Validate() error {
	for _, o := range AllOutcomes {
		curve := s.Curve(o)
		if len(curve) < 2 {
			return fmt.Errorf("calibration curve for %s has %d bins, need at least 2", o, len(curve))
		}
		for i, bin := range curve {
			if bin.Calibrated < 0 || bin.Calibrated > 1 {
				return fmt.Errorf("calibration curve for %s: calibrated value %v out of [0,1]", o, bin.Calibrated)
			}
			if i == 0 {
				continue
			}
			if bin.RawCenter <= curve[i-1].RawCenter {
				return fmt.Errorf("calibration curve for %s: raw centers not strictly increasing at bin %d", o, i)
			}
			if bin.Calibrated < curve[i-1].Calibrated {
				return fmt.Errorf("calibration curve for %s: calibrated values decrease at bin %d", o, i)
			}
		}
	}
	return nil
}

// RefitReport is the per-refit record emitted to the monitoring layer
type RefitReport struct {
	Version          int64     `db:"version" json:"version"`
	FittedAt         time.Time `db:"fitted_at" json:"fitted_at"`
	SampleSize       int       `db:"sample_size" json:"sample_size"`
	Committed        bool      `db:"committed" json:"committed"`
	CalibrationError float64   `db:"calibration_error" json:"calibration_error"`
	FailureReason    string    `db:"failure_reason" json:"failure_reason,omitempty"`
}
