package models

import "errors"

// Custom errors
var (
	// ErrInsufficientModels means fewer base models responded than the
	// configured quorum. The whole match evaluation fails; no partial
	// ensemble is ever produced.
	ErrInsufficientModels = errors.New("insufficient base model predictions for quorum")

	// ErrInvalidOdds means a bookmaker quoted a non-positive or missing
	// price for an outcome. Isolated to that bookmaker's evaluation.
	ErrInvalidOdds = errors.New("invalid market odds")

	// ErrCalibrationUnavailable means no CalibrationState has been
	// fitted yet. The pipeline degrades instead of failing.
	ErrCalibrationUnavailable = errors.New("calibration state unavailable")

	// ErrRefitFailed means the calibration loop could not produce a
	// valid monotonic mapping from the current sample window.
	ErrRefitFailed = errors.New("calibration refit failed")

	ErrNotFound = errors.New("record not found")
)
