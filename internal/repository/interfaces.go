// Package repository provides persistence for realized outcomes and
// calibration refit reports.
package repository

import (
	"context"

	"github.com/yourusername/edge-engine/internal/models"
)

// OutcomeRepository stores the append-only history of realized match
// outcomes consumed by the calibration loop.
type OutcomeRepository interface {
	// Append records one realized outcome. Records are never mutated.
	Append(ctx context.Context, outcome models.RealizedOutcome) error

	// Window returns up to limit of the most recent outcomes, newest
	// last, for refitting the calibration curves.
	Window(ctx context.Context, limit int) ([]models.RealizedOutcome, error)

	// Count returns the total number of stored outcomes.
	Count(ctx context.Context) (int, error)
}

// ReportRepository stores the per-refit records emitted for monitoring.
type ReportRepository interface {
	Save(ctx context.Context, report models.RefitReport) error
	Recent(ctx context.Context, limit int) ([]models.RefitReport, error)
}
