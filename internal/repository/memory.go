package repository

import (
	"context"
	"sync"

	"github.com/yourusername/edge-engine/internal/models"
)

// MemoryOutcomeRepository is an in-memory OutcomeRepository, used in
// tests and when running the engine without a database.
type MemoryOutcomeRepository struct {
	mu       sync.RWMutex
	outcomes []models.RealizedOutcome
}

// NewMemoryOutcomeRepository creates an empty in-memory outcome store
func NewMemoryOutcomeRepository() *MemoryOutcomeRepository {
	return &MemoryOutcomeRepository{}
}

// Append records one realized outcome
func (r *MemoryOutcomeRepository) Append(ctx context.Context, outcome models.RealizedOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	return nil
}

// Window returns up to limit of the most recent outcomes, oldest first
func (r *MemoryOutcomeRepository) Window(ctx context.Context, limit int) ([]models.RealizedOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if len(r.outcomes) > limit {
		start = len(r.outcomes) - limit
	}
	window := make([]models.RealizedOutcome, len(r.outcomes)-start)
	copy(window, r.outcomes[start:])
	return window, nil
}

// Count returns the total number of stored outcomes
func (r *MemoryOutcomeRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.outcomes), nil
}

// MemoryReportRepository is an in-memory ReportRepository
type MemoryReportRepository struct {
	mu      sync.RWMutex
	reports []models.RefitReport
}

// NewMemoryReportRepository creates an empty in-memory report store
func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{}
}

// Save stores a refit report
func (r *MemoryReportRepository) Save(ctx context.Context, report models.RefitReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

// Recent returns up to limit of the most recent reports, newest first
func (r *MemoryReportRepository) Recent(ctx context.Context, limit int) ([]models.RefitReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.reports)
	if limit > n {
		limit = n
	}
	recent := make([]models.RefitReport, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recent = append(recent, r.reports[i])
	}
	return recent, nil
}
