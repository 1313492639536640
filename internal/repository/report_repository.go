package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/edge-engine/internal/database"
	"github.com/yourusername/edge-engine/internal/models"
)

// PostgresReportRepository implements ReportRepository for PostgreSQL
type PostgresReportRepository struct {
	db *database.DB
}

// NewPostgresReportRepository creates a new refit report repository
func NewPostgresReportRepository(db *database.DB) ReportRepository {
	return &PostgresReportRepository{db: db}
}

// Save inserts a refit report
func (r *PostgresReportRepository) Save(ctx context.Context, report models.RefitReport) error {
	query := `
		INSERT INTO refit_reports (version, fitted_at, sample_size, committed, calibration_error, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		report.Version, report.FittedAt, report.SampleSize,
		report.Committed, report.CalibrationError, report.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("failed to save refit report: %w", err)
	}

	return nil
}

// Recent retrieves the most recent refit reports, newest first
func (r *PostgresReportRepository) Recent(ctx context.Context, limit int) ([]models.RefitReport, error) {
	query := `
		SELECT version, fitted_at, sample_size, committed, calibration_error, failure_reason
		FROM refit_reports
		ORDER BY fitted_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refit reports: %w", err)
	}
	defer rows.Close()

	var reports []models.RefitReport
	for rows.Next() {
		var report models.RefitReport
		err := rows.Scan(&report.Version, &report.FittedAt, &report.SampleSize,
			&report.Committed, &report.CalibrationError, &report.FailureReason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refit report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
