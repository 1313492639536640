package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/edge-engine/internal/database"
	"github.com/yourusername/edge-engine/internal/models"
)

// PostgresOutcomeRepository implements OutcomeRepository for PostgreSQL
type PostgresOutcomeRepository struct {
	db *database.DB
}

// NewPostgresOutcomeRepository creates a new outcome repository
func NewPostgresOutcomeRepository(db *database.DB) OutcomeRepository {
	return &PostgresOutcomeRepository{db: db}
}

// Append inserts a realized outcome together with the raw ensemble
// triple produced before the match.
func (r *PostgresOutcomeRepository) Append(ctx context.Context, outcome models.RealizedOutcome) error {
	query := `
		INSERT INTO realized_outcomes (match_id, raw_home, raw_draw, raw_away, result, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		outcome.MatchID, outcome.Raw.Home, outcome.Raw.Draw, outcome.Raw.Away,
		int(outcome.Result), outcome.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append realized outcome: %w", err)
	}

	return nil
}

// Window retrieves the most recent outcomes up to limit, oldest first
func (r *PostgresOutcomeRepository) Window(ctx context.Context, limit int) ([]models.RealizedOutcome, error) {
	query := `
		SELECT match_id, raw_home, raw_draw, raw_away, result, recorded_at
		FROM (
			SELECT match_id, raw_home, raw_draw, raw_away, result, recorded_at
			FROM realized_outcomes
			ORDER BY recorded_at DESC
			LIMIT $1
		) recent
		ORDER BY recorded_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome window: %w", err)
	}
	defer rows.Close()

	var window []models.RealizedOutcome
	for rows.Next() {
		var rec models.RealizedOutcome
		var result int
		err := rows.Scan(&rec.MatchID, &rec.Raw.Home, &rec.Raw.Draw, &rec.Raw.Away, &result, &rec.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realized outcome: %w", err)
		}
		rec.Result = models.Outcome(result)
		window = append(window, rec)
	}

	return window, rows.Err()
}

// Count returns the total number of stored outcomes
func (r *PostgresOutcomeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx, `SELECT COUNT(*) FROM realized_outcomes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count realized outcomes: %w", err)
	}
	return count, nil
}
