package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/faenaapp/faena-backend/internal/domain"
)

const matchColumns = `
	match_id, job_id, worker_id, score, distance_km, is_applied, applied_at,
	application_message, proposed_budget, created_at, updated_at`

// GetMatch returns the match record for a job/worker pair, or nil when none
// has been recorded yet.
func (s *Storage) GetMatch(ctx context.Context, jobID, workerID string) (*domain.JobMatch, error) {
	var m domain.JobMatch
	err := s.db.GetContext(ctx, &m,
		`SELECT `+matchColumns+` FROM job_matches WHERE job_id = $1 AND worker_id = $2`,
		jobID, workerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// CreateMatch inserts a match record.
func (s *Storage) CreateMatch(ctx context.Context, m *domain.JobMatch) error {
	query := `
		INSERT INTO job_matches (
			match_id, job_id, worker_id, score, distance_km, is_applied,
			applied_at, application_message, proposed_budget, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.JobID, m.WorkerID, m.Score, m.DistanceKm, m.IsApplied,
		m.AppliedAt, m.ApplicationMessage, m.ProposedBudget, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// MarkApplied stamps an existing match with the application details.
func (s *Storage) MarkApplied(ctx context.Context, m *domain.JobMatch) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE job_matches
		SET is_applied = TRUE, applied_at = $2, application_message = $3,
		    proposed_budget = $4, updated_at = $2
		WHERE match_id = $1
	`, m.ID, m.AppliedAt, m.ApplicationMessage, m.ProposedBudget)
	if err != nil {
		return fmt.Errorf("failed to mark match applied: %w", err)
	}
	return nil
}
