package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/offers"
)

const offerColumns = `
	offer_id, job_id, worker_id, status, proposed_budget, message,
	rejection_reason, matching_score, distance_km, responded_at, expires_at,
	created_at, updated_at`

// pendingOfferConstraint is the partial unique index that allows at most one
// PENDING offer per job.
const pendingOfferConstraint = "offers_one_pending_per_job"

// GetOffer returns an offer by id.
func (s *Storage) GetOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	var offer domain.Offer
	err := s.db.GetContext(ctx, &offer,
		`SELECT `+offerColumns+` FROM offers WHERE offer_id = $1`, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

// GetPendingOfferForJob returns the job's single pending offer, or nil when
// there is none.
func (s *Storage) GetPendingOfferForJob(ctx context.Context, jobID string) (*domain.Offer, error) {
	var offer domain.Offer
	err := s.db.GetContext(ctx, &offer,
		`SELECT `+offerColumns+` FROM offers WHERE job_id = $1 AND status = $2`,
		jobID, domain.OfferStatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending offer: %w", err)
	}
	return &offer, nil
}

// CreateOffer inserts a new offer. Returns ErrPendingOfferExists when the job
// already has a pending offer, so concurrent dispatchers converge on one.
func (s *Storage) CreateOffer(ctx context.Context, o *domain.Offer) error {
	query := `
		INSERT INTO offers (
			offer_id, job_id, worker_id, status, proposed_budget, message,
			rejection_reason, matching_score, distance_km, responded_at,
			expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		o.ID,
		o.JobID,
		o.WorkerID,
		o.Status,
		o.ProposedBudget,
		o.Message,
		o.RejectionReason,
		o.MatchingScore,
		o.DistanceKm,
		o.RespondedAt,
		o.ExpiresAt,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == pendingOfferConstraint {
			return offers.ErrPendingOfferExists
		}
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

// ListWorkerOffers returns a worker's offers, optionally filtered by status,
// newest first. An empty status means no filter.
func (s *Storage) ListWorkerOffers(ctx context.Context, workerID string, status domain.OfferStatus) ([]domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE worker_id = $1`
	args := []any{workerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var list []domain.Offer
	if err := s.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list worker offers: %w", err)
	}
	return list, nil
}

// ListContactedWorkerIDs returns workers whose offer for the job ended in
// rejection or expiry. Redispatch skips them.
func (s *Storage) ListContactedWorkerIDs(ctx context.Context, jobID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT worker_id FROM offers
		WHERE job_id = $1 AND status IN ($2, $3)
	`, jobID, domain.OfferStatusRejected, domain.OfferStatusExpired)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacted workers: %w", err)
	}
	return ids, nil
}

// ListExpiredPendingOffers returns pending offers whose deadline has passed,
// oldest first.
func (s *Storage) ListExpiredPendingOffers(ctx context.Context, now time.Time, limit int) ([]domain.Offer, error) {
	var list []domain.Offer
	err := s.db.SelectContext(ctx, &list, `
		SELECT `+offerColumns+`
		FROM offers
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3
	`, domain.OfferStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired offers: %w", err)
	}
	return list, nil
}

// AcceptOffer atomically accepts a pending offer and moves its job to
// IN_PROGRESS with the worker assigned. Returns false when the offer was no
// longer pending.
func (s *Storage) AcceptOffer(ctx context.Context, offerID string, message *string, at time.Time) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE offers
		SET status = $2, message = COALESCE($3, message), responded_at = $4, updated_at = $4
		WHERE offer_id = $1 AND status = $5
	`, offerID, domain.OfferStatusAccepted, message, at, domain.OfferStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to accept offer: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	} else if rows == 0 {
		return false, nil
	}

	var jobID, workerID string
	err = tx.QueryRowContext(ctx,
		`SELECT job_id, worker_id FROM offers WHERE offer_id = $1`, offerID,
	).Scan(&jobID, &workerID)
	if err != nil {
		return false, fmt.Errorf("failed to read accepted offer: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, worker_id = $3, updated_at = $4
		WHERE job_id = $1
	`, jobID, domain.JobStatusInProgress, workerID, at)
	if err != nil {
		return false, fmt.Errorf("failed to assign job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// RejectOffer declines a pending offer. Returns false when the offer was no
// longer pending.
func (s *Storage) RejectOffer(ctx context.Context, offerID string, reason *string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE offers
		SET status = $2, rejection_reason = $3, responded_at = $4, updated_at = $4
		WHERE offer_id = $1 AND status = $5
	`, offerID, domain.OfferStatusRejected, reason, at, domain.OfferStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to reject offer: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

// ExpireOffer marks a pending offer expired. Returns false when the offer was
// no longer pending.
func (s *Storage) ExpireOffer(ctx context.Context, offerID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE offers
		SET status = $2, updated_at = $3
		WHERE offer_id = $1 AND status = $4
	`, offerID, domain.OfferStatusExpired, at, domain.OfferStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to expire offer: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

// CompleteOffer atomically completes an accepted offer together with its job.
// Returns false when the offer was not in the accepted state.
func (s *Storage) CompleteOffer(ctx context.Context, offerID string, at time.Time) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE offers
		SET status = $2, updated_at = $3
		WHERE offer_id = $1 AND status = $4
	`, offerID, domain.OfferStatusCompleted, at, domain.OfferStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("failed to complete offer: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	} else if rows == 0 {
		return false, nil
	}

	var jobID string
	err = tx.QueryRowContext(ctx,
		`SELECT job_id FROM offers WHERE offer_id = $1`, offerID,
	).Scan(&jobID)
	if err != nil {
		return false, fmt.Errorf("failed to read completed offer: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, updated_at = $3
		WHERE job_id = $1
	`, jobID, domain.JobStatusCompleted, at)
	if err != nil {
		return false, fmt.Errorf("failed to complete job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}
