package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/matching"
)

const jobColumns = `
	job_id, user_id, worker_id, service_category_id, title, description,
	address, latitude, longitude, estimated_budget, preferred_date,
	image_urls, notes, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.WorkerID,
		&job.ServiceCategoryID,
		&job.Title,
		&job.Description,
		&job.Address,
		&job.Latitude,
		&job.Longitude,
		&job.EstimatedBudget,
		&job.PreferredDate,
		pq.Array(&job.ImageURLs),
		&job.Notes,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob returns a job by id.
func (s *Storage) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// CreateJob inserts a new job.
func (s *Storage) CreateJob(ctx context.Context, j *domain.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, user_id, worker_id, service_category_id, title, description,
			address, latitude, longitude, estimated_budget, preferred_date,
			image_urls, notes, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		j.ID,
		j.UserID,
		j.WorkerID,
		j.ServiceCategoryID,
		j.Title,
		j.Description,
		j.Address,
		j.Latitude,
		j.Longitude,
		j.EstimatedBudget,
		j.PreferredDate,
		pq.Array(j.ImageURLs),
		j.Notes,
		j.Status,
		j.CreatedAt,
		j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// ListOpenJobs returns candidate jobs for a browsing worker: matching status,
// category membership, excluding the worker's own postings.
func (s *Storage) ListOpenJobs(ctx context.Context, q matching.OpenJobsQuery) ([]domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		  AND service_category_id = ANY($2)
		  AND user_id != $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, q.Status, pq.Array(q.CategoryIDs), q.ExcludeUserID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list open jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ListJobIDsByStatus returns ids of jobs in the given status.
func (s *Storage) ListJobIDsByStatus(ctx context.Context, status domain.JobStatus) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT job_id FROM jobs WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list job ids: %w", err)
	}
	return ids, nil
}

// UpdateJobStatus moves a job from → to. Returns false when the job was no
// longer in the expected state.
func (s *Storage) UpdateJobStatus(ctx context.Context, jobID string, from, to domain.JobStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $3, updated_at = NOW()
		WHERE job_id = $1 AND status = $2
	`, jobID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update job status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}
