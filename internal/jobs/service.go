// Package jobs implements the job lifecycle: posting, guarded status
// transitions and cancellation. Posting a job triggers automatic offer
// dispatch.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/faenaapp/faena-backend/internal/domain"
)

// Store persists jobs. UpdateJobStatus is a conditional update that reports
// false when the job was no longer in the expected state.
type Store interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	CreateJob(ctx context.Context, j *domain.Job) error
	UpdateJobStatus(ctx context.Context, jobID string, from, to domain.JobStatus) (bool, error)
}

// CategoryStore resolves service categories.
type CategoryStore interface {
	GetCategory(ctx context.Context, categoryID string) (*domain.ServiceCategory, error)
}

// Dispatcher creates the first automatic offer for a freshly posted job.
type Dispatcher interface {
	CreateAutomaticOffer(ctx context.Context, jobID string) (*domain.Offer, error)
}

// CreateInput carries a new job posting.
type CreateInput struct {
	UserID            string
	ServiceCategoryID string
	Title             string
	Description       string
	Address           string
	Latitude          float64
	Longitude         float64
	EstimatedBudget   *float64
	PreferredDate     *time.Time
	Notes             *string
	ImageURLs         []string
}

// Service is the job lifecycle service.
type Service struct {
	store      Store
	categories CategoryStore
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a job service. dispatcher may be nil, in which case
// posting does not trigger an automatic offer.
func NewService(store Store, categories CategoryStore, dispatcher Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		categories: categories,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns a job by id.
func (s *Service) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.store.GetJob(ctx, jobID)
}

// Create posts a new PENDING job and kicks off automatic offer dispatch. A
// dispatch failure is logged and does not undo the posting.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Job, error) {
	category, err := s.categories.GetCategory(ctx, in.ServiceCategoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, fmt.Errorf("%w: category %s is inactive", domain.ErrInvalidState, category.Name)
	}

	now := s.now()
	job := &domain.Job{
		ID:                uuid.New().String(),
		UserID:            in.UserID,
		ServiceCategoryID: in.ServiceCategoryID,
		Title:             in.Title,
		Description:       in.Description,
		Address:           in.Address,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		EstimatedBudget:   in.EstimatedBudget,
		PreferredDate:     in.PreferredDate,
		Notes:             in.Notes,
		ImageURLs:         in.ImageURLs,
		Status:            domain.JobStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.logger.Info("job posted",
		slog.String("job_id", job.ID),
		slog.String("category_id", job.ServiceCategoryID),
	)

	if s.dispatcher != nil {
		if _, err := s.dispatcher.CreateAutomaticOffer(ctx, job.ID); err != nil {
			s.logger.Error("automatic offer dispatch failed",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
		}
	}

	return job, nil
}

// UpdateStatus moves a job to a new lifecycle status, guarded by the job
// state machine.
func (s *Service) UpdateStatus(ctx context.Context, jobID string, status string) (*domain.Job, error) {
	target, err := domain.ParseJobStatus(status)
	if err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !domain.IsJobTransitionAllowed(job.Status, target) {
		return nil, fmt.Errorf("%w: cannot move job from %s to %s", domain.ErrInvalidState, job.Status, target)
	}

	ok, err := s.store.UpdateJobStatus(ctx, jobID, job.Status, target)
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: job is no longer %s", domain.ErrInvalidState, job.Status)
	}

	return s.store.GetJob(ctx, jobID)
}

// Cancel cancels a job on behalf of its owner.
func (s *Service) Cancel(ctx context.Context, jobID, callerID string) (*domain.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.UserID != callerID {
		return nil, domain.ErrForbidden
	}

	return s.UpdateStatus(ctx, jobID, string(domain.JobStatusCancelled))
}
