// Package workers manages worker-profile availability. Activating
// availability requires a location and re-runs automatic dispatch for every
// pending job, so freshly available workers are considered immediately.
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/faenaapp/faena-backend/internal/domain"
)

// Store persists worker profiles.
type Store interface {
	GetProfileByUserID(ctx context.Context, userID string) (*domain.WorkerProfile, error)
	// SetAvailability flips the availability flag; coordinates are stored
	// only when activating.
	SetAvailability(ctx context.Context, profileID string, active bool, lat, lng *float64) error
}

// JobStore lists pending jobs for dispatch-on-activation.
type JobStore interface {
	ListJobIDsByStatus(ctx context.Context, status domain.JobStatus) ([]string, error)
}

// Dispatcher creates automatic offers.
type Dispatcher interface {
	CreateAutomaticOffer(ctx context.Context, jobID string) (*domain.Offer, error)
}

// Service is the worker availability service.
type Service struct {
	store      Store
	jobs       JobStore
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewService creates a worker service. dispatcher may be nil, in which case
// activation does not re-dispatch pending jobs.
func NewService(store Store, jobs JobStore, dispatcher Dispatcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		jobs:       jobs,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Profile returns the worker profile for a user.
func (s *Service) Profile(ctx context.Context, userID string) (*domain.WorkerProfile, error) {
	return s.store.GetProfileByUserID(ctx, userID)
}

// ToggleActiveToday flips the worker's availability for the day. Activation
// requires coordinates and refreshes the stored location; a worker may never
// be active without a known location. Deactivation needs none.
//
// On activation every PENDING job is re-dispatched; a failure on one job is
// logged and does not stop the rest.
func (s *Service) ToggleActiveToday(ctx context.Context, userID string, lat, lng *float64) (*domain.WorkerProfile, error) {
	profile, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	activating := !profile.IsActiveToday

	if activating && (lat == nil || lng == nil) {
		return nil, domain.ErrLocationRequired
	}

	if err := s.store.SetAvailability(ctx, profile.ID, activating, lat, lng); err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}

	if activating && s.dispatcher != nil {
		s.dispatchPendingJobs(ctx, userID)
	}

	return s.store.GetProfileByUserID(ctx, userID)
}

func (s *Service) dispatchPendingJobs(ctx context.Context, userID string) {
	jobIDs, err := s.jobs.ListJobIDsByStatus(ctx, domain.JobStatusPending)
	if err != nil {
		s.logger.Error("list pending jobs failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return
	}

	for _, jobID := range jobIDs {
		if _, err := s.dispatcher.CreateAutomaticOffer(ctx, jobID); err != nil {
			s.logger.Error("dispatch on activation failed",
				slog.String("job_id", jobID),
				slog.Any("error", err),
			)
		}
	}
}
