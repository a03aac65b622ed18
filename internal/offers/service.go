// Package offers implements the offer dispatcher and the offer lifecycle:
// creating time-boxed offers for the best-ranked candidate, handling worker
// responses, and advancing to the next candidate on rejection or expiry.
package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/matching"
)

// Dispatch tuning. The dispatcher searches wider and with a lower score bar
// than worker-initiated browsing, and re-dispatch fetches a deeper list to
// survive the contacted-worker filter.
const (
	DispatchRadiusKm   = 50.0
	DispatchMinScore   = 50
	DispatchLimit      = 10
	RedispatchLimit    = 20
	OfferTTL           = 24 * time.Hour
	offerSubject       = "New job offer"
	offerMessageFormat = "Hello! You have been offered the job %q. Are you interested?"
)

// ErrPendingOfferExists is surfaced by the store when creating an offer would
// violate the one-PENDING-offer-per-job invariant.
var ErrPendingOfferExists = errors.New("job already has a pending offer")

// Store persists offers. The transition methods are conditional updates: they
// report false when the offer was no longer in the required state, which is
// how a lost accept/reject race is detected.
type Store interface {
	GetOffer(ctx context.Context, offerID string) (*domain.Offer, error)
	// GetPendingOfferForJob returns (nil, nil) when the job has no PENDING offer.
	GetPendingOfferForJob(ctx context.Context, jobID string) (*domain.Offer, error)
	// CreateOffer returns ErrPendingOfferExists when a PENDING offer already
	// exists for the job.
	CreateOffer(ctx context.Context, o *domain.Offer) error
	ListWorkerOffers(ctx context.Context, workerID string, status domain.OfferStatus) ([]domain.Offer, error)
	// ListContactedWorkerIDs returns the workers whose offers for the job
	// ended REJECTED or EXPIRED.
	ListContactedWorkerIDs(ctx context.Context, jobID string) ([]string, error)
	ListExpiredPendingOffers(ctx context.Context, now time.Time, limit int) ([]domain.Offer, error)

	// AcceptOffer transitions the offer to ACCEPTED and, in the same
	// transaction, assigns the worker and drives the job to IN_PROGRESS.
	AcceptOffer(ctx context.Context, offerID string, message *string, at time.Time) (bool, error)
	RejectOffer(ctx context.Context, offerID string, reason *string, at time.Time) (bool, error)
	ExpireOffer(ctx context.Context, offerID string, at time.Time) (bool, error)
	// CompleteOffer transitions ACCEPTED → COMPLETED and drives the job to
	// COMPLETED in the same transaction.
	CompleteOffer(ctx context.Context, offerID string, at time.Time) (bool, error)
}

// JobStore resolves jobs for dispatch.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
}

// UserStore resolves directory records for notifications.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// Matcher ranks candidate workers for a job.
type Matcher interface {
	FindForJob(ctx context.Context, jobID string, opts matching.FindOptions) ([]matching.Match, error)
}

// Notifier delivers fire-and-forget alerts. Implementations log failures and
// never block the calling flow.
type Notifier interface {
	SendAlert(ctx context.Context, to, subject, text string)
}

// Config holds the offer service dependencies.
type Config struct {
	Offers   Store
	Jobs     JobStore
	Users    UserStore
	Matcher  Matcher
	Notifier Notifier
	Logger   *slog.Logger
}

// Service governs the offer lifecycle.
type Service struct {
	offers   Store
	jobs     JobStore
	users    UserStore
	matcher  Matcher
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates an offer service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		offers:   cfg.Offers,
		jobs:     cfg.Jobs,
		users:    cfg.Users,
		matcher:  cfg.Matcher,
		notifier: cfg.Notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateAutomaticOffer picks the best-ranked candidate for the job and
// creates a PENDING offer for them. It returns (nil, nil) when no eligible
// workers exist, and the existing offer unchanged when the job already has a
// PENDING one.
func (s *Service) CreateAutomaticOffer(ctx context.Context, jobID string) (*domain.Offer, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	existing, err := s.offers.GetPendingOfferForJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("lookup pending offer: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	matches, err := s.matcher.FindForJob(ctx, jobID, matching.FindOptions{
		RadiusKm: DispatchRadiusKm,
		MinScore: DispatchMinScore,
		Limit:    DispatchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	if len(matches) == 0 {
		s.logger.Info("no eligible workers for job",
			slog.String("job_id", jobID),
		)
		return nil, nil
	}

	return s.createOfferFor(ctx, job, matches[0])
}

// Accept records the worker's acceptance. The offer moves to ACCEPTED and the
// job is assigned and driven to IN_PROGRESS as one transaction. Expiry is
// detected lazily: a stale offer is transitioned to EXPIRED, the next
// candidate is dispatched, and the caller gets ErrOfferExpired.
func (s *Service) Accept(ctx context.Context, offerID, workerID string, message *string) (*domain.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.WorkerID != workerID {
		return nil, domain.ErrForbidden
	}
	if offer.Status != domain.OfferStatusPending {
		return nil, fmt.Errorf("%w: offer is %s", domain.ErrInvalidState, offer.Status)
	}
	if err := s.expireIfStale(ctx, offer); err != nil {
		return nil, err
	}

	ok, err := s.offers.AcceptOffer(ctx, offerID, message, s.now())
	if err != nil {
		return nil, fmt.Errorf("accept offer: %w", err)
	}
	if !ok {
		// Lost the race: another transition landed first.
		return nil, fmt.Errorf("%w: offer is no longer pending", domain.ErrInvalidState)
	}

	s.notifyClient(ctx, offer.JobID, "Offer accepted",
		"A worker accepted your job offer and will be in touch shortly.")

	return s.offers.GetOffer(ctx, offerID)
}

// Reject records the worker's rejection and immediately dispatches the next
// candidate, if any remain. Rejection is never a dead end while candidates
// are left.
func (s *Service) Reject(ctx context.Context, offerID, workerID string, reason *string) (*domain.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.WorkerID != workerID {
		return nil, domain.ErrForbidden
	}
	if offer.Status != domain.OfferStatusPending {
		return nil, fmt.Errorf("%w: offer is %s", domain.ErrInvalidState, offer.Status)
	}
	if err := s.expireIfStale(ctx, offer); err != nil {
		return nil, err
	}

	ok, err := s.offers.RejectOffer(ctx, offerID, reason, s.now())
	if err != nil {
		return nil, fmt.Errorf("reject offer: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: offer is no longer pending", domain.ErrInvalidState)
	}

	if err := s.dispatchNext(ctx, offer.JobID); err != nil {
		// The rejection itself succeeded; a dispatch failure must not undo it.
		s.logger.Error("dispatch to next candidate failed",
			slog.String("job_id", offer.JobID),
			slog.Any("error", err),
		)
	}

	return s.offers.GetOffer(ctx, offerID)
}

// Complete marks an accepted offer's work as done, driving both the offer and
// the job to COMPLETED. Privileged operation.
func (s *Service) Complete(ctx context.Context, offerID string) (*domain.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.Status != domain.OfferStatusAccepted {
		return nil, fmt.Errorf("%w: only accepted offers can be completed", domain.ErrInvalidState)
	}

	ok, err := s.offers.CompleteOffer(ctx, offerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("complete offer: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: offer is no longer accepted", domain.ErrInvalidState)
	}

	return s.offers.GetOffer(ctx, offerID)
}

// WorkerOffers lists a worker's offers, newest first, optionally filtered by
// status.
func (s *Service) WorkerOffers(ctx context.Context, workerID string, status string) ([]domain.Offer, error) {
	var st domain.OfferStatus
	if status != "" {
		parsed, err := domain.ParseOfferStatus(status)
		if err != nil {
			return nil, err
		}
		st = parsed
	}
	return s.offers.ListWorkerOffers(ctx, workerID, st)
}

// ExpireDueOffers transitions PENDING offers past their expiry to EXPIRED and
// dispatches the next candidate for each affected job. Called by the
// periodic sweep; returns how many offers were expired.
func (s *Service) ExpireDueOffers(ctx context.Context, limit int) (int, error) {
	due, err := s.offers.ListExpiredPendingOffers(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("list expired offers: %w", err)
	}

	expired := 0
	for _, offer := range due {
		ok, err := s.offers.ExpireOffer(ctx, offer.ID, s.now())
		if err != nil {
			s.logger.Error("expire offer failed",
				slog.String("offer_id", offer.ID),
				slog.Any("error", err),
			)
			continue
		}
		if !ok {
			// Responded to between the scan and the update.
			continue
		}
		expired++

		if err := s.dispatchNext(ctx, offer.JobID); err != nil {
			s.logger.Error("dispatch after expiry failed",
				slog.String("job_id", offer.JobID),
				slog.Any("error", err),
			)
		}
	}

	return expired, nil
}

// expireIfStale lazily expires an offer whose deadline has passed, kicks off
// the next dispatch, and reports ErrOfferExpired.
func (s *Service) expireIfStale(ctx context.Context, offer *domain.Offer) error {
	if !s.now().After(offer.ExpiresAt) {
		return nil
	}

	if _, err := s.offers.ExpireOffer(ctx, offer.ID, s.now()); err != nil {
		return fmt.Errorf("expire offer: %w", err)
	}

	if err := s.dispatchNext(ctx, offer.JobID); err != nil {
		s.logger.Error("dispatch after lazy expiry failed",
			slog.String("job_id", offer.JobID),
			slog.Any("error", err),
		)
	}

	return domain.ErrOfferExpired
}

// dispatchNext finds the best not-yet-contacted candidate for the job and
// creates a PENDING offer for them. No remaining candidates is a valid
// outcome, not an error: the job simply stays unassigned.
func (s *Service) dispatchNext(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	pending, err := s.offers.GetPendingOfferForJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("lookup pending offer: %w", err)
	}
	if pending != nil {
		return nil
	}

	contacted, err := s.offers.ListContactedWorkerIDs(ctx, jobID)
	if err != nil {
		return fmt.Errorf("list contacted workers: %w", err)
	}
	contactedSet := make(map[string]struct{}, len(contacted))
	for _, id := range contacted {
		contactedSet[id] = struct{}{}
	}

	matches, err := s.matcher.FindForJob(ctx, jobID, matching.FindOptions{
		RadiusKm: DispatchRadiusKm,
		MinScore: DispatchMinScore,
		Limit:    RedispatchLimit,
	})
	if err != nil {
		return fmt.Errorf("find candidates: %w", err)
	}

	for _, m := range matches {
		if _, seen := contactedSet[m.Worker.ID]; seen {
			continue
		}
		_, err := s.createOfferFor(ctx, job, m)
		return err
	}

	s.logger.Info("candidate pool exhausted",
		slog.String("job_id", jobID),
	)
	return nil
}

// notifyClient alerts the job's owner. Lookup or delivery problems are logged
// and swallowed: notifications never fail the triggering operation.
func (s *Service) notifyClient(ctx context.Context, jobID, subject, text string) {
	if s.notifier == nil {
		return
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		s.logger.Warn("client notification skipped",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		return
	}
	owner, err := s.users.GetUser(ctx, job.UserID)
	if err != nil {
		s.logger.Warn("client notification skipped",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		return
	}

	s.notifier.SendAlert(ctx, owner.Email, subject, text)
}

func (s *Service) createOfferFor(ctx context.Context, job *domain.Job, m matching.Match) (*domain.Offer, error) {
	now := s.now()
	message := fmt.Sprintf(offerMessageFormat, job.Title)
	offer := &domain.Offer{
		ID:             uuid.New().String(),
		JobID:          job.ID,
		WorkerID:       m.Worker.ID,
		Status:         domain.OfferStatusPending,
		ProposedBudget: job.EstimatedBudget,
		Message:        &message,
		MatchingScore:  m.Score,
		DistanceKm:     m.DistanceKm,
		ExpiresAt:      now.Add(OfferTTL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.offers.CreateOffer(ctx, offer); err != nil {
		if errors.Is(err, ErrPendingOfferExists) {
			// A concurrent dispatch won; return its offer unchanged.
			return s.offers.GetPendingOfferForJob(ctx, job.ID)
		}
		return nil, fmt.Errorf("create offer: %w", err)
	}

	if s.notifier != nil {
		s.notifier.SendAlert(ctx, m.Worker.Email, offerSubject, message)
	}

	s.logger.Info("offer dispatched",
		slog.String("offer_id", offer.ID),
		slog.String("job_id", job.ID),
		slog.String("worker_id", m.Worker.ID),
		slog.Int("score", m.Score),
	)

	return offer, nil
}
