// Package users is the marketplace user directory. Registration is gated by
// the identity-registry lookup: a failed verification blocks the operation,
// unlike notification delivery which degrades gracefully.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faenaapp/faena-backend/internal/domain"
	"github.com/faenaapp/faena-backend/internal/identity"
)

// Store persists directory records.
type Store interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByNationalID(ctx context.Context, nationalID string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	UpdateUserRole(ctx context.Context, userID, role string) error
	SoftDeleteUser(ctx context.Context, userID string, at time.Time) error
}

// Verifier resolves national ID numbers against the registry proxy.
type Verifier interface {
	LookupNationalID(ctx context.Context, number string) (*identity.Person, error)
}

// Notifier sends the signup confirmation. Fire-and-forget.
type Notifier interface {
	SendSignupConfirmation(ctx context.Context, to, hash string)
}

// RegisterInput carries a new registration.
type RegisterInput struct {
	Email      string
	FirstName  string
	LastName   string
	NationalID string
	Phone      *string
	Role       string
}

// Service is the user directory service.
type Service struct {
	store    Store
	verifier Verifier
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a directory service. verifier and notifier may be nil
// (no identity gate, no confirmation mail).
func NewService(store Store, verifier Verifier, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		verifier: verifier,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}

// GetByEmail returns a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

// GetByNationalID returns a user by national ID number.
func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (*domain.User, error) {
	return s.store.GetUserByNationalID(ctx, nationalID)
}

// Register verifies the national ID against the registry, creates the user
// and queues a signup-confirmation mail. Verification failure blocks the
// registration: this is the one external call that gates a security-relevant
// decision.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if s.verifier != nil {
		person, err := s.verifier.LookupNationalID(ctx, in.NationalID)
		if err != nil {
			return nil, fmt.Errorf("identity verification failed: %w", err)
		}
		// The registry is authoritative for the legal name.
		if person.FirstNames != "" {
			in.FirstName = person.FirstNames
			in.LastName = strings.TrimSpace(person.PaternalSurname + " " + person.MaternalSurname)
		}
	}

	now := s.now()
	nationalID := in.NationalID
	user := &domain.User{
		ID:         uuid.New().String(),
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		NationalID: &nationalID,
		Phone:      in.Phone,
		Role:       in.Role,
		Status:     domain.UserStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if user.Role == "" {
		user.Role = domain.RoleClient
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.notifier != nil {
		s.notifier.SendSignupConfirmation(ctx, user.Email, uuid.New().String())
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, nil
}

// UpdateRole changes a user's role.
func (s *Service) UpdateRole(ctx context.Context, userID, role string) error {
	switch role {
	case domain.RoleClient, domain.RoleWorker, domain.RoleAdmin:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	return s.store.UpdateUserRole(ctx, userID, role)
}

// SoftDelete marks a user deleted without removing the row.
func (s *Service) SoftDelete(ctx context.Context, userID string) error {
	return s.store.SoftDeleteUser(ctx, userID, s.now())
}
