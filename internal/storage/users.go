package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/faenaapp/faena-backend/internal/domain"
)

const userColumns = `
	user_id, email, first_name, last_name, national_id, phone, photo_url,
	role, status, deleted_at, created_at, updated_at`

// GetUser returns a user by id.
func (s *Storage) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.getUserWhere(ctx, "user_id = $1", userID)
}

// GetUserByEmail returns a user by email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, "email = $1", email)
}

// GetUserByNationalID returns a user by national ID number.
func (s *Storage) GetUserByNationalID(ctx context.Context, nationalID string) (*domain.User, error) {
	return s.getUserWhere(ctx, "national_id = $1", nationalID)
}

func (s *Storage) getUserWhere(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user.
func (s *Storage) CreateUser(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (
			user_id, email, first_name, last_name, national_id, phone,
			photo_url, role, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.NationalID, u.Phone,
		u.PhotoURL, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUserRole changes a user's role.
func (s *Storage) UpdateUserRole(ctx context.Context, userID, role string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, role)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SoftDeleteUser marks the user deleted. The row stays for audit history.
func (s *Storage) SoftDeleteUser(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET status = $2, deleted_at = $3, updated_at = $3
		WHERE user_id = $1 AND deleted_at IS NULL
	`, userID, domain.UserStatusDeleted, at)
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
