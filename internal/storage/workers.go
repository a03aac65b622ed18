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

const workerProfileColumns = `
	wp.worker_profile_id, wp.user_id, wp.is_verified, wp.is_active_today,
	wp.rating_average, wp.total_jobs_completed, wp.radius_km,
	wp.subscription_status, wp.subscription_expires_at,
	wp.latitude, wp.longitude, wp.description,
	wp.id_document_url, wp.criminal_record_url, wp.certificate_urls,
	wp.created_at, wp.updated_at`

func scanWorkerProfile(row rowScanner, p *domain.WorkerProfile, extra ...any) error {
	dest := []any{
		&p.ID,
		&p.UserID,
		&p.IsVerified,
		&p.IsActiveToday,
		&p.RatingAverage,
		&p.TotalJobsCompleted,
		&p.RadiusKm,
		&p.SubscriptionStatus,
		&p.SubscriptionExpiresAt,
		&p.Latitude,
		&p.Longitude,
		&p.Description,
		&p.IDDocumentURL,
		&p.CriminalRecordURL,
		pq.Array(&p.CertificateURLs),
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// GetProfileByUserID returns a worker profile with its categories loaded.
func (s *Storage) GetProfileByUserID(ctx context.Context, userID string) (*domain.WorkerProfile, error) {
	query := `SELECT ` + workerProfileColumns + ` FROM worker_profiles wp WHERE wp.user_id = $1`

	var profile domain.WorkerProfile
	if err := scanWorkerProfile(s.db.QueryRowContext(ctx, query, userID), &profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to get worker profile: %w", err)
	}

	categories, err := s.loadProfileCategories(ctx, []string{profile.ID})
	if err != nil {
		return nil, err
	}
	profile.Categories = categories[profile.ID]
	return &profile, nil
}

// SetAvailability flips the daily availability flag and, when coordinates are
// given, refreshes the stored location in the same statement.
func (s *Storage) SetAvailability(ctx context.Context, profileID string, active bool, lat, lng *float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE worker_profiles
		SET is_active_today = $2,
		    latitude = COALESCE($3, latitude),
		    longitude = COALESCE($4, longitude),
		    updated_at = NOW()
		WHERE worker_profile_id = $1
	`, profileID, active, lat, lng)
	if err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	return nil
}

// ListCandidates returns active, located workers in the category within the
// radius, joined with their user rows. The great-circle filter runs in SQL so
// the pool never loads the whole worker table; exact scoring happens in Go.
func (s *Storage) ListCandidates(ctx context.Context, q matching.CandidateQuery) ([]matching.Candidate, error) {
	query := `
		SELECT ` + workerProfileColumns + `,
			u.user_id, u.email, u.first_name, u.last_name, u.national_id,
			u.phone, u.photo_url, u.role, u.status, u.deleted_at,
			u.created_at, u.updated_at
		FROM worker_profiles wp
		JOIN users u ON u.user_id = wp.user_id
		JOIN worker_service_categories wsc ON wsc.worker_profile_id = wp.worker_profile_id
		WHERE wsc.service_category_id = $1
		  AND wp.is_active_today = TRUE
		  AND u.status = $2
		  AND u.user_id != $3
		  AND wp.latitude IS NOT NULL
		  AND wp.longitude IS NOT NULL
		  AND 6371 * acos(least(1.0,
				cos(radians($4)) * cos(radians(wp.latitude)) *
				cos(radians(wp.longitude) - radians($5)) +
				sin(radians($4)) * sin(radians(wp.latitude)))) <= $6
		ORDER BY wp.rating_average DESC
		LIMIT $7
	`

	rows, err := s.db.QueryContext(ctx, query,
		q.CategoryID, domain.UserStatusActive, q.ExcludeUserID,
		q.Latitude, q.Longitude, q.RadiusKm, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []matching.Candidate
	var profileIDs []string
	for rows.Next() {
		var c matching.Candidate
		err := scanWorkerProfile(rows, &c.Profile,
			&c.User.ID,
			&c.User.Email,
			&c.User.FirstName,
			&c.User.LastName,
			&c.User.NationalID,
			&c.User.Phone,
			&c.User.PhotoURL,
			&c.User.Role,
			&c.User.Status,
			&c.User.DeletedAt,
			&c.User.CreatedAt,
			&c.User.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
		profileIDs = append(profileIDs, c.Profile.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	categories, err := s.loadProfileCategories(ctx, profileIDs)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].Profile.Categories = categories[candidates[i].Profile.ID]
	}
	return candidates, nil
}

func (s *Storage) loadProfileCategories(ctx context.Context, profileIDs []string) (map[string][]domain.ServiceCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wsc.worker_profile_id,
			sc.service_category_id, sc.name, sc.description, sc.icon_url,
			sc.is_active, sc.created_at, sc.updated_at
		FROM worker_service_categories wsc
		JOIN service_categories sc ON sc.service_category_id = wsc.service_category_id
		WHERE wsc.worker_profile_id = ANY($1)
	`, pq.Array(profileIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load profile categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.ServiceCategory, len(profileIDs))
	for rows.Next() {
		var profileID string
		var c domain.ServiceCategory
		err := rows.Scan(&profileID, &c.ID, &c.Name, &c.Description,
			&c.IconURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile category: %w", err)
		}
		out[profileID] = append(out[profileID], c)
	}
	return out, rows.Err()
}
