// Package dto defines the HTTP request and response shapes.
package dto

import "time"

// CreateJobRequest is the body for POST /api/v1/jobs.
type CreateJobRequest struct {
	ServiceCategoryID string     `json:"service_category_id" binding:"required"`
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description" binding:"required"`
	Address           string     `json:"address" binding:"required"`
	Latitude          *float64   `json:"latitude" binding:"required"`
	Longitude         *float64   `json:"longitude" binding:"required"`
	EstimatedBudget   *float64   `json:"estimated_budget"`
	PreferredDate     *time.Time `json:"preferred_date"`
	Notes             *string    `json:"notes"`
	ImageURLs         []string   `json:"image_urls"`
}

// UpdateJobStatusRequest is the body for PATCH /api/v1/jobs/:job_id/status.
type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// MatchQuery carries the finder tuning query parameters. Zero values take the
// service defaults.
type MatchQuery struct {
	RadiusKm  float64 `form:"radiusKm"`
	MinScore  int     `form:"minScore"`
	Limit     int     `form:"limit"`
	JobStatus string  `form:"jobStatus"`
}

// ApplyRequest is the body for POST /api/v1/matching/job/:job_id/apply.
type ApplyRequest struct {
	Message        *string  `json:"message"`
	ProposedBudget *float64 `json:"proposed_budget"`
}

// AcceptOfferRequest is the body for POST /api/v1/offers/:offer_id/accept.
type AcceptOfferRequest struct {
	Message *string `json:"message"`
}

// RejectOfferRequest is the body for POST /api/v1/offers/:offer_id/reject.
type RejectOfferRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ToggleAvailabilityRequest is the body for
// POST /api/v1/workers/availability/toggle. Coordinates are required when the
// toggle activates the worker.
type ToggleAvailabilityRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// RegisterUserRequest is the body for POST /api/v1/users.
type RegisterUserRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	NationalID string  `json:"national_id" binding:"required"`
	Phone      *string `json:"phone"`
	Role       string  `json:"role"`
}
