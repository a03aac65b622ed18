// Package domain holds the marketplace entities, their lifecycle state
// machines and the sentinel errors shared across services.
//
// Job status graph:
//
//	PENDING ──► ASSIGNED ──► IN_PROGRESS ──► COMPLETED
//	    │            │             │
//	    │            │             └──► DISPUTED ──► {COMPLETED, CANCELLED}
//	    └────────────┴──► CANCELLED
//
// COMPLETED and CANCELLED are terminal states.
package domain

import (
	"fmt"
	"time"
)

// JobStatus values mirror the job_status enum in PostgreSQL.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusAssigned   JobStatus = "ASSIGNED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
	JobStatusDisputed   JobStatus = "DISPUTED"
)

// validJobTransitions lists every allowed (from → to) pair.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusAssigned, JobStatusInProgress, JobStatusCancelled},
	JobStatusAssigned:   {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusDisputed},
	JobStatusDisputed:   {JobStatusCompleted, JobStatusCancelled},
	// COMPLETED and CANCELLED are terminal, no outgoing transitions
}

// ParseJobStatus converts a raw string to a JobStatus, returning an error for
// unknown values.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobStatusPending, JobStatusAssigned, JobStatusInProgress,
		JobStatusCompleted, JobStatusCancelled, JobStatusDisputed:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsJobTransitionAllowed returns true when moving from → to is permitted.
func IsJobTransitionAllowed(from, to JobStatus) bool {
	allowed, ok := validJobTransitions[from]
	if !ok {
		return false // terminal state
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job is a task posted by a client. Latitude/longitude are decimal degrees.
type Job struct {
	ID                string     `db:"job_id" json:"id"`
	UserID            string     `db:"user_id" json:"userId"`
	WorkerID          *string    `db:"worker_id" json:"workerId,omitempty"`
	ServiceCategoryID string     `db:"service_category_id" json:"serviceCategoryId"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	Address           string     `db:"address" json:"address"`
	Latitude          float64    `db:"latitude" json:"latitude"`
	Longitude         float64    `db:"longitude" json:"longitude"`
	EstimatedBudget   *float64   `db:"estimated_budget" json:"estimatedBudget,omitempty"`
	PreferredDate     *time.Time `db:"preferred_date" json:"preferredDate,omitempty"`
	ImageURLs         []string   `db:"-" json:"imageUrls,omitempty"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	Status            JobStatus  `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}
