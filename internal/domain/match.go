package domain

import "time"

// JobMatch is either a computed candidate pairing or a worker's explicit
// application to a job, unique on (job, worker). Score and DistanceKm are the
// Scorer's values at the time the record was written.
type JobMatch struct {
	ID                 string     `db:"match_id" json:"id"`
	JobID              string     `db:"job_id" json:"jobId"`
	WorkerID           string     `db:"worker_id" json:"workerId"`
	Score              int        `db:"score" json:"score"`
	DistanceKm         float64    `db:"distance_km" json:"distanceKm"`
	IsApplied          bool       `db:"is_applied" json:"isApplied"`
	AppliedAt          *time.Time `db:"applied_at" json:"appliedAt,omitempty"`
	ApplicationMessage *string    `db:"application_message" json:"applicationMessage,omitempty"`
	ProposedBudget     *float64   `db:"proposed_budget" json:"proposedBudget,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}
