package domain

import (
	"fmt"
	"time"
)

// OfferStatus values mirror the offer_status enum in PostgreSQL.
//
// Offer status graph:
//
//	PENDING ──► ACCEPTED ──► COMPLETED
//	    │
//	    ├──► REJECTED
//	    ├──► EXPIRED
//	    └──► CANCELLED
//
// REJECTED, EXPIRED, CANCELLED and COMPLETED are terminal states. An offer
// never returns to PENDING once responded to.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "PENDING"
	OfferStatusAccepted  OfferStatus = "ACCEPTED"
	OfferStatusRejected  OfferStatus = "REJECTED"
	OfferStatusExpired   OfferStatus = "EXPIRED"
	OfferStatusCompleted OfferStatus = "COMPLETED"
	OfferStatusCancelled OfferStatus = "CANCELLED"
)

// validOfferTransitions lists every allowed (from → to) pair.
var validOfferTransitions = map[OfferStatus][]OfferStatus{
	OfferStatusPending:  {OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired, OfferStatusCancelled},
	OfferStatusAccepted: {OfferStatusCompleted},
	// all other states are terminal, no outgoing transitions
}

// ParseOfferStatus converts a raw string to an OfferStatus, returning an
// error for unknown values.
func ParseOfferStatus(s string) (OfferStatus, error) {
	st := OfferStatus(s)
	switch st {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected,
		OfferStatusExpired, OfferStatusCompleted, OfferStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// IsOfferTransitionAllowed returns true when moving from → to is permitted by
// the state machine.
func IsOfferTransitionAllowed(from, to OfferStatus) bool {
	allowed, ok := validOfferTransitions[from]
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

// IsTerminalOfferStatus returns true when the status has no outgoing
// transitions.
func IsTerminalOfferStatus(s OfferStatus) bool {
	_, ok := validOfferTransitions[s]
	return !ok
}

// Offer is a single time-boxed dispatch attempt linking one Job to one
// candidate worker. MatchingScore and Distance are snapshots captured at
// creation and never recomputed.
type Offer struct {
	ID              string      `db:"offer_id" json:"id"`
	JobID           string      `db:"job_id" json:"jobId"`
	WorkerID        string      `db:"worker_id" json:"workerId"`
	Status          OfferStatus `db:"status" json:"status"`
	ProposedBudget  *float64    `db:"proposed_budget" json:"proposedBudget,omitempty"`
	Message         *string     `db:"message" json:"message,omitempty"`
	RejectionReason *string     `db:"rejection_reason" json:"rejectionReason,omitempty"`
	MatchingScore   int         `db:"matching_score" json:"matchingScore"`
	DistanceKm      float64     `db:"distance_km" json:"distanceKm"`
	RespondedAt     *time.Time  `db:"responded_at" json:"respondedAt,omitempty"`
	ExpiresAt       time.Time   `db:"expires_at" json:"expiresAt"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}
