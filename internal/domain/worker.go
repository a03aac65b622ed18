package domain

import "time"

// SubscriptionStatus values mirror the subscription_status enum in PostgreSQL.
type SubscriptionStatus string

const (
	SubscriptionActive         SubscriptionStatus = "ACTIVE"
	SubscriptionExpired        SubscriptionStatus = "EXPIRED"
	SubscriptionSuspended      SubscriptionStatus = "SUSPENDED"
	SubscriptionPendingPayment SubscriptionStatus = "PENDING_PAYMENT"
)

// WorkerProfile holds a worker's matchable attributes. A profile is owned 1:1
// by a user. Latitude/Longitude are nil until the worker first activates
// availability; IsActiveToday may only be set with a known location.
type WorkerProfile struct {
	ID                    string             `db:"worker_profile_id" json:"id"`
	UserID                string             `db:"user_id" json:"userId"`
	IsVerified            bool               `db:"is_verified" json:"isVerified"`
	IsActiveToday         bool               `db:"is_active_today" json:"isActiveToday"`
	RatingAverage         float64            `db:"rating_average" json:"ratingAverage"`
	TotalJobsCompleted    int                `db:"total_jobs_completed" json:"totalJobsCompleted"`
	RadiusKm              int                `db:"radius_km" json:"radiusKm"`
	SubscriptionStatus    SubscriptionStatus `db:"subscription_status" json:"subscriptionStatus"`
	SubscriptionExpiresAt *time.Time         `db:"subscription_expires_at" json:"subscriptionExpiresAt,omitempty"`
	Latitude              *float64           `db:"latitude" json:"latitude,omitempty"`
	Longitude             *float64           `db:"longitude" json:"longitude,omitempty"`
	Description           *string            `db:"description" json:"description,omitempty"`
	IDDocumentURL         *string            `db:"id_document_url" json:"idDocumentUrl,omitempty"`
	CriminalRecordURL     *string            `db:"criminal_record_url" json:"criminalRecordUrl,omitempty"`
	CertificateURLs       []string           `db:"-" json:"certificateUrls,omitempty"`
	Categories            []ServiceCategory  `db:"-" json:"categories,omitempty"`
	CreatedAt             time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time          `db:"updated_at" json:"updatedAt"`
}

// HasCategory reports whether the worker declared the given service category.
func (w *WorkerProfile) HasCategory(categoryID string) bool {
	for _, c := range w.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
