package domain

import "time"

// Role values for marketplace users.
const (
	RoleClient = "CLIENT"
	RoleWorker = "WORKER"
	RoleAdmin  = "ADMIN"
)

// UserStatus values for directory records.
const (
	UserStatusActive  = "ACTIVE"
	UserStatusDeleted = "DELETED"
)

// User is a directory record. NationalID is the government-issued identity
// number used by the registry-verification flow.
type User struct {
	ID         string     `db:"user_id" json:"id"`
	Email      string     `db:"email" json:"email"`
	FirstName  string     `db:"first_name" json:"firstName"`
	LastName   string     `db:"last_name" json:"lastName"`
	NationalID *string    `db:"national_id" json:"nationalId,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	PhotoURL   *string    `db:"photo_url" json:"photoUrl,omitempty"`
	Role       string     `db:"role" json:"role"`
	Status     string     `db:"status" json:"status"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}
