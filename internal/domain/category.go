package domain

import "time"

// ServiceCategory is a taxonomy leaf such as "Plumbing". Name is unique
// case-insensitively.
type ServiceCategory struct {
	ID          string    `db:"service_category_id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IconURL     *string   `db:"icon_url" json:"iconUrl,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
