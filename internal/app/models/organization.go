package models

import "time"

// Organization represents a registered organization posting opportunities.
// Exactly one user, the representative, administratively owns it.
type Organization struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"org_type"`
	Email     string    `json:"email" db:"email"`
	ImageURL  *string   `json:"imageUrl,omitempty" db:"image_url"`
	RepID     int64     `json:"repId" db:"rep_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Rep *User `json:"rep,omitempty"`
}
