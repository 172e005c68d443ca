package models

import "time"

// Opportunity represents an extracurricular opportunity posted by an
// organization. MaxSignups of nil means unbounded capacity.
type Opportunity struct {
	ID          int64      `json:"id" db:"id"`
	OrgID       int64      `json:"orgId" db:"org_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category" db:"category"`
	ImageURL    *string    `json:"imageUrl,omitempty" db:"image_url"`
	StartDate   time.Time  `json:"startDate" db:"start_date"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	MaxSignups  *int       `json:"maxSignups,omitempty" db:"max_signups"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`

	// OrgName is populated by joined list queries
	OrgName string `json:"orgName,omitempty" db:"-"`
}
