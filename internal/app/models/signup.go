package models

import "time"

// Signup is the join record between a user and an opportunity.
// At most one signup exists per (user, opportunity) pair.
type Signup struct {
	ID         int64        `json:"id" db:"id"`
	UserID     int64        `json:"userId" db:"user_id"`
	OppID      int64        `json:"oppId" db:"opp_id"`
	SignupDate time.Time    `json:"signupDate" db:"signup_date"`
	Status     SignupStatus `json:"status" db:"status"`

	// Related entities
	User        *User        `json:"user,omitempty"`
	Opportunity *Opportunity `json:"opportunity,omitempty"`
}

// OrgSignupRow is one row of the organization roster query: an opportunity
// joined with one of its signups and the signed-up user. Signup and User are
// nil for opportunities nobody has signed up for yet.
type OrgSignupRow struct {
	Opportunity Opportunity
	Signup      *Signup
	User        *User
}

// SignupAuthz is the resolved ownership chain for a signup, used by the
// authorization policy: the signed-up user and the representative of the
// organization owning the opportunity may delete the record.
type SignupAuthz struct {
	SignupID int64
	UserID   int64
	OppID    int64
	OrgRepID int64
}
