package dto

// SignupResponse represents a created signup
type SignupResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	OppID      int64  `json:"oppId"`
	SignupDate string `json:"signupDate"`
	Status     string `json:"status"`
}

// UserSignupResponse is a profile-view signup with opportunity metadata
type UserSignupResponse struct {
	SignupID   int64   `json:"signupId"`
	OppID      int64   `json:"oppId"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	StartDate  string  `json:"startDate"`
	EndDate    *string `json:"endDate,omitempty"`
	SignupDate string  `json:"signupDate"`
	Status     string  `json:"status"`
}

// OrgSignupEntry is one roster row in the organization management view
type OrgSignupEntry struct {
	SignupID   int64  `json:"signupId"`
	UserID     int64  `json:"userId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	SignupDate string `json:"signupDate"`
	Status     string `json:"status"`
}

// OrgSignupGroup groups roster rows under their opportunity. Opportunities
// with no signups still appear with an empty roster.
type OrgSignupGroup struct {
	OppID     int64            `json:"oppId"`
	Title     string           `json:"title"`
	StartDate string           `json:"startDate"`
	EndDate   *string          `json:"endDate,omitempty"`
	Signups   []OrgSignupEntry `json:"signups"`
}

// OrgSignupsResponse is the organization management view of signups
type OrgSignupsResponse struct {
	Groups []OrgSignupGroup `json:"groups"`
}
