package dto

// CreateOpportunityRequest carries the multipart form fields for posting an
// opportunity. Dates are calendar dates (YYYY-MM-DD); EndDate and MaxSignups
// may be empty, meaning open-ended and unbounded respectively.
type CreateOpportunityRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category" binding:"required"`
	StartDate   string `form:"startDate" binding:"required"`
	EndDate     string `form:"endDate"`
	MaxSignups  string `form:"maxSignups"`
}

// UpdateOpportunityRequest mirrors CreateOpportunityRequest for updates.
type UpdateOpportunityRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category" binding:"required"`
	StartDate   string `form:"startDate" binding:"required"`
	EndDate     string `form:"endDate"`
	MaxSignups  string `form:"maxSignups"`
}

// OpportunityResponse is the list-view shape of an opportunity
type OpportunityResponse struct {
	ID         int64   `json:"id"`
	OrgID      int64   `json:"orgId"`
	OrgName    string  `json:"orgName,omitempty"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	StartDate  string  `json:"startDate"`
	EndDate    *string `json:"endDate,omitempty"`
	MaxSignups *int    `json:"maxSignups,omitempty"`
}

// OpportunityDetailResponse is the detail-view shape of an opportunity
type OpportunityDetailResponse struct {
	OpportunityResponse
	Description string `json:"description"`
	OrgRepID    int64  `json:"orgRepId"`
	SignupCount int    `json:"signupCount"`
}

// OpportunityListResponse is the dashboard listing: current opportunities
// plus the distinct categories they span, for filtering.
type OpportunityListResponse struct {
	Opportunities []OpportunityResponse `json:"opportunities"`
	Categories    []string              `json:"categories"`
}
