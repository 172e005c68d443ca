package dto

import "time"

// CreateOrganizationRequest carries the multipart form fields for creating an
// organization. The image file itself travels alongside as "image".
type CreateOrganizationRequest struct {
	Name  string `form:"name" binding:"required"`
	Type  string `form:"type" binding:"required"`
	Email string `form:"email" binding:"required"`
}

// UpdateOrganizationRequest carries the multipart form fields for updating an
// organization.
type UpdateOrganizationRequest struct {
	Name  string `form:"name" binding:"required"`
	Type  string `form:"type" binding:"required"`
	Email string `form:"email" binding:"required"`
}

// OrganizationResponse represents an organization
type OrganizationResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	Email     string             `json:"email"`
	ImageURL  *string            `json:"imageUrl,omitempty"`
	RepID     int64              `json:"repId"`
	Rep       *UserBasicResponse `json:"rep,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// OrganizationListResponse wraps a list of organizations
type OrganizationListResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
}

// OrganizationUpdateResponse reports whether the update wrote anything.
// Submitting values identical to the stored row is a no-op.
type OrganizationUpdateResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Changed      bool                 `json:"changed"`
	Message      string               `json:"message"`
}
