package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleFaculty RoleType = "faculty"
)

// SignupStatus defines the state of a signup record
type SignupStatus string

const (
	SignupStatusConfirmed SignupStatus = "confirmed"
)
