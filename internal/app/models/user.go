package models

import "time"

// User defines the user model based on the 'users' table.
// Role and net ID are immutable after registration; users are never deleted.
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	FirstName string    `json:"firstName" db:"first_name" example:"John"`
	LastName  string    `json:"lastName" db:"last_name" example:"Doe"`
	NetID     string    `json:"netId" db:"net_id" example:"jxd210042"`
	Email     string    `json:"email" db:"email" example:"jxd210042@campus.edu"`
	Password  string    `json:"-" db:"password"` // hashed, excluded from JSON
	Role      RoleType  `json:"role" db:"role" example:"student"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
