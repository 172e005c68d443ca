package dto

// UserResponse represents basic user information
type UserResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	NetID     string `json:"netId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// UserBasicResponse is the compact user shape embedded in other responses
type UserBasicResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
