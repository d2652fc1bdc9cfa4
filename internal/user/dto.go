package user

import "time"

// CreateStaffRequest represents the request body for creating a staff account
type CreateStaffRequest struct {
	Name  string `json:"name" validate:"notblank,max=100" example:"Dr. Kofi Boateng"`
	Email string `json:"email" validate:"required,email,max=255" example:"hod@dept.example.edu"`
	Role  string `json:"role" validate:"required,oneof=admin hod" example:"hod"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Level     string `json:"level,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Level:     u.Level,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
