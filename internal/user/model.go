package user

import "time"

// User is a portal account. Staff are admins and heads of department;
// student accounts are managed through the ledger.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Level     string    `json:"level,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
