package model

import "time"

// Admin user statuses.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// RoleAdmin is the only role.
const RoleAdmin = "admin"

// User is a console administrator.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsActive returns true if the user may sign in.
func (u *User) IsActive() bool {
	return u.Status == UserActive
}
