package service

import (
	"context"
	"time"

	"github.com/uxdj/backend/internal/model"
)

// Session is the result of a successful login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// AuthService authenticates console administrators.
type AuthService interface {
	// Login checks the password of an active admin and issues a signed
	// session token.
	Login(ctx context.Context, email, password string) (*Session, error)
	// Me returns the admin behind an authenticated request.
	Me(ctx context.Context, userID string) (*model.User, error)
	// EnsureAdmin creates the seed admin when no user with email exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}
