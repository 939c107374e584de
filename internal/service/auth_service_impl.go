package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceImpl implements AuthService with bcrypt password hashes and
// HMAC-signed session tokens.
type AuthServiceImpl struct {
	userRepo repository.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates an AuthServiceImpl.
func NewAuthService(userRepo repository.UserRepository, secret []byte, ttl time.Duration) AuthService {
	return &AuthServiceImpl{userRepo: userRepo, secret: secret, ttl: ttl, now: time.Now}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	email = intake.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	u, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Info("login failed", "email", email, "reason", "unknown_user")
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		slog.Info("login failed", "email", email, "reason", "bad_password")
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if !u.IsActive() {
		slog.Info("login failed", "email", email, "reason", "inactive")
		return nil, apperr.Unauthorized("Account is inactive")
	}

	expires := s.now().Add(s.ttl)
	slog.Info("admin logged in", "user_id", u.ID)
	return &Session{
		Token:     auth.CreateSessionToken(u.ID, expires, s.secret),
		ExpiresAt: expires,
		User:      u,
	}, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	if !u.IsActive() {
		return nil, apperr.Unauthorized("Account is inactive")
	}
	return u, nil
}

func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	email = intake.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &model.User{Email: email, PasswordHash: string(hash), Role: model.RoleAdmin, Status: model.UserActive}
	if err := s.userRepo.Create(ctx, u); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	slog.Info("seed admin created", "email", email)
	return nil
}
