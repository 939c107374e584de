package service

import (
	"context"
	"errors"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 8

// AdminUserService manages console administrators. The last active admin
// can be neither deactivated nor deleted.
type AdminUserService interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, email, password string) (*model.User, error)
	SetStatus(ctx context.Context, id, status string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type adminUserService struct {
	userRepo repository.UserRepository
	cost     int
}

// NewAdminUserService creates an AdminUserService.
func NewAdminUserService(userRepo repository.UserRepository) AdminUserService {
	return &adminUserService{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

func (s *adminUserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

func (s *adminUserService) CreateUser(ctx context.Context, email, password string) (*model.User, error) {
	email = intake.NormalizeEmail(email)
	if !intake.ValidEmail(email) {
		return nil, apperr.Validation("Valid email required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation("Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Validation("Password is too long")
	}
	u := &model.User{Email: email, PasswordHash: string(hash), Role: model.RoleAdmin, Status: model.UserActive}
	err = s.userRepo.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("User already exists")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to create user", err)
	}
	return u, nil
}

func (s *adminUserService) SetStatus(ctx context.Context, id, status string) (*model.User, error) {
	if status != model.UserActive && status != model.UserInactive {
		return nil, apperr.Validation("status must be active or inactive")
	}
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if status == model.UserInactive && target.IsActive() {
		if err := s.ensureNotLast(ctx, "Cannot deactivate the last active admin"); err != nil {
			return nil, err
		}
	}
	u, err := s.userRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

func (s *adminUserService) DeleteUser(ctx context.Context, id string) error {
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "User not found")
	}
	if target.IsActive() {
		if err := s.ensureNotLast(ctx, "Cannot delete the last active admin"); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return storeErr(err, "User not found")
	}
	return nil
}

func (s *adminUserService) ensureNotLast(ctx context.Context, msg string) error {
	n, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return apperr.Internal("Server error", err)
	}
	if n <= 1 {
		return apperr.Validation(msg)
	}
	return nil
}
