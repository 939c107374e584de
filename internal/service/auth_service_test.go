package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret-at-least-16")

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func userRepoWith(u *model.User) *mockUserRepository {
	return &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == u.Email {
				return u, nil
			}
			return nil, repository.ErrNotFound
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			if id == u.ID {
				return u, nil
			}
			return nil, repository.ErrNotFound
		},
	}
}

func TestAuthService_Login_IssuesVerifiableToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &model.User{ID: "u1", Email: "admin@example.com", PasswordHash: hashed(t, "s3cretpass"), Status: model.UserActive}
	svc := NewAuthService(userRepoWith(u), testSecret, time.Hour).(*AuthServiceImpl)
	svc.now = func() time.Time { return now }

	sess, err := svc.Login(context.Background(), " Admin@Example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sess.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v", sess.ExpiresAt)
	}
	id, err := auth.VerifySessionToken(sess.Token, testSecret, now.Add(time.Minute))
	if err != nil || id != "u1" {
		t.Errorf("VerifySessionToken = %q, %v", id, err)
	}
}

func TestAuthService_Login_Rejections(t *testing.T) {
	active := &model.User{ID: "u1", Email: "admin@example.com", PasswordHash: hashed(t, "s3cretpass"), Status: model.UserActive}
	inactive := *active
	inactive.Status = model.UserInactive

	tests := []struct {
		name     string
		user     *model.User
		email    string
		password string
		kind     apperr.Kind
		msg      string
	}{
		{"missing fields", active, "", "", apperr.KindValidation, "Email and password are required"},
		{"unknown user", active, "who@example.com", "s3cretpass", apperr.KindUnauthorized, "Invalid credentials"},
		{"bad password", active, "admin@example.com", "wrong", apperr.KindUnauthorized, "Invalid credentials"},
		{"inactive", &inactive, "admin@example.com", "s3cretpass", apperr.KindUnauthorized, "Account is inactive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthService(userRepoWith(tt.user), testSecret, time.Hour).Login(context.Background(), tt.email, tt.password)
			if apperr.KindOf(err) != tt.kind || apperr.MessageOf(err) != tt.msg {
				t.Errorf("err = %v, want %s %q", err, tt.kind, tt.msg)
			}
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	u := &model.User{ID: "u1", Email: "admin@example.com", Status: model.UserActive}
	svc := NewAuthService(userRepoWith(u), testSecret, time.Hour)

	got, err := svc.Me(context.Background(), "u1")
	if err != nil || got.ID != "u1" {
		t.Errorf("Me = %+v, %v", got, err)
	}
	if _, err := svc.Me(context.Background(), "deleted"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{createFunc: func(ctx context.Context, u *model.User) error {
		created = u
		return nil
	}}
	svc := NewAuthService(repo, testSecret, time.Hour)

	if err := svc.EnsureAdmin(context.Background(), "Seed@Example.com", "seedpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil || created.Email != "seed@example.com" || created.Role != model.RoleAdmin {
		t.Fatalf("created = %+v", created)
	}

	created = nil
	repo.findByEmailFunc = func(ctx context.Context, email string) (*model.User, error) { return &model.User{Email: email}, nil }
	if err := svc.EnsureAdmin(context.Background(), "seed@example.com", "seedpassword"); err != nil || created != nil {
		t.Errorf("existing admin: err = %v, created = %+v", err, created)
	}

	repo.findByEmailFunc = func(ctx context.Context, email string) (*model.User, error) { return nil, errors.New("db") }
	if err := svc.EnsureAdmin(context.Background(), "seed@example.com", "seedpassword"); err == nil {
		t.Error("expected lookup error")
	}

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Errorf("unset seed: %v", err)
	}
}
