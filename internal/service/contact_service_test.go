package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// mockContactRepository is an in-memory stub.
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	mu               sync.Mutex
	saved            []*model.ContactMessage
	saveFunc         func(ctx context.Context, msg *model.ContactMessage) error
	listFunc         func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error)
	updateStatusFunc func(ctx context.Context, id, status string) (*model.ContactMessage, error)
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = "c" + string(rune('0'+len(m.saved)))
	m.saved = append(m.saved, msg)
	return nil
}

func (m *mockContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, 0, nil
}

func (m *mockContactRepository) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return &model.ContactMessage{ID: id, Status: status}, nil
}

func (m *mockContactRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func validContact() ContactInput {
	return ContactInput{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello",
		Message: "Loved the piece on design debt.",
	}
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestContactService_Submit_SetsNewStatusAndIP(t *testing.T) {
	repo := &mockContactRepository{}
	svc := NewContactService(repo, nil)

	msg, err := svc.Submit(context.Background(), validContact(), "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected Save to be called once, got %d", len(repo.saved))
	}
	if msg.Status != model.ContactNew {
		t.Errorf("status = %q, want new", msg.Status)
	}
	if msg.IPAddress != "1.2.3.4" {
		t.Errorf("ip = %q", msg.IPAddress)
	}
}

func TestContactService_Submit_Sanitizes(t *testing.T) {
	repo := &mockContactRepository{}
	svc := NewContactService(repo, nil)

	in := validContact()
	in.Name = "  <b>Ada</b>\n Lovelace "
	in.Message = "<script>alert(1)</script>Hi " + strings.Repeat("x", intake.MaxMessage)
	in.Email = " ADA@Example.com"

	msg, err := svc.Submit(context.Background(), in, "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsAny(msg.Name, "<>") {
		t.Errorf("name not sanitized: %q", msg.Name)
	}
	if n := len([]rune(msg.Message)); n > intake.MaxMessage {
		t.Errorf("message length = %d, want <= %d", n, intake.MaxMessage)
	}
	if msg.Email != "ada@example.com" {
		t.Errorf("email = %q", msg.Email)
	}
}

func TestContactService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ContactInput)
	}{
		{"missing name", func(in *ContactInput) { in.Name = " " }},
		{"missing subject", func(in *ContactInput) { in.Subject = "" }},
		{"missing message", func(in *ContactInput) { in.Message = "" }},
		{"bad email", func(in *ContactInput) { in.Email = "nope" }},
		{"markup only", func(in *ContactInput) { in.Message = "<p></p>" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockContactRepository{}
			in := validContact()
			tt.modify(&in)
			_, err := NewContactService(repo, nil).Submit(context.Background(), in, "1.2.3.4")
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("kind = %v, want validation", apperr.KindOf(err))
			}
			if len(repo.saved) != 0 {
				t.Error("invalid form must not be saved")
			}
		})
	}
}

func TestContactService_Submit_RateLimitWindow(t *testing.T) {
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter := intake.NewRateLimiter(5, 60*time.Minute, intake.WithClock(clock.Now))
	repo := &mockContactRepository{}
	svc := NewContactService(repo, limiter)
	ctx := context.Background()

	for i := range 5 {
		if _, err := svc.Submit(ctx, validContact(), "1.2.3.4"); err != nil {
			t.Fatalf("submission %d: %v", i+1, err)
		}
		clock.Advance(time.Minute)
	}

	_, err := svc.Submit(ctx, validContact(), "1.2.3.4")
	if apperr.KindOf(err) != apperr.KindRateLimited {
		t.Fatalf("6th kind = %v, want rate_limited", apperr.KindOf(err))
	}
	if apperr.RetryAfterOf(err) <= 0 {
		t.Error("expected a positive retry-after")
	}
	if len(repo.saved) != 5 {
		t.Errorf("saved = %d, want 5", len(repo.saved))
	}

	if _, err := svc.Submit(ctx, validContact(), "5.6.7.8"); err != nil {
		t.Errorf("other IP rejected: %v", err)
	}

	// earliest counted submission was at 12:00; 61 minutes later it has left the window
	clock.t = time.Date(2026, 3, 1, 13, 1, 0, 0, time.UTC)
	if _, err := svc.Submit(ctx, validContact(), "1.2.3.4"); err != nil {
		t.Errorf("submission after window: %v", err)
	}
}

func TestContactService_Submit_InvalidDoesNotConsumeQuota(t *testing.T) {
	limiter := intake.NewRateLimiter(1, time.Hour)
	svc := NewContactService(&mockContactRepository{}, limiter)

	bad := validContact()
	bad.Email = "nope"
	for range 3 {
		_, _ = svc.Submit(context.Background(), bad, "9.9.9.9")
	}
	if _, err := svc.Submit(context.Background(), validContact(), "9.9.9.9"); err != nil {
		t.Errorf("valid submission rejected: %v", err)
	}
}

func TestContactService_Submit_MarkupOnlyDoesNotConsumeQuota(t *testing.T) {
	limiter := intake.NewRateLimiter(5, time.Hour)
	repo := &mockContactRepository{}
	svc := NewContactService(repo, limiter)
	ctx := context.Background()

	markup := validContact()
	markup.Name = "<b></b>"
	for i := range 5 {
		_, err := svc.Submit(ctx, markup, "1.2.3.4")
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("markup submission %d kind = %v, want validation", i+1, apperr.KindOf(err))
		}
	}
	if len(repo.saved) != 0 {
		t.Fatalf("saved = %d, want 0", len(repo.saved))
	}
	if _, err := svc.Submit(ctx, validContact(), "1.2.3.4"); err != nil {
		t.Errorf("valid submission rejected: %v", err)
	}
}

func TestContactService_Submit_SaveError(t *testing.T) {
	repo := &mockContactRepository{saveFunc: func(ctx context.Context, msg *model.ContactMessage) error {
		return errors.New("db error")
	}}
	_, err := NewContactService(repo, nil).Submit(context.Background(), validContact(), "1.2.3.4")
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("kind = %v, want internal", apperr.KindOf(err))
	}
}

// ---------------------------------------------------------------------------
// Admin tests
// ---------------------------------------------------------------------------

func TestContactService_List_ForwardsOptions(t *testing.T) {
	var got model.ContactListOptions
	repo := &mockContactRepository{listFunc: func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error) {
		got = opts
		return nil, 0, nil
	}}
	msgs, total, err := NewContactService(repo, nil).List(context.Background(), model.ContactListOptions{Status: "read", Query: "ada", Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs == nil || total != 0 {
		t.Errorf("msgs = %v, total = %d; want empty slice", msgs, total)
	}
	if got.Status != "read" || got.Query != "ada" || got.Limit != 10 || got.Offset != 20 {
		t.Errorf("forwarded opts = %+v", got)
	}
}

func TestContactService_List_InvalidStatus(t *testing.T) {
	_, _, err := NewContactService(&mockContactRepository{}, nil).List(context.Background(), model.ContactListOptions{Status: "spam"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestContactService_UpdateStatus(t *testing.T) {
	repo := &mockContactRepository{updateStatusFunc: func(ctx context.Context, id, status string) (*model.ContactMessage, error) {
		if id == "missing" {
			return nil, repository.ErrNotFound
		}
		return &model.ContactMessage{ID: id, Status: status}, nil
	}}
	svc := NewContactService(repo, nil)

	if _, err := svc.UpdateStatus(context.Background(), "c1", "spam"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("bad status kind = %v", apperr.KindOf(err))
	}
	if _, err := svc.UpdateStatus(context.Background(), "missing", model.ContactRead); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("missing kind = %v", apperr.KindOf(err))
	}
	msg, err := svc.UpdateStatus(context.Background(), "c1", model.ContactArchived)
	if err != nil || msg.Status != model.ContactArchived {
		t.Errorf("msg = %+v, err = %v", msg, err)
	}
}

func TestContactService_Delete_NotFound(t *testing.T) {
	repo := &mockContactRepository{deleteFunc: func(ctx context.Context, id string) error { return repository.ErrNotFound }}
	err := NewContactService(repo, nil).Delete(context.Background(), "x")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not_found", apperr.KindOf(err))
	}
}
