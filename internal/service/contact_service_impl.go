package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/metrics"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo    repository.ContactRepository
	limiter Limiter
}

// NewContactService creates a ContactService backed by the given repository.
// limiter is consulted per client IP after the form validates; nil disables
// rate limiting.
func NewContactService(repo repository.ContactRepository, limiter Limiter) ContactService {
	return &contactServiceImpl{repo: repo, limiter: limiter}
}

// Submit stores a new contact message with status "new". Invalid forms do
// not count against the rate limit; rejected submissions are never stored.
func (s *contactServiceImpl) Submit(ctx context.Context, in ContactInput, clientIP string) (*model.ContactMessage, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Message) == "" {
		metrics.Submissions.WithLabelValues("contact", "invalid").Inc()
		return nil, apperr.Validation("Name, email, subject and message are required.")
	}
	email := intake.NormalizeEmail(in.Email)
	if !intake.ValidEmail(email) {
		metrics.Submissions.WithLabelValues("contact", "invalid").Inc()
		return nil, apperr.Validation("Please provide a valid email address.")
	}

	msg := &model.ContactMessage{
		Name:      intake.Sanitize(in.Name, intake.MaxName),
		Email:     email,
		Phone:     intake.Sanitize(in.Phone, intake.MaxPhone),
		Subject:   intake.Sanitize(in.Subject, intake.MaxSubject),
		Message:   intake.Sanitize(in.Message, intake.MaxMessage),
		Status:    model.ContactNew,
		IPAddress: clientIP,
	}
	if msg.Name == "" || msg.Subject == "" || msg.Message == "" {
		// fields made only of markup
		metrics.Submissions.WithLabelValues("contact", "invalid").Inc()
		return nil, apperr.Validation("Name, email, subject and message are required.")
	}

	if s.limiter != nil {
		if ok, retryAfter := s.limiter.Take(clientIP); !ok {
			metrics.Submissions.WithLabelValues("contact", "rate_limited").Inc()
			metrics.RateLimited.WithLabelValues("contact").Inc()
			slog.Warn("contact rate limited", "ip", clientIP, "retry_after", retryAfter)
			return nil, apperr.RateLimitedFor("Too many messages. Please try again later.", retryAfter)
		}
	}

	if err := s.repo.Save(ctx, msg); err != nil {
		metrics.Submissions.WithLabelValues("contact", "failed").Inc()
		return nil, apperr.Internal("Failed to send message", err)
	}
	metrics.Submissions.WithLabelValues("contact", "accepted").Inc()
	return msg, nil
}

// List returns contact messages according to the given filter/pagination options.
func (s *contactServiceImpl) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error) {
	if opts.Status != "" && opts.Status != "all" && !model.ValidContactStatus(opts.Status) {
		return nil, 0, apperr.Validation("Invalid status")
	}
	messages, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, apperr.Internal("Server error", err)
	}
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	return messages, total, nil
}

// UpdateStatus changes the status of a contact message.
func (s *contactServiceImpl) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if !model.ValidContactStatus(status) {
		return nil, apperr.Validation("Invalid status")
	}
	msg, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, storeErr(err, "Contact not found")
	}
	return msg, nil
}

func (s *contactServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, "Contact not found")
	}
	return nil
}
