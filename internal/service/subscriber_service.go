package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/metrics"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
)

// SubscriberPageSize is the admin listing page size.
const SubscriberPageSize = 20

// SubscriberService manages newsletter subscriptions.
type SubscriberService interface {
	// Subscribe is idempotent per email: an unsubscribed row is reactivated,
	// an active one is left as is.
	Subscribe(ctx context.Context, email, source string) (model.SubscribeOutcome, error)
	List(ctx context.Context, query string, page int) (*SubscriberPage, error)
	UpdateStatus(ctx context.Context, email, status string) (*model.Subscriber, error)
	Delete(ctx context.Context, email string) error
	BulkDelete(ctx context.Context, emails []string) (int64, error)
}

// SubscriberPage is one page of the admin subscriber listing.
type SubscriberPage struct {
	Items      []*model.Subscriber `json:"items"`
	Page       int                 `json:"page"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

type subscriberService struct {
	repo repository.SubscriberRepository
}

// NewSubscriberService creates a SubscriberService.
func NewSubscriberService(repo repository.SubscriberRepository) SubscriberService {
	return &subscriberService{repo: repo}
}

func (s *subscriberService) Subscribe(ctx context.Context, email, source string) (model.SubscribeOutcome, error) {
	email = intake.NormalizeEmail(email)
	if !intake.ValidEmail(email) {
		metrics.Submissions.WithLabelValues("subscribe", "invalid").Inc()
		return 0, apperr.Validation("Valid email required.")
	}
	source = intake.Sanitize(source, intake.MaxSource)
	if source == "" {
		source = model.SourceNewsletterForm
	}

	outcome, err := s.subscribe(ctx, email, source)
	if err != nil {
		metrics.Submissions.WithLabelValues("subscribe", "failed").Inc()
		return 0, apperr.Internal("Server error", err)
	}
	metrics.Submissions.WithLabelValues("subscribe", outcomeLabel(outcome)).Inc()
	return outcome, nil
}

func (s *subscriberService) subscribe(ctx context.Context, email, source string) (model.SubscribeOutcome, error) {
	existing, err := s.repo.Get(ctx, email)
	switch {
	case err == nil:
		if existing.Status == model.SubscriberUnsubscribed {
			if err := s.repo.Activate(ctx, email, ""); err != nil {
				return 0, err
			}
			slog.Info("subscriber reactivated", "email", email)
			return model.Resubscribed, nil
		}
		return model.AlreadySubscribed, nil
	case !errors.Is(err, repository.ErrNotFound):
		return 0, err
	}

	err = s.repo.Insert(ctx, &model.Subscriber{Email: email, Source: source, Status: model.SubscriberActive})
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race with a concurrent subscribe for the same email
		return model.AlreadySubscribed, nil
	}
	if err != nil {
		return 0, err
	}
	return model.Subscribed, nil
}

func outcomeLabel(o model.SubscribeOutcome) string {
	switch o {
	case model.Resubscribed:
		return "resubscribed"
	case model.AlreadySubscribed:
		return "already_subscribed"
	default:
		return "subscribed"
	}
}

func (s *subscriberService) List(ctx context.Context, query string, page int) (*SubscriberPage, error) {
	page, limit, offset := pageOffset(page, SubscriberPageSize, SubscriberPageSize, SubscriberPageSize)
	items, total, err := s.repo.List(ctx, model.SubscriberListOptions{Query: query, Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	if items == nil {
		items = []*model.Subscriber{}
	}
	return &SubscriberPage{Items: items, Page: page, Total: total, TotalPages: totalPages(total, limit)}, nil
}

func (s *subscriberService) UpdateStatus(ctx context.Context, email, status string) (*model.Subscriber, error) {
	if status != model.SubscriberActive && status != model.SubscriberUnsubscribed {
		return nil, apperr.Validation("status must be active or unsubscribed")
	}
	sub, err := s.repo.UpdateStatus(ctx, intake.NormalizeEmail(email), status)
	if err != nil {
		return nil, storeErr(err, "Not found")
	}
	return sub, nil
}

func (s *subscriberService) Delete(ctx context.Context, email string) error {
	if err := s.repo.Delete(ctx, intake.NormalizeEmail(email)); err != nil {
		return storeErr(err, "Not found")
	}
	return nil
}

func (s *subscriberService) BulkDelete(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, apperr.Validation("emails array required")
	}
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = intake.NormalizeEmail(e); e != "" {
			normalized = append(normalized, e)
		}
	}
	n, err := s.repo.DeleteMany(ctx, normalized)
	if err != nil {
		return 0, apperr.Internal("Server error", err)
	}
	return n, nil
}
