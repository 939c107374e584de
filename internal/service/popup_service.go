package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/metrics"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/internal/useragent"
)

// Popup defaults applied on create.
const (
	DefaultPopupButtonText   = "Get Download Link"
	DefaultPopupDelaySeconds = 10

	// repeatWindow is how far back an identical popup+email submission
	// counts as a repeat.
	repeatWindow = 24 * time.Hour

	maxUserAgent = 512
)

// PopupService manages lead-capture popups and their leads.
type PopupService interface {
	// Active returns the active popup, or nil when none is active.
	Active(ctx context.Context) (*model.Popup, error)
	// Submit records a lead for an active popup and subscribes the email.
	Submit(ctx context.Context, in PopupSubmitInput) (*model.PopupSubmission, error)

	List(ctx context.Context) ([]*model.Popup, error)
	Get(ctx context.Context, id string) (*model.Popup, error)
	Create(ctx context.Context, in model.PopupPatch) (*model.Popup, error)
	Update(ctx context.Context, id string, patch model.PopupPatch) (*model.Popup, error)
	Delete(ctx context.Context, id string) error

	ListLeads(ctx context.Context, opts model.PopupLeadListOptions) ([]*model.PopupLead, int, error)
	// ExportLeads returns every lead, optionally for one popup.
	ExportLeads(ctx context.Context, popupID string) ([]*model.PopupLead, error)
	DeleteLead(ctx context.Context, id string) error
}

// PopupSubmitInput is a popup form submission with its request context.
type PopupSubmitInput struct {
	Email     string
	PopupID   string
	ClientIP  string
	UserAgent string
}

type popupService struct {
	popups      repository.PopupRepository
	leads       repository.PopupLeadRepository
	subscribers repository.SubscriberRepository
	now         func() time.Time
}

// NewPopupService creates a PopupService.
func NewPopupService(popups repository.PopupRepository, leads repository.PopupLeadRepository, subscribers repository.SubscriberRepository) PopupService {
	return &popupService{popups: popups, leads: leads, subscribers: subscribers, now: time.Now}
}

func (s *popupService) Active(ctx context.Context) (*model.Popup, error) {
	p, err := s.popups.GetActive(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return p, nil
}

func (s *popupService) Submit(ctx context.Context, in PopupSubmitInput) (*model.PopupSubmission, error) {
	email := intake.NormalizeEmail(in.Email)
	popupID := strings.TrimSpace(in.PopupID)
	if email == "" || popupID == "" {
		metrics.Submissions.WithLabelValues("popup", "invalid").Inc()
		return nil, apperr.Validation("Email and popup ID are required.")
	}
	if !intake.ValidEmail(email) {
		metrics.Submissions.WithLabelValues("popup", "invalid").Inc()
		return nil, apperr.Validation("Please provide a valid email address.")
	}

	popup, err := s.popups.GetByID(ctx, popupID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.Submissions.WithLabelValues("popup", "failed").Inc()
		return nil, apperr.Internal("Server error", err)
	}
	if err != nil || !popup.Active {
		metrics.Submissions.WithLabelValues("popup", "invalid").Inc()
		return nil, apperr.NotFound("Popup not found or inactive.")
	}

	repeat, err := s.leads.RecentExists(ctx, popup.ID, email, s.now().Add(-repeatWindow))
	if err != nil {
		metrics.Submissions.WithLabelValues("popup", "failed").Inc()
		return nil, apperr.Internal("Server error", err)
	}

	ua := intake.Sanitize(in.UserAgent, maxUserAgent)
	lead := &model.PopupLead{
		PopupID:   popup.ID,
		Email:     email,
		Status:    model.LeadActive,
		IPAddress: in.ClientIP,
		UserAgent: ua,
		Device:    useragent.Parse(ua).Device,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		metrics.Submissions.WithLabelValues("popup", "failed").Inc()
		return nil, apperr.Internal("Failed to save lead", err)
	}

	// The lead is already recorded; a failed newsletter upsert does not
	// fail the download.
	if err := s.subscribers.Upsert(ctx, email, model.SourcePopupLead); err != nil {
		slog.Error("popup subscriber upsert failed", "email", email, "popup_id", popup.ID, "error", err)
	}

	metrics.Submissions.WithLabelValues("popup", "accepted").Inc()
	return &model.PopupSubmission{
		LeadID:      lead.ID,
		Repeat:      repeat,
		DownloadURL: popup.PDFURL,
		PDFTitle:    popup.PDFTitle,
	}, nil
}

func (s *popupService) List(ctx context.Context) ([]*model.Popup, error) {
	popups, err := s.popups.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	if popups == nil {
		popups = []*model.Popup{}
	}
	return popups, nil
}

func (s *popupService) Get(ctx context.Context, id string) (*model.Popup, error) {
	p, err := s.popups.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Popup not found")
	}
	return p, nil
}

func (s *popupService) Create(ctx context.Context, in model.PopupPatch) (*model.Popup, error) {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.TrimSpace(*p)
	}
	p := &model.Popup{
		Name:         str(in.Name),
		Title:        str(in.Title),
		Description:  str(in.Description),
		ImageURL:     str(in.ImageURL),
		ImageCaption: str(in.ImageCaption),
		PDFURL:       str(in.PDFURL),
		PDFTitle:     str(in.PDFTitle),
		ButtonText:   str(in.ButtonText),
		DelaySeconds: DefaultPopupDelaySeconds,
	}
	if p.Name == "" || p.Title == "" || p.PDFURL == "" || p.PDFTitle == "" {
		return nil, apperr.Validation("Name, title, PDF URL, and PDF title are required")
	}
	if p.ButtonText == "" {
		p.ButtonText = DefaultPopupButtonText
	}
	if in.DelaySeconds != nil {
		if *in.DelaySeconds < 0 {
			return nil, apperr.Validation("delaySeconds must not be negative")
		}
		p.DelaySeconds = *in.DelaySeconds
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := s.popups.Create(ctx, p); err != nil {
		return nil, apperr.Internal("Failed to create popup", err)
	}
	return p, nil
}

func (s *popupService) Update(ctx context.Context, id string, patch model.PopupPatch) (*model.Popup, error) {
	for _, f := range []*string{patch.Name, patch.Title, patch.PDFURL, patch.PDFTitle} {
		if f != nil && strings.TrimSpace(*f) == "" {
			return nil, apperr.Validation("Name, title, PDF URL, and PDF title cannot be empty")
		}
	}
	if patch.DelaySeconds != nil && *patch.DelaySeconds < 0 {
		return nil, apperr.Validation("delaySeconds must not be negative")
	}
	p, err := s.popups.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr(err, "Popup not found")
	}
	return p, nil
}

func (s *popupService) Delete(ctx context.Context, id string) error {
	if err := s.popups.Delete(ctx, id); err != nil {
		return storeErr(err, "Popup not found")
	}
	return nil
}

func (s *popupService) ListLeads(ctx context.Context, opts model.PopupLeadListOptions) ([]*model.PopupLead, int, error) {
	leads, total, err := s.leads.List(ctx, opts)
	if err != nil {
		return nil, 0, apperr.Internal("Server error", err)
	}
	if leads == nil {
		leads = []*model.PopupLead{}
	}
	return leads, total, nil
}

func (s *popupService) ExportLeads(ctx context.Context, popupID string) ([]*model.PopupLead, error) {
	leads, _, err := s.leads.List(ctx, model.PopupLeadListOptions{PopupID: popupID})
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return leads, nil
}

func (s *popupService) DeleteLead(ctx context.Context, id string) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		return storeErr(err, "Lead not found")
	}
	return nil
}
