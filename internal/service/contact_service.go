package service

import (
	"context"
	"time"

	"github.com/uxdj/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates, rate-limits by clientIP, sanitizes and stores a new
	// contact message. Every accepted submission is a new row.
	Submit(ctx context.Context, in ContactInput, clientIP string) (*model.ContactMessage, error)

	// List returns one page of contact messages.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error)

	UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

// ContactInput is the raw contact form as posted by a reader.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Limiter admits or rejects a call for a key. A rejection reports how long
// until the key may retry.
type Limiter interface {
	Take(key string) (allowed bool, retryAfter time.Duration)
}
