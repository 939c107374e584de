package model

import "time"

// Subscriber statuses.
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

// Default subscriber sources.
const (
	SourceNewsletterForm = "newsletter-form"
	SourcePopupLead      = "popup-lead-capture"
)

// Subscriber is a newsletter subscriber, unique by email.
type Subscriber struct {
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubscribeOutcome reports what a subscribe call did.
type SubscribeOutcome int

const (
	Subscribed SubscribeOutcome = iota
	Resubscribed
	AlreadySubscribed
)

// Message is the client-facing text for the outcome.
func (o SubscribeOutcome) Message() string {
	switch o {
	case Resubscribed:
		return "Resubscribed successfully."
	case AlreadySubscribed:
		return "Already subscribed."
	default:
		return "Subscribed successfully."
	}
}

// SubscriberListOptions carries search and pagination parameters.
type SubscriberListOptions struct {
	Query  string
	Limit  int
	Offset int
}
