package model

import "time"

// Stats is the admin dashboard summary.
type Stats struct {
	Subscribers  int           `json:"subscribers"`
	Articles     int           `json:"articles"`
	Categories   int           `json:"categories"`
	Ads          int           `json:"ads"`
	Admins       int           `json:"admins"`
	Contacts     int           `json:"contacts"`
	PopupLeads   int           `json:"popupLeads"`
	RecentEvents []RecentEvent `json:"recentEvents"`
	Trends       Trends        `json:"trends"`
}

// RecentEvent is an article creation or a new subscriber.
type RecentEvent struct {
	Type  string    `json:"type"` // "article" | "subscriber"
	Title string    `json:"title,omitempty"`
	Slug  string    `json:"slug,omitempty"`
	Email string    `json:"email,omitempty"`
	Date  time.Time `json:"date"`
}

// Trend compares the last 7 days with the 7 days before.
type Trend struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
}

// Trends groups the dashboard trends.
type Trends struct {
	Subscribers Trend `json:"subscribers"`
	Articles    Trend `json:"articles"`
}
