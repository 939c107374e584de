package model

import "time"

// Popup is a lead-capture popup offering a downloadable PDF. At most one
// popup is active at a time.
type Popup struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	ImageCaption string    `json:"imageCaption"`
	PDFURL       string    `json:"pdfUrl"`
	PDFTitle     string    `json:"pdfTitle"`
	ButtonText   string    `json:"buttonText"`
	DelaySeconds int       `json:"delaySeconds"`
	Active       bool      `json:"active"`
	LeadCount    int       `json:"leadCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicPopup is the reader-facing popup shape. It omits the PDF URL, which
// is only revealed after a lead is captured.
type PublicPopup struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	ImageCaption string `json:"imageCaption"`
	PDFTitle     string `json:"pdfTitle"`
	ButtonText   string `json:"buttonText"`
	DelaySeconds int    `json:"delaySeconds"`
}

// Public returns the reader-facing view of p.
func (p *Popup) Public() *PublicPopup {
	return &PublicPopup{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		ImageCaption: p.ImageCaption,
		PDFTitle:     p.PDFTitle,
		ButtonText:   p.ButtonText,
		DelaySeconds: p.DelaySeconds,
	}
}

// PopupPatch carries a partial popup update. Nil fields are left unchanged.
type PopupPatch struct {
	Name         *string `json:"name"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	ImageCaption *string `json:"imageCaption"`
	PDFURL       *string `json:"pdfUrl"`
	PDFTitle     *string `json:"pdfTitle"`
	ButtonText   *string `json:"buttonText"`
	DelaySeconds *int    `json:"delaySeconds"`
	Active       *bool   `json:"active"`
}

// Popup lead statuses.
const (
	LeadActive = "active"
)

// PopupLead records an email captured by a popup.
type PopupLead struct {
	ID         string    `json:"id"`
	PopupID    string    `json:"popupConfigId"`
	PopupName  string    `json:"popupName"`
	PopupTitle string    `json:"popupTitle"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	Device     string    `json:"device"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PopupLeadListOptions carries filter and pagination parameters for leads.
type PopupLeadListOptions struct {
	PopupID string
	Search  string // email substring
	Limit   int
	Offset  int
}

// PopupSubmission is the result of a popup submit.
type PopupSubmission struct {
	LeadID      string
	Repeat      bool // same email and popup within the last 24 hours
	DownloadURL string
	PDFTitle    string
}
