package model

import "time"

// Ad types.
const (
	AdImageLink    = "IMAGE_LINK"
	AdEmbedSnippet = "EMBED_SNIPPET"
)

// Ad placements rendered by the reader site.
const (
	PlacementHomepageLatest  = "homepage-latest"
	PlacementHomepageLead    = "homepage-lead"
	PlacementArticleInline   = "article-inline"
	PlacementArticleReadmore = "article-readmore"
	PlacementArticleSidebar  = "article-sidebar"
)

// Ad is an advertisement slot creative.
type Ad struct {
	ID        string    `json:"id"`
	Placement string    `json:"placement"`
	Size      string    `json:"size"`
	Type      string    `json:"type"`
	ImageURL  string    `json:"imageUrl"`
	Href      string    `json:"href"`
	Alt       string    `json:"alt"`
	HTML      string    `json:"html"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicAd is the reader-facing ad shape.
type PublicAd struct {
	ID        string `json:"id"`
	Placement string `json:"placement"`
	Size      string `json:"size"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl"`
	Href      string `json:"href"`
	Alt       string `json:"alt"`
	HTML      string `json:"html"`
	Label     string `json:"label"`
}
