package model

import "time"

// Article statuses.
const (
	ArticleDraft     = "draft"
	ArticleScheduled = "scheduled"
	ArticlePublished = "published"
)

// ValidArticleStatus reports whether s is a known article status.
func ValidArticleStatus(s string) bool {
	return s == ArticleDraft || s == ArticleScheduled || s == ArticlePublished
}

// Article is a journal article. Slug is unique across all articles.
type Article struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Excerpt      string     `json:"excerpt"`
	Dek          string     `json:"dek"`
	Category     string     `json:"category"`
	Date         string     `json:"date,omitempty"` // display date, e.g. "2026-03-01"
	Author       string     `json:"author"`
	ImageURL     string     `json:"imageUrl"`
	BodyHTML     string     `json:"bodyHtml"`
	BodyMarkdown string     `json:"bodyMarkdown"`
	Tags         []string   `json:"tags"`
	Status       string     `json:"status"`
	PublishAt    *time.Time `json:"publishAt,omitempty"`
	Featured     bool       `json:"featured"`
	FeatureOrder int        `json:"featureOrder"`
	AIGenerated  bool       `json:"aiGenerated"`
	AIProvider   string     `json:"aiProvider,omitempty"`
	SourceURL    string     `json:"sourceUrl,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ArticlePatch carries a partial update. Nil fields are left unchanged.
type ArticlePatch struct {
	Slug         *string    `json:"slug"`
	Title        *string    `json:"title"`
	Excerpt      *string    `json:"excerpt"`
	Dek          *string    `json:"dek"`
	Category     *string    `json:"category"`
	Date         *string    `json:"date"`
	Author       *string    `json:"author"`
	ImageURL     *string    `json:"imageUrl"`
	BodyHTML     *string    `json:"bodyHtml"`
	BodyMarkdown *string    `json:"bodyMarkdown"`
	Tags         *[]string  `json:"tags"`
	Status       *string    `json:"status"`
	PublishAt    *time.Time `json:"publishAt"`
	Featured     *bool      `json:"featured"`
	FeatureOrder *int       `json:"featureOrder"`
}

// ArticleListOptions carries filter and pagination parameters for listing articles.
type ArticleListOptions struct {
	Query         string // case-insensitive title substring
	Status        string // "" for any
	Category      string // "" for any
	PublishedOnly bool
	FeaturedOnly  bool
	ExcludeSlug   string
	Limit         int
	Offset        int
}

// ArticleCard is the compact article shape used by archive and search.
type ArticleCard struct {
	Headline string `json:"headline"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Date     string `json:"date,omitempty"`
	ImageURL string `json:"imageUrl"`
}

// Category is a fixed editorial section.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Categories lists the journal sections in display order.
var Categories = []Category{
	{Slug: "practice", Name: "Practice"},
	{Slug: "design-reviews", Name: "Design Reviews"},
	{Slug: "career", Name: "Career"},
	{Slug: "signals", Name: "Signals"},
	{Slug: "journal", Name: "Journal"},
}

// CategoryBySlug looks up a category.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}
