package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/imageguard"
	"github.com/uxdj/backend/internal/metrics"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/internal/slug"
)

// Admin article listing page sizes.
const (
	DefaultArticlePageSize = 20
	MaxArticlePageSize     = 100
)

// ArticleService manages articles for the admin console.
type ArticleService interface {
	List(ctx context.Context, q ArticleQuery) (*ArticlePage, error)
	Get(ctx context.Context, slug string) (*model.Article, error)
	// Create inserts an article. A caller-supplied slug must be free; without
	// one the slug is derived from the title and de-duplicated.
	Create(ctx context.Context, in model.ArticlePatch) (*model.Article, error)
	// CreateGenerated inserts a fully built article under a slug derived
	// from its title.
	CreateGenerated(ctx context.Context, a *model.Article) (*model.Article, error)
	Update(ctx context.Context, slug string, patch model.ArticlePatch) (*model.Article, error)
	Delete(ctx context.Context, slug string) error
}

// ArticleQuery filters the admin listing.
type ArticleQuery struct {
	Query    string
	Status   string
	Category string
	Page     int
	Limit    int
}

// ArticleListItem is the compact admin listing row. ID carries the slug,
// which is what the console addresses articles by.
type ArticleListItem struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Date         string `json:"date,omitempty"`
	Status       string `json:"status"`
	Featured     bool   `json:"featured"`
	FeatureOrder int    `json:"featureOrder"`
	ImageURL     string `json:"imageUrl"`
}

// ArticlePage is one page of the admin article listing.
type ArticlePage struct {
	Items      []ArticleListItem `json:"items"`
	Page       int               `json:"page"`
	Total      int               `json:"total"`
	TotalPages int               `json:"totalPages"`
}

type articleService struct {
	repo      repository.ArticleRepository
	allocator *slug.Allocator
	guard     *imageguard.Guard
	now       func() time.Time
}

// NewArticleService creates an ArticleService.
func NewArticleService(repo repository.ArticleRepository, guard *imageguard.Guard) ArticleService {
	return &articleService{
		repo:      repo,
		allocator: slug.NewAllocator(repo),
		guard:     guard,
		now:       time.Now,
	}
}

func (s *articleService) List(ctx context.Context, q ArticleQuery) (*ArticlePage, error) {
	page, limit, offset := pageOffset(q.Page, q.Limit, DefaultArticlePageSize, MaxArticlePageSize)
	status := q.Status
	if status == "all" {
		status = ""
	}
	category := q.Category
	if category == "all" {
		category = ""
	}
	articles, total, err := s.repo.List(ctx, model.ArticleListOptions{
		Query:    q.Query,
		Status:   status,
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	items := make([]ArticleListItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, ArticleListItem{
			ID:           a.Slug,
			Slug:         a.Slug,
			Title:        a.Title,
			Category:     a.Category,
			Date:         a.Date,
			Status:       a.Status,
			Featured:     a.Featured,
			FeatureOrder: a.FeatureOrder,
			ImageURL:     imageguard.SafeURL(a.ImageURL, a.Slug),
		})
	}
	return &ArticlePage{Items: items, Page: page, Total: total, TotalPages: totalPages(total, limit)}, nil
}

func (s *articleService) Get(ctx context.Context, slug string) (*model.Article, error) {
	a, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "Article not found")
	}
	a.ImageURL = imageguard.SafeURL(a.ImageURL, a.Slug)
	return a, nil
}

func (s *articleService) Create(ctx context.Context, in model.ArticlePatch) (*model.Article, error) {
	a := &model.Article{Status: model.ArticleDraft, Tags: []string{}}
	applyPatch(a, in)
	if strings.TrimSpace(a.Title) == "" {
		return nil, apperr.Validation("Title is required")
	}
	if err := validateArticle(a); err != nil {
		return nil, err
	}
	if a.Date == "" {
		a.Date = s.now().UTC().Format(time.DateOnly)
	}

	var explicit string
	if in.Slug != nil {
		explicit = slug.Derive(*in.Slug)
	}
	return s.insert(ctx, a, explicit)
}

func (s *articleService) CreateGenerated(ctx context.Context, a *model.Article) (*model.Article, error) {
	if a.Status == "" {
		a.Status = model.ArticleDraft
	}
	if err := validateArticle(a); err != nil {
		return nil, err
	}
	if a.Date == "" {
		a.Date = s.now().UTC().Format(time.DateOnly)
	}
	return s.insert(ctx, a, "")
}

// insert stores a under explicitSlug, or under a fresh slug derived from
// the title when explicitSlug is empty. The unique index on slug is the
// final arbiter: a violation moves allocation to the next suffix.
func (s *articleService) insert(ctx context.Context, a *model.Article, explicitSlug string) (*model.Article, error) {
	identifier := explicitSlug
	if identifier == "" {
		identifier = slug.Derive(a.Title)
	}
	if identifier == "" {
		identifier = "article"
	}
	a.ImageURL = s.durableImage(ctx, a.ImageURL, identifier)

	if explicitSlug != "" {
		a.Slug = explicitSlug
		err := s.repo.Create(ctx, a)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Validation("Slug already exists")
		}
		if err != nil {
			return nil, apperr.Internal("Failed to create article", err)
		}
		return a, nil
	}

	base := slug.Derive(a.Title)
	final, err := s.allocator.Create(ctx, base, func(ctx context.Context, candidate string) error {
		a.Slug = candidate
		err := s.repo.Create(ctx, a)
		if errors.Is(err, repository.ErrDuplicate) {
			return slug.ErrTaken
		}
		return err
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create article", err)
	}
	if base != "" && final != base {
		metrics.SlugCollisions.Inc()
	}
	return a, nil
}

// durableImage re-hosts a transient image URL before it is persisted.
// Durable and empty URLs pass through unchanged.
func (s *articleService) durableImage(ctx context.Context, u, identifier string) string {
	if u == "" || !imageguard.IsTransient(u) {
		return u
	}
	if s.guard == nil {
		return imageguard.Fallback(identifier)
	}
	return s.guard.EnsureDurable(ctx, u, identifier)
}

func (s *articleService) Update(ctx context.Context, slugParam string, patch model.ArticlePatch) (*model.Article, error) {
	existing, err := s.repo.GetBySlug(ctx, slugParam)
	if err != nil {
		return nil, storeErr(err, "Article not found")
	}

	if patch.Slug != nil {
		next := slug.Derive(*patch.Slug)
		switch {
		case next == "" || next == existing.Slug:
			patch.Slug = nil
		case existing.Status == model.ArticlePublished:
			return nil, apperr.Validation("Slug cannot be changed after publishing")
		default:
			patch.Slug = &next
		}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperr.Validation("Title is required")
	}

	merged := *existing
	applyPatch(&merged, patch)
	if err := validateArticle(&merged); err != nil {
		return nil, err
	}
	if patch.ImageURL != nil {
		identifier := merged.Slug
		if patch.Slug != nil {
			identifier = *patch.Slug
		}
		durable := s.durableImage(ctx, *patch.ImageURL, identifier)
		patch.ImageURL = &durable
	}

	updated, err := s.repo.Update(ctx, slugParam, patch)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("Slug already exists")
	}
	if err != nil {
		return nil, storeErr(err, "Article not found")
	}
	updated.ImageURL = imageguard.SafeURL(updated.ImageURL, updated.Slug)
	return updated, nil
}

func (s *articleService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return storeErr(err, "Article not found")
	}
	return nil
}

func validateArticle(a *model.Article) error {
	if !model.ValidArticleStatus(a.Status) {
		return apperr.Validation("Invalid status")
	}
	if a.Category != "" {
		if _, ok := model.CategoryBySlug(a.Category); !ok {
			return apperr.Validation("Unknown category")
		}
	}
	if a.Status == model.ArticleScheduled && a.PublishAt == nil {
		return apperr.Validation("publishAt is required for scheduled articles")
	}
	return nil
}

// applyPatch copies the non-nil fields of p onto a. The slug is handled by
// the caller.
func applyPatch(a *model.Article, p model.ArticlePatch) {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Excerpt != nil {
		a.Excerpt = *p.Excerpt
	}
	if p.Dek != nil {
		a.Dek = *p.Dek
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Author != nil {
		a.Author = *p.Author
	}
	if p.ImageURL != nil {
		a.ImageURL = *p.ImageURL
	}
	if p.BodyHTML != nil {
		a.BodyHTML = *p.BodyHTML
	}
	if p.BodyMarkdown != nil {
		a.BodyMarkdown = *p.BodyMarkdown
	}
	if p.Tags != nil {
		a.Tags = *p.Tags
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.PublishAt != nil {
		a.PublishAt = p.PublishAt
	}
	if p.Featured != nil {
		a.Featured = *p.Featured
	}
	if p.FeatureOrder != nil {
		a.FeatureOrder = *p.FeatureOrder
	}
}
