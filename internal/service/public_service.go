package service

import (
	"context"
	"errors"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/imageguard"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
)

// Reader page sizes.
const (
	ReaderPageSize = 20
	homepageLatest = 6
	homepageDaily  = 4
	homepageTiles  = 4
	featuredLimit  = 6
	categoryDaily  = 3
	relatedLimit   = 3
)

// PublicService assembles the reader site pages. Every article image is
// re-validated on read, so a transient URL stored in the past is served as
// its placeholder.
type PublicService interface {
	Categories() []model.Category
	Homepage(ctx context.Context) (*Homepage, error)
	Category(ctx context.Context, slug string) (*CategoryPage, error)
	Article(ctx context.Context, slug string) (*ArticlePageView, error)
	Archive(ctx context.Context, page int) (*CardPage, error)
	Search(ctx context.Context, query string, page int) (*CardPage, error)
}

// AdSlots are the ads rendered beside and inside a page.
type AdSlots struct {
	Sidebar []model.PublicAd `json:"sidebar"`
	Inline  []model.PublicAd `json:"inline"`
}

// Homepage is the reader front page.
type Homepage struct {
	Categories []model.Category `json:"categories"`
	Latest     []*model.Article `json:"latest"`
	Lead       *model.Article   `json:"lead"`
	Daily      []*model.Article `json:"daily"`
	Featured   []*model.Article `json:"featured"`
	Tiles      []*model.Article `json:"tiles"`
	Ads        AdSlots          `json:"ads"`
}

// CategoryPage lists the published articles of one category.
type CategoryPage struct {
	Category   model.Category   `json:"category"`
	Articles   []*model.Article `json:"articles"`
	Daily      []*model.Article `json:"daily"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

// ArticlePageView is a single article with related stories and ads.
type ArticlePageView struct {
	*model.Article
	Related []*model.Article `json:"related"`
	Ads     AdSlots          `json:"ads"`
}

// CardPage is a page of archive or search results.
type CardPage struct {
	Results    []model.ArticleCard `json:"results"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
}

type publicService struct {
	articles repository.ArticleRepository
	ads      AdService
}

// NewPublicService creates a PublicService.
func NewPublicService(articles repository.ArticleRepository, ads AdService) PublicService {
	return &publicService{articles: articles, ads: ads}
}

func (s *publicService) Categories() []model.Category {
	return model.Categories
}

func (s *publicService) published(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, int, error) {
	opts.PublishedOnly = true
	list, total, err := s.articles.List(ctx, opts)
	if err != nil {
		return nil, 0, apperr.Internal("Server error", err)
	}
	for _, a := range list {
		a.ImageURL = imageguard.SafeURL(a.ImageURL, a.Slug)
	}
	if list == nil {
		list = []*model.Article{}
	}
	return list, total, nil
}

func (s *publicService) Homepage(ctx context.Context) (*Homepage, error) {
	ads, err := s.ads.Placements(ctx, model.PlacementHomepageLatest, model.PlacementHomepageLead)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	latest, _, err := s.published(ctx, model.ArticleListOptions{Limit: homepageLatest})
	if err != nil {
		return nil, err
	}
	featured, _, err := s.published(ctx, model.ArticleListOptions{FeaturedOnly: true, Limit: featuredLimit})
	if err != nil {
		return nil, err
	}

	hp := &Homepage{
		Categories: model.Categories,
		Latest:     latest,
		Daily:      latest[:min(homepageDaily, len(latest))],
		Featured:   featured,
		Tiles:      latest[:min(homepageTiles, len(latest))],
		Ads: AdSlots{
			Sidebar: ads[model.PlacementHomepageLatest],
			Inline:  ads[model.PlacementHomepageLead],
		},
	}
	if len(latest) > 0 {
		hp.Lead = latest[0]
	}
	return hp, nil
}

func (s *publicService) Category(ctx context.Context, slug string) (*CategoryPage, error) {
	cat, ok := model.CategoryBySlug(slug)
	if !ok {
		return nil, apperr.NotFound("Not found")
	}
	articles, _, err := s.published(ctx, model.ArticleListOptions{Category: cat.Slug, Limit: 1000})
	if err != nil {
		return nil, err
	}
	return &CategoryPage{
		Category:   cat,
		Articles:   articles,
		Daily:      articles[:min(categoryDaily, len(articles))],
		Page:       1,
		TotalPages: 1,
	}, nil
}

func (s *publicService) Article(ctx context.Context, slug string) (*ArticlePageView, error) {
	a, err := s.articles.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && a.Status != model.ArticlePublished) {
		return nil, apperr.NotFound("Not found")
	}
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	a.ImageURL = imageguard.SafeURL(a.ImageURL, a.Slug)

	related, _, err := s.published(ctx, model.ArticleListOptions{ExcludeSlug: a.Slug, Limit: relatedLimit})
	if err != nil {
		return nil, err
	}
	ads, err := s.ads.Placements(ctx, model.PlacementArticleSidebar, model.PlacementArticleInline, model.PlacementArticleReadmore)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	inline := append(append([]model.PublicAd{}, ads[model.PlacementArticleInline]...), ads[model.PlacementArticleReadmore]...)
	return &ArticlePageView{
		Article: a,
		Related: related,
		Ads:     AdSlots{Sidebar: ads[model.PlacementArticleSidebar], Inline: inline},
	}, nil
}

func (s *publicService) Archive(ctx context.Context, page int) (*CardPage, error) {
	return s.cards(ctx, "", page)
}

func (s *publicService) Search(ctx context.Context, query string, page int) (*CardPage, error) {
	return s.cards(ctx, query, page)
}

func (s *publicService) cards(ctx context.Context, query string, page int) (*CardPage, error) {
	page, limit, offset := pageOffset(page, ReaderPageSize, ReaderPageSize, ReaderPageSize)
	list, total, err := s.published(ctx, model.ArticleListOptions{Query: query, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	results := make([]model.ArticleCard, 0, len(list))
	for _, a := range list {
		results = append(results, model.ArticleCard{
			Headline: a.Title,
			Slug:     a.Slug,
			Category: a.Category,
			Date:     a.Date,
			ImageURL: a.ImageURL,
		})
	}
	return &CardPage{Results: results, Page: page, TotalPages: totalPages(total, limit)}, nil
}
