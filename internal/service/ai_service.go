package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/uxdj/backend/internal/ai"
	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/imageguard"
	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/internal/slug"
)

const imageFallbackWarning = "Image generation failed; using fallback image"

// AIService drafts articles and their illustrations.
type AIService interface {
	// Generate drafts an article and stores it as a draft.
	Generate(ctx context.Context, in GenerateInput) (*model.Article, error)
	// RegenerateImage replaces an article's illustration. Generation
	// failures store the placeholder and report a warning rather than an
	// error.
	RegenerateImage(ctx context.Context, slug string) (*RegeneratedImage, error)
}

// GenerateInput is the admin generation request.
type GenerateInput struct {
	Category  string `json:"category"`
	Topic     string `json:"topic"`
	SourceURL string `json:"sourceUrl"`
	Mode      string `json:"mode"`
}

// RegeneratedImage is the outcome of RegenerateImage.
type RegeneratedImage struct {
	ImageURL string `json:"imageUrl"`
	Warning  string `json:"warning,omitempty"`
}

type aiService struct {
	articles  ArticleService
	repo      repository.ArticleRepository
	writer    ai.Writer
	images    ai.ImageGenerator
	extractor ai.SourceExtractor
	guard     *imageguard.Guard
}

// NewAIService creates an AIService. A nil writer disables generation; a
// nil image generator makes every illustration the placeholder.
func NewAIService(articles ArticleService, repo repository.ArticleRepository, writer ai.Writer, images ai.ImageGenerator, extractor ai.SourceExtractor, guard *imageguard.Guard) AIService {
	return &aiService{
		articles:  articles,
		repo:      repo,
		writer:    writer,
		images:    images,
		extractor: extractor,
		guard:     guard,
	}
}

func (s *aiService) Generate(ctx context.Context, in GenerateInput) (*model.Article, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, apperr.Validation("category is required")
	}
	if _, ok := model.CategoryBySlug(category); !ok {
		return nil, apperr.Validation("Unknown category")
	}
	topic, ok := intake.SanitizeTopic(in.Topic)
	if !ok {
		return nil, apperr.Validation("Invalid topic")
	}
	if s.writer == nil {
		return nil, apperr.Upstream("Text generation is not configured", nil)
	}
	sourceURL := strings.TrimSpace(in.SourceURL)

	var source string
	if sourceURL != "" && s.extractor != nil {
		text, err := s.extractor.Extract(ctx, sourceURL)
		if err != nil {
			slog.Warn("source extraction failed", "url", sourceURL, "error", err)
		} else {
			source = text
		}
	}

	draft, err := s.writer.Write(ctx, ai.WriteRequest{Category: category, Topic: topic, Mode: in.Mode, Source: source})
	if err != nil {
		return nil, apperr.Upstream("AI generation failed", err)
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = "Untitled"
	}
	identifier := slug.Derive(draft.Title)
	if identifier == "" {
		identifier = uuid.NewString()
	}
	dek, excerpt := draft.Dek, draft.Excerpt
	if dek == "" {
		dek = excerpt
	}
	if excerpt == "" {
		excerpt = dek
	}

	imageURL := s.illustrate(ctx, ai.ImageSubject{
		Title:        draft.Title,
		Dek:          draft.Dek,
		Excerpt:      draft.Excerpt,
		BodyMarkdown: draft.BodyMarkdown,
		Category:     category,
		Topic:        topic,
	}, identifier)

	return s.articles.CreateGenerated(ctx, &model.Article{
		Title:        title,
		Dek:          dek,
		Excerpt:      excerpt,
		BodyMarkdown: draft.BodyMarkdown,
		Category:     category,
		Status:       model.ArticleDraft,
		Tags:         []string{},
		ImageURL:     imageURL,
		AIGenerated:  true,
		AIProvider:   s.writer.Provider(),
		SourceURL:    sourceURL,
	})
}

func (s *aiService) RegenerateImage(ctx context.Context, slugParam string) (*RegeneratedImage, error) {
	a, err := s.repo.GetBySlug(ctx, slugParam)
	if err != nil {
		return nil, storeErr(err, "Article not found")
	}
	imageURL := s.illustrate(ctx, ai.ImageSubject{
		Title:        a.Title,
		Dek:          a.Dek,
		Excerpt:      a.Excerpt,
		BodyMarkdown: a.BodyMarkdown,
		Category:     a.Category,
	}, a.Slug)
	if err := s.repo.UpdateImageURL(ctx, a.Slug, imageURL); err != nil {
		return nil, storeErr(err, "Article not found")
	}

	out := &RegeneratedImage{ImageURL: imageURL}
	if imageURL == imageguard.Fallback(a.Slug) {
		out.Warning = imageFallbackWarning
	}
	return out, nil
}

// illustrate generates an image for subj and returns a durable URL, or the
// placeholder for identifier when generation or re-hosting fails.
func (s *aiService) illustrate(ctx context.Context, subj ai.ImageSubject, identifier string) string {
	if s.images == nil {
		return imageguard.Fallback(identifier)
	}
	candidate, err := s.images.Generate(ctx, ai.ImagePrompt(subj))
	if err != nil {
		slog.Warn("image generation failed, using placeholder", "identifier", identifier, "error", err)
		return imageguard.Fallback(identifier)
	}
	if s.guard == nil {
		return imageguard.SafeURL(candidate, identifier)
	}
	return s.guard.EnsureDurable(ctx, candidate, identifier)
}
