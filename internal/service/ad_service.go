package service

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
)

const placeholderHost = "https://placehold.co/"

// AdService manages ad creatives and picks them for public pages.
type AdService interface {
	List(ctx context.Context, placement string) ([]*model.Ad, error)
	Create(ctx context.Context, in AdInput) (*model.Ad, error)
	Update(ctx context.Context, id string, in AdInput) (*model.Ad, error)
	Delete(ctx context.Context, id string) error
	// Placements returns the active ads of each placement in a fresh random
	// order. Placements without ads map to an empty slice.
	Placements(ctx context.Context, placements ...string) (map[string][]model.PublicAd, error)
}

// AdInput is the admin ad payload. Create and Update both replace every
// field.
type AdInput struct {
	Placement string `json:"placement"`
	Size      string `json:"size"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl"`
	Href      string `json:"href"`
	Alt       string `json:"alt"`
	HTML      string `json:"html"`
	Label     string `json:"label"`
	Active    *bool  `json:"active"`
	Order     int    `json:"order"`
}

func (in AdInput) toAd() (*model.Ad, error) {
	ad := &model.Ad{
		Placement: strings.TrimSpace(in.Placement),
		Size:      strings.TrimSpace(in.Size),
		Type:      strings.TrimSpace(in.Type),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		Href:      strings.TrimSpace(in.Href),
		Alt:       in.Alt,
		HTML:      in.HTML,
		Label:     in.Label,
		Active:    in.Active == nil || *in.Active,
		Order:     in.Order,
	}
	if ad.Placement == "" {
		return nil, apperr.Validation("placement is required")
	}
	switch ad.Type {
	case "":
		return nil, apperr.Validation("type is required")
	case model.AdImageLink:
		if ad.ImageURL == "" {
			return nil, apperr.Validation("imageUrl is required for IMAGE_LINK")
		}
		if ad.Href == "" {
			return nil, apperr.Validation("href is required for IMAGE_LINK")
		}
	case model.AdEmbedSnippet:
		if strings.TrimSpace(ad.HTML) == "" {
			return nil, apperr.Validation("html is required for EMBED_SNIPPET")
		}
	default:
		return nil, apperr.Validation("type must be IMAGE_LINK or EMBED_SNIPPET")
	}
	return ad, nil
}

type adService struct {
	repo    repository.AdRepository
	shuffle func(n int, swap func(i, j int))
}

// NewAdService creates an AdService.
func NewAdService(repo repository.AdRepository) AdService {
	return &adService{repo: repo, shuffle: rand.Shuffle}
}

func (s *adService) List(ctx context.Context, placement string) ([]*model.Ad, error) {
	ads, err := s.repo.List(ctx, placement)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	if ads == nil {
		ads = []*model.Ad{}
	}
	for _, a := range ads {
		a.ImageURL = adImageURL(a.ImageURL)
	}
	return ads, nil
}

func (s *adService) Create(ctx context.Context, in AdInput) (*model.Ad, error) {
	ad, err := in.toAd()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ad); err != nil {
		return nil, apperr.Internal("Failed to create ad", err)
	}
	ad.ImageURL = adImageURL(ad.ImageURL)
	return ad, nil
}

func (s *adService) Update(ctx context.Context, id string, in AdInput) (*model.Ad, error) {
	ad, err := in.toAd()
	if err != nil {
		return nil, err
	}
	ad.ID = id
	if err := s.repo.Update(ctx, ad); err != nil {
		return nil, storeErr(err, "Not found")
	}
	ad.ImageURL = adImageURL(ad.ImageURL)
	return ad, nil
}

func (s *adService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, "Not found")
	}
	return nil
}

func (s *adService) Placements(ctx context.Context, placements ...string) (map[string][]model.PublicAd, error) {
	byPlacement, err := s.repo.ListActive(ctx, placements)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]model.PublicAd, len(placements))
	for _, p := range placements {
		ads := byPlacement[p]
		public := make([]model.PublicAd, len(ads))
		for i, a := range ads {
			public[i] = toPublicAd(a)
		}
		s.shuffle(len(public), func(i, j int) { public[i], public[j] = public[j], public[i] })
		out[p] = public
	}
	return out, nil
}

func toPublicAd(a *model.Ad) model.PublicAd {
	return model.PublicAd{
		ID:        a.ID,
		Placement: a.Placement,
		Size:      a.Size,
		Type:      a.Type,
		ImageURL:  adImageURL(a.ImageURL),
		Href:      a.Href,
		Alt:       a.Alt,
		HTML:      a.HTML,
		Label:     a.Label,
	}
}

// adImageURL expands a bare placeholder spec such as "300x250" into a
// placeholder service URL.
func adImageURL(u string) string {
	if u == "" || strings.HasPrefix(u, "http") {
		return u
	}
	return placeholderHost + u
}
