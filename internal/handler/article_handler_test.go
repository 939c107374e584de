package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mock ArticleService
// ---------------------------------------------------------------------------

type mockArticleService struct {
	listFunc   func(ctx context.Context, q service.ArticleQuery) (*service.ArticlePage, error)
	getFunc    func(ctx context.Context, slug string) (*model.Article, error)
	createFunc func(ctx context.Context, in model.ArticlePatch) (*model.Article, error)
	updateFunc func(ctx context.Context, slug string, patch model.ArticlePatch) (*model.Article, error)
	deleteFunc func(ctx context.Context, slug string) error
}

func (m *mockArticleService) List(ctx context.Context, q service.ArticleQuery) (*service.ArticlePage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, q)
	}
	return &service.ArticlePage{Items: []service.ArticleListItem{}, Page: 1, TotalPages: 1}, nil
}

func (m *mockArticleService) Get(ctx context.Context, slug string) (*model.Article, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, slug)
	}
	return &model.Article{Slug: slug}, nil
}

func (m *mockArticleService) Create(ctx context.Context, in model.ArticlePatch) (*model.Article, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return &model.Article{Slug: "new"}, nil
}

func (m *mockArticleService) CreateGenerated(ctx context.Context, a *model.Article) (*model.Article, error) {
	return a, nil
}

func (m *mockArticleService) Update(ctx context.Context, slug string, patch model.ArticlePatch) (*model.Article, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, slug, patch)
	}
	return &model.Article{Slug: slug}, nil
}

func (m *mockArticleService) Delete(ctx context.Context, slug string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, slug)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock AdService
// ---------------------------------------------------------------------------

type mockAdService struct {
	listFunc   func(ctx context.Context, placement string) ([]*model.Ad, error)
	createFunc func(ctx context.Context, in service.AdInput) (*model.Ad, error)
	updateFunc func(ctx context.Context, id string, in service.AdInput) (*model.Ad, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockAdService) List(ctx context.Context, placement string) ([]*model.Ad, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, placement)
	}
	return []*model.Ad{}, nil
}

func (m *mockAdService) Create(ctx context.Context, in service.AdInput) (*model.Ad, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return &model.Ad{ID: "ad1"}, nil
}

func (m *mockAdService) Update(ctx context.Context, id string, in service.AdInput) (*model.Ad, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, in)
	}
	return &model.Ad{ID: id}, nil
}

func (m *mockAdService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAdService) Placements(ctx context.Context, placements ...string) (map[string][]model.PublicAd, error) {
	return map[string][]model.PublicAd{}, nil
}

// ---------------------------------------------------------------------------
// Article tests
// ---------------------------------------------------------------------------

func TestArticleHandler_List_PassesFilters(t *testing.T) {
	var got service.ArticleQuery
	mock := &mockArticleService{
		listFunc: func(ctx context.Context, q service.ArticleQuery) (*service.ArticlePage, error) {
			got = q
			return &service.ArticlePage{Items: []service.ArticleListItem{{ID: "a", Slug: "a"}}, Page: 2, Total: 21, TotalPages: 2}, nil
		},
	}
	rt := newTestRoutes()
	rt.Articles = NewArticleHandler(mock)

	rec := serve(rt, adminRequest(http.MethodGet, "/api/admin/articles?q=design&status=draft&category=career&page=2&limit=20", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := service.ArticleQuery{Query: "design", Status: "draft", Category: "career", Page: 2, Limit: 20}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	body := decodeBody(t, rec)
	if items, _ := body["items"].([]any); len(items) != 1 {
		t.Errorf("expected 1 item, got %v", body["items"])
	}
}

func TestArticleHandler_Create_DuplicateSlug(t *testing.T) {
	var got model.ArticlePatch
	mock := &mockArticleService{
		createFunc: func(ctx context.Context, in model.ArticlePatch) (*model.Article, error) {
			got = in
			return nil, apperr.Validation("Slug already exists")
		},
	}
	rt := newTestRoutes()
	rt.Articles = NewArticleHandler(mock)

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/articles", `{"title":"Good Design!","slug":"good-design"}`))

	body := assertErrorEnvelope(t, rec, http.StatusBadRequest, "validation")
	if body["message"] != "Slug already exists" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if got.Title == nil || *got.Title != "Good Design!" || got.Slug == nil || *got.Slug != "good-design" {
		t.Errorf("unexpected patch: %+v", got)
	}
}

func TestArticleHandler_Create(t *testing.T) {
	mock := &mockArticleService{
		createFunc: func(ctx context.Context, in model.ArticlePatch) (*model.Article, error) {
			return &model.Article{Slug: "good-design-1", Title: *in.Title, Status: model.ArticleDraft}, nil
		},
	}
	rt := newTestRoutes()
	rt.Articles = NewArticleHandler(mock)

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/articles", `{"title":"Good Design!"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["slug"] != "good-design-1" {
		t.Errorf("expected slug good-design-1, got %v", body["slug"])
	}
}

func TestArticleHandler_Update_SlugFromPath(t *testing.T) {
	var gotSlug string
	var gotPatch model.ArticlePatch
	mock := &mockArticleService{
		updateFunc: func(ctx context.Context, slug string, patch model.ArticlePatch) (*model.Article, error) {
			gotSlug, gotPatch = slug, patch
			return &model.Article{Slug: slug, Status: model.ArticlePublished}, nil
		},
	}
	rt := newTestRoutes()
	rt.Articles = NewArticleHandler(mock)

	rec := serve(rt, adminRequest(http.MethodPut, "/api/admin/articles/good-design", `{"status":"published","featured":true}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSlug != "good-design" {
		t.Errorf("expected slug from path, got %q", gotSlug)
	}
	if gotPatch.Status == nil || *gotPatch.Status != "published" || gotPatch.Featured == nil || !*gotPatch.Featured {
		t.Errorf("unexpected patch: %+v", gotPatch)
	}
	if gotPatch.Title != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestArticleHandler_Get_NotFound(t *testing.T) {
	mock := &mockArticleService{
		getFunc: func(ctx context.Context, slug string) (*model.Article, error) {
			return nil, apperr.NotFound("Article not found")
		},
	}
	rt := newTestRoutes()
	rt.Articles = NewArticleHandler(mock)

	rec := serve(rt, adminRequest(http.MethodGet, "/api/admin/articles/missing", ""))

	assertErrorEnvelope(t, rec, http.StatusNotFound, "not_found")
}

// ---------------------------------------------------------------------------
// Ad tests
// ---------------------------------------------------------------------------

func TestAdHandler_List_ReturnsArray(t *testing.T) {
	var gotPlacement string
	mock := &mockAdService{
		listFunc: func(ctx context.Context, placement string) ([]*model.Ad, error) {
			gotPlacement = placement
			return []*model.Ad{{ID: "ad1", Placement: placement}}, nil
		},
	}
	rt := newTestRoutes()
	rt.Ads = NewAdHandler(mock)

	rec := serve(rt, adminRequest(http.MethodGet, "/api/admin/ads?placement=homepage-latest", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPlacement != "homepage-latest" {
		t.Errorf("unexpected placement %q", gotPlacement)
	}
	if body := rec.Body.String(); len(body) == 0 || body[0] != '[' {
		t.Errorf("expected a JSON array, got %s", body)
	}
}

func TestAdHandler_Create_Invalid(t *testing.T) {
	mock := &mockAdService{
		createFunc: func(ctx context.Context, in service.AdInput) (*model.Ad, error) {
			return nil, apperr.Validation("href is required for IMAGE_LINK")
		},
	}
	rt := newTestRoutes()
	rt.Ads = NewAdHandler(mock)

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/ads", `{"placement":"article-sidebar","type":"IMAGE_LINK","imageUrl":"300x250"}`))

	assertErrorEnvelope(t, rec, http.StatusBadRequest, "validation")
}

func TestAdHandler_Update(t *testing.T) {
	var gotID string
	var gotIn service.AdInput
	mock := &mockAdService{
		updateFunc: func(ctx context.Context, id string, in service.AdInput) (*model.Ad, error) {
			gotID, gotIn = id, in
			return &model.Ad{ID: id}, nil
		},
	}
	rt := newTestRoutes()
	rt.Ads = NewAdHandler(mock)

	rec := serve(rt, adminRequest(http.MethodPut, "/api/admin/ads/ad9", `{"placement":"article-inline","type":"EMBED_SNIPPET","html":"<div></div>","active":false}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "ad9" || gotIn.Active == nil || *gotIn.Active {
		t.Errorf("unexpected args: %q %+v", gotID, gotIn)
	}
}
