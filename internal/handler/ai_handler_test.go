package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/service"
)

type mockAIService struct {
	generateFunc        func(ctx context.Context, in service.GenerateInput) (*model.Article, error)
	regenerateImageFunc func(ctx context.Context, slug string) (*service.RegeneratedImage, error)
}

func (m *mockAIService) Generate(ctx context.Context, in service.GenerateInput) (*model.Article, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, in)
	}
	return &model.Article{Slug: "draft", Status: model.ArticleDraft}, nil
}

func (m *mockAIService) RegenerateImage(ctx context.Context, slug string) (*service.RegeneratedImage, error) {
	if m.regenerateImageFunc != nil {
		return m.regenerateImageFunc(ctx, slug)
	}
	return &service.RegeneratedImage{ImageURL: "https://cdn.example.com/" + slug + ".png"}, nil
}

func TestAIHandler_Generate(t *testing.T) {
	var got service.GenerateInput
	rt := newTestRoutes()
	rt.AI = NewAIHandler(&mockAIService{
		generateFunc: func(ctx context.Context, in service.GenerateInput) (*model.Article, error) {
			got = in
			return &model.Article{Slug: "designing-for-trust", Status: model.ArticleDraft}, nil
		},
	})

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/ai/generate", `{"category":"practice","topic":"Designing for trust","mode":"topic"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["slug"] != "designing-for-trust" || body["status"] != "draft" {
		t.Errorf("unexpected body: %v", body)
	}
	if got.Category != "practice" || got.Topic != "Designing for trust" || got.Mode != "topic" {
		t.Errorf("unexpected input: %+v", got)
	}
}

func TestAIHandler_Generate_UpstreamFailure(t *testing.T) {
	rt := newTestRoutes()
	rt.AI = NewAIHandler(&mockAIService{
		generateFunc: func(ctx context.Context, in service.GenerateInput) (*model.Article, error) {
			return nil, apperr.Upstream("Article generation failed", nil)
		},
	})

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/ai/generate", `{"category":"practice","topic":"x"}`))

	assertErrorEnvelope(t, rec, http.StatusInternalServerError, "upstream")
}

func TestAIHandler_RegenerateImage_Warning(t *testing.T) {
	var gotSlug string
	rt := newTestRoutes()
	rt.AI = NewAIHandler(&mockAIService{
		regenerateImageFunc: func(ctx context.Context, slug string) (*service.RegeneratedImage, error) {
			gotSlug = slug
			return &service.RegeneratedImage{ImageURL: "/placeholder.png", Warning: "Image generation failed; placeholder used."}, nil
		},
	})

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/ai/regenerate-image/good-design", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSlug != "good-design" {
		t.Errorf("expected slug from path, got %q", gotSlug)
	}
	body := decodeBody(t, rec)
	if body["imageUrl"] != "/placeholder.png" || body["warning"] == nil {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestAIHandler_RegenerateImage_NotFound(t *testing.T) {
	rt := newTestRoutes()
	rt.AI = NewAIHandler(&mockAIService{
		regenerateImageFunc: func(ctx context.Context, slug string) (*service.RegeneratedImage, error) {
			return nil, apperr.NotFound("Article not found")
		},
	})

	rec := serve(rt, adminRequest(http.MethodPost, "/api/admin/ai/regenerate-image/missing", ""))

	assertErrorEnvelope(t, rec, http.StatusNotFound, "not_found")
}

// deadlineRecorder records write deadlines set through http.ResponseController.
type deadlineRecorder struct {
	*httptest.ResponseRecorder
	deadline time.Time
}

func (d *deadlineRecorder) SetWriteDeadline(t time.Time) error {
	d.deadline = t
	return nil
}

func TestAIHandler_Generate_ExtendsWriteDeadline(t *testing.T) {
	h := NewAIHandler(&mockAIService{}).WithWriteTimeout(6 * time.Minute)
	rec := &deadlineRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/ai/generate", strings.NewReader(`{"category":"practice","topic":"Trust","mode":"topic"}`))

	start := time.Now()
	h.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.deadline.Before(start.Add(6 * time.Minute)) {
		t.Errorf("deadline = %v, want at least 6m after %v", rec.deadline, start)
	}
}

func TestAIHandler_RegenerateImage_NoTimeoutKeepsServerDeadline(t *testing.T) {
	h := NewAIHandler(&mockAIService{})
	rec := &deadlineRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/ai/regenerate-image/a", nil)
	req.SetPathValue("slug", "a")

	h.RegenerateImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !rec.deadline.IsZero() {
		t.Errorf("deadline set to %v, want untouched", rec.deadline)
	}
}
