package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockDB struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockDB) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func TestHealth_OK(t *testing.T) {
	h := NewHealthHandler(&mockDB{}, "1.2.3", "")
	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Status != "ok" {
		t.Errorf("expected ok, got %+v", resp)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	h := NewHealthHandler(&mockDB{
		pingFunc: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}, "1.2.3", "")
	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK || resp.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %+v", resp)
	}
}

func TestVersion(t *testing.T) {
	h := NewHealthHandler(nil, "1.2.3", "abc123")
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	rec := httptest.NewRecorder()

	h.Version(rec, httptest.NewRequest("GET", "/api/public/version", nil))

	var resp versionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.App != AppName || resp.Version != "1.2.3" {
		t.Errorf("unexpected version response: %+v", resp)
	}
	if resp.Commit == nil || *resp.Commit != "abc123" {
		t.Errorf("expected commit abc123, got %v", resp.Commit)
	}
	if resp.Now != "2026-03-01T12:00:00Z" {
		t.Errorf("expected now 2026-03-01T12:00:00Z, got %q", resp.Now)
	}
}

func TestVersion_NoCommit(t *testing.T) {
	h := NewHealthHandler(nil, "dev", "")
	rec := httptest.NewRecorder()

	h.Version(rec, httptest.NewRequest("GET", "/api/public/version", nil))

	body := decodeBody(t, rec)
	if v, ok := body["commit"]; !ok || v != nil {
		t.Errorf("expected commit: null, got %v (present=%v)", v, ok)
	}
}
