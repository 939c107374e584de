package imageguard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploaderFunc func(ctx context.Context, sourceURL, identifier string) (string, error)

func (f uploaderFunc) Upload(ctx context.Context, sourceURL, identifier string) (string, error) {
	return f(ctx, sourceURL, identifier)
}

const transientURL = "https://oaidalleapiprodscus.blob.core.windows.net/private/img-abc.png?se=2026"

func TestEnsureDurable_UploadFailureFallsBack(t *testing.T) {
	g := New(uploaderFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("image host unavailable")
	}), nil)

	got := g.EnsureDurable(context.Background(), transientURL, "good-design")
	assert.Equal(t, "https://picsum.photos/seed/good-design/1024/1024", got)
	assert.Contains(t, got, "good-design")
	assert.NotEqual(t, transientURL, got)
	assert.False(t, IsTransient(got))
}

func TestEnsureDurable_Success(t *testing.T) {
	var gotSource, gotID string
	g := New(uploaderFunc(func(_ context.Context, src, id string) (string, error) {
		gotSource, gotID = src, id
		return "https://media.example.com/articles/good-design.png", nil
	}), nil)

	got := g.EnsureDurable(context.Background(), transientURL, "good-design")
	assert.Equal(t, "https://media.example.com/articles/good-design.png", got)
	assert.Equal(t, transientURL, gotSource)
	assert.Equal(t, "good-design", gotID)
}

func TestEnsureDurable_TransientResultFallsBack(t *testing.T) {
	g := New(uploaderFunc(func(context.Context, string, string) (string, error) {
		return transientURL, nil
	}), nil)
	assert.Equal(t, Fallback("x"), g.EnsureDurable(context.Background(), transientURL, "x"))
}

func TestEnsureDurable_NoUploaderOrEmptyCandidate(t *testing.T) {
	assert.Equal(t, Fallback("a"), New(nil, nil).EnsureDurable(context.Background(), transientURL, "a"))

	called := false
	g := New(uploaderFunc(func(context.Context, string, string) (string, error) {
		called = true
		return "https://media.example.com/a.png", nil
	}), nil)
	assert.Equal(t, Fallback("a"), g.EnsureDurable(context.Background(), "", "a"))
	assert.False(t, called)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(transientURL))
	assert.True(t, IsTransient("https://acct.blob.core.windows.net/x.png"))
	assert.False(t, IsTransient("https://media.example.com/x.png"))
	assert.False(t, IsTransient(""))
}

func TestFallback_EscapesIdentifier(t *testing.T) {
	assert.Equal(t, "https://picsum.photos/seed/a%2Fb/1024/1024", Fallback("a/b"))
}

func TestSafeURL(t *testing.T) {
	assert.Equal(t, "https://media.example.com/x.png", SafeURL("https://media.example.com/x.png", "s"))
	assert.Equal(t, Fallback("s"), SafeURL(transientURL, "s"))
	assert.Equal(t, Fallback("s"), SafeURL("  ", "s"))
}

type memStorage struct {
	key, contentType, body string
}

func (m *memStorage) Save(_ context.Context, key string, data io.Reader, contentType string) (string, error) {
	b, _ := io.ReadAll(data)
	m.key, m.contentType, m.body = key, contentType, string(b)
	return "https://media.example.com/" + key, nil
}

func (m *memStorage) Delete(context.Context, string) error { return nil }

func TestStoreUploader_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-data"))
	}))
	defer srv.Close()

	store := &memStorage{}
	u := NewStoreUploader(store, srv.Client())
	u.now = func() time.Time { return time.Unix(1700000000, 0) }

	got, err := u.Upload(context.Background(), srv.URL+"/img.png", "good-design")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/articles/good-design-1700000000.png", got)
	assert.Equal(t, "png-data", store.body)
	assert.Equal(t, "image/png", store.contentType)
}

func TestStoreUploader_RejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := NewStoreUploader(&memStorage{}, srv.Client()).Upload(context.Background(), srv.URL, "x")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported content type"))
}

func TestStoreUploader_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewStoreUploader(&memStorage{}, srv.Client()).Upload(context.Background(), srv.URL, "x")
	assert.Error(t, err)
}

func TestStoreUploader_RejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		// flush before writing so the body is chunked with no Content-Length
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	store := &memStorage{}
	u := NewStoreUploader(store, srv.Client())
	u.maxSize = 8

	_, err := u.Upload(context.Background(), srv.URL, "big")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
	assert.Empty(t, store.key, "nothing stored")

	g := New(u, nil)
	assert.Equal(t, Fallback("big"), g.EnsureDurable(context.Background(), srv.URL+"/big.png", "big"))
}

func TestStoreUploader_RejectsOversizedContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	u := NewStoreUploader(&memStorage{}, srv.Client())
	u.maxSize = 8

	_, err := u.Upload(context.Background(), srv.URL, "big")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestStoreUploader_AcceptsBodyAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("01234567"))
	}))
	defer srv.Close()

	store := &memStorage{}
	u := NewStoreUploader(store, srv.Client())
	u.maxSize = 8

	_, err := u.Upload(context.Background(), srv.URL, "exact")
	require.NoError(t, err)
	assert.Equal(t, "01234567", store.body)
}
