package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Design Debt</h1><p>It <strong>compounds</strong>.</p></body></html>`))
	}))
	defer srv.Close()

	out, err := NewExtractor(srv.Client()).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "# Design Debt")
	assert.Contains(t, out, "**compounds**")
}

func TestExtractor_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewExtractor(srv.Client()).Extract(context.Background(), srv.URL)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}
