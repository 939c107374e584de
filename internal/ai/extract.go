package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

const maxPageSize = 2 << 20 // 2 MB

// HTTPError reports a non-200 response from a fetched page.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// Extractor converts web pages to markdown.
type Extractor struct {
	client    *http.Client
	converter *md.Converter
}

// NewExtractor creates an Extractor. A nil client gets a 20s timeout.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{client: client, converter: md.NewConverter("", true, nil)}
}

// Extract fetches url and returns the page body as markdown.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build source request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	markdown, err := e.converter.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", url, err)
	}
	return strings.TrimSpace(markdown), nil
}
