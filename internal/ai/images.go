package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Image request parameters.
const (
	ImageSize    = "1024x1024"
	ImageQuality = "hd"
	ImageStyle   = "natural"
)

// ImageConfig holds the image API settings.
type ImageConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ImageOption customizes an ImageClient.
type ImageOption func(*ImageClient)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ImageOption {
	return func(c *ImageClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// ImageClient calls an OpenAI-compatible image generation endpoint.
type ImageClient struct {
	cfg        ImageConfig
	httpClient *http.Client
}

// NewImageClient creates an ImageClient.
func NewImageClient(cfg ImageConfig, opts ...ImageOption) *ImageClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	c := &ImageClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate requests one image and returns its URL.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("image api key not configured")
	}
	body, err := json.Marshal(imageRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		N:       1,
		Size:    ImageSize,
		Quality: ImageQuality,
		Style:   ImageStyle,
	})
	if err != nil {
		return "", fmt.Errorf("encode image request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read image response: %w", err)
	}
	var parsed imageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode image response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("image api status %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", ErrNoContent
	}
	return parsed.Data[0].URL, nil
}
