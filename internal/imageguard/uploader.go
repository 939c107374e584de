package imageguard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/uxdj/backend/internal/storage"
)

const maxFetchSize = 10 << 20 // 10 MB

// StoreUploader downloads a remote image and saves it to a storage.Storage.
type StoreUploader struct {
	store   storage.Storage
	client  *http.Client
	now     func() time.Time
	maxSize int64
}

// NewStoreUploader creates a StoreUploader. A nil client gets a 30s timeout.
func NewStoreUploader(store storage.Storage, client *http.Client) *StoreUploader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &StoreUploader{store: store, client: client, now: time.Now, maxSize: maxFetchSize}
}

// Upload fetches sourceURL and stores it as articles/<identifier>-<ts><ext>.
func (u *StoreUploader) Upload(ctx context.Context, sourceURL, identifier string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	ext, ok := storage.ExtensionFor(ct)
	if !ok {
		return "", fmt.Errorf("fetch image: unsupported content type %q", ct)
	}

	if resp.ContentLength > u.maxSize {
		return "", fmt.Errorf("fetch image: %d bytes exceeds limit of %d", resp.ContentLength, u.maxSize)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, u.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return "", fmt.Errorf("fetch image: body exceeds limit of %d bytes", u.maxSize)
	}

	key := path.Join("articles", identifier+"-"+strconv.FormatInt(u.now().Unix(), 10)+ext)
	url, err := u.store.Save(ctx, key, bytes.NewReader(data), ct)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return url, nil
}
