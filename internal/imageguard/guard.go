// Package imageguard makes sure article image URLs point at durable storage.
// Image URLs handed out by the generation API expire within hours; they are
// re-hosted before being persisted and masked when read back.
package imageguard

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/uxdj/backend/internal/metrics"
)

// transientHosts are URL fragments identifying short-lived upstream image URLs.
var transientHosts = []string{
	"oaidalleapiprodscus",
	"blob.core.windows.net",
}

// IsTransient reports whether u is a short-lived upstream URL.
func IsTransient(u string) bool {
	for _, h := range transientHosts {
		if strings.Contains(u, h) {
			return true
		}
	}
	return false
}

// Fallback returns the deterministic placeholder image for identifier.
func Fallback(identifier string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(identifier) + "/1024/1024"
}

// SafeURL returns u unless it is empty or transient, in which case the
// placeholder for identifier is returned.
func SafeURL(u, identifier string) string {
	if strings.TrimSpace(u) == "" || IsTransient(u) {
		return Fallback(identifier)
	}
	return u
}

// Uploader copies the image at sourceURL to durable storage and returns the
// durable URL.
type Uploader interface {
	Upload(ctx context.Context, sourceURL, identifier string) (string, error)
}

// Guard re-hosts candidate image URLs.
type Guard struct {
	uploader Uploader
	log      *slog.Logger
}

// New creates a Guard. A nil uploader means durable storage is not
// configured and every candidate resolves to the placeholder.
func New(uploader Uploader, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{uploader: uploader, log: log}
}

// EnsureDurable uploads candidate and returns the durable URL. Any failure,
// or an upload that still yields a transient URL, resolves to
// Fallback(identifier). The returned URL is never transient.
func (g *Guard) EnsureDurable(ctx context.Context, candidate, identifier string) string {
	if strings.TrimSpace(candidate) == "" {
		return g.fallback(identifier, "empty")
	}
	if g.uploader == nil {
		return g.fallback(identifier, "no_storage")
	}
	durable, err := g.uploader.Upload(ctx, candidate, identifier)
	if err != nil {
		g.log.Warn("image upload failed, using placeholder", "identifier", identifier, "error", err)
		return g.fallback(identifier, "upload_failed")
	}
	if durable == "" || IsTransient(durable) {
		return g.fallback(identifier, "transient_result")
	}
	return durable
}

func (g *Guard) fallback(identifier, reason string) string {
	metrics.ImageFallbacks.WithLabelValues(reason).Inc()
	return Fallback(identifier)
}
