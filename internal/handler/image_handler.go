package handler

import (
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/storage"
)

const maxImageSize = 5 << 20 // 5 MB

// ImageHandler accepts admin image uploads and stores them durably.
type ImageHandler struct {
	storage storage.Storage
	now     func() time.Time
}

// NewImageHandler creates an ImageHandler. A nil store disables uploads.
func NewImageHandler(store storage.Storage) *ImageHandler {
	return &ImageHandler{storage: store, now: time.Now}
}

// Upload handles POST /api/admin/uploads with a multipart "file" field.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, r, apperr.Upstream("Uploads are not configured", nil))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, r, apperr.Validation("File too large"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperr.Validation("file is required"))
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		writeError(w, r, apperr.Validation("File too large"))
		return
	}

	ct := header.Header.Get("Content-Type")
	ext, ok := storage.ExtensionFor(ct)
	if !ok {
		writeError(w, r, apperr.Validation("Only JPEG, PNG, WebP and GIF images are allowed"))
		return
	}

	key := path.Join("uploads", h.now().UTC().Format("2006/01"), uuid.NewString()+ext)
	url, err := h.storage.Save(r.Context(), key, file, ct)
	if err != nil {
		slog.Error("image upload failed", "error", err, "key", key)
		writeError(w, r, apperr.Upstream("Upload failed", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
