package service

import (
	"errors"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/repository"
)

// storeErr converts a repository error into an apperr. ErrNotFound becomes
// a not-found error with msg; anything else is internal.
func storeErr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal("Server error", err)
}

// pageOffset clamps page and limit and returns the row offset.
func pageOffset(page, limit, defaultLimit, maxLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

// totalPages returns ceil(total/limit), at least 1.
func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}
