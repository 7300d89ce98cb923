package services

import (
	"context"

	"github.com/photomap/backend/internal/models"
)

// UserStore persists User records keyed by Slack user id.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	PutUser(ctx context.Context, u *models.User) error
	// SetIgnoreFilesShared flips the opt-out flag on. Missing users yield ErrUserNotFound.
	SetIgnoreFilesShared(ctx context.Context, id string) error
}

// FileStore persists File records keyed by Slack file id. Every operation is
// atomic for its own key only.
type FileStore interface {
	GetFile(ctx context.Context, id string) (*models.File, error)
	PutFile(ctx context.Context, f *models.File) error
	// SetAllowed is idempotent; a missing key yields ErrFileNotFound.
	SetAllowed(ctx context.Context, id string) error
	// DeleteFile yields ErrFileNotFound when nothing was deleted.
	DeleteFile(ctx context.Context, id string) error
	ListFiles(ctx context.Context, q models.ListFilesQuery) ([]*models.File, error)
}

const maxListLimit = 500

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
