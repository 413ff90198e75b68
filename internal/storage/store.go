// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billsplit/internal/models"
)

var (
	// ErrNotFound is returned when a share link does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a caller-chosen link ID is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for share link storage operations.
// Only opaque state tokens are persisted; bills themselves are never stored.
type Store interface {
	// CreateLink persists a new share link.
	// The link.ID and link.CreatedAt fields will be populated by the store.
	// A caller-chosen link.ID that is already taken yields ErrAlreadyExists.
	CreateLink(ctx context.Context, link *models.ShareLink) error

	// GetLink retrieves a share link by its ID.
	// Returns an error wrapping ErrNotFound if the link does not exist.
	GetLink(ctx context.Context, linkID string) (*models.ShareLink, error)

	// TouchLink increments the link's hit counter.
	// Returns an error wrapping ErrNotFound if the link does not exist.
	TouchLink(ctx context.Context, linkID string) error

	// Close releases any resources held by the store.
	Close() error
}
