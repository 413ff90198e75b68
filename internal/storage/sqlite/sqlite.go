// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

const (
	// linkIDLength is the number of hex characters kept from a UUID for a short link.
	linkIDLength = 10

	// maxLinkIDAttempts bounds retries when a generated link ID collides.
	maxLinkIDAttempts = 3
)

// newLinkID derives a short, URL-safe identifier from a random UUID.
var newLinkID = func() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:linkIDLength]
}

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateLink persists a new share link to the database.
// Generated IDs are redrawn on collision; a taken caller-chosen ID is an error.
func (s *SQLiteStore) CreateLink(ctx context.Context, link *models.ShareLink) error {
	if link.CreatedAt == 0 {
		link.CreatedAt = time.Now().Unix()
	}

	if link.ID != "" {
		err := s.insertLink(ctx, link)
		if isConstraintError(err) {
			return fmt.Errorf("share link %s: %w", link.ID, storage.ErrAlreadyExists)
		}
		return err
	}

	var err error
	for attempt := 1; attempt <= maxLinkIDAttempts; attempt++ {
		link.ID = newLinkID()
		err = s.insertLink(ctx, link)
		if !isConstraintError(err) {
			return err
		}
		slog.Warn("Generated link ID collided, retrying", "link_id", link.ID, "attempt", attempt)
	}
	link.ID = ""
	return fmt.Errorf("no free link ID after %d attempts: %w", maxLinkIDAttempts, err)
}

func (s *SQLiteStore) insertLink(ctx context.Context, link *models.ShareLink) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO share_links (id, token, hits, created_at) VALUES (?, ?, ?, ?)",
		link.ID, link.Token, link.Hits, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert share link: %w", err)
	}
	return nil
}

// GetLink retrieves a share link by ID.
func (s *SQLiteStore) GetLink(ctx context.Context, linkID string) (*models.ShareLink, error) {
	link := &models.ShareLink{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, token, hits, created_at FROM share_links WHERE id = ?",
		linkID,
	).Scan(&link.ID, &link.Token, &link.Hits, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("share link %s: %w", linkID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share link: %w", err)
	}
	return link, nil
}

// TouchLink increments the hit counter of a share link.
func (s *SQLiteStore) TouchLink(ctx context.Context, linkID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE share_links SET hits = hits + 1 WHERE id = ?",
		linkID,
	)
	if err != nil {
		return fmt.Errorf("failed to update share link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("share link %s: %w", linkID, storage.ErrNotFound)
	}
	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
