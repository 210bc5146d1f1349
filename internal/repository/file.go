package repository

import (
	"context"
	"time"

	"attachapi/internal/model"
)

// MetaUpdate carries the mutable metadata fields of a file. Content, path
// and checksum are immutable post-upload and deliberately absent.
type MetaUpdate struct {
	Description string
	Tags        []string
	ProjectID   string
}

// FileRepository defines data access for file metadata rows using SQL
// queries only. No business logic here.
type FileRepository interface {
	// Create inserts a new file row and returns the stored record.
	// A path collision surfaces as ErrDuplicate.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its full ID (sql.ErrNoRows when absent).
	FindByID(ctx context.Context, id string) (*model.File, error)

	// FindByPath returns a file by its unique remote path.
	FindByPath(ctx context.Context, path string) (*model.File, error)

	// List returns a page of files ordered by creation time descending,
	// plus the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.File], error)

	// UpdateMeta replaces the mutable metadata fields.
	UpdateMeta(ctx context.Context, id string, m MetaUpdate, updatedAt time.Time) (*model.File, error)

	// UpdateExpiry replaces the absolute expiry timestamp.
	UpdateExpiry(ctx context.Context, id string, expireAt, updatedAt time.Time) (*model.File, error)

	// Delete removes a file row; attachment edges cascade at the schema
	// level. Returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every row whose expiry is before now and
	// returns the IDs removed so blobs can be purged.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)

	// IDsWithPrefix lists full IDs whose textual form starts with prefix,
	// for short-ID resolution.
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
