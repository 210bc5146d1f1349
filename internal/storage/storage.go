package storage

// Package storage holds the object-store boundary for decoded file content.
// Metadata lives in PostgreSQL; the bytes themselves are kept in an
// S3-compatible store keyed by file ID so the database never carries blobs.

import (
	"context"
	"time"
)

// PutOptions carries the declared content type and the SHA-256 checksum of
// the bytes, stored as object metadata for integrity checks on the far side.
type PutOptions struct {
	ContentType string
	Checksum    string
}

// BlobStore is an S3-compatible object storage client for file content.
// Content is written exactly once per key; files are immutable post-upload,
// so there is no update operation.
type BlobStore interface {
	// Put stores the decoded content under the given key.
	Put(ctx context.Context, key string, data []byte, opt PutOptions) error
	// Get retrieves the decoded content for a key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the content for a key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL for downloading the content
	// without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ContentKey is the object key scheme for a file's decoded bytes.
func ContentKey(fileID string) string {
	return "files/" + fileID
}
