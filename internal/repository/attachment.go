package repository

import (
	"context"

	"attachapi/internal/model"
)

// AttachmentRepository defines data access for the attachment edges.
// Idempotency of the (file_id, entity_type, entity_id) triple is enforced
// here, at the storage boundary, never by check-then-act in callers.
type AttachmentRepository interface {
	// Upsert inserts the edge or, when the triple already exists, returns
	// the existing row. created reports which of the two happened.
	Upsert(ctx context.Context, a *model.Attachment) (att *model.Attachment, created bool, err error)

	// FindByID returns an edge by its full ID (sql.ErrNoRows when absent).
	FindByID(ctx context.Context, id string) (*model.Attachment, error)

	// ListByEntity returns the entity's edges joined with file metadata,
	// ordered by creation time ascending.
	ListByEntity(ctx context.Context, ref model.EntityRef) ([]model.AttachmentWithFile, error)

	// ListByFile returns every edge referencing the file, ordered by
	// creation time ascending.
	ListByFile(ctx context.Context, fileID string) ([]model.Attachment, error)

	// Delete removes one edge scoped to the owning entity. sql.ErrNoRows
	// when the edge does not exist or belongs to a different entity.
	Delete(ctx context.Context, id string, ref model.EntityRef) error

	// DeleteByEntity removes every edge of an entity (the cascade hook for
	// entity deletion). Returns the number of edges removed.
	DeleteByEntity(ctx context.Context, ref model.EntityRef) (int64, error)

	// IDsWithPrefix lists full attachment IDs starting with prefix.
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}
