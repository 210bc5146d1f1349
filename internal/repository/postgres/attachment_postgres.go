package postgres

import (
	"context"
	"database/sql"
	"errors"

	"attachapi/internal/model"
	"attachapi/internal/repository"
)

// AttachmentPostgres is a PostgreSQL implementation of
// repository.AttachmentRepository. The unique composite index on
// (file_id, entity_type, entity_id) makes duplicate edges impossible under
// concurrent linking; Upsert leans on it instead of checking first.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

const attachmentColumns = `id, file_id, entity_type, entity_id, entity_title,
		description, created_by, created_at`

func scanAttachment(row rowScanner) (*model.Attachment, error) {
	var a model.Attachment
	if err := row.Scan(
		&a.ID,
		&a.FileID,
		&a.EntityType,
		&a.EntityID,
		&a.EntityTitle,
		&a.Description,
		&a.CreatedBy,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert inserts the edge, or returns the existing row when the triple is
// already present.
func (r *AttachmentPostgres) Upsert(ctx context.Context, a *model.Attachment) (*model.Attachment, bool, error) {
	const qInsert = `
		INSERT INTO attachments (id, file_id, entity_type, entity_id, entity_title,
			description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (file_id, entity_type, entity_id) DO NOTHING
		RETURNING ` + attachmentColumns
	row := r.db.QueryRowContext(ctx, qInsert,
		a.ID,
		a.FileID,
		a.EntityType,
		a.EntityID,
		a.EntityTitle,
		a.Description,
		a.CreatedBy,
		a.CreatedAt,
	)
	out, err := scanAttachment(row)
	if err == nil {
		return out, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	// Conflict path: the edge already exists, fetch it.
	const qExisting = `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE file_id = $1 AND entity_type = $2 AND entity_id = $3`
	existing, err := scanAttachment(r.db.QueryRowContext(ctx, qExisting, a.FileID, a.EntityType, a.EntityID))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// FindByID fetches a single edge by its full ID.
func (r *AttachmentPostgres) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	const q = `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`
	return scanAttachment(r.db.QueryRowContext(ctx, q, id))
}

// ListByEntity returns the entity's edges with file metadata joined,
// ordered by creation time ascending for determinism.
func (r *AttachmentPostgres) ListByEntity(ctx context.Context, ref model.EntityRef) ([]model.AttachmentWithFile, error) {
	const q = `
		SELECT a.id, a.file_id, a.entity_type, a.entity_id, a.entity_title,
			a.description, a.created_by, a.created_at,
			f.id, f.path, f.filename, f.size, f.content_type, f.checksum, f.encoded,
			f.description, f.tags, f.project_id, f.created_by, f.created_at, f.updated_at, f.expire_at
		FROM attachments a
		JOIN files f ON f.id = a.file_id
		WHERE a.entity_type = $1 AND a.entity_id = $2
		ORDER BY a.created_at ASC, a.id ASC`
	rows, err := r.db.QueryContext(ctx, q, ref.Type, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AttachmentWithFile, 0)
	for rows.Next() {
		var item model.AttachmentWithFile
		var tags []byte
		if err := rows.Scan(
			&item.ID,
			&item.FileID,
			&item.EntityType,
			&item.EntityID,
			&item.EntityTitle,
			&item.Description,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.File.ID,
			&item.File.Path,
			&item.File.Filename,
			&item.File.Size,
			&item.File.ContentType,
			&item.File.Checksum,
			&item.File.Encoded,
			&item.File.Description,
			&tags,
			&item.File.ProjectID,
			&item.File.CreatedBy,
			&item.File.CreatedAt,
			&item.File.UpdatedAt,
			&item.File.ExpireAt,
		); err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			if err := unmarshalTags(tags, &item.File.Tags); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByFile returns every edge referencing the file, ordered by creation
// time ascending.
func (r *AttachmentPostgres) ListByFile(ctx context.Context, fileID string) ([]model.Attachment, error) {
	const q = `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE file_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Delete removes one edge scoped to its owning entity. The scope predicate
// is what prevents cross-entity deletion by guessed IDs.
func (r *AttachmentPostgres) Delete(ctx context.Context, id string, ref model.EntityRef) error {
	const q = `DELETE FROM attachments WHERE id = $1 AND entity_type = $2 AND entity_id = $3`
	res, err := r.db.ExecContext(ctx, q, id, ref.Type, ref.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByEntity removes every edge of an entity.
func (r *AttachmentPostgres) DeleteByEntity(ctx context.Context, ref model.EntityRef) (int64, error) {
	const q = `DELETE FROM attachments WHERE entity_type = $1 AND entity_id = $2`
	res, err := r.db.ExecContext(ctx, q, ref.Type, ref.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IDsWithPrefix lists attachment IDs whose textual form starts with prefix.
func (r *AttachmentPostgres) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT id FROM attachments WHERE id::text LIKE $1 || '%' ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, likeEscaper.Replace(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
