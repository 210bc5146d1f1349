package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"attachapi/internal/model"
	"attachapi/internal/repository"
)

const pgUniqueViolation = "23505"

// likeEscaper neutralizes LIKE metacharacters in prefix lookups so a stray
// % or _ in a short reference cannot act as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// mapDuplicate translates the driver's unique-violation error onto
// repository.ErrDuplicate so callers stay driver-agnostic.
func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, path, filename, size, content_type, checksum, encoded,
		description, tags, project_id, created_by, created_at, updated_at, expire_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var f model.File
	var tags []byte
	if err := row.Scan(
		&f.ID,
		&f.Path,
		&f.Filename,
		&f.Size,
		&f.ContentType,
		&f.Checksum,
		&f.Encoded,
		&f.Description,
		&tags,
		&f.ProjectID,
		&f.CreatedBy,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.ExpireAt,
	); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := unmarshalTags(tags, &f.Tags); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func unmarshalTags(b []byte, dst *[]string) error {
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	if len(*dst) == 0 {
		*dst = nil
	}
	return nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, path, filename, size, content_type, checksum, encoded,
			description, tags, project_id, created_by, created_at, updated_at, expire_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + fileColumns
	tags, err := marshalTags(f.Tags)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Path,
		f.Filename,
		f.Size,
		f.ContentType,
		f.Checksum,
		f.Encoded,
		f.Description,
		tags,
		f.ProjectID,
		f.CreatedBy,
		f.CreatedAt,
		f.UpdatedAt,
		f.ExpireAt,
	)
	out, err := scanFile(row)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return out, nil
}

// FindByID fetches a single file by its full ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// FindByPath fetches a single file by its unique remote path.
func (r *FilePostgres) FindByPath(ctx context.Context, path string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE path = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, path))
}

// List returns files using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	const qCount = `SELECT COUNT(*) FROM files`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + fileColumns + `
		FROM files
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{Items: items, Total: total}, nil
}

// UpdateMeta replaces the mutable metadata fields of a file.
func (r *FilePostgres) UpdateMeta(ctx context.Context, id string, m repository.MetaUpdate, updatedAt time.Time) (*model.File, error) {
	const q = `
		UPDATE files
		SET description = $2, tags = $3, project_id = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + fileColumns
	tags, err := marshalTags(m.Tags)
	if err != nil {
		return nil, err
	}
	return scanFile(r.db.QueryRowContext(ctx, q, id, m.Description, tags, m.ProjectID, updatedAt))
}

// UpdateExpiry replaces the absolute expiry timestamp of a file.
func (r *FilePostgres) UpdateExpiry(ctx context.Context, id string, expireAt, updatedAt time.Time) (*model.File, error) {
	const q = `
		UPDATE files
		SET expire_at = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q, id, expireAt, updatedAt))
}

// Delete removes a file row. Attachment edges cascade via the foreign key.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// DeleteExpired removes every expired row and returns the removed IDs.
func (r *FilePostgres) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	const q = `DELETE FROM files WHERE expire_at < $1 RETURNING id`
	rows, err := r.db.QueryContext(ctx, q, now)
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

// IDsWithPrefix lists file IDs whose textual form starts with prefix.
func (r *FilePostgres) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT id FROM files WHERE id::text LIKE $1 || '%' ORDER BY id`
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
