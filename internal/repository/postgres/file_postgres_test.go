package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attachapi/internal/model"
	"attachapi/internal/repository"
)

var fileCols = []string{
	"id", "path", "filename", "size", "content_type", "checksum", "encoded",
	"description", "tags", "project_id", "created_by", "created_at", "updated_at", "expire_at",
}

func fileRow(f *model.File, tags string) *sqlmock.Rows {
	return sqlmock.NewRows(fileCols).AddRow(
		f.ID, f.Path, f.Filename, f.Size, f.ContentType, f.Checksum, f.Encoded,
		f.Description, []byte(tags), f.ProjectID, f.CreatedBy, f.CreatedAt, f.UpdatedAt, f.ExpireAt,
	)
}

func testFile() *model.File {
	now := time.Now().UTC()
	return &model.File{
		ID:          "aaaaaaaa-0000-4000-8000-000000000001",
		Path:        "/reports/q1.txt",
		Filename:    "q1.txt",
		Size:        37,
		ContentType: "text/plain",
		Checksum:    "deadbeef",
		Encoded:     false,
		Description: "quarterly report",
		Tags:        []string{"report", "q1"},
		ProjectID:   "proj-1",
		CreatedBy:   "tester",
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpireAt:    now.Add(time.Hour),
	}
}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	f := testFile()

	mock.ExpectQuery("INSERT INTO files").
		WithArgs(f.ID, f.Path, f.Filename, f.Size, f.ContentType, f.Checksum, f.Encoded,
			f.Description, []byte(`["report","q1"]`), f.ProjectID, f.CreatedBy, f.CreatedAt, f.UpdatedAt, f.ExpireAt).
		WillReturnRows(fileRow(f, `["report","q1"]`))

	out, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, f.ID, out.ID)
	assert.Equal(t, []string{"report", "q1"}, out.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()
	f := testFile()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs(f.ID).
			WillReturnRows(fileRow(f, `[]`))

		out, err := repo.FindByID(ctx, f.ID)

		assert.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, f.Path, out.Path)
		assert.Nil(t, out.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		out, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, out)
	})
}

func TestFilePostgres_FindByPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	f := testFile()

	mock.ExpectQuery("SELECT (.+) FROM files WHERE path = ?").
		WithArgs(f.Path).
		WillReturnRows(fileRow(f, `["report","q1"]`))

	out, err := repo.FindByPath(context.Background(), f.Path)

	assert.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, f.ID, out.ID)
}

func TestFilePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	f := testFile()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM files`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM files ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(fileRow(f, `[]`))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_UpdateMeta(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	f := testFile()
	updatedAt := time.Now().UTC()

	mock.ExpectQuery("UPDATE files").
		WithArgs(f.ID, "new desc", []byte(`["x"]`), "proj-2", updatedAt).
		WillReturnRows(fileRow(f, `["x"]`))

	out, err := repo.UpdateMeta(context.Background(), f.ID, repository.MetaUpdate{
		Description: "new desc",
		Tags:        []string{"x"},
		ProjectID:   "proj-2",
	}, updatedAt)

	assert.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, []string{"x"}, out.Tags)
}

func TestFilePostgres_UpdateExpiry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	f := testFile()
	expireAt := time.Now().UTC().Add(2 * time.Hour)
	updatedAt := time.Now().UTC()

	mock.ExpectQuery("UPDATE files").
		WithArgs(f.ID, expireAt, updatedAt).
		WillReturnRows(fileRow(f, `[]`))

	out, err := repo.UpdateExpiry(context.Background(), f.ID, expireAt, updatedAt)

	assert.NoError(t, err)
	assert.NotNil(t, out)
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)

	mock.ExpectExec("DELETE FROM files WHERE id = ?").
		WithArgs("some-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "some-id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("DELETE FROM files WHERE expire_at < (.+) RETURNING id").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("id-1").AddRow("id-2"))

	ids, err := repo.DeleteExpired(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, []string{"id-1", "id-2"}, ids)
}

func TestFilePostgres_IDsWithPrefix(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)

	mock.ExpectQuery("SELECT id FROM files WHERE id::text LIKE").
		WithArgs("aaaaaaaa").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("aaaaaaaa-0000-4000-8000-000000000001"))

	ids, err := repo.IDsWithPrefix(context.Background(), "aaaaaaaa")

	assert.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestFilePostgres_IDsWithPrefixEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)

	// A % or _ in the reference must reach the database neutralized, never
	// as a wildcard widening the match set.
	mock.ExpectQuery("SELECT id FROM files WHERE id::text LIKE").
		WithArgs(`ab\%c\_d`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.IDsWithPrefix(context.Background(), "ab%c_d")

	assert.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
