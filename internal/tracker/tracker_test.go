package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attachapi/internal/model"
)

// Every one of the six entity kinds must resolve to a distinct, correct
// storage table. The reference system shipped with this mapping broken for
// at least one kind (queries hit a literal "undefined" table), so the map
// is pinned here in full.
func TestTableForCoversAllKinds(t *testing.T) {
	want := map[model.EntityType]string{
		model.EntityBug:           "bugs",
		model.EntityFeature:       "features",
		model.EntityTestCase:      "test_cases",
		model.EntitySupportTicket: "support_tickets",
		model.EntityMilestone:     "milestones",
		model.EntityRoadmap:       "roadmaps",
	}

	seen := map[string]model.EntityType{}
	for _, kind := range model.EntityTypes() {
		table, err := TableFor(kind)
		require.NoError(t, err, "kind %s must have a table mapping", kind)
		assert.Equal(t, want[kind], table)

		prev, dup := seen[table]
		assert.False(t, dup, "table %s mapped by both %s and %s", table, prev, kind)
		seen[table] = kind

		assert.NotEqual(t, "undefined", table)
		assert.NotEmpty(t, table)
	}
	assert.Len(t, seen, 6)
}

func TestTableForUnknownKind(t *testing.T) {
	_, err := TableFor(model.EntityType("epic"))
	assert.Error(t, err)
}

func TestTitleOf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT title FROM bugs WHERE id = ?").
			WithArgs("bug-1").
			WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("login crashes"))

		title, err := store.TitleOf(context.Background(), model.EntityRef{Type: model.EntityBug, ID: "bug-1"})

		assert.NoError(t, err)
		assert.Equal(t, "login crashes", title)
	})

	t.Run("missing entity", func(t *testing.T) {
		mock.ExpectQuery("SELECT title FROM roadmaps WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := store.TitleOf(context.Background(), model.EntityRef{Type: model.EntityRoadmap, ID: "missing"})

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestTitleOfQueriesTheRightTablePerKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	for _, kind := range model.EntityTypes() {
		table, _ := TableFor(kind)
		mock.ExpectQuery(fmt.Sprintf("SELECT title FROM %s WHERE id = ?", table)).
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("t"))

		_, err := store.TitleOf(context.Background(), model.EntityRef{Type: kind, ID: "id-1"})
		assert.NoError(t, err, "kind %s", kind)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT EXISTS \\(SELECT 1 FROM features WHERE id = (.+)\\)").
		WithArgs("feat-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.Exists(context.Background(), model.EntityRef{Type: model.EntityFeature, ID: "feat-1"})

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestIDsWithPrefix(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	mock.ExpectQuery("SELECT id FROM milestones WHERE id::text LIKE").
		WithArgs("cccccccc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cccccccc-0000-4000-8000-000000000001"))

	ids, err := store.IDsWithPrefix(context.Background(), model.EntityMilestone, "cccccccc")

	assert.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestIDsWithPrefixEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgres(db)

	// A % or _ in the reference must reach the database neutralized, never
	// as a wildcard widening the match set.
	mock.ExpectQuery("SELECT id FROM milestones WHERE id::text LIKE").
		WithArgs(`cc\%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := store.IDsWithPrefix(context.Background(), model.EntityMilestone, "cc%")

	assert.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIDsWithPrefixUnknownKind(t *testing.T) {
	store := NewPostgres(nil)

	_, err := store.IDsWithPrefix(context.Background(), model.EntityType("sprint"), "ab")
	assert.Error(t, err)
}
