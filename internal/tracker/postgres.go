package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"attachapi/internal/model"
)

// likeEscaper neutralizes LIKE metacharacters in prefix lookups so a stray
// % or _ in a short reference cannot act as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Postgres reads entity records from the tracker's own tables. Table names
// come exclusively from the closed TableFor mapping, so the queries below
// never interpolate caller input.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a tracker store over the shared database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)

// TitleOf returns the display title of an entity.
func (s *Postgres) TitleOf(ctx context.Context, ref model.EntityRef) (string, error) {
	table, err := TableFor(ref.Type)
	if err != nil {
		return "", err
	}
	q := fmt.Sprintf(`SELECT title FROM %s WHERE id = $1`, table)
	var title string
	if err := s.db.QueryRowContext(ctx, q, ref.ID).Scan(&title); err != nil {
		return "", err
	}
	return title, nil
}

// Exists reports whether an entity record is present.
func (s *Postgres) Exists(ctx context.Context, ref model.EntityRef) (bool, error) {
	table, err := TableFor(ref.Type)
	if err != nil {
		return false, err
	}
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, ref.ID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// IDsWithPrefix lists IDs of one entity type starting with prefix.
func (s *Postgres) IDsWithPrefix(ctx context.Context, t model.EntityType, prefix string) ([]string, error) {
	table, err := TableFor(t)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id FROM %s WHERE id::text LIKE $1 || '%%' ORDER BY id`, table)
	rows, err := s.db.QueryContext(ctx, q, likeEscaper.Replace(prefix))
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
