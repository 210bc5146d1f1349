// Package tracker is the read-only boundary to the work tracker that owns
// the six entity kinds. This service never creates or mutates entities; it
// only verifies existence, reads titles for display, and searches ID
// namespaces for short-ID resolution.
package tracker

import (
	"context"
	"fmt"

	"attachapi/internal/model"
)

// tableFor is the single source of truth for the entity-type to storage
// table mapping. Every attachment operation routes through it; a kind
// missing here is a programming error, not a runtime "undefined" table.
var tableFor = map[model.EntityType]string{
	model.EntityBug:           "bugs",
	model.EntityFeature:       "features",
	model.EntityTestCase:      "test_cases",
	model.EntitySupportTicket: "support_tickets",
	model.EntityMilestone:     "milestones",
	model.EntityRoadmap:       "roadmaps",
}

// TableFor resolves the storage table for an entity type.
func TableFor(t model.EntityType) (string, error) {
	table, ok := tableFor[t]
	if !ok {
		return "", fmt.Errorf("tracker: no table mapping for entity type %q", t)
	}
	return table, nil
}

// Store is the consumed entity-store interface.
type Store interface {
	// TitleOf returns the entity's display title (sql.ErrNoRows when the
	// entity does not exist).
	TitleOf(ctx context.Context, ref model.EntityRef) (string, error)

	// Exists reports whether the entity is present.
	Exists(ctx context.Context, ref model.EntityRef) (bool, error)

	// IDsWithPrefix lists entity IDs of one type starting with prefix,
	// for short-ID resolution.
	IDsWithPrefix(ctx context.Context, t model.EntityType, prefix string) ([]string, error)
}
