package model

import "fmt"

// EntityType identifies one of the six externally-owned record kinds that a
// file can be attached to. The set is closed: operations take a (type, id)
// pair explicitly instead of dispatching over unrelated record shapes.
type EntityType string

const (
	EntityBug           EntityType = "bug"
	EntityFeature       EntityType = "feature"
	EntityTestCase      EntityType = "test_case"
	EntitySupportTicket EntityType = "support_ticket"
	EntityMilestone     EntityType = "milestone"
	EntityRoadmap       EntityType = "roadmap"
)

// EntityTypes returns all valid entity types in a stable order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityBug,
		EntityFeature,
		EntityTestCase,
		EntitySupportTicket,
		EntityMilestone,
		EntityRoadmap,
	}
}

// ParseEntityType validates a raw string against the closed set.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityBug, EntityFeature, EntityTestCase, EntitySupportTicket, EntityMilestone, EntityRoadmap:
		return EntityType(s), nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// EntityRef names a single externally-owned record.
type EntityRef struct {
	Type EntityType `json:"entity_type"`
	ID   string     `json:"entity_id"`
}

func (r EntityRef) String() string {
	return string(r.Type) + "/" + r.ID
}

// EntityLink is one row of the reverse traversal: an entity a file is
// attached to, with the title cached at link time for display.
type EntityLink struct {
	Type  EntityType `json:"entity_type"`
	ID    string     `json:"entity_id"`
	Title string     `json:"title"`
}
