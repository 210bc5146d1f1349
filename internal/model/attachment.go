package model

import "time"

// Attachment is the many-to-many edge between a file and an entity.
// The triple (FileID, EntityType, EntityID) is a set: linking the same pair
// twice returns the existing edge. An attachment owns neither endpoint;
// unlinking never deletes the file or the entity.
type Attachment struct {
	ID          string     `json:"id"`
	FileID      string     `json:"file_id"`
	EntityType  EntityType `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	EntityTitle string     `json:"entity_title"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AttachmentWithFile is the forward-traversal projection: an edge resolved
// to include the metadata of the file it points at.
type AttachmentWithFile struct {
	Attachment
	File File `json:"file"`
}
