package model

import "time"

// File is the metadata record for a stored, expiring blob. The decoded
// content itself lives in object storage under the file's ID; everything
// here is persistence- and transport-neutral.
//
// Size and Checksum always describe the decoded (original) bytes, never a
// base64 envelope. Content is immutable after upload: updates touch
// metadata and expiry only.
type File struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Checksum    string    `json:"checksum"`
	Encoded     bool      `json:"encoded"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ExpireAt    time.Time `json:"expire_at"`
}

// ExpiredAt reports whether the file is past its expiry at the given instant.
func (f *File) ExpiredAt(now time.Time) bool {
	return now.After(f.ExpireAt)
}
