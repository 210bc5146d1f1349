// Package ingest is the local half of the upload pipeline: it classifies,
// encodes, checksums and size-bounds file content into a canonical payload
// before any network call happens. Everything here is pure computation over
// bytes, which keeps it fully unit-testable offline.
package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"attachapi/internal/expiry"
	"attachapi/internal/model"
)

var (
	// ErrLocalRead wraps failures to stat or read the local source file.
	ErrLocalRead = errors.New("ingest: local file unreadable")
	// ErrTooLarge reports content over the configured size cap.
	ErrTooLarge = errors.New("ingest: content exceeds size limit")
)

// Options carries the caller-supplied metadata recognized on upload.
type Options struct {
	// ExpireMinutes is the relative TTL, validated against expiry bounds.
	ExpireMinutes int
	// Description is free text, stored verbatim.
	Description string
	// Tags is a comma-joined list; entries are trimmed, empties dropped,
	// order preserved, duplicates kept.
	Tags string
	// ProjectID optionally scopes the file to an owning project.
	ProjectID string
	// MaxBytes caps the decoded content size. Zero means no cap.
	MaxBytes int64
}

// UploadPayload is the canonical upload shape handed to the file service.
// Content holds either raw UTF-8 text (Encoded=false) or a base64 envelope
// (Encoded=true); Size and Checksum always describe the decoded bytes.
type UploadPayload struct {
	Path          string   `json:"path"`
	Filename      string   `json:"filename"`
	Content       string   `json:"content"`
	Encoded       bool     `json:"encoded"`
	ContentType   string   `json:"content_type"`
	Size          int64    `json:"size"`
	Checksum      string   `json:"checksum"`
	ExpireMinutes int      `json:"expire_minutes"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	ProjectID     string   `json:"project_id,omitempty"`
	CreatedBy     string   `json:"created_by"`
}

// Decode recovers the original bytes from the payload's content field.
func (p *UploadPayload) Decode() ([]byte, error) {
	if !p.Encoded {
		return []byte(p.Content), nil
	}
	return base64.StdEncoding.DecodeString(p.Content)
}

// Prepare assembles the canonical upload payload from raw local bytes.
// The TTL is validated up front: no partial payload is ever produced for an
// out-of-range expiry.
func Prepare(data []byte, filename, remotePath string, opts Options, caller model.Caller) (*UploadPayload, error) {
	if err := expiry.Check(opts.ExpireMinutes); err != nil {
		return nil, err
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes over cap %d", ErrTooLarge, len(data), opts.MaxBytes)
	}

	checksum, size := Digest(data)

	var content string
	encoded := true
	// Classification is by name only, but a "text" file that is not valid
	// UTF-8 still travels base64-encoded: the text branch exists to keep
	// payloads readable, never to risk corrupting bytes.
	if Classify(filename) == KindText && utf8.Valid(data) {
		content = string(data)
		encoded = false
	} else {
		content = base64.StdEncoding.EncodeToString(data)
	}

	return &UploadPayload{
		Path:          remotePath,
		Filename:      filename,
		Content:       content,
		Encoded:       encoded,
		ContentType:   ContentTypeFor(filename),
		Size:          size,
		Checksum:      checksum,
		ExpireMinutes: opts.ExpireMinutes,
		Description:   opts.Description,
		Tags:          SplitTags(opts.Tags),
		ProjectID:     opts.ProjectID,
		CreatedBy:     caller.AgentOrAnonymous(),
	}, nil
}

// PrepareLocal reads a regular file from the local filesystem and prepares
// it for upload. Read and stat failures surface as ErrLocalRead before any
// payload is assembled. It is the entry point for presentation layers that
// sit next to the source file (CLI tools, batch importers); the HTTP handlers
// receive bytes over multipart and call Prepare directly.
func PrepareLocal(localPath, remotePath string, opts Options, caller model.Caller) (*UploadPayload, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalRead, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrLocalRead, localPath)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalRead, err)
	}
	return Prepare(data, info.Name(), remotePath, opts, caller)
}

// SplitTags splits a comma-joined tag option: entries are trimmed, empty
// entries dropped, order preserved, duplicates not collapsed.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
