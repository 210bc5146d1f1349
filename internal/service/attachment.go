package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"attachapi/internal/ingest"
	"attachapi/internal/model"
	"attachapi/internal/repository"
	"attachapi/internal/resolver"
	"attachapi/internal/tracker"
)

// OrphanedFileError reports attach's partial-failure window: the upload
// succeeded but the link did not, so the file now exists unattached. The
// error names the file so a human or agent can finish the link by hand or
// discard the file; nothing is silently retried or cleaned up.
type OrphanedFileError struct {
	FileID string
	Err    error
}

func (e *OrphanedFileError) Error() string {
	return fmt.Sprintf("file %s uploaded but not linked: %v", e.FileID, e.Err)
}

func (e *OrphanedFileError) Unwrap() error { return e.Err }

// AttachmentService owns the many-to-many edges between files and the six
// entity kinds, in both traversal directions. Every reference parameter
// accepts full or abbreviated form.
type AttachmentService interface {
	// Attach uploads a prepared payload and links the new file to the
	// entity as one logical unit. If the link step fails after the upload
	// succeeded, the returned error is an *OrphanedFileError naming the
	// uploaded file.
	Attach(ctx context.Context, caller model.Caller, ref model.EntityRef, p *ingest.UploadPayload, description string) (*model.Attachment, error)

	// Link creates the edge between an existing file and an entity, or
	// returns the existing edge for a duplicate pair. fileRef is an ID
	// (full or short) when it looks like one, otherwise a remote path;
	// exactly one resolution path is attempted. created reports whether a
	// new edge was made.
	Link(ctx context.Context, caller model.Caller, ref model.EntityRef, fileRef, description string) (att *model.Attachment, created bool, err error)

	// ListAttachments returns the entity's edges with file metadata,
	// ordered by creation time ascending. Each call is a fresh snapshot.
	ListAttachments(ctx context.Context, ref model.EntityRef) ([]model.AttachmentWithFile, error)

	// Unlink removes exactly one edge. The edge must belong to the given
	// entity; the file itself is never touched.
	Unlink(ctx context.Context, ref model.EntityRef, attachmentRef string) error

	// UnlinkAll removes every edge of an entity. This is the cascade hook
	// invoked when the tracker deletes an entity.
	UnlinkAll(ctx context.Context, ref model.EntityRef) (int64, error)

	// FileAttachments is the reverse traversal: every entity the file is
	// attached to, with cached titles, ordered by link creation time.
	FileAttachments(ctx context.Context, fileRef string) ([]model.EntityLink, error)
}

type attachmentService struct {
	files    FileService
	edges    repository.AttachmentRepository
	entities tracker.Store
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(files FileService, edges repository.AttachmentRepository, entities tracker.Store) AttachmentService {
	return &attachmentService{files: files, edges: edges, entities: entities}
}

// resolveEntity expands the entity ID and verifies the record exists in the
// tracker.
func (s *attachmentService) resolveEntity(ctx context.Context, ref model.EntityRef) (model.EntityRef, error) {
	src := resolver.SourceFunc(func(ctx context.Context, prefix string) ([]string, error) {
		return s.entities.IDsWithPrefix(ctx, ref.Type, prefix)
	})
	id, err := resolver.Resolve(ctx, ref.ID, src)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return model.EntityRef{}, fmt.Errorf("%w: %s %q", ErrNotFound, ref.Type, ref.ID)
		}
		return model.EntityRef{}, err
	}
	resolved := model.EntityRef{Type: ref.Type, ID: id}
	exists, err := s.entities.Exists(ctx, resolved)
	if err != nil {
		return model.EntityRef{}, err
	}
	if !exists {
		return model.EntityRef{}, fmt.Errorf("%w: %s %s", ErrNotFound, ref.Type, id)
	}
	return resolved, nil
}

// resolveFile picks exactly one resolution path for a file reference:
// anything shaped like an ID is treated as one, everything else as a path.
func (s *attachmentService) resolveFile(ctx context.Context, fileRef string) (*model.File, error) {
	if resolver.IsFullID(fileRef) || resolver.IsShortID(fileRef) {
		return s.files.Get(ctx, fileRef)
	}
	return s.files.GetByPath(ctx, fileRef)
}

func (s *attachmentService) Attach(ctx context.Context, caller model.Caller, ref model.EntityRef, p *ingest.UploadPayload, description string) (*model.Attachment, error) {
	// Fail before the upload if the entity is bogus; the two-step below is
	// not transactional, so everything cheap to verify goes first.
	resolved, err := s.resolveEntity(ctx, ref)
	if err != nil {
		return nil, err
	}
	f, err := s.files.Upload(ctx, caller, p)
	if err != nil {
		return nil, err
	}
	att, _, err := s.Link(ctx, caller, resolved, f.ID, description)
	if err != nil {
		return nil, &OrphanedFileError{FileID: f.ID, Err: err}
	}
	return att, nil
}

func (s *attachmentService) Link(ctx context.Context, caller model.Caller, ref model.EntityRef, fileRef, description string) (*model.Attachment, bool, error) {
	resolved, err := s.resolveEntity(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	title, err := s.entities.TitleOf(ctx, resolved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("%w: %s %s", ErrNotFound, resolved.Type, resolved.ID)
		}
		return nil, false, err
	}
	f, err := s.resolveFile(ctx, fileRef)
	if err != nil {
		return nil, false, err
	}

	att, created, err := s.edges.Upsert(ctx, &model.Attachment{
		ID:          uuid.NewString(),
		FileID:      f.ID,
		EntityType:  resolved.Type,
		EntityID:    resolved.ID,
		EntityTitle: title,
		Description: description,
		CreatedBy:   caller.AgentOrAnonymous(),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("link file %s to %s: %w", f.ID, resolved, err)
	}
	return att, created, nil
}

func (s *attachmentService) ListAttachments(ctx context.Context, ref model.EntityRef) ([]model.AttachmentWithFile, error) {
	resolved, err := s.resolveEntity(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.edges.ListByEntity(ctx, resolved)
}

func (s *attachmentService) Unlink(ctx context.Context, ref model.EntityRef, attachmentRef string) error {
	resolved, err := s.resolveEntity(ctx, ref)
	if err != nil {
		return err
	}
	id, err := resolver.Resolve(ctx, attachmentRef, resolver.SourceFunc(s.edges.IDsWithPrefix))
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return fmt.Errorf("%w: attachment %q", ErrNotFound, attachmentRef)
		}
		return err
	}
	// The scoped delete refuses edges of other entities; a concurrent
	// unlink of the same edge surfaces here as not found, never as
	// corruption.
	if err := s.edges.Delete(ctx, id, resolved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: attachment %s on %s", ErrNotFound, id, resolved)
		}
		return err
	}
	return nil
}

func (s *attachmentService) UnlinkAll(ctx context.Context, ref model.EntityRef) (int64, error) {
	resolved, err := s.resolveEntity(ctx, ref)
	if err != nil {
		return 0, err
	}
	return s.edges.DeleteByEntity(ctx, resolved)
}

func (s *attachmentService) FileAttachments(ctx context.Context, fileRef string) ([]model.EntityLink, error) {
	f, err := s.resolveFile(ctx, fileRef)
	if err != nil {
		return nil, err
	}
	atts, err := s.edges.ListByFile(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	links := make([]model.EntityLink, 0, len(atts))
	for _, a := range atts {
		links = append(links, model.EntityLink{
			Type:  a.EntityType,
			ID:    a.EntityID,
			Title: a.EntityTitle,
		})
	}
	return links, nil
}
