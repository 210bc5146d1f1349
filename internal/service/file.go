package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"attachapi/internal/expiry"
	"attachapi/internal/ingest"
	"attachapi/internal/model"
	"attachapi/internal/repository"
	"attachapi/internal/resolver"
	"attachapi/internal/storage"
)

var (
	// ErrNotFound reports a reference that resolves to nothing: the record
	// never existed (or was deleted).
	ErrNotFound = errors.New("not found")
	// ErrGone reports a file that existed but is past its expiry. Kept
	// distinct from ErrNotFound so callers can tell "never existed" from
	// "existed, now expired".
	ErrGone = errors.New("file expired")
	// ErrPathTaken reports an upload to a remote path already in use.
	ErrPathTaken = errors.New("path already in use")
	// ErrContentInvalid reports a payload whose content field cannot be
	// decoded as declared.
	ErrContentInvalid = errors.New("content not decodable")
	// ErrSizeMismatch reports a payload whose declared size does not match
	// its decoded content.
	ErrSizeMismatch = errors.New("size does not match decoded content")
	// ErrChecksumMismatch reports a payload or stored blob whose bytes do
	// not hash to the declared checksum.
	ErrChecksumMismatch = errors.New("checksum does not match content")
)

// FileListResult is the service-level DTO for paginated file metadata.
type FileListResult struct {
	Items []model.File `json:"data"`
	Total int          `json:"total"`
}

// FileService owns the lifecycle of stored files. Content is written once
// on upload and never mutated; every read path reports expired files as
// gone rather than missing.
type FileService interface {
	// Upload verifies the payload's integrity invariants (declared size and
	// checksum against the decoded bytes), stores the content blob, then
	// the metadata row. The blob is rolled back if the row insert fails.
	Upload(ctx context.Context, caller model.Caller, p *ingest.UploadPayload) (*model.File, error)

	// Get returns file metadata by full or short ID.
	Get(ctx context.Context, ref string) (*model.File, error)

	// GetByPath returns file metadata by its unique remote path.
	GetByPath(ctx context.Context, path string) (*model.File, error)

	// Download returns metadata plus the decoded content bytes.
	Download(ctx context.Context, ref string) (*model.File, []byte, error)

	// DownloadURL returns a time-limited URL for the content.
	DownloadURL(ctx context.Context, ref string) (string, error)

	// List returns a metadata page plus the total count.
	List(ctx context.Context, limit, offset int) (*FileListResult, error)

	// UpdateMeta replaces description, tags and project reference.
	UpdateMeta(ctx context.Context, caller model.Caller, ref string, m repository.MetaUpdate) (*model.File, error)

	// RefreshTTL recomputes the expiry from the current time; the clock
	// restarts rather than extending the original deadline.
	RefreshTTL(ctx context.Context, caller model.Caller, ref string, minutes int) (*model.File, error)

	// Delete removes the file; attachment edges cascade.
	Delete(ctx context.Context, ref string) error

	// PurgeExpired removes every expired file and its blob, returning the
	// number purged. Expiry is otherwise lazy: nothing runs in the
	// background.
	PurgeExpired(ctx context.Context) (int, error)
}

type fileService struct {
	store         storage.BlobStore
	repo          repository.FileRepository
	presignExpiry time.Duration
}

// NewFileService constructs a FileService.
func NewFileService(store storage.BlobStore, repo repository.FileRepository, presignExpiry time.Duration) FileService {
	return &fileService{store: store, repo: repo, presignExpiry: presignExpiry}
}

// resolve expands a full/short file ID to the full ID.
func (s *fileService) resolve(ctx context.Context, ref string) (string, error) {
	id, err := resolver.Resolve(ctx, ref, resolver.SourceFunc(s.repo.IDsWithPrefix))
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return "", fmt.Errorf("%w: file %q", ErrNotFound, ref)
		}
		return "", err
	}
	return id, nil
}

// load fetches a row by full ID and applies the lazy expiry check.
func (s *fileService) load(ctx context.Context, id string) (*model.File, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return nil, err
	}
	if f.ExpiredAt(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: file %s expired at %s", ErrGone, f.ID, f.ExpireAt.Format(time.RFC3339))
	}
	return f, nil
}

func (s *fileService) Upload(ctx context.Context, caller model.Caller, p *ingest.UploadPayload) (*model.File, error) {
	if err := expiry.Check(p.ExpireMinutes); err != nil {
		return nil, err
	}
	decoded, err := p.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentInvalid, err)
	}
	checksum, size := ingest.Digest(decoded)
	if size != p.Size {
		return nil, fmt.Errorf("%w: declared %d, decoded %d", ErrSizeMismatch, p.Size, size)
	}
	if checksum != p.Checksum {
		return nil, fmt.Errorf("%w: declared %s, computed %s", ErrChecksumMismatch, p.Checksum, checksum)
	}

	id := uuid.NewString()
	key := storage.ContentKey(id)
	if err := s.store.Put(ctx, key, decoded, storage.PutOptions{
		ContentType: p.ContentType,
		Checksum:    p.Checksum,
	}); err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	now := time.Now().UTC()
	f := &model.File{
		ID:          id,
		Path:        p.Path,
		Filename:    p.Filename,
		Size:        p.Size,
		ContentType: p.ContentType,
		Checksum:    p.Checksum,
		Encoded:     p.Encoded,
		Description: p.Description,
		Tags:        p.Tags,
		ProjectID:   p.ProjectID,
		CreatedBy:   caller.AgentOrAnonymous(),
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpireAt:    expiry.At(now, p.ExpireMinutes),
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		// Roll back the blob so a failed upload leaves nothing behind.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrPathTaken, p.Path)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *fileService) Get(ctx context.Context, ref string) (*model.File, error) {
	id, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *fileService) GetByPath(ctx context.Context, path string) (*model.File, error) {
	f, err := s.repo.FindByPath(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: path %q", ErrNotFound, path)
		}
		return nil, err
	}
	if f.ExpiredAt(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: file %s expired at %s", ErrGone, f.ID, f.ExpireAt.Format(time.RFC3339))
	}
	return f, nil
}

func (s *fileService) Download(ctx context.Context, ref string) (*model.File, []byte, error) {
	f, err := s.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.store.Get(ctx, storage.ContentKey(f.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("fetch content: %w", err)
	}
	// Round-trip integrity: the stored bytes must hash back to the
	// checksum recorded at upload.
	if sum, _ := ingest.Digest(data); sum != f.Checksum {
		return nil, nil, fmt.Errorf("%w: stored content for file %s", ErrChecksumMismatch, f.ID)
	}
	return f, data, nil
}

func (s *fileService) DownloadURL(ctx context.Context, ref string) (string, error) {
	f, err := s.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, storage.ContentKey(f.ID), s.presignExpiry)
}

func (s *fileService) List(ctx context.Context, limit, offset int) (*FileListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) UpdateMeta(ctx context.Context, caller model.Caller, ref string, m repository.MetaUpdate) (*model.File, error) {
	id, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateMeta(ctx, id, m, time.Now().UTC())
}

func (s *fileService) RefreshTTL(ctx context.Context, caller model.Caller, ref string, minutes int) (*model.File, error) {
	if err := expiry.Check(minutes); err != nil {
		return nil, err
	}
	id, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.repo.UpdateExpiry(ctx, id, expiry.At(now, minutes), now)
}

func (s *fileService) Delete(ctx context.Context, ref string) error {
	id, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	// Expired files can still be deleted explicitly, so no gone check.
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return err
	}
	// Blob first; a failure here keeps the row so the file is not lost
	// track of. Edges cascade with the row.
	if err := s.store.Delete(ctx, storage.ContentKey(f.ID)); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return s.repo.Delete(ctx, f.ID)
}

func (s *fileService) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := s.store.Delete(ctx, storage.ContentKey(id)); err != nil {
			return i, fmt.Errorf("purge content for %s: %w", id, err)
		}
	}
	return len(ids), nil
}
