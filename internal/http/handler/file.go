package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"attachapi/internal/ingest"
	"attachapi/internal/model"
	"attachapi/internal/repository"
	"attachapi/internal/service"
)

// AgentHeader names the acting agent for audit fields. Absent means
// anonymous; identity is always explicit, never ambient.
const AgentHeader = "X-Agent"

const defaultExpireMinutes = 60

func callerFrom(c *fiber.Ctx) model.Caller {
	return model.Caller{Agent: c.Get(AgentHeader)}
}

// preparePayload reads the multipart form and runs the upload pipeline:
// classification, digest, encoding branch. Returns a fiber error response
// already written when the form is unusable.
func preparePayload(c *fiber.Ctx, maxBytes int64) (*ingest.UploadPayload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
	}

	path := c.FormValue("path")
	if path == "" {
		path = "/" + fh.Filename
	}
	minutes := defaultExpireMinutes
	if v := c.FormValue("expire_minutes"); v != "" {
		minutes, err = strconv.Atoi(v)
		if err != nil {
			return nil, writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRE", "invalid expire_minutes")
		}
	}

	p, err := ingest.Prepare(data, fh.Filename, path, ingest.Options{
		ExpireMinutes: minutes,
		Description:   c.FormValue("description"),
		Tags:          c.FormValue("tags"),
		ProjectID:     c.FormValue("project_id"),
		MaxBytes:      maxBytes,
	}, callerFrom(c))
	if err != nil {
		return nil, writeServiceError(c, err)
	}
	return p, nil
}

// UploadFile handles POST /files (multipart/form-data, field name: file).
func UploadFile(svc service.FileService, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := preparePayload(c, maxBytes)
		if p == nil {
			return err
		}
		f, err := svc.Upload(c.UserContext(), callerFrom(c), p)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// ListFiles handles GET /files with limit & offset.
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetFile handles GET /files/:ref. The ref may be a full ID or an 8-char
// prefix; a unique path lookup is available via the ?path= query instead.
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.Get(c.UserContext(), c.Params("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// GetFileByPath handles GET /files?path=... style lookups mounted on
// GET /files/by-path.
func GetFileByPath(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Query("path")
		if path == "" {
			return writeError(c, fiber.StatusBadRequest, "PATH_REQUIRED", "path query parameter is required")
		}
		f, err := svc.GetByPath(c.UserContext(), path)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DownloadFile handles GET /files/:ref/content, streaming the decoded bytes.
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, data, err := svc.Download(c.UserContext(), c.Params("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, f.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+f.Filename+`"`)
		return c.Send(data)
	}
}

// FileURL handles GET /files/:ref/url, returning a presigned download URL.
func FileURL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.DownloadURL(c.UserContext(), c.Params("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

type updateMetaRequest struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ProjectID   string   `json:"project_id"`
}

// UpdateFileMeta handles PATCH /files/:ref.
func UpdateFileMeta(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateMetaRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		f, err := svc.UpdateMeta(c.UserContext(), callerFrom(c), c.Params("ref"), repository.MetaUpdate{
			Description: req.Description,
			Tags:        req.Tags,
			ProjectID:   req.ProjectID,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

type refreshRequest struct {
	ExpireMinutes int `json:"expire_minutes"`
}

// RefreshFileTTL handles POST /files/:ref/refresh. The new deadline counts
// from now, not from the previous expiry.
func RefreshFileTTL(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := refreshRequest{ExpireMinutes: defaultExpireMinutes}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		f, err := svc.RefreshTTL(c.UserContext(), callerFrom(c), c.Params("ref"), req.ExpireMinutes)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(f)
	}
}

// DeleteFile handles DELETE /files/:ref. Attachment edges cascade with the
// file.
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("ref")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PurgeExpired handles DELETE /maintenance/expired. Expiry is lazy
// everywhere else; this is the only place expired rows are reaped.
func PurgeExpired(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.PurgeExpired(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"purged": n})
	}
}
