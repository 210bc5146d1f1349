package handler

import (
	"github.com/gofiber/fiber/v2"

	"attachapi/internal/model"
	"attachapi/internal/service"
)

func entityRefFrom(c *fiber.Ctx) (model.EntityRef, error) {
	t, err := model.ParseEntityType(c.Params("type"))
	if err != nil {
		return model.EntityRef{}, writeError(c, fiber.StatusBadRequest, "INVALID_ENTITY_TYPE", "unknown entity type")
	}
	return model.EntityRef{Type: t, ID: c.Params("id")}, nil
}

// AttachFile handles POST /entities/:type/:id/attachments: upload a new file
// and link it to the entity in one request.
func AttachFile(svc service.AttachmentService, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := entityRefFrom(c)
		if err != nil {
			return err
		}
		p, err := preparePayload(c, maxBytes)
		if p == nil {
			return err
		}
		att, err := svc.Attach(c.UserContext(), callerFrom(c), ref, p, c.FormValue("description"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(att)
	}
}

type linkRequest struct {
	// File is a full ID, an 8-char ID prefix, or a remote path. Anything
	// shaped like an ID is resolved as one.
	File        string `json:"file"`
	Description string `json:"description"`
}

// LinkFile handles PUT /entities/:type/:id/attachments: link an existing
// file. 201 for a new edge, 200 for the already-existing one.
func LinkFile(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := entityRefFrom(c)
		if err != nil {
			return err
		}
		var req linkRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.File == "" {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file reference is required")
		}
		att, created, err := svc.Link(c.UserContext(), callerFrom(c), ref, req.File, req.Description)
		if err != nil {
			return writeServiceError(c, err)
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(att)
	}
}

// ListEntityAttachments handles GET /entities/:type/:id/attachments.
func ListEntityAttachments(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := entityRefFrom(c)
		if err != nil {
			return err
		}
		atts, err := svc.ListAttachments(c.UserContext(), ref)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": atts, "total": len(atts)})
	}
}

// UnlinkAttachment handles DELETE /entities/:type/:id/attachments/:ref. Only
// the edge goes; the file stays.
func UnlinkAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := entityRefFrom(c)
		if err != nil {
			return err
		}
		if err := svc.Unlink(c.UserContext(), ref, c.Params("ref")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UnlinkAllAttachments handles DELETE /entities/:type/:id/attachments, the
// cascade hook for entity deletion in the tracker.
func UnlinkAllAttachments(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := entityRefFrom(c)
		if err != nil {
			return err
		}
		n, err := svc.UnlinkAll(c.UserContext(), ref)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"removed": n})
	}
}

// FileEntities handles GET /files/:ref/attachments, the reverse traversal.
func FileEntities(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		links, err := svc.FileAttachments(c.UserContext(), c.Params("ref"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": links, "total": len(links)})
	}
}
