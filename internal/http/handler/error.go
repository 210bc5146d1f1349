package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"attachapi/internal/expiry"
	"attachapi/internal/http/middleware"
	"attachapi/internal/ingest"
	"attachapi/internal/resolver"
	"attachapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Candidates is set only on ambiguous short-reference errors, so the
	// caller can retry with a longer prefix or a full ID.
	Candidates []string `json:"candidates,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking
// internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a service-layer error to its HTTP rendition. The
// not-found / gone / ambiguous distinction survives to the wire.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ambiguous *resolver.AmbiguousError
	var orphaned *service.OrphanedFileError

	switch {
	case errors.As(err, &ambiguous):
		res := errorPayload{
			RequestID: requestIDFromCtx(c),
			Error: errorEnvelope{
				Code:       "AMBIGUOUS_REFERENCE",
				Message:    fmt.Sprintf("%q matches %d ids", ambiguous.Prefix, len(ambiguous.Candidates)),
				Candidates: ambiguous.Candidates,
			},
		}
		return c.Status(fiber.StatusConflict).JSON(res)
	case errors.As(err, &orphaned):
		// The upload survived; the caller must know which file to link or
		// discard by hand.
		return writeError(c, fiber.StatusBadGateway, "ORPHANED_FILE",
			fmt.Sprintf("file %s uploaded but not linked", orphaned.FileID))
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrGone):
		return writeError(c, fiber.StatusGone, "GONE", "file expired")
	case errors.Is(err, service.ErrPathTaken):
		return writeError(c, fiber.StatusConflict, "PATH_TAKEN", "path already in use")
	case errors.Is(err, expiry.ErrOutOfRange):
		return writeError(c, fiber.StatusUnprocessableEntity, "TTL_OUT_OF_RANGE",
			fmt.Sprintf("expire_minutes must be within [%d, %d]", expiry.MinMinutes, expiry.MaxMinutes))
	case errors.Is(err, ingest.ErrTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "TOO_LARGE", "file exceeds the upload size cap")
	case errors.Is(err, service.ErrContentInvalid):
		return writeError(c, fiber.StatusUnprocessableEntity, "CONTENT_INVALID", "content is not decodable as declared")
	case errors.Is(err, service.ErrSizeMismatch):
		return writeError(c, fiber.StatusUnprocessableEntity, "SIZE_MISMATCH", "declared size does not match content")
	case errors.Is(err, service.ErrChecksumMismatch):
		return writeError(c, fiber.StatusUnprocessableEntity, "CHECKSUM_MISMATCH", "declared checksum does not match content")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
