package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/db"
)

// jsonSuccess returns a 200 response with fields merged into the standard
// success envelope. Set another status on c before calling for 201 and friends.
func jsonSuccess(c fiber.Ctx, fields fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(body)
}

// jsonError renders err as the standard error envelope with the status of its
// kind. Internal errors never expose their message.
func jsonError(c fiber.Ctx, err error) error {
	status, code, message := describeError(err)
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

func describeError(err error) (status int, code, message string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.Internal {
			return appErr.Kind.Status(), appErr.Kind.Code(), "Internal server error"
		}
		return appErr.Kind.Status(), appErr.Kind.Code(), appErr.Message
	}

	// Router-level errors (unknown route, method not allowed, body too large)
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, codeForStatus(fiberErr.Code), fiberErr.Message
	}

	return http.StatusInternalServerError, apperr.Internal.Code(), "Internal server error"
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return apperr.Unauthenticated.Code()
	case http.StatusForbidden:
		return apperr.Forbidden.Code()
	case http.StatusNotFound:
		return apperr.NotFound.Code()
	case http.StatusTooManyRequests:
		return apperr.RateLimited.Code()
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return apperr.UpstreamFailure.Code()
	}
	if status >= 400 && status < 500 {
		return apperr.Validation.Code()
	}
	return apperr.Internal.Code()
}

// ErrorHandler is the fiber error handler. It logs unexpected failures with
// the request context and renders every error through jsonError.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", requestid.FromContext(c)),
			zap.Error(err),
		}

		var fiberErr *fiber.Error
		switch kind := apperr.KindOf(err); {
		case errors.As(err, &fiberErr):
		case kind == apperr.Internal:
			logger.Error("request failed", fields...)
		case kind == apperr.UpstreamFailure:
			logger.Warn("upstream failure", append(fields, zap.Bool("upstream", true))...)
		}
		return jsonError(c, err)
	}
}

// storeError translates persistence sentinels into classified errors.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, db.ErrListingNotFound):
		return apperr.Wrap(err, apperr.NotFound, "Listing not found")
	case errors.Is(err, db.ErrBuilderNotFound):
		return apperr.Wrap(err, apperr.NotFound, "Builder not found")
	case errors.Is(err, db.ErrEditRequestNotFound):
		return apperr.Wrap(err, apperr.NotFound, "Edit request not found")
	case errors.Is(err, db.ErrInvalidState):
		return apperr.Wrap(err, apperr.InvalidState, "Item is not pending review")
	case errors.Is(err, db.ErrCategoryNotFound):
		return apperr.Wrap(err, apperr.Validation, "Unknown category: "+categorySlug(err))
	case errors.Is(err, db.ErrSlugExhausted), errors.Is(err, db.ErrDuplicateSlug):
		return apperr.Wrap(err, apperr.Validation, "Could not generate a unique slug for this name")
	}
	return apperr.Wrap(err, apperr.Internal, "internal error")
}

// categorySlug extracts the slug from a wrapped "category not found: <slug>".
func categorySlug(err error) string {
	if _, slug, ok := strings.Cut(err.Error(), db.ErrCategoryNotFound.Error()+": "); ok {
		return slug
	}
	return err.Error()
}
