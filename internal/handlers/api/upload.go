package api

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/middleware"
	"marketplace/internal/storage"
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
}

// UploadHandler accepts listing images from token holders.
type UploadHandler struct {
	uploader Uploader
	authz    SubmitAuthorizer
	logger   *zap.Logger
	now      func() time.Time
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader Uploader, authz SubmitAuthorizer, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, authz: authz, logger: logger, now: time.Now}
}

// Upload handles POST /upload (multipart: file, type, walletAddress).
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	if _, err := h.authz.CanSubmit(c.Context(), middleware.IdentityFrom(c), c.FormValue("walletAddress")); err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validationf("No file provided")
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !storage.IsAllowedImageType(contentType) {
		return apperr.Validationf("Invalid file type. Allowed: JPEG, PNG, GIF, WebP, SVG")
	}
	if fh.Size > storage.MaxFileSize {
		return apperr.Validationf("File too large. Maximum size is 5MB")
	}

	f, err := fh.Open()
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "failed to open upload")
	}
	defer f.Close()

	key := storage.ObjectKey(storage.PrefixFor(c.FormValue("type")), fh.Filename, h.now())
	url, err := h.uploader.Upload(c.Context(), key, contentType, f, fh.Size)
	if err != nil {
		return apperr.Wrap(err, apperr.UpstreamFailure, "Failed to upload file")
	}

	return jsonSuccess(c, fiber.Map{
		"url":      url,
		"filename": key,
	})
}
