package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/metrics"
	"marketplace/internal/models"
	"marketplace/internal/validation"
)

// ModerationHandler handles listing and edit-request review via JSON API.
// Every route is guarded by the admin session.
type ModerationHandler struct {
	store  ModerationStore
	logger *zap.Logger
}

// NewModerationHandler creates a new API moderation handler.
func NewModerationHandler(store ModerationStore, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{store: store, logger: logger}
}

// ListPending returns listings awaiting review, oldest first.
func (h *ModerationHandler) ListPending(c fiber.Ctx) error {
	listings, err := h.store.ListPendingListings(c.Context())
	if err != nil {
		return storeError(err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return jsonSuccess(c, fiber.Map{"listings": listings})
}

// Approve approves a pending listing with an optional visibility and status.
func (h *ModerationHandler) Approve(c fiber.Ctx) error {
	id, err := parseID(c, "listing")
	if err != nil {
		return err
	}

	var body struct {
		Visibility string  `json:"visibility"`
		Status     *string `json:"status"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	visibility := strings.TrimSpace(body.Visibility)
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityFeatured {
		return apperr.Validationf("visibility must be one of: public featured")
	}
	if body.Status != nil && !models.IsValidStatus(*body.Status) {
		return apperr.Validationf("status must be one of: live beta concept")
	}

	listing, err := h.store.ApproveListing(c.Context(), id, visibility, body.Status)
	if err != nil {
		return storeError(err)
	}

	metrics.RecordModerationAction("approve_listing")
	h.logger.Info("listing approved",
		zap.String("listing_id", listing.ID.String()),
		zap.String("visibility", listing.Visibility),
	)

	return jsonSuccess(c, fiber.Map{
		"message": "Listing approved",
		"listing": fiber.Map{
			"id":         listing.ID,
			"name":       listing.Name,
			"slug":       listing.Slug,
			"visibility": listing.Visibility,
		},
	})
}

// Reject rejects a pending listing with an optional reason.
func (h *ModerationHandler) Reject(c fiber.Ctx) error {
	id, err := parseID(c, "listing")
	if err != nil {
		return err
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	listing, err := h.store.RejectListing(c.Context(), id, optional(body.Reason))
	if err != nil {
		return storeError(err)
	}

	metrics.RecordModerationAction("reject_listing")
	h.logger.Info("listing rejected", zap.String("listing_id", listing.ID.String()))

	return jsonSuccess(c, fiber.Map{
		"message": "Listing rejected",
		"listing": fiber.Map{
			"id":   listing.ID,
			"name": listing.Name,
		},
	})
}

// Update overwrites the supplied fields of a listing in any review state.
func (h *ModerationHandler) Update(c fiber.Ctx) error {
	id, err := parseID(c, "listing")
	if err != nil {
		return err
	}

	var upd models.ListingUpdate
	if err := parseBody(c, &upd); err != nil {
		return err
	}
	if err := normalizeUpdate(&upd); err != nil {
		return err
	}

	listing, err := h.store.UpdateListing(c.Context(), id, upd)
	if err != nil {
		return storeError(err)
	}

	metrics.RecordModerationAction("update_listing")
	h.logger.Info("listing updated", zap.String("listing_id", listing.ID.String()))

	return jsonSuccess(c, fiber.Map{
		"message": "Listing updated",
		"listing": fiber.Map{
			"id":   listing.ID,
			"name": listing.Name,
			"slug": listing.Slug,
		},
	})
}

// Delete removes a listing with its category joins and edit requests.
func (h *ModerationHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c, "listing")
	if err != nil {
		return err
	}

	listing, err := h.store.DeleteListing(c.Context(), id)
	if err != nil {
		return storeError(err)
	}

	metrics.RecordModerationAction("delete_listing")
	h.logger.Info("listing deleted",
		zap.String("listing_id", listing.ID.String()),
		zap.String("slug", listing.Slug),
	)

	return jsonSuccess(c, fiber.Map{
		"message": "Listing deleted",
		"listing": fiber.Map{
			"id":   listing.ID,
			"name": listing.Name,
		},
	})
}

// ListEditRequests returns pending edit requests with their listings.
func (h *ModerationHandler) ListEditRequests(c fiber.Ctx) error {
	reqs, err := h.store.ListPendingEditRequests(c.Context())
	if err != nil {
		return storeError(err)
	}
	if reqs == nil {
		reqs = []models.EditRequest{}
	}
	return jsonSuccess(c, fiber.Map{"editRequests": reqs})
}

// ApproveEditRequest merges a pending edit request into its listing.
func (h *ModerationHandler) ApproveEditRequest(c fiber.Ctx) error {
	id, err := parseID(c, "edit request")
	if err != nil {
		return err
	}

	req, err := h.store.ApproveEditRequest(c.Context(), id)
	if err != nil {
		return storeError(err)
	}

	metrics.RecordModerationAction("approve_edit_request")
	h.logger.Info("edit request approved",
		zap.String("edit_request_id", req.ID.String()),
		zap.String("listing_id", req.ListingID.String()),
	)

	resp := fiber.Map{"message": "Edit request approved"}
	if req.Listing != nil {
		resp["listing"] = fiber.Map{
			"id":   req.Listing.ID,
			"name": req.Listing.Name,
			"slug": req.Listing.Slug,
		}
	}
	return jsonSuccess(c, resp)
}

// RejectEditRequest rejects a pending edit request with optional notes.
func (h *ModerationHandler) RejectEditRequest(c fiber.Ctx) error {
	id, err := parseID(c, "edit request")
	if err != nil {
		return err
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	req, err := h.store.RejectEditRequest(c.Context(), id, optional(body.Notes))
	if err != nil {
		return storeError(err)
	}

	metrics.RecordModerationAction("reject_edit_request")
	h.logger.Info("edit request rejected", zap.String("edit_request_id", req.ID.String()))

	return jsonSuccess(c, fiber.Map{"message": "Edit request rejected"})
}

func parseID(c fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFoundf("%s%s not found", strings.ToUpper(what[:1]), what[1:])
	}
	return id, nil
}

// normalizeUpdate validates the supplied fields of an admin update and cleans
// list values in place.
func normalizeUpdate(u *models.ListingUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return apperr.Validationf("name cannot be empty")
		}
		u.Name = &name
	}
	if u.Type != nil && !models.IsValidType(*u.Type) {
		return apperr.Validationf("type must be one of: app tool agent")
	}
	if u.Status != nil && !models.IsValidStatus(*u.Status) {
		return apperr.Validationf("status must be one of: live beta concept")
	}
	if u.Visibility != nil && !models.IsValidVisibility(*u.Visibility) {
		return apperr.Validationf("visibility must be one of: featured public unlisted")
	}
	if u.ShortDescription != nil {
		short := strings.TrimSpace(*u.ShortDescription)
		if short == "" {
			return apperr.Validationf("shortDescription cannot be empty")
		}
		if !validation.ValidateShortDescription(short, models.MaxShortDescription) {
			return apperr.Validationf("Short description must be %d characters or less", models.MaxShortDescription)
		}
		u.ShortDescription = &short
	}
	if u.Links != nil {
		if err := validateLinks(*u.Links); err != nil {
			return err
		}
	}
	if u.Media != nil {
		if msg := validation.Var(*u.Media, "dive"); msg != "" {
			return apperr.Validationf("media: %s", msg)
		}
	}
	if u.ThinkFit != nil {
		if msg := validation.Struct(u.ThinkFit); msg != "" {
			return apperr.Validationf("%s", msg)
		}
	}
	if u.Tags != nil {
		tags := validation.CleanTags(*u.Tags)
		u.Tags = &tags
	}
	if u.Categories != nil {
		cats := validation.CleanList(*u.Categories)
		u.Categories = &cats
	}
	return nil
}
