package api

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/identity"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/validation"
)

// SubmitAuthorizer decides whether a caller may create listings.
type SubmitAuthorizer interface {
	CanSubmit(ctx context.Context, id *identity.Identity, wallet string) (string, error)
}

// SubmitHandler creates listings from token holders.
type SubmitHandler struct {
	store  SubmissionStore
	authz  SubmitAuthorizer
	logger *zap.Logger
}

// NewSubmitHandler creates a new submission handler.
func NewSubmitHandler(store SubmissionStore, authz SubmitAuthorizer, logger *zap.Logger) *SubmitHandler {
	return &SubmitHandler{store: store, authz: authz, logger: logger}
}

type submitRequest struct {
	WalletAddress    string             `json:"walletAddress"`
	Name             string             `json:"name" validate:"required"`
	Type             string             `json:"type" validate:"required,oneof=app tool agent"`
	ShortDescription string             `json:"shortDescription" validate:"required"`
	LongDescription  string             `json:"longDescription"`
	Status           string             `json:"status" validate:"omitempty,oneof=live beta concept"`
	Tags             []string           `json:"tags"`
	Links            models.Links       `json:"links"`
	Categories       []string           `json:"categories"`
	Media            []models.MediaItem `json:"media" validate:"omitempty,dive"`
	ThinkFit         models.ThinkFit    `json:"thinkFit"`
	IconURL          string             `json:"iconUrl"`
	ThumbnailURL     string             `json:"thumbnailUrl"`

	BuilderName      string `json:"builderName" validate:"required"`
	BuilderBio       string `json:"builderBio"`
	BuilderAvatarURL string `json:"builderAvatarUrl"`
	BuilderWebsite   string `json:"builderWebsite"`
	BuilderTwitter   string `json:"builderTwitter"`
	BuilderGithub    string `json:"builderGithub"`
	BuilderDiscord   string `json:"builderDiscord"`
}

func (r *submitRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.TrimSpace(r.Type)
	r.ShortDescription = strings.TrimSpace(r.ShortDescription)
	r.LongDescription = strings.TrimSpace(r.LongDescription)
	r.Status = strings.TrimSpace(r.Status)
	r.BuilderName = strings.TrimSpace(r.BuilderName)
}

// Submit handles POST /submit. The caller must hold the gating token; the
// listing is always created pending review.
func (h *SubmitHandler) Submit(c fiber.Ctx) error {
	var body submitRequest
	if err := parseBody(c, &body); err != nil {
		return err
	}

	wallet, err := h.authz.CanSubmit(c.Context(), middleware.IdentityFrom(c), body.WalletAddress)
	if err != nil {
		return err
	}

	body.trim()
	if msg := validation.Struct(&body); msg != "" {
		return apperr.Validationf("%s", msg)
	}
	if !validation.ValidateShortDescription(body.ShortDescription, models.MaxShortDescription) {
		return apperr.Validationf("Short description must be %d characters or less", models.MaxShortDescription)
	}
	if err := validateLinks(body.Links); err != nil {
		return err
	}

	listing := &models.Listing{
		Name:             body.Name,
		Type:             body.Type,
		Status:           body.Status,
		ShortDescription: body.ShortDescription,
		LongDescription:  optional(body.LongDescription),
		Tags:             validation.CleanTags(body.Tags),
		Links:            body.Links,
		Media:            body.Media,
		ThinkFit:         body.ThinkFit,
		IconURL:          optional(body.IconURL),
		ThumbnailURL:     optional(body.ThumbnailURL),
		SubmitterWallet:  wallet,
	}
	builder := &models.Builder{
		Name:          body.BuilderName,
		Bio:           optional(body.BuilderBio),
		AvatarURL:     optional(body.BuilderAvatarURL),
		Website:       optional(body.BuilderWebsite),
		Twitter:       optional(body.BuilderTwitter),
		Github:        optional(body.BuilderGithub),
		Discord:       optional(body.BuilderDiscord),
		WalletAddress: &wallet,
	}

	sub := &models.Submission{
		Listing:       listing,
		Builder:       builder,
		CategorySlugs: validation.CleanList(body.Categories),
	}
	if err := h.store.SubmitListing(c.Context(), sub); err != nil {
		return storeError(err)
	}

	h.logger.Info("listing submitted",
		zap.String("listing_id", listing.ID.String()),
		zap.String("slug", listing.Slug),
		zap.String("builder_id", builder.ID.String()),
	)

	return jsonSuccess(c.Status(fiber.StatusCreated), fiber.Map{
		"message": "Listing submitted for review",
		"listing": fiber.Map{
			"id":     listing.ID,
			"name":   listing.Name,
			"slug":   listing.Slug,
			"status": listing.ReviewState,
		},
	})
}

// parseBody decodes the JSON request body into v. An empty body leaves v
// zeroed.
func parseBody(c fiber.Ctx, v any) error {
	raw := c.Body()
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Validationf("Invalid request body")
	}
	return nil
}

func validateLinks(links models.Links) error {
	for name, u := range links.All() {
		if ok, msg := validation.ValidateURL(u); !ok {
			return apperr.Validationf("links.%s: %s", name, msg)
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
