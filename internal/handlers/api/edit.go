package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/validation"
)

// EditHandler lets listing owners read their listing and propose changes.
type EditHandler struct {
	store  EditStore
	logger *zap.Logger
}

// NewEditHandler creates a new edit handler.
func NewEditHandler(store EditStore, logger *zap.Logger) *EditHandler {
	return &EditHandler{store: store, logger: logger}
}

// editableListing is the owner-facing view returned by GET.
type editableListing struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Slug             string       `json:"slug"`
	Type             string       `json:"type"`
	ShortDescription string       `json:"shortDescription"`
	LongDescription  *string      `json:"longDescription"`
	Status           string       `json:"status"`
	Tags             []string     `json:"tags"`
	Links            models.Links `json:"links"`
	Categories       []string     `json:"categories"`
	ReviewState      string       `json:"reviewState"`
}

// Get handles GET /listings/:slug/edit?walletAddress=0x...
func (h *EditHandler) Get(c fiber.Ctx) error {
	listing, err := authz.CanEdit(c.Context(), middleware.IdentityFrom(c), c.Query("walletAddress"), c.Params("slug"), h.store)
	if err != nil {
		return storeError(err)
	}

	return jsonSuccess(c, fiber.Map{
		"listing": editableListing{
			ID:               listing.ID.String(),
			Name:             listing.Name,
			Slug:             listing.Slug,
			Type:             listing.Type,
			ShortDescription: listing.ShortDescription,
			LongDescription:  listing.LongDescription,
			Status:           listing.Status,
			Tags:             listing.Tags,
			Links:            listing.Links,
			Categories:       listing.Categories,
			ReviewState:      listing.ReviewState,
		},
	})
}

type editRequestBody struct {
	WalletAddress    string        `json:"walletAddress"`
	Name             string        `json:"name" validate:"required"`
	Type             string        `json:"type" validate:"required,oneof=app tool agent"`
	ShortDescription string        `json:"shortDescription" validate:"required"`
	LongDescription  *string       `json:"longDescription"`
	Status           *string       `json:"status" validate:"omitempty,oneof=live beta concept"`
	Tags             *[]string     `json:"tags"`
	Links            *models.Links `json:"links"`
	Categories       *[]string     `json:"categories"`
}

// proposal keeps only the fields the requester sent.
func (b *editRequestBody) proposal() models.ProposedChanges {
	name := strings.TrimSpace(b.Name)
	typ := strings.TrimSpace(b.Type)
	short := strings.TrimSpace(b.ShortDescription)

	p := models.ProposedChanges{
		Name:             &name,
		Type:             &typ,
		ShortDescription: &short,
		LongDescription:  b.LongDescription,
		Status:           b.Status,
		Links:            b.Links,
	}
	if b.Tags != nil {
		tags := validation.CleanTags(*b.Tags)
		p.Tags = &tags
	}
	if b.Categories != nil {
		cats := validation.CleanList(*b.Categories)
		p.Categories = &cats
	}
	return p
}

// Submit handles POST /listings/:slug/edit. A new request supersedes any
// pending one for the same listing.
func (h *EditHandler) Submit(c fiber.Ctx) error {
	var body editRequestBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	listing, err := authz.CanEdit(c.Context(), middleware.IdentityFrom(c), body.WalletAddress, c.Params("slug"), h.store)
	if err != nil {
		return storeError(err)
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Type = strings.TrimSpace(body.Type)
	body.ShortDescription = strings.TrimSpace(body.ShortDescription)
	if msg := validation.Struct(&body); msg != "" {
		return apperr.Validationf("%s", msg)
	}
	if !validation.ValidateShortDescription(body.ShortDescription, models.MaxShortDescription) {
		return apperr.Validationf("Short description must be %d characters or less", models.MaxShortDescription)
	}
	if body.Links != nil {
		if err := validateLinks(*body.Links); err != nil {
			return err
		}
	}

	if listing.ReviewState != models.ReviewApproved {
		return apperr.InvalidStatef("Only approved listings can be edited")
	}

	proposed := body.proposal()
	if proposed.Categories != nil && len(*proposed.Categories) > 0 {
		missing, err := h.store.MissingCategories(c.Context(), *proposed.Categories)
		if err != nil {
			return storeError(err)
		}
		if len(missing) > 0 {
			return apperr.Validationf("Unknown category: %s", missing[0])
		}
	}

	req := &models.EditRequest{
		ListingID:       listing.ID,
		RequesterWallet: validation.NormalizeWallet(body.WalletAddress),
		ProposedChanges: proposed,
	}
	if err := h.store.CreateEditRequest(c.Context(), req); err != nil {
		return storeError(err)
	}

	h.logger.Info("edit request submitted",
		zap.String("edit_request_id", req.ID.String()),
		zap.String("listing_id", listing.ID.String()),
	)

	return jsonSuccess(c, fiber.Map{
		"message":       "Edit request submitted for review",
		"editRequestId": req.ID,
	})
}
