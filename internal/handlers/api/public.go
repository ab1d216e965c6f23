package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
	"marketplace/internal/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	featuredLimit   = 12
)

// PublicHandler serves the unauthenticated read endpoints.
type PublicHandler struct {
	store PublicStore
	gate  HolderChecker
}

// NewPublicHandler creates a new public read handler.
func NewPublicHandler(store PublicStore, gate HolderChecker) *PublicHandler {
	return &PublicHandler{store: store, gate: gate}
}

// ListListings handles GET /listings with optional type, status, category,
// page and limit query parameters. Unknown type or status values are ignored.
func (h *PublicHandler) ListListings(c fiber.Ctx) error {
	f := listingFilter(c)

	listings, total, err := h.store.ListPublicListings(c.Context(), f)
	if err != nil {
		return storeError(err)
	}

	return jsonSuccess(c, fiber.Map{
		"listings":   publicListings(listings),
		"pagination": models.NewPagination(f, total),
	})
}

func listingFilter(c fiber.Ctx) models.ListingFilter {
	f := models.ListingFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", defaultPageSize),
	}
	if t := c.Query("type"); models.IsValidType(t) {
		f.Type = t
	}
	if s := c.Query("status"); models.IsValidStatus(s) {
		f.Status = s
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return f
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

// Featured handles GET /listings/featured.
func (h *PublicHandler) Featured(c fiber.Ctx) error {
	limit := queryInt(c, "limit", featuredLimit)
	if limit < 1 || limit > maxPageSize {
		limit = featuredLimit
	}

	listings, err := h.store.ListFeaturedListings(c.Context(), limit)
	if err != nil {
		return storeError(err)
	}
	return jsonSuccess(c, fiber.Map{"listings": publicListings(listings)})
}

// GetListing handles GET /listings/:slug. Hidden listings are reported as
// not found.
func (h *PublicHandler) GetListing(c fiber.Ctx) error {
	listing, err := h.store.GetPublicListingBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return storeError(err)
	}
	return jsonSuccess(c, fiber.Map{"listing": publicListing(*listing)})
}

// GetBuilder handles GET /builders/:slug.
func (h *PublicHandler) GetBuilder(c fiber.Ctx) error {
	builder, err := h.store.GetBuilderBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return storeError(err)
	}
	builder.Listings = publicListings(builder.Listings)
	return jsonSuccess(c, fiber.Map{"builder": builder})
}

// ListCategories handles GET /categories.
func (h *PublicHandler) ListCategories(c fiber.Ctx) error {
	categories, err := h.store.ListCategories(c.Context())
	if err != nil {
		return storeError(err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return jsonSuccess(c, fiber.Map{"categories": categories})
}

// NFTCheck handles GET /auth/nft-check?address=0x...
func (h *PublicHandler) NFTCheck(c fiber.Ctx) error {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		return apperr.Validationf("Address is required")
	}
	if !validation.IsWalletAddress(address) {
		return apperr.Validationf("Invalid address format")
	}

	result := h.gate.Check(c.Context(), validation.NormalizeWallet(address))
	return jsonSuccess(c, fiber.Map{
		"isHolder":  result.IsHolder,
		"checkedAt": result.CheckedAt,
	})
}

// publicListing strips fields that only owners and admins may see.
func publicListing(l models.Listing) models.Listing {
	l.SubmitterWallet = ""
	l.RejectionReason = nil
	return l
}

func publicListings(listings []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		out = append(out, publicListing(l))
	}
	return out
}
