package api

import (
	"context"

	"github.com/google/uuid"

	"marketplace/internal/models"
	"marketplace/internal/tokengate"
)

// PublicStore serves the unauthenticated read endpoints. Every method returns
// only approved listings with public or featured visibility.
type PublicStore interface {
	ListPublicListings(ctx context.Context, f models.ListingFilter) ([]models.Listing, int, error)
	ListFeaturedListings(ctx context.Context, limit int) ([]models.Listing, error)
	GetPublicListingBySlug(ctx context.Context, slug string) (*models.Listing, error)
	GetBuilderBySlug(ctx context.Context, slug string) (*models.Builder, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// SubmissionStore creates listings.
type SubmissionStore interface {
	SubmitListing(ctx context.Context, sub *models.Submission) error
}

// EditStore serves owner edit requests.
type EditStore interface {
	GetListingBySlug(ctx context.Context, slug string) (*models.Listing, error)
	CreateEditRequest(ctx context.Context, req *models.EditRequest) error
	MissingCategories(ctx context.Context, slugs []string) ([]string, error)
}

// ModerationStore serves the admin endpoints.
type ModerationStore interface {
	ListPendingListings(ctx context.Context) ([]models.Listing, error)
	ApproveListing(ctx context.Context, id uuid.UUID, visibility string, status *string) (*models.Listing, error)
	RejectListing(ctx context.Context, id uuid.UUID, reason *string) (*models.Listing, error)
	UpdateListing(ctx context.Context, id uuid.UUID, upd models.ListingUpdate) (*models.Listing, error)
	DeleteListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListPendingEditRequests(ctx context.Context) ([]models.EditRequest, error)
	ApproveEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error)
	RejectEditRequest(ctx context.Context, id uuid.UUID, notes *string) (*models.EditRequest, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full persistence surface, satisfied by *db.DB.
type Store interface {
	PublicStore
	SubmissionStore
	EditStore
	ModerationStore
	Pinger
}

// HolderChecker reports token ownership for the public nft-check endpoint.
type HolderChecker interface {
	Check(ctx context.Context, address string) tokengate.Result
}
