package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

// ListPendingListings returns listings awaiting review, oldest first.
func (d *DB) ListPendingListings(ctx context.Context) ([]models.Listing, error) {
	rows, err := d.Pool.Query(ctx, listingSelect+`
		WHERE l.review_state = $1
		ORDER BY l.created_at ASC
	`, models.ReviewPending)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// ApproveListing moves a pending listing to approved with the given
// visibility. A nil status keeps the declared status.
func (d *DB) ApproveListing(ctx context.Context, id uuid.UUID, visibility string, status *string) (*models.Listing, error) {
	var updated uuid.UUID
	err := d.Pool.QueryRow(ctx, `
		UPDATE listings
		SET review_state = $1, visibility = $2, status = COALESCE($3, status), updated_at = NOW()
		WHERE id = $4 AND review_state = $5
		RETURNING id
	`, models.ReviewApproved, visibility, status, id, models.ReviewPending).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, d.notPendingError(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return d.GetListingByID(ctx, id)
}

// RejectListing moves a pending listing to rejected. A nil reason clears any
// previous rejection reason.
func (d *DB) RejectListing(ctx context.Context, id uuid.UUID, reason *string) (*models.Listing, error) {
	var updated uuid.UUID
	err := d.Pool.QueryRow(ctx, `
		UPDATE listings
		SET review_state = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3 AND review_state = $4
		RETURNING id
	`, models.ReviewRejected, reason, id, models.ReviewPending).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, d.notPendingError(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return d.GetListingByID(ctx, id)
}

// notPendingError distinguishes a missing listing from a resolved one after a
// guarded update matched no rows.
func (d *DB) notPendingError(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := d.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrListingNotFound
	}
	return ErrInvalidState
}

// PendingCounts returns the number of listings and edit requests awaiting review.
func (d *DB) PendingCounts(ctx context.Context) (listings, editRequests int, err error) {
	err = d.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM listings WHERE review_state = 'pending'),
			(SELECT COUNT(*) FROM edit_requests WHERE status = 'pending')
	`).Scan(&listings, &editRequests)
	return listings, editRequests, err
}
