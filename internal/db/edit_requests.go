package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

const (
	editRequestColumns = `id, listing_id, requester_wallet, proposed_changes, status, admin_notes, created_at, reviewed_at`

	// onePendingIndex enforces a single pending request per listing.
	onePendingIndex = "idx_edit_requests_one_pending"

	createEditRetries = 3
)

func scanEditRequest(row pgx.Row) (*models.EditRequest, error) {
	var r models.EditRequest
	err := row.Scan(&r.ID, &r.ListingID, &r.RequesterWallet, &r.ProposedChanges,
		&r.Status, &r.AdminNotes, &r.CreatedAt, &r.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateEditRequest replaces any pending request for the listing with req.
// Concurrent submissions for the same listing resolve to the last writer.
func (d *DB) CreateEditRequest(ctx context.Context, req *models.EditRequest) error {
	var err error
	for attempt := 0; attempt < createEditRetries; attempt++ {
		err = d.createEditRequest(ctx, req)
		if !isUniqueViolation(err, onePendingIndex) {
			return err
		}
	}
	return err
}

func (d *DB) createEditRequest(ctx context.Context, req *models.EditRequest) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM edit_requests WHERE listing_id = $1 AND status = $2
	`, req.ListingID, models.ReviewPending); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO edit_requests (listing_id, requester_wallet, proposed_changes)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at
	`, req.ListingID, req.RequesterWallet, req.ProposedChanges).Scan(&req.ID, &req.Status, &req.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetEditRequestByID retrieves an edit request in any state.
func (d *DB) GetEditRequestByID(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	r, err := scanEditRequest(d.Pool.QueryRow(ctx, `SELECT `+editRequestColumns+` FROM edit_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEditRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListPendingEditRequests returns pending requests oldest first, each with its
// listing, builder and category slugs.
func (d *DB) ListPendingEditRequests(ctx context.Context) ([]models.EditRequest, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+editRequestColumns+` FROM edit_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`, models.ReviewPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.EditRequest{}
	var listingIDs []uuid.UUID
	for rows.Next() {
		r, err := scanEditRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
		listingIDs = append(listingIDs, r.ListingID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return requests, nil
	}

	listingRows, err := d.Pool.Query(ctx, listingSelect+` WHERE l.id = ANY($1)`, listingIDs)
	if err != nil {
		return nil, err
	}
	listings, err := collectListings(listingRows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Listing, len(listings))
	for i := range listings {
		byID[listings[i].ID] = &listings[i]
	}
	for i := range requests {
		requests[i].Listing = byID[requests[i].ListingID]
	}
	return requests, nil
}

// ApproveEditRequest merges a pending request into its listing and marks it
// approved, atomically. Fields absent from the proposal keep their current
// values; review state and visibility are never touched.
func (d *DB) ApproveEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	req, err := scanEditRequest(tx.QueryRow(ctx, `
		SELECT `+editRequestColumns+` FROM edit_requests WHERE id = $1 FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEditRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.Status != models.ReviewPending {
		return nil, ErrInvalidState
	}

	listing, err := getListing(ctx, tx, listingSelect+` WHERE l.id = $1 FOR UPDATE OF l`, req.ListingID)
	if err != nil {
		return nil, err
	}

	req.ProposedChanges.ApplyTo(listing)
	if err := writeListing(ctx, tx, listing); err != nil {
		return nil, err
	}
	if req.ProposedChanges.Categories != nil {
		if listing.Categories, err = setListingCategories(ctx, tx, listing.ID, *req.ProposedChanges.Categories); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		UPDATE edit_requests SET status = $1, reviewed_at = $2 WHERE id = $3
	`, models.ReviewApproved, now, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	req.Status = models.ReviewApproved
	req.ReviewedAt = &now
	req.Listing = listing
	return req, nil
}

// RejectEditRequest marks a pending request rejected. The listing is untouched.
func (d *DB) RejectEditRequest(ctx context.Context, id uuid.UUID, notes *string) (*models.EditRequest, error) {
	req, err := scanEditRequest(d.Pool.QueryRow(ctx, `
		UPDATE edit_requests
		SET status = $1, admin_notes = $2, reviewed_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING `+editRequestColumns,
		models.ReviewRejected, notes, id, models.ReviewPending))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := d.GetEditRequestByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}
