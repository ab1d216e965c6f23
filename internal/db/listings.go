package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

// listingSelect loads a listing with its category slugs and builder summary.
const listingSelect = `
	SELECT l.id, l.slug, l.name, l.type, l.status, l.short_description, l.long_description,
		l.tags, l.links, l.media, l.think_fit, l.icon_url, l.thumbnail_url,
		l.review_state, l.visibility, l.rejection_reason, l.submitter_wallet, l.builder_id,
		l.created_at, l.updated_at,
		ARRAY(
			SELECT c.slug FROM listing_categories lc
			JOIN categories c ON c.id = lc.category_id
			WHERE lc.listing_id = l.id
			ORDER BY c.slug
		),
		b.id, b.name, b.slug, b.avatar_url
	FROM listings l
	JOIN builders b ON b.id = l.builder_id
`

// publicFilter restricts a query to listings visible to anonymous callers.
const publicFilter = `l.review_state = 'approved' AND l.visibility IN ('featured', 'public')`

const submitRetries = 3

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	b := &models.Builder{}
	err := row.Scan(
		&l.ID, &l.Slug, &l.Name, &l.Type, &l.Status, &l.ShortDescription, &l.LongDescription,
		&l.Tags, &l.Links, &l.Media, &l.ThinkFit, &l.IconURL, &l.ThumbnailURL,
		&l.ReviewState, &l.Visibility, &l.RejectionReason, &l.SubmitterWallet, &l.BuilderID,
		&l.CreatedAt, &l.UpdatedAt,
		&l.Categories,
		&b.ID, &b.Name, &b.Slug, &b.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	l.Builder = b
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]models.Listing, error) {
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// prepare fills nil collections so NOT NULL JSON columns get empty values.
func prepare(l *models.Listing) {
	if l.Tags == nil {
		l.Tags = []string{}
	}
	if l.Media == nil {
		l.Media = []models.MediaItem{}
	}
}

// SubmitListing resolves the builder, picks a unique slug and inserts the
// listing with its categories in one transaction. The listing always starts
// pending and public regardless of what the caller set.
func (d *DB) SubmitListing(ctx context.Context, sub *models.Submission) error {
	var err error
	for attempt := 0; attempt < submitRetries; attempt++ {
		err = d.submitListing(ctx, sub)
		if !errors.Is(err, ErrDuplicateSlug) {
			return err
		}
	}
	return err
}

func (d *DB) submitListing(ctx context.Context, sub *models.Submission) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := findOrCreateBuilder(ctx, tx, sub.Builder); err != nil {
		return err
	}

	l := sub.Listing
	l.Slug, err = uniqueSlug(ctx, tx, "listings", l.Name, "listing")
	if err != nil {
		return err
	}
	l.BuilderID = sub.Builder.ID
	l.ReviewState = models.ReviewPending
	l.Visibility = models.VisibilityPublic
	l.RejectionReason = nil
	if l.Status == "" {
		l.Status = models.StatusConcept
	}
	prepare(l)

	err = tx.QueryRow(ctx, `
		INSERT INTO listings (slug, name, type, status, short_description, long_description,
			tags, links, media, think_fit, icon_url, thumbnail_url,
			review_state, visibility, submitter_wallet, builder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`,
		l.Slug, l.Name, l.Type, l.Status, l.ShortDescription, l.LongDescription,
		l.Tags, l.Links, l.Media, l.ThinkFit, l.IconURL, l.ThumbnailURL,
		l.ReviewState, l.Visibility, l.SubmitterWallet, l.BuilderID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrDuplicateSlug
		}
		return err
	}

	if l.Categories, err = setListingCategories(ctx, tx, l.ID, sub.CategorySlugs); err != nil {
		return err
	}
	l.Builder = sub.Builder

	return tx.Commit(ctx)
}

// GetListingByID retrieves a listing in any review state.
func (d *DB) GetListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return getListing(ctx, d.Pool, listingSelect+` WHERE l.id = $1`, id)
}

// GetListingBySlug retrieves a listing in any review state.
func (d *DB) GetListingBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	return getListing(ctx, d.Pool, listingSelect+` WHERE l.slug = $1`, slug)
}

// GetPublicListingBySlug retrieves a listing only if anonymous callers may see it.
// Hidden listings report ErrListingNotFound.
func (d *DB) GetPublicListingBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	return getListing(ctx, d.Pool, listingSelect+` WHERE l.slug = $1 AND `+publicFilter, slug)
}

func getListing(ctx context.Context, q querier, query string, args ...any) (*models.Listing, error) {
	l, err := scanListing(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListPublicListings returns one page of public listings, featured first then
// newest, along with the total number of matches.
func (d *DB) ListPublicListings(ctx context.Context, f models.ListingFilter) ([]models.Listing, int, error) {
	conditions := []string{publicFilter}
	var args []any

	if f.Type != "" {
		args = append(args, f.Type)
		conditions = append(conditions, fmt.Sprintf("l.type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM listing_categories lc
			JOIN categories c ON c.id = lc.category_id
			WHERE lc.listing_id = l.id AND c.slug = $%d
		)`, len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings l`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset())
	query := listingSelect + where + fmt.Sprintf(`
		ORDER BY (l.visibility = 'featured') DESC, l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, len(args)-1, len(args))

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	listings, err := collectListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListFeaturedListings returns approved featured listings, newest first.
func (d *DB) ListFeaturedListings(ctx context.Context, limit int) ([]models.Listing, error) {
	rows, err := d.Pool.Query(ctx, listingSelect+`
		WHERE l.review_state = 'approved' AND l.visibility = 'featured'
		ORDER BY l.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// UpdateListing applies an admin update to a listing in any review state.
// Categories, when present in the update, replace the existing set.
func (d *DB) UpdateListing(ctx context.Context, id uuid.UUID, upd models.ListingUpdate) (*models.Listing, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	l, err := getListing(ctx, tx, listingSelect+` WHERE l.id = $1 FOR UPDATE OF l`, id)
	if err != nil {
		return nil, err
	}

	upd.ApplyTo(l)
	if err := writeListing(ctx, tx, l); err != nil {
		return nil, err
	}
	if upd.Categories != nil {
		if l.Categories, err = setListingCategories(ctx, tx, l.ID, *upd.Categories); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// writeListing persists the mutable content and visibility columns.
func writeListing(ctx context.Context, q querier, l *models.Listing) error {
	prepare(l)
	return q.QueryRow(ctx, `
		UPDATE listings
		SET name = $1, type = $2, status = $3, short_description = $4, long_description = $5,
			tags = $6, links = $7, media = $8, think_fit = $9, icon_url = $10, thumbnail_url = $11,
			visibility = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at
	`,
		l.Name, l.Type, l.Status, l.ShortDescription, l.LongDescription,
		l.Tags, l.Links, l.Media, l.ThinkFit, l.IconURL, l.ThumbnailURL,
		l.Visibility, l.ID,
	).Scan(&l.UpdatedAt)
}

// DeleteListing removes a listing. Category joins and edit requests cascade.
func (d *DB) DeleteListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	err := d.Pool.QueryRow(ctx, `
		DELETE FROM listings WHERE id = $1
		RETURNING id, name, slug
	`, id).Scan(&l.ID, &l.Name, &l.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
