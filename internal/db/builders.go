package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"marketplace/internal/models"
)

const builderColumns = `id, name, slug, bio, avatar_url, website, twitter, github, discord, wallet_address, created_at, updated_at`

func scanBuilder(row pgx.Row) (*models.Builder, error) {
	var b models.Builder
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Bio, &b.AvatarURL, &b.Website,
		&b.Twitter, &b.Github, &b.Discord, &b.WalletAddress, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// findOrCreateBuilder matches b by wallet address (case-insensitive), then by
// exact name, and inserts it with a fresh unique slug when neither matches.
// On return b holds the stored row.
func findOrCreateBuilder(ctx context.Context, q querier, b *models.Builder) error {
	if b.WalletAddress != nil && *b.WalletAddress != "" {
		found, err := scanBuilder(q.QueryRow(ctx, `
			SELECT `+builderColumns+` FROM builders
			WHERE LOWER(wallet_address) = LOWER($1)
			ORDER BY created_at ASC
			LIMIT 1
		`, *b.WalletAddress))
		if err == nil {
			*b = *found
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
	}

	found, err := scanBuilder(q.QueryRow(ctx, `
		SELECT `+builderColumns+` FROM builders
		WHERE name = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, b.Name))
	if err == nil {
		*b = *found
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	b.Slug, err = uniqueSlug(ctx, q, "builders", b.Name, "builder")
	if err != nil {
		return err
	}

	created, err := scanBuilder(q.QueryRow(ctx, `
		INSERT INTO builders (name, slug, bio, avatar_url, website, twitter, github, discord, wallet_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+builderColumns,
		b.Name, b.Slug, b.Bio, b.AvatarURL, b.Website, b.Twitter, b.Github, b.Discord, b.WalletAddress,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrDuplicateSlug
		}
		return err
	}
	*b = *created
	return nil
}

// GetBuilderBySlug retrieves a builder profile with its public listings.
func (d *DB) GetBuilderBySlug(ctx context.Context, slug string) (*models.Builder, error) {
	b, err := scanBuilder(d.Pool.QueryRow(ctx, `SELECT `+builderColumns+` FROM builders WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBuilderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.Pool.Query(ctx, listingSelect+`
		WHERE l.builder_id = $1 AND `+publicFilter+`
		ORDER BY l.created_at DESC
	`, b.ID)
	if err != nil {
		return nil, err
	}
	if b.Listings, err = collectListings(rows); err != nil {
		return nil, err
	}
	return b, nil
}
