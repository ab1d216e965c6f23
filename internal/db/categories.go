package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"marketplace/internal/models"
	"marketplace/internal/validation"
)

// ListCategories returns every category ordered by name.
func (d *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, name, slug, description, icon
		FROM categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// MissingCategories returns the slugs, in input order, that have no category.
func (d *DB) MissingCategories(ctx context.Context, slugs []string) ([]string, error) {
	slugs = validation.CleanList(slugs)
	if len(slugs) == 0 {
		return nil, nil
	}

	rows, err := d.Pool.Query(ctx, `SELECT slug FROM categories WHERE slug = ANY($1)`, slugs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]bool, len(slugs))
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		known[slug] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, slug := range slugs {
		if !known[slug] {
			missing = append(missing, slug)
		}
	}
	return missing, nil
}

// setListingCategories replaces a listing's category set with slugs.
// Unknown slugs fail with ErrCategoryNotFound.
func setListingCategories(ctx context.Context, q querier, listingID uuid.UUID, slugs []string) ([]string, error) {
	if _, err := q.Exec(ctx, `DELETE FROM listing_categories WHERE listing_id = $1`, listingID); err != nil {
		return nil, err
	}

	slugs = validation.CleanList(slugs)
	for _, slug := range slugs {
		tag, err := q.Exec(ctx, `
			INSERT INTO listing_categories (listing_id, category_id)
			SELECT $1, id FROM categories WHERE slug = $2
			ON CONFLICT DO NOTHING
		`, listingID, slug)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, slug)
		}
	}
	return slugs, nil
}
