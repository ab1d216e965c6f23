package db

import (
	"context"
	"fmt"

	"marketplace/internal/validation"
)

// maxSlugAttempts bounds the numeric suffix search.
const maxSlugAttempts = 1000

// uniqueSlug returns base, or base-N for the lowest N in [1, maxSlugAttempts]
// not yet taken in table. table must be a trusted identifier.
func uniqueSlug(ctx context.Context, q querier, table, name, fallback string) (string, error) {
	base := validation.Slugify(name, fallback)
	query := `SELECT EXISTS(SELECT 1 FROM ` + table + ` WHERE slug = $1)`

	slug := base
	for i := 1; i <= maxSlugAttempts+1; i++ {
		var taken bool
		if err := q.QueryRow(ctx, query, slug).Scan(&taken); err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrSlugExhausted
}
