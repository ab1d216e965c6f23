package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// Listing errors
	ErrListingNotFound = errors.New("listing not found")
	ErrDuplicateSlug   = errors.New("slug already exists")
	ErrSlugExhausted   = errors.New("could not find a free slug")

	// Moderation errors
	ErrInvalidState = errors.New("item is not pending review")

	// Builder errors
	ErrBuilderNotFound = errors.New("builder not found")

	// Category errors
	ErrCategoryNotFound = errors.New("category not found")

	// Edit request errors
	ErrEditRequestNotFound = errors.New("edit request not found")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
