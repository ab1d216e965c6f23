package models

import (
	"time"

	"github.com/google/uuid"
)

// Builder is the profile of a project owner or studio.
type Builder struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Bio           *string   `json:"bio"`
	AvatarURL     *string   `json:"avatarUrl"`
	Website       *string   `json:"website"`
	Twitter       *string   `json:"twitter"`
	Github        *string   `json:"github"`
	Discord       *string   `json:"discord"`
	WalletAddress *string   `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Populated on the builder profile endpoint
	Listings []Listing `json:"listings,omitempty"`
}

// Category is an entry of the static taxonomy.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}
