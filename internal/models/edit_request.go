package models

import (
	"time"

	"github.com/google/uuid"
)

// EditRequest is an owner's proposed change to a listing, awaiting moderation.
type EditRequest struct {
	ID              uuid.UUID       `json:"id"`
	ListingID       uuid.UUID       `json:"listingId"`
	RequesterWallet string          `json:"requesterWallet"`
	ProposedChanges ProposedChanges `json:"proposedChanges"`
	Status          string          `json:"status"` // pending, approved, rejected
	AdminNotes      *string         `json:"adminNotes"`
	CreatedAt       time.Time       `json:"createdAt"`
	ReviewedAt      *time.Time      `json:"reviewedAt"`

	// Populated for the moderation queue
	Listing *Listing `json:"listing,omitempty"`
}

// ProposedChanges is a partial listing record. A nil field means "keep the
// listing's current value" when the proposal is merged.
type ProposedChanges struct {
	Name             *string   `json:"name,omitempty"`
	Type             *string   `json:"type,omitempty"`
	ShortDescription *string   `json:"shortDescription,omitempty"`
	LongDescription  *string   `json:"longDescription,omitempty"`
	Status           *string   `json:"status,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`
	Links            *Links    `json:"links,omitempty"`
	Categories       *[]string `json:"categories,omitempty"`
}

// ApplyTo overwrites the listing fields the proposal sets. Categories are not
// touched here; the caller replaces the association set when
// p.Categories is non-nil.
func (p ProposedChanges) ApplyTo(l *Listing) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.ShortDescription != nil {
		l.ShortDescription = *p.ShortDescription
	}
	if p.LongDescription != nil {
		l.LongDescription = emptyToNil(*p.LongDescription)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Tags != nil {
		l.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Links != nil {
		l.Links = *p.Links
	}
}

// ListingUpdate is the admin direct-update payload. It can touch any mutable
// field regardless of review state.
type ListingUpdate struct {
	ProposedChanges
	Visibility   *string      `json:"visibility,omitempty"`
	Media        *[]MediaItem `json:"media,omitempty"`
	ThinkFit     *ThinkFit    `json:"thinkFit,omitempty"`
	IconURL      *string      `json:"iconUrl,omitempty"`
	ThumbnailURL *string      `json:"thumbnailUrl,omitempty"`
}

// ApplyTo overwrites the listing fields the update sets.
func (u ListingUpdate) ApplyTo(l *Listing) {
	u.ProposedChanges.ApplyTo(l)
	if u.Visibility != nil {
		l.Visibility = *u.Visibility
	}
	if u.Media != nil {
		l.Media = append([]MediaItem{}, (*u.Media)...)
	}
	if u.ThinkFit != nil {
		l.ThinkFit = *u.ThinkFit
	}
	if u.IconURL != nil {
		l.IconURL = emptyToNil(*u.IconURL)
	}
	if u.ThumbnailURL != nil {
		l.ThumbnailURL = emptyToNil(*u.ThumbnailURL)
	}
}

// Submission carries everything needed to create a listing and resolve its builder.
type Submission struct {
	Listing       *Listing
	Builder       *Builder
	CategorySlugs []string
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
