package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing types
const (
	TypeApp   = "app"
	TypeTool  = "tool"
	TypeAgent = "agent"
)

// Listing maturity declared by the builder. Independent of moderation.
const (
	StatusLive    = "live"
	StatusBeta    = "beta"
	StatusConcept = "concept"
)

// Review states shared by listings and edit requests.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Visibility tiers, meaningful once a listing is approved.
const (
	VisibilityFeatured = "featured"
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
)

// MaxShortDescription is the character limit for short descriptions.
const MaxShortDescription = 300

// Listing is a submitted project (app, tool or agent).
type Listing struct {
	ID               uuid.UUID   `json:"id"`
	Slug             string      `json:"slug"`
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	Status           string      `json:"status"`
	ShortDescription string      `json:"shortDescription"`
	LongDescription  *string     `json:"longDescription"`
	Tags             []string    `json:"tags"`
	Links            Links       `json:"links"`
	Media            []MediaItem `json:"media"`
	ThinkFit         ThinkFit    `json:"thinkFit"`
	IconURL          *string     `json:"iconUrl"`
	ThumbnailURL     *string     `json:"thumbnailUrl"`
	ReviewState      string      `json:"reviewState"`
	Visibility       string      `json:"visibility"`
	RejectionReason  *string     `json:"rejectionReason,omitempty"`
	SubmitterWallet  string      `json:"submitterWallet,omitempty"`
	BuilderID        uuid.UUID   `json:"builderId"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`

	// Populated on fetch
	Categories []string `json:"categories"`
	Builder    *Builder `json:"builder,omitempty"`
}

// IsPublic reports whether the listing may appear in public responses.
func (l *Listing) IsPublic() bool {
	return l.ReviewState == ReviewApproved &&
		(l.Visibility == VisibilityFeatured || l.Visibility == VisibilityPublic)
}

// IsPending returns true while the listing awaits moderation.
func (l *Listing) IsPending() bool {
	return l.ReviewState == ReviewPending
}

// Links holds the named URLs of a listing. Every field is optional.
type Links struct {
	Website  string `json:"website,omitempty"`
	Demo     string `json:"demo,omitempty"`
	Docs     string `json:"docs,omitempty"`
	Repo     string `json:"repo,omitempty"`
	Waitlist string `json:"waitlist,omitempty"`
}

// All returns the non-empty links keyed by name.
func (l Links) All() map[string]string {
	out := make(map[string]string, 5)
	for name, v := range map[string]string{
		"website":  l.Website,
		"demo":     l.Demo,
		"docs":     l.Docs,
		"repo":     l.Repo,
		"waitlist": l.Waitlist,
	} {
		if v != "" {
			out[name] = v
		}
	}
	return out
}

// MediaItem is one entry of a listing's gallery.
type MediaItem struct {
	ID    string `json:"id"`
	URL   string `json:"url" validate:"required,url"`
	Alt   string `json:"alt"`
	Type  string `json:"type" validate:"omitempty,oneof=image video"`
	Order int    `json:"order"`
}

// ListingFilter narrows the public listing query.
type ListingFilter struct {
	Type     string
	Status   string
	Category string
	Page     int
	Limit    int
}

// Offset returns the row offset for the filter's page.
func (f ListingFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes page metadata for a result total.
func NewPagination(f ListingFilter, total int) Pagination {
	pages := 0
	if f.Limit > 0 {
		pages = (total + f.Limit - 1) / f.Limit
	}
	return Pagination{Page: f.Page, Limit: f.Limit, Total: total, TotalPages: pages}
}

// IsValidType reports whether t is a known listing type.
func IsValidType(t string) bool {
	return t == TypeApp || t == TypeTool || t == TypeAgent
}

// IsValidStatus reports whether s is a known listing status.
func IsValidStatus(s string) bool {
	return s == StatusLive || s == StatusBeta || s == StatusConcept
}

// IsValidVisibility reports whether v is a known visibility tier.
func IsValidVisibility(v string) bool {
	return v == VisibilityFeatured || v == VisibilityPublic || v == VisibilityUnlisted
}
