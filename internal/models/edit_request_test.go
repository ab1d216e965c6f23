package models

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func baseListing() *Listing {
	return &Listing{
		Name:             "Foo",
		Type:             TypeTool,
		Status:           StatusBeta,
		ShortDescription: "short",
		LongDescription:  strPtr("long"),
		Tags:             []string{"ai", "agents"},
		Links:            Links{Website: "https://foo.example"},
		ReviewState:      ReviewApproved,
		Visibility:       VisibilityPublic,
	}
}

func TestProposedChangesApplyTo_TagsOnly(t *testing.T) {
	l := baseListing()
	tags := []string{"new"}
	ProposedChanges{Tags: &tags}.ApplyTo(l)

	want := baseListing()
	want.Tags = []string{"new"}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("ApplyTo() = %+v, want %+v", l, want)
	}
}

func TestProposedChangesApplyTo_NameOnlyKeepsReviewState(t *testing.T) {
	l := baseListing()
	ProposedChanges{Name: strPtr("Bar")}.ApplyTo(l)

	if l.Name != "Bar" {
		t.Errorf("Name = %q, want %q", l.Name, "Bar")
	}
	if l.ReviewState != ReviewApproved {
		t.Errorf("ReviewState = %q, want %q", l.ReviewState, ReviewApproved)
	}
	if l.Status != StatusBeta {
		t.Errorf("Status = %q, want %q", l.Status, StatusBeta)
	}
	if !reflect.DeepEqual(l.Tags, []string{"ai", "agents"}) {
		t.Errorf("Tags = %v, want unchanged", l.Tags)
	}
	if l.Links.Website != "https://foo.example" {
		t.Errorf("Links = %+v, want unchanged", l.Links)
	}
}

func TestProposedChangesApplyTo_EmptyLongDescriptionClears(t *testing.T) {
	l := baseListing()
	ProposedChanges{LongDescription: strPtr("")}.ApplyTo(l)
	if l.LongDescription != nil {
		t.Errorf("LongDescription = %q, want nil", *l.LongDescription)
	}
}

func TestListingUpdateApplyTo(t *testing.T) {
	l := baseListing()
	ListingUpdate{
		ProposedChanges: ProposedChanges{Status: strPtr(StatusLive)},
		Visibility:      strPtr(VisibilityFeatured),
	}.ApplyTo(l)

	if l.Status != StatusLive {
		t.Errorf("Status = %q, want %q", l.Status, StatusLive)
	}
	if l.Visibility != VisibilityFeatured {
		t.Errorf("Visibility = %q, want %q", l.Visibility, VisibilityFeatured)
	}
	if l.Name != "Foo" {
		t.Errorf("Name = %q, want unchanged", l.Name)
	}
}

func TestListingIsPublic(t *testing.T) {
	tests := []struct {
		name       string
		review     string
		visibility string
		expected   bool
	}{
		{"approved public", ReviewApproved, VisibilityPublic, true},
		{"approved featured", ReviewApproved, VisibilityFeatured, true},
		{"approved unlisted", ReviewApproved, VisibilityUnlisted, false},
		{"pending public", ReviewPending, VisibilityPublic, false},
		{"rejected featured", ReviewRejected, VisibilityFeatured, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{ReviewState: tt.review, Visibility: tt.visibility}
			if got := l.IsPublic(); got != tt.expected {
				t.Errorf("IsPublic() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(ListingFilter{Page: 2, Limit: 20}, 41)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if p.Total != 41 {
		t.Errorf("Total = %d, want 41", p.Total)
	}
}
