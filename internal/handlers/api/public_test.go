package api

import (
	"net/http"
	"testing"

	"marketplace/internal/models"
)

func seedCatalog(env *testEnv) {
	env.store.addListing(models.Listing{Name: "Visible", ReviewState: models.ReviewApproved, SubmitterWallet: ownerWallet})
	env.store.addListing(models.Listing{Name: "Star", ReviewState: models.ReviewApproved, Visibility: models.VisibilityFeatured})
	env.store.addListing(models.Listing{Name: "Hidden", ReviewState: models.ReviewApproved, Visibility: models.VisibilityUnlisted})
	env.store.addListing(models.Listing{Name: "Waiting", ReviewState: models.ReviewPending})
	env.store.addListing(models.Listing{Name: "Refused", ReviewState: models.ReviewRejected})
}

func TestPublicListingsHideNonPublic(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	status, resp := env.do(t, http.MethodGet, "/listings", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	listings := resp["listings"].([]any)
	names := map[string]bool{}
	for _, item := range listings {
		l := item.(map[string]any)
		names[l["name"].(string)] = true
		if _, ok := l["submitterWallet"]; ok {
			t.Errorf("listing %v exposes submitterWallet", l["name"])
		}
	}
	for _, want := range []string{"Visible", "Star"} {
		if !names[want] {
			t.Errorf("listing %q missing from public list", want)
		}
	}
	for _, hidden := range []string{"Hidden", "Waiting", "Refused"} {
		if names[hidden] {
			t.Errorf("listing %q leaked into public list", hidden)
		}
	}

	pagination := resp["pagination"].(map[string]any)
	if pagination["total"] != float64(2) || pagination["page"] != float64(1) || pagination["limit"] != float64(20) {
		t.Errorf("pagination = %v, want total 2 page 1 limit 20", pagination)
	}
}

func TestPublicListingsPagination(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  float64
		wantLimit float64
	}{
		{"", 1, 20},
		{"?limit=500", 1, 100},
		{"?limit=0&page=0", 1, 20},
		{"?limit=abc&page=3", 3, 20},
		{"?limit=1&page=2", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			env := newTestEnv(t)
			seedCatalog(env)

			status, resp := env.do(t, http.MethodGet, "/listings"+tt.query, nil)
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200", status)
			}
			p := resp["pagination"].(map[string]any)
			if p["page"] != tt.wantPage || p["limit"] != tt.wantLimit {
				t.Errorf("pagination = %v, want page %v limit %v", p, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPublicListingBySlug(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	tests := []struct {
		slug string
		want int
	}{
		{"visible", http.StatusOK},
		{"star", http.StatusOK},
		{"hidden", http.StatusNotFound},
		{"waiting", http.StatusNotFound},
		{"refused", http.StatusNotFound},
		{"nothing-here", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if status, _ := env.do(t, http.MethodGet, "/listings/"+tt.slug, nil); status != tt.want {
				t.Errorf("GET /listings/%s = %d, want %d", tt.slug, status, tt.want)
			}
		})
	}
}

func TestFeaturedListings(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	_, resp := env.do(t, http.MethodGet, "/listings/featured", nil)
	listings := resp["listings"].([]any)
	if len(listings) != 1 || listings[0].(map[string]any)["name"] != "Star" {
		t.Errorf("featured = %v, want only Star", listings)
	}
}

func TestBuilderPage(t *testing.T) {
	env := newTestEnv(t)

	if status, resp := env.do(t, http.MethodPost, "/submit", validSubmission(), withToken(validToken)); status != http.StatusCreated {
		t.Fatalf("submit status = %d (%v)", status, resp)
	}

	status, resp := env.do(t, http.MethodGet, "/builders/foo-labs", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	builder := resp["builder"].(map[string]any)
	if builder["name"] != "Foo Labs" {
		t.Errorf("builder name = %v, want Foo Labs", builder["name"])
	}
	if _, ok := builder["walletAddress"]; ok {
		t.Errorf("builder exposes walletAddress")
	}
	if listings, _ := builder["listings"].([]any); len(listings) != 0 {
		t.Errorf("builder listings = %d, want 0 while pending", len(listings))
	}

	if status, _ := env.do(t, http.MethodGet, "/builders/nobody", nil); status != http.StatusNotFound {
		t.Errorf("unknown builder status = %d, want 404", status)
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	_, resp := env.do(t, http.MethodGet, "/categories", nil)
	if got := len(resp["categories"].([]any)); got != 2 {
		t.Errorf("categories = %d, want 2", got)
	}
}

func TestNFTCheck(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantCode   int
		wantHolder bool
	}{
		{"holder", ownerWallet, http.StatusOK, true},
		{"holder upper case", "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", http.StatusOK, true},
		{"not a holder", linkedWallet, http.StatusOK, false},
		{"missing", "", http.StatusBadRequest, false},
		{"malformed", "0xnothex", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			status, resp := env.do(t, http.MethodGet, "/auth/nft-check?address="+tt.address, nil)
			if status != tt.wantCode {
				t.Fatalf("status = %d, want %d", status, tt.wantCode)
			}
			if status != http.StatusOK {
				return
			}
			if resp["isHolder"] != tt.wantHolder {
				t.Errorf("isHolder = %v, want %v", resp["isHolder"], tt.wantHolder)
			}
			if resp["checkedAt"] != "2023-11-14T22:13:20Z" {
				t.Errorf("checkedAt = %v, want RFC 3339 timestamp", resp["checkedAt"])
			}
		})
	}
}
