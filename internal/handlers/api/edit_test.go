package api

import (
	"net/http"
	"strings"
	"testing"

	"marketplace/internal/models"
)

func seedOwned(env *testEnv, reviewState string) *models.Listing {
	return env.store.addListing(models.Listing{
		Name:             "Foo",
		Slug:             "foo",
		ShortDescription: "old",
		SubmitterWallet:  ownerWallet,
		ReviewState:      reviewState,
		Categories:       []string{"devtools"},
	})
}

func TestEditAuthorization(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wallet   string
		slug     string
		wantCode int
		wantErr  string
	}{
		{"owner", validToken, ownerWallet, "foo", http.StatusOK, ""},
		{"owner mixed case", validToken, "0x" + strings.ToUpper(ownerWallet[2:]), "foo", http.StatusOK, ""},
		{"no credential", "", ownerWallet, "foo", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"wallet missing", validToken, "", "foo", http.StatusBadRequest, "VALIDATION"},
		{"wallet not linked to identity", validToken, unlinkedWallet, "foo", http.StatusForbidden, "FORBIDDEN"},
		{"linked wallet that did not submit", validToken, linkedWallet, "foo", http.StatusForbidden, "FORBIDDEN"},
		{"listing absent", validToken, ownerWallet, "missing", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedOwned(env, models.ReviewApproved)

			var opts []requestOpt
			if tt.token != "" {
				opts = append(opts, withToken(tt.token))
			}
			status, resp := env.do(t, http.MethodGet, "/listings/"+tt.slug+"/edit?walletAddress="+tt.wallet, nil, opts...)
			if status != tt.wantCode {
				t.Errorf("status = %d, want %d (%v)", status, tt.wantCode, resp)
			}
			if got := errorCode(resp); got != tt.wantErr {
				t.Errorf("code = %q, want %q", got, tt.wantErr)
			}
			if tt.wantErr == "" {
				listing := resp["listing"].(map[string]any)
				if listing["shortDescription"] != "old" {
					t.Errorf("shortDescription = %v, want old", listing["shortDescription"])
				}
			}
		})
	}
}

func editBody(short string) map[string]any {
	return map[string]any{
		"walletAddress":    ownerWallet,
		"name":             "Foo",
		"type":             "tool",
		"shortDescription": short,
		"tags":             []string{"x", " ", "y"},
	}
}

func TestEditSubmitSupersedesPending(t *testing.T) {
	env := newTestEnv(t)
	listing := seedOwned(env, models.ReviewApproved)

	for _, short := range []string{"first", "second"} {
		status, resp := env.do(t, http.MethodPost, "/listings/foo/edit", editBody(short), withToken(validToken))
		if status != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%v)", status, resp)
		}
	}

	pending := env.store.pendingEdits(listing.ID)
	if len(pending) != 1 {
		t.Fatalf("pending edit requests = %d, want 1", len(pending))
	}
	p := pending[0].ProposedChanges
	if p.ShortDescription == nil || *p.ShortDescription != "second" {
		t.Errorf("ShortDescription = %v, want second", p.ShortDescription)
	}
	if p.Tags == nil || strings.Join(*p.Tags, ",") != "x,y" {
		t.Errorf("Tags = %v, want [x y]", p.Tags)
	}
	if p.Categories != nil {
		t.Errorf("Categories = %v, want nil when not sent", *p.Categories)
	}
	if pending[0].RequesterWallet != ownerWallet {
		t.Errorf("RequesterWallet = %q, want %q", pending[0].RequesterWallet, ownerWallet)
	}

	// The listing itself is untouched until an admin approves.
	stored, _ := env.store.GetListingBySlug(t.Context(), "foo")
	if stored.ShortDescription != "old" {
		t.Errorf("listing ShortDescription = %q, want old", stored.ShortDescription)
	}
}

func TestEditSubmitValidation(t *testing.T) {
	tests := []struct {
		name        string
		reviewState string
		mutate      func(map[string]any)
		wantCode    int
		wantErr     string
	}{
		{"short description too long", models.ReviewApproved, func(b map[string]any) { b["shortDescription"] = strings.Repeat("y", 301) }, http.StatusBadRequest, "VALIDATION"},
		{"missing name", models.ReviewApproved, func(b map[string]any) { delete(b, "name") }, http.StatusBadRequest, "VALIDATION"},
		{"invalid type", models.ReviewApproved, func(b map[string]any) { b["type"] = "widget" }, http.StatusBadRequest, "VALIDATION"},
		{"invalid status", models.ReviewApproved, func(b map[string]any) { b["status"] = "done" }, http.StatusBadRequest, "VALIDATION"},
		{"pending listing", models.ReviewPending, func(map[string]any) {}, http.StatusBadRequest, "INVALID_STATE"},
		{"rejected listing", models.ReviewRejected, func(map[string]any) {}, http.StatusBadRequest, "INVALID_STATE"},
		{"unknown category", models.ReviewApproved, func(b map[string]any) { b["categories"] = []string{"devtools", "nope"} }, http.StatusBadRequest, "VALIDATION"},
		{"not the submitter", models.ReviewApproved, func(b map[string]any) { b["walletAddress"] = linkedWallet }, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			listing := seedOwned(env, tt.reviewState)

			body := editBody("new")
			tt.mutate(body)
			status, resp := env.do(t, http.MethodPost, "/listings/foo/edit", body, withToken(validToken))
			if status != tt.wantCode {
				t.Errorf("status = %d, want %d (%v)", status, tt.wantCode, resp)
			}
			if got := errorCode(resp); got != tt.wantErr {
				t.Errorf("code = %q, want %q", got, tt.wantErr)
			}
			if n := len(env.store.pendingEdits(listing.ID)); n != 0 {
				t.Errorf("pending edit requests = %d, want 0", n)
			}
		})
	}
}

func TestEditSubmitCategories(t *testing.T) {
	env := newTestEnv(t)
	listing := seedOwned(env, models.ReviewApproved)

	body := editBody("new")
	body["categories"] = []string{"productivity", "ghost", "devtools"}
	status, resp := env.do(t, http.MethodPost, "/listings/foo/edit", body, withToken(validToken))
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%v)", status, resp)
	}
	e, _ := resp["error"].(map[string]any)
	if e["message"] != "Unknown category: ghost" {
		t.Errorf("message = %v, want Unknown category: ghost", e["message"])
	}

	body["categories"] = []string{" devtools ", "productivity"}
	status, resp = env.do(t, http.MethodPost, "/listings/foo/edit", body, withToken(validToken))
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", status, resp)
	}
	pending := env.store.pendingEdits(listing.ID)
	if len(pending) != 1 || pending[0].ProposedChanges.Categories == nil {
		t.Fatalf("pending edit requests = %v, want one with categories", pending)
	}
	if got := strings.Join(*pending[0].ProposedChanges.Categories, ","); got != "devtools,productivity" {
		t.Errorf("Categories = %s, want devtools,productivity", got)
	}
}
