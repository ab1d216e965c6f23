package api

import (
	"net/http"
	"strings"
	"testing"
)

func validSubmission() map[string]any {
	return map[string]any{
		"walletAddress":    ownerWallet,
		"name":             "Foo Agent",
		"type":             "agent",
		"shortDescription": "An agent that does foo",
		"builderName":      "Foo Labs",
		"tags":             []string{" ai ", "", "ai", "agents"},
		"categories":       []string{"devtools"},
		"links":            map[string]string{"website": "https://foo.example"},
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		mutate   func(map[string]any)
		wantCode int
		wantErr  string
	}{
		{
			name:     "no credential",
			mutate:   func(map[string]any) {},
			wantCode: http.StatusUnauthorized,
			wantErr:  "UNAUTHENTICATED",
		},
		{
			name:     "invalid credential",
			token:    "forged",
			mutate:   func(map[string]any) {},
			wantCode: http.StatusUnauthorized,
			wantErr:  "UNAUTHENTICATED",
		},
		{
			name:     "missing wallet",
			token:    validToken,
			mutate:   func(b map[string]any) { delete(b, "walletAddress") },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "malformed wallet",
			token:    validToken,
			mutate:   func(b map[string]any) { b["walletAddress"] = "0x123" },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "not a holder",
			token:    validToken,
			mutate:   func(b map[string]any) { b["walletAddress"] = linkedWallet },
			wantCode: http.StatusForbidden,
			wantErr:  "FORBIDDEN",
		},
		{
			name:     "missing builder name",
			token:    validToken,
			mutate:   func(b map[string]any) { delete(b, "builderName") },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "invalid type",
			token:    validToken,
			mutate:   func(b map[string]any) { b["type"] = "plugin" },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "invalid status",
			token:    validToken,
			mutate:   func(b map[string]any) { b["status"] = "retired" },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "short description too long",
			token:    validToken,
			mutate:   func(b map[string]any) { b["shortDescription"] = strings.Repeat("x", 301) },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "javascript link",
			token:    validToken,
			mutate:   func(b map[string]any) { b["links"] = map[string]string{"demo": "javascript:alert(1)"} },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "invalid think fit value",
			token:    validToken,
			mutate:   func(b map[string]any) { b["thinkFit"] = map[string]any{"mind": map[string]string{"mind_runtime": "cloud"}} },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
		{
			name:     "unknown category",
			token:    validToken,
			mutate:   func(b map[string]any) { b["categories"] = []string{"astrology"} },
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body := validSubmission()
			tt.mutate(body)

			var opts []requestOpt
			if tt.token != "" {
				opts = append(opts, withToken(tt.token))
			}
			status, resp := env.do(t, http.MethodPost, "/submit", body, opts...)
			if status != tt.wantCode {
				t.Errorf("status = %d, want %d (%v)", status, tt.wantCode, resp)
			}
			if got := errorCode(resp); got != tt.wantErr {
				t.Errorf("code = %q, want %q", got, tt.wantErr)
			}
			if n := len(env.store.listings); n != 0 {
				t.Errorf("stored %d listings, want 0", n)
			}
		})
	}
}

func TestSubmitCreatesPendingListing(t *testing.T) {
	env := newTestEnv(t)

	body := validSubmission()
	body["walletAddress"] = "0x" + strings.ToUpper(ownerWallet[2:])
	body["status"] = "live"
	body["reviewState"] = "approved"
	body["visibility"] = "featured"

	status, resp := env.do(t, http.MethodPost, "/submit", body, withToken(validToken))
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", status, resp)
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	listing := resp["listing"].(map[string]any)
	if listing["status"] != "pending" {
		t.Errorf("listing.status = %v, want pending", listing["status"])
	}
	if listing["slug"] != "foo-agent" {
		t.Errorf("listing.slug = %v, want foo-agent", listing["slug"])
	}

	if len(env.store.listings) != 1 {
		t.Fatalf("stored %d listings, want 1", len(env.store.listings))
	}
	stored := env.store.listings[0]
	if stored.ReviewState != "pending" || stored.Visibility != "public" {
		t.Errorf("stored state = %s/%s, want pending/public", stored.ReviewState, stored.Visibility)
	}
	if stored.SubmitterWallet != ownerWallet {
		t.Errorf("SubmitterWallet = %q, want normalized %q", stored.SubmitterWallet, ownerWallet)
	}
	if stored.Status != "live" {
		t.Errorf("Status = %q, want live", stored.Status)
	}
	if got := strings.Join(stored.Tags, ","); got != "ai,agents" {
		t.Errorf("Tags = %q, want ai,agents", got)
	}

	builder := env.store.builders[0]
	if builder.WalletAddress == nil || *builder.WalletAddress != ownerWallet {
		t.Errorf("builder wallet = %v, want %s", builder.WalletAddress, ownerWallet)
	}
}
