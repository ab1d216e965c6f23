// Package authz decides whether a wallet-authenticated caller may submit or
// edit a listing.
package authz

import (
	"context"
	"errors"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/db"
	"marketplace/internal/identity"
	"marketplace/internal/models"
	"marketplace/internal/tokengate"
	"marketplace/internal/validation"
)

// TokenVerifier verifies a bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*identity.Identity, error)
}

// HolderChecker reports token ownership. It never fails; errors mean false.
type HolderChecker interface {
	Check(ctx context.Context, address string) tokengate.Result
}

// ListingFinder loads a listing in any review state.
type ListingFinder interface {
	GetListingBySlug(ctx context.Context, slug string) (*models.Listing, error)
}

// Authorizer combines identity verification, token gating and ownership.
type Authorizer struct {
	verifier TokenVerifier
	gate     HolderChecker
}

// New creates an Authorizer. verifier may be nil when no identity provider is
// configured; every authentication then fails as an upstream failure.
func New(verifier TokenVerifier, gate HolderChecker) *Authorizer {
	return &Authorizer{verifier: verifier, gate: gate}
}

// Authenticate verifies the Authorization header value.
func (a *Authorizer) Authenticate(ctx context.Context, header string) (*identity.Identity, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, apperr.Unauthenticatedf("Authentication required")
	}
	if a.verifier == nil {
		return nil, apperr.New(apperr.UpstreamFailure, "Identity verification is not configured")
	}
	return a.verifier.Verify(ctx, strings.TrimSpace(raw))
}

// CanSubmit checks that the caller supplied a well-formed wallet that holds
// the gating token, and returns it normalized. Ownership is not checked since
// submission always creates a new listing.
func (a *Authorizer) CanSubmit(ctx context.Context, id *identity.Identity, wallet string) (string, error) {
	if id == nil {
		return "", apperr.Unauthenticatedf("Authentication required")
	}
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return "", apperr.Validationf("Wallet address required")
	}
	if !validation.IsWalletAddress(wallet) {
		return "", apperr.Validationf("Invalid wallet address format")
	}
	wallet = validation.NormalizeWallet(wallet)
	if !a.gate.Check(ctx, wallet).IsHolder {
		return "", apperr.Forbiddenf("NFT ownership required to submit listings")
	}
	return wallet, nil
}

// CanEdit resolves the listing identified by slug and checks, in order: the
// wallet was supplied, it is linked to the identity, the listing exists and
// it was submitted by that wallet. The token gate is not re-checked.
func CanEdit(ctx context.Context, id *identity.Identity, wallet, slug string, listings ListingFinder) (*models.Listing, error) {
	if id == nil {
		return nil, apperr.Unauthenticatedf("Authentication required")
	}
	if strings.TrimSpace(wallet) == "" {
		return nil, apperr.Validationf("Wallet address required")
	}
	normalized := validation.NormalizeWallet(wallet)
	if !id.HasWallet(normalized) {
		return nil, apperr.Forbiddenf("Wallet address does not match authenticated user")
	}

	listing, err := listings.GetListingBySlug(ctx, slug)
	if errors.Is(err, db.ErrListingNotFound) {
		return nil, apperr.NotFoundf("Listing not found")
	}
	if err != nil {
		return nil, err
	}

	if !IsOwner(normalized, listing) {
		return nil, apperr.Forbiddenf("You can only edit listings you submitted")
	}
	return listing, nil
}

// IsOwner reports whether wallet submitted listing.
func IsOwner(wallet string, listing *models.Listing) bool {
	return listing != nil && validation.NormalizeWallet(wallet) == validation.NormalizeWallet(listing.SubmitterWallet)
}
