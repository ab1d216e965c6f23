// Package identity verifies bearer tokens issued by the wallet identity
// provider and extracts the user id and linked wallet addresses.
package identity

import (
	"context"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"marketplace/internal/apperr"
	"marketplace/internal/validation"
)

// Identity is a verified caller.
type Identity struct {
	UserID  string
	Wallets []string // lowercase
}

// HasWallet reports whether addr is linked to the identity.
func (i *Identity) HasWallet(addr string) bool {
	return slices.Contains(i.Wallets, validation.NormalizeWallet(addr))
}

// Config configures a Verifier.
type Config struct {
	AppID string
	// Issuer is a substring accepted in the iss claim when aud does not carry AppID.
	Issuer string
	// VerificationKey is a PEM public key. When empty JWKSURL is used.
	VerificationKey string
	JWKSURL         string
	// Now overrides the clock for expiry checks.
	Now func() time.Time
}

// Verifier checks token signatures and expiry.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
	appID    string
	issuer   string
}

// New builds a Verifier from a static PEM key or a remote key set.
func New(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.AppID == "" {
		return nil, errors.New("identity: app id is required")
	}

	var keySet oidc.KeySet
	switch {
	case cfg.VerificationKey != "":
		key, err := parsePublicKey([]byte(cfg.VerificationKey))
		if err != nil {
			return nil, err
		}
		keySet = &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key}}
	case cfg.JWKSURL != "":
		keySet = oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	default:
		return nil, errors.New("identity: a verification key or JWKS URL is required")
	}

	verifier := oidc.NewVerifier("", keySet, &oidc.Config{
		SkipClientIDCheck:    true,
		SkipIssuerCheck:      true,
		SupportedSigningAlgs: []string{oidc.ES256, oidc.RS256},
		Now:                  cfg.Now,
	})

	return &Verifier{verifier: verifier, appID: cfg.AppID, issuer: cfg.Issuer}, nil
}

func parsePublicKey(pemData []byte) (crypto.PublicKey, error) {
	if ec, err := jwt.ParseECPublicKeyFromPEM(pemData); err == nil {
		return ec, nil
	}
	rsa, err := jwt.ParseRSAPublicKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("identity: unsupported verification key: %w", err)
	}
	return rsa, nil
}

// Verify checks signature, expiry and audience of raw and returns the
// identity it was issued for.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, apperr.Unauthenticatedf("Authentication required")
	}

	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		// Key set fetch failures are the provider's fault, not the caller's.
		if strings.Contains(err.Error(), "fetching keys") {
			return nil, apperr.Wrap(err, apperr.UpstreamFailure, "Identity provider unavailable")
		}
		return nil, apperr.Wrap(err, apperr.Unauthenticated, "Invalid or expired token")
	}

	if !v.audienceMatches(token) {
		return nil, apperr.Unauthenticatedf("Token was not issued for this application")
	}
	if token.Subject == "" {
		return nil, apperr.Unauthenticatedf("Token has no subject")
	}

	var claims json.RawMessage
	if err := token.Claims(&claims); err != nil {
		return nil, apperr.Wrap(err, apperr.Unauthenticated, "Malformed token claims")
	}

	return &Identity{
		UserID:  token.Subject,
		Wallets: linkedWallets(claims),
	}, nil
}

func (v *Verifier) audienceMatches(token *oidc.IDToken) bool {
	if slices.Contains(token.Audience, v.appID) {
		return true
	}
	return v.issuer != "" && strings.Contains(token.Issuer, v.issuer)
}

// linkedWallets reads wallet addresses from the linked_accounts claim, which
// the provider sends either as an array or as a JSON-encoded string.
func linkedWallets(claims []byte) []string {
	accounts := gjson.GetBytes(claims, "linked_accounts")
	if accounts.Type == gjson.String {
		accounts = gjson.Parse(accounts.String())
	}

	wallets := []string{}
	accounts.ForEach(func(_, account gjson.Result) bool {
		if account.Get("type").String() != "wallet" {
			return true
		}
		addr := validation.NormalizeWallet(account.Get("address").String())
		if addr != "" && !slices.Contains(wallets, addr) {
			wallets = append(wallets, addr)
		}
		return true
	})
	return wallets
}
