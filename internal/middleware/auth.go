package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"marketplace/internal/adminsession"
	"marketplace/internal/apperr"
	"marketplace/internal/identity"
)

const identityKey = "identity"

// Authenticator verifies an Authorization header value.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*identity.Identity, error)
}

// AuthMiddleware guards routes with wallet identity or the admin session.
// The two schemes are independent and composed per route.
type AuthMiddleware struct {
	auth     Authenticator
	sessions *adminsession.Manager
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(auth Authenticator, sessions *adminsession.Manager) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, sessions: sessions}
}

// RequireIdentity verifies the bearer token and stores the identity for the
// handler.
func (m *AuthMiddleware) RequireIdentity(c fiber.Ctx) error {
	id, err := m.auth.Authenticate(c.Context(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(identityKey, id)
	return c.Next()
}

// RequireAdmin ensures a valid admin session cookie is present.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	if !m.IsAdmin(c) {
		return apperr.Unauthenticatedf("Admin authentication required")
	}
	return c.Next()
}

// IsAdmin reports whether the request carries a valid admin session.
func (m *AuthMiddleware) IsAdmin(c fiber.Ctx) bool {
	return m.sessions.Verify(c.Cookies(adminsession.CookieName))
}

// IdentityFrom returns the identity stored by RequireIdentity.
func IdentityFrom(c fiber.Ctx) *identity.Identity {
	id, _ := c.Locals(identityKey).(*identity.Identity)
	return id
}
