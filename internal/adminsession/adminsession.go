// Package adminsession implements the shared-secret admin login and the
// signed session envelope carried in the admin cookie.
package adminsession

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	// CookieName is the admin session cookie.
	CookieName = "admin_session"
	// Lifetime is the fixed session duration.
	Lifetime = 24 * time.Hour

	role = "admin"
)

// envelope is the transported session token.
type envelope struct {
	Payload   string `json:"payload"` // "admin:<unix-ms expiry>"
	Signature string `json:"signature"`
	Expiry    int64  `json:"expiry"`
}

// Manager issues and verifies admin sessions.
type Manager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// New creates a manager. An empty secret disables admin login entirely.
// secure controls the cookie Secure attribute.
func New(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure, now: time.Now}
}

// Enabled reports whether a secret is configured.
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// VerifyCode compares code against the secret in constant time.
func (m *Manager) VerifyCode(code string) bool {
	if !m.Enabled() || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), m.secret) == 1
}

// Issue returns a new session token and its expiry.
func (m *Manager) Issue() (string, time.Time) {
	expiry := m.now().Add(Lifetime)
	payload := role + ":" + strconv.FormatInt(expiry.UnixMilli(), 10)

	data, _ := json.Marshal(envelope{
		Payload:   payload,
		Signature: m.sign(payload),
		Expiry:    expiry.UnixMilli(),
	})
	return base64.StdEncoding.EncodeToString(data), expiry
}

// Verify reports whether token is a valid, unexpired session. Any decoding
// problem counts as invalid.
func (m *Manager) Verify(token string) bool {
	if !m.Enabled() || token == "" {
		return false
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}

	if !hmac.Equal([]byte(env.Signature), []byte(m.sign(env.Payload))) {
		return false
	}

	// The signed payload is authoritative; the outer expiry field is not signed.
	gotRole, ms, ok := strings.Cut(env.Payload, ":")
	if !ok || gotRole != role {
		return false
	}
	expiry, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return false
	}
	return m.now().UnixMilli() < expiry
}

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Cookie builds the session cookie for token.
func (m *Manager) Cookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(Lifetime.Seconds()),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// ClearCookie builds a cookie that removes the session.
func (m *Manager) ClearCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
