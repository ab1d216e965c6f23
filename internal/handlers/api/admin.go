package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"marketplace/internal/adminsession"
	"marketplace/internal/apperr"
	"marketplace/internal/middleware"
)

// AdminHandler handles admin login, status and logout.
type AdminHandler struct {
	sessions   *adminsession.Manager
	trustProxy bool
	logger     *zap.Logger
}

// NewAdminHandler creates a new admin session handler. trustProxy selects the
// client address logged for rejected logins.
func NewAdminHandler(sessions *adminsession.Manager, trustProxy bool, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{sessions: sessions, trustProxy: trustProxy, logger: logger}
}

// Login handles POST /admin. It exchanges the shared code for a session cookie.
func (h *AdminHandler) Login(c fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}

	code := strings.TrimSpace(body.Code)
	if code == "" {
		return apperr.Validationf("Admin code is required")
	}
	if !h.sessions.VerifyCode(code) {
		h.logger.Warn("admin login rejected", zap.String("ip", middleware.ClientIP(c, h.trustProxy)))
		return apperr.Unauthenticatedf("Invalid admin code")
	}

	token, expiry := h.sessions.Issue()
	c.Cookie(h.sessions.Cookie(token))

	h.logger.Info("admin session issued", zap.Time("expires_at", expiry))
	return jsonSuccess(c, nil)
}

// Status handles GET /admin.
func (h *AdminHandler) Status(c fiber.Ctx) error {
	return jsonSuccess(c, fiber.Map{
		"authenticated": h.sessions.Verify(c.Cookies(adminsession.CookieName)),
	})
}

// Logout handles DELETE /admin. It always succeeds.
func (h *AdminHandler) Logout(c fiber.Ctx) error {
	c.Cookie(h.sessions.ClearCookie())
	return jsonSuccess(c, nil)
}
