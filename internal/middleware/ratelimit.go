package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/metrics"
	"marketplace/internal/ratelimit"
)

// RateLimiter applies per-route fixed-window limits keyed by client address.
type RateLimiter struct {
	store      ratelimit.Store
	trustProxy bool
	logger     *zap.Logger
}

// NewRateLimiter creates a limiter over store.
func NewRateLimiter(store ratelimit.Store, trustProxy bool, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{store: store, trustProxy: trustProxy, logger: logger}
}

// Limit returns a handler enforcing rule. Store failures let the request
// through.
func (l *RateLimiter) Limit(rule ratelimit.Rule) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := rule.Key(ClientIP(c, l.trustProxy))

		res, err := l.store.Increment(c.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			l.logger.Warn("rate limit store unavailable", zap.String("rule", rule.Name), zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			metrics.RecordRateLimited(rule.Name)
			return apperr.New(apperr.RateLimited, "Too many requests. Please try again shortly.")
		}
		return c.Next()
	}
}

// ClientIP returns the caller's address. Forwarding headers are honored only
// behind a trusted proxy.
func ClientIP(c fiber.Ctx, trustProxy bool) string {
	if trustProxy {
		if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
