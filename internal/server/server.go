package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	redisstore "github.com/gofiber/storage/redis/v3"
	"go.uber.org/zap"

	"marketplace/internal/apperr"
	"marketplace/internal/config"
	"marketplace/internal/handlers/api"
	"marketplace/internal/logging"
	"marketplace/internal/metrics"
	"marketplace/internal/middleware"
)

// bodyLimit leaves room for a 5 MB upload plus multipart framing.
const bodyLimit = 6 << 20

// Server wraps the Fiber app and configuration.
type Server struct {
	App    *fiber.App
	Cfg    *config.Config
	Logger *zap.Logger

	// Redis is the shared limiter storage, nil when REDIS_URL is unset.
	Redis *redisstore.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "marketplace",
		BodyLimit:    bodyLimit,
		ErrorHandler: api.ErrorHandler(logger),
	})

	s := &Server{App: app, Cfg: cfg, Logger: logger}

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logging.Middleware(logger, cfg.TrustProxy))

	// CORS middleware
	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(corsOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if cfg.RedisURL != "" {
		s.Redis = redisstore.New(redisstore.Config{URL: cfg.RedisURL})
		logger.Info("using redis for rate limit counters")
	}

	// Rate limiting middleware - GLOBAL_RATE_LIMIT requests per minute per client
	if cfg.GlobalRateLimit > 0 {
		limiterCfg := limiter.Config{
			Max:        cfg.GlobalRateLimit,
			Expiration: 1 * time.Minute,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/healthz" || c.Path() == "/metrics"
			},
			KeyGenerator: func(c fiber.Ctx) string {
				return middleware.ClientIP(c, cfg.TrustProxy)
			},
			LimitReached: func(c fiber.Ctx) error {
				metrics.RecordRateLimited("global")
				return apperr.New(apperr.RateLimited, "Rate limit exceeded. Please try again later.")
			},
		}
		if s.Redis != nil {
			limiterCfg.Storage = s.Redis
		}
		app.Use(limiter.New(limiterCfg))
	}

	return s
}

// Start starts the server with the configured address and TLS settings.
func (s *Server) Start() error {
	if s.Cfg.TLSEnabled {
		tlsConfig, err := buildTLSConfig(s.Cfg)
		if err != nil {
			return err
		}
		// fiber loads the certificate pair before calling TLSConfigFunc, so
		// only the policy fields are copied over.
		listenConfig := fiber.ListenConfig{
			CertFile:    s.Cfg.TLSCertFile,
			CertKeyFile: s.Cfg.TLSKeyFile,
			TLSConfigFunc: func(tc *tls.Config) {
				tc.MinVersion = tlsConfig.MinVersion
				tc.ClientCAs = tlsConfig.ClientCAs
				tc.ClientAuth = tlsConfig.ClientAuth
			},
			DisableStartupMessage: !s.Cfg.IsDev(),
		}
		s.Logger.Info("starting server with TLS",
			zap.String("addr", s.Cfg.ServerAddr),
			zap.Bool("mtls", s.Cfg.TLSCAFile != ""),
		)
		return s.App.Listen(s.Cfg.ServerAddr, listenConfig)
	}
	s.Logger.Info("starting server", zap.String("addr", s.Cfg.ServerAddr))
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: !s.Cfg.IsDev()})
}

// Shutdown gracefully shuts down the server and releases the limiter storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.App.ShutdownWithContext(ctx)
	if s.Redis != nil {
		if cerr := s.Redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// buildTLSConfig creates a TLS config, requiring client certificates when a
// CA file is provided.
func buildTLSConfig(cfg *config.Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate %s", cfg.TLSCAFile)
		}

		tlsConfig.ClientCAs = caCertPool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsConfig, nil
}
