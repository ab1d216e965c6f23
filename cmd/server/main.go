package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/adminsession"
	"marketplace/internal/authz"
	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/identity"
	"marketplace/internal/logging"
	"marketplace/internal/metrics"
	"marketplace/internal/models"
	"marketplace/internal/server"
	"marketplace/internal/storage"
	"marketplace/internal/tokengate"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("migrations completed")

	if cfg.SeedCategories {
		taxonomy, err := config.LoadTaxonomy(cfg.TaxonomyFile)
		if err != nil {
			logger.Fatal("failed to load taxonomy", zap.String("path", cfg.TaxonomyFile), zap.Error(err))
		}
		if err := database.SeedCategories(ctx, categoriesFrom(taxonomy)); err != nil {
			logger.Fatal("failed to seed categories", zap.Error(err))
		}
		logger.Info("categories seeded", zap.Int("count", len(taxonomy.Categories)))
	}

	metrics.Init(database, logger)

	// Identity verification is optional so the public catalog can run alone.
	var verifier authz.TokenVerifier
	if cfg.IsIdentityConfigured() {
		v, err := identity.New(ctx, identity.Config{
			AppID:           cfg.PrivyAppID,
			Issuer:          cfg.IdentityIssuer,
			VerificationKey: cfg.IdentityVerificationKey,
			JWKSURL:         cfg.IdentityJWKSURL,
		})
		if err != nil {
			logger.Fatal("failed to initialize identity verifier", zap.Error(err))
		}
		verifier = v
	} else {
		logger.Warn("identity provider not configured, wallet-authenticated routes will fail")
	}

	gate := tokengate.New(tokengate.Config{
		RPCURL:          cfg.EthereumRPCURL,
		ContractAddress: cfg.NFTContractAddress,
		Timeout:         cfg.RPCTimeout,
	}, logger)
	if cfg.NFTContractAddress == "" {
		logger.Warn("NFT_CONTRACT_ADDRESS not set, every holder check will fail")
	}

	sessions := adminsession.New(cfg.AdminSecretCode, !cfg.IsDev())
	if !sessions.Enabled() {
		logger.Warn("ADMIN_SECRET_CODE not set, admin login is disabled")
	}

	deps := server.Deps{
		Store:      database,
		Authorizer: authz.New(verifier, gate),
		Gate:       gate,
		Sessions:   sessions,
	}

	if cfg.IsStorageEnabled() {
		uploader, err := storage.NewS3Storage(ctx, storage.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			UseSSL:          cfg.S3UseSSL,
			PublicURL:       cfg.S3PublicURL,
		}, logger)
		if err != nil {
			logger.Fatal("failed to initialize blob storage", zap.Error(err))
		}
		deps.Uploader = uploader
	} else {
		logger.Info("blob storage not configured, uploads disabled")
	}

	srv := server.New(cfg, logger)
	srv.RegisterRoutes(deps)

	// Graceful shutdown
	startErr := make(chan error, 1)
	go func() {
		startErr <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-startErr:
		if err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
		return
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func categoriesFrom(t *config.Taxonomy) []models.Category {
	out := make([]models.Category, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, models.Category{
			Slug:        c.Slug,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
		})
	}
	return out
}
