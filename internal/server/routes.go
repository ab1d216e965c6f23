package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace/internal/adminsession"
	"marketplace/internal/authz"
	"marketplace/internal/handlers/api"
	"marketplace/internal/middleware"
	"marketplace/internal/ratelimit"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Store      api.Store
	Authorizer *authz.Authorizer
	Gate       api.HolderChecker
	Sessions   *adminsession.Manager
	Uploader   api.Uploader // nil disables POST /upload
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	// Per-route counters share the redis connection when one is configured.
	var counters ratelimit.Store = ratelimit.NewMemoryStore()
	if s.Redis != nil {
		counters = ratelimit.NewRedisStore(s.Redis.Conn())
	}

	// Initialize middleware
	auth := middleware.NewAuthMiddleware(d.Authorizer, d.Sessions)
	limit := middleware.NewRateLimiter(counters, s.Cfg.TrustProxy, s.Logger)

	// Initialize handlers
	publicHandler := api.NewPublicHandler(d.Store, d.Gate)
	submitHandler := api.NewSubmitHandler(d.Store, d.Authorizer, s.Logger)
	editHandler := api.NewEditHandler(d.Store, s.Logger)
	adminHandler := api.NewAdminHandler(d.Sessions, s.Cfg.TrustProxy, s.Logger)
	moderationHandler := api.NewModerationHandler(d.Store, s.Logger)
	healthHandler := api.NewHealthHandler(d.Store, s.Logger)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public reads
	s.App.Get("/listings", publicHandler.ListListings)
	s.App.Get("/listings/featured", publicHandler.Featured)
	s.App.Get("/listings/:slug", publicHandler.GetListing)
	s.App.Get("/builders/:slug", publicHandler.GetBuilder)
	s.App.Get("/categories", publicHandler.ListCategories)
	s.App.Get("/auth/nft-check", publicHandler.NFTCheck)

	// Wallet-authenticated routes
	s.App.Post("/submit", auth.RequireIdentity, submitHandler.Submit)
	s.App.Get("/listings/:slug/edit", limit.Limit(ratelimit.EditRead), auth.RequireIdentity, editHandler.Get)
	s.App.Post("/listings/:slug/edit", limit.Limit(ratelimit.EditWrite), auth.RequireIdentity, editHandler.Submit)

	if d.Uploader != nil {
		uploadHandler := api.NewUploadHandler(d.Uploader, d.Authorizer, s.Logger)
		s.App.Post("/upload", auth.RequireIdentity, uploadHandler.Upload)
	}

	// Admin session
	s.App.Post("/admin", limit.Limit(ratelimit.AdminLogin), adminHandler.Login)
	s.App.Get("/admin", adminHandler.Status)
	s.App.Delete("/admin", adminHandler.Logout)

	// Moderation routes (admin session only)
	s.App.Get("/admin/pending", auth.RequireAdmin, moderationHandler.ListPending)
	s.App.Post("/admin/listings/:id/approve", auth.RequireAdmin, moderationHandler.Approve)
	s.App.Post("/admin/listings/:id/reject", auth.RequireAdmin, moderationHandler.Reject)
	s.App.Post("/admin/listings/:id/update", auth.RequireAdmin, moderationHandler.Update)
	s.App.Post("/admin/listings/:id/delete", auth.RequireAdmin, moderationHandler.Delete)
	s.App.Get("/admin/edit-requests", auth.RequireAdmin, moderationHandler.ListEditRequests)
	s.App.Post("/admin/edit-requests/:id/approve", auth.RequireAdmin, moderationHandler.ApproveEditRequest)
	s.App.Post("/admin/edit-requests/:id/reject", auth.RequireAdmin, moderationHandler.RejectEditRequest)
}
