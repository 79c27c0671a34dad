package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recshelf/internal/config"
	"recshelf/internal/db"
	"recshelf/internal/email"
	"recshelf/internal/handlers"
	"recshelf/internal/handlers/api"
	"recshelf/internal/middleware"
	"recshelf/internal/prefs"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, domains *config.DomainsConfig, prefsStore *prefs.Store, notifier *email.Notifier) error {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(s.SessionStore, database)

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(database, s.Cfg, domains, prefsStore)
	probeHandler := handlers.NewProbeHandler(database, s.Storage)

	recHandler := api.NewRecommendationHandler(database, s.Cfg, domains, prefsStore, notifier)
	collectionHandler := api.NewCollectionHandler(database, prefsStore)
	friendHandler := api.NewFriendHandler(database, notifier)
	userHandler := api.NewUserHandler(database)
	prefsHandler := api.NewPrefsHandler(prefsStore)

	// Auth routes - OIDC is always required for frontend access
	if s.Cfg.OIDCIssuer == "" {
		log.Fatal("OIDC_ISSUER is required. All users must be authenticated.")
	}

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
	if err != nil {
		return err
	}

	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Pages
	s.App.Get("/login", authMiddleware.OptionalAuth, pageHandler.Login)
	s.App.Get("/", authMiddleware.RequireAuth, pageHandler.Index)
	s.App.Get("/inbox", authMiddleware.RequireAuth, pageHandler.Inbox)
	s.App.Get("/sent", authMiddleware.RequireAuth, pageHandler.Sent)
	s.App.Get("/collection", authMiddleware.RequireAuth, pageHandler.Collection)
	s.App.Get("/profile", authMiddleware.RequireAuth, pageHandler.Profile)

	// Recommendation API
	apiGroup := s.App.Group("/api", authMiddleware.RequireAuth)
	apiGroup.Get("/recommendations", recHandler.List)
	apiGroup.Post("/recommendations", recHandler.Create)
	apiGroup.Post("/recommendations/reorder", recHandler.Reorder)
	apiGroup.Post("/recommendations/:id/open", recHandler.Open)
	apiGroup.Patch("/recommendations/:id/status", recHandler.SetStatus)
	apiGroup.Patch("/recommendations/:id/sender-comment", recHandler.SetSenderComment)
	apiGroup.Delete("/recommendations/:id", recHandler.Delete)

	// Collection API
	apiGroup.Get("/collection", collectionHandler.List)
	apiGroup.Post("/collection", collectionHandler.Create)
	apiGroup.Post("/collection/reorder", collectionHandler.Reorder)
	apiGroup.Put("/collection/:id", collectionHandler.Update)
	apiGroup.Delete("/collection/:id", collectionHandler.Delete)

	// Friends API
	apiGroup.Get("/friends", friendHandler.List)
	apiGroup.Get("/friends/requests", friendHandler.Requests)
	apiGroup.Get("/friends/summaries", friendHandler.Summaries)
	apiGroup.Post("/friends", friendHandler.Create)
	apiGroup.Post("/friends/:id/respond", friendHandler.Respond)
	apiGroup.Delete("/friends/:id", friendHandler.Delete)

	// User search and view preferences
	apiGroup.Get("/users/search", userHandler.Search)
	apiGroup.Get("/prefs/:view", prefsHandler.Get)
	apiGroup.Put("/prefs/:view", prefsHandler.Put)
	apiGroup.Delete("/prefs/:view", prefsHandler.Delete)

	return nil
}
