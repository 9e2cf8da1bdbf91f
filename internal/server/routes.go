package server

import (
	"time"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yuvai/internal/db"
	"yuvai/internal/handlers"
	"yuvai/internal/handlers/api"
	"yuvai/internal/middleware"
	"yuvai/internal/models"
)

// NewsBoard is satisfied by *jobs.FeedRefresher.
type NewsBoard interface {
	Items() []models.NewsItem
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Store    db.Store
	Analyzer api.ClaimAnalyzer
	Notifier handlers.OTPNotifier
	News     NewsBoard
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(deps.Store)
	authLimiter := s.rateLimiter(10, time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Store, s.Cfg, deps.Notifier)
	homeHandler := handlers.NewHomeHandler(s.Cfg, deps.News)
	probeHandler := handlers.NewProbeHandler(deps.Store)
	analyzeHandler := api.NewAnalyzeHandler(deps.Analyzer, deps.Store)
	historyHandler := api.NewHistoryHandler(deps.Store)
	correctionHandler := api.NewCorrectionHandler(deps.Store)
	newsHandler := api.NewNewsHandler(deps.News)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth pages
	s.App.Get("/login", authHandler.ShowLogin)
	s.App.Post("/login", authLimiter, authHandler.Login)
	s.App.Get("/register", authHandler.ShowRegister)
	s.App.Post("/register", authLimiter, authHandler.Register)
	s.App.Get("/verify", authHandler.ShowVerify)
	s.App.Post("/verify", authLimiter, authHandler.Verify)
	s.App.Get("/logout", authHandler.Logout)

	// Frontend routes
	s.App.Get("/", authMiddleware.RequireAuth, homeHandler.Index)

	// JSON API
	apiGroup := s.App.Group("/api", authMiddleware.RequireAPIAuth)
	apiGroup.Post("/analyze", analyzeHandler.Analyze)
	apiGroup.Get("/history", historyHandler.List)
	apiGroup.Get("/news", newsHandler.List)
	apiGroup.Post("/corrections", correctionHandler.Create)
	apiGroup.Get("/corrections", authMiddleware.RequireAdmin, correctionHandler.List)

	// Form endpoint posted by the home page
	s.App.Post("/analyze", authMiddleware.RequireAPIAuth, analyzeHandler.Analyze)
}
