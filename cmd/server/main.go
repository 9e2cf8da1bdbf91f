package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"yuvai/internal/analysis"
	"yuvai/internal/config"
	"yuvai/internal/db"
	"yuvai/internal/email"
	"yuvai/internal/jobs"
	"yuvai/internal/metrics"
	"yuvai/internal/search"
	"yuvai/internal/server"
	"yuvai/internal/tasks"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if !cfg.IsDev() && len(cfg.SessionSecret) < 32 {
		log.Fatal("SESSION_SECRET must be at least 32 characters outside development")
	}

	lists, err := config.LoadCredibility(cfg.CredibilityFile)
	if err != nil {
		log.Fatalf("Failed to load credibility lists: %v", err)
	}
	log.Printf("Credibility lists v%d loaded (%d languages)", lists.Version, len(lists.Languages))

	// Initialize store
	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()
	log.Printf("Using %s account store", cfg.StoreDriver)

	metrics.Init(store)

	if cfg.SearchAPIKey == "" {
		log.Println("SEARCH_API_KEY is not set; every analysis will fail upstream")
	}

	// Background work
	queue := tasks.NewQueue(cfg.EmailWorkers, cfg.EmailQueueSize, slog.Default())
	notifier := email.NewNotifier(cfg, email.NewSender(cfg), queue)

	feeds := jobs.NewFeedRefresher(cfg.FeedURLs, cfg.FeedRefreshInterval)
	go feeds.Start(ctx)

	pruner := jobs.NewHistoryPruner(store, cfg.HistoryRetention, time.Hour)
	go pruner.Start(ctx)

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{
		Store:    store,
		Analyzer: analysis.New(lists, search.NewClient(cfg)),
		Notifier: notifier,
		News:     feeds,
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := queue.Close(drainCtx); err != nil {
		log.Printf("Email queue did not drain: %v", err)
	}
	log.Println("Server exited")
}
