package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recshelf/internal/config"
	"recshelf/internal/db"
	"recshelf/internal/email"
	"recshelf/internal/jobs"
	"recshelf/internal/metrics"
	"recshelf/internal/prefs"
	"recshelf/internal/server"
)

func main() {
	cfg := config.Load()

	domainsCfg, err := config.LoadDomainsConfig()
	if err != nil {
		log.Fatalf("Failed to load domains config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	srv := server.New(cfg)

	// View preferences share the session storage when Redis is configured.
	var prefsBackend prefs.Storage
	if srv.Storage != nil {
		prefsBackend = srv.Storage
	} else {
		prefsBackend = prefs.NewMemoryStorage()
	}
	prefsStore := prefs.New(prefsBackend, 2*time.Second)

	metrics.Init(database)

	notifier := email.NewNotifier(cfg, database)

	janitor := jobs.NewJanitor(database, time.Duration(cfg.JanitorIntervalMinutes)*time.Minute)
	go janitor.Start(ctx)

	if err := srv.RegisterRoutes(ctx, database, domainsCfg, prefsStore, notifier); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	prefsStore.Flush()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}
