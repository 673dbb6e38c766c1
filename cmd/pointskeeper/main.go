// Package main provides the entry point for Pointskeeper.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/api"
	"github.com/pointskeeper/pointskeeper/internal/app"
	"github.com/pointskeeper/pointskeeper/internal/config"
	"github.com/pointskeeper/pointskeeper/internal/singleinstance"
	"github.com/pointskeeper/pointskeeper/internal/status"
	"github.com/pointskeeper/pointskeeper/internal/store"
	"github.com/pointskeeper/pointskeeper/internal/tracker"
	"github.com/pointskeeper/pointskeeper/internal/version"
)

func main() {
	// 1. Single instance check (Windows: mutex, other: no-op)
	release, ok, err := singleinstance.AcquireLock()
	if err != nil {
		log.Fatalf("Failed to acquire lock: %v", err)
	}
	if !ok {
		log.Println("Another instance is already running")
		os.Exit(1)
	}
	defer release()

	// 2. Load configuration (corrupt config falls back to defaults with warning)
	cfg, _ := config.LoadConfig()
	cfg = config.ApplyEnvOverrides(cfg)
	secrets, secretsStatus, err := config.LoadSecrets()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	// 3. Ensure LAN auth credentials if LAN mode is enabled
	updated, generatedPw, err := config.EnsureLanAuth(&secrets, cfg.LanEnabled)
	if err != nil {
		log.Fatalf("Failed to ensure LAN auth: %v", err)
	}

	// Only save if loaded successfully or file was missing (prevent overwrite on fallback)
	if updated && secretsStatus != config.SecretsFallback {
		if err := config.SaveSecrets(secrets); err != nil {
			log.Fatalf("Failed to save secrets: %v", err)
		}
		if generatedPw != "" {
			pwPath, err := config.WritePasswordFile(secrets.BasicAuthUsername, generatedPw)
			if err != nil {
				log.Printf("Warning: failed to write password file: %v", err)
				log.Println("=== GENERATED BASIC AUTH CREDENTIALS ===")
				log.Printf("Username: %s", secrets.BasicAuthUsername)
				log.Printf("Password: %s", generatedPw)
				log.Println("=========================================")
			} else {
				log.Println("=== BASIC AUTH CREDENTIALS GENERATED ===")
				log.Printf("Credentials saved to: %s", pwPath)
				log.Println("Delete this file after saving the credentials!")
				log.Println("=========================================")
			}
		}
	} else if updated && secretsStatus == config.SecretsFallback {
		log.Println("WARNING: Secrets file has errors; new credentials not saved to avoid data loss")
		log.Println("Please fix or delete secrets.json and restart")
	}

	// 4. Parse flags (port can override config)
	port := flag.Int("port", cfg.Port, "HTTP server port")
	flag.Parse()

	// 5. Open SQLite store
	dbPath := cfg.DBPath
	if dbPath == "" {
		if _, err := config.EnsureDataDir(); err != nil {
			log.Fatalf("Failed to ensure data directory: %v", err)
		}
		dbPath, err = config.DatabasePath()
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Periodic maintenance (skipped if ran recently)
	if ran, err := db.VacuumIfNeeded(ctx); err != nil {
		log.Printf("Warning: vacuum failed: %v", err)
	} else if ran {
		log.Println("Database vacuumed")
	}

	// 7. Status webhook (optional)
	var statusSender *status.WebhookSender
	if !secrets.StatusWebhookURL.IsEmpty() {
		statusSender = status.NewWebhookSender(secrets.StatusWebhookURL)
		log.Println("Status webhook enabled")
	} else {
		log.Println("Status webhook not configured")
	}

	// 8. Points tracker
	trk := tracker.New(db)

	// 9. Determine bind address
	host := "127.0.0.1"
	if cfg.LanEnabled {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, *port)

	// Build dependencies
	health := app.HealthService{Version: version.String()}
	leaderboards := &app.LeaderboardsService{Tracker: trk}
	summary := &app.SummaryService{Tracker: trk}
	channels := &app.ChannelsService{Tracker: trk}
	export := &app.ExportService{Tracker: trk}

	serverOpts := []api.ServerOption{
		api.WithLeaderboardsUsecase(leaderboards),
		api.WithSummaryUsecase(summary),
		api.WithChannelsUsecase(channels),
		api.WithExportUsecase(export),
	}

	// Enable Basic Auth and rate limiting for LAN mode
	// (credentials are guaranteed by EnsureLanAuth)
	var limiter *api.RateLimiter
	if cfg.LanEnabled {
		serverOpts = append(serverOpts, api.WithBasicAuth(secrets.BasicAuthUsername, secrets.BasicAuthPassword.Value()))
		limiter = api.NewRateLimiter(api.DefaultRateLimiterConfig())
		serverOpts = append(serverOpts, api.WithRateLimiter(limiter))
		log.Println("Basic Auth enabled for LAN mode")
	}

	server := api.NewServer(addr, health, serverOpts...)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Starting Pointskeeper v%s on %s", version.String(), addr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if statusSender != nil {
		notifyCtx, notifyCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := statusSender.Send(notifyCtx, fmt.Sprintf("Pointskeeper v%s started.", version.String())); err != nil {
			log.Printf("Warning: startup notification failed: %v", err)
		}
		notifyCancel()
	}

	// Wait for shutdown signal or server error
	select {
	case <-done:
		log.Println("Shutting down...")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}

	cancel()

	if limiter != nil {
		limiter.Stop()
	}

	if statusSender != nil {
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := statusSender.Send(notifyCtx, "Pointskeeper shutting down."); err != nil {
			log.Printf("Warning: shutdown notification failed: %v", err)
		}
		notifyCancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
