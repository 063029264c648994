// Package main is the entry point for the camp lodging manager server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/camp-lodging-manager/backend/internal/api"
	"github.com/camp-lodging-manager/backend/internal/assignment"
	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/memory"
	"github.com/camp-lodging-manager/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// A missing .env file is fine; flags and real env still apply.
	godotenv.Load()

	addr := flag.String("addr", envOr("ADDR", ":8090"), "HTTP server address")
	dataDir := flag.String("data", envOr("DATA_DIR", "./data"), "Data directory for SQLite database")
	staticDir := flag.String("static", envOr("STATIC_DIR", "./static"), "Directory for static frontend files")
	storeKind := flag.String("store", envOr("STORE", "sqlite"), "Backing store: sqlite or memory")
	sweepInterval := flag.Int("sweep-interval", envOrInt("SWEEP_INTERVAL_MIN", 0), "Auto-assign sweep interval in minutes (0 disables)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting camp lodging manager (version: %s)...", version)

	var (
		store storage.Store
		db    *storage.DB
	)
	switch *storeKind {
	case "memory":
		store = memory.NewStore()
		log.Println("Using in-memory store")
	case "sqlite":
		if err := os.MkdirAll(*dataDir, 0o755); err != nil {
			log.Fatalf("Failed to create data directory %q: %v", *dataDir, err)
		}
		var err error
		db, err = storage.NewDB(*dataDir + "/camp-lodging-manager.db")
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		if err := storage.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations complete")

		sqlStore := storage.NewSQLStore(db)
		if err := sqlStore.SeedTopology(context.Background()); err != nil {
			log.Fatalf("Failed to seed bungalow topology: %v", err)
		}
		store = sqlStore
	default:
		log.Fatalf("Unknown store %q, expected sqlite or memory", *storeKind)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	broadcaster := websocket.NewEventBroadcaster(hub)
	engine := assignment.NewEngine(store, broadcaster)

	// Periodic auto-assign sweep, off by default
	sweeper := assignment.NewSweeper(engine, *sweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Printf("Warning: Failed to start auto-assign sweeper: %v", err)
	}

	router := api.NewRouter(store, db, engine, hub, *staticDir)

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
