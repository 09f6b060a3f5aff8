package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/clinichq/admin-api/internal/airtable"
	"github.com/clinichq/admin-api/internal/api"
	"github.com/clinichq/admin-api/internal/archive"
	"github.com/clinichq/admin-api/internal/auth"
	"github.com/clinichq/admin-api/internal/cache"
	"github.com/clinichq/admin-api/internal/config"
	"github.com/clinichq/admin-api/internal/pkg/distlock"
	"github.com/clinichq/admin-api/internal/repository/postgres"
	"github.com/clinichq/admin-api/internal/service/dedup"
	"github.com/clinichq/admin-api/internal/service/leadimport"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Starting ClinicHQ admin API...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unreachable (%v); falling back to PG advisory locks, cache off", err)
			redisClient = nil
		} else {
			log.Printf("Connected to Redis at %s", cfg.Redis.Addr)
		}
	}

	leadRepo := postgres.NewLeadRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	financeRepo := postgres.NewFinanceRepo(db)
	reservationRepo := postgres.NewReservationRepo(db)

	lockTTL := time.Duration(cfg.Dedup.LockTTLMinutes) * time.Minute
	lockFor := func(key string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, lockTTL)
	}

	importService := leadimport.NewService(leadRepo, lockFor, cfg.Import.BatchSize, cfg.Import.BatchDelay())
	dedupService := dedup.NewService(leadRepo, lockFor)

	var puller api.FeedPuller
	if cfg.Import.Airtable.APIKey != "" && cfg.Import.Airtable.BaseID != "" {
		puller = airtable.NewClient(cfg.Import.Airtable, nil)
		log.Printf("Airtable pull feed configured (base %s, table %s)",
			cfg.Import.Airtable.BaseID, cfg.Import.Airtable.Table)
	}

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		archiver, err = archive.New(context.Background(), cfg.Archive.S3Bucket, cfg.Archive.S3Region)
		if err != nil {
			log.Fatalf("Failed to initialize import archive: %v", err)
		}
		log.Printf("Import payload archival enabled (bucket %s)", cfg.Archive.S3Bucket)
	}

	metricsCache := cache.NewMetricsCache(redisClient, cfg.Cache.TTL())

	baseURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	if envURL := os.Getenv("AUTH_BASE_URL"); envURL != "" {
		baseURL = envURL
	}
	authManager := auth.NewManager(cfg.Auth, baseURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	authManager.CleanupExpiredSessions(ctx)

	server := api.NewServer(
		leadRepo, catalogRepo, financeRepo, reservationRepo,
		importService, dedupService, puller,
		metricsCache, archiver, authManager,
		cfg.Server.AllowedOrigins,
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
