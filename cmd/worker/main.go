package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/clinichq/admin-api/internal/config"
	"github.com/clinichq/admin-api/internal/notify"
	"github.com/clinichq/admin-api/internal/repository/postgres"
)

func main() {
	log.Println("Starting ClinicHQ notification worker...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Notify.Enabled {
		log.Fatal("Notification worker is disabled in config (notify.enabled)")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender, err := notify.NewSESSender(ctx, cfg.Notify)
	if err != nil {
		log.Fatalf("Failed to initialize SES sender: %v", err)
	}

	queue := postgres.NewNotificationRepo(db)
	worker := notify.NewWorker(queue, sender, cfg.Notify.BatchSize,
		time.Duration(cfg.Notify.IntervalSeconds)*time.Second)
	if err := worker.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker running...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	cancel()
	worker.Stop()
	log.Println("Worker stopped")
}
