package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "bloodbank-backend/internal/api/http"
	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/repository/postgres"
	"bloodbank-backend/internal/security"
	"bloodbank-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Blood Bank Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx := context.Background()

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	redisClient, err := security.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if redisClient == nil {
		logger.Warn("Redis not configured, logout will not revoke tokens")
	} else {
		defer redisClient.Close()
	}
	revocations := security.NewRevocationList(redisClient)

	// Initialize Email Service
	var sender service.Sender
	if cfg.Email.APIKey == "" {
		logger.Warn("SendGrid API key not set, emails will be logged only")
		sender = service.NewLogSender()
	} else {
		sender = service.NewSendGridSender(cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	}
	emailSvc := service.NewEmailService(sender, cfg.Email.FrontendURL)

	// Initialize Services
	inventorySvc := service.NewInventoryService(store.InventoryRepository, cfg.Inventory.LowStockThreshold, m)
	services := httpapi.Services{
		Auth:         service.NewAuthService(store.UserRepository, tokenManager, revocations, emailSvc, nil),
		User:         service.NewUserService(store.UserRepository, store.DonationRepository, store.RequestRepository),
		Inventory:    inventorySvc,
		Donation:     service.NewDonationService(store.UserRepository, store.DonationRepository, inventorySvc, m),
		Request:      service.NewRequestService(store.UserRepository, store.RequestRepository, inventorySvc, emailSvc, nil, m),
		Eligibility:  service.NewEligibilityService(store.UserRepository, store.DonationRepository, nil),
		Report:       service.NewReportService(store.UserRepository, store.DonationRepository, store.RequestRepository, store.InventoryRepository, cfg.Inventory.LowStockThreshold, nil),
		Notification: service.NewNotificationService(emailSvc, inventorySvc, nil, m),
	}

	router := httpapi.NewRouter(services, httpapi.RouterOptions{
		Auth:     httpapi.NewAuthenticator(tokenManager, revocations),
		Metrics:  m,
		Gatherer: registry,
		Health:   db.PingContext,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
