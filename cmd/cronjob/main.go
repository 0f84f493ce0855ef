package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/jobs"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/repository/postgres"
	"bloodbank-backend/internal/scheduler"
	"bloodbank-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-low-stock-alerts', 'send-donation-reminders', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Blood Bank Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	m := metrics.New(prometheus.NewRegistry())

	// Initialize Services
	var sender service.Sender
	if cfg.Email.APIKey == "" {
		sender = service.NewLogSender()
	} else {
		sender = service.NewSendGridSender(cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	}

	jobServices := &jobs.Services{
		Email:     service.NewEmailService(sender, cfg.Email.FrontendURL),
		Inventory: service.NewInventoryService(store.InventoryRepository, cfg.Inventory.LowStockThreshold, m),
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.UserRepository, store.DonationRepository, jobServices, cfg, m)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-low-stock-alerts":
		jobRunner.SendLowStockAlerts()
	case "send-donation-reminders":
		jobRunner.SendDonationReminders()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-low-stock-alerts\n")
		fmt.Printf("  - send-donation-reminders\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
