package jobs

import (
	"fmt"
	"time"

	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/repository"
	"bloodbank-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	users     repository.UserRepository
	donations repository.DonationRepository
	services  *Services
	config    *config.Config
	metrics   *metrics.Metrics
	now       service.Clock
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email     service.EmailService
	Inventory service.InventoryService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(users repository.UserRepository, donations repository.DonationRepository, services *Services, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		users:     users,
		donations: donations,
		services:  services,
		config:    cfg,
		metrics:   m,
		now:       time.Now,
	}
}

// Config exposes the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and records the
// outcome.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.metrics.IncJobRun(jobName, err)
	}()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendLowStockAlerts()
	jr.SendDonationReminders()
}
