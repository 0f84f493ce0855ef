package jobs

import (
	"context"
	"fmt"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
)

// SendDonationReminders emails every donor with a donation scheduled for the
// next calendar day (UTC).
func (jr *JobRunner) SendDonationReminders() {
	_ = jr.runWithRecovery("SendDonationReminders", func() error {
		ctx := context.Background()

		today := jr.now().UTC().Truncate(24 * time.Hour)
		from := today.AddDate(0, 0, 1)
		until := today.AddDate(0, 0, 2)

		donations, err := jr.donations.List(ctx, domain.DonationFilter{
			Status: domain.DonationStatusScheduled,
			Since:  &from,
			Until:  &until,
		})
		if err != nil {
			return fmt.Errorf("failed to query tomorrow's donations: %w", err)
		}

		sent := 0
		for i := range donations {
			d := &donations[i]
			donor, err := jr.users.GetByID(ctx, d.DonorID)
			if err != nil {
				logger.Error("Failed to load donor for reminder", "donation_id", d.ID, "donor_id", d.DonorID, "error", err)
				continue
			}
			if err := jr.services.Email.SendDonationReminder(ctx, donor.Email, donor.Name, d); err != nil {
				jr.metrics.IncNotificationFailure("donation_reminder")
				logger.Error("Failed to send donation reminder",
					"donation_id", d.ID,
					"donor_id", donor.ID,
					"email", donor.Email,
					"error", err)
				continue
			}
			sent++
			logger.Debug("Sent donation reminder", "donation_id", d.ID, "donor_id", donor.ID)
		}

		logger.Info("Donation reminders sent", "scheduled", len(donations), "sent", sent)
		return nil
	})
}

// SendLowStockAlerts emails each admin one alert per blood type at or below
// the configured threshold.
func (jr *JobRunner) SendLowStockAlerts() {
	_ = jr.runWithRecovery("SendLowStockAlerts", func() error {
		ctx := context.Background()

		alerts, err := jr.services.Inventory.LowStock(ctx, jr.config.Inventory.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("failed to compute low stock: %w", err)
		}
		if len(alerts) == 0 {
			logger.Info("No low stock alerts to send")
			return nil
		}

		admins, err := jr.users.List(ctx, domain.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to list admins: %w", err)
		}

		sent, failed := 0, 0
		for _, alert := range alerts {
			for _, admin := range admins {
				if err := jr.services.Email.SendLowStockAlert(ctx, admin.Email, alert); err != nil {
					failed++
					jr.metrics.IncNotificationFailure("low_stock_alert")
					logger.Error("Failed to send low stock alert",
						"blood_type", alert.BloodType,
						"admin_id", admin.ID,
						"error", err)
					continue
				}
				sent++
			}
		}

		logger.Info("Low stock alerts sent", "alerts", len(alerts), "admins", len(admins), "sent", sent, "failed", failed)
		return nil
	})
}
