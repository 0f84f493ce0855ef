package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
)

type notificationService struct {
	emailSvc  EmailService
	inventory InventoryService
	now       Clock
	metrics   *metrics.Metrics
}

func NewNotificationService(emailSvc EmailService, inventory InventoryService, now Clock, m *metrics.Metrics) NotificationService {
	if now == nil {
		now = time.Now
	}
	return &notificationService{emailSvc: emailSvc, inventory: inventory, now: now, metrics: m}
}

func broadcastSubject(t domain.NotificationType, bt domain.BloodType) string {
	switch t {
	case domain.NotificationLowStock:
		return fmt.Sprintf("Urgent: %s blood needed", bt)
	case domain.NotificationDonationDrive:
		return "Upcoming blood donation drive"
	default:
		return brandName + " update"
	}
}

// Broadcast emails each recipient in turn. Individual failures are logged and
// counted; the call itself only fails on invalid input.
func (s *notificationService) Broadcast(ctx context.Context, in BroadcastInput) (*domain.BroadcastResult, error) {
	in.Message = strings.TrimSpace(in.Message)
	if in.Message == "" {
		return nil, domain.Validationf("message is required")
	}
	if len(in.Recipients) == 0 {
		return nil, domain.Validationf("at least one recipient is required")
	}
	if in.BloodType != "" && !in.BloodType.Valid() {
		return nil, domain.Validationf("invalid blood type %q", in.BloodType)
	}
	if in.Type == "" {
		in.Type = domain.NotificationGeneral
	}

	result := &domain.BroadcastResult{Type: in.Type, Recipients: len(in.Recipients)}
	subject := broadcastSubject(in.Type, in.BloodType)
	for _, to := range in.Recipients {
		to = strings.TrimSpace(to)
		if to == "" {
			result.Failed++
			continue
		}
		if err := s.emailSvc.SendBroadcast(ctx, to, subject, in.Message); err != nil {
			result.Failed++
			s.metrics.IncNotificationFailure("broadcast")
			logger.WarnContext(ctx, "Broadcast delivery failed", "to", to, "error", err)
			continue
		}
		result.Sent++
	}
	logger.InfoContext(ctx, "Broadcast sent", "type", in.Type, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

// LowStockFeed derives admin notifications from the current low-stock alerts.
func (s *notificationService) LowStockFeed(ctx context.Context) ([]domain.Notification, error) {
	alerts, err := s.inventory.LowStock(ctx, 0)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	feed := make([]domain.Notification, 0, len(alerts))
	for _, a := range alerts {
		feed = append(feed, domain.Notification{
			ID:        "low-stock-" + string(a.BloodType),
			Type:      domain.NotificationLowStock,
			Message:   fmt.Sprintf("Blood type %s is running low (%d units remaining)", a.BloodType, a.CurrentUnits),
			BloodType: a.BloodType,
			Timestamp: now,
		})
	}
	return feed, nil
}
