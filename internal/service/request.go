package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/repository"
)

type requestService struct {
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	inventory   InventoryService
	emailSvc    EmailService
	now         Clock
	metrics     *metrics.Metrics
}

func NewRequestService(userRepo repository.UserRepository, requestRepo repository.RequestRepository, inventory InventoryService, emailSvc EmailService, now Clock, m *metrics.Metrics) RequestService {
	if now == nil {
		now = time.Now
	}
	return &requestService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		inventory:   inventory,
		emailSvc:    emailSvc,
		now:         now,
		metrics:     m,
	}
}

func (in *CreateRequestInput) normalize() error {
	in.Location = strings.TrimSpace(in.Location)
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Urgency == "" {
		in.Urgency = domain.UrgencyMedium
	}
	if !in.BloodType.Valid() {
		return domain.Validationf("invalid blood type %q", in.BloodType)
	}
	if in.Units < 1 {
		return domain.Validationf("units must be at least 1")
	}
	if in.Location == "" {
		return domain.Validationf("location is required")
	}
	if !in.Urgency.Valid() {
		return domain.Validationf("invalid urgency %q", in.Urgency)
	}
	return nil
}

func (s *requestService) Create(ctx context.Context, recipientID string, in CreateRequestInput) (*domain.BloodRequest, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient.Role != domain.RoleRecipient {
		return nil, domain.Forbiddenf("only recipients can request blood")
	}

	req := &domain.BloodRequest{
		RecipientID:    recipient.ID,
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
		BloodType:      in.BloodType,
		Units:          in.Units,
		Status:         domain.RequestStatusPending,
		Location:       in.Location,
		Urgency:        in.Urgency,
		Reason:         in.Reason,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	logger.InfoContext(ctx, "Blood request created", "request_id", req.ID, "recipient_id", recipient.ID,
		"blood_type", req.BloodType, "units", req.Units, "urgency", req.Urgency)
	return req, nil
}

func (s *requestService) SetStatus(ctx context.Context, requestID string, status domain.RequestStatus) (*domain.BloodRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Validationf("invalid request status %q", status)
	}
	if req.Status == status {
		return req, nil
	}
	if !req.Status.CanTransitionTo(status) {
		return nil, domain.Conflictf("cannot change request from %s to %s", req.Status, status)
	}

	if status == domain.RequestStatusFulfilled {
		if err := s.fulfil(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}
	if err := s.transition(ctx, req, status); err != nil {
		return nil, err
	}
	if status == domain.RequestStatusApproved {
		s.notifyApproved(ctx, req)
	}
	return req, nil
}

// fulfil debits inventory before recording the status, so a failed debit
// leaves the request retryable. A failed status write gives the units back.
func (s *requestService) fulfil(ctx context.Context, req *domain.BloodRequest) error {
	if _, err := s.inventory.Adjust(ctx, req.BloodType, -req.Units); err != nil {
		return fmt.Errorf("failed to debit inventory for request: %w", err)
	}
	if err := s.transition(ctx, req, domain.RequestStatusFulfilled); err != nil {
		if _, undoErr := s.inventory.Adjust(ctx, req.BloodType, req.Units); undoErr != nil {
			logger.ErrorContext(ctx, "Failed to restore inventory after status write failure",
				"request_id", req.ID, "blood_type", req.BloodType, "units", req.Units, "error", undoErr)
		}
		return err
	}
	return nil
}

func (s *requestService) transition(ctx context.Context, req *domain.BloodRequest, status domain.RequestStatus) error {
	updatedAt := s.now().UTC()
	if err := s.requestRepo.UpdateStatus(ctx, req.ID, status, updatedAt); err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	previous := req.Status
	req.Status = status
	req.UpdatedAt = updatedAt
	s.metrics.IncRequestTransition(string(status))
	logger.InfoContext(ctx, "Request status changed", "request_id", req.ID, "from", previous, "to", status)
	return nil
}

// notifyApproved emails the recipient. A failure never fails the transition.
func (s *requestService) notifyApproved(ctx context.Context, req *domain.BloodRequest) {
	if s.emailSvc == nil || req.RecipientEmail == "" {
		return
	}
	if err := s.emailSvc.SendRequestApproved(ctx, req.RecipientEmail, req.RecipientName, req); err != nil {
		s.metrics.IncNotificationFailure("request_approved")
		logger.WarnContext(ctx, "Failed to send request approval email", "request_id", req.ID, "error", err)
	}
}

func (s *requestService) Cancel(ctx context.Context, requestID, ownerID string) (*domain.BloodRequest, error) {
	req, err := s.Get(ctx, requestID, ownerID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, domain.Conflictf("only pending requests can be cancelled")
	}
	if err := s.transition(ctx, req, domain.RequestStatusCancelled); err != nil {
		return nil, err
	}
	return req, nil
}

// Get is owner-scoped: a request that belongs to someone else is reported as
// not found.
func (s *requestService) Get(ctx context.Context, requestID, ownerID string) (*domain.BloodRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RecipientID != ownerID {
		return nil, domain.NotFoundf("request not found")
	}
	return req, nil
}

func (s *requestService) ListMine(ctx context.Context, ownerID string) ([]domain.BloodRequest, error) {
	return s.List(ctx, domain.RequestFilter{RecipientID: ownerID})
}

func (s *requestService) List(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validationf("invalid request status %q", filter.Status)
	}
	requests, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	if requests == nil {
		requests = []domain.BloodRequest{}
	}
	return requests, nil
}

func (s *requestService) Recent(ctx context.Context, limit int32) ([]domain.BloodRequest, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.List(ctx, domain.RequestFilter{Limit: limit})
}
