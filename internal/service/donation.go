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

const defaultRecentLimit = 5

type donationService struct {
	userRepo     repository.UserRepository
	donationRepo repository.DonationRepository
	inventory    InventoryService
	metrics      *metrics.Metrics
}

func NewDonationService(userRepo repository.UserRepository, donationRepo repository.DonationRepository, inventory InventoryService, m *metrics.Metrics) DonationService {
	return &donationService{
		userRepo:     userRepo,
		donationRepo: donationRepo,
		inventory:    inventory,
		metrics:      m,
	}
}

// Schedule books a donation with the donor's current blood type. Eligibility
// is advisory and is not checked here.
func (s *donationService) Schedule(ctx context.Context, donorID string, date time.Time, location string) (*domain.Donation, error) {
	location = strings.TrimSpace(location)
	if date.IsZero() {
		return nil, domain.Validationf("donation date is required")
	}
	if location == "" {
		return nil, domain.Validationf("location is required")
	}

	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if donor.Role != domain.RoleDonor {
		return nil, domain.Forbiddenf("only donors can schedule donations")
	}
	if !donor.BloodType.Valid() {
		return nil, domain.Validationf("set a blood type on your profile before scheduling")
	}

	d := &domain.Donation{
		DonorID:   donor.ID,
		DonorName: donor.Name,
		Date:      date.UTC(),
		Status:    domain.DonationStatusScheduled,
		Location:  location,
		BloodType: donor.BloodType,
		Units:     1,
	}
	if err := s.donationRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	logger.InfoContext(ctx, "Donation scheduled", "donation_id", d.ID, "donor_id", donor.ID, "date", d.Date)
	return d, nil
}

func (s *donationService) SetStatus(ctx context.Context, donationID string, status domain.DonationStatus) (*domain.Donation, error) {
	d, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Validationf("invalid donation status %q", status)
	}
	if d.Status == status {
		return d, nil
	}
	if !d.Status.CanTransitionTo(status) {
		return nil, domain.Conflictf("cannot change donation from %s to %s", d.Status, status)
	}

	completing := status == domain.DonationStatusCompleted
	// Credit first so a failed credit leaves the donation retryable.
	if completing {
		if _, err := s.inventory.Adjust(ctx, d.BloodType, d.Units); err != nil {
			return nil, fmt.Errorf("failed to credit inventory for donation: %w", err)
		}
	}
	if err := s.donationRepo.UpdateStatus(ctx, d.ID, status); err != nil {
		if completing {
			if _, undoErr := s.inventory.Adjust(ctx, d.BloodType, -d.Units); undoErr != nil {
				logger.ErrorContext(ctx, "Failed to restore inventory after status write failure",
					"donation_id", d.ID, "blood_type", d.BloodType, "units", d.Units, "error", undoErr)
			}
		}
		return nil, fmt.Errorf("failed to update donation status: %w", err)
	}
	previous := d.Status
	d.Status = status
	s.metrics.IncDonationTransition(string(status))
	logger.InfoContext(ctx, "Donation status changed", "donation_id", d.ID, "from", previous, "to", status)

	if completing {
		s.stampLastDonation(ctx, d)
	}
	return d, nil
}

// stampLastDonation moves the donor's last donation date forward. Completing
// an older donation late never moves it back.
func (s *donationService) stampLastDonation(ctx context.Context, d *domain.Donation) {
	donor, err := s.userRepo.GetByID(ctx, d.DonorID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load donor for last donation date", "donor_id", d.DonorID, "error", err)
		return
	}
	if donor.LastDonationDate != nil && !d.Date.After(*donor.LastDonationDate) {
		return
	}
	if err := s.userRepo.SetLastDonationDate(ctx, d.DonorID, d.Date); err != nil {
		logger.WarnContext(ctx, "Failed to stamp last donation date", "donor_id", d.DonorID, "error", err)
	}
}

func (s *donationService) History(ctx context.Context, donorID string) ([]domain.Donation, error) {
	return s.List(ctx, domain.DonationFilter{DonorID: donorID})
}

func (s *donationService) List(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validationf("invalid donation status %q", filter.Status)
	}
	donations, err := s.donationRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	if donations == nil {
		donations = []domain.Donation{}
	}
	return donations, nil
}

// Recent returns the latest completed donations for the admin dashboard.
func (s *donationService) Recent(ctx context.Context, limit int32) ([]domain.Donation, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.List(ctx, domain.DonationFilter{Status: domain.DonationStatusCompleted, Limit: limit})
}
