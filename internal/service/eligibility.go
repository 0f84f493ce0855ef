package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/repository"
	"bloodbank-backend/internal/utils"
)

type eligibilityService struct {
	userRepo     repository.UserRepository
	donationRepo repository.DonationRepository
	now          Clock
}

func NewEligibilityService(userRepo repository.UserRepository, donationRepo repository.DonationRepository, now Clock) EligibilityService {
	if now == nil {
		now = time.Now
	}
	return &eligibilityService{userRepo: userRepo, donationRepo: donationRepo, now: now}
}

// Check evaluates the donor against the latest completed donation on record.
// It never writes.
func (s *eligibilityService) Check(ctx context.Context, donorID string) (*domain.Eligibility, error) {
	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}

	var last *time.Time
	latest, err := s.donationRepo.LatestCompleted(ctx, donor.ID)
	switch {
	case err == nil:
		last = &latest.Date
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load last donation: %w", err)
	}

	e := utils.EvaluateEligibility(donor.DateOfBirth, last, s.now())
	return &e, nil
}
