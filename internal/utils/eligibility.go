package utils

import (
	"fmt"
	"math"
	"time"

	"bloodbank-backend/internal/domain"
)

const (
	MinDonorAge = 18
	MaxDonorAge = 65

	// DonationInterval is the minimum gap between two completed donations.
	DonationInterval = 90 * 24 * time.Hour

	daysPerYear = 365.25
)

// AgeInYears returns floor(elapsed days / 365.25) between birth and now.
func AgeInYears(dateOfBirth, now time.Time) int {
	days := now.Sub(dateOfBirth).Hours() / 24
	return int(math.Floor(days / daysPerYear))
}

// EvaluateEligibility computes a donor's eligibility from their birth date and
// most recent completed donation. It never touches stored state; a nil
// argument means the value is unknown.
func EvaluateEligibility(dateOfBirth, lastDonation *time.Time, now time.Time) domain.Eligibility {
	result := domain.Eligibility{
		AgeEligible:  true,
		TimeEligible: true,
	}

	if dateOfBirth == nil {
		result.AgeEligible = false
		result.AgeReason = "Date of birth is required to verify age eligibility."
	} else {
		age := AgeInYears(*dateOfBirth, now)
		result.CurrentAge = &age
		switch {
		case age < MinDonorAge:
			result.AgeEligible = false
			result.AgeReason = fmt.Sprintf("You must be at least %d years old to donate blood. Current age: %d years.", MinDonorAge, age)
		case age > MaxDonorAge:
			result.AgeEligible = false
			result.AgeReason = fmt.Sprintf("You must be %d years or younger to donate blood. Current age: %d years.", MaxDonorAge, age)
		}
	}

	if lastDonation != nil {
		last := *lastDonation
		next := last.Add(DonationInterval)
		result.LastDonationDate = &last
		result.NextEligibleDate = &next

		// eligible only when the last donation is strictly older than the interval
		if !last.Before(now.Add(-DonationInterval)) {
			result.TimeEligible = false
			result.TimeReason = fmt.Sprintf("You must wait 90 days between donations. Next eligible date: %s", next.Format("2006-01-02"))
		}
	}

	result.IsEligible = result.AgeEligible && result.TimeEligible
	return result
}
