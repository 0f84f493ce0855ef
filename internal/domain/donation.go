package domain

import "time"

type DonationStatus string

const (
	DonationStatusScheduled DonationStatus = "scheduled"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusCancelled DonationStatus = "cancelled"
)

var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusScheduled: {DonationStatusCompleted, DonationStatusCancelled},
	DonationStatusCompleted: nil,
	DonationStatusCancelled: nil,
}

func (s DonationStatus) Valid() bool {
	_, ok := donationTransitions[s]
	return ok
}

// CanTransitionTo reports whether a donation may move from s to next.
// Same-state moves are not transitions and return false.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range donationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Donation struct {
	ID        string         `json:"id"`
	DonorID   string         `json:"donorId"`
	DonorName string         `json:"donorName,omitempty"`
	Date      time.Time      `json:"date"`
	Status    DonationStatus `json:"status"`
	Location  string         `json:"location"`
	BloodType BloodType      `json:"bloodType"`
	Units     int32          `json:"units"`
	CreatedAt time.Time      `json:"createdAt"`
}

type DonationFilter struct {
	DonorID string
	Status  DonationStatus
	Since   *time.Time
	Until   *time.Time
	Limit   int32
}
