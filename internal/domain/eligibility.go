package domain

import "time"

// Eligibility is the combined age and time based donor verdict. Sub-verdicts
// and reasons are kept so callers can explain a partial failure.
type Eligibility struct {
	IsEligible       bool       `json:"isEligible"`
	AgeEligible      bool       `json:"ageEligible"`
	TimeEligible     bool       `json:"timeEligible"`
	CurrentAge       *int       `json:"currentAge"`
	AgeReason        string     `json:"ageReason"`
	TimeReason       string     `json:"timeReason"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
	NextEligibleDate *time.Time `json:"nextEligibleDate"`
}
