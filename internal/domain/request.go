package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending: {
		RequestStatusApproved,
		RequestStatusRejected,
		RequestStatusFulfilled,
		RequestStatusCancelled,
	},
	RequestStatusApproved:  {RequestStatusFulfilled},
	RequestStatusRejected:  nil,
	RequestStatusFulfilled: nil,
	RequestStatusCancelled: nil,
}

func (s RequestStatus) Valid() bool {
	_, ok := requestTransitions[s]
	return ok
}

// CanTransitionTo reports whether a request may move from s to next.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// BloodRequest is a recipient's request for units of one blood type.
type BloodRequest struct {
	ID             string        `json:"id"`
	RecipientID    string        `json:"recipientId"`
	RecipientName  string        `json:"recipientName,omitempty"`
	RecipientEmail string        `json:"-"`
	BloodType      BloodType     `json:"bloodType"`
	Units          int32         `json:"units"`
	Status         RequestStatus `json:"status"`
	Location       string        `json:"location"`
	Urgency        Urgency       `json:"urgency"`
	Reason         string        `json:"reason,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type RequestFilter struct {
	RecipientID string
	Status      RequestStatus
	Since       *time.Time
	Limit       int32
}
