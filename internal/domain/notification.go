package domain

import "time"

type NotificationType string

const (
	NotificationLowStock        NotificationType = "low_stock"
	NotificationRequestApproved NotificationType = "request_approved"
	NotificationDonationDrive   NotificationType = "donation_drive"
	NotificationGeneral         NotificationType = "general"
)

// Notification is an admin-facing feed entry. The feed is derived from current
// state on each read and is not persisted.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	BloodType BloodType        `json:"bloodType,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// BroadcastResult reports how a broadcast fanned out.
type BroadcastResult struct {
	Type       NotificationType `json:"type"`
	Recipients int              `json:"recipients"`
	Sent       int              `json:"sent"`
	Failed     int              `json:"failed"`
}
