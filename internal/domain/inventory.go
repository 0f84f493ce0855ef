package domain

import "time"

type InventoryItem struct {
	BloodType BloodType `json:"bloodType"`
	Units     int32     `json:"units"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AlertUrgency string

const (
	AlertUrgencyCritical AlertUrgency = "critical"
	AlertUrgencyWarning  AlertUrgency = "warning"
)

type LowStockAlert struct {
	BloodType    BloodType    `json:"bloodType"`
	CurrentUnits int32        `json:"currentUnits"`
	Threshold    int32        `json:"threshold"`
	Urgency      AlertUrgency `json:"urgency"`
}
