package domain

import "time"

type ReportPeriod string

const (
	ReportPeriodDay   ReportPeriod = "day"
	ReportPeriodWeek  ReportPeriod = "week"
	ReportPeriodMonth ReportPeriod = "month"
)

type GroupStat struct {
	Count int32 `json:"count"`
	Units int32 `json:"units"`
}

type DonationReport struct {
	Period         ReportPeriod          `json:"period"`
	Since          time.Time             `json:"since"`
	TotalDonations int32                 `json:"totalDonations"`
	TotalUnits     int32                 `json:"totalUnits"`
	ByBloodType    map[string]*GroupStat `json:"byBloodType"`
	ByDate         map[string]*GroupStat `json:"byDate"`
}

type RequestReport struct {
	Period        ReportPeriod          `json:"period"`
	Since         time.Time             `json:"since"`
	TotalRequests int32                 `json:"totalRequests"`
	TotalUnits    int32                 `json:"totalUnits"`
	ByStatus      map[string]*GroupStat `json:"byStatus"`
	ByBloodType   map[string]*GroupStat `json:"byBloodType"`
	ByUrgency     map[string]*GroupStat `json:"byUrgency"`
}

type InventoryStatusLine struct {
	BloodType   BloodType `json:"bloodType"`
	Units       int32     `json:"units"`
	Status      string    `json:"status"` // "low" or "normal"
	LastUpdated time.Time `json:"lastUpdated"`
}

type InventoryReport struct {
	TotalBloodTypes int32                 `json:"totalBloodTypes"`
	TotalUnits      int32                 `json:"totalUnits"`
	LowStockItems   []InventoryItem       `json:"lowStockItems"`
	ByBloodType     []InventoryStatusLine `json:"byBloodType"`
}

type DonorActivity struct {
	Donor          *User     `json:"donor"`
	TotalDonations int32     `json:"totalDonations"`
	TotalUnits     int32     `json:"totalUnits"`
	LastDonation   time.Time `json:"lastDonation"`
}

type ActiveDonorsReport struct {
	TopDonors []DonorActivity `json:"topDonors"`
}

type DashboardStats struct {
	TotalDonors     int32 `json:"totalDonors"`
	TotalRecipients int32 `json:"totalRecipients"`
	TotalDonations  int32 `json:"totalDonations"`
	PendingRequests int32 `json:"pendingRequests"`
	TotalBloodUnits int32 `json:"totalBloodUnits"`
}
