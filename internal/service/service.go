package service

import (
	"context"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/security"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

type InventoryService interface {
	// Adjust applies a lifecycle delta. A result below zero is clamped to
	// zero and logged.
	Adjust(ctx context.Context, bloodType domain.BloodType, delta int32) (*domain.InventoryItem, error)
	SetAbsolute(ctx context.Context, bloodType domain.BloodType, units int32) (*domain.InventoryItem, error)
	Add(ctx context.Context, bloodType domain.BloodType, units int32) (*domain.InventoryItem, error)
	// Remove rejects with domain.ErrInsufficientStock instead of clamping.
	Remove(ctx context.Context, bloodType domain.BloodType, units int32) (*domain.InventoryItem, error)
	Query(ctx context.Context, bloodType *domain.BloodType) ([]domain.InventoryItem, error)
	Search(ctx context.Context, bloodType domain.BloodType) ([]domain.InventoryItem, error)
	LowStock(ctx context.Context, threshold int32) ([]domain.LowStockAlert, error)
}

type DonationService interface {
	Schedule(ctx context.Context, donorID string, date time.Time, location string) (*domain.Donation, error)
	SetStatus(ctx context.Context, donationID string, status domain.DonationStatus) (*domain.Donation, error)
	History(ctx context.Context, donorID string) ([]domain.Donation, error)
	List(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error)
	Recent(ctx context.Context, limit int32) ([]domain.Donation, error)
}

type CreateRequestInput struct {
	BloodType domain.BloodType
	Units     int32
	Location  string
	Urgency   domain.Urgency
	Reason    string
}

type RequestService interface {
	Create(ctx context.Context, recipientID string, in CreateRequestInput) (*domain.BloodRequest, error)
	SetStatus(ctx context.Context, requestID string, status domain.RequestStatus) (*domain.BloodRequest, error)
	Cancel(ctx context.Context, requestID, ownerID string) (*domain.BloodRequest, error)
	Get(ctx context.Context, requestID, ownerID string) (*domain.BloodRequest, error)
	ListMine(ctx context.Context, ownerID string) ([]domain.BloodRequest, error)
	List(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error)
	Recent(ctx context.Context, limit int32) ([]domain.BloodRequest, error)
}

type EligibilityService interface {
	Check(ctx context.Context, donorID string) (*domain.Eligibility, error)
}

type ReportService interface {
	DonationReport(ctx context.Context, period domain.ReportPeriod) (*domain.DonationReport, error)
	RequestReport(ctx context.Context, period domain.ReportPeriod) (*domain.RequestReport, error)
	InventoryReport(ctx context.Context) (*domain.InventoryReport, error)
	ActiveDonors(ctx context.Context, limit int32) (*domain.ActiveDonorsReport, error)
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        domain.Role
	BloodType   domain.BloodType
	Location    string
	DateOfBirth *time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, claims *security.UserClaims) error
}

// ProfileUpdate carries optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	BloodType   *domain.BloodType
	Location    *string
	DateOfBirth *time.Time
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, email, newPassword string) error
}

type EmailService interface {
	SendWelcome(ctx context.Context, to, name string, role domain.Role) error
	SendRequestApproved(ctx context.Context, to, name string, req *domain.BloodRequest) error
	SendDonationReminder(ctx context.Context, to, name string, donation *domain.Donation) error
	SendLowStockAlert(ctx context.Context, to string, alert domain.LowStockAlert) error
	SendBroadcast(ctx context.Context, to, subject, message string) error
}

type BroadcastInput struct {
	Type       domain.NotificationType
	Recipients []string
	Message    string
	BloodType  domain.BloodType
}

type NotificationService interface {
	Broadcast(ctx context.Context, in BroadcastInput) (*domain.BroadcastResult, error)
	LowStockFeed(ctx context.Context) ([]domain.Notification, error)
}
