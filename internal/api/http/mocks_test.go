package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/security"
	"bloodbank-backend/internal/service"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, string, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*domain.User)
	return u, args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *security.UserClaims) error {
	return m.Called(ctx, claims).Error(0)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, upd service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, upd)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, upd service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, upd)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	args := m.Called(ctx, name, email, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, email, newPassword string) error {
	return m.Called(ctx, email, newPassword).Error(0)
}

type MockInventoryService struct{ mock.Mock }

func (m *MockInventoryService) item(args mock.Arguments) (*domain.InventoryItem, error) {
	item, _ := args.Get(0).(*domain.InventoryItem)
	return item, args.Error(1)
}

func (m *MockInventoryService) Adjust(ctx context.Context, bt domain.BloodType, delta int32) (*domain.InventoryItem, error) {
	return m.item(m.Called(ctx, bt, delta))
}

func (m *MockInventoryService) SetAbsolute(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	return m.item(m.Called(ctx, bt, units))
}

func (m *MockInventoryService) Add(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	return m.item(m.Called(ctx, bt, units))
}

func (m *MockInventoryService) Remove(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	return m.item(m.Called(ctx, bt, units))
}

func (m *MockInventoryService) Query(ctx context.Context, bt *domain.BloodType) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, bt)
	items, _ := args.Get(0).([]domain.InventoryItem)
	return items, args.Error(1)
}

func (m *MockInventoryService) Search(ctx context.Context, bt domain.BloodType) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, bt)
	items, _ := args.Get(0).([]domain.InventoryItem)
	return items, args.Error(1)
}

func (m *MockInventoryService) LowStock(ctx context.Context, threshold int32) ([]domain.LowStockAlert, error) {
	args := m.Called(ctx, threshold)
	alerts, _ := args.Get(0).([]domain.LowStockAlert)
	return alerts, args.Error(1)
}

type MockDonationService struct{ mock.Mock }

func (m *MockDonationService) Schedule(ctx context.Context, donorID string, date time.Time, location string) (*domain.Donation, error) {
	args := m.Called(ctx, donorID, date, location)
	d, _ := args.Get(0).(*domain.Donation)
	return d, args.Error(1)
}

func (m *MockDonationService) SetStatus(ctx context.Context, donationID string, status domain.DonationStatus) (*domain.Donation, error) {
	args := m.Called(ctx, donationID, status)
	d, _ := args.Get(0).(*domain.Donation)
	return d, args.Error(1)
}

func (m *MockDonationService) History(ctx context.Context, donorID string) ([]domain.Donation, error) {
	args := m.Called(ctx, donorID)
	ds, _ := args.Get(0).([]domain.Donation)
	return ds, args.Error(1)
}

func (m *MockDonationService) List(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	args := m.Called(ctx, filter)
	ds, _ := args.Get(0).([]domain.Donation)
	return ds, args.Error(1)
}

func (m *MockDonationService) Recent(ctx context.Context, limit int32) ([]domain.Donation, error) {
	args := m.Called(ctx, limit)
	ds, _ := args.Get(0).([]domain.Donation)
	return ds, args.Error(1)
}

type MockRequestService struct{ mock.Mock }

func (m *MockRequestService) one(args mock.Arguments) (*domain.BloodRequest, error) {
	req, _ := args.Get(0).(*domain.BloodRequest)
	return req, args.Error(1)
}

func (m *MockRequestService) many(args mock.Arguments) ([]domain.BloodRequest, error) {
	reqs, _ := args.Get(0).([]domain.BloodRequest)
	return reqs, args.Error(1)
}

func (m *MockRequestService) Create(ctx context.Context, recipientID string, in service.CreateRequestInput) (*domain.BloodRequest, error) {
	return m.one(m.Called(ctx, recipientID, in))
}

func (m *MockRequestService) SetStatus(ctx context.Context, requestID string, status domain.RequestStatus) (*domain.BloodRequest, error) {
	return m.one(m.Called(ctx, requestID, status))
}

func (m *MockRequestService) Cancel(ctx context.Context, requestID, ownerID string) (*domain.BloodRequest, error) {
	return m.one(m.Called(ctx, requestID, ownerID))
}

func (m *MockRequestService) Get(ctx context.Context, requestID, ownerID string) (*domain.BloodRequest, error) {
	return m.one(m.Called(ctx, requestID, ownerID))
}

func (m *MockRequestService) ListMine(ctx context.Context, ownerID string) ([]domain.BloodRequest, error) {
	return m.many(m.Called(ctx, ownerID))
}

func (m *MockRequestService) List(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error) {
	return m.many(m.Called(ctx, filter))
}

func (m *MockRequestService) Recent(ctx context.Context, limit int32) ([]domain.BloodRequest, error) {
	return m.many(m.Called(ctx, limit))
}

type MockEligibilityService struct{ mock.Mock }

func (m *MockEligibilityService) Check(ctx context.Context, donorID string) (*domain.Eligibility, error) {
	args := m.Called(ctx, donorID)
	e, _ := args.Get(0).(*domain.Eligibility)
	return e, args.Error(1)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) DonationReport(ctx context.Context, period domain.ReportPeriod) (*domain.DonationReport, error) {
	args := m.Called(ctx, period)
	r, _ := args.Get(0).(*domain.DonationReport)
	return r, args.Error(1)
}

func (m *MockReportService) RequestReport(ctx context.Context, period domain.ReportPeriod) (*domain.RequestReport, error) {
	args := m.Called(ctx, period)
	r, _ := args.Get(0).(*domain.RequestReport)
	return r, args.Error(1)
}

func (m *MockReportService) InventoryReport(ctx context.Context) (*domain.InventoryReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*domain.InventoryReport)
	return r, args.Error(1)
}

func (m *MockReportService) ActiveDonors(ctx context.Context, limit int32) (*domain.ActiveDonorsReport, error) {
	args := m.Called(ctx, limit)
	r, _ := args.Get(0).(*domain.ActiveDonorsReport)
	return r, args.Error(1)
}

func (m *MockReportService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*domain.DashboardStats)
	return r, args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) Broadcast(ctx context.Context, in service.BroadcastInput) (*domain.BroadcastResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*domain.BroadcastResult)
	return r, args.Error(1)
}

func (m *MockNotificationService) LowStockFeed(ctx context.Context) ([]domain.Notification, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).([]domain.Notification)
	return n, args.Error(1)
}
