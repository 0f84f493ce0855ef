package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/service"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}
func (m *MockUserRepo) SetLastDonationDate(ctx context.Context, id string, date time.Time) error {
	args := m.Called(ctx, id, date)
	return args.Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) CountByRole(ctx context.Context, role domain.Role) (int32, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int32), args.Error(1)
}

// MockDonationRepo
type MockDonationRepo struct {
	mock.Mock
}

func (m *MockDonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockDonationRepo) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}
func (m *MockDonationRepo) UpdateStatus(ctx context.Context, id string, status domain.DonationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockDonationRepo) List(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Donation), args.Error(1)
}
func (m *MockDonationRepo) LatestCompleted(ctx context.Context, donorID string) (*domain.Donation, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}
func (m *MockDonationRepo) CountByStatus(ctx context.Context, status domain.DonationStatus) (int32, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockDonationRepo) DeleteByDonor(ctx context.Context, donorID string) error {
	args := m.Called(ctx, donorID)
	return args.Error(0)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.BloodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id string) (*domain.BloodRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}
func (m *MockRequestRepo) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Error(0)
}
func (m *MockRequestRepo) List(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}
func (m *MockRequestRepo) CountByStatus(ctx context.Context, status domain.RequestStatus) (int32, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockRequestRepo) DeleteByRecipient(ctx context.Context, recipientID string) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

// MockInventoryRepo
type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) Get(ctx context.Context, bt domain.BloodType) (*domain.InventoryItem, error) {
	args := m.Called(ctx, bt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryRepo) List(ctx context.Context) ([]domain.InventoryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryRepo) ListAtOrBelow(ctx context.Context, threshold int32) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryRepo) Upsert(ctx context.Context, item *domain.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockInventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Adjust(ctx context.Context, bt domain.BloodType, delta int32) (*domain.InventoryItem, error) {
	args := m.Called(ctx, bt, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryService) SetAbsolute(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	args := m.Called(ctx, bt, units)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryService) Add(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	args := m.Called(ctx, bt, units)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryService) Remove(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	args := m.Called(ctx, bt, units)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryService) Query(ctx context.Context, bt *domain.BloodType) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, bt)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryService) Search(ctx context.Context, bt domain.BloodType) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, bt)
	return args.Get(0).([]domain.InventoryItem), args.Error(1)
}
func (m *MockInventoryService) LowStock(ctx context.Context, threshold int32) ([]domain.LowStockAlert, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]domain.LowStockAlert), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcome(ctx context.Context, to, name string, role domain.Role) error {
	args := m.Called(ctx, to, name, role)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestApproved(ctx context.Context, to, name string, req *domain.BloodRequest) error {
	args := m.Called(ctx, to, name, req)
	return args.Error(0)
}
func (m *MockEmailService) SendDonationReminder(ctx context.Context, to, name string, d *domain.Donation) error {
	args := m.Called(ctx, to, name, d)
	return args.Error(0)
}
func (m *MockEmailService) SendLowStockAlert(ctx context.Context, to string, alert domain.LowStockAlert) error {
	args := m.Called(ctx, to, alert)
	return args.Error(0)
}
func (m *MockEmailService) SendBroadcast(ctx context.Context, to, subject, message string) error {
	args := m.Called(ctx, to, subject, message)
	return args.Error(0)
}

// MockRevocationList
type MockRevocationList struct {
	mock.Mock
}

func (m *MockRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}
func (m *MockRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

var (
	_ service.InventoryService = (*MockInventoryService)(nil)
	_ service.EmailService     = (*MockEmailService)(nil)
)

func fixedClock(t time.Time) service.Clock {
	return func() time.Time { return t }
}
