package repository

import (
	"context"
	"time"

	"bloodbank-backend/internal/domain"
)

// Repositories report a missing record with an error matching
// domain.ErrNotFound. Each write is a single-statement, single-row operation;
// callers get no multi-record atomicity.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetLastDonationDate(ctx context.Context, id string, date time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int32, error)
}

type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	GetByID(ctx context.Context, id string) (*domain.Donation, error)
	UpdateStatus(ctx context.Context, id string, status domain.DonationStatus) error
	List(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error)
	LatestCompleted(ctx context.Context, donorID string) (*domain.Donation, error)
	CountByStatus(ctx context.Context, status domain.DonationStatus) (int32, error)
	DeleteByDonor(ctx context.Context, donorID string) error
}

type RequestRepository interface {
	Create(ctx context.Context, req *domain.BloodRequest) error
	GetByID(ctx context.Context, id string) (*domain.BloodRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, updatedAt time.Time) error
	List(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error)
	CountByStatus(ctx context.Context, status domain.RequestStatus) (int32, error)
	DeleteByRecipient(ctx context.Context, recipientID string) error
}

type InventoryRepository interface {
	Get(ctx context.Context, bloodType domain.BloodType) (*domain.InventoryItem, error)
	List(ctx context.Context) ([]domain.InventoryItem, error)
	ListAtOrBelow(ctx context.Context, threshold int32) ([]domain.InventoryItem, error)
	Upsert(ctx context.Context, item *domain.InventoryItem) error
}
