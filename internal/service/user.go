package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

type userService struct {
	userRepo     repository.UserRepository
	donationRepo repository.DonationRepository
	requestRepo  repository.RequestRepository
}

func NewUserService(userRepo repository.UserRepository, donationRepo repository.DonationRepository, requestRepo repository.RequestRepository) UserService {
	return &userService{
		userRepo:     userRepo,
		donationRepo: donationRepo,
		requestRepo:  requestRepo,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile lets a user edit their own profile. Email is not editable
// here and date of birth only applies to donors.
func (s *userService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	upd.Email = nil
	if u.Role != domain.RoleDonor {
		upd.DateOfBirth = nil
	}
	if err := applyUpdate(u, upd); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if role != "" && !role.Valid() {
		return nil, domain.Validationf("invalid role %q", role)
	}
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateUser is the admin edit: name, email, blood type and location.
func (s *userService) UpdateUser(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	upd.DateOfBirth = nil
	if err := applyUpdate(u, upd); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "User updated by admin", "user_id", u.ID)
	return u, nil
}

func applyUpdate(u *domain.User, upd ProfileUpdate) error {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return domain.Validationf("name must not be empty")
		}
		u.Name = name
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return err
		}
		u.Email = email
	}
	if upd.BloodType != nil {
		if *upd.BloodType != "" && !upd.BloodType.Valid() {
			return domain.Validationf("invalid blood type %q", *upd.BloodType)
		}
		u.BloodType = *upd.BloodType
	}
	if upd.Location != nil {
		u.Location = strings.TrimSpace(*upd.Location)
	}
	if upd.DateOfBirth != nil {
		dob := *upd.DateOfBirth
		u.DateOfBirth = &dob
	}
	return nil
}

// DeleteUser removes the user together with their donations and requests.
// The three deletes are separate statements with no shared transaction.
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.donationRepo.DeleteByDonor(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to delete donations: %w", err)
	}
	if err := s.requestRepo.DeleteByRecipient(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to delete requests: %w", err)
	}
	if err := s.userRepo.Delete(ctx, u.ID); err != nil {
		return err
	}
	logger.InfoContext(ctx, "User deleted", "user_id", u.ID, "role", u.Role)
	return nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("name is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflictf("user %s already exists", email)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Admin created", "user_id", admin.ID)
	return admin, nil
}

func (s *userService) ChangePassword(ctx context.Context, email, newPassword string) error {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Password changed", "user_id", u.ID)
	return nil
}
