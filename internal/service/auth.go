package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
	"bloodbank-backend/internal/security"
)

const minPasswordLength = 6

var ErrInvalidCredentials = domain.Unauthorizedf("invalid email or password")

type authService struct {
	userRepo    repository.UserRepository
	tokens      security.TokenManager
	revocations security.RevocationList
	emailSvc    EmailService
	now         Clock
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, revocations security.RevocationList, emailSvc EmailService, now Clock) AuthService {
	if now == nil {
		now = time.Now
	}
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		revocations: revocations,
		emailSvc:    emailSvc,
		now:         now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.Validationf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.Validationf("invalid email address")
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", domain.Validationf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", domain.Validationf("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	if in.Role != domain.RoleDonor && in.Role != domain.RoleRecipient {
		return nil, "", domain.Validationf("role must be donor or recipient")
	}
	if in.BloodType != "" && !in.BloodType.Valid() {
		return nil, "", domain.Validationf("invalid blood type %q", in.BloodType)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, "", domain.Conflictf("user already exists")
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		BloodType:    in.BloodType,
		Location:     strings.TrimSpace(in.Location),
		DateOfBirth:  in.DateOfBirth,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}
	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name, user.Role); err != nil {
		logger.WarnContext(ctx, "Failed to send welcome email", "user_id", user.ID, "error", err)
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.InfoContext(ctx, "Login failed", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Logout revokes the presented token until it would have expired.
func (s *authService) Logout(ctx context.Context, claims *security.UserClaims) error {
	if claims == nil {
		return domain.Unauthorizedf("not authenticated")
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.InfoContext(ctx, "User logged out", "user_id", claims.UserID)
	return nil
}
