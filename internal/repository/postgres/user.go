package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

const userColumns = `id, name, email, password_hash, role, COALESCE(blood_type, ''), COALESCE(location, ''),
	date_of_birth, last_donation_date, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var role, bloodType string
	var dob, lastDonation sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &bloodType, &u.Location,
		&dob, &lastDonation, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.BloodType = domain.BloodType(bloodType)
	u.DateOfBirth = timePtr(dob)
	u.LastDonationDate = timePtr(lastDonation)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `INSERT INTO users (id, name, email, password_hash, role, blood_type, location, date_of_birth, last_donation_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall(ctx, "users.create", "email", u.Email)
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
		nullString(string(u.BloodType)), nullString(u.Location), nullTime(u.DateOfBirth), nullTime(u.LastDonationDate),
		u.CreatedAt, u.UpdatedAt)
	logger.DatabaseResult(ctx, "users.create", err, "id", u.ID)
	if isUniqueViolation(err) {
		return domain.Conflictf("user already exists")
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET name=$1, email=$2, role=$3, blood_type=$4, location=$5, date_of_birth=$6, updated_at=$7 WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, string(u.Role), nullString(string(u.BloodType)),
		nullString(u.Location), nullTime(u.DateOfBirth), u.UpdatedAt, u.ID)
	if isUniqueViolation(err) {
		return domain.Conflictf("email already in use")
	}
	if err != nil {
		return notFound(err, "user not found")
	}
	return expectOneRow(res, "user not found")
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return notFound(err, "user not found")
	}
	return expectOneRow(res, "user not found")
}

func (r *userRepository) SetLastDonationDate(ctx context.Context, id string, date time.Time) error {
	query := `UPDATE users SET last_donation_date=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, date, time.Now().UTC(), id)
	if err != nil {
		return notFound(err, "user not found")
	}
	return expectOneRow(res, "user not found")
}

// Delete removes the user row. Donations and requests owned by the user go
// with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall(ctx, "users.delete", "id", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	logger.DatabaseResult(ctx, "users.delete", err, "id", id)
	if err != nil {
		return notFound(err, "user not found")
	}
	return expectOneRow(res, "user not found")
}

// List returns users newest first. An empty role returns everyone.
func (r *userRepository) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR role = $1) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
