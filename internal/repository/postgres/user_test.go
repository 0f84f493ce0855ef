package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/repository/postgres"
)

var userCols = []string{"id", "name", "email", "password_hash", "role", "blood_type", "location",
	"date_of_birth", "last_donation_date", "created_at", "updated_at"}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		dob := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(userCols).
			AddRow("u-1", "Dana", "dana@example.com", "hash", "donor", "O-", "Leeds", dob, nil, time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs("u-1").
			WillReturnRows(rows)

		user, err := repo.GetByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
		assert.Equal(t, domain.RoleDonor, user.Role)
		assert.Equal(t, domain.BloodTypeONeg, user.BloodType)
		require.NotNil(t, user.DateOfBirth)
		assert.True(t, dob.Equal(*user.DateOfBirth))
		assert.Nil(t, user.LastDonationDate)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(userCols))

		user, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		u := &domain.User{
			Name:         "Rui",
			Email:        "rui@example.com",
			PasswordHash: "hash",
			Role:         domain.RoleRecipient,
		}

		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), u.Name, u.Email, u.PasswordHash, "recipient", nil, nil, nil, nil,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, u)
		assert.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &domain.User{Email: "rui@example.com", Role: domain.RoleDonor})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
			WithArgs("u-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "u-1"))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
			WithArgs("u-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "u-2"), domain.ErrNotFound)
	})

	t.Run("MalformedID", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
			WithArgs("xyz").
			WillReturnError(&pq.Error{Code: "22P02"})

		assert.ErrorIs(t, repo.Delete(ctx, "xyz"), domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(userCols).
		AddRow("u-1", "Ann", "ann@example.com", "h", "donor", "A+", "", nil, nil, time.Now(), time.Now()).
		AddRow("u-2", "Bo", "bo@example.com", "h", "donor", "B-", "", nil, time.Now(), time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM users WHERE").
		WithArgs("donor").
		WillReturnRows(rows)

	users, err := repo.List(ctx, domain.RoleDonor)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.NotNil(t, users[1].LastDonationDate)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE role = \\$1").
		WithArgs("recipient").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByRole(ctx, domain.RoleRecipient)
	require.NoError(t, err)
	assert.Equal(t, int32(7), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
