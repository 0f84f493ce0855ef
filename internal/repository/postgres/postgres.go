package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

const dialect = "postgres"

//go:embed schema.sql
var schemaSQL string

// Store groups every repository over one connection pool. It is constructed
// once in main and passed down; nothing here holds package-level state.
type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.DonationRepository
	repository.RequestRepository
	repository.InventoryRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		UserRepository:      NewUserRepository(db),
		DonationRepository:  NewDonationRepository(db),
		RequestRepository:   NewRequestRepository(db),
		InventoryRepository: NewInventoryRepository(db),
	}
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall(ctx, "ensure_schema")
	_, err := db.ExecContext(ctx, schemaSQL)
	logger.DatabaseResult(ctx, "ensure_schema", err)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// notFound converts sql.ErrNoRows into a domain not-found error. An id that
// is not a valid uuid cannot match any row, so Postgres' cast failure is
// reported the same way.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return domain.NotFoundf(format, args...)
	}
	return err
}

// expectOneRow turns a zero-row update or delete into a not-found error.
func expectOneRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf(format, args...)
	}
	return nil
}

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

type rowScanner interface {
	Scan(dest ...any) error
}
