package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

type donationRepository struct {
	db *sql.DB
}

func NewDonationRepository(db *sql.DB) repository.DonationRepository {
	return &donationRepository{db: db}
}

func donationSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(goqu.T("donations").As("d")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("d.donor_id")))).
		Select(
			goqu.I("d.id"),
			goqu.I("d.donor_id"),
			goqu.COALESCE(goqu.I("u.name"), "").As("donor_name"),
			goqu.I("d.date"),
			goqu.I("d.status"),
			goqu.I("d.location"),
			goqu.I("d.blood_type"),
			goqu.I("d.units"),
			goqu.I("d.created_at"),
		).
		Prepared(true)
}

func scanDonation(row rowScanner) (*domain.Donation, error) {
	d := &domain.Donation{}
	var status, bloodType string
	if err := row.Scan(&d.ID, &d.DonorID, &d.DonorName, &d.Date, &status, &d.Location, &bloodType,
		&d.Units, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Status = domain.DonationStatus(status)
	d.BloodType = domain.BloodType(bloodType)
	return d, nil
}

func (r *donationRepository) Create(ctx context.Context, d *domain.Donation) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()

	query := `INSERT INTO donations (id, donor_id, date, status, location, blood_type, units, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	logger.DatabaseCall(ctx, "donations.create", "donor_id", d.DonorID)
	_, err := r.db.ExecContext(ctx, query, d.ID, d.DonorID, d.Date, string(d.Status), d.Location,
		string(d.BloodType), d.Units, d.CreatedAt)
	logger.DatabaseResult(ctx, "donations.create", err, "id", d.ID)
	return err
}

func (r *donationRepository) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	query, args, err := donationSelect().Where(goqu.I("d.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build donation query: %w", err)
	}
	d, err := scanDonation(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "donation not found")
	}
	return d, nil
}

func (r *donationRepository) UpdateStatus(ctx context.Context, id string, status domain.DonationStatus) error {
	logger.DatabaseCall(ctx, "donations.update_status", "id", id, "status", status)
	res, err := r.db.ExecContext(ctx, `UPDATE donations SET status=$1 WHERE id=$2`, string(status), id)
	logger.DatabaseResult(ctx, "donations.update_status", err, "id", id)
	if err != nil {
		return notFound(err, "donation not found")
	}
	return expectOneRow(res, "donation not found")
}

// List returns donations newest first. Zero-valued filter fields are ignored.
func (r *donationRepository) List(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	ds := donationSelect().Order(goqu.I("d.date").Desc())
	if filter.DonorID != "" {
		ds = ds.Where(goqu.I("d.donor_id").Eq(filter.DonorID))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.I("d.status").Eq(string(filter.Status)))
	}
	if filter.Since != nil {
		ds = ds.Where(goqu.I("d.date").Gte(*filter.Since))
	}
	if filter.Until != nil {
		ds = ds.Where(goqu.I("d.date").Lt(*filter.Until))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build donation query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, *d)
	}
	return donations, rows.Err()
}

func (r *donationRepository) LatestCompleted(ctx context.Context, donorID string) (*domain.Donation, error) {
	query, args, err := donationSelect().
		Where(
			goqu.I("d.donor_id").Eq(donorID),
			goqu.I("d.status").Eq(string(domain.DonationStatusCompleted)),
		).
		Order(goqu.I("d.date").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build donation query: %w", err)
	}
	d, err := scanDonation(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "no completed donation")
	}
	return d, nil
}

// CountByStatus counts donations in the given status. An empty status
// counts all of them.
func (r *donationRepository) CountByStatus(ctx context.Context, status domain.DonationStatus) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donations WHERE ($1 = '' OR status = $1)`, string(status)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *donationRepository) DeleteByDonor(ctx context.Context, donorID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE donor_id = $1`, donorID)
	return err
}
