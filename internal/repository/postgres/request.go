package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) repository.RequestRepository {
	return &requestRepository{db: db}
}

func requestSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialect).
		From(goqu.T("blood_requests").As("r")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.recipient_id")))).
		Select(
			goqu.I("r.id"),
			goqu.I("r.recipient_id"),
			goqu.COALESCE(goqu.I("u.name"), "").As("recipient_name"),
			goqu.COALESCE(goqu.I("u.email"), "").As("recipient_email"),
			goqu.I("r.blood_type"),
			goqu.I("r.units"),
			goqu.I("r.status"),
			goqu.I("r.location"),
			goqu.I("r.urgency"),
			goqu.COALESCE(goqu.I("r.reason"), "").As("reason"),
			goqu.I("r.created_at"),
			goqu.I("r.updated_at"),
		).
		Prepared(true)
}

func scanRequest(row rowScanner) (*domain.BloodRequest, error) {
	req := &domain.BloodRequest{}
	var bloodType, status, urgency string
	if err := row.Scan(&req.ID, &req.RecipientID, &req.RecipientName, &req.RecipientEmail, &bloodType,
		&req.Units, &status, &req.Location, &urgency, &req.Reason, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	req.BloodType = domain.BloodType(bloodType)
	req.Status = domain.RequestStatus(status)
	req.Urgency = domain.Urgency(urgency)
	return req, nil
}

func (r *requestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	query := `INSERT INTO blood_requests (id, recipient_id, blood_type, units, status, location, urgency, reason, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall(ctx, "blood_requests.create", "recipient_id", req.RecipientID)
	_, err := r.db.ExecContext(ctx, query, req.ID, req.RecipientID, string(req.BloodType), req.Units,
		string(req.Status), req.Location, string(req.Urgency), nullString(req.Reason), req.CreatedAt, req.UpdatedAt)
	logger.DatabaseResult(ctx, "blood_requests.create", err, "id", req.ID)
	return err
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.BloodRequest, error) {
	query, args, err := requestSelect().Where(goqu.I("r.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build request query: %w", err)
	}
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "request not found")
	}
	return req, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, updatedAt time.Time) error {
	logger.DatabaseCall(ctx, "blood_requests.update_status", "id", id, "status", status)
	res, err := r.db.ExecContext(ctx, `UPDATE blood_requests SET status=$1, updated_at=$2 WHERE id=$3`,
		string(status), updatedAt, id)
	logger.DatabaseResult(ctx, "blood_requests.update_status", err, "id", id)
	if err != nil {
		return notFound(err, "request not found")
	}
	return expectOneRow(res, "request not found")
}

// List returns requests newest first. Zero-valued filter fields are ignored.
func (r *requestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.BloodRequest, error) {
	ds := requestSelect().Order(goqu.I("r.created_at").Desc())
	if filter.RecipientID != "" {
		ds = ds.Where(goqu.I("r.recipient_id").Eq(filter.RecipientID))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.I("r.status").Eq(string(filter.Status)))
	}
	if filter.Since != nil {
		ds = ds.Where(goqu.I("r.created_at").Gte(*filter.Since))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build request query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.BloodRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func (r *requestRepository) CountByStatus(ctx context.Context, status domain.RequestStatus) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blood_requests WHERE ($1 = '' OR status = $1)`, string(status)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *requestRepository) DeleteByRecipient(ctx context.Context, recipientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blood_requests WHERE recipient_id = $1`, recipientID)
	return err
}
