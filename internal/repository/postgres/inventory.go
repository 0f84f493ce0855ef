package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

type inventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Get(ctx context.Context, bloodType domain.BloodType) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	var bt string
	query := `SELECT blood_type, units, updated_at FROM inventory WHERE blood_type = $1`
	err := r.db.QueryRowContext(ctx, query, string(bloodType)).Scan(&bt, &item.Units, &item.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "no inventory record for blood type %s", bloodType)
	}
	item.BloodType = domain.BloodType(bt)
	return item, nil
}

func (r *inventoryRepository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.query(ctx, `SELECT blood_type, units, updated_at FROM inventory ORDER BY blood_type`)
}

// ListAtOrBelow returns records with units <= threshold, lowest stock first.
func (r *inventoryRepository) ListAtOrBelow(ctx context.Context, threshold int32) ([]domain.InventoryItem, error) {
	return r.query(ctx, `SELECT blood_type, units, updated_at FROM inventory WHERE units <= $1 ORDER BY units, blood_type`, threshold)
}

// Upsert writes the absolute unit count for a blood type, creating the
// record if it does not exist. UpdatedAt is stamped here.
func (r *inventoryRepository) Upsert(ctx context.Context, item *domain.InventoryItem) error {
	item.UpdatedAt = time.Now().UTC()
	query := `INSERT INTO inventory (blood_type, units, updated_at) VALUES ($1, $2, $3)
	          ON CONFLICT (blood_type) DO UPDATE SET units = EXCLUDED.units, updated_at = EXCLUDED.updated_at`
	logger.DatabaseCall(ctx, "inventory.upsert", "blood_type", item.BloodType, "units", item.Units)
	_, err := r.db.ExecContext(ctx, query, string(item.BloodType), item.Units, item.UpdatedAt)
	logger.DatabaseResult(ctx, "inventory.upsert", err, "blood_type", item.BloodType)
	return err
}

func (r *inventoryRepository) query(ctx context.Context, query string, args ...any) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		var bt string
		if err := rows.Scan(&bt, &item.Units, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.BloodType = domain.BloodType(bt)
		items = append(items, item)
	}
	return items, rows.Err()
}
