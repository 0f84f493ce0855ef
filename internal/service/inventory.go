package service

import (
	"context"
	"errors"
	"fmt"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/repository"
)

type inventoryService struct {
	repo             repository.InventoryRepository
	defaultThreshold int32
	metrics          *metrics.Metrics
}

func NewInventoryService(repo repository.InventoryRepository, defaultThreshold int32, m *metrics.Metrics) InventoryService {
	if defaultThreshold <= 0 {
		defaultThreshold = 10
	}
	return &inventoryService{repo: repo, defaultThreshold: defaultThreshold, metrics: m}
}

func validBloodType(bt domain.BloodType) error {
	if !bt.Valid() {
		return domain.Validationf("invalid blood type %q", bt)
	}
	return nil
}

// current loads the record for bt, treating an absent record as zero units.
func (s *inventoryService) current(ctx context.Context, bt domain.BloodType) (*domain.InventoryItem, error) {
	item, err := s.repo.Get(ctx, bt)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.InventoryItem{BloodType: bt}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory for %s: %w", bt, err)
	}
	return item, nil
}

func (s *inventoryService) save(ctx context.Context, item *domain.InventoryItem) error {
	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("failed to save inventory for %s: %w", item.BloodType, err)
	}
	s.metrics.SetInventoryUnits(string(item.BloodType), item.Units)
	return nil
}

func (s *inventoryService) Adjust(ctx context.Context, bt domain.BloodType, delta int32) (*domain.InventoryItem, error) {
	if err := validBloodType(bt); err != nil {
		return nil, err
	}
	item, err := s.current(ctx, bt)
	if err != nil {
		return nil, err
	}

	next := item.Units + delta
	if next < 0 {
		logger.WarnContext(ctx, "Inventory adjustment clamped at zero",
			"blood_type", bt, "units", item.Units, "delta", delta)
		s.metrics.IncInventoryClamp()
		next = 0
	}
	item.Units = next

	if err := s.save(ctx, item); err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Inventory adjusted", "blood_type", bt, "delta", delta, "units", item.Units)
	return item, nil
}

func (s *inventoryService) SetAbsolute(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	if err := validBloodType(bt); err != nil {
		return nil, err
	}
	if units < 0 {
		return nil, domain.Validationf("units must not be negative")
	}
	item := &domain.InventoryItem{BloodType: bt, Units: units}
	if err := s.save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Add(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	if err := validBloodType(bt); err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, domain.Validationf("units must be at least 1")
	}
	item, err := s.current(ctx, bt)
	if err != nil {
		return nil, err
	}
	item.Units += units
	if err := s.save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Remove(ctx context.Context, bt domain.BloodType, units int32) (*domain.InventoryItem, error) {
	if err := validBloodType(bt); err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, domain.Validationf("units must be at least 1")
	}
	item, err := s.repo.Get(ctx, bt)
	if err != nil {
		return nil, err
	}
	if item.Units < units {
		return nil, domain.ErrInsufficientStock
	}
	item.Units -= units
	if err := s.save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Query(ctx context.Context, bt *domain.BloodType) ([]domain.InventoryItem, error) {
	if bt == nil {
		items, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list inventory: %w", err)
		}
		return items, nil
	}
	if err := validBloodType(*bt); err != nil {
		return nil, err
	}
	item, err := s.repo.Get(ctx, *bt)
	if err != nil {
		return nil, err
	}
	return []domain.InventoryItem{*item}, nil
}

func (s *inventoryService) Search(ctx context.Context, bt domain.BloodType) ([]domain.InventoryItem, error) {
	if bt == "" {
		return s.Query(ctx, nil)
	}
	items, err := s.Query(ctx, &bt)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.InventoryItem{}, nil
	}
	return items, err
}

func (s *inventoryService) LowStock(ctx context.Context, threshold int32) ([]domain.LowStockAlert, error) {
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}
	items, err := s.repo.ListAtOrBelow(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return lowStockAlerts(items, threshold), nil
}

// lowStockAlerts marks items at or below half the threshold as critical.
func lowStockAlerts(items []domain.InventoryItem, threshold int32) []domain.LowStockAlert {
	alerts := make([]domain.LowStockAlert, 0, len(items))
	for _, item := range items {
		urgency := domain.AlertUrgencyWarning
		if item.Units <= threshold/2 {
			urgency = domain.AlertUrgencyCritical
		}
		alerts = append(alerts, domain.LowStockAlert{
			BloodType:    item.BloodType,
			CurrentUnits: item.Units,
			Threshold:    threshold,
			Urgency:      urgency,
		})
	}
	return alerts
}
