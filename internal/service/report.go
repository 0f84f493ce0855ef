package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/repository"
)

const defaultActiveDonorLimit = 10

type reportService struct {
	userRepo      repository.UserRepository
	donationRepo  repository.DonationRepository
	requestRepo   repository.RequestRepository
	inventoryRepo repository.InventoryRepository
	lowThreshold  int32
	now           Clock
}

func NewReportService(userRepo repository.UserRepository, donationRepo repository.DonationRepository, requestRepo repository.RequestRepository, inventoryRepo repository.InventoryRepository, lowThreshold int32, now Clock) ReportService {
	if now == nil {
		now = time.Now
	}
	if lowThreshold <= 0 {
		lowThreshold = 10
	}
	return &reportService{
		userRepo:      userRepo,
		donationRepo:  donationRepo,
		requestRepo:   requestRepo,
		inventoryRepo: inventoryRepo,
		lowThreshold:  lowThreshold,
		now:           now,
	}
}

// PeriodStart resolves a report window. Unknown periods fall back to week.
func PeriodStart(period domain.ReportPeriod, now time.Time) (domain.ReportPeriod, time.Time) {
	switch period {
	case domain.ReportPeriodDay:
		y, m, d := now.Date()
		return period, time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case domain.ReportPeriodMonth:
		y, m, _ := now.Date()
		return period, time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return domain.ReportPeriodWeek, now.Add(-7 * 24 * time.Hour)
	}
}

func (s *reportService) DonationReport(ctx context.Context, period domain.ReportPeriod) (*domain.DonationReport, error) {
	period, since := PeriodStart(period, s.now())
	donations, err := s.donationRepo.List(ctx, domain.DonationFilter{
		Status: domain.DonationStatusCompleted,
		Since:  &since,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load donations: %w", err)
	}
	return aggregateDonations(period, since, donations), nil
}

func (s *reportService) RequestReport(ctx context.Context, period domain.ReportPeriod) (*domain.RequestReport, error) {
	period, since := PeriodStart(period, s.now())
	requests, err := s.requestRepo.List(ctx, domain.RequestFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	return aggregateRequests(period, since, requests), nil
}

func (s *reportService) InventoryReport(ctx context.Context) (*domain.InventoryReport, error) {
	items, err := s.inventoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return summarizeInventory(items, s.lowThreshold), nil
}

func (s *reportService) ActiveDonors(ctx context.Context, limit int32) (*domain.ActiveDonorsReport, error) {
	if limit <= 0 {
		limit = defaultActiveDonorLimit
	}
	donations, err := s.donationRepo.List(ctx, domain.DonationFilter{Status: domain.DonationStatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to load donations: %w", err)
	}

	ranked := rankDonors(donations, int(limit))
	for i := range ranked {
		donor, err := s.userRepo.GetByID(ctx, ranked[i].Donor.ID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.WarnContext(ctx, "Active donor no longer exists", "donor_id", ranked[i].Donor.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		ranked[i].Donor = donor
	}
	return &domain.ActiveDonorsReport{TopDonors: ranked}, nil
}

func (s *reportService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	var err error

	if stats.TotalDonors, err = s.userRepo.CountByRole(ctx, domain.RoleDonor); err != nil {
		return nil, fmt.Errorf("failed to count donors: %w", err)
	}
	if stats.TotalRecipients, err = s.userRepo.CountByRole(ctx, domain.RoleRecipient); err != nil {
		return nil, fmt.Errorf("failed to count recipients: %w", err)
	}
	if stats.TotalDonations, err = s.donationRepo.CountByStatus(ctx, domain.DonationStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to count donations: %w", err)
	}
	if stats.PendingRequests, err = s.requestRepo.CountByStatus(ctx, domain.RequestStatusPending); err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	items, err := s.inventoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	for _, item := range items {
		stats.TotalBloodUnits += item.Units
	}
	return &stats, nil
}

func bump(groups map[string]*domain.GroupStat, key string, units int32) {
	g, ok := groups[key]
	if !ok {
		g = &domain.GroupStat{}
		groups[key] = g
	}
	g.Count++
	g.Units += units
}

func aggregateDonations(period domain.ReportPeriod, since time.Time, donations []domain.Donation) *domain.DonationReport {
	r := &domain.DonationReport{
		Period:      period,
		Since:       since,
		ByBloodType: map[string]*domain.GroupStat{},
		ByDate:      map[string]*domain.GroupStat{},
	}
	for _, d := range donations {
		r.TotalDonations++
		r.TotalUnits += d.Units
		bump(r.ByBloodType, string(d.BloodType), d.Units)
		bump(r.ByDate, d.Date.UTC().Format("2006-01-02"), d.Units)
	}
	return r
}

func aggregateRequests(period domain.ReportPeriod, since time.Time, requests []domain.BloodRequest) *domain.RequestReport {
	r := &domain.RequestReport{
		Period:      period,
		Since:       since,
		ByStatus:    map[string]*domain.GroupStat{},
		ByBloodType: map[string]*domain.GroupStat{},
		ByUrgency:   map[string]*domain.GroupStat{},
	}
	for _, req := range requests {
		r.TotalRequests++
		r.TotalUnits += req.Units
		bump(r.ByStatus, string(req.Status), req.Units)
		bump(r.ByBloodType, string(req.BloodType), req.Units)
		bump(r.ByUrgency, string(req.Urgency), req.Units)
	}
	return r
}

func summarizeInventory(items []domain.InventoryItem, threshold int32) *domain.InventoryReport {
	r := &domain.InventoryReport{
		TotalBloodTypes: int32(len(items)),
		LowStockItems:   []domain.InventoryItem{},
		ByBloodType:     make([]domain.InventoryStatusLine, 0, len(items)),
	}
	for _, item := range items {
		r.TotalUnits += item.Units
		status := "normal"
		if item.Units <= threshold {
			status = "low"
			r.LowStockItems = append(r.LowStockItems, item)
		}
		r.ByBloodType = append(r.ByBloodType, domain.InventoryStatusLine{
			BloodType:   item.BloodType,
			Units:       item.Units,
			Status:      status,
			LastUpdated: item.UpdatedAt,
		})
	}
	return r
}

// rankDonors tallies completed donations per donor and returns the top
// limit by count. Donor holds only the ID until the caller loads details.
func rankDonors(donations []domain.Donation, limit int) []domain.DonorActivity {
	byDonor := map[string]*domain.DonorActivity{}
	for _, d := range donations {
		a, ok := byDonor[d.DonorID]
		if !ok {
			a = &domain.DonorActivity{Donor: &domain.User{ID: d.DonorID, Name: d.DonorName}}
			byDonor[d.DonorID] = a
		}
		a.TotalDonations++
		a.TotalUnits += d.Units
		if d.Date.After(a.LastDonation) {
			a.LastDonation = d.Date
		}
	}

	ranked := make([]domain.DonorActivity, 0, len(byDonor))
	for _, a := range byDonor {
		ranked = append(ranked, *a)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalDonations != ranked[j].TotalDonations {
			return ranked[i].TotalDonations > ranked[j].TotalDonations
		}
		if !ranked[i].LastDonation.Equal(ranked[j].LastDonation) {
			return ranked[i].LastDonation.After(ranked[j].LastDonation)
		}
		return ranked[i].Donor.ID < ranked[j].Donor.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
