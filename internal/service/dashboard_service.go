package service

import (
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/wib"

	"github.com/shopspring/decimal"
)

const defaultMovementDays = 7

type DashboardService interface {
	GetStockMovement(days int) ([]StockMovementData, error)
	GetDashboardStats() (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	repository.InventoryStats
	TotalProjects     int             `json:"total_projects"`
	ActiveProjects    int             `json:"active_projects"`
	TotalProjectValue decimal.Decimal `json:"total_project_value"`
}

type dashboardService struct {
	inventoryRepo repository.InventoryRepository
	projectRepo   repository.ProjectRepository
}

func NewDashboardService(inventoryRepo repository.InventoryRepository, projectRepo repository.ProjectRepository) DashboardService {
	return &dashboardService{inventoryRepo: inventoryRepo, projectRepo: projectRepo}
}

// GetStockMovement buckets ledger movements per WIB day over the last days days, today included.
// Receipts count as inbound and issues as outbound; status flips and adjustments are ignored.
func (s *dashboardService) GetStockMovement(days int) ([]StockMovementData, error) {
	if days <= 0 {
		days = defaultMovementDays
	}
	endDate := wib.Now()
	startDate := wib.StartOfDay(endDate).AddDate(0, 0, -(days - 1))

	movements, err := s.inventoryRepo.FindMovements(startDate, endDate)
	if err != nil {
		return nil, err
	}

	results := make([]StockMovementData, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i).Format("2006-01-02")
		results[i] = StockMovementData{Date: date, Inbound: decimal.Zero, Outbound: decimal.Zero}
		index[date] = i
	}

	for _, m := range movements {
		i, ok := index[m.CreatedAt.In(wib.Location).Format("2006-01-02")]
		if !ok {
			continue
		}
		switch m.Kind {
		case model.MovementReceive, model.MovementOutWarehouse:
			results[i].Inbound = results[i].Inbound.Add(m.DeltaIn).Add(m.DeltaOut)
		case model.MovementIssue:
			results[i].Outbound = results[i].Outbound.Sub(m.DeltaIn)
		}
	}
	return results, nil
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	inv, err := s.inventoryRepo.GetStats()
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.FindAll("")
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{InventoryStats: *inv, TotalProjects: len(projects), TotalProjectValue: decimal.Zero}
	for _, p := range projects {
		if p.Status == model.ProjectActive {
			stats.ActiveProjects++
		}
		stats.TotalProjectValue = stats.TotalProjectValue.Add(p.ProjectValue)
	}
	return stats, nil
}
