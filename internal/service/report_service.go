package service

import (
	"fmt"
	"io"
	"sort"
	"time"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const noSupplierName = "Tidak ada nama toko"

type ReportService interface {
	PriceComparison(itemName, projectType string) ([]PriceComparison, error)
	BreakdownBySupplier(inventoryID uuid.UUID) (*InventoryBreakdown, error)
	UsageReport(projectID *uuid.UUID, category string) ([]ProjectUsage, error)
	ExportInventory(w io.Writer, filter repository.InventoryFilter) error
}

type SupplierPrice struct {
	Supplier         string          `json:"supplier"`
	LatestPrice      decimal.Decimal `json:"latest_price"`
	AveragePrice     decimal.Decimal `json:"average_price"`
	TransactionCount int             `json:"transaction_count"`

	latestAt time.Time
	sum      decimal.Decimal
}

type PriceComparison struct {
	ItemName  string          `json:"item_name"`
	Unit      string          `json:"unit"`
	Suppliers []SupplierPrice `json:"suppliers"`
}

type SupplierBreakdown struct {
	Supplier     string          `json:"supplier"`
	InWarehouse  decimal.Decimal `json:"in_warehouse"`
	OutWarehouse decimal.Decimal `json:"out_warehouse"`
	Total        decimal.Decimal `json:"total"`
}

type InventoryBreakdown struct {
	ItemName          string              `json:"item_name"`
	TotalInWarehouse  decimal.Decimal     `json:"total_in_warehouse"`
	TotalOutWarehouse decimal.Decimal     `json:"total_out_warehouse"`
	TotalQuantity     decimal.Decimal     `json:"total_quantity"`
	Breakdown         []SupplierBreakdown `json:"breakdown"`
}

type UsageDraw struct {
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

type ItemUsage struct {
	ItemName      string          `json:"item_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Unit          string          `json:"unit"`
	UsageType     model.UsageType `json:"usage_type"`
	Transactions  []UsageDraw     `json:"transactions"`
}

type ProjectUsage struct {
	ProjectID   uuid.UUID   `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Items       []ItemUsage `json:"items"`
}

type reportService struct {
	transactionRepo repository.TransactionRepository
	inventoryRepo   repository.InventoryRepository
	usageRepo       repository.WarehouseUsageRepository
	projectRepo     repository.ProjectRepository
}

func NewReportService(
	transactionRepo repository.TransactionRepository,
	inventoryRepo repository.InventoryRepository,
	usageRepo repository.WarehouseUsageRepository,
	projectRepo repository.ProjectRepository,
) ReportService {
	return &reportService{
		transactionRepo: transactionRepo,
		inventoryRepo:   inventoryRepo,
		usageRepo:       usageRepo,
		projectRepo:     projectRepo,
	}
}

func supplierName(item model.TransactionItem) string {
	if item.Supplier == nil || *item.Supplier == "" {
		return noSupplierName
	}
	return *item.Supplier
}

// PriceComparison groups bahan purchases by item and supplier. When projectType is set
// only projects of that type are considered; an unknown type yields an empty list.
func (s *reportService) PriceComparison(itemName, projectType string) ([]PriceComparison, error) {
	var projectIDs []uuid.UUID
	if projectType != "" {
		ids, err := s.projectRepo.FindIDsByType(projectType)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []PriceComparison{}, nil
		}
		projectIDs = ids
	}

	transactions, err := s.transactionRepo.FindWithItems(model.CategoryBahan, projectIDs)
	if err != nil {
		return nil, err
	}

	type itemGroup struct {
		unit      string
		order     []string
		suppliers map[string]*SupplierPrice
	}
	groups := make(map[string]*itemGroup)

	for _, t := range transactions {
		for _, item := range t.Items {
			if itemName != "" && item.Description != itemName {
				continue
			}
			g, ok := groups[item.Description]
			if !ok {
				g = &itemGroup{unit: item.Unit, suppliers: make(map[string]*SupplierPrice)}
				groups[item.Description] = g
			}

			name := supplierName(item)
			sp, ok := g.suppliers[name]
			if !ok {
				sp = &SupplierPrice{Supplier: name, LatestPrice: item.UnitPrice, latestAt: t.TransactionDate}
				g.suppliers[name] = sp
				g.order = append(g.order, name)
			} else if t.TransactionDate.After(sp.latestAt) {
				sp.LatestPrice = item.UnitPrice
				sp.latestAt = t.TransactionDate
			}
			sp.sum = sp.sum.Add(item.UnitPrice)
			sp.TransactionCount++
		}
	}

	result := make([]PriceComparison, 0, len(groups))
	for name, g := range groups {
		suppliers := make([]SupplierPrice, 0, len(g.order))
		for _, supplier := range g.order {
			sp := g.suppliers[supplier]
			sp.AveragePrice = sp.sum.Div(decimal.NewFromInt(int64(sp.TransactionCount))).Round(4)
			suppliers = append(suppliers, *sp)
		}
		sort.SliceStable(suppliers, func(i, j int) bool {
			return suppliers[i].LatestPrice.LessThan(suppliers[j].LatestPrice)
		})
		result = append(result, PriceComparison{ItemName: name, Unit: g.unit, Suppliers: suppliers})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemName < result[j].ItemName })
	return result, nil
}

// BreakdownBySupplier splits an inventory record's purchases by supplier and item status.
func (s *reportService) BreakdownBySupplier(inventoryID uuid.UUID) (*InventoryBreakdown, error) {
	record, err := s.inventoryRepo.FindByID(inventoryID)
	if err != nil {
		return nil, notFoundOr(err, "Inventory item not found")
	}

	transactions, err := s.transactionRepo.FindWithItems(model.TransactionCategory(record.Category), []uuid.UUID{record.ProjectID})
	if err != nil {
		return nil, err
	}

	var order []string
	bySupplier := make(map[string]*SupplierBreakdown)
	for _, t := range transactions {
		for _, item := range t.Items {
			if item.Description != record.ItemName {
				continue
			}
			name := supplierName(item)
			b, ok := bySupplier[name]
			if !ok {
				b = &SupplierBreakdown{Supplier: name}
				bySupplier[name] = b
				order = append(order, name)
			}
			if item.Status.OrDefault() == model.ItemReceiving {
				b.InWarehouse = b.InWarehouse.Add(item.Quantity)
			} else {
				b.OutWarehouse = b.OutWarehouse.Add(item.Quantity)
			}
			b.Total = b.Total.Add(item.Quantity)
		}
	}

	breakdown := make([]SupplierBreakdown, 0, len(order))
	for _, name := range order {
		breakdown = append(breakdown, *bySupplier[name])
	}
	return &InventoryBreakdown{
		ItemName:          record.ItemName,
		TotalInWarehouse:  record.QuantityInWarehouse,
		TotalOutWarehouse: record.QuantityOutWarehouse,
		TotalQuantity:     record.Quantity,
		Breakdown:         breakdown,
	}, nil
}

// UsageReport groups warehouse usages by project, then item, in first-seen order.
func (s *reportService) UsageReport(projectID *uuid.UUID, category string) ([]ProjectUsage, error) {
	usages, err := s.usageRepo.FindAll(repository.UsageFilter{ProjectID: projectID, Category: category})
	if err != nil {
		return nil, err
	}

	var (
		projects  []*ProjectUsage
		byProject = make(map[uuid.UUID]*ProjectUsage)
		byItem    = make(map[uuid.UUID]map[string]int)
	)
	for _, u := range usages {
		p, ok := byProject[u.ProjectID]
		if !ok {
			p = &ProjectUsage{ProjectID: u.ProjectID, ProjectName: u.ProjectName, Items: []ItemUsage{}}
			byProject[u.ProjectID] = p
			byItem[u.ProjectID] = make(map[string]int)
			projects = append(projects, p)
		}

		idx, ok := byItem[u.ProjectID][u.ItemName]
		if !ok {
			p.Items = append(p.Items, ItemUsage{
				ItemName:  u.ItemName,
				Unit:      u.Unit,
				UsageType: u.UsageType,
			})
			idx = len(p.Items) - 1
			byItem[u.ProjectID][u.ItemName] = idx
		}
		item := &p.Items[idx]
		item.TotalQuantity = item.TotalQuantity.Add(u.Quantity)
		item.Transactions = append(item.Transactions, UsageDraw{
			Quantity:  u.Quantity,
			Notes:     u.Notes,
			CreatedAt: u.CreatedAt,
		})
	}

	result := make([]ProjectUsage, 0, len(projects))
	for _, p := range projects {
		result = append(result, *p)
	}
	return result, nil
}

var exportHeadings = []string{
	"Item", "Category", "Project", "In Warehouse", "Out Warehouse", "Quantity",
	"Unit", "Unit Price", "Total Value", "Status", "Updated At",
}

// ExportInventory writes the inventory as an xlsx workbook.
func (s *reportService) ExportInventory(w io.Writer, filter repository.InventoryFilter) error {
	if filter.Category == "all" {
		filter.Category = ""
	}
	records, err := s.inventoryRepo.FindAll(filter)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ProjectID)
	}
	names, err := s.projectRepo.NamesByID(ids)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Sheet1"

	col := 'A'
	for _, h := range exportHeadings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	for i, r := range records {
		project, ok := names[r.ProjectID]
		if !ok {
			project = unknownProjectName
		}
		row := []interface{}{
			r.ItemName,
			r.Category,
			project,
			r.QuantityInWarehouse.InexactFloat64(),
			r.QuantityOutWarehouse.InexactFloat64(),
			r.Quantity.InexactFloat64(),
			r.Unit,
			r.UnitPrice.InexactFloat64(),
			r.TotalValue.InexactFloat64(),
			r.Status,
			r.UpdatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
