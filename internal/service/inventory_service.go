package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const issueLockAttempts = 3

var errKeyMoved = errors.New("inventory record moved to another key")

type InventoryService interface {
	CreateInventory(ctx context.Context, req *CreateInventoryRequest, userID string) (*model.InventoryRecord, error)
	UpdateInventory(ctx context.Context, id uuid.UUID, req *UpdateInventoryRequest, userID string) (*model.InventoryRecord, error)
	DeleteInventory(ctx context.Context, id uuid.UUID) error
	GetInventory(filter repository.InventoryFilter) ([]model.InventoryRecord, error)
	GetInventoryByID(id uuid.UUID) (*model.InventoryRecord, error)
	IssueStock(ctx context.Context, req *IssueStockRequest, userID string) (*model.WarehouseUsage, error)
	GetItemNames(category string, projectID *uuid.UUID) ([]string, error)
	GetSuppliers() ([]string, error)
}

type CreateInventoryRequest struct {
	ItemName      string          `json:"item_name" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"gte=0"`
	Unit          string          `json:"unit" validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0"`
	ProjectID     uuid.UUID       `json:"project_id" validate:"uuid_required"`
	TransactionID *uuid.UUID      `json:"transaction_id"`
	Status        *string         `json:"status"`
}

type UpdateInventoryRequest struct {
	ItemName  *string          `json:"item_name" validate:"omitempty,min=1"`
	Quantity  *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	Unit      *string          `json:"unit"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Status    *string          `json:"status"`
}

// IssueStockRequest draws stock from the warehouse for a project.
type IssueStockRequest struct {
	InventoryID uuid.UUID       `json:"inventory_id" validate:"uuid_required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	ProjectID   uuid.UUID       `json:"project_id" validate:"uuid_required"`
	Notes       string          `json:"notes"`
	UsageType   string          `json:"usage_type" validate:"usage_type"`
}

type inventoryService struct {
	db              *gorm.DB
	inventoryRepo   repository.InventoryRepository
	usageRepo       repository.WarehouseUsageRepository
	projectRepo     repository.ProjectRepository
	transactionRepo repository.TransactionRepository
	engine          *stockEngine
	locker          lock.Locker
	events          EventPublisher
	cfg             config.InventoryConfig
	logger          *logrus.Logger
}

func NewInventoryService(
	db *gorm.DB,
	inventoryRepo repository.InventoryRepository,
	usageRepo repository.WarehouseUsageRepository,
	projectRepo repository.ProjectRepository,
	transactionRepo repository.TransactionRepository,
	locker lock.Locker,
	events EventPublisher,
	cfg config.InventoryConfig,
	logger *logrus.Logger,
) InventoryService {
	if cfg.DefaultProjectType == "" {
		cfg.DefaultProjectType = model.ProjectArsitektur
	}
	return &inventoryService{
		db:              db,
		inventoryRepo:   inventoryRepo,
		usageRepo:       usageRepo,
		projectRepo:     projectRepo,
		transactionRepo: transactionRepo,
		engine:          newStockEngine(inventoryRepo, false),
		locker:          locker,
		events:          publisherOrNop(events),
		cfg:             cfg,
		logger:          logger,
	}
}

func (s *inventoryService) projectName(id uuid.UUID) (string, error) {
	project, err := s.projectRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return unknownProjectName, nil
	}
	if err != nil {
		return "", err
	}
	return project.Name, nil
}

func (s *inventoryService) publish(action string, records ...model.InventoryRecord) {
	s.events.Publish(eventInventoryUpdate, map[string]interface{}{
		"action":  action,
		"records": records,
	})
}

// CreateInventory adds a record directly. The whole quantity lands in the warehouse counter.
func (s *inventoryService) CreateInventory(ctx context.Context, req *CreateInventoryRequest, userID string) (*model.InventoryRecord, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	projectType := s.cfg.DefaultProjectType
	if project, err := s.projectRepo.FindByID(req.ProjectID); err == nil {
		projectType = project.Type
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status := model.StockAvailable
	if req.Status != nil && *req.Status != "" {
		status = *req.Status
	}
	record := &model.InventoryRecord{
		ItemName:             req.ItemName,
		Category:             req.Category,
		ProjectID:            req.ProjectID,
		QuantityInWarehouse:  req.Quantity,
		QuantityOutWarehouse: decimal.Zero,
		Unit:                 req.Unit,
		UnitPrice:            req.UnitPrice,
		TotalValue:           req.Quantity.Mul(req.UnitPrice),
		ProjectType:          projectType,
		TransactionID:        req.TransactionID,
		Status:               status,
	}
	record.Sync()
	record.Touch(userID)

	unlock, err := s.locker.Lock(ctx, record.Key().LockKey())
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, err := s.inventoryRepo.CreateIfAbsent(tx, record)
		if err != nil {
			return err
		}
		if !created {
			return conflict("Inventory item %s already exists for this project and category", req.ItemName)
		}
		return s.engine.record(tx, record.ID, req.TransactionID, nil, model.MovementAdjust, record.QuantityInWarehouse, decimal.Zero)
	})
	if err != nil {
		return nil, err
	}

	s.publish("inventory_created", *record)
	return record, nil
}

// UpdateInventory edits a record. A new quantity is applied to the warehouse counter,
// keeping the out-of-warehouse counter as is.
func (s *inventoryService) UpdateInventory(ctx context.Context, id uuid.UUID, req *UpdateInventoryRequest, userID string) (*model.InventoryRecord, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	current, err := s.inventoryRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Inventory item not found")
	}

	keys := []string{current.Key().LockKey()}
	newKey := current.Key()
	if req.ItemName != nil {
		newKey.ItemName = *req.ItemName
		keys = append(keys, newKey.LockKey())
	}
	unlock, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	var record *model.InventoryRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.inventoryRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			return notFoundOr(err, "Inventory item not found")
		}

		if newKey != record.Key() {
			other, err := s.inventoryRepo.FindByKeyForUpdate(tx, newKey)
			if err == nil && other.ID != record.ID {
				return conflict("Inventory item %s already exists for this project and category", newKey.ItemName)
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record.ItemName = newKey.ItemName
		}

		oldIn := record.QuantityInWarehouse
		if req.Quantity != nil {
			record.QuantityInWarehouse = clampZero(req.Quantity.Sub(record.QuantityOutWarehouse))
			record.Sync()
		}
		if req.Unit != nil {
			record.Unit = *req.Unit
		}
		if req.UnitPrice != nil {
			record.UnitPrice = *req.UnitPrice
		}
		if req.Status != nil {
			record.Status = *req.Status
		}
		if req.Quantity != nil || req.UnitPrice != nil {
			record.TotalValue = record.Quantity.Mul(record.UnitPrice)
		}
		record.Touch(userID)

		if err := s.inventoryRepo.Save(tx, record); err != nil {
			return err
		}
		if delta := record.QuantityInWarehouse.Sub(oldIn); !delta.IsZero() {
			return s.engine.record(tx, record.ID, nil, nil, model.MovementAdjust, delta, decimal.Zero)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("inventory_updated", *record)
	return record, nil
}

func (s *inventoryService) DeleteInventory(ctx context.Context, id uuid.UUID) error {
	current, err := s.inventoryRepo.FindByID(id)
	if err != nil {
		return notFoundOr(err, "Inventory item not found")
	}

	unlock, err := s.locker.Lock(ctx, current.Key().LockKey())
	if err != nil {
		return fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.inventoryRepo.Delete(tx, id)
	})
	if err != nil {
		return notFoundOr(err, "Inventory item not found")
	}

	s.events.Publish(eventInventoryUpdate, map[string]interface{}{
		"action":       "inventory_deleted",
		"inventory_id": id,
	})
	return nil
}

func (s *inventoryService) GetInventory(filter repository.InventoryFilter) ([]model.InventoryRecord, error) {
	if filter.Category == "all" {
		filter.Category = ""
	}
	records, err := s.inventoryRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ProjectID)
	}
	names, err := s.projectRepo.NamesByID(ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		name, ok := names[records[i].ProjectID]
		if !ok {
			name = unknownProjectName
		}
		records[i].ProjectName = name
	}
	return records, nil
}

func (s *inventoryService) GetInventoryByID(id uuid.UUID) (*model.InventoryRecord, error) {
	record, err := s.inventoryRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Inventory item not found")
	}
	if record.ProjectName, err = s.projectName(record.ProjectID); err != nil {
		return nil, err
	}
	return record, nil
}

// IssueStock records a warehouse usage and lowers the warehouse counter.
// The record becomes Habis when its total quantity reaches exactly zero.
func (s *inventoryService) IssueStock(ctx context.Context, req *IssueStockRequest, userID string) (*model.WarehouseUsage, error) {
	if req.UsageType == "" {
		req.UsageType = string(model.UsageProduction)
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	notFoundMsg := fmt.Sprintf("Item %s tidak ditemukan di inventory", req.InventoryID)
	current, err := s.inventoryRepo.FindByID(req.InventoryID)
	if err != nil {
		return nil, notFoundOr(err, notFoundMsg)
	}
	projectName, err := s.projectName(req.ProjectID)
	if err != nil {
		return nil, err
	}

	usage := &model.WarehouseUsage{
		Quantity:    req.Quantity,
		ProjectID:   req.ProjectID,
		ProjectName: projectName,
		UsageType:   model.UsageType(req.UsageType),
		Notes:       req.Notes,
	}
	usage.Touch(userID)
	usage.ID = uuid.New()

	// a rename between the read above and the lock moves the record to another key
	key := current.Key()
	var record *model.InventoryRecord
	for attempt := 1; ; attempt++ {
		record, key, err = s.issueUnderLock(ctx, key, req, usage, notFoundMsg, userID)
		if !errors.Is(err, errKeyMoved) {
			break
		}
		if attempt == issueLockAttempts {
			return nil, conflict("Inventory item %s is being changed, try again", key.ItemName)
		}
	}
	if err != nil {
		return nil, err
	}

	s.publish("warehouse_issue", *record)
	return usage, nil
}

// issueUnderLock runs one issue attempt holding the lock for key. When the locked row
// no longer matches key it returns errKeyMoved together with the row's current key.
func (s *inventoryService) issueUnderLock(ctx context.Context, key model.StockKey, req *IssueStockRequest, usage *model.WarehouseUsage, notFoundMsg, userID string) (*model.InventoryRecord, model.StockKey, error) {
	unlock, err := s.locker.Lock(ctx, key.LockKey())
	if err != nil {
		return nil, key, fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	var record *model.InventoryRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.inventoryRepo.FindByIDForUpdate(tx, req.InventoryID)
		if err != nil {
			return notFoundOr(err, notFoundMsg)
		}
		if record.Key() != key {
			key = record.Key()
			return errKeyMoved
		}
		if err := s.engine.Issue(tx, record, req.Quantity, nil, &usage.ID, userID); err != nil {
			return err
		}

		usage.InventoryID = record.ID
		usage.ItemName = record.ItemName
		usage.Category = record.Category
		usage.Unit = record.Unit
		return s.usageRepo.Create(tx, usage)
	})
	return record, key, err
}

func (s *inventoryService) GetItemNames(category string, projectID *uuid.UUID) ([]string, error) {
	names, err := s.inventoryRepo.ItemNames(category, projectID)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GetSuppliers lists distinct supplier names seen on bahan and alat items.
func (s *inventoryService) GetSuppliers() ([]string, error) {
	seen := make(map[string]struct{})
	for _, category := range []model.TransactionCategory{model.CategoryBahan, model.CategoryAlat} {
		transactions, err := s.transactionRepo.FindWithItems(category, nil)
		if err != nil {
			return nil, err
		}
		for _, t := range transactions {
			for _, item := range t.Items {
				if item.Supplier != nil && *item.Supplier != "" {
					seen[*item.Supplier] = struct{}{}
				}
			}
		}
	}

	suppliers := make([]string, 0, len(seen))
	for name := range seen {
		suppliers = append(suppliers, name)
	}
	sort.Strings(suppliers)
	return suppliers, nil
}
