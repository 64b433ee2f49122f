package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"
	"go-construction-inventory/pkg/wib"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	recentTransactionLimit = 10
	unknownProjectName     = "Unknown Project"
)

type TransactionService interface {
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest, userID string) (*model.Transaction, error)
	GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error)
	GetRecentTransactions() ([]model.Transaction, error)
	GetTransactionByID(id uuid.UUID) (*model.Transaction, error)
	UpdateTransaction(id uuid.UUID, req *UpdateTransactionRequest, userID string) (*model.Transaction, error)
	UpdateItemStatus(ctx context.Context, id uuid.UUID, itemIndex int, newStatus string, userID string) (string, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type TransactionItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,item_status"`
	Supplier    *string         `json:"supplier"`
}

type CreateTransactionRequest struct {
	ProjectID       uuid.UUID                `json:"project_id" validate:"uuid_required"`
	Category        string                   `json:"category" validate:"tx_category"`
	Description     string                   `json:"description"`
	Amount          decimal.Decimal          `json:"amount"`
	Items           []TransactionItemRequest `json:"items" validate:"dive"`
	Quantity        *decimal.Decimal         `json:"quantity"`
	Unit            *string                  `json:"unit"`
	Status          *string                  `json:"status"`
	Receipt         *string                  `json:"receipt"`
	TransactionDate *time.Time               `json:"transaction_date"`
}

// UpdateTransactionRequest only touches header fields; items and stock are never changed.
type UpdateTransactionRequest struct {
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	Status          *string          `json:"status"`
	TransactionDate *time.Time       `json:"transaction_date"`
}

type transactionService struct {
	db              *gorm.DB
	transactionRepo repository.TransactionRepository
	inventoryRepo   repository.InventoryRepository
	projectRepo     repository.ProjectRepository
	engine          *stockEngine
	locker          lock.Locker
	notifier        NotificationService
	events          EventPublisher
	cfg             config.InventoryConfig
	logger          *logrus.Logger
}

func NewTransactionService(
	db *gorm.DB,
	transactionRepo repository.TransactionRepository,
	inventoryRepo repository.InventoryRepository,
	projectRepo repository.ProjectRepository,
	locker lock.Locker,
	notifier NotificationService,
	events EventPublisher,
	cfg config.InventoryConfig,
	logger *logrus.Logger,
) TransactionService {
	if cfg.DefaultProjectType == "" {
		cfg.DefaultProjectType = model.ProjectArsitektur
	}
	return &transactionService{
		db:              db,
		transactionRepo: transactionRepo,
		inventoryRepo:   inventoryRepo,
		projectRepo:     projectRepo,
		engine:          newStockEngine(inventoryRepo, cfg.StrictOutWarehouse),
		locker:          locker,
		notifier:        notifier,
		events:          publisherOrNop(events),
		cfg:             cfg,
		logger:          logger,
	}
}

func (s *transactionService) CreateTransaction(ctx context.Context, req *CreateTransactionRequest, userID string) (*model.Transaction, error) {
	// 1. Validasi Input
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	t := buildTransaction(req, userID)

	var stockItems []model.TransactionItem
	projectType := s.cfg.DefaultProjectType
	if t.Category.IsStock() {
		stockItems = t.StockItems()

		project, err := s.projectRepo.FindByID(t.ProjectID)
		switch {
		case err == nil:
			projectType = project.Type
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	keys := make([]string, 0, len(stockItems))
	for _, item := range stockItems {
		keys = append(keys, itemKey(t, item).LockKey())
	}
	unlock, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	// 2. Simpan transaksi dan rekonsiliasi stok secara atomik
	var touched []model.InventoryRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transactionRepo.Create(tx, t); err != nil {
			return err
		}
		if !t.Category.IsStock() {
			return nil
		}
		// items now carry their ids
		for _, item := range t.StockItems() {
			record, err := s.engine.Post(tx, t, item, projectType, userID)
			if err != nil {
				return err
			}
			touched = append(touched, *record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 3. Notifikasi ke accounting (best effort)
	message := fmt.Sprintf("Transaksi %s sebesar Rp %s", t.Category, formatRupiah(t.Amount))
	if err := s.notifier.NotifyRole(model.RoleAccounting, "Transaksi Baru", message, model.NotificationInfo); err != nil {
		config.LogError(s.logger, "transaction_service", "CreateTransaction", "notify accounting", t.ID.String(), err)
	}

	if len(touched) > 0 {
		s.events.Publish(eventInventoryUpdate, map[string]interface{}{
			"action":         "transaction_created",
			"transaction_id": t.ID,
			"records":        touched,
		})
	}
	return t, nil
}

func buildTransaction(req *CreateTransactionRequest, userID string) *model.Transaction {
	date := wib.Now()
	if req.TransactionDate != nil {
		date = req.TransactionDate.In(wib.Location)
	}

	t := &model.Transaction{
		ProjectID:       req.ProjectID,
		Category:        model.TransactionCategory(req.Category),
		Description:     req.Description,
		Amount:          req.Amount,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		Status:          req.Status,
		Receipt:         req.Receipt,
		TransactionDate: date,
	}
	t.Touch(userID)
	t.ID = uuid.New()

	for i, it := range req.Items {
		t.Items = append(t.Items, model.TransactionItem{
			Position:    i,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			Total:       it.Quantity.Mul(it.UnitPrice),
			Status:      model.ItemStatus(it.Status).OrDefault(),
			Supplier:    it.Supplier,
		})
	}
	return t
}

func (s *transactionService) withProjectNames(transactions []model.Transaction) ([]model.Transaction, error) {
	ids := make([]uuid.UUID, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ProjectID)
	}
	names, err := s.projectRepo.NamesByID(ids)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		name, ok := names[transactions[i].ProjectID]
		if !ok {
			name = unknownProjectName
		}
		transactions[i].ProjectName = name
	}
	return transactions, nil
}

func (s *transactionService) GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	return s.withProjectNames(transactions)
}

func (s *transactionService) GetRecentTransactions() ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.FindRecent(recentTransactionLimit)
	if err != nil {
		return nil, err
	}
	return s.withProjectNames(transactions)
}

func (s *transactionService) GetTransactionByID(id uuid.UUID) (*model.Transaction, error) {
	t, err := s.transactionRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Transaction not found")
	}
	return t, nil
}

func (s *transactionService) UpdateTransaction(id uuid.UUID, req *UpdateTransactionRequest, userID string) (*model.Transaction, error) {
	fields := map[string]interface{}{"updated_by": userID}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Amount != nil {
		fields["amount"] = *req.Amount
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.TransactionDate != nil {
		fields["transaction_date"] = req.TransactionDate.In(wib.Location)
	}

	if err := s.transactionRepo.UpdateFields(id, fields); err != nil {
		return nil, notFoundOr(err, "Transaction not found")
	}
	return s.GetTransactionByID(id)
}

// UpdateItemStatus changes one item's status and moves its quantity between the
// warehouse counters of the matching inventory record.
func (s *transactionService) UpdateItemStatus(ctx context.Context, id uuid.UUID, itemIndex int, newStatus string, userID string) (string, error) {
	status := model.ItemStatus(newStatus)
	if !status.Valid() {
		return "", invalid("Invalid status. Must be 'receiving' or 'out_warehouse'")
	}

	t, err := s.transactionRepo.FindByID(id)
	if err != nil {
		return "", notFoundOr(err, "Transaction not found")
	}
	if itemIndex < 0 || itemIndex >= len(t.Items) {
		return "", invalid("Item index out of range")
	}

	item := t.Items[itemIndex]
	key := itemKey(t, item)

	unlock, err := s.locker.Lock(ctx, key.LockKey())
	if err != nil {
		return "", fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	// the status read before the lock may be stale; the locked row decides the move
	var record *model.InventoryRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		current, err := s.transactionRepo.FindItemForUpdate(tx, item.ID)
		if err != nil {
			return notFoundOr(err, "Transaction not found")
		}
		oldStatus := current.Status.OrDefault()
		if oldStatus == status {
			return nil
		}
		if err := s.transactionRepo.UpdateItemStatus(tx, item.ID, status); err != nil {
			return err
		}
		record, err = s.engine.MoveStatus(tx, key, current.Quantity, oldStatus, status, t.ID, userID)
		return err
	})
	if err != nil {
		return "", err
	}

	if record == nil {
		return "Status updated", nil
	}
	s.events.Publish(eventInventoryUpdate, map[string]interface{}{
		"action":         "item_status_changed",
		"transaction_id": t.ID,
		"records":        []model.InventoryRecord{*record},
	})
	return "Item status updated and inventory synced", nil
}

// DeleteTransaction removes the transaction, its items and every inventory record it originated.
func (s *transactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	t, err := s.transactionRepo.FindByID(id)
	if err != nil {
		return notFoundOr(err, "Transaction not found")
	}

	keys := make([]string, 0, len(t.Items))
	for _, item := range t.StockItems() {
		keys = append(keys, itemKey(t, item).LockKey())
	}
	unlock, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	var removed int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if removed, err = s.inventoryRepo.DeleteByTransaction(tx, id); err != nil {
			return err
		}
		return s.transactionRepo.Delete(tx, id)
	})
	if err != nil {
		return notFoundOr(err, "Transaction not found")
	}

	if removed > 0 {
		s.events.Publish(eventInventoryUpdate, map[string]interface{}{
			"action":         "transaction_deleted",
			"transaction_id": id,
		})
	}
	return nil
}
