package service

import (
	"errors"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stockEngine applies ledger mutations inside a caller owned DB transaction.
// Callers hold the identity lock for every key they touch.
type stockEngine struct {
	inventoryRepo      repository.InventoryRepository
	strictOutWarehouse bool
}

func newStockEngine(inventoryRepo repository.InventoryRepository, strictOutWarehouse bool) *stockEngine {
	return &stockEngine{inventoryRepo: inventoryRepo, strictOutWarehouse: strictOutWarehouse}
}

func itemKey(t *model.Transaction, item model.TransactionItem) model.StockKey {
	return model.StockKey{ItemName: item.Description, Category: string(t.Category), ProjectID: t.ProjectID}
}

// Post reconciles one transaction line into the ledger and returns the touched record.
func (e *stockEngine) Post(tx *gorm.DB, t *model.Transaction, item model.TransactionItem, projectType, userID string) (*model.InventoryRecord, error) {
	status := item.Status.OrDefault()
	key := itemKey(t, item)

	if e.strictOutWarehouse && status == model.ItemOutWarehouse {
		record, err := e.inventoryRepo.FindByKeyForUpdate(tx, key)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Item %s tidak ditemukan di inventory", item.Description)
		}
		if err != nil {
			return nil, err
		}
		if err := e.Issue(tx, record, item.Quantity, &t.ID, nil, userID); err != nil {
			return nil, err
		}
		return record, nil
	}

	record, err := e.inventoryRepo.FindByKeyForUpdate(tx, key)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = newInventoryRecord(t, item, status, projectType, userID)
		created, err := e.inventoryRepo.CreateIfAbsent(tx, record)
		if err != nil {
			return nil, err
		}
		if created {
			deltaIn, deltaOut := splitByStatus(status, item.Quantity)
			return record, e.record(tx, record.ID, &t.ID, nil, movementKind(status), deltaIn, deltaOut)
		}
		// lost the insert race to another process; merge into the winner
		record, err = e.inventoryRepo.FindByKeyForUpdate(tx, key)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	deltaIn, deltaOut := splitByStatus(status, item.Quantity)
	record.QuantityInWarehouse = record.QuantityInWarehouse.Add(deltaIn)
	record.QuantityOutWarehouse = record.QuantityOutWarehouse.Add(deltaOut)
	record.Sync()
	record.UnitPrice = item.UnitPrice
	record.TotalValue = record.Quantity.Mul(record.UnitPrice)
	record.Touch(userID)
	if err := e.inventoryRepo.Save(tx, record); err != nil {
		return nil, err
	}
	return record, e.record(tx, record.ID, &t.ID, nil, movementKind(status), deltaIn, deltaOut)
}

// Issue draws qty from the warehouse counter. The record must already be row locked.
func (e *stockEngine) Issue(tx *gorm.DB, record *model.InventoryRecord, qty decimal.Decimal, transactionID, usageID *uuid.UUID, userID string) error {
	if qty.GreaterThan(record.QuantityInWarehouse) {
		return &InsufficientStockError{
			ItemName:  record.ItemName,
			Available: record.QuantityInWarehouse,
			Requested: qty,
		}
	}

	record.QuantityInWarehouse = record.QuantityInWarehouse.Sub(qty)
	record.Sync()
	if record.Quantity.IsZero() {
		record.Status = model.StockDepleted
	}
	record.Touch(userID)
	if err := e.inventoryRepo.Save(tx, record); err != nil {
		return err
	}
	return e.record(tx, record.ID, transactionID, usageID, model.MovementIssue, qty.Neg(), decimal.Zero)
}

// MoveStatus shifts qty between the two counters when an item changes status.
// Both counters are clamped at zero. A missing record is not an error; nil is returned.
func (e *stockEngine) MoveStatus(tx *gorm.DB, key model.StockKey, qty decimal.Decimal, from, to model.ItemStatus, transactionID uuid.UUID, userID string) (*model.InventoryRecord, error) {
	from, to = from.OrDefault(), to.OrDefault()
	if from == to {
		return nil, nil
	}

	record, err := e.inventoryRepo.FindByKeyForUpdate(tx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	oldIn, oldOut := record.QuantityInWarehouse, record.QuantityOutWarehouse
	if to == model.ItemOutWarehouse {
		record.QuantityInWarehouse = clampZero(oldIn.Sub(qty))
		record.QuantityOutWarehouse = clampZero(oldOut.Add(qty))
	} else {
		record.QuantityInWarehouse = clampZero(oldIn.Add(qty))
		record.QuantityOutWarehouse = clampZero(oldOut.Sub(qty))
	}
	record.Sync()
	record.Touch(userID)

	if err := e.inventoryRepo.Save(tx, record); err != nil {
		return nil, err
	}
	err = e.record(tx, record.ID, &transactionID, nil, model.MovementStatusChange,
		record.QuantityInWarehouse.Sub(oldIn), record.QuantityOutWarehouse.Sub(oldOut))
	return record, err
}

func (e *stockEngine) record(tx *gorm.DB, inventoryID uuid.UUID, transactionID, usageID *uuid.UUID, kind model.MovementKind, deltaIn, deltaOut decimal.Decimal) error {
	return e.inventoryRepo.AddMovement(tx, &model.InventoryMovement{
		InventoryID:      inventoryID,
		TransactionID:    transactionID,
		WarehouseUsageID: usageID,
		Kind:             kind,
		DeltaIn:          deltaIn,
		DeltaOut:         deltaOut,
	})
}

func newInventoryRecord(t *model.Transaction, item model.TransactionItem, status model.ItemStatus, projectType, userID string) *model.InventoryRecord {
	deltaIn, deltaOut := splitByStatus(status, item.Quantity)
	transactionID := t.ID
	record := &model.InventoryRecord{
		ItemName:             item.Description,
		Category:             string(t.Category),
		ProjectID:            t.ProjectID,
		QuantityInWarehouse:  deltaIn,
		QuantityOutWarehouse: deltaOut,
		Unit:                 item.Unit,
		UnitPrice:            item.UnitPrice,
		TotalValue:           item.Total,
		ProjectType:          projectType,
		TransactionID:        &transactionID,
		Status:               model.StockAvailable,
	}
	record.Sync()
	record.Touch(userID)
	return record
}

func splitByStatus(status model.ItemStatus, qty decimal.Decimal) (deltaIn, deltaOut decimal.Decimal) {
	if status == model.ItemOutWarehouse {
		return decimal.Zero, qty
	}
	return qty, decimal.Zero
}

func movementKind(status model.ItemStatus) model.MovementKind {
	if status == model.ItemOutWarehouse {
		return model.MovementOutWarehouse
	}
	return model.MovementReceive
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
