package repository

import (
	"time"

	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	FindByID(id uuid.UUID) (*model.InventoryRecord, error)
	FindAll(filter InventoryFilter) ([]model.InventoryRecord, error)
	ItemNames(category string, projectID *uuid.UUID) ([]string, error)

	// methods below take the caller's transaction handle
	FindByKeyForUpdate(tx *gorm.DB, key model.StockKey) (*model.InventoryRecord, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error)
	CreateIfAbsent(tx *gorm.DB, record *model.InventoryRecord) (bool, error)
	Save(tx *gorm.DB, record *model.InventoryRecord) error
	AddMovement(tx *gorm.DB, movement *model.InventoryMovement) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	DeleteByTransaction(tx *gorm.DB, transactionID uuid.UUID) (int64, error)
	DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error)

	FindMovements(startDate, endDate time.Time) ([]model.InventoryMovement, error)
	GetStats() (*InventoryStats, error)
}

type InventoryFilter struct {
	Category  string
	ProjectID *uuid.UUID
}

// InventoryStats untuk overview stats
type InventoryStats struct {
	TotalItems     int64           `json:"total_items"`
	DepletedCount  int64           `json:"depleted_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindByID(id uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *inventoryRepo) FindAll(filter InventoryFilter) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	q := r.db.Model(&model.InventoryRecord{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	err := q.Order("item_name ASC").Find(&records).Error
	return records, err
}

func (r *inventoryRepo) ItemNames(category string, projectID *uuid.UUID) ([]string, error) {
	var names []string
	q := r.db.Model(&model.InventoryRecord{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	err := q.Distinct("item_name").Order("item_name ASC").Pluck("item_name", &names).Error
	return names, err
}

// FindByKeyForUpdate row-locks the record with the given identity.
// Returns gorm.ErrRecordNotFound when no record exists.
func (r *inventoryRepo) FindByKeyForUpdate(tx *gorm.DB, key model.StockKey) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_name = ? AND category = ? AND project_id = ?", key.ItemName, key.Category, key.ProjectID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *inventoryRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateIfAbsent inserts the record unless its identity already exists.
// created is false when another writer got there first.
func (r *inventoryRepo) CreateIfAbsent(tx *gorm.DB, record *model.InventoryRecord) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_name"}, {Name: "category"}, {Name: "project_id"}},
		DoNothing: true,
	}).Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *inventoryRepo) Save(tx *gorm.DB, record *model.InventoryRecord) error {
	return tx.Save(record).Error
}

func (r *inventoryRepo) AddMovement(tx *gorm.DB, movement *model.InventoryMovement) error {
	return tx.Create(movement).Error
}

func (r *inventoryRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("inventory_id = ?", id).Delete(&model.InventoryMovement{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.InventoryRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *inventoryRepo) deleteWhere(tx *gorm.DB, query string, arg interface{}) (int64, error) {
	ids := tx.Model(&model.InventoryRecord{}).Select("id").Where(query, arg)
	if err := tx.Where("inventory_id IN (?)", ids).Delete(&model.InventoryMovement{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where(query, arg).Delete(&model.InventoryRecord{})
	return res.RowsAffected, res.Error
}

// DeleteByTransaction removes every record originated by the transaction.
func (r *inventoryRepo) DeleteByTransaction(tx *gorm.DB, transactionID uuid.UUID) (int64, error) {
	return r.deleteWhere(tx, "transaction_id = ?", transactionID)
}

func (r *inventoryRepo) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	return r.deleteWhere(tx, "project_id = ?", projectID)
}

func (r *inventoryRepo) FindMovements(startDate, endDate time.Time) ([]model.InventoryMovement, error) {
	var movements []model.InventoryMovement
	err := r.db.Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *inventoryRepo) GetStats() (*InventoryStats, error) {
	var stats InventoryStats

	if err := r.db.Model(&model.InventoryRecord{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.InventoryRecord{}).Where("status = ?", model.StockDepleted).Count(&stats.DepletedCount).Error; err != nil {
		return nil, err
	}
	row := r.db.Model(&model.InventoryRecord{}).Select("COALESCE(SUM(total_value), 0)").Row()
	if err := row.Scan(&stats.TotalValuation); err != nil {
		return nil, err
	}
	return &stats, nil
}
