package repository

import (
	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WarehouseUsageRepository interface {
	Create(tx *gorm.DB, usage *model.WarehouseUsage) error
	FindAll(filter UsageFilter) ([]model.WarehouseUsage, error)
	DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error)
}

type UsageFilter struct {
	ProjectID *uuid.UUID
	Category  string
}

type warehouseUsageRepo struct {
	db *gorm.DB
}

func NewWarehouseUsageRepo(db *gorm.DB) WarehouseUsageRepository {
	return &warehouseUsageRepo{db}
}

func (r *warehouseUsageRepo) Create(tx *gorm.DB, usage *model.WarehouseUsage) error {
	return tx.Create(usage).Error
}

func (r *warehouseUsageRepo) FindAll(filter UsageFilter) ([]model.WarehouseUsage, error) {
	var usages []model.WarehouseUsage
	q := r.db.Model(&model.WarehouseUsage{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	err := q.Order("created_at ASC").Find(&usages).Error
	return usages, err
}

func (r *warehouseUsageRepo) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	res := tx.Where("project_id = ?", projectID).Delete(&model.WarehouseUsage{})
	return res.RowsAffected, res.Error
}
