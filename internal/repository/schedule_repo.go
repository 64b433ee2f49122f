package repository

import (
	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	Create(item *model.ScheduleItem) error
	FindByProject(projectID uuid.UUID) ([]model.ScheduleItem, error)
	FindByProjects(projectIDs []uuid.UUID) ([]model.ScheduleItem, error)
	Delete(id uuid.UUID) error
	DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db}
}

func (r *scheduleRepo) Create(item *model.ScheduleItem) error {
	return r.db.Create(item).Error
}

func (r *scheduleRepo) FindByProject(projectID uuid.UUID) ([]model.ScheduleItem, error) {
	items := []model.ScheduleItem{}
	err := r.db.Where("project_id = ?", projectID).Order("start_week ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (r *scheduleRepo) FindByProjects(projectIDs []uuid.UUID) ([]model.ScheduleItem, error) {
	items := []model.ScheduleItem{}
	if len(projectIDs) == 0 {
		return items, nil
	}
	err := r.db.Where("project_id IN ?", projectIDs).Order("start_week ASC").Find(&items).Error
	return items, err
}

func (r *scheduleRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.ScheduleItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleRepo) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	res := tx.Where("project_id = ?", projectID).Delete(&model.ScheduleItem{})
	return res.RowsAffected, res.Error
}
