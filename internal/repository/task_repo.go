package repository

import (
	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(task *model.Task) error
	FindByID(id uuid.UUID) (*model.Task, error)
	FindAll(filter TaskFilter) ([]model.Task, error)
	UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(id uuid.UUID) error
	DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error)

	CreateReport(tx *gorm.DB, report *model.WorkReport) error
	FindReports(taskID uuid.UUID) ([]model.WorkReport, error)
}

type TaskFilter struct {
	AssignedTo *uuid.UUID
	ProjectID  *uuid.UUID
}

type taskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db}
}

func (r *taskRepo) Create(task *model.Task) error {
	return r.db.Create(task).Error
}

func (r *taskRepo) FindByID(id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) FindAll(filter TaskFilter) ([]model.Task, error) {
	tasks := []model.Task{}
	q := r.db.Model(&model.Task{})
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	err := q.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	res := tx.Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the task and its work reports.
func (r *taskRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.WorkReport{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *taskRepo) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	tasks := tx.Model(&model.Task{}).Select("id").Where("project_id = ?", projectID)
	if err := tx.Where("task_id IN (?)", tasks).Delete(&model.WorkReport{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("project_id = ?", projectID).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

func (r *taskRepo) CreateReport(tx *gorm.DB, report *model.WorkReport) error {
	return tx.Create(report).Error
}

func (r *taskRepo) FindReports(taskID uuid.UUID) ([]model.WorkReport, error) {
	reports := []model.WorkReport{}
	err := r.db.Where("task_id = ?", taskID).Order("created_at ASC").Find(&reports).Error
	return reports, err
}
