package repository

import (
	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RABRepository interface {
	Create(rab *model.RAB) error
	FindByID(id uuid.UUID) (*model.RAB, error)
	FindAll() ([]model.RAB, error)
	FindByProjects(projectIDs []uuid.UUID) ([]model.RAB, error)
	UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(id uuid.UUID) error
	DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error)
	UnlinkItems(tx *gorm.DB, rabID uuid.UUID) error

	CreateItem(item *model.RABItem) error
	FindItemByID(id uuid.UUID) (*model.RABItem, error)
	FindItems(rabID uuid.UUID) ([]model.RABItem, error)
	SaveItem(item *model.RABItem) error
	DeleteItem(id uuid.UUID) error
}

type rabRepo struct {
	db *gorm.DB
}

func NewRABRepo(db *gorm.DB) RABRepository {
	return &rabRepo{db}
}

func preloadRABItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func (r *rabRepo) Create(rab *model.RAB) error {
	return r.db.Create(rab).Error
}

func (r *rabRepo) FindByID(id uuid.UUID) (*model.RAB, error) {
	var rab model.RAB
	if err := preloadRABItems(r.db).First(&rab, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rab, nil
}

func (r *rabRepo) FindAll() ([]model.RAB, error) {
	rabs := []model.RAB{}
	err := r.db.Order("created_at DESC").Find(&rabs).Error
	return rabs, err
}

// FindByProjects loads the RABs linked to any of projectIDs, items included.
func (r *rabRepo) FindByProjects(projectIDs []uuid.UUID) ([]model.RAB, error) {
	rabs := []model.RAB{}
	if len(projectIDs) == 0 {
		return rabs, nil
	}
	err := preloadRABItems(r.db).Where("project_id IN ?", projectIDs).Order("created_at ASC").Find(&rabs).Error
	return rabs, err
}

func (r *rabRepo) UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	res := tx.Model(&model.RAB{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the RAB and its items.
func (r *rabRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rab_id = ?", id).Delete(&model.RABItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.RAB{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteByProject removes the RABs linked to the project and every item that
// belongs to them or names the project directly.
func (r *rabRepo) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) (int64, error) {
	linked := tx.Model(&model.RAB{}).Select("id").Where("project_id = ?", projectID)
	err := tx.Where("project_id = ? OR rab_id IN (?)", projectID, linked).Delete(&model.RABItem{}).Error
	if err != nil {
		return 0, err
	}
	res := tx.Where("project_id = ?", projectID).Delete(&model.RAB{})
	return res.RowsAffected, res.Error
}

// UnlinkItems clears the project reference on every item of the RAB.
func (r *rabRepo) UnlinkItems(tx *gorm.DB, rabID uuid.UUID) error {
	return tx.Model(&model.RABItem{}).Where("rab_id = ?", rabID).Update("project_id", nil).Error
}

func (r *rabRepo) CreateItem(item *model.RABItem) error {
	return r.db.Create(item).Error
}

func (r *rabRepo) FindItemByID(id uuid.UUID) (*model.RABItem, error) {
	var item model.RABItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *rabRepo) FindItems(rabID uuid.UUID) ([]model.RABItem, error) {
	items := []model.RABItem{}
	err := r.db.Where("rab_id = ?", rabID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *rabRepo) SaveItem(item *model.RABItem) error {
	return r.db.Save(item).Error
}

func (r *rabRepo) DeleteItem(id uuid.UUID) error {
	res := r.db.Delete(&model.RABItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
