package repository

import (
	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(tx *gorm.DB, project *model.Project) error
	FindByID(id uuid.UUID) (*model.Project, error)
	FindAll(phase string) ([]model.Project, error)
	FindIDsByType(projectType string) ([]uuid.UUID, error)
	NamesByID(ids []uuid.UUID) (map[uuid.UUID]string, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	TotalValue() (decimal.Decimal, error)
}

type projectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db}
}

// Create runs on tx so a project can be created together with the RAB approving it.
func (r *projectRepo) Create(tx *gorm.DB, project *model.Project) error {
	return tx.Create(project).Error
}

func (r *projectRepo) FindByID(id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAll lists projects, limited to one phase when phase is not empty.
func (r *projectRepo) FindAll(phase string) ([]model.Project, error) {
	var projects []model.Project
	q := r.db.Model(&model.Project{})
	if phase != "" {
		q = q.Where("phase = ?", phase)
	}
	err := q.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *projectRepo) FindIDsByType(projectType string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.Model(&model.Project{}).Where("type = ?", projectType).Pluck("id", &ids).Error
	return ids, err
}

// NamesByID maps project ids to names. Unknown ids are absent from the map.
func (r *projectRepo) NamesByID(ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var projects []model.Project
	if err := r.db.Select("id", "name").Where("id IN ?", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (r *projectRepo) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.Model(&model.Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepo) TotalValue() (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&model.Project{}).Select("COALESCE(SUM(project_value), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
