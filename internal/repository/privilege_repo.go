package repository

import (
	"go-construction-inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrivilegeRepository reads the fixed privilege catalogue.
type PrivilegeRepository interface {
	FindByCodes(codes []string) ([]model.Privilege, error)
	FindAll() ([]model.Privilege, error)
	SeedDefaults() error
}

type privilegeRepo struct {
	db *gorm.DB
}

func NewPrivilegeRepo(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepo{db}
}

// FindByCodes silently skips unknown codes; callers compare lengths when that matters.
func (r *privilegeRepo) FindByCodes(codes []string) ([]model.Privilege, error) {
	privileges := []model.Privilege{}
	if len(codes) == 0 {
		return privileges, nil
	}
	if err := r.db.Where("code IN ?", codes).Order("id").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *privilegeRepo) FindAll() ([]model.Privilege, error) {
	privileges := []model.Privilege{}
	if err := r.db.Order("id").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

// SeedDefaults inserts the catalogue in one statement; codes already stored are left as they are.
func (r *privilegeRepo) SeedDefaults() error {
	catalogue := make([]model.Privilege, len(model.DefaultPrivileges))
	copy(catalogue, model.DefaultPrivileges)
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&catalogue).Error
}
