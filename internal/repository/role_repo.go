package repository

import (
	"slices"

	"go-construction-inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByCode(code string) (*model.Role, error)
	SeedDefaults(catalogue []model.Privilege) ([]model.Role, error)
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) withPrivileges() *gorm.DB {
	return r.db.Preload("Privileges", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	roles := []model.Role{}
	err := r.withPrivileges().Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	var role model.Role
	if err := r.withPrivileges().First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	if err := r.withPrivileges().Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults inserts missing roles and grants the default privileges from catalogue to
// every role that has none yet, so grants edited by an admin survive restarts.
// It returns the roles that received a grant.
func (r *roleRepo) SeedDefaults(catalogue []model.Privilege) ([]model.Role, error) {
	defaults := make([]model.Role, len(model.DefaultRoles))
	copy(defaults, model.DefaultRoles)
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&defaults).Error
	if err != nil {
		return nil, err
	}

	roles, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	var granted []model.Role
	for i := range roles {
		role := &roles[i]
		if len(role.Privileges) > 0 {
			continue
		}
		grant := defaultGrant(role.Code, catalogue)
		if len(grant) == 0 {
			continue
		}
		if err := r.db.Model(role).Association("Privileges").Replace(grant); err != nil {
			return nil, err
		}
		role.Privileges = grant
		granted = append(granted, *role)
	}
	return granted, nil
}

// defaultGrant picks the role's default privileges out of catalogue. Admin gets everything.
func defaultGrant(roleCode string, catalogue []model.Privilege) []model.Privilege {
	if roleCode == model.RoleAdmin {
		return catalogue
	}
	wanted := model.DefaultRolePrivileges[roleCode]
	grant := make([]model.Privilege, 0, len(wanted))
	for _, p := range catalogue {
		if slices.Contains(wanted, p.Code) {
			grant = append(grant, p)
		}
	}
	return grant
}
