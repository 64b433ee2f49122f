package repository

import (
	"go-construction-inventory/internal/model"
	"go-construction-inventory/pkg/wib"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByLogin(identifier string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	FindByRoleCode(code string) ([]model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	DeleteMany(ids []uuid.UUID) (int64, error)
	UpdateMany(ids []uuid.UUID, fields map[string]interface{}, privileges []model.Privilege) (int64, error)
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error
	FindAll() ([]model.User, error)
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) withRelations() *gorm.DB {
	return r.db.Preload("Role").Preload("Privileges")
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.withRelations().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.withRelations().Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin accepts either an email or a username.
func (r *userRepo) FindByLogin(identifier string) (*model.User, error) {
	var user model.User
	err := r.withRelations().
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.withRelations().First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByRoleCode(code string) ([]model.User, error) {
	var users []model.User
	err := r.withRelations().
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.code = ?", code).
		Find(&users).Error
	return users, err
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Omit("Privileges", "Role").Save(user).Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error {
	var user model.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	return r.db.Model(&user).Association("Privileges").Replace(privileges)
}

// Delete removes the user and its privilege links.
func (r *userRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{}
		user.ID = id
		if err := tx.Model(&user).Association("Privileges").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteMany removes the users that exist among ids and reports how many went.
func (r *userRepo) DeleteMany(ids []uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			user := model.User{}
			user.ID = id
			if err := tx.Model(&user).Association("Privileges").Clear(); err != nil {
				return err
			}
		}
		res := tx.Delete(&model.User{}, "id IN ?", ids)
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// UpdateMany applies fields to every user in ids. A non-nil privileges slice
// replaces each user's privileges as well.
func (r *userRepo) UpdateMany(ids []uuid.UUID, fields map[string]interface{}, privileges []model.Privilege) (int64, error) {
	var updated int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("id IN ?", ids).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected
		if privileges == nil {
			return nil
		}
		var users []model.User
		if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return err
		}
		for i := range users {
			if err := tx.Model(&users[i]).Association("Privileges").Replace(privileges); err != nil {
				return err
			}
		}
		return nil
	})
	return updated, err
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.withRelations().Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", wib.Now()).Error
}
